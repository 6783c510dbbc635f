package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory record. LotNumber is the unique business key
// and never changes meaning after creation. AvailableQuantity is only
// ever decremented by purchase commits; the repository enforces that it
// cannot go below zero.
type Product struct {
	ID                int
	LotNumber         string
	Name              string
	UnitPrice         decimal.Decimal
	AvailableQuantity int
	EntryDate         time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p Product) HasStockFor(quantity int) bool {
	return p.AvailableQuantity >= quantity
}
