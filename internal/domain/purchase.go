package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an append-only ledger header. It is created exactly once
// per committed checkout and never updated or deleted afterwards.
type Purchase struct {
	ID          int
	UserID      int
	PurchasedAt time.Time
	Total       decimal.Decimal
	Lines       []PurchaseLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseLine snapshots the unit price at purchase time. The snapshot
// is decoupled from later catalog price changes so invoices stay stable.
type PurchaseLine struct {
	ID          int
	PurchaseID  int
	ProductID   int
	ProductName string
	LotNumber   string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// PurchaseWithCustomer joins a ledger entry with the identity of the
// purchaser, for invoices and the privileged all-purchases view.
type PurchaseWithCustomer struct {
	Purchase
	Customer User
}

// LinesTotal recomputes the sum of line subtotals. Callers use it to
// check the stored total instead of assuming it.
func (p Purchase) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Subtotal)
	}
	return total
}
