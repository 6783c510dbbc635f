package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type BasketItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type CreatePurchaseRequest struct {
	Basket []BasketItem `json:"basket"`
}

type PurchaseLineDTO struct {
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
	LotNumber   string          `json:"lotNumber"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type PurchaseDTO struct {
	ID          int               `json:"id"`
	UserID      int               `json:"userId"`
	PurchasedAt time.Time         `json:"purchasedAt"`
	Total       decimal.Decimal   `json:"total"`
	Lines       []PurchaseLineDTO `json:"lines"`
}

type CustomerDTO struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type InvoiceDTO struct {
	ID          int               `json:"id"`
	PurchasedAt time.Time         `json:"purchasedAt"`
	Customer    CustomerDTO       `json:"customer"`
	Lines       []PurchaseLineDTO `json:"lines"`
	Total       decimal.Decimal   `json:"total"`
}

// PurchaseWithCustomerDTO is the privileged all-purchases projection:
// a purchase joined with the identity of whoever placed it.
type PurchaseWithCustomerDTO struct {
	ID          int               `json:"id"`
	PurchasedAt time.Time         `json:"purchasedAt"`
	Customer    CustomerDTO       `json:"customer"`
	Lines       []PurchaseLineDTO `json:"lines"`
	Total       decimal.Decimal   `json:"total"`
}
