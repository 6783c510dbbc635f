package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchase_LinesTotal(t *testing.T) {
	purchase := Purchase{
		Lines: []PurchaseLine{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("99.99"), Subtotal: decimal.RequireFromString("199.98")},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("1200.00"), Subtotal: decimal.RequireFromString("1200.00")},
		},
	}

	total := purchase.LinesTotal()

	assert.True(t, total.Equal(decimal.RequireFromString("1399.98")),
		"expected 1399.98, got %s", total)
}

func TestPurchase_LinesTotal_Empty(t *testing.T) {
	purchase := Purchase{}

	assert.True(t, purchase.LinesTotal().IsZero())
}

func TestPurchase_LinesTotal_ExactDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation.
	purchase := Purchase{
		Lines: []PurchaseLine{
			{Subtotal: decimal.RequireFromString("0.1")},
			{Subtotal: decimal.RequireFromString("0.2")},
		},
	}

	assert.True(t, purchase.LinesTotal().Equal(decimal.RequireFromString("0.3")))
}

func TestProduct_HasStockFor(t *testing.T) {
	product := Product{AvailableQuantity: 5}

	assert.True(t, product.HasStockFor(4))
	assert.True(t, product.HasStockFor(5))
	assert.False(t, product.HasStockFor(6))
}

func TestUser_IsAdmin(t *testing.T) {
	admin := User{Role: RoleAdmin}
	cliente := User{Role: RoleCliente}

	assert.True(t, admin.IsAdmin())
	assert.False(t, cliente.IsAdmin())
}
