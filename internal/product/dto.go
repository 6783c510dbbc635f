package product

import (
	"github.com/shopspring/decimal"

	"bodega/internal/domain"
)

const entryDateLayout = "2006-01-02"

type CreateProductRequest struct {
	LotNumber         string           `json:"lotNumber"`
	Name              string           `json:"name"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	AvailableQuantity *int             `json:"availableQuantity"`
	EntryDate         string           `json:"entryDate"`
}

type UpdateProductRequest struct {
	LotNumber         *string          `json:"lotNumber"`
	Name              *string          `json:"name"`
	UnitPrice         *decimal.Decimal `json:"unitPrice"`
	AvailableQuantity *int             `json:"availableQuantity"`
	EntryDate         *string          `json:"entryDate"`
}

type ProductDTO struct {
	ID                int             `json:"id"`
	LotNumber         string          `json:"lotNumber"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	AvailableQuantity int             `json:"availableQuantity"`
	EntryDate         string          `json:"entryDate"`
}

type ProductResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    ProductDTO `json:"data"`
}

type ProductListResponse struct {
	Success bool         `json:"success"`
	Data    []ProductDTO `json:"data"`
	Count   int          `json:"count"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:                p.ID,
		LotNumber:         p.LotNumber,
		Name:              p.Name,
		UnitPrice:         p.UnitPrice,
		AvailableQuantity: p.AvailableQuantity,
		EntryDate:         p.EntryDate.Format(entryDateLayout),
	}
}
