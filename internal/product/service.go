package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bodega/internal/domain"
)

type CreateProductInput struct {
	LotNumber         string
	Name              string
	UnitPrice         decimal.Decimal
	AvailableQuantity int
	EntryDate         time.Time
}

// UpdateProductInput carries only the fields present in the request;
// nil fields keep the stored value.
type UpdateProductInput struct {
	LotNumber         *string
	Name              *string
	UnitPrice         *decimal.Decimal
	AvailableQuantity *int
	EntryDate         *time.Time
}

type catalogService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &catalogService{repo: repo}
}

func (s *catalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *catalogService) Get(ctx context.Context, id int) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	p := domain.Product{
		LotNumber:         input.LotNumber,
		Name:              input.Name,
		UnitPrice:         input.UnitPrice,
		AvailableQuantity: input.AvailableQuantity,
		EntryDate:         input.EntryDate,
	}

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

func (s *catalogService) Update(ctx context.Context, id int, input UpdateProductInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.LotNumber != nil {
		p.LotNumber = *input.LotNumber
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.UnitPrice != nil {
		p.UnitPrice = *input.UnitPrice
	}
	if input.AvailableQuantity != nil {
		p.AvailableQuantity = *input.AvailableQuantity
	}
	if input.EntryDate != nil {
		p.EntryDate = *input.EntryDate
	}

	if err := s.repo.Update(ctx, *p); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

func (s *catalogService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
