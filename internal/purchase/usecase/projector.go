package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bodega/internal/domain"
	"bodega/internal/dto"
	apperrors "bodega/internal/errors"
)

type LedgerRepository interface {
	FindByUser(ctx context.Context, userID int) ([]domain.Purchase, error)
	FindByIDWithCustomer(ctx context.Context, id int) (*domain.PurchaseWithCustomer, error)
	FindAllWithCustomer(ctx context.Context) ([]domain.PurchaseWithCustomer, error)
}

// Projector shapes read-side responses: purchase history and invoices.
// Reads are not transactionally isolated from concurrent checkouts;
// line snapshots are frozen at purchase time, so that is acceptable.
type Projector struct {
	ledger LedgerRepository
	logger *zap.Logger
}

func NewProjector(ledger LedgerRepository, logger *zap.Logger) *Projector {
	return &Projector{
		ledger: ledger,
		logger: logger,
	}
}

func (p *Projector) ProjectHistory(ctx context.Context, userID int) ([]dto.PurchaseDTO, error) {
	purchases, err := p.ledger.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PurchaseDTO, 0, len(purchases))
	for _, purchase := range purchases {
		result = append(result, toPurchaseDTO(purchase))
	}
	return result, nil
}

func (p *Projector) ProjectAllHistory(ctx context.Context) ([]dto.PurchaseWithCustomerDTO, error) {
	purchases, err := p.ledger.FindAllWithCustomer(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PurchaseWithCustomerDTO, 0, len(purchases))
	for _, pwc := range purchases {
		result = append(result, dto.PurchaseWithCustomerDTO{
			ID:          pwc.ID,
			PurchasedAt: pwc.PurchasedAt,
			Customer: dto.CustomerDTO{
				ID:    pwc.Customer.ID,
				Name:  pwc.Customer.Name,
				Email: pwc.Customer.Email,
			},
			Lines: toLineDTOs(pwc.Lines),
			Total: pwc.Total,
		})
	}
	return result, nil
}

// ProjectInvoice loads one purchase with its purchaser identity. A
// cliente caller may only see their own purchases; admins see all.
func (p *Projector) ProjectInvoice(ctx context.Context, purchaseID int, requesterID int, requesterRole string) (*dto.InvoiceDTO, error) {
	pwc, err := p.ledger.FindByIDWithCustomer(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	if requesterRole == domain.RoleCliente && pwc.UserID != requesterID {
		p.logger.Warn("invoice access denied",
			zap.Int("purchaseId", purchaseID), zap.Int("requesterId", requesterID))
		return nil, apperrors.NewForbiddenError("you are not allowed to view this invoice")
	}

	// The stored total is checked against the lines, not assumed.
	if !pwc.Total.Equal(pwc.LinesTotal()) {
		p.logger.Error("purchase total does not match line subtotals",
			zap.Int("purchaseId", purchaseID),
			zap.String("total", pwc.Total.StringFixed(2)),
			zap.String("linesTotal", pwc.LinesTotal().StringFixed(2)))
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("purchase %d has inconsistent totals", purchaseID), nil)
	}

	return &dto.InvoiceDTO{
		ID:          pwc.ID,
		PurchasedAt: pwc.PurchasedAt,
		Customer: dto.CustomerDTO{
			Name:  pwc.Customer.Name,
			Email: pwc.Customer.Email,
		},
		Lines: toLineDTOs(pwc.Lines),
		Total: pwc.Total,
	}, nil
}

func toPurchaseDTO(p domain.Purchase) dto.PurchaseDTO {
	return dto.PurchaseDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		PurchasedAt: p.PurchasedAt,
		Total:       p.Total,
		Lines:       toLineDTOs(p.Lines),
	}
}

func toLineDTOs(lines []domain.PurchaseLine) []dto.PurchaseLineDTO {
	result := make([]dto.PurchaseLineDTO, 0, len(lines))
	for _, line := range lines {
		result = append(result, dto.PurchaseLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			LotNumber:   line.LotNumber,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal,
		})
	}
	return result
}
