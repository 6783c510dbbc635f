package purchase

import (
	"database/sql"

	"go.uber.org/zap"

	"bodega/internal/config"
	"bodega/internal/product"
	productrepo "bodega/internal/product/repository"
	"bodega/internal/purchase/controller"
	purchaserepo "bodega/internal/purchase/repository"
	"bodega/internal/purchase/service"
	"bodega/internal/purchase/usecase"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.Controller {
	// The checkout core consumes the catalog through its StockAccessor
	// contract, not the concrete repository.
	var stockRepo product.StockAccessor = productrepo.NewMySQLRepository(db)
	purchaseRepo := purchaserepo.NewMySQLPurchaseRepository(db)
	lineRepo := purchaserepo.NewMySQLPurchaseLineRepository(db)

	checkoutSvc := service.NewCheckoutService(
		db,
		stockRepo,
		purchaseRepo,
		lineRepo,
		logger,
		cfg.Purchase.TxTimeout,
	)

	checkoutUC := usecase.NewCheckoutUseCase(checkoutSvc, logger, cfg.Purchase.MaxRetryAttempts)
	projector := usecase.NewProjector(purchaseRepo, logger)

	return controller.NewController(checkoutUC, projector, logger)
}
