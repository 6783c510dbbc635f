// Package cli provides the cobra-based bodegactl admin tool.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bodega/internal/auth"
	authrepo "bodega/internal/auth/repository"
	"bodega/internal/config"
	"bodega/internal/domain"
	apperrors "bodega/internal/errors"
	"bodega/internal/infrastructure/logger"
	"bodega/internal/infrastructure/mysql"
	productrepo "bodega/internal/product/repository"
)

var (
	cfg       *config.Config
	zapLogger *zap.Logger
	db        *sql.DB

	rootCmd = &cobra.Command{
		Use:   "bodegactl",
		Short: "Admin tool for the bodega inventory API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}

			zapLogger, err = logger.New(cfg.Log.Level)
			if err != nil {
				return err
			}

			db, err = mysql.NewConnection(cfg.Database)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			if zapLogger != nil {
				zapLogger.Sync()
			}
		},
	}
)

func init() {
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verify database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Ping(); err != nil {
				return err
			}
			fmt.Println("database reachable")
			return nil
		},
	}
	rootCmd.AddCommand(pingCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context())
		},
	}
	rootCmd.AddCommand(seedCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

type seedUser struct {
	name     string
	email    string
	password string
	role     string
}

type seedProduct struct {
	lotNumber string
	name      string
	unitPrice string
	quantity  int
	entryDate string
}

var seedUsers = []seedUser{
	{"Administrador Principal", "admin@inventario.com", "123456", domain.RoleAdmin},
	{"Maria Garcia", "maria@cliente.com", "123456", domain.RoleCliente},
	{"Carlos Lopez", "carlos@cliente.com", "123456", domain.RoleCliente},
}

var seedProducts = []seedProduct{
	{"LOT-2025-001", "Laptop Dell Inspiron 15", "1200.00", 15, "2025-11-01"},
	{"LOT-2025-002", "Mouse Logitech MX Master 3", "99.99", 50, "2025-11-05"},
	{"LOT-2025-003", "Teclado Mecanico Corsair K70", "159.99", 30, "2025-11-08"},
	{"LOT-2025-004", "Monitor Samsung 27 4K", "450.00", 20, "2025-11-10"},
	{"LOT-2025-005", "Auriculares Sony WH-1000XM5", "350.00", 25, "2025-11-12"},
	{"LOT-2025-006", "Webcam Logitech Brio 4K", "199.99", 40, "2025-11-15"},
	{"LOT-2025-007", "SSD Samsung 970 EVO 1TB", "120.00", 60, "2025-11-18"},
	{"LOT-2025-008", "Hub USB-C 7 puertos", "45.00", 35, "2025-11-20"},
	{"LOT-2025-009", "Silla Ergonomica Herman Miller", "800.00", 10, "2025-11-22"},
	{"LOT-2025-010", "Desk Lamp LED Xiaomi", "35.00", 45, "2025-11-25"},
}

// seed inserts demo rows, skipping any that already exist so the
// command can be re-run safely.
func seed(ctx context.Context) error {
	userRepo := authrepo.NewMySQLUserRepository(db)
	catalogRepo := productrepo.NewMySQLRepository(db)

	for _, u := range seedUsers {
		hash, err := auth.HashPassword(u.password, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}

		_, err = userRepo.Insert(ctx, domain.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
		})
		if err != nil {
			if _, ok := apperrors.IsConflictError(err); ok {
				zapLogger.Info("user already exists, skipping", zap.String("email", u.email))
				continue
			}
			return err
		}
		zapLogger.Info("user seeded", zap.String("email", u.email), zap.String("role", u.role))
	}

	for _, p := range seedProducts {
		price, err := decimal.NewFromString(p.unitPrice)
		if err != nil {
			return err
		}

		entryDate, err := time.Parse("2006-01-02", p.entryDate)
		if err != nil {
			return err
		}

		_, err = catalogRepo.Insert(ctx, domain.Product{
			LotNumber:         p.lotNumber,
			Name:              p.name,
			UnitPrice:         price,
			AvailableQuantity: p.quantity,
			EntryDate:         entryDate,
		})
		if err != nil {
			if _, ok := apperrors.IsConflictError(err); ok {
				zapLogger.Info("product already exists, skipping", zap.String("lotNumber", p.lotNumber))
				continue
			}
			return err
		}
		zapLogger.Info("product seeded", zap.String("lotNumber", p.lotNumber), zap.String("name", p.name))
	}

	fmt.Println("seed completed")
	return nil
}
