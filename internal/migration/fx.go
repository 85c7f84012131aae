package migration

import (
	auditdomain "github.com/kasirhq/kasira/internal/audit/domain"
	"github.com/kasirhq/kasira/internal/config"
	receiptdomain "github.com/kasirhq/kasira/internal/receipt/domain"
	"github.com/kasirhq/kasira/internal/seed"
	txndomain "github.com/kasirhq/kasira/internal/transaction/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are development conveniences; gorm derives
			// the schema from the models there.
			if err := conn.AutoMigrate(
				&txndomain.Transaction{},
				&txndomain.TransactionItem{},
				&txndomain.Payment{},
				&receiptdomain.Receipt{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
