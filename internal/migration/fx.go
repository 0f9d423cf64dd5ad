package migration

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/storeops/salescore/internal/catalog/domain"
	"github.com/storeops/salescore/internal/config"
	customerdomain "github.com/storeops/salescore/internal/customer/domain"
	employeedomain "github.com/storeops/salescore/internal/employee/domain"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	"github.com/storeops/salescore/internal/seed"
	sequencedomain "github.com/storeops/salescore/internal/sequence/domain"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Versioned migrations ship for postgres only; other dialects
			// get the gorm schema directly.
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&catalogdomain.StockMovement{},
				&customerdomain.Customer{},
				&storedomain.Store{},
				&employeedomain.Employee{},
				&saledomain.Sale{},
				&saledomain.SaleLine{},
				&sequencedomain.Counter{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDefaultStore {
			return seed.EnsureDefaultStore(conn, genID)
		}
		return nil
	}),
)
