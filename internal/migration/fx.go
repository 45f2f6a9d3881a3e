package migration

import (
	"github.com/andreasgmg/fornet/internal/config"
	"github.com/andreasgmg/fornet/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if err := Run(conn); err != nil {
			return err
		}
		log.Info("database schema up to date")

		if cfg.SeedDemo {
			return seed.EnsureDemo(conn, log)
		}
		return nil
	}),
)
