package migration

import (
	"github.com/smallbiznis/rentora/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBMigrateOnStart {
			log.Info("skipping migrations on start")
			return nil
		}
		return Migrate(conn)
	}),
)
