package migration

import (
	"github.com/smallbiznis/ratecard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

// Run migrates postgres with the embedded SQL files and every other
// dialect with gorm's AutoMigrate.
func Run(conn *gorm.DB, cfg db.Config, log *zap.Logger) error {
	log = log.Named("migration")

	if cfg.Type == db.TypePostgres || cfg.Type == "" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("postgres migrations applied")
		return nil
	}

	if err := AutoMigrate(conn); err != nil {
		return err
	}
	log.Info("schema auto migrated", zap.String("dialect", cfg.Type))
	return nil
}
