package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/RaShaimardanov/franky/config"
)

// Module provides database connection for fx dependency injection
var Module = fx.Module("database",
	fx.Provide(NewDBFx),
)

// NewDBFx opens the database, migrates it and closes it on stop
func NewDBFx(
	lc fx.Lifecycle,
	cfg *config.DatabaseConfig,
	logger zerolog.Logger,
) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}
	logger.Info().Str("driver", cfg.Driver).Msg("Database migrations completed successfully")

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				logger.Error().Err(err).Msg("Failed to get underlying sql.DB")
				return err
			}
			logger.Info().Msg("Closing database connection")
			return sqlDB.Close()
		},
	})

	logger.Info().
		Str("driver", cfg.Driver).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Msg("Database connected")

	return db, nil
}
