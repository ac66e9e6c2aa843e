package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
)

// Module provides the configured audio Store
var Module = fx.Module("storage",
	fx.Provide(NewStoreFx),
)

// NewStoreFx builds the store for the configured backend
func NewStoreFx(lc fx.Lifecycle, cfg *config.StorageConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		logger.Info().Str("dir", cfg.Dir).Msg("Using local audio storage")
		return NewLocalStore(cfg.Dir)

	case BackendS3:
		store, err := NewS3Store(cfg, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				logger.Info().Str("bucket", cfg.S3Bucket).Msg("Initializing S3 audio storage...")
				return store.EnsureBucket(ctx)
			},
		})
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
