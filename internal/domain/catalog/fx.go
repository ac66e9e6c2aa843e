// Package catalog contains the catalog scraper domain module
package catalog

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/deps"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/repository/postgres"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/repository/site"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/usecase/ingest"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/workers"
	"github.com/RaShaimardanov/franky/internal/infrastructure/kafka"
	"github.com/RaShaimardanov/franky/internal/infrastructure/metrics"
	"github.com/RaShaimardanov/franky/internal/infrastructure/storage"
)

var providers = fx.Options(
	// Repository
	fx.Provide(postgres.NewCatalogRepository),
	fx.Provide(provideSite),
	fx.Provide(func(store storage.Store) deps.FileSaver { return store }),
	fx.Provide(func(p *kafka.Producer) deps.EventProducer { return p }),
	fx.Provide(func(m *metrics.Metrics) deps.IngestMetrics { return m }),

	// UseCase
	fx.Provide(provideUseCase),
)

// Module provides the catalog ingest and schedules it when SCRAPER_SCHEDULE is set
var Module = fx.Module("catalog",
	providers,
	fx.Invoke(registerScheduler),
)

// RunOnceModule runs one ingest after start and shuts the application down
var RunOnceModule = fx.Module("catalog-once",
	providers,
	fx.Invoke(registerRunOnce),
)

func provideSite(cfg *config.ScraperConfig, logger zerolog.Logger) deps.Site {
	client := &http.Client{Timeout: cfg.Timeout}
	return site.NewClient(client, cfg.StartURL, logger.With().Str("component", "catalog-site").Logger())
}

func provideUseCase(
	s deps.Site,
	repo deps.CatalogRepository,
	files deps.FileSaver,
	producer deps.EventProducer,
	m deps.IngestMetrics,
	cfg *config.ScraperConfig,
	logger zerolog.Logger,
) *ingest.UseCase {
	return ingest.NewUseCase(s, repo, files, producer, m, cfg, logger.With().Str("component", "catalog-ingest").Logger())
}

func registerScheduler(lc fx.Lifecycle, cfg *config.ScraperConfig, uc *ingest.UseCase, logger zerolog.Logger) error {
	if cfg.Schedule == "" {
		return nil
	}

	scheduler, err := workers.NewScheduler(cfg.Schedule, uc, logger.With().Str("component", "catalog-scheduler").Logger())
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return scheduler.Stop(ctx)
		},
	})
	return nil
}

func registerRunOnce(lc fx.Lifecycle, shutdowner fx.Shutdowner, uc *ingest.UseCase, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)

				exitCode := 0
				if _, err := uc.Run(ctx); err != nil {
					logger.Error().Err(err).Msg("Catalog ingest failed")
					exitCode = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Error().Err(err).Msg("Failed to shut down after ingest")
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
