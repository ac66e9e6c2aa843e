package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/infrastructure/kafka"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("broadcast-workers",
	fx.Provide(NewIngestHandler),
	fx.Invoke(registerIngestConsumer),
)

// registerIngestConsumer starts the ingest consumer when Kafka is enabled
func registerIngestConsumer(lc fx.Lifecycle, cfg *config.KafkaConfig, handler *IngestHandler, logger zerolog.Logger) {
	if !cfg.Enabled {
		return
	}

	consumer := kafka.NewConsumer(
		cfg,
		cfg.TopicBroadcastIngested,
		handler.Handle,
		logger.With().Str("component", "ingest-consumer").Logger(),
	)

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			consumer.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return consumer.Stop()
		},
	})
}
