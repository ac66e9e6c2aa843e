// Package redis contains the Redis client infrastructure
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
)

// Module provides the Redis client; it is nil when REDIS_ADDR is empty
var Module = fx.Module("redis",
	fx.Provide(NewClientFx),
)

// NewClientFx creates a Redis client, pings it on start and closes it on stop
func NewClientFx(lc fx.Lifecycle, cfg *config.RedisConfig, logger zerolog.Logger) *goredis.Client {
	if cfg.Addr == "" {
		logger.Info().Msg("Redis not configured, using in-memory state")
		return nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
			}
			logger.Info().Str("addr", cfg.Addr).Msg("Redis connected")
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info().Msg("Closing Redis connection")
			return client.Close()
		},
	})

	return client
}
