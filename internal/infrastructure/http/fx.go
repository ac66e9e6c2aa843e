// Package http wires the metrics and health server
package http

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/infrastructure/http/server"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
	fx.Invoke(func(*server.Server) {}),
)

// ServerParams holds the components probed by /health
type ServerParams struct {
	fx.In

	LC         fx.Lifecycle
	ServiceCfg *config.ServiceConfig
	DB         *gorm.DB
	Redis      *goredis.Client `optional:"true"`
	Logger     zerolog.Logger
}

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(p ServerParams) *server.Server {
	srv := server.NewServer(p.ServiceCfg.Name, p.ServiceCfg.Port, p.Logger)

	srv.RegisterMetrics()
	srv.RegisterHealth(server.NewHealthHandler(p.Logger, healthChecks(p.DB, p.Redis)...))

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

func healthChecks(db *gorm.DB, redis *goredis.Client) []server.Check {
	checks := []server.Check{{
		Name:     "database",
		Critical: true,
		Probe: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}

	if redis != nil {
		checks = append(checks, server.Check{
			Name: "redis",
			Probe: func(ctx context.Context) error {
				return redis.Ping(ctx).Err()
			},
		})
	}

	return checks
}
