// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/internal/infrastructure/database"
	"github.com/RaShaimardanov/franky/internal/infrastructure/http"
	"github.com/RaShaimardanov/franky/internal/infrastructure/kafka"
	"github.com/RaShaimardanov/franky/internal/infrastructure/logger"
	"github.com/RaShaimardanov/franky/internal/infrastructure/metrics"
	"github.com/RaShaimardanov/franky/internal/infrastructure/redis"
	"github.com/RaShaimardanov/franky/internal/infrastructure/storage"
	"github.com/RaShaimardanov/franky/internal/infrastructure/telegram"
)

// Module provides all infrastructure components of the bot for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
	storage.Module,
	redis.Module,
	kafka.Module,
	metrics.Module,
	http.Module,
	telegram.Module,
)

// ScraperModule provides the infrastructure the catalog scraper needs
var ScraperModule = fx.Module("scraper-infrastructure",
	logger.Module,
	database.Module,
	storage.Module,
	kafka.Module,
	metrics.Module,
)
