// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast"
	"github.com/RaShaimardanov/franky/internal/domain/catalog"
)

// Module aggregates the bot domain modules for fx dependency injection
var Module = fx.Module("domain",
	broadcast.Module,
	catalog.Module,
)

// ScraperModule runs a single catalog ingest
var ScraperModule = fx.Module("scraper-domain",
	catalog.RunOnceModule,
)
