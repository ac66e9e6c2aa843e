// Package app contains application bootstrap
package app

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain"
	"github.com/RaShaimardanov/franky/internal/infrastructure"
)

// CreateApp creates the bot fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, database, storage, redis, kafka, metrics, http, telegram bot)
		infrastructure.Module,

		// Domain (broadcast delivery, scheduled catalog ingest)
		domain.Module,
	)
}

// CreateScraperApp creates the one-shot catalog scraper application
func CreateScraperApp() fx.Option {
	return fx.Options(
		fx.Provide(config.OutScraper),
		infrastructure.ScraperModule,
		domain.ScraperModule,
	)
}

// EventLogger routes fx lifecycle events through the application logger
func EventLogger() fx.Option {
	return fx.WithLogger(newEventLogger)
}

func newEventLogger(logger zerolog.Logger) fxevent.Logger {
	return &fxEventLogger{logger: logger.With().Str("component", "fx").Logger()}
}

type fxEventLogger struct {
	logger zerolog.Logger
}

func (l *fxEventLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("OnStart hook failed")
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("OnStop hook failed")
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Str("function", e.FunctionName).Msg("Invoke failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Msg("Application start failed")
		} else {
			l.logger.Info().Msg("Application started")
		}
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error().Err(e.Err).Msg("Application stop failed")
		}
	}
}
