// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

// Module provides Telegram bot for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(provideBot),
	fx.Invoke(registerLifecycle),
)

// provideBot creates Telegram bot from config
func provideBot(cfg *config.TelegramConfig, texts *i18n.Catalog, logger zerolog.Logger) (*Bot, error) {
	return NewBot(cfg.BotToken, texts.Get("info.use_commands"), logger)
}

// registerLifecycle registers bot lifecycle hooks
func registerLifecycle(lc fx.Lifecycle, bot *Bot) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Start is blocking
			go func() {
				_ = bot.Start(ctx)
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cancel != nil {
				cancel()
			}
			return bot.Stop()
		},
	})
}
