// Package broadcast contains the broadcast bot domain module
package broadcast

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/RaShaimardanov/franky/config"
	telegramDelivery "github.com/RaShaimardanov/franky/internal/domain/broadcast/delivery/telegram"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/repository/memory"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/repository/postgres"
	redisRepo "github.com/RaShaimardanov/franky/internal/domain/broadcast/repository/redis"
	telegramRepo "github.com/RaShaimardanov/franky/internal/domain/broadcast/repository/telegram"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/usecase/audio"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/usecase/buissines"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/workers"
	"github.com/RaShaimardanov/franky/internal/infrastructure/kafka"
	"github.com/RaShaimardanov/franky/internal/infrastructure/metrics"
	"github.com/RaShaimardanov/franky/internal/infrastructure/storage"
	"github.com/RaShaimardanov/franky/internal/infrastructure/telegram"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

const menuTimeout = 10 * time.Second

// Module provides broadcast domain components for fx dependency injection
var Module = fx.Module("broadcast",
	fx.Provide(provideTexts),

	// Repository
	fx.Provide(
		postgres.NewBroadcastRepository,
		postgres.NewUserRepository,
		postgres.NewFavouriteRepository,
		postgres.NewDeliveryRepository,
	),
	fx.Provide(provideStores),
	fx.Provide(provideFileStore),
	fx.Provide(provideTransport),
	fx.Provide(provideNotifier),

	// UseCase
	fx.Provide(provideSender),
	fx.Provide(audio.NewService),
	fx.Provide(provideUseCase),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	fx.Invoke(registerRoutes),
)

func provideTexts(cfg *config.DeliveryConfig) (*i18n.Catalog, error) {
	return i18n.Load(cfg.Locale)
}

// provideStores picks Redis backed state when Redis is configured and process memory otherwise
func provideStores(cfg *config.DeliveryConfig, client *goredis.Client, logger zerolog.Logger) buissines.Stores {
	if client != nil {
		logger.Info().Msg("Using Redis for listen state and rate limiting")
		return buissines.Stores{
			Listen: redisRepo.NewListenStateRepo(client, cfg.ListenStateTTL),
			Rate:   redisRepo.NewRateWindowRepo(client),
		}
	}

	logger.Info().Msg("Using in-memory listen state and rate limiting")
	store := memory.NewStore(cfg.ListenStateTTL)
	return buissines.Stores{Listen: store, Rate: store}
}

func provideFileStore(store storage.Store) deps.FileStore {
	return store
}

func provideTransport(bot *telegram.Bot, texts *i18n.Catalog, logger zerolog.Logger) deps.AudioTransport {
	return telegramRepo.NewAudioTransport(bot.Raw(), texts, logger.With().Str("component", "audio-transport").Logger())
}

func provideNotifier(bot *telegram.Bot, cfg *config.TelegramConfig, logger zerolog.Logger) deps.OperatorNotifier {
	return telegramRepo.NewOperatorNotifier(bot.Raw(), cfg.AdminChatID, logger)
}

func provideSender(
	transport deps.AudioTransport,
	files deps.FileStore,
	notifier deps.OperatorNotifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *audio.Sender {
	return audio.NewSender(transport, files, notifier, m, logger.With().Str("component", "audio-sender").Logger())
}

// useCaseParams collects UseCase dependencies from the container
type useCaseParams struct {
	fx.In

	Users      deps.UserRepository
	Broadcasts deps.BroadcastRepository
	Favourites deps.FavouriteRepository
	Deliveries deps.DeliveryRepository
	Audio      *audio.Service
	Stores     buissines.Stores
	Producer   *kafka.Producer
	Metrics    *metrics.Metrics
	Texts      *i18n.Catalog
	Config     *config.DeliveryConfig
	Logger     zerolog.Logger
}

func provideUseCase(p useCaseParams) *buissines.UseCase {
	return buissines.NewUseCase(buissines.Params{
		Users:      p.Users,
		Broadcasts: p.Broadcasts,
		Favourites: p.Favourites,
		Deliveries: p.Deliveries,
		Audio:      p.Audio,
		Stores:     p.Stores,
		Producer:   p.Producer,
		Metrics:    p.Metrics,
		Texts:      p.Texts,
		Config:     p.Config,
		Logger:     p.Logger,
	})
}

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(uc *buissines.UseCase, bot *telegram.Bot, logger zerolog.Logger) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, bot.Raw(), logger)
}

// registerRoutes registers handlers and publishes the command menu once the app starts
func registerRoutes(lc fx.Lifecycle, router *telegramDelivery.Router, bot *telegram.Bot, logger zerolog.Logger) {
	router.RegisterRoutes(bot.Raw())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ctx, cancel := context.WithTimeout(context.Background(), menuTimeout)
			defer cancel()

			// the bot still works without the menu
			if err := router.RegisterMenu(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to register command menu")
			}
			return nil
		},
	})
}
