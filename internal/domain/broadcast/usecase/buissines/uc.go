// Package buissines contains business logic for the broadcast bot
package buissines

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/config"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/dto"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
	pkgerrors "github.com/RaShaimardanov/franky/pkg/errors"
	"github.com/RaShaimardanov/franky/pkg/events"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

// Show outcomes reported to metrics
const (
	ShowDelivered   = "delivered"
	ShowExhausted   = "exhausted"
	ShowEmpty       = "empty"
	ShowRateLimited = "rate_limited"
	ShowError       = "error"
)

const showRateWindow = time.Minute

// Stores groups the optional state stores of the use case
type Stores struct {
	Listen deps.ListenStateStore
	Rate   deps.RateWindowStore
}

// UseCase contains business logic for bot operations
type UseCase struct {
	users      deps.UserRepository
	broadcasts deps.BroadcastRepository
	favourites deps.FavouriteRepository
	deliveries deps.DeliveryRepository
	audio      deps.AudioDeliverer
	stores     Stores
	producer   deps.DeliveryEventProducer
	metrics    deps.DeliveryMetrics
	texts      *i18n.Catalog
	cfg        *config.DeliveryConfig
	logger     zerolog.Logger
}

// Params holds UseCase dependencies
type Params struct {
	Users      deps.UserRepository
	Broadcasts deps.BroadcastRepository
	Favourites deps.FavouriteRepository
	Deliveries deps.DeliveryRepository
	Audio      deps.AudioDeliverer
	Stores     Stores
	Producer   deps.DeliveryEventProducer
	Metrics    deps.DeliveryMetrics
	Texts      *i18n.Catalog
	Config     *config.DeliveryConfig
	Logger     zerolog.Logger
}

// NewUseCase creates a new UseCase instance
func NewUseCase(p Params) *UseCase {
	return &UseCase{
		users:      p.Users,
		broadcasts: p.Broadcasts,
		favourites: p.Favourites,
		deliveries: p.Deliveries,
		audio:      p.Audio,
		stores:     p.Stores,
		producer:   p.Producer,
		metrics:    p.Metrics,
		texts:      p.Texts,
		cfg:        p.Config,
		logger:     p.Logger,
	}
}

// Texts returns the message catalog used for replies
func (uc *UseCase) Texts() *i18n.Catalog {
	return uc.texts
}

// HandleStart registers the user and returns the greeting
func (uc *UseCase) HandleStart(ctx context.Context, req dto.UserRequest) (*dto.CommandResponse, error) {
	user, err := uc.ensureUser(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.logger.Info().
		Int64("user_id", user.ID).
		Int64("telegram_id", user.TelegramID).
		Msg("User started bot")

	return &dto.CommandResponse{Message: uc.texts.Get("cmd.start")}, nil
}

// HandleHelp returns the help text
func (uc *UseCase) HandleHelp(ctx context.Context) (*dto.CommandResponse, error) {
	return &dto.CommandResponse{Message: uc.texts.Get("cmd.help")}, nil
}

// HandleShow picks random broadcasts until one is delivered or the attempt budget runs out
func (uc *UseCase) HandleShow(ctx context.Context, req dto.UserRequest) (*dto.ShowResponse, error) {
	user, err := uc.ensureUser(ctx, req)
	if err != nil {
		uc.metrics.RecordShow(ShowError, 0)
		return nil, err
	}

	if wait, limited := uc.rateLimited(ctx, user); limited {
		uc.metrics.RecordShow(ShowRateLimited, 0)
		seconds := int(math.Ceil(wait.Seconds()))
		return &dto.ShowResponse{Message: uc.texts.Get("info.rate_limited", seconds)}, nil
	}

	log := uc.logger.With().Int64("user_id", user.ID).Logger()
	maxAttempts := uc.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	tried := make([]int64, 0, maxAttempts)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		broadcast, err := uc.broadcasts.GetRandom(ctx, tried)
		if err != nil {
			if errors.Is(err, broadcasterrors.ErrBroadcastNotFound) {
				break
			}
			uc.metrics.RecordShow(ShowError, attempt)
			log.Error().Err(err).Msg("Failed to pick random broadcast")
			return nil, err
		}
		tried = append(tried, broadcast.ID)

		delivered, err := uc.audio.Deliver(ctx, user, broadcast)
		if err != nil {
			uc.metrics.RecordShow(ShowError, attempt)
			log.Error().
				Err(err).
				Str("error_type", pkgerrors.TypeOf(err).String()).
				Int64("broadcast_id", broadcast.ID).
				Msg("Delivery failed")
			return nil, err
		}
		if delivered == nil {
			uc.publishFailed(ctx, user, broadcast, attempt)
			continue
		}

		uc.afterDelivery(ctx, user, broadcast, delivered, attempt)
		uc.metrics.RecordShow(ShowDelivered, attempt)
		return &dto.ShowResponse{
			Delivered:   true,
			BroadcastID: broadcast.ID,
			Attempts:    attempt,
		}, nil
	}

	outcome := ShowExhausted
	if len(tried) == 0 {
		outcome = ShowEmpty
	}
	uc.metrics.RecordShow(outcome, len(tried))
	log.Warn().Int("attempts", len(tried)).Str("outcome", outcome).Msg("No broadcast delivered")

	return &dto.ShowResponse{
		Attempts: len(tried),
		Message:  uc.texts.Get("info.no_broadcasts"),
	}, nil
}

// HandleSettings returns the settings screen for the user
func (uc *UseCase) HandleSettings(ctx context.Context, req dto.UserRequest) (*dto.SettingsResponse, error) {
	user, err := uc.ensureUser(ctx, req)
	if err != nil {
		return nil, err
	}

	return &dto.SettingsResponse{
		Message:      uc.texts.Get("cmd.settings"),
		ShowRoleName: user.ShowRoleName,
	}, nil
}

// SetShowRoleName stores the role name preference
func (uc *UseCase) SetShowRoleName(ctx context.Context, req dto.SetShowRoleNameRequest) (*dto.SettingsResponse, error) {
	user, err := uc.ensureUser(ctx, req.User)
	if err != nil {
		return nil, err
	}

	if err := uc.users.SetShowRoleName(ctx, user.ID, req.Value); err != nil {
		uc.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to save settings")
		return nil, err
	}

	if req.Value {
		uc.clearListen(ctx, user.ID)
	}

	uc.logger.Info().
		Int64("user_id", user.ID).
		Bool("show_role_name", req.Value).
		Msg("Settings updated")

	return &dto.SettingsResponse{
		Message:      uc.texts.Get("settings.saved"),
		ShowRoleName: req.Value,
	}, nil
}

// HandleGuess checks a free text answer against the broadcast the user listens to
func (uc *UseCase) HandleGuess(ctx context.Context, req dto.GuessRequest) (*dto.CommandResponse, error) {
	if uc.stores.Listen == nil {
		return &dto.CommandResponse{Message: uc.texts.Get("info.use_commands")}, nil
	}

	user, err := uc.ensureUser(ctx, req.User)
	if err != nil {
		return nil, err
	}

	broadcastID, err := uc.stores.Listen.Current(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, broadcasterrors.ErrListenStateMissing) {
			uc.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to read listen state")
		}
		return &dto.CommandResponse{Message: uc.texts.Get("info.use_commands")}, nil
	}

	broadcast, err := uc.broadcasts.GetByID(ctx, broadcastID)
	if err != nil {
		if errors.Is(err, broadcasterrors.ErrBroadcastNotFound) {
			uc.clearListen(ctx, user.ID)
			return &dto.CommandResponse{Message: uc.texts.Get("info.use_commands")}, nil
		}
		return nil, err
	}

	if !GuessMatches(req.Text, broadcast.RoleName) {
		return &dto.CommandResponse{Message: uc.texts.Get("guess.wrong")}, nil
	}

	uc.clearListen(ctx, user.ID)
	uc.logger.Info().
		Int64("user_id", user.ID).
		Int64("broadcast_id", broadcast.ID).
		Msg("Role guessed")

	return &dto.CommandResponse{Message: uc.texts.Get("guess.right")}, nil
}

// GuessMatches reports whether the answer is part of the role name, ignoring case and surrounding spaces
func GuessMatches(answer, roleName string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	if answer == "" || roleName == "" {
		return false
	}
	return strings.Contains(roleName, answer)
}

// ToggleFavourite adds the broadcast to favourites or removes it when already there
func (uc *UseCase) ToggleFavourite(ctx context.Context, req dto.FavouriteRequest) (*dto.FavouriteResponse, error) {
	user, err := uc.ensureUser(ctx, req.User)
	if err != nil {
		return nil, err
	}

	if _, err := uc.broadcasts.GetByID(ctx, req.BroadcastID); err != nil {
		if errors.Is(err, broadcasterrors.ErrBroadcastNotFound) {
			return &dto.FavouriteResponse{Message: uc.texts.Get("favourites.not_found")}, nil
		}
		return nil, err
	}

	exists, err := uc.favourites.Exists(ctx, user.ID, req.BroadcastID)
	if err != nil {
		return nil, err
	}

	return uc.setFavourite(ctx, user.ID, req.BroadcastID, !exists)
}

// ReactionChanged adds a favourite when a reaction appears on a delivered audio and removes it when reactions are cleared
func (uc *UseCase) ReactionChanged(ctx context.Context, req dto.ReactionRequest) (*dto.FavouriteResponse, error) {
	delivery, err := uc.deliveries.GetByMessage(ctx, req.User.ChatID, req.MessageID)
	if err != nil {
		if errors.Is(err, broadcasterrors.ErrDeliveryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := uc.ensureUser(ctx, req.User)
	if err != nil {
		return nil, err
	}

	return uc.setFavourite(ctx, user.ID, delivery.BroadcastID, req.HasReaction)
}

func (uc *UseCase) setFavourite(ctx context.Context, userID, broadcastID int64, add bool) (*dto.FavouriteResponse, error) {
	log := uc.logger.With().
		Int64("user_id", userID).
		Int64("broadcast_id", broadcastID).
		Logger()

	if add {
		created, err := uc.favourites.Add(ctx, userID, broadcastID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to add favourite")
			return nil, err
		}
		if !created {
			return &dto.FavouriteResponse{Message: uc.texts.Get("favourites.already"), Added: true}, nil
		}
		log.Info().Msg("Favourite added")
		return &dto.FavouriteResponse{Message: uc.texts.Get("favourites.added"), Added: true, Changed: true}, nil
	}

	removed, err := uc.favourites.Remove(ctx, userID, broadcastID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to remove favourite")
		return nil, err
	}
	if removed {
		log.Info().Msg("Favourite removed")
	}
	return &dto.FavouriteResponse{Message: uc.texts.Get("favourites.removed"), Changed: removed}, nil
}

// ListFavourites returns the user's favourites, labelled according to the role name preference
func (uc *UseCase) ListFavourites(ctx context.Context, req dto.UserRequest) (*dto.FavouriteListResponse, error) {
	user, err := uc.ensureUser(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := uc.favourites.ListBroadcasts(ctx, user.ID)
	if err != nil {
		uc.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list favourites")
		return nil, err
	}

	if len(items) == 0 {
		return &dto.FavouriteListResponse{Message: uc.texts.Get("favourites.empty")}, nil
	}

	result := make([]dto.FavouriteItem, len(items))
	for i := range items {
		label := uc.texts.Get("favourites.item_hidden", items[i].ID)
		if user.ShowRoleName {
			label = uc.texts.Get("favourites.item_named", items[i].RoleName)
		}
		result[i] = dto.FavouriteItem{BroadcastID: items[i].ID, Label: label}
	}

	return &dto.FavouriteListResponse{
		Message: uc.texts.Get("favourites.header"),
		Items:   result,
	}, nil
}

// PlayFavourite delivers one specific broadcast
func (uc *UseCase) PlayFavourite(ctx context.Context, req dto.FavouriteRequest) (*dto.ShowResponse, error) {
	user, err := uc.ensureUser(ctx, req.User)
	if err != nil {
		return nil, err
	}

	broadcast, err := uc.broadcasts.GetByID(ctx, req.BroadcastID)
	if err != nil {
		if errors.Is(err, broadcasterrors.ErrBroadcastNotFound) {
			return &dto.ShowResponse{Message: uc.texts.Get("favourites.not_found")}, nil
		}
		return nil, err
	}

	delivered, err := uc.audio.Deliver(ctx, user, broadcast)
	if err != nil {
		return nil, err
	}
	if delivered == nil {
		uc.publishFailed(ctx, user, broadcast, 1)
		return &dto.ShowResponse{Attempts: 1, Message: uc.texts.Get("info.error")}, nil
	}

	uc.afterDelivery(ctx, user, broadcast, delivered, 1)
	return &dto.ShowResponse{Delivered: true, BroadcastID: broadcast.ID, Attempts: 1}, nil
}

func (uc *UseCase) ensureUser(ctx context.Context, req dto.UserRequest) (*entities.User, error) {
	if req.TelegramID == 0 {
		return nil, broadcasterrors.ErrInvalidUser
	}

	user, err := uc.users.Upsert(ctx, &entities.User{
		TelegramID: req.TelegramID,
		Username:   optional(req.Username),
		FirstName:  optional(req.FirstName),
		LastName:   optional(req.LastName),
	})
	if err != nil {
		uc.logger.Error().Err(err).Int64("telegram_id", req.TelegramID).Msg("Failed to upsert user")
		return nil, err
	}
	return user, nil
}

// rateLimited counts the request in the user's window and reports the wait when over the limit.
// Store failures let the request through.
func (uc *UseCase) rateLimited(ctx context.Context, user *entities.User) (time.Duration, bool) {
	if uc.stores.Rate == nil || uc.cfg.ShowRatePerMinute <= 0 {
		return 0, false
	}

	key := fmt.Sprintf("rate:show:%d", user.TelegramID)
	count, ttl, err := uc.stores.Rate.IncrementWindow(ctx, key, showRateWindow)
	if err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("Rate window unavailable")
		return 0, false
	}

	if count > int64(uc.cfg.ShowRatePerMinute) {
		if ttl <= 0 {
			ttl = showRateWindow
		}
		uc.logger.Info().Int64("user_id", user.ID).Int64("count", count).Msg("Show rate limited")
		return ttl, true
	}
	return 0, false
}

func (uc *UseCase) afterDelivery(ctx context.Context, user *entities.User, broadcast *entities.Broadcast, delivered *entities.DeliveredAudio, attempt int) {
	log := uc.logger.With().
		Int64("user_id", user.ID).
		Int64("broadcast_id", broadcast.ID).
		Logger()

	if err := uc.deliveries.Save(ctx, &entities.Delivery{
		ChatID:      delivered.ChatID,
		MessageID:   delivered.MessageID,
		BroadcastID: broadcast.ID,
		UserID:      user.ID,
		Uploaded:    delivered.Uploaded,
		DeliveredAt: time.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to save delivery record")
	}

	if uc.stores.Listen != nil {
		if user.ShowRoleName {
			uc.clearListen(ctx, user.ID)
		} else if err := uc.stores.Listen.Arm(ctx, user.ID, broadcast.ID); err != nil {
			log.Warn().Err(err).Msg("Failed to arm listen state")
		}
	}

	if err := uc.producer.SendAudioDelivered(ctx, &events.AudioDelivered{
		EventID:     events.NewID(),
		UserID:      user.ID,
		BroadcastID: broadcast.ID,
		Variant:     string(entities.SlotFor(user.ShowRoleName)),
		Uploaded:    delivered.Uploaded,
		Attempt:     attempt,
		OccurredAt:  time.Now(),
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to publish delivery event")
	}

	log.Info().
		Int("attempt", attempt).
		Bool("uploaded", delivered.Uploaded).
		Msg("Broadcast delivered")
}

func (uc *UseCase) publishFailed(ctx context.Context, user *entities.User, broadcast *entities.Broadcast, attempt int) {
	if err := uc.producer.SendAudioDeliveryFailed(ctx, &events.AudioDeliveryFailed{
		EventID:     events.NewID(),
		UserID:      user.ID,
		BroadcastID: broadcast.ID,
		Variant:     string(entities.SlotFor(user.ShowRoleName)),
		Attempt:     attempt,
		OccurredAt:  time.Now(),
	}); err != nil {
		uc.logger.Warn().Err(err).Int64("broadcast_id", broadcast.ID).Msg("Failed to publish delivery failure event")
	}
}

func (uc *UseCase) clearListen(ctx context.Context, userID int64) {
	if uc.stores.Listen == nil {
		return
	}
	if err := uc.stores.Listen.Clear(ctx, userID); err != nil {
		uc.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to clear listen state")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
