// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/consts"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/dto"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/usecase/buissines"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

// Constants for Telegram API
const (
	RequestTimeout = 30 * time.Second
	// DeliveryTimeout bounds a whole /show including retries and uploads
	DeliveryTimeout = 10 * time.Minute
)

// Handlers contains Telegram command handlers
type Handlers struct {
	uc     *buissines.UseCase
	bot    *tgbot.Bot
	texts  *i18n.Catalog
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *buissines.UseCase, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		bot:    bot,
		texts:  uc.Texts(),
		logger: logger,
	}
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)
	h.logCommand(req.TelegramID, "/start", "processing")

	resp, err := h.uc.HandleStart(ctx, req)
	if err != nil {
		h.logError(req.TelegramID, "/start", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	h.sendResponse(ctx, req.ChatID, resp.Message)
	h.logCommand(req.TelegramID, "/start", "success")
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)

	resp, err := h.uc.HandleHelp(ctx)
	if err != nil {
		h.logError(req.TelegramID, "/help", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	h.sendResponse(ctx, req.ChatID, resp.Message)
}

// HandleShow handles /show command
func (h *Handlers) HandleShow(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)
	h.logCommand(req.TelegramID, "/show", "processing")

	h.sendChatAction(ctx, req.ChatID, consts.ChatActionUploadVoice)

	showCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout)
	defer cancel()

	resp, err := h.uc.HandleShow(showCtx, req)
	if err != nil {
		h.logError(req.TelegramID, "/show", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	if !resp.Delivered {
		h.sendResponse(ctx, req.ChatID, resp.Message)
		h.logCommand(req.TelegramID, "/show", "nothing delivered")
		return
	}

	h.logCommand(req.TelegramID, "/show", "success")
}

// HandleSettings handles /settings command
func (h *Handlers) HandleSettings(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)

	resp, err := h.uc.HandleSettings(ctx, req)
	if err != nil {
		h.logError(req.TelegramID, "/settings", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	h.sendWithMarkup(ctx, req.ChatID, resp.Message, SettingsKeyboard(h.texts, resp.ShowRoleName))
}

// HandleFavourites handles /favourites command
func (h *Handlers) HandleFavourites(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)

	resp, err := h.uc.ListFavourites(ctx, req)
	if err != nil {
		h.logError(req.TelegramID, "/favourites", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	if len(resp.Items) == 0 {
		h.sendResponse(ctx, req.ChatID, resp.Message)
		return
	}

	h.sendWithMarkup(ctx, req.ChatID, resp.Message, FavouritesKeyboard(resp.Items))
}

// HandleSettingsCallback toggles the role name preference from the settings keyboard
func (h *Handlers) HandleSettingsCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery
	req := userFromCallback(query)
	value := strings.TrimPrefix(query.Data, consts.CallbackSettingsRole) == "1"

	resp, err := h.uc.SetShowRoleName(ctx, dto.SetShowRoleNameRequest{User: req, Value: value})
	if err != nil {
		h.logError(req.TelegramID, "settings", err)
		h.answerCallback(ctx, query.ID, h.texts.Get("info.error"))
		return
	}

	if msg := query.Message.Message; msg != nil {
		editCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()

		if _, err := h.bot.EditMessageReplyMarkup(editCtx, &tgbot.EditMessageReplyMarkupParams{
			ChatID:      msg.Chat.ID,
			MessageID:   msg.ID,
			ReplyMarkup: SettingsKeyboard(h.texts, resp.ShowRoleName),
		}); err != nil {
			h.logger.Warn().Err(err).Int64("user_id", req.TelegramID).Msg("Failed to update settings keyboard")
		}
	}

	h.answerCallback(ctx, query.ID, resp.Message)
}

// HandleBackCallback closes the settings screen
func (h *Handlers) HandleBackCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery

	if msg := query.Message.Message; msg != nil {
		deleteCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()

		if _, err := h.bot.DeleteMessage(deleteCtx, &tgbot.DeleteMessageParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
		}); err != nil {
			h.logger.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Failed to delete settings message")
		}
	}

	h.answerCallback(ctx, query.ID, "")
}

// HandleFavouriteCallback toggles a favourite from the button under an audio message
func (h *Handlers) HandleFavouriteCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery
	req := userFromCallback(query)

	broadcastID, ok := parseCallbackID(query.Data, consts.CallbackFavourite)
	if !ok {
		h.answerCallback(ctx, query.ID, h.texts.Get("favourites.not_found"))
		return
	}

	resp, err := h.uc.ToggleFavourite(ctx, dto.FavouriteRequest{User: req, BroadcastID: broadcastID})
	if err != nil {
		h.logError(req.TelegramID, "favourite", err)
		h.answerCallback(ctx, query.ID, h.texts.Get("info.error"))
		return
	}

	h.answerCallback(ctx, query.ID, resp.Message)
}

// HandlePlayCallback sends a broadcast picked from the favourites list
func (h *Handlers) HandlePlayCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	query := update.CallbackQuery
	req := userFromCallback(query)

	broadcastID, ok := parseCallbackID(query.Data, consts.CallbackPlay)
	if !ok {
		h.answerCallback(ctx, query.ID, h.texts.Get("favourites.not_found"))
		return
	}
	h.answerCallback(ctx, query.ID, "")
	h.sendChatAction(ctx, req.ChatID, consts.ChatActionUploadVoice)

	playCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout)
	defer cancel()

	resp, err := h.uc.PlayFavourite(playCtx, dto.FavouriteRequest{User: req, BroadcastID: broadcastID})
	if err != nil {
		h.logError(req.TelegramID, "play", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}
	if !resp.Delivered {
		h.sendResponse(ctx, req.ChatID, resp.Message)
	}
}

// HandleReaction maps reactions on delivered audio to favourites
func (h *Handlers) HandleReaction(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	reaction := update.MessageReaction
	if reaction.User == nil {
		return
	}

	req := dto.ReactionRequest{
		User: dto.UserRequest{
			TelegramID: reaction.User.ID,
			ChatID:     reaction.Chat.ID,
			Username:   reaction.User.Username,
			FirstName:  reaction.User.FirstName,
			LastName:   reaction.User.LastName,
		},
		MessageID:   reaction.MessageID,
		HasReaction: len(reaction.NewReaction) > 0,
	}

	resp, err := h.uc.ReactionChanged(ctx, req)
	if err != nil {
		h.logError(req.User.TelegramID, "reaction", err)
		return
	}
	if resp != nil && resp.Changed {
		h.sendResponse(ctx, req.User.ChatID, resp.Message)
	}
}

// HandleGuess handles free text sent while a broadcast is playing
func (h *Handlers) HandleGuess(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	req := userFromMessage(update.Message)

	resp, err := h.uc.HandleGuess(ctx, dto.GuessRequest{User: req, Text: update.Message.Text})
	if err != nil {
		h.logError(req.TelegramID, "guess", err)
		h.sendResponse(ctx, req.ChatID, h.texts.Get("info.error"))
		return
	}

	h.sendResponse(ctx, req.ChatID, resp.Message)
}

func userFromMessage(msg *models.Message) dto.UserRequest {
	req := dto.UserRequest{ChatID: msg.Chat.ID}
	if msg.From != nil {
		req.TelegramID = msg.From.ID
		req.Username = msg.From.Username
		req.FirstName = msg.From.FirstName
		req.LastName = msg.From.LastName
	}
	return req
}

func userFromCallback(query *models.CallbackQuery) dto.UserRequest {
	req := dto.UserRequest{
		TelegramID: query.From.ID,
		ChatID:     query.From.ID,
		Username:   query.From.Username,
		FirstName:  query.From.FirstName,
		LastName:   query.From.LastName,
	}
	if msg := query.Message.Message; msg != nil {
		req.ChatID = msg.Chat.ID
	}
	return req
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, text string) {
	h.sendWithMarkup(ctx, chatID, text, nil)
}

func (h *Handlers) sendWithMarkup(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params := &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := h.bot.SendMessage(msgCtx, params); err != nil {
		h.handleSendMessageError(chatID, err)
	}
}

func (h *Handlers) sendChatAction(ctx context.Context, chatID int64, action string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := h.bot.SendChatAction(msgCtx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatAction(action),
	}); err != nil {
		h.logger.Warn().Int64("chat_id", chatID).Str("action", action).Err(err).Msg("Failed to send chat action")
	}
}

func (h *Handlers) answerCallback(ctx context.Context, queryID, text string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := h.bot.AnswerCallbackQuery(msgCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to answer callback query")
	}
}

func (h *Handlers) handleSendMessageError(chatID int64, err error) {
	errorMsg := err.Error()

	switch {
	case strings.Contains(errorMsg, "Forbidden"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("User blocked the bot")
	case strings.Contains(errorMsg, "chat not found"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Chat not found")
	case strings.Contains(errorMsg, "Too Many Requests"), strings.Contains(errorMsg, "too many requests"):
		h.logger.Warn().Int64("chat_id", chatID).Msg("Rate limit exceeded")
	default:
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

func (h *Handlers) logCommand(userID int64, command, result string) {
	h.logger.Info().Int64("user_id", userID).Str("command", command).Str("result", result).Msg("Command processed")
}

func (h *Handlers) logError(userID int64, command string, err error) {
	h.logger.Error().Int64("user_id", userID).Str("command", command).Err(err).Msg("Command failed")
}
