package telegram

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/consts"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers all handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, command(consts.CommandStart), tgbot.MatchTypeExact, r.handlers.HandleStart)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, command(consts.CommandHelp), tgbot.MatchTypeExact, r.handlers.HandleHelp)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, command(consts.CommandShow), tgbot.MatchTypeExact, r.handlers.HandleShow)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, command(consts.CommandSettings), tgbot.MatchTypeExact, r.handlers.HandleSettings)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, command(consts.CommandFavourites), tgbot.MatchTypeExact, r.handlers.HandleFavourites)

	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackSettingsRole, tgbot.MatchTypePrefix, r.handlers.HandleSettingsCallback)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackBack, tgbot.MatchTypeExact, r.handlers.HandleBackCallback)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackFavourite, tgbot.MatchTypePrefix, r.handlers.HandleFavouriteCallback)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, consts.CallbackPlay, tgbot.MatchTypePrefix, r.handlers.HandlePlayCallback)

	bot.RegisterHandlerMatchFunc(IsReaction, r.handlers.HandleReaction)
	bot.RegisterHandlerMatchFunc(IsGuess, r.handlers.HandleGuess)

	r.logger.Info().Msg("All Telegram handlers registered successfully")
}

// RegisterMenu publishes the command menu
func (r *Router) RegisterMenu(ctx context.Context, bot *tgbot.Bot) error {
	_, err := bot.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: MenuCommands(r.handlers.texts),
	})
	return err
}

// IsReaction matches reaction updates
func IsReaction(update *models.Update) bool {
	return update.MessageReaction != nil
}

// IsGuess matches plain text that is not a command
func IsGuess(update *models.Update) bool {
	if update.Message == nil || update.Message.From == nil {
		return false
	}
	text := strings.TrimSpace(update.Message.Text)
	return text != "" && !strings.HasPrefix(text, "/")
}

func command(c consts.Command) string {
	return "/" + c.Name
}
