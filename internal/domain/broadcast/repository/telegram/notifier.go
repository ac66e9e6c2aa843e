package telegram

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
)

type operatorNotifier struct {
	bot    *tgbot.Bot
	chatID int64
	logger zerolog.Logger
}

// NewOperatorNotifier creates a notifier writing to the admin chat; a zero chat id only logs
func NewOperatorNotifier(bot *tgbot.Bot, chatID int64, logger zerolog.Logger) deps.OperatorNotifier {
	return &operatorNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}
}

// Notify sends text to the operator
func (n *operatorNotifier) Notify(ctx context.Context, text string) {
	if n.chatID == 0 || n.bot == nil {
		n.logger.Warn().Str("notification", text).Msg("Operator chat not configured")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	if _, err := n.bot.SendMessage(sendCtx, &tgbot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	}); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("Failed to notify operator")
		return
	}

	n.logger.Info().Int64("chat_id", n.chatID).Msg("Operator notified")
}
