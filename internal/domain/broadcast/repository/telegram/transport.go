// Package telegram sends broadcast audio through the Telegram Bot API
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/consts"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

// Timeouts for Telegram API calls
const (
	SendTimeout   = 30 * time.Second
	UploadTimeout = 5 * time.Minute
)

// Error descriptions Telegram returns for file ids it can no longer serve
var unresolvableMarkers = []string{
	"wrong remote file identifier",
	"wrong file identifier",
	"file reference has expired",
	"FILE_REFERENCE_EXPIRED",
	"failed to get HTTP URL content",
}

type audioTransport struct {
	bot    *tgbot.Bot
	texts  *i18n.Catalog
	logger zerolog.Logger
}

// NewAudioTransport creates an AudioTransport backed by the Bot API
func NewAudioTransport(bot *tgbot.Bot, texts *i18n.Catalog, logger zerolog.Logger) deps.AudioTransport {
	return &audioTransport{
		bot:    bot,
		texts:  texts,
		logger: logger,
	}
}

// SendByHandle sends audio by a previously issued file id
func (t *audioTransport) SendByHandle(ctx context.Context, chatID int64, handle string, meta entities.AudioMeta) (*entities.DeliveredAudio, error) {
	sendCtx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	msg, err := t.bot.SendAudio(sendCtx, t.params(chatID, &models.InputFileString{Data: handle}, meta))
	if err != nil {
		return nil, ClassifySendError(err)
	}

	return describe(chatID, msg, handle, false), nil
}

// Upload sends audio bytes; Telegram issues a new file id in the response
func (t *audioTransport) Upload(ctx context.Context, chatID int64, req entities.UploadRequest) (*entities.DeliveredAudio, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	msg, err := t.bot.SendAudio(uploadCtx, t.params(chatID, &models.InputFileUpload{
		Filename: req.Filename,
		Data:     req.Data,
	}, req.Meta))
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio %s: %w", req.Filename, err)
	}

	return describe(chatID, msg, "", true), nil
}

func (t *audioTransport) params(chatID int64, audio models.InputFile, meta entities.AudioMeta) *tgbot.SendAudioParams {
	return &tgbot.SendAudioParams{
		ChatID:    chatID,
		Audio:     audio,
		Title:     meta.Title,
		Performer: meta.Performer,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{
					{
						Text:         t.texts.Get("keyboard.add_favourite"),
						CallbackData: consts.CallbackFavourite + strconv.FormatInt(meta.BroadcastID, 10),
					},
				},
			},
		},
	}
}

func describe(chatID int64, msg *models.Message, handle string, uploaded bool) *entities.DeliveredAudio {
	delivered := &entities.DeliveredAudio{
		ChatID:   chatID,
		Handle:   handle,
		Uploaded: uploaded,
	}
	if msg == nil {
		return delivered
	}

	delivered.MessageID = msg.ID
	if msg.Audio != nil && msg.Audio.FileID != "" {
		delivered.Handle = msg.Audio.FileID
	}
	return delivered
}

// ClassifySendError maps Telegram errors about unusable file ids to ErrAssetUnresolvable
func ClassifySendError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()
	for _, marker := range unresolvableMarkers {
		if strings.Contains(errorMsg, marker) {
			return fmt.Errorf("%w: %v", broadcasterrors.ErrAssetUnresolvable, err)
		}
	}
	return fmt.Errorf("failed to send audio: %w", err)
}
