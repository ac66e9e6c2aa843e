package telegram

import (
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/consts"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/dto"
	"github.com/RaShaimardanov/franky/pkg/i18n"
)

// SettingsKeyboard offers the opposite of the current role name preference and a back button
func SettingsKeyboard(texts *i18n.Catalog, showRoleName bool) *models.InlineKeyboardMarkup {
	toggle := models.InlineKeyboardButton{
		Text:         texts.Get("settings.show_roles"),
		CallbackData: consts.CallbackSettingsRole + "1",
	}
	if showRoleName {
		toggle = models.InlineKeyboardButton{
			Text:         texts.Get("settings.hide_roles"),
			CallbackData: consts.CallbackSettingsRole + "0",
		}
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{toggle},
			{{Text: texts.Get("keyboard.back"), CallbackData: consts.CallbackBack}},
		},
	}
}

// FavouritesKeyboard has one play button per favourite
func FavouritesKeyboard(items []dto.FavouriteItem) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(items))
	for _, item := range items {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         item.Label,
			CallbackData: consts.CallbackPlay + strconv.FormatInt(item.BroadcastID, 10),
		}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// MenuCommands builds the bot menu from the command list
func MenuCommands(texts *i18n.Catalog) []models.BotCommand {
	commands := make([]models.BotCommand, 0, len(consts.MenuCommands))
	for _, c := range consts.MenuCommands {
		commands = append(commands, models.BotCommand{
			Command:     c.Name,
			Description: texts.Get(c.DescriptionKey),
		})
	}
	return commands
}

// parseCallbackID extracts the numeric id following prefix
func parseCallbackID(data, prefix string) (int64, bool) {
	if len(data) <= len(prefix) || data[:len(prefix)] != prefix {
		return 0, false
	}
	id, err := strconv.ParseInt(data[len(prefix):], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
