// Package consts contains constants for the broadcast domain
package consts

// Command represents a bot command
type Command struct {
	Name string
	// DescriptionKey is the message catalog key of the menu description
	DescriptionKey string
}

// Bot commands
var (
	CommandStart      = Command{Name: "start"}
	CommandShow       = Command{Name: "show", DescriptionKey: "menu.show"}
	CommandFavourites = Command{Name: "favourites", DescriptionKey: "menu.favourites"}
	CommandSettings   = Command{Name: "settings", DescriptionKey: "menu.settings"}
	CommandHelp       = Command{Name: "help", DescriptionKey: "menu.help"}
)

// MenuCommands are registered in the bot menu
var MenuCommands = []Command{
	CommandShow,
	CommandFavourites,
	CommandSettings,
	CommandHelp,
}

// Callback data prefixes
const (
	CallbackSettingsRole = "settings:role:"
	CallbackBack         = "back"
	CallbackFavourite    = "fav:"
	CallbackPlay         = "play:"
)

// ChatActionUploadVoice is shown while an audio is being prepared
const ChatActionUploadVoice = "upload_voice"
