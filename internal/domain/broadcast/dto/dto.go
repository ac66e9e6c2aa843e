// Package dto contains data transfer objects for the broadcast domain
package dto

// UserRequest identifies the Telegram user behind an update
type UserRequest struct {
	TelegramID int64
	ChatID     int64
	Username   string
	FirstName  string
	LastName   string
}

// CommandResponse represents a text response for bot commands
type CommandResponse struct {
	Message string
}

// ShowResponse is the outcome of a /show request
type ShowResponse struct {
	Delivered   bool
	BroadcastID int64
	Attempts    int
	// Message is set when nothing was delivered
	Message string
}

// SettingsResponse carries the settings screen
type SettingsResponse struct {
	Message      string
	ShowRoleName bool
}

// SetShowRoleNameRequest toggles role name display
type SetShowRoleNameRequest struct {
	User  UserRequest
	Value bool
}

// GuessRequest is a free text answer while listening
type GuessRequest struct {
	User UserRequest
	Text string
}

// FavouriteRequest references a broadcast from a button
type FavouriteRequest struct {
	User        UserRequest
	BroadcastID int64
}

// ReactionRequest reports reaction changes on a message
type ReactionRequest struct {
	User        UserRequest
	MessageID   int
	HasReaction bool
}

// FavouriteResponse is the result of a favourite change
type FavouriteResponse struct {
	Message string
	Added   bool
	Changed bool
}

// FavouriteItem is one entry of the favourites list
type FavouriteItem struct {
	BroadcastID int64
	Label       string
}

// FavouriteListResponse lists favourites
type FavouriteListResponse struct {
	Message string
	Items   []FavouriteItem
}
