package entities

import (
	"io"
	"time"
)

// User represents a Telegram user of the bot
type User struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	TelegramID   int64   `gorm:"uniqueIndex;not null"`
	Username     *string `gorm:"size:128"`
	FirstName    *string `gorm:"size:128"`
	LastName     *string `gorm:"size:128"`
	PhoneNumber  *string `gorm:"size:128"`
	Email        *string `gorm:"size:128"`
	ShowRoleName bool    `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

// TableName overrides gorm table name
func (User) TableName() string {
	return "users"
}

// Favourite links a user to a broadcast they marked
type Favourite struct {
	UserID      int64     `gorm:"primaryKey"`
	BroadcastID int64     `gorm:"primaryKey"`
	AddedAt     time.Time `gorm:"not null"`
}

// TableName overrides gorm table name
func (Favourite) TableName() string {
	return "favourites"
}

// Delivery records which broadcast an audio message carries
type Delivery struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	ChatID      int64 `gorm:"not null;uniqueIndex:idx_deliveries_message"`
	MessageID   int   `gorm:"not null;uniqueIndex:idx_deliveries_message"`
	BroadcastID int64 `gorm:"not null;index"`
	UserID      int64 `gorm:"not null"`
	Uploaded    bool  `gorm:"not null;default:false"`
	DeliveredAt time.Time
}

// TableName overrides gorm table name
func (Delivery) TableName() string {
	return "deliveries"
}

// AudioSource is a resolved audio file in the file store
type AudioSource struct {
	Filename string
	Location string
	Size     int64
}

// AudioMeta describes how the audio is presented in the chat
type AudioMeta struct {
	BroadcastID int64
	Title       string
	Performer   string
}

// UploadRequest carries bytes for a fresh upload
type UploadRequest struct {
	Filename string
	Data     io.Reader
	Meta     AudioMeta
}

// DeliveredAudio is the descriptor of a sent audio message
type DeliveredAudio struct {
	ChatID    int64
	MessageID int
	Handle    string
	Uploaded  bool
}
