// Package deps contains interface definitions for the broadcast domain dependencies
package deps

import (
	"context"
	"io"
	"time"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	"github.com/RaShaimardanov/franky/pkg/events"
)

// BroadcastRepository defines data access for the broadcast catalog
type BroadcastRepository interface {
	// GetRandom returns a random broadcast whose id is not in exclude
	GetRandom(ctx context.Context, exclude []int64) (*entities.Broadcast, error)

	// GetByID returns a broadcast by id
	GetByID(ctx context.Context, id int64) (*entities.Broadcast, error)

	// GetByHandle returns the broadcast that stores handle in either slot
	GetByHandle(ctx context.Context, handle string) (*entities.Broadcast, error)

	// Update commits the changed fields and returns the refreshed record
	Update(ctx context.Context, broadcast *entities.Broadcast, update entities.BroadcastUpdate) (*entities.Broadcast, error)
}

// UserRepository defines data access for bot users
type UserRepository interface {
	// Upsert creates the user or refreshes the profile fields keyed by telegram id
	Upsert(ctx context.Context, user *entities.User) (*entities.User, error)

	GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error)

	SetShowRoleName(ctx context.Context, userID int64, show bool) error
}

// FavouriteRepository defines data access for user favourites
type FavouriteRepository interface {
	// Add returns false when the favourite already existed
	Add(ctx context.Context, userID, broadcastID int64) (bool, error)

	// Remove returns false when there was nothing to remove
	Remove(ctx context.Context, userID, broadcastID int64) (bool, error)

	Exists(ctx context.Context, userID, broadcastID int64) (bool, error)

	ListBroadcasts(ctx context.Context, userID int64) ([]entities.Broadcast, error)
}

// DeliveryRepository remembers which broadcast each sent audio message carries
type DeliveryRepository interface {
	Save(ctx context.Context, delivery *entities.Delivery) error

	GetByMessage(ctx context.Context, chatID int64, messageID int) (*entities.Delivery, error)
}

// FileStore locates broadcast audio files
type FileStore interface {
	// Resolve returns errors.ErrSourceFileMissing when the file does not exist
	Resolve(ctx context.Context, filename string) (*entities.AudioSource, error)

	// Open streams the bytes of a resolved file
	Open(ctx context.Context, source *entities.AudioSource) (io.ReadCloser, error)
}

// AudioTransport sends audio through the messaging platform
type AudioTransport interface {
	// SendByHandle returns errors.ErrAssetUnresolvable when the handle is no longer valid
	SendByHandle(ctx context.Context, chatID int64, handle string, meta entities.AudioMeta) (*entities.DeliveredAudio, error)

	// Upload sends raw bytes; the descriptor carries the freshly issued handle
	Upload(ctx context.Context, chatID int64, req entities.UploadRequest) (*entities.DeliveredAudio, error)
}

// AudioDeliverer delivers one broadcast to one user.
// A nil descriptor without error means the broadcast is unusable right now.
type AudioDeliverer interface {
	Deliver(ctx context.Context, user *entities.User, broadcast *entities.Broadcast) (*entities.DeliveredAudio, error)
}

// OperatorNotifier reports catalog problems to the operator chat.
// Failures are logged by the implementation and never returned.
type OperatorNotifier interface {
	Notify(ctx context.Context, text string)
}

// DeliveryMetrics records audio delivery outcomes
type DeliveryMetrics interface {
	RecordHandleHit()
	RecordUpload(duration time.Duration)
	RecordFallback(reason string)
	RecordFailure(reason string)
	RecordShow(outcome string, attempts int)
}

// DeliveryEventProducer publishes delivery events
type DeliveryEventProducer interface {
	SendAudioDelivered(ctx context.Context, event *events.AudioDelivered) error
	SendAudioDeliveryFailed(ctx context.Context, event *events.AudioDeliveryFailed) error
}

// ListenStateStore remembers the broadcast a user is currently guessing
type ListenStateStore interface {
	Arm(ctx context.Context, userID, broadcastID int64) error

	// Current returns errors.ErrListenStateMissing when nothing is armed
	Current(ctx context.Context, userID int64) (int64, error)

	Clear(ctx context.Context, userID int64) error
}

// RateWindowStore counts actions in fixed windows
type RateWindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}
