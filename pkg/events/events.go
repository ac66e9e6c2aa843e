// Package events contains the JSON payloads exchanged over Kafka
package events

import (
	"time"

	"github.com/google/uuid"
)

// AudioDelivered is published after an audio message reached a user
type AudioDelivered struct {
	EventID     string    `json:"event_id"`
	UserID      int64     `json:"user_id"`
	BroadcastID int64     `json:"broadcast_id"`
	Variant     string    `json:"variant"`
	Uploaded    bool      `json:"uploaded"`
	Attempt     int       `json:"attempt"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// AudioDeliveryFailed is published when a broadcast could not be delivered
type AudioDeliveryFailed struct {
	EventID     string    `json:"event_id"`
	UserID      int64     `json:"user_id"`
	BroadcastID int64     `json:"broadcast_id"`
	Variant     string    `json:"variant"`
	Attempt     int       `json:"attempt"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BroadcastIngested is published by the scraper for each new catalog row
type BroadcastIngested struct {
	EventID     string     `json:"event_id"`
	BroadcastID int64      `json:"broadcast_id"`
	RoleName    string     `json:"role_name"`
	ReleaseType string     `json:"release_type"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Filename    string     `json:"filename"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// NewID returns a fresh event id
func NewID() string {
	return uuid.NewString()
}
