// Package workers contains background workers for the broadcast domain
package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/pkg/events"
)

// IngestHandler reports scraped broadcasts to the operator chat
type IngestHandler struct {
	notifier deps.OperatorNotifier
	logger   zerolog.Logger
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(notifier deps.OperatorNotifier, logger zerolog.Logger) *IngestHandler {
	return &IngestHandler{notifier: notifier, logger: logger}
}

// Handle decodes a broadcasts.ingested event and notifies the operator
func (h *IngestHandler) Handle(ctx context.Context, value []byte) error {
	var event events.BroadcastIngested
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to decode ingest event: %w", err)
	}

	h.logger.Info().
		Int64("broadcast_id", event.BroadcastID).
		Str("role_name", event.RoleName).
		Msg("Broadcast ingested")

	h.notifier.Notify(ctx, FormatIngested(&event))
	return nil
}

// FormatIngested renders the operator message for a new broadcast
func FormatIngested(event *events.BroadcastIngested) string {
	text := fmt.Sprintf("Добавлен выпуск #%d: %s", event.BroadcastID, event.RoleName)
	if event.ReleaseDate != nil {
		text += fmt.Sprintf(" (%s)", event.ReleaseDate.Format("02.01.06"))
	}
	if event.ReleaseType != "" {
		text += ", " + event.ReleaseType
	}
	return text
}
