// Package audio delivers broadcast audio, reusing Telegram asset handles where possible
package audio

import (
	"context"
	"fmt"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// Ledger reads and writes the two asset handle slots of one broadcast
type Ledger struct {
	repo      deps.BroadcastRepository
	broadcast *entities.Broadcast
}

// NewLedger binds a ledger to a broadcast record
func NewLedger(repo deps.BroadcastRepository, broadcast *entities.Broadcast) *Ledger {
	return &Ledger{repo: repo, broadcast: broadcast}
}

// Broadcast returns the latest known record
func (l *Ledger) Broadcast() *entities.Broadcast {
	return l.broadcast
}

// Handle returns the handle for the variant, empty when none was ever issued
func (l *Ledger) Handle(alternate bool) string {
	return l.broadcast.Handle(entities.SlotFor(alternate))
}

// SetHandle persists a new handle into slot. Any failure is reported as ErrPersistence.
func (l *Ledger) SetHandle(ctx context.Context, slot entities.HandleSlot, handle string) (*entities.Broadcast, error) {
	updated, err := l.repo.Update(ctx, l.broadcast, entities.HandleUpdate(slot, handle))
	if err != nil {
		return nil, fmt.Errorf("%w: broadcast %d slot %s: %v", broadcasterrors.ErrPersistence, l.broadcast.ID, slot, err)
	}

	l.broadcast = updated
	return updated, nil
}
