// Package memory keeps bot state in process memory when Redis is not configured
package memory

import (
	"context"
	"sync"
	"time"

	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

// sweepInterval bounds how often expired entries of all users are dropped
const sweepInterval = time.Minute

type entry struct {
	value     int64
	expiresAt time.Time
}

// Store implements ListenStateStore and RateWindowStore on an expiring map
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	listen  map[int64]entry
	windows map[string]entry
	now     func() time.Time

	nextSweep time.Time
}

// NewStore creates a new Store; listen entries expire after ttl
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		listen:  make(map[int64]entry),
		windows: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *Store) Arm(ctx context.Context, userID, broadcastID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	s.listen[userID] = entry{value: broadcastID, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *Store) Current(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.listen[userID]
	if !ok {
		return 0, broadcasterrors.ErrListenStateMissing
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.listen, userID)
		return 0, broadcasterrors.ErrListenStateMissing
	}
	return e.value, nil
}

func (s *Store) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listen, userID)
	return nil
}

// IncrementWindow counts one action under key in a fixed window
func (s *Store) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	e, ok := s.windows[key]
	if !ok || !now.Before(e.expiresAt) {
		e = entry{expiresAt: now.Add(window)}
	}
	e.value++
	s.windows[key] = e

	return e.value, e.expiresAt.Sub(now), nil
}

// sweep drops expired entries; callers hold mu
func (s *Store) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepInterval)

	for k, e := range s.listen {
		if !now.Before(e.expiresAt) {
			delete(s.listen, k)
		}
	}
	for k, e := range s.windows {
		if !now.Before(e.expiresAt) {
			delete(s.windows, k)
		}
	}
}
