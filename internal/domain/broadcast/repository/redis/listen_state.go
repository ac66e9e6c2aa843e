// Package redis keeps short lived bot state in Redis
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type listenStateRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewListenStateRepo creates a listen state store; entries expire after ttl
func NewListenStateRepo(client *goredis.Client, ttl time.Duration) deps.ListenStateStore {
	return &listenStateRepo{client: client, ttl: ttl}
}

func listenKey(userID int64) string {
	return "listen:" + strconv.FormatInt(userID, 10)
}

func (r *listenStateRepo) Arm(ctx context.Context, userID, broadcastID int64) error {
	if err := r.client.Set(ctx, listenKey(userID), broadcastID, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: arm listen state: %v", broadcasterrors.ErrStateStore, err)
	}
	return nil
}

func (r *listenStateRepo) Current(ctx context.Context, userID int64) (int64, error) {
	id, err := r.client.Get(ctx, listenKey(userID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, broadcasterrors.ErrListenStateMissing
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read listen state: %v", broadcasterrors.ErrStateStore, err)
	}
	return id, nil
}

func (r *listenStateRepo) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, listenKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: clear listen state: %v", broadcasterrors.ErrStateStore, err)
	}
	return nil
}
