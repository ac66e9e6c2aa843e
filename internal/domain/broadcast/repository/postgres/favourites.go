package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type favouriteRepository struct {
	db *gorm.DB
}

// NewFavouriteRepository creates a new favourite repository
func NewFavouriteRepository(db *gorm.DB) deps.FavouriteRepository {
	return &favouriteRepository{db: db}
}

// Add stores the favourite, reporting false when it was already present
func (r *favouriteRepository) Add(ctx context.Context, userID, broadcastID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.Favourite{
			UserID:      userID,
			BroadcastID: broadcastID,
			AddedAt:     time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: add favourite: %v", broadcasterrors.ErrDatabaseOperation, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Remove deletes the favourite, reporting false when nothing was deleted
func (r *favouriteRepository) Remove(ctx context.Context, userID, broadcastID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND broadcast_id = ?", userID, broadcastID).
		Delete(&entities.Favourite{})
	if result.Error != nil {
		return false, fmt.Errorf("%w: remove favourite: %v", broadcasterrors.ErrDatabaseOperation, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Exists checks whether the broadcast is in the user's favourites
func (r *favouriteRepository) Exists(ctx context.Context, userID, broadcastID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Favourite{}).
		Where("user_id = ? AND broadcast_id = ?", userID, broadcastID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", broadcasterrors.ErrDatabaseOperation, err)
	}
	return count > 0, nil
}

// ListBroadcasts returns favourite broadcasts, newest first
func (r *favouriteRepository) ListBroadcasts(ctx context.Context, userID int64) ([]entities.Broadcast, error) {
	var broadcasts []entities.Broadcast
	err := r.db.WithContext(ctx).
		Joins("JOIN favourites ON favourites.broadcast_id = broadcasts.id").
		Where("favourites.user_id = ?", userID).
		Order("favourites.added_at DESC, broadcasts.id DESC").
		Find(&broadcasts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list favourites: %v", broadcasterrors.ErrDatabaseOperation, err)
	}
	return broadcasts, nil
}
