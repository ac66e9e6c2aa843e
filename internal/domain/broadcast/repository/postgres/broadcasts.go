package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type broadcastRepository struct {
	db *gorm.DB
}

// NewBroadcastRepository creates a new broadcast repository
func NewBroadcastRepository(db *gorm.DB) deps.BroadcastRepository {
	return &broadcastRepository{db: db}
}

// GetRandom returns a random broadcast not listed in exclude
func (r *broadcastRepository) GetRandom(ctx context.Context, exclude []int64) (*entities.Broadcast, error) {
	query := r.db.WithContext(ctx)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	var broadcast entities.Broadcast
	if err := query.Order("random()").Take(&broadcast).Error; err != nil {
		return nil, wrapNotFound(err, broadcasterrors.ErrBroadcastNotFound)
	}
	return &broadcast, nil
}

// GetByID retrieves a broadcast by id
func (r *broadcastRepository) GetByID(ctx context.Context, id int64) (*entities.Broadcast, error) {
	var broadcast entities.Broadcast
	if err := r.db.WithContext(ctx).First(&broadcast, id).Error; err != nil {
		return nil, wrapNotFound(err, broadcasterrors.ErrBroadcastNotFound)
	}
	return &broadcast, nil
}

// GetByHandle retrieves the broadcast holding handle in either slot
func (r *broadcastRepository) GetByHandle(ctx context.Context, handle string) (*entities.Broadcast, error) {
	var broadcast entities.Broadcast
	err := r.db.WithContext(ctx).
		Where("telegram_file_id = ? OR telegram_file_id_alt = ?", handle, handle).
		First(&broadcast).Error
	if err != nil {
		return nil, wrapNotFound(err, broadcasterrors.ErrBroadcastNotFound)
	}
	return &broadcast, nil
}

// Update writes only the columns named by update; concurrent writers of the same slot last-write-win
func (r *broadcastRepository) Update(ctx context.Context, broadcast *entities.Broadcast, update entities.BroadcastUpdate) (*entities.Broadcast, error) {
	columns := update.Columns()
	if len(columns) == 0 {
		return r.GetByID(ctx, broadcast.ID)
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Broadcast{}).
		Where("id = ?", broadcast.ID).
		Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: update broadcast %d: %v", broadcasterrors.ErrDatabaseOperation, broadcast.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, broadcasterrors.ErrBroadcastNotFound
	}

	return r.GetByID(ctx, broadcast.ID)
}

func wrapNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %v", broadcasterrors.ErrDatabaseOperation, err)
}
