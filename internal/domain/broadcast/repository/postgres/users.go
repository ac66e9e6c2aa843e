package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) deps.UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or refreshes the profile columns, keeping preferences intact
func (r *userRepository) Upsert(ctx context.Context, user *entities.User) (*entities.User, error) {
	record := *user
	record.ID = 0

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name"}),
		}).
		Omit("show_role_name").
		Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("%w: upsert user %d: %v", broadcasterrors.ErrDatabaseOperation, user.TelegramID, err)
	}

	return r.GetByTelegramID(ctx, user.TelegramID)
}

// GetByTelegramID retrieves a user by Telegram id
func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		First(&user).Error
	if err != nil {
		return nil, wrapNotFound(err, broadcasterrors.ErrUserNotFound)
	}
	return &user, nil
}

// SetShowRoleName updates the role name preference
func (r *userRepository) SetShowRoleName(ctx context.Context, userID int64, show bool) error {
	result := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", userID).
		Update("show_role_name", show)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", broadcasterrors.ErrDatabaseOperation, result.Error)
	}
	if result.RowsAffected == 0 {
		return broadcasterrors.ErrUserNotFound
	}
	return nil
}
