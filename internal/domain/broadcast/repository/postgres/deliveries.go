package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/RaShaimardanov/franky/internal/domain/broadcast/deps"
	"github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	broadcasterrors "github.com/RaShaimardanov/franky/internal/domain/broadcast/errors"
)

type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *gorm.DB) deps.DeliveryRepository {
	return &deliveryRepository{db: db}
}

// Save saves a delivery record
func (r *deliveryRepository) Save(ctx context.Context, delivery *entities.Delivery) error {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return fmt.Errorf("%w: save delivery: %v", broadcasterrors.ErrDatabaseOperation, err)
	}
	return nil
}

// GetByMessage retrieves the delivery behind a chat message
func (r *deliveryRepository) GetByMessage(ctx context.Context, chatID int64, messageID int) (*entities.Delivery, error) {
	var delivery entities.Delivery
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND message_id = ?", chatID, messageID).
		First(&delivery).Error
	if err != nil {
		return nil, wrapNotFound(err, broadcasterrors.ErrDeliveryNotFound)
	}
	return &delivery, nil
}
