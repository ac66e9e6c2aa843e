package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	broadcastentities "github.com/RaShaimardanov/franky/internal/domain/broadcast/entities"
	"github.com/RaShaimardanov/franky/internal/domain/catalog/deps"
	catalogerrors "github.com/RaShaimardanov/franky/internal/domain/catalog/errors"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) deps.CatalogRepository {
	return &catalogRepository{db: db}
}

// ExistsBySourceURL reports whether a broadcast was already scraped from sourceURL
func (r *catalogRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&broadcastentities.Broadcast{}).
		Where("source_url = ?", sourceURL).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("%w: %v", catalogerrors.ErrDatabaseOperation, err)
	}
	return count > 0, nil
}

// Create inserts a broadcast with both handles absent
func (r *catalogRepository) Create(ctx context.Context, broadcast *broadcastentities.Broadcast) error {
	broadcast.TelegramFileID = nil
	broadcast.TelegramFileIDAlt = nil

	if err := r.db.WithContext(ctx).Create(broadcast).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", catalogerrors.ErrAlreadyIngested, derefString(broadcast.SourceURL))
		}
		return fmt.Errorf("%w: %v", catalogerrors.ErrDatabaseOperation, err)
	}
	return nil
}

// Count returns the catalog size
func (r *catalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&broadcastentities.Broadcast{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", catalogerrors.ErrDatabaseOperation, err)
	}
	return count, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
