package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/synapse-edu/classroom-service/internal/cache"
	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type SpacePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSpacePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SpaceRepository {
	return &SpacePostgreSQL{db: db, cacheManager: cacheManager}
}

func (s *SpacePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Space, error) {
	var space models.Space
	if err := s.db.WithContext(ctx).First(&space, id).Error; err != nil {
		return nil, translateError(err, "failed to get space")
	}
	return &space, nil
}

// GetByJoinCode resolves a join code to a space. Codes never change
// after creation, so the lookup is cached.
func (s *SpacePostgreSQL) GetByJoinCode(ctx context.Context, code string) (*models.Space, error) {
	cacheKey := fmt.Sprintf("code:%s", code)

	var cached models.Space
	if err := s.cacheManager.Space.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var space models.Space
	err := s.db.WithContext(ctx).Where("join_code = ?", code).First(&space).Error
	if err != nil {
		return nil, translateError(err, "failed to get space by join code")
	}

	_ = s.cacheManager.Space.Set(ctx, cacheKey, &space, cache.SpaceCacheConfig.TTL)
	return &space, nil
}

func (s *SpacePostgreSQL) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Space, error) {
	var spaces []*models.Space
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&spaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces by owner: %w", err)
	}
	return spaces, nil
}

func (s *SpacePostgreSQL) Create(ctx context.Context, space *models.Space) error {
	if err := s.db.WithContext(ctx).Create(space).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create space: %w", err)
	}
	cache.InvalidateSpace(ctx, s.cacheManager, space.ID, space.JoinCode)
	return nil
}

func (s *SpacePostgreSQL) ExistsByJoinCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Space{}).
		Where("join_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check join code: %w", err)
	}
	return count > 0, nil
}
