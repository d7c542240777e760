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

type AccountPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAccountPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AccountRepository {
	return &AccountPostgreSQL{db: db, cacheManager: cacheManager}
}

func (a *AccountPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := a.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translateError(err, "failed to get account")
	}
	return &account, nil
}

// GetBySubjectID resolves an identity-provider subject to the local
// account. This runs on every authenticated request, so the result is
// cached.
func (a *AccountPostgreSQL) GetBySubjectID(ctx context.Context, subjectID string) (*models.Account, error) {
	cacheKey := fmt.Sprintf("subject:%s", subjectID)

	var cached models.Account
	if err := a.cacheManager.Account.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var account models.Account
	err := a.db.WithContext(ctx).Where("subject_id = ?", subjectID).First(&account).Error
	if err != nil {
		return nil, translateError(err, "failed to get account by subject")
	}

	if err := a.cacheManager.Account.Set(ctx, cacheKey, &account, cache.AccountCacheConfig.TTL); err != nil {
		return &account, nil // cache failure is not a lookup failure
	}
	return &account, nil
}

func (a *AccountPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := a.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		return nil, translateError(err, "failed to get account by email")
	}
	return &account, nil
}

func (a *AccountPostgreSQL) Create(ctx context.Context, account *models.Account) error {
	if err := a.db.WithContext(ctx).Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	cache.InvalidateAccount(ctx, a.cacheManager, account.ID, account.SubjectID)
	return nil
}
