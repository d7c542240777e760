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

type MembershipPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewMembershipPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.MembershipRepository {
	return &MembershipPostgreSQL{db: db, cacheManager: cacheManager}
}

func (m *MembershipPostgreSQL) Get(ctx context.Context, spaceID, accountID uint) (*models.Membership, error) {
	var membership models.Membership
	err := m.db.WithContext(ctx).
		Where("space_id = ? AND account_id = ?", spaceID, accountID).
		First(&membership).Error
	if err != nil {
		return nil, translateError(err, "failed to get membership")
	}
	return &membership, nil
}

func (m *MembershipPostgreSQL) ListBySpace(ctx context.Context, spaceID uint) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := m.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// ListSpacesByAccount returns the spaces an account has joined, newest
// enrollment first.
func (m *MembershipPostgreSQL) ListSpacesByAccount(ctx context.Context, accountID uint) ([]*models.Space, error) {
	var spaces []*models.Space
	err := m.db.WithContext(ctx).
		Model(&models.Space{}).
		Joins("JOIN memberships ON memberships.space_id = spaces.id").
		Where("memberships.account_id = ?", accountID).
		Order("memberships.created_at DESC").
		Find(&spaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces by account: %w", err)
	}
	return spaces, nil
}

// ListMemberAccounts returns the accounts enrolled in a space, in
// enrollment order.
func (m *MembershipPostgreSQL) ListMemberAccounts(ctx context.Context, spaceID uint) ([]*models.Account, error) {
	var accounts []*models.Account
	err := m.db.WithContext(ctx).
		Model(&models.Account{}).
		Joins("JOIN memberships ON memberships.account_id = accounts.id").
		Where("memberships.space_id = ?", spaceID).
		Order("memberships.created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list member accounts: %w", err)
	}
	return accounts, nil
}

func (m *MembershipPostgreSQL) Create(ctx context.Context, membership *models.Membership) error {
	if err := m.db.WithContext(ctx).Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}
