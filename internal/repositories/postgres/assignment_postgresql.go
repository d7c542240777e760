package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := a.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, translateError(err, "failed to get assignment")
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) ListBySpace(ctx context.Context, spaceID uint) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := a.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("created_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, assignment *models.Assignment) error {
	if err := a.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) Update(ctx context.Context, assignment *models.Assignment) error {
	if err := a.db.WithContext(ctx).Save(assignment).Error; err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	return nil
}
