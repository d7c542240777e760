package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).Preload("Pupil").First(&submission, id).Error
	if err != nil {
		return nil, translateError(err, "failed to get submission")
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Get(ctx context.Context, assignmentID, pupilID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("assignment_id = ? AND pupil_id = ?", assignmentID, pupilID).
		First(&submission).Error
	if err != nil {
		return nil, translateError(err, "failed to get submission")
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) ListByAssignment(ctx context.Context, assignmentID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Preload("Pupil").
		Where("assignment_id = ?", assignmentID).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}
