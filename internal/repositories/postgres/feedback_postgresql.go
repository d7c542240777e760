package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type FeedbackReportPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackReportPostgreSQL(db *gorm.DB) repositories.FeedbackReportRepository {
	return &FeedbackReportPostgreSQL{db: db}
}

func (f *FeedbackReportPostgreSQL) GetByID(ctx context.Context, id uint) (*models.FeedbackReport, error) {
	var report models.FeedbackReport
	if err := f.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, translateError(err, "failed to get feedback report")
	}
	return &report, nil
}

func (f *FeedbackReportPostgreSQL) ListBySubmission(ctx context.Context, submissionID uint) ([]*models.FeedbackReport, error) {
	var reports []*models.FeedbackReport
	err := f.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback reports: %w", err)
	}
	return reports, nil
}

// ListBySpace returns the reports of a given kind across every
// submission in the space, newest first. Used for class-level insight
// summaries.
func (f *FeedbackReportPostgreSQL) ListBySpace(ctx context.Context, spaceID uint, kind models.ReportKind) ([]*models.FeedbackReport, error) {
	var reports []*models.FeedbackReport
	err := f.db.WithContext(ctx).
		Model(&models.FeedbackReport{}).
		Joins("JOIN submissions ON submissions.id = feedback_reports.submission_id").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.space_id = ? AND feedback_reports.kind = ?", spaceID, kind).
		Order("feedback_reports.created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback reports by space: %w", err)
	}
	return reports, nil
}

func (f *FeedbackReportPostgreSQL) Create(ctx context.Context, report *models.FeedbackReport) error {
	if err := f.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create feedback report: %w", err)
	}
	return nil
}
