package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/synapse-edu/classroom-service/internal/llm"
	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
	"github.com/synapse-edu/classroom-service/internal/storage"
)

type feedbackService struct {
	repo      repositories.Repository
	store     *storage.LocalStore
	generator llm.TextGenerator
	logger    *slog.Logger
}

func NewFeedbackService(repo repositories.Repository, store *storage.LocalStore, generator llm.TextGenerator, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		repo:      repo,
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// feedbackContext is the resolved entity chain around a submission,
// verified to belong to the acting master.
type feedbackContext struct {
	submission *models.Submission
	assignment *models.Assignment
	space      *models.Space
}

func (s *feedbackService) resolve(ctx context.Context, submissionID, actorID uint, action string) (*feedbackContext, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	assignment, err := s.repo.Assignment().GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return nil, err
	}
	space, err := s.repo.Space().GetByID(ctx, assignment.SpaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		return nil, NewPermissionError(actorID, "submission", action, "not the space owner")
	}
	return &feedbackContext{submission: submission, assignment: assignment, space: space}, nil
}

func isPDF(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

func (s *feedbackService) GenerateFeedback(ctx context.Context, submissionID uint, actorID uint) (*models.FeedbackReport, error) {
	fc, err := s.resolve(ctx, submissionID, actorID, "generate feedback")
	if err != nil {
		return nil, err
	}

	if fc.assignment.ReferenceDocPath == nil {
		return nil, fmt.Errorf("%w: assignment has no reference document", ErrFeedbackUnavailable)
	}
	if !isPDF(fc.submission.DocumentPath) || !isPDF(*fc.assignment.ReferenceDocPath) {
		return nil, fmt.Errorf("%w: feedback requires PDF documents", ErrFeedbackUnavailable)
	}

	submissionPDF, err := s.store.ReadAll(fc.submission.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read submission document", ErrFeedbackUnavailable)
	}
	referencePDF, err := s.store.ReadAll(*fc.assignment.ReferenceDocPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read reference document", ErrFeedbackUnavailable)
	}

	start := time.Now()
	text, err := s.generator.GenerateFeedback(ctx, submissionPDF, referencePDF, fc.space.Name)
	if err != nil {
		// Surface the backend's own message; masters see it verbatim.
		return nil, fmt.Errorf("%w: %v", ErrFeedbackUnavailable, err)
	}

	return s.persist(ctx, fc, models.ReportFeedback, text, time.Since(start))
}

func (s *feedbackService) CheckIntegrity(ctx context.Context, submissionID uint, actorID uint) (*models.FeedbackReport, error) {
	fc, err := s.resolve(ctx, submissionID, actorID, "check integrity")
	if err != nil {
		return nil, err
	}

	if !isPDF(fc.submission.DocumentPath) {
		return nil, fmt.Errorf("%w: integrity check requires a PDF document", ErrFeedbackUnavailable)
	}

	submissionPDF, err := s.store.ReadAll(fc.submission.DocumentPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read submission document", ErrFeedbackUnavailable)
	}

	start := time.Now()
	text, err := s.generator.CheckIntegrity(ctx, submissionPDF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedbackUnavailable, err)
	}

	return s.persist(ctx, fc, models.ReportIntegrity, text, time.Since(start))
}

// SpaceInsights summarizes the stored feedback reports across the
// space. The summary itself is not persisted; each call reflects the
// current report set.
func (s *feedbackService) SpaceInsights(ctx context.Context, spaceID uint, actorID uint) (string, error) {
	space, err := s.repo.Space().GetByID(ctx, spaceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if space.OwnerID != actorID {
		return "", NewPermissionError(actorID, "space", "view insights", "not the owner")
	}

	reports, err := s.repo.FeedbackReport().ListBySpace(ctx, spaceID, models.ReportFeedback)
	if err != nil {
		return "", err
	}
	if len(reports) == 0 {
		return "", fmt.Errorf("%w: no feedback reports exist for this space yet", ErrFeedbackUnavailable)
	}

	bodies := make([]string, 0, len(reports))
	for _, r := range reports {
		bodies = append(bodies, r.Body)
	}

	summary, err := s.generator.SummarizeReports(ctx, bodies)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeedbackUnavailable, err)
	}
	return summary, nil
}

func (s *feedbackService) ListBySubmission(ctx context.Context, submissionID uint, actorID uint) ([]*models.FeedbackReport, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if submission.PupilID != actorID {
		assignment, err := s.repo.Assignment().GetByID(ctx, submission.AssignmentID)
		if err != nil {
			return nil, err
		}
		space, err := s.repo.Space().GetByID(ctx, assignment.SpaceID)
		if err != nil {
			return nil, err
		}
		if space.OwnerID != actorID {
			return nil, NewPermissionError(actorID, "submission", "list reports", "not the pupil or space owner")
		}
	}
	return s.repo.FeedbackReport().ListBySubmission(ctx, submissionID)
}

func (s *feedbackService) persist(ctx context.Context, fc *feedbackContext, kind models.ReportKind, body string, latency time.Duration) (*models.FeedbackReport, error) {
	meta, _ := json.Marshal(map[string]interface{}{
		"space_id":      fc.space.ID,
		"assignment_id": fc.assignment.ID,
		"latency_ms":    latency.Milliseconds(),
	})

	report := &models.FeedbackReport{
		SubmissionID: fc.submission.ID,
		Kind:         kind,
		Body:         body,
		Metadata:     datatypes.JSON(meta),
	}
	if err := s.repo.FeedbackReport().Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("report generated",
		"report_id", report.ID,
		"kind", kind,
		"submission_id", fc.submission.ID,
		"latency_ms", latency.Milliseconds())
	return report, nil
}
