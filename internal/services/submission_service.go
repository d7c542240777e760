package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
	"github.com/synapse-edu/classroom-service/internal/storage"
)

type submissionService struct {
	repo   repositories.Repository
	store  *storage.LocalStore
	logger *slog.Logger
}

func NewSubmissionService(repo repositories.Repository, store *storage.LocalStore, logger *slog.Logger) SubmissionService {
	return &submissionService{repo: repo, store: store, logger: logger}
}

// Submit stores the document and records the attempt. Submission is
// one-shot: a second upload for the same assignment fails outright
// rather than versioning or overwriting.
func (s *submissionService) Submit(ctx context.Context, assignmentID uint, pupilID uint, file *UploadedFile) (*models.Submission, error) {
	if file == nil {
		return nil, ErrMissingFile
	}
	if !storage.AllowedExtension(file.Filename, storage.SubmissionExtensions) {
		return nil, ErrInvalidFileType
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.repo.Membership().Get(ctx, assignment.SpaceID, pupilID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewPermissionError(pupilID, "assignment", "submit", "not a member of the space")
		}
		return nil, err
	}

	if _, err := s.repo.Submission().Get(ctx, assignmentID, pupilID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	path := storage.SubmissionPath(assignmentID, pupilID, file.Filename)
	if err := s.store.Save(path, file.Content); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		PupilID:      pupilID,
		DocumentPath: path,
		Attempted:    true,
	}
	if err := s.repo.Submission().Create(ctx, submission); err != nil {
		if repositories.IsDuplicateError(err) {
			// Concurrent double-submit; the unique index is the final word.
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	s.logger.Info("submission recorded",
		"submission_id", submission.ID,
		"assignment_id", assignmentID,
		"pupil_id", pupilID)
	return submission, nil
}

func (s *submissionService) Get(ctx context.Context, assignmentID, pupilID uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().Get(ctx, assignmentID, pupilID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return submission, nil
}

// GetByID returns a submission to its pupil or to the master owning the
// surrounding space.
func (s *submissionService) GetByID(ctx context.Context, submissionID uint, actorID uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, submissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if submission.PupilID == actorID {
		return submission, nil
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
		return nil, NewPermissionError(actorID, "submission", "view", "not the pupil or space owner")
	}
	return submission, nil
}
