package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synapse-edu/classroom-service/internal/events"
	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
	"github.com/synapse-edu/classroom-service/internal/storage"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

type assignmentService struct {
	repo      repositories.Repository
	store     *storage.LocalStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, store *storage.LocalStore, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *assignmentService) Create(ctx context.Context, spaceID uint, req *CreateAssignmentRequest, refDoc *UploadedFile, actorID uint) (*AssignmentResult, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	space, err := s.ownedSpace(ctx, spaceID, actorID, "create assignment")
	if err != nil {
		return nil, err
	}

	refDoc = s.dropInvalidReferenceDoc(refDoc)

	dueDate, ok := validator.ParseDueDate(req.DueDate)
	if !ok {
		s.logger.Warn("unparseable due date, saving assignment without one",
			"space_id", spaceID, "due_date", req.DueDate)
	}

	assignment := &models.Assignment{
		SpaceID:     space.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
	}
	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, err
	}

	if refDoc != nil {
		if err := s.storeReferenceDoc(ctx, assignment, refDoc); err != nil {
			return nil, err
		}
	}

	s.logger.Info("assignment created",
		"assignment_id", assignment.ID,
		"space_id", space.ID)
	return &AssignmentResult{Assignment: assignment, DueDateWarning: !ok}, nil
}

func (s *assignmentService) Edit(ctx context.Context, assignmentID uint, req *EditAssignmentRequest, refDoc *UploadedFile, actorID uint) (*AssignmentResult, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	space, err := s.ownedSpace(ctx, assignment.SpaceID, actorID, "edit assignment")
	if err != nil {
		return nil, err
	}

	refDoc = s.dropInvalidReferenceDoc(refDoc)

	// An unparseable due date leaves the stored one untouched; an empty
	// field clears it.
	dueDate, ok := validator.ParseDueDate(req.DueDate)
	if !ok {
		s.logger.Warn("unparseable due date, keeping existing one",
			"assignment_id", assignmentID, "due_date", req.DueDate)
	}

	assignment.Title = req.Title
	assignment.Description = req.Description
	if ok {
		assignment.DueDate = dueDate
	}

	if err := s.repo.Assignment().Update(ctx, assignment); err != nil {
		return nil, err
	}

	if refDoc != nil {
		if err := s.storeReferenceDoc(ctx, assignment, refDoc); err != nil {
			return nil, err
		}
	}

	s.notifyMembers(ctx, space, assignment)

	s.logger.Info("assignment updated", "assignment_id", assignment.ID)
	return &AssignmentResult{Assignment: assignment, DueDateWarning: !ok}, nil
}

func (s *assignmentService) GetByID(ctx context.Context, assignmentID uint, actorID uint) (*AssignmentDetail, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	space, err := s.repo.Space().GetByID(ctx, assignment.SpaceID)
	if err != nil {
		return nil, err
	}

	detail := &AssignmentDetail{Assignment: assignment}

	// Masters see every submission; pupils only their own.
	if space.OwnerID == actorID {
		subs, err := s.repo.Submission().ListByAssignment(ctx, assignmentID)
		if err != nil {
			return nil, err
		}
		detail.Submissions = subs
		return detail, nil
	}

	if _, err := s.repo.Membership().Get(ctx, space.ID, actorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewPermissionError(actorID, "assignment", "view", "not a member of the space")
		}
		return nil, err
	}

	own, err := s.repo.Submission().Get(ctx, assignmentID, actorID)
	if err == nil {
		detail.Submission = own
	} else if !repositories.IsNotFoundError(err) {
		return nil, err
	}
	return detail, nil
}

func (s *assignmentService) ListBySpace(ctx context.Context, spaceID uint, actorID uint) ([]*models.Assignment, error) {
	space, err := s.repo.Space().GetByID(ctx, spaceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if space.OwnerID != actorID {
		if _, err := s.repo.Membership().Get(ctx, spaceID, actorID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewPermissionError(actorID, "space", "view", "not a member")
			}
			return nil, err
		}
	}
	return s.repo.Assignment().ListBySpace(ctx, spaceID)
}

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) ownedSpace(ctx context.Context, spaceID, actorID uint, action string) (*models.Space, error) {
	space, err := s.repo.Space().GetByID(ctx, spaceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if space.OwnerID != actorID {
		return nil, NewPermissionError(actorID, "space", action, "not the owner")
	}
	return space, nil
}

// dropInvalidReferenceDoc discards a reference upload whose extension
// is outside the allowed set. A bad reference document never fails the
// create or edit carrying it.
func (s *assignmentService) dropInvalidReferenceDoc(refDoc *UploadedFile) *UploadedFile {
	if refDoc == nil || storage.AllowedExtension(refDoc.Filename, storage.ReferenceExtensions) {
		return refDoc
	}
	s.logger.Warn("reference document skipped, extension not allowed",
		"filename", refDoc.Filename)
	return nil
}

func (s *assignmentService) storeReferenceDoc(ctx context.Context, assignment *models.Assignment, refDoc *UploadedFile) error {
	path := storage.ReferencePath(assignment.ID, refDoc.Filename)
	if err := s.store.Save(path, refDoc.Content); err != nil {
		return fmt.Errorf("failed to store reference document: %w", err)
	}
	assignment.ReferenceDocPath = &path
	return s.repo.Assignment().Update(ctx, assignment)
}

// notifyMembers publishes an update event carrying the member emails.
// Publish failure is logged and swallowed: notification fan-out never
// fails the edit that triggered it.
func (s *assignmentService) notifyMembers(ctx context.Context, space *models.Space, assignment *models.Assignment) {
	members, err := s.repo.Membership().ListMemberAccounts(ctx, space.ID)
	if err != nil {
		s.logger.Error("failed to list members for notification",
			"space_id", space.ID, "error", err)
		return
	}
	if len(members) == 0 {
		return
	}

	emails := make([]string, 0, len(members))
	for _, m := range members {
		emails = append(emails, m.Email)
	}

	payload := events.AssignmentUpdatedEvent{
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
		SpaceID:         space.ID,
		SpaceName:       space.Name,
		MemberEmails:    emails,
	}
	if err := s.publisher.Publish(ctx, events.TopicNotifications, events.TypeAssignmentUpdated, payload); err != nil {
		s.logger.Error("failed to publish assignment update event",
			"assignment_id", assignment.ID, "error", err)
	}
}
