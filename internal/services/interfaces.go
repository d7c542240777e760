package services

import (
	"context"
	"io"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSpaceRequest = validator.CreateSpaceRequest
type JoinSpaceRequest = validator.JoinSpaceRequest
type CreateAssignmentRequest = validator.CreateAssignmentRequest
type EditAssignmentRequest = validator.EditAssignmentRequest

// UploadedFile is a multipart upload handed down from a handler.
type UploadedFile struct {
	Filename string
	Content  io.Reader
}

type JoinResult struct {
	Space *models.Space `json:"space"`

	// AlreadyMember marks the idempotent no-op path: the pupil was
	// enrolled before this call.
	AlreadyMember bool `json:"already_member"`
}

type AssignmentResult struct {
	Assignment *models.Assignment `json:"assignment"`

	// DueDateWarning is set when the submitted due date string did not
	// parse and the assignment was saved without one.
	DueDateWarning bool `json:"due_date_warning"`
}

type AssignmentDetail struct {
	Assignment  *models.Assignment   `json:"assignment"`
	Submissions []*models.Submission `json:"submissions,omitempty"`

	// Submission is the calling pupil's own submission, if any.
	Submission *models.Submission `json:"submission,omitempty"`
}

// ===== SERVICES =====

// IdentityService resolves identity-provider logins to local accounts.
type IdentityService interface {
	// ResolveOrCreate returns the local account for a provider subject,
	// creating it on first login. The role is decided exactly once, at
	// creation, from the master email allow-list.
	ResolveOrCreate(ctx context.Context, subjectID, email, displayName string) (*models.Account, error)

	GetByID(ctx context.Context, id uint) (*models.Account, error)
}

type SpaceService interface {
	Create(ctx context.Context, req *CreateSpaceRequest, ownerID uint) (*models.Space, error)
	Join(ctx context.Context, code string, accountID uint) (*JoinResult, error)
	GetByID(ctx context.Context, id uint) (*models.Space, error)
	ListOwned(ctx context.Context, ownerID uint) ([]*models.Space, error)
	ListJoined(ctx context.Context, accountID uint) ([]*models.Space, error)
	ListMembers(ctx context.Context, spaceID uint, actorID uint) ([]*models.Account, error)

	// CanView reports whether the account may see the space: owner or
	// enrolled member.
	CanView(ctx context.Context, spaceID, accountID uint) (bool, error)
}

type AssignmentService interface {
	Create(ctx context.Context, spaceID uint, req *CreateAssignmentRequest, refDoc *UploadedFile, actorID uint) (*AssignmentResult, error)
	Edit(ctx context.Context, assignmentID uint, req *EditAssignmentRequest, refDoc *UploadedFile, actorID uint) (*AssignmentResult, error)
	GetByID(ctx context.Context, assignmentID uint, actorID uint) (*AssignmentDetail, error)
	ListBySpace(ctx context.Context, spaceID uint, actorID uint) ([]*models.Assignment, error)
}

type SubmissionService interface {
	// Submit stores a pupil's one-shot submission. A second call for the
	// same (assignment, pupil) pair fails with ErrAlreadySubmitted.
	Submit(ctx context.Context, assignmentID uint, pupilID uint, file *UploadedFile) (*models.Submission, error)

	Get(ctx context.Context, assignmentID, pupilID uint) (*models.Submission, error)
	GetByID(ctx context.Context, submissionID uint, actorID uint) (*models.Submission, error)
}

type FeedbackService interface {
	// GenerateFeedback produces and persists an AI feedback report
	// comparing a submission against the assignment's reference solution.
	GenerateFeedback(ctx context.Context, submissionID uint, actorID uint) (*models.FeedbackReport, error)

	// CheckIntegrity produces and persists an academic integrity report
	// for a single submission.
	CheckIntegrity(ctx context.Context, submissionID uint, actorID uint) (*models.FeedbackReport, error)

	// SpaceInsights summarizes the stored feedback reports of a space
	// into a class-level performance overview.
	SpaceInsights(ctx context.Context, spaceID uint, actorID uint) (string, error)

	ListBySubmission(ctx context.Context, submissionID uint, actorID uint) ([]*models.FeedbackReport, error)
}

type ExportService interface {
	// ExportRoster renders the member list of a space as an xlsx
	// workbook. Returns the file bytes and a suggested filename.
	ExportRoster(ctx context.Context, spaceID uint, actorID uint) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Identity() IdentityService
	Space() SpaceService
	Assignment() AssignmentService
	Submission() SubmissionService
	Feedback() FeedbackService
	Export() ExportService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
