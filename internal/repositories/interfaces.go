package repositories

import (
	"context"

	"github.com/synapse-edu/classroom-service/internal/models"
)

// AccountRepository owns the local account records resolved from the
// identity provider.
type AccountRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetBySubjectID(ctx context.Context, subjectID string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}

type SpaceRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Space, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Space, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Space, error)
	Create(ctx context.Context, space *models.Space) error
	ExistsByJoinCode(ctx context.Context, code string) (bool, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, spaceID, accountID uint) (*models.Membership, error)
	ListBySpace(ctx context.Context, spaceID uint) ([]*models.Membership, error)
	ListSpacesByAccount(ctx context.Context, accountID uint) ([]*models.Space, error)
	ListMemberAccounts(ctx context.Context, spaceID uint) ([]*models.Account, error)
	Create(ctx context.Context, membership *models.Membership) error
}

type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	ListBySpace(ctx context.Context, spaceID uint) ([]*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
}

type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	Get(ctx context.Context, assignmentID, pupilID uint) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]*models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
}

type FeedbackReportRepository interface {
	GetByID(ctx context.Context, id uint) (*models.FeedbackReport, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]*models.FeedbackReport, error)
	ListBySpace(ctx context.Context, spaceID uint, kind models.ReportKind) ([]*models.FeedbackReport, error)
	Create(ctx context.Context, report *models.FeedbackReport) error
}
