package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned for lookups that matched nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a storage uniqueness constraint rejects
// a write. The constraints on (space, account) and (assignment, pupil)
// are the real enforcement for join and submit idempotency.
var ErrDuplicate = errors.New("duplicate record")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// Repository aggregates the per-entity repositories.
type Repository interface {
	Account() AccountRepository
	Space() SpaceRepository
	Membership() MembershipRepository
	Assignment() AssignmentRepository
	Submission() SubmissionRepository
	FeedbackReport() FeedbackReportRepository

	// WithTransaction runs fn against a repository bound to a single
	// database transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
