package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

type identityService struct {
	repo         repositories.Repository
	logger       *slog.Logger
	masterEmails map[string]bool
}

func NewIdentityService(repo repositories.Repository, logger *slog.Logger, masterEmails []string) IdentityService {
	allow := make(map[string]bool, len(masterEmails))
	for _, e := range masterEmails {
		allow[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &identityService{
		repo:         repo,
		logger:       logger,
		masterEmails: allow,
	}
}

// ResolveOrCreate looks up the account for a provider subject and
// creates it on first login. The allow-list is consulted only on the
// create path: removing an email later does not demote an existing
// master, and adding one does not promote an existing pupil.
func (s *identityService) ResolveOrCreate(ctx context.Context, subjectID, email, displayName string) (*models.Account, error) {
	account, err := s.repo.Account().GetBySubjectID(ctx, subjectID)
	if err == nil {
		return account, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	role := models.RolePupil
	if s.masterEmails[strings.ToLower(email)] {
		role = models.RoleMaster
	}

	account = &models.Account{
		SubjectID:   subjectID,
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}

	if err := s.repo.Account().Create(ctx, account); err != nil {
		if repositories.IsDuplicateError(err) {
			// Concurrent first login for the same subject; the other
			// request won the insert.
			return s.repo.Account().GetBySubjectID(ctx, subjectID)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created",
		"account_id", account.ID,
		"role", account.Role,
		"email", email)
	return account, nil
}

func (s *identityService) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	account, err := s.repo.Account().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return account, nil
}
