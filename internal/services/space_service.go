package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

// joinCodeAttempts bounds the collision retry loop. With 8 hex chars
// the loop effectively never reaches the bound.
const joinCodeAttempts = 5

type spaceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSpaceService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) SpaceService {
	return &spaceService{repo: repo, logger: logger, validator: v}
}

func (s *spaceService) Create(ctx context.Context, req *CreateSpaceRequest, ownerID uint) (*models.Space, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	var space *models.Space
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := newJoinCode()
		if err != nil {
			return nil, err
		}

		space = &models.Space{
			Name:     req.Name,
			JoinCode: code,
			OwnerID:  ownerID,
		}
		err = s.repo.Space().Create(ctx, space)
		if err == nil {
			s.logger.Info("space created",
				"space_id", space.ID,
				"owner_id", ownerID,
				"join_code", space.JoinCode)
			return space, nil
		}
		if !repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("failed to create space: %w", err)
		}
		// Join code collision; draw again.
	}
	return nil, fmt.Errorf("failed to allocate a unique join code")
}

// newJoinCode draws 4 random bytes and hex-encodes them: 8 lowercase
// hex characters.
func newJoinCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// Join enrolls the account in the space behind the code. Joining a
// space you already belong to is a no-op reported via AlreadyMember.
func (s *spaceService) Join(ctx context.Context, code string, accountID uint) (*JoinResult, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidJoinCode
	}

	space, err := s.repo.Space().GetByJoinCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidJoinCode
		}
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}

	if _, err := s.repo.Membership().Get(ctx, space.ID, accountID); err == nil {
		return &JoinResult{Space: space, AlreadyMember: true}, nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	membership := &models.Membership{SpaceID: space.ID, AccountID: accountID}
	if err := s.repo.Membership().Create(ctx, membership); err != nil {
		if repositories.IsDuplicateError(err) {
			// Lost a race against a concurrent join by the same account.
			return &JoinResult{Space: space, AlreadyMember: true}, nil
		}
		return nil, fmt.Errorf("failed to join space: %w", err)
	}

	s.logger.Info("pupil joined space", "space_id", space.ID, "account_id", accountID)
	return &JoinResult{Space: space}, nil
}

func (s *spaceService) GetByID(ctx context.Context, id uint) (*models.Space, error) {
	space, err := s.repo.Space().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return space, nil
}

func (s *spaceService) ListOwned(ctx context.Context, ownerID uint) ([]*models.Space, error) {
	return s.repo.Space().ListByOwner(ctx, ownerID)
}

func (s *spaceService) ListJoined(ctx context.Context, accountID uint) ([]*models.Space, error) {
	return s.repo.Membership().ListSpacesByAccount(ctx, accountID)
}

func (s *spaceService) ListMembers(ctx context.Context, spaceID uint, actorID uint) ([]*models.Account, error) {
	space, err := s.GetByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != actorID {
		return nil, NewPermissionError(actorID, "space", "list members", "not the owner")
	}
	return s.repo.Membership().ListMemberAccounts(ctx, spaceID)
}

func (s *spaceService) CanView(ctx context.Context, spaceID, accountID uint) (bool, error) {
	space, err := s.repo.Space().GetByID(ctx, spaceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	if space.OwnerID == accountID {
		return true, nil
	}

	if _, err := s.repo.Membership().Get(ctx, spaceID, accountID); err == nil {
		return true, nil
	} else if !repositories.IsNotFoundError(err) {
		return false, err
	}
	return false, nil
}
