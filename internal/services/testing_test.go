package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/synapse-edu/classroom-service/internal/models"
	"github.com/synapse-edu/classroom-service/internal/repositories/inmem"
	"github.com/synapse-edu/classroom-service/internal/storage"
	"github.com/synapse-edu/classroom-service/internal/utils"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

// testEnv bundles the shared fakes for service tests.
type testEnv struct {
	repo      *inmem.Repository
	store     *storage.LocalStore
	logger    *slog.Logger
	utilsLog  utils.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		repo:      inmem.New(),
		store:     store,
		logger:    logger,
		utilsLog:  utils.NewSlogLogger(logger),
		validator: validator.New(),
	}
}

func (e *testEnv) createMaster(t *testing.T, email string) *models.Account {
	t.Helper()
	account := &models.Account{
		SubjectID:   "sub-" + email,
		Email:       email,
		DisplayName: "Master " + email,
		Role:        models.RoleMaster,
	}
	if err := e.repo.Account().Create(context.Background(), account); err != nil {
		t.Fatalf("create master: %v", err)
	}
	return account
}

func (e *testEnv) createPupil(t *testing.T, email string) *models.Account {
	t.Helper()
	account := &models.Account{
		SubjectID:   "sub-" + email,
		Email:       email,
		DisplayName: "Pupil " + email,
		Role:        models.RolePupil,
	}
	if err := e.repo.Account().Create(context.Background(), account); err != nil {
		t.Fatalf("create pupil: %v", err)
	}
	return account
}

func (e *testEnv) createSpace(t *testing.T, ownerID uint, name string) *models.Space {
	t.Helper()
	space := &models.Space{Name: name, JoinCode: "code" + name, OwnerID: ownerID}
	if err := e.repo.Space().Create(context.Background(), space); err != nil {
		t.Fatalf("create space: %v", err)
	}
	return space
}

func (e *testEnv) enroll(t *testing.T, spaceID, accountID uint) {
	t.Helper()
	m := &models.Membership{SpaceID: spaceID, AccountID: accountID}
	if err := e.repo.Membership().Create(context.Background(), m); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}

func upload(name, content string) *UploadedFile {
	return &UploadedFile{Filename: name, Content: strings.NewReader(content)}
}
