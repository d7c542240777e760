package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/synapse-edu/classroom-service/internal/events"
	"github.com/synapse-edu/classroom-service/internal/llm"
	"github.com/synapse-edu/classroom-service/internal/repositories"
	"github.com/synapse-edu/classroom-service/internal/storage"
	"github.com/synapse-edu/classroom-service/internal/validator"
)

// ServiceManagerConfig holds the dependencies the services share.
type ServiceManagerConfig struct {
	Repo         repositories.Repository
	Store        *storage.LocalStore
	Publisher    events.EventPublisher
	Generator    llm.TextGenerator
	Logger       *slog.Logger
	Validator    *validator.Validator
	MasterEmails []string
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	config ServiceManagerConfig

	identityService   IdentityService
	spaceService      SpaceService
	assignmentService AssignmentService
	submissionService SubmissionService
	feedbackService   FeedbackService
	exportService     ExportService

	shutdown bool
	mu       sync.RWMutex
}

// NewServiceManager wires every service against the shared
// dependencies.
func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	sm := &serviceManager{config: config}

	sm.identityService = NewIdentityService(config.Repo, config.Logger, config.MasterEmails)
	sm.spaceService = NewSpaceService(config.Repo, config.Logger, config.Validator)
	sm.assignmentService = NewAssignmentService(config.Repo, config.Store, config.Publisher, config.Logger, config.Validator)
	sm.submissionService = NewSubmissionService(config.Repo, config.Store, config.Logger)
	sm.feedbackService = NewFeedbackService(config.Repo, config.Store, config.Generator, config.Logger)
	sm.exportService = NewExportService(config.Repo, config.Logger)

	return sm
}

func (sm *serviceManager) Identity() IdentityService     { return sm.identityService }
func (sm *serviceManager) Space() SpaceService           { return sm.spaceService }
func (sm *serviceManager) Assignment() AssignmentService { return sm.assignmentService }
func (sm *serviceManager) Submission() SubmissionService { return sm.submissionService }
func (sm *serviceManager) Feedback() FeedbackService     { return sm.feedbackService }
func (sm *serviceManager) Export() ExportService         { return sm.exportService }

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	return sm.config.Repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.shutdown = true
	sm.config.Logger.Info("service manager shut down")
	return nil
}
