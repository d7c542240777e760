package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/synapse-edu/classroom-service/internal/cache"
	"github.com/synapse-edu/classroom-service/internal/repositories"
)

// translateError maps gorm errors to the repository sentinels.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PostgreSQLRepository implements the main Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	account        repositories.AccountRepository
	space          repositories.SpaceRepository
	membership     repositories.MembershipRepository
	assignment     repositories.AssignmentRepository
	submission     repositories.SubmissionRepository
	feedbackReport repositories.FeedbackReportRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository aggregate with all
// sub-repositories wired to the given connection.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}
	repo.initSubRepositories(config.DB)
	return repo
}

func (r *PostgreSQLRepository) initSubRepositories(db *gorm.DB) {
	r.account = NewAccountPostgreSQL(db, r.cacheManager)
	r.space = NewSpacePostgreSQL(db, r.cacheManager)
	r.membership = NewMembershipPostgreSQL(db, r.cacheManager)
	r.assignment = NewAssignmentPostgreSQL(db)
	r.submission = NewSubmissionPostgreSQL(db)
	r.feedbackReport = NewFeedbackReportPostgreSQL(db)
}

func (r *PostgreSQLRepository) Account() repositories.AccountRepository {
	return r.account
}

func (r *PostgreSQLRepository) Space() repositories.SpaceRepository {
	return r.space
}

func (r *PostgreSQLRepository) Membership() repositories.MembershipRepository {
	return r.membership
}

func (r *PostgreSQLRepository) Assignment() repositories.AssignmentRepository {
	return r.assignment
}

func (r *PostgreSQLRepository) Submission() repositories.SubmissionRepository {
	return r.submission
}

func (r *PostgreSQLRepository) FeedbackReport() repositories.FeedbackReportRepository {
	return r.feedbackReport
}

// WithTransaction executes fn against a repository bound to a single
// database transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}
		txRepo.initSubRepositories(tx)
		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}
	return nil
}

// Close closes all connections.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	return nil
}

// RepositoryManager implements the RepositoryManager interface.
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize validates connections and builds the repository aggregate.
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
