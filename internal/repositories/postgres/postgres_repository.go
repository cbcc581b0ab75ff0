package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

// PostgreSQLRepository implements repositories.Repository on gorm.
type PostgreSQLRepository struct {
	db *gorm.DB

	users       repositories.Store[models.User]
	profiles    repositories.Store[models.Profile]
	submissions repositories.Store[models.Submission]
	diets       repositories.Store[models.Diet]
	mealPlans   repositories.Store[models.MealPlan]
	foods       repositories.Store[models.Food]
	nutritions  repositories.Store[models.Nutrition]
}

type RepositoryConfig struct {
	DB *gorm.DB
}

func NewPostgreSQLRepository(db *gorm.DB) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:          db,
		users:       newStore[models.User](db, "user"),
		profiles:    newStore[models.Profile](db, "profile"),
		submissions: newStore[models.Submission](db, "submission"),
		diets:       newStore[models.Diet](db, "diet"),
		mealPlans:   newStore[models.MealPlan](db, "meal plan"),
		foods:       newStore[models.Food](db, "food"),
		nutritions:  newStore[models.Nutrition](db, "nutrition"),
	}
}

func (r *PostgreSQLRepository) Users() repositories.Store[models.User] {
	return r.users
}

func (r *PostgreSQLRepository) Profiles() repositories.Store[models.Profile] {
	return r.profiles
}

func (r *PostgreSQLRepository) Submissions() repositories.Store[models.Submission] {
	return r.submissions
}

func (r *PostgreSQLRepository) Diets() repositories.Store[models.Diet] {
	return r.diets
}

func (r *PostgreSQLRepository) MealPlans() repositories.Store[models.MealPlan] {
	return r.mealPlans
}

func (r *PostgreSQLRepository) Foods() repositories.Store[models.Food] {
	return r.foods
}

func (r *PostgreSQLRepository) Nutritions() repositories.Store[models.Nutrition] {
	return r.nutritions
}

// WithTransaction executes fn within a database transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewPostgreSQLRepository(tx))
	})
}

// SyncSequence moves the serial sequence of table.column past the largest
// stored key.
func (r *PostgreSQLRepository) SyncSequence(ctx context.Context, table, column string) error {
	err := r.db.WithContext(ctx).Exec(
		"SELECT setval(pg_get_serial_sequence(?, ?), COALESCE((SELECT MAX(?) FROM ?), 0) + 1, false)",
		table, column, clause.Column{Name: column}, clause.Table{Name: table},
	).Error
	if err != nil {
		return handleDBError(err, "sync sequence of "+table)
	}
	return nil
}

// Ping checks the database connection.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// RepositoryManager implements repositories.RepositoryManager.
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize verifies the connection and builds the repository.
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

	rm.repo = NewPostgreSQLRepository(rm.config.DB)
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
