package repositories

import (
	"context"

	"github.com/SAP-F-2025/diet-service/internal/models"
)

// Repository groups one Store per persisted model.
type Repository interface {
	Users() Store[models.User]
	Profiles() Store[models.Profile]
	Submissions() Store[models.Submission]
	Diets() Store[models.Diet]
	MealPlans() Store[models.MealPlan]
	Foods() Store[models.Food]
	Nutritions() Store[models.Nutrition]

	// WithTransaction runs fn against a repository bound to one
	// transaction; an error from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
