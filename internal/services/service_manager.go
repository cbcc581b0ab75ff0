package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/diet-service/internal/bulk"
	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
	"github.com/SAP-F-2025/diet-service/internal/security"
)

// Dependencies are the collaborators shared by every service. Cache may
// wrap a nil redis client; Publisher may be nil.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Hasher    security.PasswordHasher
	Logger    *slog.Logger
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps Dependencies

	accountService    AccountService
	foodService       FoodService
	dietService       DietService
	mealPlanService   MealPlanService
	submissionService SubmissionService
	systemService     SystemService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{deps: deps}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.deps.Repo == nil || sm.deps.Hasher == nil || sm.deps.Logger == nil {
		return errors.New("repository, hasher and logger are required")
	}

	sm.deps.Logger.Info("Initializing service manager")
	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")
	return nil
}

func (sm *serviceManager) initializeServices() error {
	d := sm.deps

	bulkService, err := bulk.NewService(d.Repo, d.Logger)
	if err != nil {
		return err
	}

	sm.dietService = NewDietService(d.Repo, d.Cache, d.Logger)
	sm.foodService = NewFoodService(d.Repo, d.Cache, d.Logger)
	sm.mealPlanService = NewMealPlanService(d.Repo, sm.dietService, d.Cache, d.Logger)
	sm.accountService = NewAccountService(d.Repo, sm.dietService, d.Hasher, d.Cache, d.Publisher, d.Logger)
	sm.submissionService = NewSubmissionService(d.Repo, d.Publisher, d.Logger)
	sm.systemService = NewSystemService(bulkService, d.Cache, d.Publisher, d.Logger)
	return nil
}

// Service getters
func (sm *serviceManager) Account() AccountService {
	sm.mustBeInitialized()
	return sm.accountService
}

func (sm *serviceManager) Food() FoodService {
	sm.mustBeInitialized()
	return sm.foodService
}

func (sm *serviceManager) Diet() DietService {
	sm.mustBeInitialized()
	return sm.dietService
}

func (sm *serviceManager) MealPlan() MealPlanService {
	sm.mustBeInitialized()
	return sm.mealPlanService
}

func (sm *serviceManager) Submission() SubmissionService {
	sm.mustBeInitialized()
	return sm.submissionService
}

func (sm *serviceManager) System() SystemService {
	sm.mustBeInitialized()
	return sm.systemService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	// The cache is optional; an unreachable redis only costs latency.
	if err := sm.deps.Cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		sm.deps.Logger.Warn("Cache health check failed", "error", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}
	sm.deps.Logger.Info("Shutting down service manager")
	sm.shutdown = true

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			return fmt.Errorf("failed to close event publisher: %w", err)
		}
	}
	return nil
}
