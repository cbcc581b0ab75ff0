package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

type dietService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewDietService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger) DietService {
	return &dietService{
		repo:   repo,
		cache:  cm,
		logger: logger,
	}
}

func (s *dietService) Create(ctx context.Context, actor *models.User, req *DietRequest) (*DietResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	diet := &models.Diet{}
	assign(&diet.Name, req.Name)
	assign(&diet.Description, req.Description)
	assign(&diet.PhotoURL, req.PhotoURL)

	if err := s.repo.Diets().Create(ctx, diet); err != nil {
		return nil, fmt.Errorf("failed to create diet: %w", err)
	}

	s.logger.Info("Diet created", "diet_id", diet.DietID, "actor", actor.UserID)
	return s.respond(ctx, diet)
}

func (s *dietService) Edit(ctx context.Context, actor *models.User, req *DietRequest) (*DietResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	diet, err := findOne(ctx, s.repo.Diets(), repositories.Filter{"diet_id": req.DietID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	assign(&diet.Name, req.Name)
	assign(&diet.Description, req.Description)
	assign(&diet.PhotoURL, req.PhotoURL)

	if err := s.repo.Diets().Save(ctx, diet); err != nil {
		return nil, fmt.Errorf("failed to update diet: %w", err)
	}
	return s.respond(ctx, diet)
}

// Delete removes the diet with its meal plans and the profiles that follow it.
func (s *dietService) Delete(ctx context.Context, actor *models.User, dietID uint) error {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return err
	}
	if _, err := findOne(ctx, s.repo.Diets(), repositories.Filter{"diet_id": dietID}, errGenericNotFound()); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		byDiet := repositories.Filter{"diet_id": dietID}
		if _, err := tx.MealPlans().Delete(ctx, byDiet); err != nil {
			return fmt.Errorf("failed to delete meal plans: %w", err)
		}
		if _, err := tx.Profiles().Delete(ctx, byDiet); err != nil {
			return fmt.Errorf("failed to delete profiles: %w", err)
		}
		if _, err := tx.Diets().Delete(ctx, byDiet); err != nil {
			return fmt.Errorf("failed to delete diet: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateIntake(ctx, s.cache, dietID)
	s.logger.Info("Diet deleted", "diet_id", dietID, "actor", actor.UserID)
	return nil
}

func (s *dietService) Get(ctx context.Context, dietID uint) (*DietResponse, error) {
	diet, err := findOne(ctx, s.repo.Diets(), repositories.Filter{"diet_id": dietID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, diet)
}

func (s *dietService) List(ctx context.Context, page string) (*Page[DietResponse], error) {
	diets, overflow, err := paginate(ctx, s.repo.Diets(), page)
	if err != nil {
		return nil, err
	}

	results := make([]DietResponse, 0, len(diets))
	for i := range diets {
		resp, err := s.respond(ctx, &diets[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *resp)
	}
	return &Page[DietResponse]{Overflow: overflow, Results: results}, nil
}

// AverageIntake is cached per diet until a meal plan or food changes.
func (s *dietService) AverageIntake(ctx context.Context, dietID uint) (Intake, error) {
	var intake Intake
	key := strconv.FormatUint(uint64(dietID), 10)
	err := s.cache.Intake.CacheOrExecute(ctx, key, &intake, cache.IntakeCacheConfig.TTL, func() (interface{}, error) {
		return s.computeIntake(ctx, dietID)
	})
	if err != nil {
		return Intake{}, err
	}
	return intake, nil
}

func (s *dietService) computeIntake(ctx context.Context, dietID uint) (Intake, error) {
	plans, err := s.repo.MealPlans().FindMany(ctx, repositories.Filter{"diet_id": dietID})
	if err != nil {
		return Intake{}, fmt.Errorf("failed to load meal plans of diet %d: %w", dietID, err)
	}

	foods := make([][]models.Food, 0, len(plans))
	for i := range plans {
		resolved, err := resolveFoods(ctx, s.repo, &plans[i])
		if err != nil {
			return Intake{}, err
		}
		foods = append(foods, resolved)
	}
	return ComputeIntake(foods), nil
}

func (s *dietService) respond(ctx context.Context, diet *models.Diet) (*DietResponse, error) {
	intake, err := s.AverageIntake(ctx, diet.DietID)
	if err != nil {
		return nil, err
	}
	return &DietResponse{Diet: *diet, AverageIntake: intake}, nil
}
