package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

type foodService struct {
	repo   repositories.Repository
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewFoodService(repo repositories.Repository, cm *cache.CacheManager, logger *slog.Logger) FoodService {
	return &foodService{
		repo:   repo,
		cache:  cm,
		logger: logger,
	}
}

func (s *foodService) Create(ctx context.Context, actor *models.User, req *FoodRequest) (*FoodResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	food := &models.Food{}
	applyFood(food, req)
	nutrition := &models.Nutrition{
		Vitamins:   models.NewNutrientVector(req.Vitamins),
		Minerals:   models.NewNutrientVector(req.Minerals),
		AminoAcids: models.NewNutrientVector(req.AminoAcids),
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Nutritions().Create(ctx, nutrition); err != nil {
			return fmt.Errorf("failed to create nutrition: %w", err)
		}
		nutritionID := nutrition.NutritionID
		food.NutritionID = &nutritionID
		if err := tx.Foods().Create(ctx, food); err != nil {
			return fmt.Errorf("failed to create food: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Food created", "food_id", food.FoodID, "actor", actor.UserID)
	food.Nutrition = nutrition
	return &FoodResponse{Food: *food}, nil
}

func (s *foodService) Edit(ctx context.Context, actor *models.User, req *FoodRequest) (*FoodResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	food, err := findOne(ctx, s.repo.Foods(), repositories.Filter{"food_id": req.FoodID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	applyFood(food, req)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if req.Vitamins != nil || req.Minerals != nil || req.AminoAcids != nil {
			nutrition, err := s.ownedNutrition(ctx, tx, food)
			if err != nil {
				return err
			}
			if req.Vitamins != nil {
				nutrition.Vitamins = models.NewNutrientVector(req.Vitamins)
			}
			if req.Minerals != nil {
				nutrition.Minerals = models.NewNutrientVector(req.Minerals)
			}
			if req.AminoAcids != nil {
				nutrition.AminoAcids = models.NewNutrientVector(req.AminoAcids)
			}
			if err := tx.Nutritions().Save(ctx, nutrition); err != nil {
				return fmt.Errorf("failed to update nutrition: %w", err)
			}
			nutritionID := nutrition.NutritionID
			food.NutritionID = &nutritionID
		}
		if err := tx.Foods().Save(ctx, food); err != nil {
			return fmt.Errorf("failed to update food: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAllIntake(ctx, s.cache)
	return s.Get(ctx, food.FoodID)
}

// ownedNutrition returns the food's nutrition row, creating an empty one
// when the food has none.
func (s *foodService) ownedNutrition(ctx context.Context, tx repositories.Repository, food *models.Food) (*models.Nutrition, error) {
	if food.NutritionID != nil {
		nutrition, err := findOptional(ctx, tx.Nutritions(), repositories.Filter{"nutrition_id": *food.NutritionID})
		if err != nil {
			return nil, err
		}
		if nutrition != nil {
			return nutrition, nil
		}
	}

	nutrition := &models.Nutrition{
		Vitamins:   models.NewNutrientVector(nil),
		Minerals:   models.NewNutrientVector(nil),
		AminoAcids: models.NewNutrientVector(nil),
	}
	if err := tx.Nutritions().Create(ctx, nutrition); err != nil {
		return nil, fmt.Errorf("failed to create nutrition: %w", err)
	}
	return nutrition, nil
}

// Delete removes the food and the nutrition it owns. Meal plans that list
// the food keep its id; it is skipped when they are resolved.
func (s *foodService) Delete(ctx context.Context, actor *models.User, foodID uint) error {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return err
	}
	food, err := findOne(ctx, s.repo.Foods(), repositories.Filter{"food_id": foodID}, errGenericNotFound())
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.Foods().Delete(ctx, repositories.Filter{"food_id": foodID}); err != nil {
			return fmt.Errorf("failed to delete food: %w", err)
		}
		if food.NutritionID != nil {
			if _, err := tx.Nutritions().Delete(ctx, repositories.Filter{"nutrition_id": *food.NutritionID}); err != nil {
				return fmt.Errorf("failed to delete nutrition: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateAllIntake(ctx, s.cache)
	s.logger.Info("Food deleted", "food_id", foodID, "actor", actor.UserID)
	return nil
}

func (s *foodService) Get(ctx context.Context, foodID uint) (*FoodResponse, error) {
	food, err := findOne(ctx, s.repo.Foods(), repositories.Filter{"food_id": foodID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	foods := []models.Food{*food}
	if err := attachNutrition(ctx, s.repo, foods); err != nil {
		return nil, err
	}
	return &FoodResponse{Food: foods[0]}, nil
}

func (s *foodService) List(ctx context.Context, page string) (*Page[FoodResponse], error) {
	foods, overflow, err := paginate(ctx, s.repo.Foods(), page)
	if err != nil {
		return nil, err
	}
	if err := attachNutrition(ctx, s.repo, foods); err != nil {
		return nil, err
	}

	results := make([]FoodResponse, len(foods))
	for i := range foods {
		results[i] = FoodResponse{Food: foods[i]}
	}
	return &Page[FoodResponse]{Overflow: overflow, Results: results}, nil
}

func applyFood(food *models.Food, req *FoodRequest) {
	assign(&food.Name, req.Name)
	assign(&food.Description, req.Description)
	assign(&food.PhotoURL, req.PhotoURL)
	assign(&food.Carbs, req.Carbs)
	assign(&food.Protein, req.Protein)
	assign(&food.Fat, req.Fat)
	assign(&food.Calories, req.Calories)
}
