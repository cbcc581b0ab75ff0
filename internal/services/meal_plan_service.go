package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

type mealPlanService struct {
	repo   repositories.Repository
	diets  DietService
	cache  *cache.CacheManager
	logger *slog.Logger
}

func NewMealPlanService(repo repositories.Repository, diets DietService, cm *cache.CacheManager, logger *slog.Logger) MealPlanService {
	return &mealPlanService{
		repo:   repo,
		diets:  diets,
		cache:  cm,
		logger: logger,
	}
}

func (s *mealPlanService) Create(ctx context.Context, actor *models.User, req *MealPlanRequest) (*MealPlanResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}
	if req.DietID == nil {
		return nil, errGenericNotFound()
	}
	if err := s.requireDiet(ctx, *req.DietID); err != nil {
		return nil, err
	}

	plan := &models.MealPlan{DietID: *req.DietID}
	assign(&plan.Time, req.Time)
	plan.SetFoodIDs(req.Foods)

	if err := s.repo.MealPlans().Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}

	cache.InvalidateIntake(ctx, s.cache, plan.DietID)
	s.logger.Info("Meal plan created", "meal_plan_id", plan.MealPlanID, "diet_id", plan.DietID)
	return s.respond(ctx, plan)
}

func (s *mealPlanService) Edit(ctx context.Context, actor *models.User, req *MealPlanRequest) (*MealPlanResponse, error) {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return nil, err
	}

	plan, err := findOne(ctx, s.repo.MealPlans(), repositories.Filter{"meal_plan_id": req.MealPlanID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	previousDiet := plan.DietID

	if req.DietID != nil && *req.DietID != plan.DietID {
		if err := s.requireDiet(ctx, *req.DietID); err != nil {
			return nil, err
		}
		plan.DietID = *req.DietID
	}
	assign(&plan.Time, req.Time)
	if req.Foods != nil {
		plan.SetFoodIDs(req.Foods)
	}

	if err := s.repo.MealPlans().Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update meal plan: %w", err)
	}

	cache.InvalidateIntake(ctx, s.cache, previousDiet)
	if plan.DietID != previousDiet {
		cache.InvalidateIntake(ctx, s.cache, plan.DietID)
	}
	return s.respond(ctx, plan)
}

func (s *mealPlanService) Delete(ctx context.Context, actor *models.User, mealPlanID uint) error {
	if err := requireRole(actor, models.RoleManager); err != nil {
		return err
	}
	plan, err := findOne(ctx, s.repo.MealPlans(), repositories.Filter{"meal_plan_id": mealPlanID}, errGenericNotFound())
	if err != nil {
		return err
	}

	if _, err := s.repo.MealPlans().Delete(ctx, repositories.Filter{"meal_plan_id": mealPlanID}); err != nil {
		return fmt.Errorf("failed to delete meal plan: %w", err)
	}

	cache.InvalidateIntake(ctx, s.cache, plan.DietID)
	s.logger.Info("Meal plan deleted", "meal_plan_id", mealPlanID, "actor", actor.UserID)
	return nil
}

func (s *mealPlanService) Get(ctx context.Context, mealPlanID uint) (*MealPlanResponse, error) {
	plan, err := findOne(ctx, s.repo.MealPlans(), repositories.Filter{"meal_plan_id": mealPlanID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, plan)
}

func (s *mealPlanService) List(ctx context.Context, page string) (*Page[MealPlanResponse], error) {
	plans, overflow, err := paginate(ctx, s.repo.MealPlans(), page)
	if err != nil {
		return nil, err
	}

	results := make([]MealPlanResponse, 0, len(plans))
	for i := range plans {
		resp, err := s.respond(ctx, &plans[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *resp)
	}
	return &Page[MealPlanResponse]{Overflow: overflow, Results: results}, nil
}

func (s *mealPlanService) requireDiet(ctx context.Context, dietID uint) error {
	_, err := findOne(ctx, s.repo.Diets(), repositories.Filter{"diet_id": dietID}, errGenericNotFound())
	return err
}

func (s *mealPlanService) respond(ctx context.Context, plan *models.MealPlan) (*MealPlanResponse, error) {
	diet, err := s.diets.Get(ctx, plan.DietID)
	if err != nil {
		return nil, err
	}
	foods, err := resolveFoods(ctx, s.repo, plan)
	if err != nil {
		return nil, err
	}
	return &MealPlanResponse{MealPlan: *plan, Diet: *diet, Foods: foods}, nil
}
