package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

var macros = []string{"carbs", "protein", "fat", "calories"}

// ComputeIntake averages a diet given the resolved foods of each meal plan.
//
// Macros are a mean of per-plan means: an empty plan counts as 0 and no
// plans give 0. Nutrient vectors are a flat per-key mean over every food
// of every plan that has nutrition; keys no food reports are absent.
func ComputeIntake(plans [][]models.Food) Intake {
	macroMeans := make(map[string]float64, len(macros))
	for _, property := range macros {
		var total float64
		for _, foods := range plans {
			total += planMean(foods, property)
		}
		if len(plans) > 0 {
			macroMeans[property] = total / float64(len(plans))
		}
	}

	return Intake{
		Carbs:      macroMeans["carbs"],
		Protein:    macroMeans["protein"],
		Fat:        macroMeans["fat"],
		Calories:   macroMeans["calories"],
		Vitamins:   vectorMean(plans, "vitamins"),
		Minerals:   vectorMean(plans, "minerals"),
		AminoAcids: vectorMean(plans, "amino_acids"),
	}
}

func planMean(foods []models.Food, property string) float64 {
	if len(foods) == 0 {
		return 0
	}
	var sum float64
	for i := range foods {
		sum += foods[i].Macro(property)
	}
	return sum / float64(len(foods))
}

func vectorMean(plans [][]models.Food, property string) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, foods := range plans {
		for i := range foods {
			if foods[i].Nutrition == nil {
				continue
			}
			for key, value := range foods[i].Nutrition.Vector(property) {
				sums[key] += value
				counts[key]++
			}
		}
	}

	out := make(map[string]float64, len(sums))
	for key, sum := range sums {
		out[key] = sum / float64(counts[key])
	}
	return out
}

// resolveFoods loads the foods of a meal plan in stored order, with their
// nutrition attached. Ids that no longer resolve are dropped; repeated ids
// yield the food once per occurrence.
func resolveFoods(ctx context.Context, repo repositories.Repository, plan *models.MealPlan) ([]models.Food, error) {
	ids := plan.FoodIDs()
	if len(ids) == 0 {
		return []models.Food{}, nil
	}

	found, err := repo.Foods().FindMany(ctx, repositories.Filter{"food_id": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load foods of meal plan %d: %w", plan.MealPlanID, err)
	}
	if err := attachNutrition(ctx, repo, found); err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Food, len(found))
	for _, food := range found {
		byID[food.FoodID] = food
	}
	foods := make([]models.Food, 0, len(ids))
	for _, id := range ids {
		if food, ok := byID[id]; ok {
			foods = append(foods, food)
		}
	}
	return foods, nil
}

// attachNutrition fills Food.Nutrition for every food that references one.
func attachNutrition(ctx context.Context, repo repositories.Repository, foods []models.Food) error {
	var ids []uint
	for _, food := range foods {
		if food.NutritionID != nil {
			ids = append(ids, *food.NutritionID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := repo.Nutritions().FindMany(ctx, repositories.Filter{"nutrition_id": ids})
	if err != nil {
		return fmt.Errorf("failed to load nutrition: %w", err)
	}
	byID := make(map[uint]*models.Nutrition, len(rows))
	for i := range rows {
		byID[rows[i].NutritionID] = &rows[i]
	}
	for i := range foods {
		if foods[i].NutritionID != nil {
			foods[i].Nutrition = byID[*foods[i].NutritionID]
		}
	}
	return nil
}
