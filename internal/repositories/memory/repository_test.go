package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return repo
}

func TestStore_CreateAssignsKeysAndTimestamps(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first := &models.Diet{Name: "keto"}
	second := &models.Diet{Name: "vegan"}
	for _, d := range []*models.Diet{first, second} {
		if err := repo.Diets().Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if first.DietID != 1 || second.DietID != 2 {
		t.Errorf("ids = %d, %d, want 1, 2", first.DietID, second.DietID)
	}

	user := &models.User{UserID: "jane", Email: "jane@example.com"}
	if err := repo.Users().Create(ctx, user); err != nil {
		t.Fatal(err)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() || user.LastSeenAt.IsZero() {
		t.Errorf("timestamps not assigned: %+v", user)
	}
	if err := repo.Users().Create(ctx, &models.User{UserID: "jane"}); err == nil {
		t.Error("expected duplicate primary key to fail")
	}
}

func TestStore_FindByFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	plans := []*models.MealPlan{
		{DietID: 1, Time: models.MealLunch},
		{DietID: 2, Time: models.MealLunch},
		{DietID: 1, Time: models.MealDinner},
	}
	for _, p := range plans {
		if err := repo.MealPlans().Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter repositories.Filter
		want   []uint
	}{
		{name: "all", filter: nil, want: []uint{1, 2, 3}},
		{name: "by foreign key", filter: repositories.Filter{"diet_id": uint(1)}, want: []uint{1, 3}},
		{name: "by enum", filter: repositories.Filter{"time": int(models.MealLunch)}, want: []uint{1, 2}},
		{name: "in list", filter: repositories.Filter{"meal_plan_id": []uint{3, 2, 9}}, want: []uint{2, 3}},
		{name: "combined", filter: repositories.Filter{"diet_id": 1, "time": models.MealDinner}, want: []uint{3}},
		{name: "no match", filter: repositories.Filter{"diet_id": 7}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.MealPlans().FindMany(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FindMany() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FindMany() = %d rows, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].MealPlanID != id {
					t.Errorf("row %d = %d, want %d", i, got[i].MealPlanID, id)
				}
			}
		})
	}

	if _, err := repo.MealPlans().FindMany(ctx, repositories.Filter{"nope": 1}); err == nil {
		t.Error("expected unknown column to fail")
	}
	if _, err := repo.MealPlans().FindOne(ctx, repositories.Filter{"diet_id": 9}); !repositories.IsNotFoundError(err) {
		t.Errorf("FindOne() error = %v, want not found", err)
	}
}

func TestStore_NullFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	dietID := uint(4)
	if err := repo.Profiles().Create(ctx, &models.Profile{UserID: "a", DietID: &dietID}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Profiles().Create(ctx, &models.Profile{UserID: "b"}); err != nil {
		t.Fatal(err)
	}

	withDiet, _ := repo.Profiles().FindMany(ctx, repositories.Filter{"diet_id": uint(4)})
	withoutDiet, _ := repo.Profiles().FindMany(ctx, repositories.Filter{"diet_id": nil})
	if len(withDiet) != 1 || withDiet[0].UserID != "a" {
		t.Errorf("with diet = %+v", withDiet)
	}
	if len(withoutDiet) != 1 || withoutDiet[0].UserID != "b" {
		t.Errorf("without diet = %+v", withoutDiet)
	}
}

func TestStore_SaveDeletePage(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if err := repo.Foods().Create(ctx, &models.Food{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	food, err := repo.Foods().FindOne(ctx, repositories.Filter{"food_id": 2})
	if err != nil {
		t.Fatal(err)
	}
	food.Name = "bb"
	food.Nutrition = &models.Nutrition{NutritionID: 99}
	if err := repo.Foods().Save(ctx, food); err != nil {
		t.Fatal(err)
	}
	stored, _ := repo.Foods().FindOne(ctx, repositories.Filter{"food_id": 2})
	if stored.Name != "bb" || stored.Nutrition != nil {
		t.Errorf("stored = %+v, want renamed without association", stored)
	}

	page, total, err := repo.Foods().Page(ctx, 1, 2)
	if err != nil || total != 5 || len(page) != 2 || page[0].Name != "bb" || page[1].Name != "c" {
		t.Errorf("Page() = %+v, %d, %v", page, total, err)
	}
	page, _, _ = repo.Foods().Page(ctx, 10, 2)
	if len(page) != 0 {
		t.Errorf("Page() past the end = %+v", page)
	}

	n, err := repo.Foods().Delete(ctx, repositories.Filter{"food_id": []uint{1, 3}})
	if err != nil || n != 2 {
		t.Errorf("Delete() = %d, %v", n, err)
	}
	if count, _ := repo.Foods().Count(ctx, nil); count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
	if _, err := repo.Foods().Delete(ctx, nil); err == nil {
		t.Error("expected delete without filter to fail")
	}
}

func TestRepository_WithTransaction(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Diets().Create(ctx, &models.Diet{Name: "paleo"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction() error = %v", err)
	}
	if n, _ := repo.Diets().Count(ctx, nil); n != 0 {
		t.Errorf("rolled back transaction left %d diets", n)
	}

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Diets().Create(ctx, &models.Diet{Name: "paleo"})
	})
	if err != nil {
		t.Fatal(err)
	}
	d, err := repo.Diets().FindOne(ctx, repositories.Filter{"name": "paleo"})
	if err != nil || d.DietID != 1 {
		t.Errorf("committed diet = %+v, %v", d, err)
	}
}

func TestRepositoryManager_Lifecycle(t *testing.T) {
	rm := NewRepositoryManager()
	if err := rm.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Initialize should fail")
	}
	if err := rm.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := rm.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := rm.GetRepository().Diets().Create(context.Background(), &models.Diet{Name: "keto"}); err != nil {
		t.Errorf("Create() error = %v", err)
	}
	if err := rm.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestStore_CreateEveryModel(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	nutrition := &models.Nutrition{Vitamins: models.NutrientVector{}}
	tests := []struct {
		name   string
		create func() error
	}{
		{"user", func() error {
			return repo.Users().Create(ctx, &models.User{
				UserID:      "jane",
				Email:       "jane@example.com",
				Password:    "hash",
				Submissions: []models.Submission{{Note: "attached"}},
			})
		}},
		{"nutrition", func() error { return repo.Nutritions().Create(ctx, nutrition) }},
		{"food", func() error {
			return repo.Foods().Create(ctx, &models.Food{Name: "egg", NutritionID: &nutrition.NutritionID, Nutrition: nutrition})
		}},
		{"diet", func() error { return repo.Diets().Create(ctx, &models.Diet{Name: "keto"}) }},
		{"meal plan", func() error {
			return repo.MealPlans().Create(ctx, &models.MealPlan{DietID: 1, Foods: "1", Diet: models.Diet{Name: "inline"}})
		}},
		{"profile", func() error {
			return repo.Profiles().Create(ctx, &models.Profile{UserID: "jane", Nutrition: nutrition})
		}},
		{"submission", func() error {
			return repo.Submissions().Create(ctx, &models.Submission{Note: "x", UserID: "jane"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.create(); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		})
	}

	user, err := repo.Users().FindOne(ctx, repositories.Filter{"user_id": "jane"})
	if err != nil {
		t.Fatal(err)
	}
	if user.Submissions != nil {
		t.Errorf("stored user kept its associations: %+v", user.Submissions)
	}
	food, err := repo.Foods().FindOne(ctx, repositories.Filter{"name": "egg"})
	if err != nil {
		t.Fatal(err)
	}
	if food.Nutrition != nil || food.NutritionID == nil || *food.NutritionID != nutrition.NutritionID {
		t.Errorf("stored food = %+v", food)
	}
	if n, _ := repo.Submissions().Count(ctx, nil); n != 1 {
		t.Errorf("Count(submissions) = %d, want 1", n)
	}
}

func TestRepository_WithTransactionCancelled(t *testing.T) {
	repo := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		err := tx.Diets().Create(context.Background(), &models.Diet{Name: "paleo"})
		cancel()
		return err
	})
	if err != nil {
		t.Fatalf("committed transaction reported %v", err)
	}
	if n, _ := repo.Diets().Count(context.Background(), nil); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}

	called := false
	err = repo.WithTransaction(ctx, func(repositories.Repository) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) || called {
		t.Errorf("WithTransaction(cancelled) = %v, called = %v", err, called)
	}
}
