package handlers

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/diet-service/internal/i18n"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/services"
)

// Response shapes. Records are never written to clients directly so that
// hashes and foreign keys stay internal.

type RoleView struct {
	ID   models.UserRole `json:"id"`
	Name string          `json:"name"`
}

type UserView struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Weight        *float64  `json:"weight"`
	BodyFat       *float64  `json:"body_fat"`
	HeartRate     *int      `json:"heart_rate"`
	BloodPressure *int      `json:"blood_pressure"`
	OxygenLevel   *int      `json:"oxygen_level"`
	Role          RoleView  `json:"role"`
	DateOfBirth   string    `json:"date_of_birth"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

type NutritionView struct {
	NutritionID uint               `json:"nutrition_id"`
	Vitamins    map[string]float64 `json:"vitamins"`
	Minerals    map[string]float64 `json:"minerals"`
	AminoAcids  map[string]float64 `json:"amino_acids"`
}

type FoodView struct {
	FoodID      uint           `json:"food_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PhotoURL    string         `json:"photo_url"`
	Carbs       float64        `json:"carbs"`
	Protein     float64        `json:"protein"`
	Fat         float64        `json:"fat"`
	Calories    float64        `json:"calories"`
	Nutrition   *NutritionView `json:"nutrition"`
}

type DietView struct {
	DietID        uint            `json:"diet_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PhotoURL      string          `json:"photo_url"`
	AverageIntake services.Intake `json:"average_intake"`
}

type MealPlanView struct {
	MealPlanID uint            `json:"meal_plan_id"`
	Time       models.MealTime `json:"time"`
	Diet       DietView        `json:"diet"`
	Foods      []FoodView      `json:"foods"`
}

type SubmissionView struct {
	SubmissionID uint      `json:"submission_id"`
	Note         string    `json:"note"`
	Reviewer     *UserView `json:"reviewer"`
	User         *UserView `json:"user"`
	IsAccepted   bool      `json:"is_accepted"`
}

type ProfileView struct {
	ProfileID   uint                   `json:"profile_id"`
	Preferences map[string]interface{} `json:"preferences"`
	Diet        *DietView              `json:"diet"`
	Nutrition   *NutritionView         `json:"nutrition"`
	User        UserView               `json:"user"`
}

type PageView[V any] struct {
	Overflow int64 `json:"overflow"`
	Results  []V   `json:"results"`
}

func userView(tr i18n.Translator, u *models.User) UserView {
	v := UserView{
		UserID:        u.UserID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Weight:        u.Weight,
		BodyFat:       u.BodyFat,
		HeartRate:     u.HeartRate,
		BloodPressure: u.BloodPressure,
		OxygenLevel:   u.OxygenLevel,
		Role:          RoleView{ID: u.Role, Name: tr.Translate(fmt.Sprintf("role.%d", u.Role))},
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		LastSeenAt:    u.LastSeenAt,
	}
	if !u.DateOfBirth.IsZero() {
		v.DateOfBirth = u.DateOfBirth.Format(time.DateOnly)
	}
	return v
}

func optionalUserView(tr i18n.Translator, u *models.User) *UserView {
	if u == nil {
		return nil
	}
	v := userView(tr, u)
	return &v
}

func nutritionView(n *models.Nutrition) *NutritionView {
	if n == nil {
		return nil
	}
	return &NutritionView{
		NutritionID: n.NutritionID,
		Vitamins:    nonNil(n.Vitamins.Data()),
		Minerals:    nonNil(n.Minerals.Data()),
		AminoAcids:  nonNil(n.AminoAcids.Data()),
	}
}

func nonNil(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func foodView(f *models.Food) FoodView {
	return FoodView{
		FoodID:      f.FoodID,
		Name:        f.Name,
		Description: f.Description,
		PhotoURL:    f.PhotoURL,
		Carbs:       f.Carbs,
		Protein:     f.Protein,
		Fat:         f.Fat,
		Calories:    f.Calories,
		Nutrition:   nutritionView(f.Nutrition),
	}
}

func foodResponseView(f *services.FoodResponse) FoodView {
	return foodView(&f.Food)
}

func dietView(d *services.DietResponse) DietView {
	return DietView{
		DietID:        d.DietID,
		Name:          d.Name,
		Description:   d.Description,
		PhotoURL:      d.PhotoURL,
		AverageIntake: d.AverageIntake,
	}
}

func mealPlanView(m *services.MealPlanResponse) MealPlanView {
	foods := make([]FoodView, len(m.Foods))
	for i := range m.Foods {
		foods[i] = foodView(&m.Foods[i])
	}
	return MealPlanView{
		MealPlanID: m.MealPlanID,
		Time:       m.Time,
		Diet:       dietView(&m.Diet),
		Foods:      foods,
	}
}

func submissionView(tr i18n.Translator, s *services.SubmissionResponse) SubmissionView {
	return SubmissionView{
		SubmissionID: s.SubmissionID,
		Note:         s.Note,
		Reviewer:     optionalUserView(tr, s.Reviewer),
		User:         optionalUserView(tr, s.User),
		IsAccepted:   s.IsAccepted,
	}
}

func profileView(tr i18n.Translator, p *services.ProfileResponse) ProfileView {
	v := ProfileView{
		ProfileID:   p.Profile.ProfileID,
		Preferences: map[string]interface{}(p.Profile.Preferences),
		Nutrition:   nutritionView(p.Nutrition),
		User:        userView(tr, &p.User),
	}
	if v.Preferences == nil {
		v.Preferences = map[string]interface{}{}
	}
	if p.Diet != nil {
		diet := dietView(p.Diet)
		v.Diet = &diet
	}
	return v
}

func pageView[T, V any](page *services.Page[T], view func(*T) V) PageView[V] {
	results := make([]V, len(page.Results))
	for i := range page.Results {
		results[i] = view(&page.Results[i])
	}
	return PageView[V]{Overflow: page.Overflow, Results: results}
}
