package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/diet-service/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

type RegisterRequest struct {
	UserID      string
	Password    string
	Email       string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
}

// Vitals are the body measurements a user or a device may report. Nil
// fields are left unchanged.
type Vitals struct {
	Weight        *float64
	BodyFat       *float64
	BloodPressure *int
	HeartRate     *int
	OxygenLevel   *int
}

// EditUserRequest changes the fields that are set. Role is applied only
// for admin actors.
type EditUserRequest struct {
	UserID      string
	Password    *string
	Email       *string
	FirstName   *string
	LastName    *string
	DateOfBirth *time.Time
	Role        *models.UserRole
	Vitals      Vitals
}

type EditProfileRequest struct {
	UserID      string
	Preferences map[string]interface{}
	DietID      *uint
}

// FoodRequest carries a food and its nutrient vectors. On create every
// scalar is used as given; on edit only set fields change. A nil vector
// is left unchanged, a non-nil one replaces the stored vector.
type FoodRequest struct {
	FoodID      uint
	Name        *string
	Description *string
	PhotoURL    *string
	Carbs       *float64
	Protein     *float64
	Fat         *float64
	Calories    *float64
	Vitamins    map[string]float64
	Minerals    map[string]float64
	AminoAcids  map[string]float64
}

type DietRequest struct {
	DietID      uint
	Name        *string
	Description *string
	PhotoURL    *string
}

type MealPlanRequest struct {
	MealPlanID uint
	Time       *models.MealTime
	DietID     *uint
	Foods      []int64
}

type SubmissionRequest struct {
	SubmissionID uint
	Note         *string
	IsAccepted   *bool
}

// Intake is the average nutrition of a diet.
type Intake struct {
	Carbs      float64            `json:"carbs"`
	Protein    float64            `json:"protein"`
	Fat        float64            `json:"fat"`
	Calories   float64            `json:"calories"`
	Vitamins   map[string]float64 `json:"vitamins"`
	Minerals   map[string]float64 `json:"minerals"`
	AminoAcids map[string]float64 `json:"amino_acids"`
}

type DietResponse struct {
	models.Diet
	AverageIntake Intake
}

type FoodResponse struct {
	models.Food
}

type MealPlanResponse struct {
	models.MealPlan
	Diet  DietResponse
	Foods []models.Food
}

type ProfileResponse struct {
	Profile   models.Profile
	User      models.User
	Diet      *DietResponse
	Nutrition *models.Nutrition
}

type SubmissionResponse struct {
	models.Submission
	User     *models.User
	Reviewer *models.User
}

// RollbackResult reports an import. Known is false for a resource that
// the system does not export.
type RollbackResult struct {
	Known     bool
	Rows      int
	HasErrors bool
}

// ===== SERVICE INTERFACES =====

type AccountService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Login(ctx context.Context, userID, password string) (*models.User, error)
	// Authenticate resolves an "@<user_id>:<credential>" token.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	// AuthenticateExternal resolves a user vouched for by the SSO provider.
	AuthenticateExternal(ctx context.Context, userID string) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, userID string) error
	Get(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context, page string) (*Page[models.User], error)
	Edit(ctx context.Context, actor *models.User, req *EditUserRequest) (*models.User, error)
	Profile(ctx context.Context, userID string) (*ProfileResponse, error)
	EditProfile(ctx context.Context, actor *models.User, req *EditProfileRequest) (*ProfileResponse, error)
	// UpdateVitals records a device reading. Devices are not authenticated.
	UpdateVitals(ctx context.Context, userID string, vitals Vitals) (*models.User, error)
}

type FoodService interface {
	Create(ctx context.Context, actor *models.User, req *FoodRequest) (*FoodResponse, error)
	Edit(ctx context.Context, actor *models.User, req *FoodRequest) (*FoodResponse, error)
	Delete(ctx context.Context, actor *models.User, foodID uint) error
	Get(ctx context.Context, foodID uint) (*FoodResponse, error)
	List(ctx context.Context, page string) (*Page[FoodResponse], error)
}

type DietService interface {
	Create(ctx context.Context, actor *models.User, req *DietRequest) (*DietResponse, error)
	Edit(ctx context.Context, actor *models.User, req *DietRequest) (*DietResponse, error)
	Delete(ctx context.Context, actor *models.User, dietID uint) error
	Get(ctx context.Context, dietID uint) (*DietResponse, error)
	List(ctx context.Context, page string) (*Page[DietResponse], error)
	AverageIntake(ctx context.Context, dietID uint) (Intake, error)
}

type MealPlanService interface {
	Create(ctx context.Context, actor *models.User, req *MealPlanRequest) (*MealPlanResponse, error)
	Edit(ctx context.Context, actor *models.User, req *MealPlanRequest) (*MealPlanResponse, error)
	Delete(ctx context.Context, actor *models.User, mealPlanID uint) error
	Get(ctx context.Context, mealPlanID uint) (*MealPlanResponse, error)
	List(ctx context.Context, page string) (*Page[MealPlanResponse], error)
}

type SubmissionService interface {
	Create(ctx context.Context, actor *models.User, note string) (*SubmissionResponse, error)
	Edit(ctx context.Context, actor *models.User, req *SubmissionRequest) (*SubmissionResponse, error)
	Delete(ctx context.Context, actor *models.User, submissionID uint) error
	Get(ctx context.Context, submissionID uint) (*SubmissionResponse, error)
	List(ctx context.Context, page string) (*Page[SubmissionResponse], error)
}

type SystemService interface {
	// Backup returns the resource as CSV, or nil for an unknown resource.
	Backup(ctx context.Context, actor *models.User, resource string) ([]byte, error)
	// Workbook returns the resource as an XLSX file, or nil for an
	// unknown resource.
	Workbook(ctx context.Context, actor *models.User, resource string) ([]byte, error)
	Rollback(ctx context.Context, actor *models.User, resource string, data []byte) (*RollbackResult, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Account() AccountService
	Food() FoodService
	Diet() DietService
	MealPlan() MealPlanService
	Submission() SubmissionService
	System() SystemService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
