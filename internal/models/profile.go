package models

import (
	"gorm.io/datatypes"
)

type Profile struct {
	ProfileID   uint              `json:"profile_id" gorm:"primaryKey"`
	Preferences datatypes.JSONMap `json:"preferences" gorm:"type:jsonb"`
	DietID      *uint             `json:"diet_id" gorm:"index"`
	NutritionID *uint             `json:"nutrition_id" gorm:"index"`
	UserID      string            `json:"user_id" gorm:"not null;uniqueIndex;size:16"`

	Diet      *Diet      `json:"-" gorm:"foreignKey:DietID;constraint:OnDelete:CASCADE"`
	Nutrition *Nutrition `json:"-" gorm:"foreignKey:NutritionID;constraint:OnDelete:SET NULL"`
}

func (Profile) TableName() string {
	return "profiles"
}

type Submission struct {
	SubmissionID uint    `json:"submission_id" gorm:"primaryKey"`
	Note         string  `json:"note" gorm:"type:text"`
	Reviewer     *string `json:"reviewer" gorm:"size:16"`
	UserID       string  `json:"user_id" gorm:"not null;index;size:16"`
	IsAccepted   bool    `json:"is_accepted" gorm:"default:false"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Review records the acceptance decision. Accepting stores the reviewer,
// rejecting clears it.
func (s *Submission) Review(accepted bool, reviewerID string) {
	s.IsAccepted = accepted
	if accepted {
		s.Reviewer = &reviewerID
		return
	}
	s.Reviewer = nil
}

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Nutrition{},
		&Diet{},
		&Food{},
		&MealPlan{},
		&User{},
		&Profile{},
		&Submission{},
	}
}
