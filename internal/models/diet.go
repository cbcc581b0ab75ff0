package models

import (
	"strconv"
	"strings"
)

type MealTime int

const (
	MealBreakfast MealTime = iota
	MealLunch
	MealSnack
	MealDinner
)

var mealTimeNames = map[MealTime]string{
	MealBreakfast: "breakfast",
	MealLunch:     "lunch",
	MealSnack:     "snack",
	MealDinner:    "dinner",
}

func (t MealTime) Valid() bool {
	_, ok := mealTimeNames[t]
	return ok
}

func (t MealTime) String() string {
	if name, ok := mealTimeNames[t]; ok {
		return name
	}
	return "unknown"
}

type Diet struct {
	DietID      uint   `json:"diet_id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:32"`
	Description string `json:"description" gorm:"type:text;default:''"`
	PhotoURL    string `json:"photo_url" gorm:"type:text"`

	MealPlans []MealPlan `json:"-" gorm:"foreignKey:DietID;constraint:OnDelete:CASCADE"`
}

func (Diet) TableName() string {
	return "diets"
}

type MealPlan struct {
	MealPlanID uint     `json:"meal_plan_id" gorm:"primaryKey"`
	Time       MealTime `json:"time" gorm:"type:smallint;default:0"`
	DietID     uint     `json:"diet_id" gorm:"not null;index"`
	// Comma separated food ids, kept in insertion order.
	Foods string `json:"foods" gorm:"type:text"`

	Diet Diet `json:"-" gorm:"foreignKey:DietID"`
}

func (MealPlan) TableName() string {
	return "meal_plans"
}

// FoodIDs parses the stored id list. Empty and malformed tokens are skipped.
func (m *MealPlan) FoodIDs() []uint {
	var ids []uint
	for _, part := range strings.Split(m.Foods, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// SetFoodIDs stores ids in the delimited form read back by FoodIDs.
func (m *MealPlan) SetFoodIDs(ids []int64) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	m.Foods = strings.Join(parts, ",")
}
