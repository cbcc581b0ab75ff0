package models

import (
	"gorm.io/datatypes"
)

// NutrientVector maps a nutrient name to its amount.
type NutrientVector = datatypes.JSONType[map[string]float64]

func NewNutrientVector(values map[string]float64) NutrientVector {
	if values == nil {
		values = map[string]float64{}
	}
	return datatypes.NewJSONType(values)
}

var Vitamins = []string{
	"vitamin_a",
	"vitamin_b6",
	"vitamin_b12",
	"vitamin_c",
	"vitamin_d",
	"vitamin_e",
	"vitamin_k1",
	"betaine",
	"choline",
	"folate",
	"thiamin",
	"riboflavin",
	"pantothenic_acid",
	"niacin",
}

var Minerals = []string{
	"calcium",
	"copper",
	"fluoride",
	"iron",
	"magnesium",
	"manganese",
	"phosphorus",
	"potassium",
	"selenium",
	"sodium",
	"zinc",
}

var AminoAcids = []string{
	"alanine",
	"arginine",
	"aspartic_acid",
	"cystine",
	"glutamic_acid",
	"glycine",
	"histidine",
	"isoleucine",
	"leucine",
	"lysine",
	"methionine",
	"phenylalanine",
	"proline",
	"serine",
	"threonine",
	"tyrosine",
	"valine",
}

type Nutrition struct {
	NutritionID uint           `json:"nutrition_id" gorm:"primaryKey"`
	Vitamins    NutrientVector `json:"vitamins" gorm:"type:jsonb"`
	Minerals    NutrientVector `json:"minerals" gorm:"type:jsonb"`
	AminoAcids  NutrientVector `json:"amino_acids" gorm:"type:jsonb"`
}

func (Nutrition) TableName() string {
	return "nutritions"
}

// Vector returns the nutrient vector named by property, or nil for an
// unknown property.
func (n *Nutrition) Vector(property string) map[string]float64 {
	switch property {
	case "vitamins":
		return n.Vitamins.Data()
	case "minerals":
		return n.Minerals.Data()
	case "amino_acids":
		return n.AminoAcids.Data()
	}
	return nil
}

type Food struct {
	FoodID      uint    `json:"food_id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:32"`
	Description string  `json:"description" gorm:"type:text"`
	PhotoURL    string  `json:"photo_url" gorm:"type:text"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Calories    float64 `json:"calories"`

	// The nutrition row is owned by the food and removed with it.
	NutritionID *uint      `json:"nutrition_id" gorm:"index"`
	Nutrition   *Nutrition `json:"-" gorm:"foreignKey:NutritionID;constraint:OnDelete:SET NULL"`
}

func (Food) TableName() string {
	return "foods"
}

// Macro returns one of the four macro properties by name.
func (f *Food) Macro(property string) float64 {
	switch property {
	case "carbs":
		return f.Carbs
	case "protein":
		return f.Protein
	case "fat":
		return f.Fat
	case "calories":
		return f.Calories
	}
	return 0
}
