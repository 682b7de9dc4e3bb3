package models

import (
	"gorm.io/gorm"
)

// NutritionGoal holds a user's daily intake targets. One row per user,
// overwritten wholesale on save.
type NutritionGoal struct {
	gorm.Model
	UserID   uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Calories float64 `json:"calories"` // kcal
	Protein  float64 `json:"protein"`  // g
	Carbs    float64 `json:"carbs"`    // g
	Fat      float64 `json:"fat"`      // g
	Fiber    float64 `json:"fiber"`    // g
}
