package models

import (
	"time"

	"gorm.io/gorm"
)

// Meal is a persisted analysis snapshot plus user annotations.
// The analysis payload is immutable once saved.
type Meal struct {
	gorm.Model
	UserID     uint         `gorm:"index;not null" json:"user_id"`
	MealType   string       `gorm:"not null" json:"mealType"` // breakfast|lunch|dinner|snack
	Name       string       `json:"name,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	ConsumedAt time.Time    `gorm:"index;not null" json:"consumedAt"`
	ImageURL   string       `json:"imageUrl,omitempty"`
	Analysis   AnalysisJSON `json:"analysisData"`
}
