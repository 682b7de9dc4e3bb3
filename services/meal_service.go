// services/meal_service.go
package services

import (
	"errors"
	"time"

	"platelens/models"

	"gorm.io/gorm"
)

var ErrMealNotFound = errors.New("meal not found")

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

type SaveMealInput struct {
	MealType   string                   `json:"mealType"`
	Name       string                   `json:"name"`
	Notes      string                   `json:"notes"`
	ConsumedAt time.Time                `json:"consumedAt"`
	ImageURL   string                   `json:"-"`
	Analysis   models.NutritionAnalysis `json:"analysisData"`
}

func (s *MealService) SaveMeal(userID uint, in SaveMealInput) (*models.Meal, error) {
	consumedAt := in.ConsumedAt
	if consumedAt.IsZero() {
		consumedAt = time.Now()
	}

	meal := &models.Meal{
		UserID:     userID,
		MealType:   in.MealType,
		Name:       in.Name,
		Notes:      in.Notes,
		ConsumedAt: consumedAt,
		ImageURL:   in.ImageURL,
		Analysis:   models.AnalysisJSON(in.Analysis),
	}
	if err := s.db.Create(meal).Error; err != nil {
		return nil, err
	}
	return meal, nil
}

// ListMeals returns the user's meals, most recent first.
func (s *MealService) ListMeals(userID uint) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Where("user_id = ?", userID).
		Order("consumed_at DESC, id DESC").
		Find(&meals).Error
	return meals, err
}

func (s *MealService) GetMeal(userID, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMealNotFound
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes one meal. Deleting an unknown id reports
// ErrMealNotFound and leaves stored data untouched.
func (s *MealService) DeleteMeal(userID, mealID uint) error {
	res := s.db.
		Where("id = ? AND user_id = ?", mealID, userID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}

// ListMealsSince returns meals consumed at or after the cutoff,
// most recent first.
func (s *MealService) ListMealsSince(userID uint, cutoff time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	err := s.db.
		Where("user_id = ? AND consumed_at >= ?", userID, cutoff).
		Order("consumed_at DESC, id DESC").
		Find(&meals).Error
	return meals, err
}
