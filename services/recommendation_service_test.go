package services

import (
	"strings"
	"testing"
	"time"

	"platelens/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mealAt(day time.Time, kcal, protein, sugar, sodium float64) models.Meal {
	return models.Meal{
		MealType:   "lunch",
		ConsumedAt: day,
		Analysis: models.AnalysisJSON(models.NutritionAnalysis{
			Totals: models.Nutrition{
				CaloriesKcal: kcal,
				Macros:       models.Macros{ProteinG: protein, CarbsG: 250, FatG: 70, FiberG: 25, SugarG: sugar},
				Micros:       models.Micros{SodiumMg: sodium},
			},
		}),
	}
}

func TestAverageDaily(t *testing.T) {
	day1 := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("empty history is all zeros", func(t *testing.T) {
		avg := AverageDaily(nil)
		assert.Zero(t, avg.Days)
		assert.Zero(t, avg.Calories)
	})

	t.Run("divides by distinct days, not meal count", func(t *testing.T) {
		meals := []models.Meal{
			mealAt(day1, 600, 30, 10, 500),
			mealAt(day1.Add(6*time.Hour), 800, 40, 20, 700),
			mealAt(day2, 1000, 50, 15, 900),
		}
		avg := AverageDaily(meals)
		assert.Equal(t, 2, avg.Days)
		assert.InDelta(t, 1200, avg.Calories, 1e-9)
		assert.InDelta(t, 60, avg.Protein, 1e-9)
	})
}

func TestBuildRecommendations(t *testing.T) {
	day := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	t.Run("no meals, no recommendations", func(t *testing.T) {
		recs := BuildRecommendations(DailyAverages{}, nil)
		assert.Empty(t, recs)
	})

	t.Run("balanced intake stays silent", func(t *testing.T) {
		avg := AverageDaily([]models.Meal{mealAt(day, 2000, 50, 40, 2000)})
		recs := BuildRecommendations(avg, nil)
		assert.Empty(t, recs)
	})

	t.Run("below 80 percent of target flags low intake", func(t *testing.T) {
		avg := AverageDaily([]models.Meal{mealAt(day, 1500, 50, 40, 2000)})
		recs := BuildRecommendations(avg, nil)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "calorie")
		assert.Contains(t, recs[0], "below your target")
	})

	t.Run("above 120 percent of target flags high intake", func(t *testing.T) {
		avg := AverageDaily([]models.Meal{mealAt(day, 2600, 50, 40, 2000)})
		recs := BuildRecommendations(avg, nil)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "above your target")
	})

	t.Run("sugar and sodium only trigger above the limit", func(t *testing.T) {
		// zero sugar and sodium are fine, excess is not
		low := AverageDaily([]models.Meal{mealAt(day, 2000, 50, 0, 0)})
		assert.Empty(t, BuildRecommendations(low, nil))

		high := AverageDaily([]models.Meal{mealAt(day, 2000, 50, 90, 3500)})
		recs := BuildRecommendations(high, nil)
		require.Len(t, recs, 2)
		assert.Contains(t, recs[0], "sugar")
		assert.Contains(t, recs[1], "sodium")
	})

	t.Run("user goal overrides the reference target", func(t *testing.T) {
		goal := &models.NutritionGoal{Calories: 3000}
		avg := AverageDaily([]models.Meal{mealAt(day, 2000, 50, 40, 2000)})
		recs := BuildRecommendations(avg, goal)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "target of 3000")
	})

	t.Run("fixed priority order", func(t *testing.T) {
		// everything out of range at once
		avg := AverageDaily([]models.Meal{{
			MealType:   "lunch",
			ConsumedAt: day,
			Analysis: models.AnalysisJSON(models.NutritionAnalysis{
				Totals: models.Nutrition{
					CaloriesKcal: 3000,
					Macros:       models.Macros{ProteinG: 10, CarbsG: 50, FatG: 10, FiberG: 5, SugarG: 100},
					Micros:       models.Micros{SodiumMg: 4000},
				},
			}),
		}})
		recs := BuildRecommendations(avg, nil)
		require.Len(t, recs, 7)
		for i, name := range []string{"calorie", "protein", "carbohydrate", "fat", "fiber", "sugar", "sodium"} {
			assert.True(t, strings.Contains(recs[i], name), "rec %d should mention %s: %s", i, name, recs[i])
		}
	})
}

func TestRecommendationService_ForUser(t *testing.T) {
	db := testDB(t)
	meals := NewMealService(db)
	goals := NewGoalService(db)
	svc := NewRecommendationService(meals, goals)

	t.Run("empty history", func(t *testing.T) {
		avg, recs, err := svc.ForUser(1)
		require.NoError(t, err)
		assert.Zero(t, avg.Days)
		assert.Empty(t, recs)
	})

	t.Run("old meals are ignored", func(t *testing.T) {
		_, err := meals.SaveMeal(1, SaveMealInput{
			MealType:   "lunch",
			ConsumedAt: time.Now().AddDate(0, 0, -30),
			Analysis: models.NutritionAnalysis{
				Totals: models.Nutrition{CaloriesKcal: 5000},
			},
		})
		require.NoError(t, err)

		avg, _, err := svc.ForUser(1)
		require.NoError(t, err)
		assert.Zero(t, avg.Days)
	})
}
