package utils

import (
	"encoding/csv"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"platelens/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportAnalysis() *models.NutritionAnalysis {
	return &models.NutritionAnalysis{
		ImageMeta: models.ImageMeta{Width: 1024, Height: 768, Orientation: models.OrientationLandscape},
		Composition: []models.FoodItem{
			{
				Label:       "salmon fillet",
				Confidence:  0.87,
				ServingEstG: 140.5,
				BBoxNorm:    models.BoundingBox{X: 0.1, Y: 0.2, W: 0.4, H: 0.3},
				Nutrition: models.Nutrition{
					CaloriesKcal: 291.3,
					Macros:       models.Macros{ProteinG: 28.1, CarbsG: 0, FatG: 19.2, FiberG: 0, SugarG: 0},
					Micros:       models.Micros{SodiumMg: 86, PotassiumMg: 550},
					Allergens:    []string{"fish"},
				},
			},
			{
				Label:       "asparagus",
				Confidence:  0.74,
				ServingEstG: 60,
				BBoxNorm:    models.BoundingBox{X: 0.5, Y: 0.5, W: 0.3, H: 0.2},
				Nutrition: models.Nutrition{
					CaloriesKcal: 12,
					Macros:       models.Macros{ProteinG: 1.3, CarbsG: 2.3, FatG: 0.1, FiberG: 1.2, SugarG: 1.1},
					Micros:       models.Micros{SodiumMg: 1},
					Allergens:    []string{},
				},
			},
		},
		Totals: models.Nutrition{
			CaloriesKcal: 303.3,
			Macros:       models.Macros{ProteinG: 29.4, CarbsG: 2.3, FatG: 19.3, FiberG: 1.2, SugarG: 1.1},
			Micros:       models.Micros{SodiumMg: 87, PotassiumMg: 600},
			Allergens:    []string{"fish"},
		},
		Notes: "Portion sizes are visual estimates.",
	}
}

func TestNum(t *testing.T) {
	// exported values must parse back to the exact float
	for _, v := range []float64{0, 0.1, 291.3, 1e-3, 12345.6789} {
		got, err := strconv.ParseFloat(Num(v), 64)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestAllergensRoundTrip(t *testing.T) {
	assert.Equal(t, "milk, peanuts", JoinAllergens([]string{"milk", "peanuts"}))
	assert.Equal(t, []string{"milk", "peanuts"}, SplitAllergens("milk, peanuts"))
	assert.Nil(t, SplitAllergens(""))
	assert.Equal(t, "", JoinAllergens(nil))
}

func TestAnalysisCSV(t *testing.T) {
	out, err := AnalysisCSV(exportAnalysis())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)

	// header, two items, totals
	require.Len(t, records, 4)
	assert.Equal(t, "Food Item", records[0][0])
	assert.Equal(t, "salmon fillet", records[1][0])
	assert.Equal(t, "fish", records[1][10])
	assert.Equal(t, "asparagus", records[2][0])
	assert.Equal(t, "Totals", records[3][0])

	// calories survive the round trip exactly
	kcal, err := strconv.ParseFloat(records[1][3], 64)
	require.NoError(t, err)
	assert.Equal(t, 291.3, kcal)

	// totals row sums serving weights
	weight, err := strconv.ParseFloat(records[3][2], 64)
	require.NoError(t, err)
	assert.Equal(t, 200.5, weight)
}

func TestMealHistoryCSV(t *testing.T) {
	meals := []models.Meal{
		{
			MealType:   "dinner",
			Name:       "Salmon plate",
			ConsumedAt: time.Date(2026, 8, 27, 19, 15, 0, 0, time.UTC),
			Analysis:   models.AnalysisJSON(*exportAnalysis()),
		},
	}
	out, err := MealHistoryCSV(meals)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Date", records[0][0])

	row := records[1]
	assert.Equal(t, "2026-08-27", row[0])
	assert.Equal(t, "19:15:00", row[1])
	assert.Equal(t, "dinner", row[2])
	assert.Equal(t, "Salmon plate", row[3])
	assert.Equal(t, "2", row[11])
}

func TestAnalysisJSONPretty(t *testing.T) {
	in := exportAnalysis()
	out, err := AnalysisJSONPretty(in)
	require.NoError(t, err)

	var back models.NutritionAnalysis
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, *in, back)
}

func TestAnalysisTXT(t *testing.T) {
	out := AnalysisTXT(exportAnalysis(), "Salmon plate")

	assert.Contains(t, out, "NUTRITION ANALYSIS - Salmon plate")
	assert.Contains(t, out, "Image: 1024x768 (landscape)")
	assert.Contains(t, out, "Detected Items: 2")
	assert.Contains(t, out, "1. salmon fillet (87% confidence, ~140.5g)")
	assert.Contains(t, out, "Allergens: fish")
	assert.Contains(t, out, "TOTALS")
	assert.Contains(t, out, "Calories: 303.3 kcal")
	assert.Contains(t, out, "NOTES")
	assert.Contains(t, out, "Portion sizes are visual estimates.")
}
