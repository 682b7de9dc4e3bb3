package services

import (
	"fmt"
	"time"

	"platelens/models"
)

// DailyAverages holds per-day average intake across the tracked
// macro/micronutrients, computed over the distinct days that have meals.
type DailyAverages struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
	Days     int     `json:"days"`
}

// Fallback daily targets used when the user has not set a goal.
// Reference intake values for a 2000 kcal diet.
const (
	refCalories = 2000
	refProtein  = 50
	refCarbs    = 275
	refFat      = 78
	refFiber    = 28
	refSugar    = 50
	refSodium   = 2300
)

// Threshold ratios: an average below lowRatio of its target, or above
// highRatio, crosses the line and emits a suggestion.
const (
	lowRatio  = 0.8
	highRatio = 1.2
)

type RecommendationService struct {
	meals *MealService
	goals *GoalService
}

func NewRecommendationService(meals *MealService, goals *GoalService) *RecommendationService {
	return &RecommendationService{meals: meals, goals: goals}
}

// ForUser derives recommendations from the last 7 days of meals.
func (s *RecommendationService) ForUser(userID uint) (DailyAverages, []string, error) {
	cutoff := time.Now().AddDate(0, 0, -7)
	meals, err := s.meals.ListMealsSince(userID, cutoff)
	if err != nil {
		return DailyAverages{}, nil, err
	}
	goal, err := s.goals.GetGoals(userID)
	if err != nil {
		return DailyAverages{}, nil, err
	}

	avg := AverageDaily(meals)
	return avg, BuildRecommendations(avg, goal), nil
}

// AverageDaily sums per-meal totals and divides by the number of
// distinct calendar days present. An empty history yields zero averages.
func AverageDaily(meals []models.Meal) DailyAverages {
	if len(meals) == 0 {
		return DailyAverages{}
	}

	days := map[string]struct{}{}
	var out DailyAverages
	for _, m := range meals {
		days[m.ConsumedAt.Format("2006-01-02")] = struct{}{}
		t := m.Analysis.Totals
		out.Calories += t.CaloriesKcal
		out.Protein += t.Macros.ProteinG
		out.Carbs += t.Macros.CarbsG
		out.Fat += t.Macros.FatG
		out.Fiber += t.Macros.FiberG
		out.Sugar += t.Macros.SugarG
		out.Sodium += t.Micros.SodiumMg
	}

	n := float64(len(days))
	out.Calories /= n
	out.Protein /= n
	out.Carbs /= n
	out.Fat /= n
	out.Fiber /= n
	out.Sugar /= n
	out.Sodium /= n
	out.Days = len(days)
	return out
}

// BuildRecommendations compares each average against the user's goal
// (when set) or the reference targets, emitting templated suggestions in
// fixed priority order. Sugar and sodium are limits: only exceeding
// them draws a suggestion.
func BuildRecommendations(avg DailyAverages, goal *models.NutritionGoal) []string {
	if avg.Days == 0 {
		return []string{}
	}

	target := func(goalValue, reference float64) float64 {
		if goal != nil && goalValue > 0 {
			return goalValue
		}
		return reference
	}
	var goalVals models.NutritionGoal
	if goal != nil {
		goalVals = *goal
	}

	checks := []struct {
		name      string
		avg       float64
		target    float64
		unit      string
		limitOnly bool
	}{
		{"calorie", avg.Calories, target(goalVals.Calories, refCalories), "kcal", false},
		{"protein", avg.Protein, target(goalVals.Protein, refProtein), "g", false},
		{"carbohydrate", avg.Carbs, target(goalVals.Carbs, refCarbs), "g", false},
		{"fat", avg.Fat, target(goalVals.Fat, refFat), "g", false},
		{"fiber", avg.Fiber, target(goalVals.Fiber, refFiber), "g", false},
		{"sugar", avg.Sugar, refSugar, "g", true},
		{"sodium", avg.Sodium, refSodium, "mg", true},
	}

	recs := []string{}
	for _, c := range checks {
		if c.target <= 0 {
			continue
		}
		ratio := c.avg / c.target
		switch {
		case ratio > highRatio:
			recs = append(recs, fmt.Sprintf(
				"Your average %s intake (%.0f %s/day) is above your target of %.0f %s. Consider cutting back.",
				c.name, c.avg, c.unit, c.target, c.unit))
		case !c.limitOnly && ratio < lowRatio:
			recs = append(recs, fmt.Sprintf(
				"Your average %s intake (%.0f %s/day) is below your target of %.0f %s. Consider adding %s-rich foods.",
				c.name, c.avg, c.unit, c.target, c.unit, c.name))
		}
	}
	return recs
}
