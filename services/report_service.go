package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"platelens/models"
)

type ReportService struct {
	meals *MealService
	goals *GoalService
}

func NewReportService(meals *MealService, goals *GoalService) *ReportService {
	return &ReportService{meals: meals, goals: goals}
}

// Weekly renders the 7-day text report for a user.
func (s *ReportService) Weekly(userID uint) (string, error) {
	now := time.Now()
	meals, err := s.meals.ListMealsSince(userID, now.AddDate(0, 0, -7))
	if err != nil {
		return "", err
	}
	goal, err := s.goals.GetGoals(userID)
	if err != nil {
		return "", err
	}
	return RenderWeeklyReport(meals, goal, now), nil
}

type dayTotals struct {
	count    int
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

// RenderWeeklyReport builds the sectioned weekly nutrition report from a
// 7-day meal window.
func RenderWeeklyReport(meals []models.Meal, goal *models.NutritionGoal, now time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	b.WriteString(rule + "\n")
	b.WriteString(center("WEEKLY NUTRITION REPORT", 80) + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("2006-01-02 15:04:05"))

	if len(meals) == 0 {
		b.WriteString("No meals found in the last 7 days\n")
		return b.String()
	}

	fmt.Fprintf(&b, "OVERVIEW\n%s\n", thin)
	fmt.Fprintf(&b, "Total Meals: %d\n", len(meals))
	fmt.Fprintf(&b, "Average Meals per Day: %.1f\n\n", float64(len(meals))/7)

	// Daily breakdown
	daily := map[string]*dayTotals{}
	var week models.Macros
	var weekCalories float64
	for _, m := range meals {
		key := m.ConsumedAt.Format("2006-01-02")
		d := daily[key]
		if d == nil {
			d = &dayTotals{}
			daily[key] = d
		}
		t := m.Analysis.Totals
		d.count++
		d.calories += t.CaloriesKcal
		d.protein += t.Macros.ProteinG
		d.carbs += t.Macros.CarbsG
		d.fat += t.Macros.FatG

		weekCalories += t.CaloriesKcal
		week.ProteinG += t.Macros.ProteinG
		week.CarbsG += t.Macros.CarbsG
		week.FatG += t.Macros.FatG
		week.FiberG += t.Macros.FiberG
		week.SugarG += t.Macros.SugarG
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	fmt.Fprintf(&b, "DAILY BREAKDOWN\n%s\n", thin)
	fmt.Fprintf(&b, "%-12s %-8s %-12s %-10s %-10s %-10s\n",
		"Date", "Meals", "Calories", "Protein", "Carbs", "Fat")
	b.WriteString(thin + "\n")
	for _, date := range dates {
		d := daily[date]
		fmt.Fprintf(&b, "%-12s %-8d %-12.0f %-10.1f %-10.1f %-10.1f\n",
			date, d.count, d.calories, d.protein, d.carbs, d.fat)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "WEEKLY TOTALS\n%s\n", thin)
	fmt.Fprintf(&b, "Total Calories: %.0f kcal\n", weekCalories)
	fmt.Fprintf(&b, "Total Protein: %.1fg\n", week.ProteinG)
	fmt.Fprintf(&b, "Total Carbs: %.1fg\n", week.CarbsG)
	fmt.Fprintf(&b, "Total Fat: %.1fg\n\n", week.FatG)

	fmt.Fprintf(&b, "DAILY AVERAGES\n%s\n", thin)
	fmt.Fprintf(&b, "Average Calories: %.0f kcal/day\n", weekCalories/7)
	fmt.Fprintf(&b, "Average Protein: %.1fg/day\n", week.ProteinG/7)
	fmt.Fprintf(&b, "Average Carbs: %.1fg/day\n", week.CarbsG/7)
	fmt.Fprintf(&b, "Average Fat: %.1fg/day\n\n", week.FatG/7)

	if total := week.ProteinG + week.CarbsG + week.FatG; total > 0 {
		fmt.Fprintf(&b, "MACRONUTRIENT DISTRIBUTION\n%s\n", thin)
		pPct := week.ProteinG / total * 100
		cPct := week.CarbsG / total * 100
		fPct := week.FatG / total * 100
		fmt.Fprintf(&b, "Protein: %.1f%% %s\n", pPct, bar(pPct, 40))
		fmt.Fprintf(&b, "Carbs:   %.1f%% %s\n", cPct, bar(cPct, 40))
		fmt.Fprintf(&b, "Fat:     %.1f%% %s\n\n", fPct, bar(fPct, 40))
	}

	// Meal type distribution
	types := map[string]int{}
	for _, m := range meals {
		types[m.MealType]++
	}
	names := make([]string, 0, len(types))
	for t := range types {
		names = append(names, t)
	}
	sort.Strings(names)
	fmt.Fprintf(&b, "MEAL TYPE DISTRIBUTION\n%s\n", thin)
	for _, t := range names {
		count := types[t]
		pct := float64(count) / float64(len(meals)) * 100
		fmt.Fprintf(&b, "%-12s: %3d meals (%.1f%%)\n", capitalize(t), count, pct)
	}
	b.WriteString("\n")

	if top := topFoods(meals, 10); len(top) > 0 {
		fmt.Fprintf(&b, "TOP %d FOODS\n%s\n", len(top), thin)
		for i, f := range top {
			fmt.Fprintf(&b, "%2d. %-30s - %d times (avg %.0f kcal)\n",
				i+1, f.label, f.count, f.avgCalories)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "RECOMMENDATIONS\n%s\n", thin)
	recs := BuildRecommendations(AverageDaily(meals), goal)
	if len(recs) == 0 {
		recs = []string{"Your nutrition looks balanced. Keep it up."}
	}
	for _, r := range recs {
		fmt.Fprintf(&b, "* %s\n", r)
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

type foodFrequency struct {
	label       string
	count       int
	avgCalories float64
}

// topFoods ranks detected food items by how often they appear across
// the meal window.
func topFoods(meals []models.Meal, limit int) []foodFrequency {
	type acc struct {
		count    int
		calories float64
	}
	byLabel := map[string]*acc{}
	for _, m := range meals {
		for _, item := range m.Analysis.Composition {
			a := byLabel[item.Label]
			if a == nil {
				a = &acc{}
				byLabel[item.Label] = a
			}
			a.count++
			a.calories += item.Nutrition.CaloriesKcal
		}
	}

	out := make([]foodFrequency, 0, len(byLabel))
	for label, a := range byLabel {
		out = append(out, foodFrequency{
			label:       label,
			count:       a.count,
			avgCalories: a.calories / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func bar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
