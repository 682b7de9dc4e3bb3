package utils

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"platelens/models"
)

// detailHeader is the fixed column set for a per-item analysis export.
var detailHeader = []string{
	"Food Item", "Confidence", "Weight (g)",
	"Calories (kcal)", "Protein (g)", "Carbs (g)", "Fat (g)",
	"Fiber (g)", "Sugar (g)", "Sodium (mg)", "Allergens",
}

// historyHeader is the fixed column set for a meal-history export.
var historyHeader = []string{
	"Date", "Time", "Meal Type", "Meal Name",
	"Calories (kcal)", "Protein (g)", "Carbs (g)", "Fat (g)",
	"Fiber (g)", "Sugar (g)", "Sodium (mg)", "Items Count",
}

// Num renders a float with full precision so exported values parse back
// to the same number.
func Num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// JoinAllergens flattens an allergen set for CSV cells. Lossless as long
// as individual allergen names contain no comma.
func JoinAllergens(allergens []string) string {
	return strings.Join(allergens, ", ")
}

// SplitAllergens is the inverse of JoinAllergens.
func SplitAllergens(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func nutritionRow(label, confidence, weight string, n models.Nutrition) []string {
	return []string{
		label, confidence, weight,
		Num(n.CaloriesKcal),
		Num(n.Macros.ProteinG), Num(n.Macros.CarbsG), Num(n.Macros.FatG),
		Num(n.Macros.FiberG), Num(n.Macros.SugarG),
		Num(n.Micros.SodiumMg),
		JoinAllergens(n.Allergens),
	}
}

// AnalysisCSV renders one row per detected item plus a Totals row.
func AnalysisCSV(a *models.NutritionAnalysis) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(detailHeader); err != nil {
		return "", err
	}
	for _, item := range a.Composition {
		row := nutritionRow(
			item.Label,
			Num(item.Confidence),
			Num(item.ServingEstG),
			item.Nutrition,
		)
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	var servingTotal float64
	for _, item := range a.Composition {
		servingTotal += item.ServingEstG
	}
	if err := w.Write(nutritionRow("Totals", "", Num(servingTotal), a.Totals)); err != nil {
		return "", err
	}

	w.Flush()
	return buf.String(), w.Error()
}

// MealHistoryCSV renders one row per meal, newest first as given.
func MealHistoryCSV(meals []models.Meal) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(historyHeader); err != nil {
		return "", err
	}
	for _, m := range meals {
		totals := m.Analysis.Totals
		row := []string{
			m.ConsumedAt.Format("2006-01-02"),
			m.ConsumedAt.Format("15:04:05"),
			m.MealType,
			m.Name,
			Num(totals.CaloriesKcal),
			Num(totals.Macros.ProteinG), Num(totals.Macros.CarbsG), Num(totals.Macros.FatG),
			Num(totals.Macros.FiberG), Num(totals.Macros.SugarG),
			Num(totals.Micros.SodiumMg),
			strconv.Itoa(len(m.Analysis.Composition)),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// AnalysisJSONPretty is the one-way JSON export of an analysis.
func AnalysisJSONPretty(a *models.NutritionAnalysis) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// AnalysisTXT renders a sectioned, human-readable report for one analysis.
func AnalysisTXT(a *models.NutritionAnalysis, title string) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("NUTRITION ANALYSIS")
	if title != "" {
		b.WriteString(" - " + title)
	}
	b.WriteString("\n" + rule + "\n\n")

	fmt.Fprintf(&b, "Image: %dx%d (%s)\n",
		a.ImageMeta.Width, a.ImageMeta.Height, a.ImageMeta.Orientation)
	fmt.Fprintf(&b, "Detected Items: %d\n\n", len(a.Composition))

	b.WriteString("DETECTED FOODS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for i, item := range a.Composition {
		fmt.Fprintf(&b, "%d. %s (%.0f%% confidence, ~%sg)\n",
			i+1, item.Label, item.Confidence*100, Num(item.ServingEstG))
		fmt.Fprintf(&b, "   %s kcal | P:%sg C:%sg F:%sg\n",
			Num(item.Nutrition.CaloriesKcal),
			Num(item.Nutrition.Macros.ProteinG),
			Num(item.Nutrition.Macros.CarbsG),
			Num(item.Nutrition.Macros.FatG))
		if len(item.Nutrition.Allergens) > 0 {
			fmt.Fprintf(&b, "   Allergens: %s\n", JoinAllergens(item.Nutrition.Allergens))
		}
	}

	b.WriteString("\nTOTALS\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&b, "Calories: %s kcal\n", Num(a.Totals.CaloriesKcal))
	fmt.Fprintf(&b, "Protein: %sg | Carbs: %sg | Fat: %sg\n",
		Num(a.Totals.Macros.ProteinG), Num(a.Totals.Macros.CarbsG), Num(a.Totals.Macros.FatG))
	fmt.Fprintf(&b, "Fiber: %sg | Sugar: %sg\n",
		Num(a.Totals.Macros.FiberG), Num(a.Totals.Macros.SugarG))
	fmt.Fprintf(&b, "Sodium: %smg | Potassium: %smg | Calcium: %smg\n",
		Num(a.Totals.Micros.SodiumMg), Num(a.Totals.Micros.PotassiumMg), Num(a.Totals.Micros.CalciumMg))
	fmt.Fprintf(&b, "Iron: %smg | Vit A: %smcg | Vit C: %smg | Cholesterol: %smg\n",
		Num(a.Totals.Micros.IronMg), Num(a.Totals.Micros.VitaminAMcg),
		Num(a.Totals.Micros.VitaminCMg), Num(a.Totals.Micros.CholesterolMg))
	if len(a.Totals.Allergens) > 0 {
		fmt.Fprintf(&b, "Allergens: %s\n", JoinAllergens(a.Totals.Allergens))
	}
	if a.Notes != "" {
		b.WriteString("\nNOTES\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		b.WriteString(a.Notes + "\n")
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}
