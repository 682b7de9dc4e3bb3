package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"platelens/models"
	"platelens/utils"
)

// AnalysisService turns a raw image data URL into a validated
// NutritionAnalysis, tolerating the unreliable textual output of the
// vision model. Each call is fail-fast: no retry, no partial result.
type AnalysisService struct {
	vision *VisionService
}

func NewAnalysisService(vision *VisionService) *AnalysisService {
	return &AnalysisService{vision: vision}
}

func (s *AnalysisService) Analyze(ctx context.Context, dataURL, source string) (*models.NutritionAnalysis, error) {
	if _, _, err := utils.ParseDataURL(dataURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	completion, err := s.vision.Complete(ctx, s.vision.ModelFor(source), dataURL)
	if err != nil {
		return nil, err
	}

	return ParseAnalysisPayload(completion)
}

// ParseAnalysisPayload extracts the JSON object from a completion and
// validates it against the analysis schema.
func ParseAnalysisPayload(completion string) (*models.NutritionAnalysis, error) {
	raw, err := ExtractJSON(completion)
	if err != nil {
		return nil, err
	}
	return validateAnalysis(raw)
}

// parseStrategies is the ordered fallback chain applied to completion
// text. Each strategy yields a candidate substring to parse; the first
// that holds a JSON object wins.
var parseStrategies = []func(string) string{
	func(s string) string { return s },
	stripFences,
	func(s string) string { return braceSlice(stripFences(s)) },
}

// ExtractJSON locates the JSON object inside a model completion.
func ExtractJSON(completion string) ([]byte, error) {
	for _, strategy := range parseStrategies {
		candidate := strings.TrimSpace(strategy(completion))
		if candidate == "" {
			continue
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
			return []byte(candidate), nil
		}
	}
	return nil, &MalformedResponseError{Snippet: snippet(completion)}
}

// stripFences removes a surrounding Markdown code fence, with or
// without a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{}") {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// braceSlice cuts from the first '{' to the last '}'.
func braceSlice(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// Wire-side shadow of the analysis schema. Pointer fields distinguish
// missing required keys from zero values.

type wireAnalysis struct {
	ImageMeta   *wireImageMeta  `json:"image_meta"`
	Composition *[]wireFoodItem `json:"composition"`
	Totals      *wireNutrition  `json:"totals"`
	Notes       string          `json:"notes"`
}

type wireImageMeta struct {
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
	Orientation *string `json:"orientation"`
}

type wireFoodItem struct {
	Label       *string        `json:"label"`
	Confidence  *float64       `json:"confidence"`
	ServingEstG *float64       `json:"serving_est_g"`
	BBoxNorm    *wireBBox      `json:"bbox_norm"`
	Nutrition   *wireNutrition `json:"nutrition"`
}

type wireBBox struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	W *float64 `json:"w"`
	H *float64 `json:"h"`
}

type wireNutrition struct {
	CaloriesKcal *float64    `json:"calories_kcal"`
	Macros       *wireMacros `json:"macros"`
	Micros       *wireMicros `json:"micros"`
	Allergens    []string    `json:"allergens"`
}

type wireMacros struct {
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
	FiberG   *float64 `json:"fiber_g"`
	SugarG   *float64 `json:"sugar_g"`
}

type wireMicros struct {
	SodiumMg      *float64 `json:"sodium_mg"`
	PotassiumMg   *float64 `json:"potassium_mg"`
	CalciumMg     *float64 `json:"calcium_mg"`
	IronMg        *float64 `json:"iron_mg"`
	VitaminAMcg   *float64 `json:"vitamin_a_mcg"`
	VitaminCMg    *float64 `json:"vitamin_c_mg"`
	CholesterolMg *float64 `json:"cholesterol_mg"`
}

// validateAnalysis checks shape and ranges and converts to the domain
// model. Totals are trusted from the model after shape validation only;
// they are never recomputed from composition.
func validateAnalysis(raw []byte) (*models.NutritionAnalysis, error) {
	var w wireAnalysis
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, &ValidationError{Field: "(root)", Reason: err.Error()}
	}

	out := &models.NutritionAnalysis{Notes: w.Notes}

	if w.ImageMeta == nil {
		return nil, &ValidationError{Field: "image_meta", Reason: "is required"}
	}
	meta, err := validateImageMeta(w.ImageMeta)
	if err != nil {
		return nil, err
	}
	out.ImageMeta = *meta

	if w.Composition == nil {
		return nil, &ValidationError{Field: "composition", Reason: "is required"}
	}
	out.Composition = make([]models.FoodItem, 0, len(*w.Composition))
	for i, wi := range *w.Composition {
		item, err := validateFoodItem(fmt.Sprintf("composition[%d]", i), wi)
		if err != nil {
			return nil, err
		}
		out.Composition = append(out.Composition, *item)
	}

	if w.Totals == nil {
		return nil, &ValidationError{Field: "totals", Reason: "is required"}
	}
	totals, err := validateNutrition("totals", w.Totals)
	if err != nil {
		return nil, err
	}
	out.Totals = *totals

	return out, nil
}

func validateImageMeta(w *wireImageMeta) (*models.ImageMeta, error) {
	if w.Width == nil {
		return nil, &ValidationError{Field: "image_meta.width", Reason: "is required"}
	}
	if w.Height == nil {
		return nil, &ValidationError{Field: "image_meta.height", Reason: "is required"}
	}
	if *w.Width < 0 {
		return nil, &ValidationError{Field: "image_meta.width", Reason: "must be non-negative"}
	}
	if *w.Height < 0 {
		return nil, &ValidationError{Field: "image_meta.height", Reason: "must be non-negative"}
	}

	meta := &models.ImageMeta{Width: *w.Width, Height: *w.Height}
	if w.Orientation == nil || *w.Orientation == "" {
		// Some completions omit orientation; derive it from dimensions.
		meta.Orientation = utils.Orientation(meta.Width, meta.Height)
		return meta, nil
	}
	switch *w.Orientation {
	case models.OrientationPortrait, models.OrientationLandscape, models.OrientationSquare:
		meta.Orientation = *w.Orientation
	default:
		return nil, &ValidationError{
			Field:  "image_meta.orientation",
			Reason: fmt.Sprintf("must be portrait, landscape or square, got %q", *w.Orientation),
		}
	}
	return meta, nil
}

func validateFoodItem(path string, w wireFoodItem) (*models.FoodItem, error) {
	if w.Label == nil || *w.Label == "" {
		return nil, &ValidationError{Field: path + ".label", Reason: "is required"}
	}
	if w.Confidence == nil {
		return nil, &ValidationError{Field: path + ".confidence", Reason: "is required"}
	}
	if *w.Confidence < 0 || *w.Confidence > 1 {
		return nil, &ValidationError{Field: path + ".confidence", Reason: "must be in [0,1]"}
	}
	if w.ServingEstG == nil {
		return nil, &ValidationError{Field: path + ".serving_est_g", Reason: "is required"}
	}
	if *w.ServingEstG < 0 {
		return nil, &ValidationError{Field: path + ".serving_est_g", Reason: "must be non-negative"}
	}
	if w.BBoxNorm == nil {
		return nil, &ValidationError{Field: path + ".bbox_norm", Reason: "is required"}
	}
	bbox, err := validateBBox(path+".bbox_norm", w.BBoxNorm)
	if err != nil {
		return nil, err
	}
	if w.Nutrition == nil {
		return nil, &ValidationError{Field: path + ".nutrition", Reason: "is required"}
	}
	nut, err := validateNutrition(path+".nutrition", w.Nutrition)
	if err != nil {
		return nil, err
	}

	return &models.FoodItem{
		Label:       *w.Label,
		Confidence:  *w.Confidence,
		ServingEstG: *w.ServingEstG,
		BBoxNorm:    *bbox,
		Nutrition:   *nut,
	}, nil
}

func validateBBox(path string, w *wireBBox) (*models.BoundingBox, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"x", w.X}, {"y", w.Y}, {"w", w.W}, {"h", w.H},
	}
	out := &models.BoundingBox{}
	dst := []*float64{&out.X, &out.Y, &out.W, &out.H}
	for i, f := range fields {
		if f.v == nil {
			return nil, &ValidationError{Field: path + "." + f.name, Reason: "is required"}
		}
		if *f.v < 0 || *f.v > 1 {
			return nil, &ValidationError{Field: path + "." + f.name, Reason: "must be in [0,1]"}
		}
		*dst[i] = *f.v
	}
	return out, nil
}

func validateNutrition(path string, w *wireNutrition) (*models.Nutrition, error) {
	if w.CaloriesKcal == nil {
		return nil, &ValidationError{Field: path + ".calories_kcal", Reason: "is required"}
	}
	if w.Macros == nil {
		return nil, &ValidationError{Field: path + ".macros", Reason: "is required"}
	}
	if w.Micros == nil {
		return nil, &ValidationError{Field: path + ".micros", Reason: "is required"}
	}

	out := &models.Nutrition{Allergens: w.Allergens}
	if out.Allergens == nil {
		out.Allergens = []string{}
	}

	nutrients := []struct {
		name string
		v    *float64
		dst  *float64
	}{
		{".calories_kcal", w.CaloriesKcal, &out.CaloriesKcal},
		{".macros.protein_g", w.Macros.ProteinG, &out.Macros.ProteinG},
		{".macros.carbs_g", w.Macros.CarbsG, &out.Macros.CarbsG},
		{".macros.fat_g", w.Macros.FatG, &out.Macros.FatG},
		{".macros.fiber_g", w.Macros.FiberG, &out.Macros.FiberG},
		{".macros.sugar_g", w.Macros.SugarG, &out.Macros.SugarG},
		{".micros.sodium_mg", w.Micros.SodiumMg, &out.Micros.SodiumMg},
		{".micros.potassium_mg", w.Micros.PotassiumMg, &out.Micros.PotassiumMg},
		{".micros.calcium_mg", w.Micros.CalciumMg, &out.Micros.CalciumMg},
		{".micros.iron_mg", w.Micros.IronMg, &out.Micros.IronMg},
		{".micros.vitamin_a_mcg", w.Micros.VitaminAMcg, &out.Micros.VitaminAMcg},
		{".micros.vitamin_c_mg", w.Micros.VitaminCMg, &out.Micros.VitaminCMg},
		{".micros.cholesterol_mg", w.Micros.CholesterolMg, &out.Micros.CholesterolMg},
	}
	for _, n := range nutrients {
		if n.v == nil {
			return nil, &ValidationError{Field: path + n.name, Reason: "is required"}
		}
		if *n.v < 0 {
			return nil, &ValidationError{Field: path + n.name, Reason: "must be non-negative"}
		}
		*n.dst = *n.v
	}
	return out, nil
}
