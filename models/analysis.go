package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Image orientations reported by the vision model.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
	OrientationSquare    = "square"
)

// NutritionAnalysis is the validated result of one image analysis.
// It is created once per successful model call and never partially updated.
type NutritionAnalysis struct {
	ImageMeta   ImageMeta  `json:"image_meta"`
	Composition []FoodItem `json:"composition"`
	Totals      Nutrition  `json:"totals"`
	Notes       string     `json:"notes,omitempty"`
}

type ImageMeta struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation string `json:"orientation"`
}

// FoodItem is one detected food item. Composition order is detection
// order and carries no meaning.
type FoodItem struct {
	Label       string      `json:"label"`
	Confidence  float64     `json:"confidence"`
	ServingEstG float64     `json:"serving_est_g"`
	BBoxNorm    BoundingBox `json:"bbox_norm"`
	Nutrition   Nutrition   `json:"nutrition"`
}

// BoundingBox is an image-relative rectangle: top-left x,y plus
// width/height, all as fractions of the image dimensions.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Nutrition struct {
	CaloriesKcal float64  `json:"calories_kcal"`
	Macros       Macros   `json:"macros"`
	Micros       Micros   `json:"micros"`
	Allergens    []string `json:"allergens"`
}

type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
}

type Micros struct {
	SodiumMg      float64 `json:"sodium_mg"`
	PotassiumMg   float64 `json:"potassium_mg"`
	CalciumMg     float64 `json:"calcium_mg"`
	IronMg        float64 `json:"iron_mg"`
	VitaminAMcg   float64 `json:"vitamin_a_mcg"`
	VitaminCMg    float64 `json:"vitamin_c_mg"`
	CholesterolMg float64 `json:"cholesterol_mg"`
}

// AnalysisJSON stores a whole NutritionAnalysis in a single column.
type AnalysisJSON NutritionAnalysis

func (a AnalysisJSON) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AnalysisJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = AnalysisJSON{}
		return nil
	default:
		return errors.New("unsupported column type for analysis data")
	}
}

func (AnalysisJSON) GormDataType() string { return "json" }

func (AnalysisJSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}
