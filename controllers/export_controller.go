package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"platelens/models"
	"platelens/services"
	"platelens/utils"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	Meals *services.MealService
}

func NewExportController(meals *services.MealService) *ExportController {
	return &ExportController{Meals: meals}
}

// ExportMealHistoryCSV streams the whole meal history as CSV.
func (ec *ExportController) ExportMealHistoryCSV(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	meals, err := ec.Meals.ListMeals(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out, err := utils.MealHistoryCSV(meals)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="meals.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(out))
}

func (ec *ExportController) ExportMealCSV(c *gin.Context) {
	meal, ok := ec.lookupMeal(c)
	if !ok {
		return
	}

	analysis := models.NutritionAnalysis(meal.Analysis)
	out, err := utils.AnalysisCSV(&analysis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="meal-%d.csv"`, meal.ID))
	c.Data(http.StatusOK, "text/csv", []byte(out))
}

func (ec *ExportController) ExportMealJSON(c *gin.Context) {
	meal, ok := ec.lookupMeal(c)
	if !ok {
		return
	}

	analysis := models.NutritionAnalysis(meal.Analysis)
	out, err := utils.AnalysisJSONPretty(&analysis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="meal-%d.json"`, meal.ID))
	c.Data(http.StatusOK, "application/json", out)
}

func (ec *ExportController) ExportMealTXT(c *gin.Context) {
	meal, ok := ec.lookupMeal(c)
	if !ok {
		return
	}

	analysis := models.NutritionAnalysis(meal.Analysis)
	title := meal.Name
	if title == "" {
		title = meal.MealType
	}
	out := utils.AnalysisTXT(&analysis, title)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="meal-%d.txt"`, meal.ID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(out))
}

func (ec *ExportController) lookupMeal(c *gin.Context) (*models.Meal, bool) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	mealID, ok := mealIDParam(c)
	if !ok {
		return nil, false
	}

	meal, err := ec.Meals.GetMeal(userID, mealID)
	if errors.Is(err, services.ErrMealNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return meal, true
}
