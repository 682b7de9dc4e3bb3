package routes

import (
	"platelens/controllers"
	"platelens/middlewares"
	"platelens/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	mealSvc := services.NewMealService(db)
	goalSvc := services.NewGoalService(db)
	visionSvc := services.NewVisionService()
	analysisSvc := services.NewAnalysisService(visionSvc)
	recSvc := services.NewRecommendationService(mealSvc, goalSvc)
	reportSvc := services.NewReportService(mealSvc, goalSvc)
	hub := services.NewRealtimeHub()

	analysisCtrl := controllers.NewAnalysisController(analysisSvc, hub)
	mealCtrl := controllers.NewMealController(mealSvc)
	goalCtrl := controllers.NewGoalController(goalSvc)
	recCtrl := controllers.NewRecommendationController(recSvc)
	reportCtrl := controllers.NewReportController(reportSvc)
	exportCtrl := controllers.NewExportController(mealSvc)
	realtimeCtrl := controllers.NewRealtimeController(hub)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected API routes
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/analyze-image", analysisCtrl.AnalyzeImage)
		api.POST("/analyze-camera", analysisCtrl.AnalyzeCamera)

		api.POST("/meals", mealCtrl.SaveMeal)
		api.GET("/meals", mealCtrl.ListMeals)
		api.GET("/meals/:id", mealCtrl.GetMeal)
		api.DELETE("/meals/:id", mealCtrl.DeleteMeal)

		api.GET("/goals", goalCtrl.GetGoals)
		api.PUT("/goals", goalCtrl.UpdateGoals)

		api.GET("/recommendations", recCtrl.GetRecommendations)
		api.GET("/reports/weekly", reportCtrl.WeeklyReport)

		api.GET("/export/meals.csv", exportCtrl.ExportMealHistoryCSV)
		api.GET("/meals/:id/export.csv", exportCtrl.ExportMealCSV)
		api.GET("/meals/:id/export.json", exportCtrl.ExportMealJSON)
		api.GET("/meals/:id/export.txt", exportCtrl.ExportMealTXT)

		api.GET("/ws", realtimeCtrl.EventsWS)
	}

	return r
}
