package controllers

import (
	"net/http"

	"platelens/services"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	Recs *services.RecommendationService
}

func NewRecommendationController(recs *services.RecommendationService) *RecommendationController {
	return &RecommendationController{Recs: recs}
}

func (rc *RecommendationController) GetRecommendations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	averages, recs, err := rc.Recs.ForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"daily_averages":  averages,
		"recommendations": recs,
	})
}
