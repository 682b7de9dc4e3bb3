package controllers

import (
	"errors"
	"net/http"

	"platelens/services"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Svc *services.AnalysisService
	Hub *services.RealtimeHub
}

func NewAnalysisController(svc *services.AnalysisService, hub *services.RealtimeHub) *AnalysisController {
	return &AnalysisController{Svc: svc, Hub: hub}
}

type AnalyzeRequest struct {
	DataURL string `json:"dataURL" binding:"required"`
}

// AnalyzeImage handles the file-upload capture path.
func (ac *AnalysisController) AnalyzeImage(c *gin.Context) {
	ac.analyze(c, services.SourceUpload)
}

// AnalyzeCamera handles the camera capture path. Same pipeline, a
// different backing model.
func (ac *AnalysisController) AnalyzeCamera(c *gin.Context) {
	ac.analyze(c, services.SourceCamera)
}

func (ac *AnalysisController) analyze(c *gin.Context, source string) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	analysis, err := ac.Svc.Analyze(c.Request.Context(), req.DataURL, source)
	if err != nil {
		c.JSON(analysisErrorStatus(err), gin.H{"message": err.Error()})
		return
	}

	if ac.Hub != nil {
		if uid, ok := userIDFromCtx(c); ok {
			ac.Hub.BroadcastAnalysis(uid, source, analysis)
		}
	}
	c.JSON(http.StatusOK, analysis)
}

// analysisErrorStatus maps pipeline failures onto response codes:
// bad input 400, missing credential 500, everything upstream 502.
func analysisErrorStatus(err error) int {
	var transport *services.TransportError
	var malformed *services.MalformedResponseError
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMissingAPIKey):
		return http.StatusInternalServerError
	case errors.As(err, &transport),
		errors.As(err, &malformed),
		errors.As(err, &validation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
