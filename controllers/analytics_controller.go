package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/middleware"
	"github.com/medipoint/survey-server/models"
	"github.com/medipoint/survey-server/services"
)

// GET /api/surveys/:id/analytics
func GetSurveyAnalytics(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	svc := services.NewAnalyticsService(config.DB)
	analytics, err := svc.SurveyAnalytics(survey.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}
