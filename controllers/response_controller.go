package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/middleware"
	"github.com/medipoint/survey-server/models"
	"github.com/medipoint/survey-server/services"
)

// GET /api/doctor/surveys
func GetEligibleSurveys(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	surveys, err := svc.ListEligibleSurveys(doctor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := []gin.H{}
	for i := range surveys {
		out = append(out, surveyView(&surveys[i]))
	}
	c.JSON(http.StatusOK, gin.H{"surveys": out})
}

// GET /api/doctor/surveys/completed
func GetCompletedSurveys(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	responses, err := svc.GetCompletedSurveys(doctor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := []gin.H{}
	for i := range responses {
		r := &responses[i]
		out = append(out, gin.H{
			"id":            r.ID,
			"survey_id":     r.SurveyID,
			"survey_title":  r.Survey.Title,
			"points_earned": r.PointsEarned,
			"started_at":    r.StartedAt,
			"completed_at":  r.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"responses": out})
}

// POST /api/surveys/:id/responses/start
func StartResponse(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	svc := services.NewResponseService(config.DB, services.DefaultNotifier)
	response, err := svc.StartResponse(doctor.ID, c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response_id": response.ID,
		"survey_id":   response.SurveyID,
		"started_at":  response.StartedAt,
	})
}

type submitResponseReq struct {
	Answers []services.AnswerInput `json:"answers" binding:"required"`
}

// POST /api/surveys/:id/responses
func SubmitResponse(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	var req submitResponseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	for _, a := range req.Answers {
		if a.QuestionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "every answer needs a question_id"})
			return
		}
		if len(a.Answer) == 0 || !json.Valid(a.Answer) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "answer is not valid JSON", "question_id": a.QuestionID})
			return
		}
	}

	svc := services.NewResponseService(config.DB, services.DefaultNotifier)
	response, err := svc.SubmitResponse(doctor.ID, c.Param("id"), req.Answers)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response_id":   response.ID,
		"survey_id":     response.SurveyID,
		"completed":     response.Completed,
		"points_earned": response.PointsEarned,
		"completed_at":  response.CompletedAt,
	})
}
