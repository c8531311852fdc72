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

// POST /api/surveys
func CreateSurvey(c *gin.Context) {
	client := c.MustGet(middleware.CtxClient).(models.Client)

	var input services.CreateSurveyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	survey, err := svc.CreateSurvey(client.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, surveyView(survey))
}

// GET /api/surveys/my
func GetMySurveys(c *gin.Context) {
	client := c.MustGet(middleware.CtxClient).(models.Client)

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	surveys, err := svc.GetClientSurveys(client.ID)
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

// GET /api/surveys/:id
func GetSurveyDetail(c *gin.Context) {
	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	survey, err := svc.GetSurvey(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveyView(survey))
}

type changeStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/surveys/:id/status
func ChangeSurveyStatus(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	var req changeStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	updated, err := svc.ChangeStatus(survey.ID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": updated.ID, "status": updated.Status})
}

func surveyView(s *models.Survey) gin.H {
	questions := []gin.H{}
	for i := range s.Questions {
		questions = append(questions, questionView(&s.Questions[i]))
	}
	return gin.H{
		"id":               s.ID,
		"client_id":        s.ClientID,
		"title":            s.Title,
		"description":      s.Description,
		"points":           s.Points,
		"estimated_time":   s.EstimatedTime,
		"status":           s.Status,
		"target_specialty": s.TargetSpecialty,
		"starts_at":        s.StartsAt,
		"ends_at":          s.EndsAt,
		"created_at":       s.CreatedAt,
		"questions":        questions,
	}
}

func questionView(q *models.SurveyQuestion) gin.H {
	var options interface{}
	if q.OptionsJSON != "" {
		_ = json.Unmarshal([]byte(q.OptionsJSON), &options)
	}
	return gin.H{
		"id":            q.ID,
		"question_text": q.QuestionText,
		"question_type": q.QuestionType,
		"options":       options,
		"required":      q.Required,
		"order_index":   q.OrderIndex,
	}
}
