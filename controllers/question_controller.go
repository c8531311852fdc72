package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/middleware"
	"github.com/medipoint/survey-server/models"
	"github.com/medipoint/survey-server/services"
)

// POST /api/surveys/:id/questions
func AddQuestion(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	var input services.QuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	question, err := svc.AddQuestion(survey.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"question_id": question.ID, "survey_id": survey.ID})
}

// PUT /api/surveys/:id/questions/:question_id
func UpdateQuestion(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	var input services.UpdateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	if err := svc.UpdateQuestion(survey.ID, c.Param("question_id"), input); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

// DELETE /api/surveys/:id/questions/:question_id
func DeleteQuestion(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	if err := svc.DeleteQuestion(survey.ID, c.Param("question_id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type reorderReq struct {
	Order []string `json:"order" binding:"required,min=1,dive,required"`
}

// PUT /api/surveys/:id/questions/reorder
func ReorderQuestions(c *gin.Context) {
	survey := c.MustGet(middleware.CtxSurvey).(models.Survey)

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewSurveyService(config.DB, services.DefaultNotifier)
	if err := svc.ReorderQuestions(survey.ID, req.Order); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
