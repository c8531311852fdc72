package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medipoint/survey-server/services"
)

// respondServiceError maps domain errors onto HTTP statuses. Validation
// bodies carry the offending question id so the client can fix and retry.
func respondServiceError(c *gin.Context, err error) {
	var (
		notFound         *services.NotFoundError
		notActive        *services.SurveyNotActiveError
		validation       *services.ValidationError
		schema           *services.SchemaError
		alreadyCompleted *services.AlreadyCompletedError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound.Error()})
	case errors.As(err, &notActive):
		c.JSON(http.StatusForbidden, gin.H{"message": notActive.Error()})
	case errors.As(err, &validation):
		body := gin.H{"message": validation.Error()}
		if validation.QuestionID != "" {
			body["question_id"] = validation.QuestionID
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &schema):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": schema.Error()})
	case errors.As(err, &alreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"message": alreadyCompleted.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
	}
}
