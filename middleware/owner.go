package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/models"
)

// CheckSurveyOwner loads the survey from the :id param and verifies the
// calling client owns it. Runs after RequireClient.
func CheckSurveyOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.MustGet(CtxClient).(models.Client)

		id := c.Param("id")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid survey id"})
			return
		}

		var survey models.Survey
		if err := config.DB.First(&survey, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Survey not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load survey"})
			return
		}

		if survey.ClientID != client.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "You do not own this survey"})
			return
		}

		c.Set(CtxSurvey, survey)
		c.Next()
	}
}
