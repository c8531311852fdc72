package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/models"
	"github.com/medipoint/survey-server/utils"
)

const (
	CtxUser   = "user"
	CtxDoctor = "doctorObj"
	CtxClient = "clientObj"
	CtxSurvey = "surveyObj"
)

// AuthJWT checks Authorization: Bearer <token>, validates the JWT, loads the
// user and injects it into the context.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		rawToken := strings.TrimSpace(authHeader[7:])

		claims, err := utils.VerifyToken(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// RequireRole blocks callers whose account role differs.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.Next()
	}
}

// RequireDoctor resolves the caller's doctor profile and injects it.
func RequireDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if u.Role != models.RoleDoctor {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Doctor account required"})
			return
		}

		var doctor models.Doctor
		if err := config.DB.First(&doctor, "user_id = ?", u.ID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Doctor profile not found"})
			return
		}
		c.Set(CtxDoctor, doctor)
		c.Next()
	}
}

// RequireClient resolves the caller's client profile and injects it.
func RequireClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		u := v.(models.User)
		if u.Role != models.RoleClient {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Client account required"})
			return
		}

		var client models.Client
		if err := config.DB.First(&client, "user_id = ?", u.ID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Client profile not found"})
			return
		}
		c.Set(CtxClient, client)
		c.Next()
	}
}
