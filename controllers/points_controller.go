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

// GET /api/doctor/points
func GetPointsBalance(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	svc := services.NewPointsService(config.DB)
	balance, err := svc.Balance(doctor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

type redemptionReq struct {
	Points         int             `json:"points" binding:"required"`
	RedemptionType string          `json:"redemption_type" binding:"required"`
	Details        json.RawMessage `json:"redemption_details"`
}

// POST /api/doctor/redemptions
func RequestRedemption(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	var req redemptionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	svc := services.NewPointsService(config.DB)
	redemption, err := svc.RequestRedemption(doctor.ID, req.Points, req.RedemptionType, req.Details)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              redemption.ID,
		"points":          redemption.Points,
		"redemption_type": redemption.RedemptionType,
		"status":          redemption.Status,
		"created_at":      redemption.CreatedAt,
	})
}

// GET /api/doctor/redemptions
func ListRedemptions(c *gin.Context) {
	doctor := c.MustGet(middleware.CtxDoctor).(models.Doctor)

	svc := services.NewPointsService(config.DB)
	redemptions, err := svc.ListRedemptions(doctor.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redemptions": redemptions})
}
