package services

import (
	"encoding/json"
	"errors"

	"github.com/medipoint/survey-server/models"
	"gorm.io/gorm"
)

// MinRedemptionPoints is the smallest redemption a doctor may request.
const MinRedemptionPoints = 500

type PointsService struct {
	DB *gorm.DB
}

func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{DB: db}
}

// Award increments a doctor's total points. This is the only code path that
// writes total_points; it runs inside the caller's transaction so the award
// commits or rolls back together with the response completion.
func (s *PointsService) Award(tx *gorm.DB, doctorID string, amount int) error {
	res := tx.Model(&models.Doctor{}).
		Where("id = ?", doctorID).
		UpdateColumn("total_points", gorm.Expr("total_points + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "doctor", ID: doctorID}
	}
	return nil
}

type Balance struct {
	TotalPoints     int `json:"total_points"`
	RedeemedPoints  int `json:"redeemed_points"`
	AvailablePoints int `json:"available_points"`
}

func (s *PointsService) Balance(doctorID string) (*Balance, error) {
	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}
	return &Balance{
		TotalPoints:     doctor.TotalPoints,
		RedeemedPoints:  doctor.RedeemedPoints,
		AvailablePoints: doctor.AvailablePoints(),
	}, nil
}

// RequestRedemption records a pending payout and reserves the points. The
// redeemed_points bump is guarded by the balance predicate so two concurrent
// requests cannot both spend the same points.
func (s *PointsService) RequestRedemption(doctorID string, points int, redemptionType string, details json.RawMessage) (*models.Redemption, error) {
	if points < MinRedemptionPoints {
		return nil, &ValidationError{Reason: "minimum redemption is 500 points"}
	}
	if redemptionType != models.RedemptionTypeUPI && redemptionType != models.RedemptionTypeAmazon {
		return nil, &ValidationError{Reason: "redemption_type must be upi or amazon"}
	}
	if len(details) > 0 && !json.Valid(details) {
		return nil, &ValidationError{Reason: "redemption_details is not valid JSON"}
	}

	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}

	redemption := models.Redemption{
		DoctorID:       doctorID,
		Points:         points,
		RedemptionType: redemptionType,
		DetailsJSON:    string(details),
		Status:         models.RedemptionStatusPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Doctor{}).
			Where("id = ? AND total_points - redeemed_points >= ?", doctorID, points).
			UpdateColumn("redeemed_points", gorm.Expr("redeemed_points + ?", points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &ValidationError{Reason: "insufficient available points"}
		}
		return tx.Create(&redemption).Error
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (s *PointsService) ListRedemptions(doctorID string) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := s.DB.Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&redemptions).Error
	return redemptions, err
}
