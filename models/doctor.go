package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Doctor struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"size:36;not null;index" json:"user_id"`
	Specialty      string    `gorm:"size:100" json:"specialty"`
	Hospital       *string   `gorm:"size:255" json:"hospital,omitempty"`
	Bio            *string   `gorm:"type:text" json:"bio,omitempty"`
	TotalPoints    int       `gorm:"not null;default:0" json:"total_points"`
	RedeemedPoints int       `gorm:"not null;default:0" json:"redeemed_points"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User           User                   `gorm:"foreignKey:UserID" json:"-"`
	ClientMappings []DoctorClientMapping  `gorm:"foreignKey:DoctorID" json:"-"`
	Responses      []DoctorSurveyResponse `gorm:"foreignKey:DoctorID" json:"-"`
	Redemptions    []Redemption           `gorm:"foreignKey:DoctorID" json:"-"`
}

// AvailablePoints is always derived, never stored.
func (d *Doctor) AvailablePoints() int {
	return d.TotalPoints - d.RedeemedPoints
}

func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (Doctor) TableName() string {
	return "doctors"
}
