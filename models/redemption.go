package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RedemptionTypeUPI    = "upi"
	RedemptionTypeAmazon = "amazon"

	RedemptionStatusPending    = "pending"
	RedemptionStatusProcessing = "processing"
	RedemptionStatusCompleted  = "completed"
	RedemptionStatusRejected   = "rejected"
)

type Redemption struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	DoctorID       string    `gorm:"size:36;not null;index" json:"doctor_id"`
	Points         int       `gorm:"not null" json:"points"`
	RedemptionType string    `gorm:"size:20;not null" json:"redemption_type"`
	DetailsJSON    string    `gorm:"column:redemption_details;type:text" json:"-"`
	Status         string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes          *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}

func (r *Redemption) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (Redemption) TableName() string {
	return "redemptions"
}
