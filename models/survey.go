package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SurveyStatusDraft     = "draft"
	SurveyStatusActive    = "active"
	SurveyStatusInactive  = "inactive"
	SurveyStatusCompleted = "completed"
)

func ValidSurveyStatus(s string) bool {
	switch s {
	case SurveyStatusDraft, SurveyStatusActive, SurveyStatusInactive, SurveyStatusCompleted:
		return true
	}
	return false
}

type Survey struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	ClientID        string     `gorm:"size:36;not null;index" json:"client_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     *string    `gorm:"type:text" json:"description,omitempty"`
	Points          int        `gorm:"not null" json:"points"`
	EstimatedTime   int        `gorm:"not null" json:"estimated_time"`
	Status          string     `gorm:"size:20;not null;default:'draft'" json:"status"`
	TargetSpecialty *string    `gorm:"size:100" json:"target_specialty,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Client    Client                 `gorm:"foreignKey:ClientID" json:"-"`
	Questions []SurveyQuestion       `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Responses []DoctorSurveyResponse `gorm:"foreignKey:SurveyID" json:"-"`
}

func (s *Survey) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (Survey) TableName() string {
	return "surveys"
}
