package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorSurveyResponse is one doctor's attempt at one survey. The composite
// unique index keeps a single row per (doctor, survey) pair, which is the
// idempotency boundary for point awards.
type DoctorSurveyResponse struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	DoctorID     string     `gorm:"size:36;not null;uniqueIndex:idx_doctor_survey" json:"doctor_id"`
	SurveyID     string     `gorm:"size:36;not null;uniqueIndex:idx_doctor_survey" json:"survey_id"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor  Doctor             `gorm:"foreignKey:DoctorID" json:"-"`
	Survey  Survey             `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	Answers []QuestionResponse `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (r *DoctorSurveyResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (DoctorSurveyResponse) TableName() string {
	return "doctor_survey_responses"
}
