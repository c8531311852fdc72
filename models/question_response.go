package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionResponse holds one answer payload as JSON text; its shape must
// match the owning question's type.
type QuestionResponse struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ResponseID string    `gorm:"size:36;not null;index" json:"response_id"`
	QuestionID string    `gorm:"size:36;not null;index" json:"question_id"`
	AnswerJSON string    `gorm:"column:answer;type:text;not null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Response DoctorSurveyResponse `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
	Question SurveyQuestion       `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (a *QuestionResponse) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (QuestionResponse) TableName() string {
	return "question_responses"
}
