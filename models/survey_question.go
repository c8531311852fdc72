package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QuestionTypeText           = "text"
	QuestionTypeLikert         = "likert"
	QuestionTypeMultipleChoice = "multipleChoice"
	QuestionTypeCheckbox       = "checkbox"
	QuestionTypeRanking        = "ranking"
	QuestionTypeMatrix         = "matrix"
)

func ValidQuestionType(t string) bool {
	switch t {
	case QuestionTypeText, QuestionTypeLikert, QuestionTypeMultipleChoice,
		QuestionTypeCheckbox, QuestionTypeRanking, QuestionTypeMatrix:
		return true
	}
	return false
}

// SurveyQuestion stores its type-specific options as a JSON text column;
// the shape per type is defined and validated in the services package.
type SurveyQuestion struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SurveyID     string    `gorm:"size:36;not null;index" json:"survey_id"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	QuestionType string    `gorm:"size:30;not null" json:"question_type"`
	OptionsJSON  string    `gorm:"column:options;type:text" json:"-"`
	Required     bool      `gorm:"not null;default:true" json:"required"`
	OrderIndex   int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Responses []QuestionResponse `gorm:"foreignKey:QuestionID" json:"-"`
}

func (q *SurveyQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

func (SurveyQuestion) TableName() string {
	return "survey_questions"
}
