package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/medipoint/survey-server/models"
	"gorm.io/gorm"
)

type SurveyService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewSurveyService(db *gorm.DB, n Notifier) *SurveyService {
	if n == nil {
		n = DefaultNotifier
	}
	return &SurveyService{DB: db, Notifier: n}
}

type QuestionInput struct {
	QuestionText string          `json:"question_text"`
	QuestionType string          `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	Required     *bool           `json:"required"`
}

type CreateSurveyInput struct {
	Title           string          `json:"title"`
	Description     *string         `json:"description"`
	Points          int             `json:"points"`
	EstimatedTime   int             `json:"estimated_time"`
	Status          string          `json:"status"`
	TargetSpecialty *string         `json:"target_specialty"`
	StartsAt        *time.Time      `json:"starts_at"`
	EndsAt          *time.Time      `json:"ends_at"`
	Questions       []QuestionInput `json:"questions"`
}

// CreateSurvey validates the whole question schema up front, then persists
// the survey and its questions in one transaction. A survey created directly
// as active notifies eligible doctors.
func (s *SurveyService) CreateSurvey(clientID string, input CreateSurveyInput) (*models.Survey, error) {
	var client models.Client
	if err := s.DB.First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "client", ID: clientID}
		}
		return nil, err
	}

	if input.Title == "" {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "title is required"}
	}
	if input.Points <= 0 {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "points must be positive"}
	}
	if input.EstimatedTime <= 0 {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "estimated_time must be positive"}
	}
	if input.Status == "" {
		input.Status = models.SurveyStatusDraft
	}
	if !models.ValidSurveyStatus(input.Status) {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "unknown survey status"}
	}
	if len(input.Questions) == 0 {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "survey needs at least one question"}
	}

	for i, q := range input.Questions {
		if q.QuestionText == "" {
			return nil, &SchemaError{QuestionIndex: i, Reason: "question_text is required"}
		}
		if err := ValidateQuestionSchema(q.QuestionType, q.Options); err != nil {
			return nil, &SchemaError{QuestionIndex: i, Reason: err.Error()}
		}
	}

	survey := models.Survey{
		ClientID:        clientID,
		Title:           input.Title,
		Description:     input.Description,
		Points:          input.Points,
		EstimatedTime:   input.EstimatedTime,
		Status:          input.Status,
		TargetSpecialty: input.TargetSpecialty,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&survey).Error; err != nil {
			return err
		}
		for i, q := range input.Questions {
			required := true
			if q.Required != nil {
				required = *q.Required
			}
			question := models.SurveyQuestion{
				SurveyID:     survey.ID,
				QuestionText: q.QuestionText,
				QuestionType: q.QuestionType,
				OptionsJSON:  string(q.Options),
				Required:     required,
				OrderIndex:   i,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if survey.Status == models.SurveyStatusActive {
		go s.notifyEligibleDoctors(survey)
	}
	return s.GetSurvey(survey.ID)
}

func (s *SurveyService) GetSurvey(surveyID string) (*models.Survey, error) {
	var survey models.Survey
	err := s.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC, id ASC") }).
		First(&survey, "id = ?", surveyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "survey", ID: surveyID}
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (s *SurveyService) GetClientSurveys(clientID string) ([]models.Survey, error) {
	var surveys []models.Survey
	err := s.DB.Where("client_id = ?", clientID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC, id ASC") }).
		Order("created_at DESC").
		Find(&surveys).Error
	return surveys, err
}

// ListEligibleSurveys returns the active surveys a doctor may take: owned by
// a client the doctor is mapped to, specialty-matched, and not yet completed
// by this doctor. An in-progress response keeps the survey offerable.
func (s *SurveyService) ListEligibleSurveys(doctorID string) ([]models.Survey, error) {
	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}

	clientIDs := s.DB.Model(&models.DoctorClientMapping{}).
		Select("client_id").
		Where("doctor_id = ?", doctorID)
	completedSurveyIDs := s.DB.Model(&models.DoctorSurveyResponse{}).
		Select("survey_id").
		Where("doctor_id = ? AND completed = ?", doctorID, true)

	surveys := []models.Survey{}
	err := s.DB.
		Where("status = ?", models.SurveyStatusActive).
		Where("client_id IN (?)", clientIDs).
		Where("target_specialty IS NULL OR target_specialty = ?", doctor.Specialty).
		Where("id NOT IN (?)", completedSurveyIDs).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index ASC, id ASC") }).
		Order("created_at DESC").
		Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

// GetCompletedSurveys returns the doctor's completed responses joined with
// their surveys, most recently completed first.
func (s *SurveyService) GetCompletedSurveys(doctorID string) ([]models.DoctorSurveyResponse, error) {
	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}

	responses := []models.DoctorSurveyResponse{}
	err := s.DB.Where("doctor_id = ? AND completed = ?", doctorID, true).
		Preload("Survey").
		Order("completed_at DESC").
		Find(&responses).Error
	return responses, err
}

// ChangeStatus moves a survey between the four statuses. Any transition is
// permitted; entering active from another status re-notifies eligible
// doctors, once per transition event.
func (s *SurveyService) ChangeStatus(surveyID, status string) (*models.Survey, error) {
	if !models.ValidSurveyStatus(status) {
		return nil, &ValidationError{Reason: "unknown survey status"}
	}

	var survey models.Survey
	if err := s.DB.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "survey", ID: surveyID}
		}
		return nil, err
	}

	becameActive := survey.Status != models.SurveyStatusActive && status == models.SurveyStatusActive
	if err := s.DB.Model(&survey).Update("status", status).Error; err != nil {
		return nil, err
	}
	survey.Status = status

	if becameActive {
		go s.notifyEligibleDoctors(survey)
	}
	return &survey, nil
}

// notifyEligibleDoctors dispatches the new-survey notification to every
// doctor the eligibility filter admits. Best-effort: errors are logged by
// the notifier, never surfaced.
func (s *SurveyService) notifyEligibleDoctors(survey models.Survey) {
	var doctors []models.Doctor
	q := s.DB.
		Joins("JOIN doctor_client_mappings m ON m.doctor_id = doctors.id").
		Where("m.client_id = ?", survey.ClientID)
	if survey.TargetSpecialty != nil {
		q = q.Where("doctors.specialty = ?", *survey.TargetSpecialty)
	}
	if err := q.Find(&doctors).Error; err != nil {
		return
	}
	for _, d := range doctors {
		s.Notifier.NotifyNewSurvey(d.ID, survey.ID, survey.Title)
	}
}

// questionSetFrozen reports whether any response (in-progress or completed)
// exists for the survey. Once one does, the question set may no longer be
// restructured, so stored answers always correspond to the schema they were
// validated against.
func (s *SurveyService) questionSetFrozen(surveyID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.DoctorSurveyResponse{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	return count > 0, err
}

func (s *SurveyService) ensureEditable(surveyID string) (*models.Survey, error) {
	var survey models.Survey
	if err := s.DB.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "survey", ID: surveyID}
		}
		return nil, err
	}
	frozen, err := s.questionSetFrozen(surveyID)
	if err != nil {
		return nil, err
	}
	if frozen {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "question set is frozen once responses exist"}
	}
	return &survey, nil
}

// AddQuestion appends a question at the end of the survey's order.
func (s *SurveyService) AddQuestion(surveyID string, input QuestionInput) (*models.SurveyQuestion, error) {
	if _, err := s.ensureEditable(surveyID); err != nil {
		return nil, err
	}
	if input.QuestionText == "" {
		return nil, &SchemaError{QuestionIndex: -1, Reason: "question_text is required"}
	}
	if err := ValidateQuestionSchema(input.QuestionType, input.Options); err != nil {
		return nil, &SchemaError{QuestionIndex: -1, Reason: err.Error()}
	}

	// next index = MAX(order_index)+1
	type nextRes struct{ Next int }
	var r nextRes
	if err := s.DB.Model(&models.SurveyQuestion{}).
		Where("survey_id = ?", surveyID).
		Select("COALESCE(MAX(order_index), -1) + 1 AS next").
		Scan(&r).Error; err != nil {
		return nil, err
	}

	required := true
	if input.Required != nil {
		required = *input.Required
	}
	question := models.SurveyQuestion{
		SurveyID:     surveyID,
		QuestionText: input.QuestionText,
		QuestionType: input.QuestionType,
		OptionsJSON:  string(input.Options),
		Required:     required,
		OrderIndex:   r.Next,
	}
	if err := s.DB.Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

type UpdateQuestionInput struct {
	QuestionText *string          `json:"question_text"`
	Options      *json.RawMessage `json:"options"`
	Required     *bool            `json:"required"`
}

func (s *SurveyService) UpdateQuestion(surveyID, questionID string, input UpdateQuestionInput) error {
	if _, err := s.ensureEditable(surveyID); err != nil {
		return err
	}

	var question models.SurveyQuestion
	if err := s.DB.Where("id = ? AND survey_id = ?", questionID, surveyID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "question", ID: questionID}
		}
		return err
	}

	updates := map[string]interface{}{}
	if input.QuestionText != nil {
		if *input.QuestionText == "" {
			return &SchemaError{QuestionIndex: -1, Reason: "question_text is required"}
		}
		updates["question_text"] = *input.QuestionText
	}
	if input.Options != nil {
		if err := ValidateQuestionSchema(question.QuestionType, *input.Options); err != nil {
			return &SchemaError{QuestionIndex: -1, Reason: err.Error()}
		}
		updates["options"] = string(*input.Options)
	}
	if input.Required != nil {
		updates["required"] = *input.Required
	}
	if len(updates) == 0 {
		return &ValidationError{Reason: "nothing to update"}
	}
	return s.DB.Model(&question).Updates(updates).Error
}

// DeleteQuestion removes a question and closes the order gap behind it.
func (s *SurveyService) DeleteQuestion(surveyID, questionID string) error {
	if _, err := s.ensureEditable(surveyID); err != nil {
		return err
	}

	var question models.SurveyQuestion
	if err := s.DB.Where("id = ? AND survey_id = ?", questionID, surveyID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "question", ID: questionID}
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&question).Error; err != nil {
			return err
		}
		return tx.Model(&models.SurveyQuestion{}).
			Where("survey_id = ? AND order_index > ?", surveyID, question.OrderIndex).
			Update("order_index", gorm.Expr("order_index - 1")).Error
	})
}

// ReorderQuestions rewrites order_index to match the given id sequence. The
// sequence must name every question of the survey exactly once.
func (s *SurveyService) ReorderQuestions(surveyID string, order []string) error {
	if _, err := s.ensureEditable(surveyID); err != nil {
		return err
	}

	var total int64
	if err := s.DB.Model(&models.SurveyQuestion{}).
		Where("survey_id = ?", surveyID).
		Count(&total).Error; err != nil {
		return err
	}
	var matched int64
	if err := s.DB.Model(&models.SurveyQuestion{}).
		Where("survey_id = ? AND id IN ?", surveyID, order).
		Count(&matched).Error; err != nil {
		return err
	}
	if matched != int64(len(order)) || total != int64(len(order)) {
		return &ValidationError{Reason: "order must list every question of the survey exactly once"}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for idx, qID := range order {
			if err := tx.Model(&models.SurveyQuestion{}).
				Where("id = ? AND survey_id = ?", qID, surveyID).
				Update("order_index", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
