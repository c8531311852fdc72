package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/medipoint/survey-server/models"
	"gorm.io/gorm"
)

type ResponseService struct {
	DB       *gorm.DB
	Points   *PointsService
	Notifier Notifier
}

func NewResponseService(db *gorm.DB, n Notifier) *ResponseService {
	if n == nil {
		n = DefaultNotifier
	}
	return &ResponseService{DB: db, Points: NewPointsService(db), Notifier: n}
}

type AnswerInput struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// StartResponse records that a doctor opened a survey, creating the
// in-progress row with started_at set. Reuses an existing in-progress row;
// rejects if the doctor already completed the survey.
func (s *ResponseService) StartResponse(doctorID, surveyID string) (*models.DoctorSurveyResponse, error) {
	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}
	var survey models.Survey
	if err := s.DB.First(&survey, "id = ?", surveyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "survey", ID: surveyID}
		}
		return nil, err
	}
	if survey.Status != models.SurveyStatusActive {
		return nil, &SurveyNotActiveError{SurveyID: surveyID, Status: survey.Status}
	}

	var response models.DoctorSurveyResponse
	err := s.DB.Where("doctor_id = ? AND survey_id = ?", doctorID, surveyID).
		First(&response).Error
	if err == nil {
		if response.Completed {
			return nil, &AlreadyCompletedError{DoctorID: doctorID, SurveyID: surveyID}
		}
		return &response, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	response = models.DoctorSurveyResponse{
		DoctorID:  doctorID,
		SurveyID:  surveyID,
		StartedAt: &now,
	}
	if err := s.DB.Create(&response).Error; err != nil {
		// lost a race on the unique (doctor_id, survey_id) index
		if ferr := s.DB.Where("doctor_id = ? AND survey_id = ?", doctorID, surveyID).
			First(&response).Error; ferr == nil {
			if response.Completed {
				return nil, &AlreadyCompletedError{DoctorID: doctorID, SurveyID: surveyID}
			}
			return &response, nil
		}
		return nil, err
	}
	return &response, nil
}

// SubmitResponse validates a doctor's full answer set against the survey's
// question schema and, in one transaction, persists the answers, marks the
// response completed and awards the survey's points. The completion flip is
// guarded by a completed=false predicate, so a (doctor, survey) pair can be
// settled at most once regardless of concurrent submissions.
func (s *ResponseService) SubmitResponse(doctorID, surveyID string, answers []AnswerInput) (*models.DoctorSurveyResponse, error) {
	var doctor models.Doctor
	if err := s.DB.First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor", ID: doctorID}
		}
		return nil, err
	}

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
	if survey.Status != models.SurveyStatusActive {
		return nil, &SurveyNotActiveError{SurveyID: surveyID, Status: survey.Status}
	}

	// Pure validation first; nothing is persisted until every answer passes.
	submitted := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		if _, dup := submitted[a.QuestionID]; dup {
			return nil, &ValidationError{QuestionID: a.QuestionID, Reason: "answered more than once"}
		}
		submitted[a.QuestionID] = a.Answer
	}

	questionIDs := make(map[string]bool, len(survey.Questions))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		questionIDs[q.ID] = true
		if q.Required {
			if _, ok := submitted[q.ID]; !ok {
				return nil, &ValidationError{QuestionID: q.ID, Reason: "required question not answered"}
			}
		}
	}
	for qid := range submitted {
		if !questionIDs[qid] {
			return nil, &ValidationError{QuestionID: qid, Reason: "question does not belong to this survey"}
		}
	}
	for i := range survey.Questions {
		q := &survey.Questions[i]
		raw, ok := submitted[q.ID]
		if !ok {
			continue // optional question omitted: no row is written
		}
		if err := ValidateAnswer(q, raw); err != nil {
			return nil, &ValidationError{QuestionID: q.ID, Reason: err.Error()}
		}
	}

	now := time.Now()
	var response models.DoctorSurveyResponse
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ? AND survey_id = ?", doctorID, surveyID).
			First(&response).Error
		switch {
		case err == nil:
			if response.Completed {
				return &AlreadyCompletedError{DoctorID: doctorID, SurveyID: surveyID}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			response = models.DoctorSurveyResponse{
				DoctorID:  doctorID,
				SurveyID:  surveyID,
				StartedAt: &now,
			}
			if cerr := tx.Create(&response).Error; cerr != nil {
				// concurrent create on the unique pair index
				if ferr := tx.Where("doctor_id = ? AND survey_id = ?", doctorID, surveyID).
					First(&response).Error; ferr != nil {
					return cerr
				}
				if response.Completed {
					return &AlreadyCompletedError{DoctorID: doctorID, SurveyID: surveyID}
				}
			}
		default:
			return err
		}

		// Replace-or-insert: drop any answers from a prior partial attempt.
		if err := tx.Where("response_id = ?", response.ID).
			Delete(&models.QuestionResponse{}).Error; err != nil {
			return err
		}
		for i := range survey.Questions {
			q := &survey.Questions[i]
			raw, ok := submitted[q.ID]
			if !ok {
				continue
			}
			qr := models.QuestionResponse{
				ResponseID: response.ID,
				QuestionID: q.ID,
				AnswerJSON: string(raw),
			}
			if err := tx.Create(&qr).Error; err != nil {
				return err
			}
		}

		// Guarded completion: only one transaction can flip the flag.
		res := tx.Model(&models.DoctorSurveyResponse{}).
			Where("id = ? AND completed = ?", response.ID, false).
			Updates(map[string]interface{}{
				"completed":     true,
				"completed_at":  now,
				"points_earned": survey.Points,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &AlreadyCompletedError{DoctorID: doctorID, SurveyID: surveyID}
		}

		// Settle inside the same transaction: the award commits with the
		// completion or not at all.
		return s.Points.Award(tx, doctorID, survey.Points)
	})
	if err != nil {
		return nil, err
	}

	response.Completed = true
	response.CompletedAt = &now
	response.PointsEarned = survey.Points

	// Best-effort; the award has already committed.
	s.Notifier.NotifyPointsEarned(doctorID, survey.Points, survey.Title)

	return &response, nil
}

// GetResponse loads a response with its answers.
func (s *ResponseService) GetResponse(responseID string) (*models.DoctorSurveyResponse, error) {
	var response models.DoctorSurveyResponse
	err := s.DB.Preload("Answers").First(&response, "id = ?", responseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Resource: "response", ID: responseID}
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}
