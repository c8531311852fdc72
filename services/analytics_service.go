package services

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/medipoint/survey-server/models"
	"gorm.io/gorm"
)

type AnalyticsService struct {
	DB *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

type QuestionAnalytics struct {
	QuestionID    string         `json:"question_id"`
	QuestionText  string         `json:"question_text"`
	QuestionType  string         `json:"question_type"`
	ResponseCount int            `json:"response_count"`
	OptionCounts  map[string]int `json:"option_counts,omitempty"`
	TextResponses []string       `json:"text_responses,omitempty"`
}

type SurveyAnalytics struct {
	SurveyID              string              `json:"survey_id"`
	Title                 string              `json:"title"`
	TotalResponses        int                 `json:"total_responses"`
	CompletedResponses    int                 `json:"completed_responses"`
	CompletionRate        float64             `json:"completion_rate"`
	AverageCompletionTime float64             `json:"average_completion_time"` // minutes
	TotalPointsAwarded    int                 `json:"total_points_awarded"`
	Questions             []QuestionAnalytics `json:"questions"`
}

// SurveyAnalytics derives reporting statistics from the accumulated
// responses. Read-only; recomputed on every call.
func (s *AnalyticsService) SurveyAnalytics(surveyID string) (*SurveyAnalytics, error) {
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

	var responses []models.DoctorSurveyResponse
	if err := s.DB.Where("survey_id = ?", surveyID).
		Preload("Answers").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	total := len(responses)
	completed := 0
	var completionMinutes []float64
	// answers of completed responses, grouped by question
	byQuestion := make(map[string][]string)
	for i := range responses {
		r := &responses[i]
		if !r.Completed {
			continue
		}
		completed++
		if r.StartedAt != nil && r.CompletedAt != nil {
			minutes := math.Round(r.CompletedAt.Sub(*r.StartedAt).Minutes())
			completionMinutes = append(completionMinutes, minutes)
		}
		for _, a := range r.Answers {
			byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a.AnswerJSON)
		}
	}

	out := &SurveyAnalytics{
		SurveyID:           survey.ID,
		Title:              survey.Title,
		TotalResponses:     total,
		CompletedResponses: completed,
		TotalPointsAwarded: completed * survey.Points,
	}
	if total > 0 {
		out.CompletionRate = float64(completed) / float64(total)
	}
	if len(completionMinutes) > 0 {
		var sum float64
		for _, m := range completionMinutes {
			sum += m
		}
		out.AverageCompletionTime = sum / float64(len(completionMinutes))
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		raws := byQuestion[q.ID]
		qa := QuestionAnalytics{
			QuestionID:    q.ID,
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			ResponseCount: len(raws),
		}

		switch q.QuestionType {
		case models.QuestionTypeLikert:
			counts := map[string]int{}
			for _, raw := range raws {
				var a struct {
					Value json.Number `json:"value"`
				}
				if json.Unmarshal([]byte(raw), &a) == nil {
					counts[a.Value.String()]++
				}
			}
			qa.OptionCounts = counts

		case models.QuestionTypeMultipleChoice:
			counts := map[string]int{}
			for _, raw := range raws {
				var a struct {
					Value string `json:"value"`
				}
				if json.Unmarshal([]byte(raw), &a) == nil {
					counts[a.Value]++
				}
			}
			qa.OptionCounts = counts

		case models.QuestionTypeCheckbox:
			// every selected value counts once per response it appears in
			counts := map[string]int{}
			for _, raw := range raws {
				var a struct {
					Values []string `json:"values"`
				}
				if json.Unmarshal([]byte(raw), &a) == nil {
					for _, v := range a.Values {
						counts[v]++
					}
				}
			}
			qa.OptionCounts = counts

		case models.QuestionTypeText:
			texts := []string{}
			for _, raw := range raws {
				var a struct {
					Text string `json:"text"`
				}
				if json.Unmarshal([]byte(raw), &a) == nil {
					texts = append(texts, a.Text)
				}
			}
			qa.TextResponses = texts
		}

		out.Questions = append(out.Questions, qa)
	}
	return out, nil
}
