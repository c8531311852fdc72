package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medipoint/survey-server/models"
)

// Per-type option shapes, stored as JSON text on survey_questions.options.
// Answer payloads are validated against these at submission time.

type LikertOptions struct {
	Scale     int    `json:"scale"`
	LowLabel  string `json:"lowLabel"`
	HighLabel string `json:"highLabel"`
}

type ChoiceOptions struct {
	Choices []string `json:"choices"`
}

type RankingOptions struct {
	Items []string `json:"items"`
}

type MatrixOptions struct {
	Rows    []string `json:"rows"`
	Columns []string `json:"columns"`
}

const (
	likertScaleMin = 3
	likertScaleMax = 10
)

// ValidateQuestionSchema checks a question's type and options at authoring
// time. Returns a plain error; callers wrap it into a SchemaError with the
// question's position.
func ValidateQuestionSchema(questionType string, options json.RawMessage) error {
	if !models.ValidQuestionType(questionType) {
		return fmt.Errorf("unknown question type %q", questionType)
	}

	switch questionType {
	case models.QuestionTypeText:
		return nil

	case models.QuestionTypeLikert:
		var o LikertOptions
		if err := json.Unmarshal(options, &o); err != nil {
			return fmt.Errorf("invalid likert options: %v", err)
		}
		if o.Scale < likertScaleMin || o.Scale > likertScaleMax {
			return fmt.Errorf("likert scale must be between %d and %d", likertScaleMin, likertScaleMax)
		}
		return nil

	case models.QuestionTypeMultipleChoice, models.QuestionTypeCheckbox:
		var o ChoiceOptions
		if err := json.Unmarshal(options, &o); err != nil {
			return fmt.Errorf("invalid choice options: %v", err)
		}
		if len(o.Choices) < 2 {
			return fmt.Errorf("%s question needs at least 2 choices", questionType)
		}
		return nil

	case models.QuestionTypeRanking:
		var o RankingOptions
		if err := json.Unmarshal(options, &o); err != nil {
			return fmt.Errorf("invalid ranking options: %v", err)
		}
		if len(o.Items) < 2 {
			return fmt.Errorf("ranking question needs at least 2 items")
		}
		return nil

	case models.QuestionTypeMatrix:
		var o MatrixOptions
		if err := json.Unmarshal(options, &o); err != nil {
			return fmt.Errorf("invalid matrix options: %v", err)
		}
		if len(o.Rows) < 2 || len(o.Columns) < 2 {
			return fmt.Errorf("matrix question needs at least 2 rows and 2 columns")
		}
		return nil
	}
	return fmt.Errorf("unknown question type %q", questionType)
}

// Answer payload shapes, one per question type.

type textAnswer struct {
	Text *string `json:"text"`
}

type likertAnswer struct {
	Value *json.Number `json:"value"`
}

type choiceAnswer struct {
	Value *string `json:"value"`
}

type checkboxAnswer struct {
	Values []string `json:"values"`
}

type rankingAnswer struct {
	Ranking []string `json:"ranking"`
}

type matrixAnswer struct {
	Assignment map[string]string `json:"assignment"`
}

// ValidateAnswer checks one submitted answer payload against its question's
// type and options. Returns a plain error describing the mismatch; the
// submission path wraps it into a ValidationError carrying the question id.
func ValidateAnswer(q *models.SurveyQuestion, raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("answer payload is empty")
	}

	switch q.QuestionType {
	case models.QuestionTypeText:
		var a textAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("expected {text}: %v", err)
		}
		if a.Text == nil {
			return fmt.Errorf("missing text field")
		}
		if q.Required && strings.TrimSpace(*a.Text) == "" {
			return fmt.Errorf("text answer must not be empty")
		}
		return nil

	case models.QuestionTypeLikert:
		var o LikertOptions
		if err := json.Unmarshal([]byte(q.OptionsJSON), &o); err != nil {
			return fmt.Errorf("question has corrupt options: %v", err)
		}
		var a likertAnswer
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("expected {value}: %v", err)
		}
		if a.Value == nil {
			return fmt.Errorf("missing value field")
		}
		v, err := a.Value.Int64()
		if err != nil {
			return fmt.Errorf("value must be an integer")
		}
		if v < 1 || v > int64(o.Scale) {
			return fmt.Errorf("value %d outside scale [1, %d]", v, o.Scale)
		}
		return nil

	case models.QuestionTypeMultipleChoice:
		var o ChoiceOptions
		if err := json.Unmarshal([]byte(q.OptionsJSON), &o); err != nil {
			return fmt.Errorf("question has corrupt options: %v", err)
		}
		var a choiceAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("expected {value}: %v", err)
		}
		if a.Value == nil {
			return fmt.Errorf("missing value field")
		}
		for _, c := range o.Choices {
			if c == *a.Value {
				return nil
			}
		}
		return fmt.Errorf("value %q is not one of the choices", *a.Value)

	case models.QuestionTypeCheckbox:
		var o ChoiceOptions
		if err := json.Unmarshal([]byte(q.OptionsJSON), &o); err != nil {
			return fmt.Errorf("question has corrupt options: %v", err)
		}
		var a checkboxAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("expected {values}: %v", err)
		}
		if len(a.Values) == 0 && q.Required {
			return fmt.Errorf("at least one value must be selected")
		}
		allowed := make(map[string]bool, len(o.Choices))
		for _, c := range o.Choices {
			allowed[c] = true
		}
		seen := make(map[string]bool, len(a.Values))
		for _, v := range a.Values {
			if !allowed[v] {
				return fmt.Errorf("value %q is not one of the choices", v)
			}
			if seen[v] {
				return fmt.Errorf("value %q selected more than once", v)
			}
			seen[v] = true
		}
		return nil

	case models.QuestionTypeRanking:
		var o RankingOptions
		if err := json.Unmarshal([]byte(q.OptionsJSON), &o); err != nil {
			return fmt.Errorf("question has corrupt options: %v", err)
		}
		var a rankingAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("expected {ranking}: %v", err)
		}
		if len(a.Ranking) != len(o.Items) {
			return fmt.Errorf("ranking must order all %d items", len(o.Items))
		}
		remaining := make(map[string]int, len(o.Items))
		for _, it := range o.Items {
			remaining[it]++
		}
		for _, v := range a.Ranking {
			if remaining[v] == 0 {
				return fmt.Errorf("ranking contains %q which is not an item", v)
			}
			remaining[v]--
		}
		return nil

	case models.QuestionTypeMatrix:
		var o MatrixOptions
		if err := json.Unmarshal([]byte(q.OptionsJSON), &o); err != nil {
			return fmt.Errorf("question has corrupt options: %v", err)
		}
		var a matrixAnswer
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("expected {assignment}: %v", err)
		}
		if a.Assignment == nil {
			return fmt.Errorf("missing assignment field")
		}
		columns := make(map[string]bool, len(o.Columns))
		for _, c := range o.Columns {
			columns[c] = true
		}
		rows := make(map[string]bool, len(o.Rows))
		for _, r := range o.Rows {
			rows[r] = true
			col, ok := a.Assignment[r]
			if !ok {
				return fmt.Errorf("row %q has no column assigned", r)
			}
			if !columns[col] {
				return fmt.Errorf("row %q assigned to unknown column %q", r, col)
			}
		}
		for r := range a.Assignment {
			if !rows[r] {
				return fmt.Errorf("assignment contains unknown row %q", r)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown question type %q", q.QuestionType)
}
