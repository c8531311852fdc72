package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipoint/survey-server/models"
)

func TestValidateQuestionSchema(t *testing.T) {
	tests := []struct {
		name    string
		qType   string
		options json.RawMessage
		wantErr bool
	}{
		{"text needs no options", models.QuestionTypeText, nil, false},
		{"likert scale 5", models.QuestionTypeLikert, likertOpts(5), false},
		{"likert scale 3 lower bound", models.QuestionTypeLikert, likertOpts(3), false},
		{"likert scale 10 upper bound", models.QuestionTypeLikert, likertOpts(10), false},
		{"likert scale 2 too small", models.QuestionTypeLikert, likertOpts(2), true},
		{"likert scale 11 too large", models.QuestionTypeLikert, likertOpts(11), true},
		{"multipleChoice two choices", models.QuestionTypeMultipleChoice, choiceOpts("A", "B"), false},
		{"multipleChoice one choice", models.QuestionTypeMultipleChoice, choiceOpts("A"), true},
		{"checkbox one choice", models.QuestionTypeCheckbox, choiceOpts("A"), true},
		{"checkbox three choices", models.QuestionTypeCheckbox, choiceOpts("A", "B", "C"), false},
		{"ranking one item", models.QuestionTypeRanking, rankingOpts("X"), true},
		{"ranking two items", models.QuestionTypeRanking, rankingOpts("X", "Y"), false},
		{"matrix 2x2", models.QuestionTypeMatrix, matrixOpts([]string{"R1", "R2"}, []string{"C1", "C2"}), false},
		{"matrix one row", models.QuestionTypeMatrix, matrixOpts([]string{"R1"}, []string{"C1", "C2"}), true},
		{"matrix one column", models.QuestionTypeMatrix, matrixOpts([]string{"R1", "R2"}, []string{"C1"}), true},
		{"unknown type", "dropdown", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestionSchema(tt.qType, tt.options)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func question(qType string, options json.RawMessage, required bool) *models.SurveyQuestion {
	return &models.SurveyQuestion{
		QuestionType: qType,
		OptionsJSON:  string(options),
		Required:     required,
	}
}

func TestValidateAnswerText(t *testing.T) {
	q := question(models.QuestionTypeText, nil, true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"text":"some feedback"}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"text":"   "}`)), "required text must not be blank")
	assert.Error(t, ValidateAnswer(q, raw(`{}`)), "text field must be present")

	optional := question(models.QuestionTypeText, nil, false)
	assert.NoError(t, ValidateAnswer(optional, raw(`{"text":""}`)))
}

func TestValidateAnswerLikert(t *testing.T) {
	q := question(models.QuestionTypeLikert, likertOpts(5), true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"value":1}`)))
	assert.NoError(t, ValidateAnswer(q, raw(`{"value":5}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"value":0}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"value":11}`)), "value above scale")
	assert.Error(t, ValidateAnswer(q, raw(`{"value":3.5}`)), "fractional value")
	assert.Error(t, ValidateAnswer(q, raw(`{"value":"4"}`)), "string value")
	assert.Error(t, ValidateAnswer(q, raw(`{}`)), "missing value")
}

func TestValidateAnswerMultipleChoice(t *testing.T) {
	q := question(models.QuestionTypeMultipleChoice, choiceOpts("Red", "Green", "Blue"), true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"value":"Green"}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"value":"Yellow"}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"value":"green"}`)), "exact string match required")
	assert.Error(t, ValidateAnswer(q, raw(`{}`)))
}

func TestValidateAnswerCheckbox(t *testing.T) {
	q := question(models.QuestionTypeCheckbox, choiceOpts("A", "B", "C"), true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"values":["A","C"]}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"values":["A","D"]}`)), "D is not a choice")
	assert.Error(t, ValidateAnswer(q, raw(`{"values":["A","A"]}`)), "duplicate selection")
	assert.Error(t, ValidateAnswer(q, raw(`{"values":[]}`)), "required checkbox needs a selection")

	optional := question(models.QuestionTypeCheckbox, choiceOpts("A", "B"), false)
	assert.NoError(t, ValidateAnswer(optional, raw(`{"values":[]}`)))
}

func TestValidateAnswerRanking(t *testing.T) {
	q := question(models.QuestionTypeRanking, rankingOpts("X", "Y", "Z"), true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"ranking":["Z","X","Y"]}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"ranking":["X","Y"]}`)), "must rank every item")
	assert.Error(t, ValidateAnswer(q, raw(`{"ranking":["X","Y","W"]}`)), "unknown item")
	assert.Error(t, ValidateAnswer(q, raw(`{"ranking":["X","X","Y"]}`)), "not a permutation")
}

func TestValidateAnswerMatrix(t *testing.T) {
	q := question(models.QuestionTypeMatrix, matrixOpts([]string{"R1", "R2"}, []string{"C1", "C2"}), true)
	assert.NoError(t, ValidateAnswer(q, raw(`{"assignment":{"R1":"C1","R2":"C2"}}`)))
	assert.Error(t, ValidateAnswer(q, raw(`{"assignment":{"R1":"C1"}}`)), "R2 unassigned")
	assert.Error(t, ValidateAnswer(q, raw(`{"assignment":{"R1":"C1","R2":"C9"}}`)), "unknown column")
	assert.Error(t, ValidateAnswer(q, raw(`{"assignment":{"R1":"C1","R2":"C2","R3":"C1"}}`)), "unknown row")
	assert.Error(t, ValidateAnswer(q, raw(`{}`)), "missing assignment")
}

func TestValidateAnswerEmptyPayload(t *testing.T) {
	q := question(models.QuestionTypeText, nil, false)
	err := ValidateAnswer(q, nil)
	require.Error(t, err)
}
