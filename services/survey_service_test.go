package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipoint/survey-server/models"
)

func surveyIDs(surveys []models.Survey) []string {
	ids := make([]string, len(surveys))
	for i, s := range surveys {
		ids[i] = s.ID
	}
	return ids
}

func TestCreateSurveyPersistsQuestionsInOrder(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)

	svc := NewSurveyService(db, &recordingNotifier{})
	survey, err := svc.CreateSurvey(client.ID, CreateSurveyInput{
		Title:         "Adherence check",
		Description:   strPtr("Quarterly adherence review"),
		Points:        75,
		EstimatedTime: 5,
		Questions: []QuestionInput{
			{QuestionText: "Rate adherence", QuestionType: models.QuestionTypeLikert, Options: likertOpts(5)},
			{QuestionText: "Notes", QuestionType: models.QuestionTypeText, Required: boolPtr(false)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SurveyStatusDraft, survey.Status)
	require.Len(t, survey.Questions, 2)
	assert.Equal(t, 0, survey.Questions[0].OrderIndex)
	assert.Equal(t, 1, survey.Questions[1].OrderIndex)
	assert.True(t, survey.Questions[0].Required)
	assert.False(t, survey.Questions[1].Required)
}

func TestCreateSurveyRejectsBadQuestion(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)

	svc := NewSurveyService(db, &recordingNotifier{})
	_, err := svc.CreateSurvey(client.ID, CreateSurveyInput{
		Title:         "Broken",
		Points:        10,
		EstimatedTime: 5,
		Questions: []QuestionInput{
			{QuestionText: "Fine", QuestionType: models.QuestionTypeText},
			{QuestionText: "Bad scale", QuestionType: models.QuestionTypeLikert, Options: likertOpts(2)},
		},
	})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.QuestionIndex)

	// Validation happens before any write.
	var count int64
	db.Model(&models.Survey{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateSurveyActiveNotifiesMappedDoctors(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	mapped := seedDoctor(t, db, "Cardiology")
	seedDoctor(t, db, "Oncology") // not mapped, must not be notified
	mapDoctorClient(t, db, mapped.ID, client.ID)

	notifier := &recordingNotifier{}
	svc := NewSurveyService(db, notifier)
	_, err := svc.CreateSurvey(client.ID, CreateSurveyInput{
		Title:         "Launch",
		Points:        10,
		EstimatedTime: 5,
		Status:        models.SurveyStatusActive,
		Questions: []QuestionInput{
			{QuestionText: "Q", QuestionType: models.QuestionTypeText},
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return notifier.newSurveyCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListEligibleSurveys(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	otherClient := seedClient(t, db)
	doctor := seedDoctor(t, db, "Cardiology")
	mapDoctorClient(t, db, doctor.ID, client.ID)

	question := QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText}

	open := createSurvey(t, db, client.ID, models.SurveyStatusActive, 10, question)
	draft := createSurvey(t, db, client.ID, models.SurveyStatusDraft, 10, question)
	unmapped := createSurvey(t, db, otherClient.ID, models.SurveyStatusActive, 10, question)

	svcS := NewSurveyService(db, &recordingNotifier{})
	matching, err := svcS.CreateSurvey(client.ID, CreateSurveyInput{
		Title: "Cardio only", Points: 10, EstimatedTime: 5,
		Status:          models.SurveyStatusActive,
		TargetSpecialty: strPtr("Cardiology"),
		Questions:       []QuestionInput{question},
	})
	require.NoError(t, err)
	mismatched, err := svcS.CreateSurvey(client.ID, CreateSurveyInput{
		Title: "Onco only", Points: 10, EstimatedTime: 5,
		Status:          models.SurveyStatusActive,
		TargetSpecialty: strPtr("Oncology"),
		Questions:       []QuestionInput{question},
	})
	require.NoError(t, err)

	eligible, err := svcS.ListEligibleSurveys(doctor.ID)
	require.NoError(t, err)
	ids := surveyIDs(eligible)
	assert.Contains(t, ids, open.ID)
	assert.Contains(t, ids, matching.ID)
	assert.NotContains(t, ids, draft.ID)
	assert.NotContains(t, ids, unmapped.ID)
	assert.NotContains(t, ids, mismatched.ID)
}

func TestListEligibleSurveysExcludesCompletedKeepsInProgress(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	doctor := seedDoctor(t, db, "Cardiology")
	mapDoctorClient(t, db, doctor.ID, client.ID)

	question := QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText}
	done := createSurvey(t, db, client.ID, models.SurveyStatusActive, 10, question)
	started := createSurvey(t, db, client.ID, models.SurveyStatusActive, 10, question)

	svcR := NewResponseService(db, &recordingNotifier{})
	_, err := svcR.SubmitResponse(doctor.ID, done.ID, []AnswerInput{
		{QuestionID: done.Questions[0].ID, Answer: raw(`{"text":"done"}`)},
	})
	require.NoError(t, err)
	_, err = svcR.StartResponse(doctor.ID, started.ID)
	require.NoError(t, err)

	svcS := NewSurveyService(db, &recordingNotifier{})
	eligible, err := svcS.ListEligibleSurveys(doctor.ID)
	require.NoError(t, err)
	ids := surveyIDs(eligible)
	assert.NotContains(t, ids, done.ID)
	assert.Contains(t, ids, started.ID)
}

func TestListEligibleSurveysUnknownDoctor(t *testing.T) {
	db := newTestDB(t)
	svc := NewSurveyService(db, &recordingNotifier{})
	_, err := svc.ListEligibleSurveys("no-such-doctor")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestGetCompletedSurveys(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	doctor := seedDoctor(t, db, "Cardiology")
	mapDoctorClient(t, db, doctor.ID, client.ID)

	question := QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText}
	survey := createSurvey(t, db, client.ID, models.SurveyStatusActive, 40, question)

	svcR := NewResponseService(db, &recordingNotifier{})
	_, err := svcR.SubmitResponse(doctor.ID, survey.ID, []AnswerInput{
		{QuestionID: survey.Questions[0].ID, Answer: raw(`{"text":"ok"}`)},
	})
	require.NoError(t, err)

	svcS := NewSurveyService(db, &recordingNotifier{})
	completed, err := svcS.GetCompletedSurveys(doctor.ID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, survey.ID, completed[0].SurveyID)
	assert.Equal(t, 40, completed[0].PointsEarned)
	assert.Equal(t, survey.Title, completed[0].Survey.Title)
}

func TestChangeStatusReactivationRenotifies(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	doctor := seedDoctor(t, db, "Cardiology")
	mapDoctorClient(t, db, doctor.ID, client.ID)

	survey := createSurvey(t, db, client.ID, models.SurveyStatusDraft, 10,
		QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText})

	notifier := &recordingNotifier{}
	svc := NewSurveyService(db, notifier)

	_, err := svc.ChangeStatus(survey.ID, models.SurveyStatusActive)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return notifier.newSurveyCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Setting active while already active is not a transition event.
	_, err = svc.ChangeStatus(survey.ID, models.SurveyStatusActive)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(survey.ID, models.SurveyStatusInactive)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(survey.ID, models.SurveyStatusActive)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return notifier.newSurveyCount() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChangeStatusRejectsUnknown(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	survey := createSurvey(t, db, client.ID, models.SurveyStatusDraft, 10,
		QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText})

	svc := NewSurveyService(db, &recordingNotifier{})
	_, err := svc.ChangeStatus(survey.ID, "archived")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestQuestionAuthoring(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	survey := createSurvey(t, db, client.ID, models.SurveyStatusDraft, 10,
		QuestionInput{QuestionText: "First", QuestionType: models.QuestionTypeText})

	svc := NewSurveyService(db, &recordingNotifier{})

	added, err := svc.AddQuestion(survey.ID, QuestionInput{
		QuestionText: "Second",
		QuestionType: models.QuestionTypeMultipleChoice,
		Options:      choiceOpts("Yes", "No"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added.OrderIndex)

	require.NoError(t, svc.UpdateQuestion(survey.ID, added.ID, UpdateQuestionInput{
		QuestionText: strPtr("Second, revised"),
		Required:     boolPtr(false),
	}))

	// Options are re-validated against the question's type.
	badOpts := likertOpts(5)
	err = svc.UpdateQuestion(survey.ID, added.ID, UpdateQuestionInput{Options: &badOpts})
	var se *SchemaError
	require.ErrorAs(t, err, &se)

	// Reorder must name every question exactly once.
	err = svc.ReorderQuestions(survey.ID, []string{added.ID})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	require.NoError(t, svc.ReorderQuestions(survey.ID, []string{added.ID, survey.Questions[0].ID}))
	reordered, err := svc.GetSurvey(survey.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, reordered.Questions[0].ID)

	// Deleting closes the order gap.
	require.NoError(t, svc.DeleteQuestion(survey.ID, added.ID))
	remaining, err := svc.GetSurvey(survey.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Questions, 1)
	assert.Equal(t, 0, remaining.Questions[0].OrderIndex)
}

func TestQuestionSetFreezesOnFirstResponse(t *testing.T) {
	db := newTestDB(t)
	client := seedClient(t, db)
	doctor := seedDoctor(t, db, "Cardiology")
	mapDoctorClient(t, db, doctor.ID, client.ID)

	survey := createSurvey(t, db, client.ID, models.SurveyStatusActive, 10,
		QuestionInput{QuestionText: "Q", QuestionType: models.QuestionTypeText})

	// An in-progress response is enough to freeze the schema.
	svcR := NewResponseService(db, &recordingNotifier{})
	_, err := svcR.StartResponse(doctor.ID, survey.ID)
	require.NoError(t, err)

	svcS := NewSurveyService(db, &recordingNotifier{})
	var se *SchemaError

	_, err = svcS.AddQuestion(survey.ID, QuestionInput{QuestionText: "Late", QuestionType: models.QuestionTypeText})
	require.ErrorAs(t, err, &se)

	err = svcS.UpdateQuestion(survey.ID, survey.Questions[0].ID, UpdateQuestionInput{QuestionText: strPtr("Edit")})
	require.ErrorAs(t, err, &se)

	err = svcS.DeleteQuestion(survey.ID, survey.Questions[0].ID)
	require.ErrorAs(t, err, &se)

	err = svcS.ReorderQuestions(survey.ID, []string{survey.Questions[0].ID})
	require.ErrorAs(t, err, &se)
}
