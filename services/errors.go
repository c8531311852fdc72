package services

import "fmt"

// NotFoundError: a referenced survey/doctor/question does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// SurveyNotActiveError: submission attempted against a non-active survey.
type SurveyNotActiveError struct {
	SurveyID string
	Status   string
}

func (e *SurveyNotActiveError) Error() string {
	return fmt.Sprintf("survey %s is not active (status %q)", e.SurveyID, e.Status)
}

// ValidationError: a submitted answer set is rejected. QuestionID identifies
// the offending question when one answer is at fault, so the caller can fix
// and retry without guessing.
type ValidationError struct {
	QuestionID string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.QuestionID == "" {
		return e.Reason
	}
	return fmt.Sprintf("question %s: %s", e.QuestionID, e.Reason)
}

// SchemaError: survey/question authoring violates the schema rules
// (minimum option counts, unknown type, frozen question set).
type SchemaError struct {
	QuestionIndex int // position in the submitted question list, -1 if n/a
	Reason        string
}

func (e *SchemaError) Error() string {
	if e.QuestionIndex >= 0 {
		return fmt.Sprintf("question %d: %s", e.QuestionIndex, e.Reason)
	}
	return e.Reason
}

// AlreadyCompletedError: resubmission against an already-completed
// (doctor, survey) pair.
type AlreadyCompletedError struct {
	DoctorID string
	SurveyID string
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("doctor %s has already completed survey %s", e.DoctorID, e.SurveyID)
}
