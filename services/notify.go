package services

import "log"

// Notifier is the external notification dispatcher. Calls are best-effort:
// implementations must not block the caller on delivery, and delivery
// failures are logged, never propagated.
type Notifier interface {
	NotifyNewSurvey(doctorID, surveyID, surveyTitle string)
	NotifyPointsEarned(doctorID string, points int, surveyTitle string)
}

type logNotifier struct{}

func (logNotifier) NotifyNewSurvey(doctorID, surveyID, surveyTitle string) {
	log.Printf("notify: new survey %q (%s) available for doctor %s", surveyTitle, surveyID, doctorID)
}

func (logNotifier) NotifyPointsEarned(doctorID string, points int, surveyTitle string) {
	log.Printf("notify: doctor %s earned %d points for %q", doctorID, points, surveyTitle)
}

// DefaultNotifier is used until a real dispatcher (email service) is wired in.
var DefaultNotifier Notifier = logNotifier{}
