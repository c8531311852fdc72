package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medipoint/survey-server/config"
	"github.com/medipoint/survey-server/models"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

type recordingNotifier struct {
	mu           sync.Mutex
	newSurvey    []string // doctor ids
	pointsEarned []string // doctor ids
}

func (n *recordingNotifier) NotifyNewSurvey(doctorID, surveyID, surveyTitle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newSurvey = append(n.newSurvey, doctorID)
}

func (n *recordingNotifier) NotifyPointsEarned(doctorID string, points int, surveyTitle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pointsEarned = append(n.pointsEarned, doctorID)
}

func (n *recordingNotifier) newSurveyCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.newSurvey)
}

func seedDoctor(t *testing.T, db *gorm.DB, specialty string) models.Doctor {
	t.Helper()
	user := models.User{
		Name:     "Dr. Test",
		Email:    fmt.Sprintf("doctor-%d@example.com", atomic.AddInt64(&testDBSeq, 1)),
		Password: "x",
		Role:     models.RoleDoctor,
	}
	require.NoError(t, db.Create(&user).Error)
	doctor := models.Doctor{UserID: user.ID, Specialty: specialty}
	require.NoError(t, db.Create(&doctor).Error)
	return doctor
}

func seedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	user := models.User{
		Name:     "Pharma Co",
		Email:    fmt.Sprintf("client-%d@example.com", atomic.AddInt64(&testDBSeq, 1)),
		Password: "x",
		Role:     models.RoleClient,
	}
	require.NoError(t, db.Create(&user).Error)
	client := models.Client{UserID: user.ID, CompanyName: "Pharma Co"}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func mapDoctorClient(t *testing.T, db *gorm.DB, doctorID, clientID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.DoctorClientMapping{
		DoctorID: doctorID,
		ClientID: clientID,
	}).Error)
}

func likertOpts(scale int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"scale":%d,"lowLabel":"Strongly disagree","highLabel":"Strongly agree"}`, scale))
}

func choiceOpts(choices ...string) json.RawMessage {
	b, _ := json.Marshal(map[string][]string{"choices": choices})
	return b
}

func rankingOpts(items ...string) json.RawMessage {
	b, _ := json.Marshal(map[string][]string{"items": items})
	return b
}

func matrixOpts(rows, columns []string) json.RawMessage {
	b, _ := json.Marshal(map[string][]string{"rows": rows, "columns": columns})
	return b
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func raw(s string) json.RawMessage { return json.RawMessage(s) }
