package config

import (
	"fmt"
	"log"
	"os"

	"github.com/medipoint/survey-server/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB opens the PostgreSQL connection and migrates all tables.
func ConnectDB() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Kolkata",
		host, user, password, dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	DB = db
	log.Println("Connected to PostgreSQL & migrated successfully")
}

// Migrate runs AutoMigrate for every model. Shared with the test harness,
// which runs the same schema on SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Representative{},
		&models.Doctor{},
		&models.DoctorClientMapping{},
		&models.DoctorRepMapping{},
		&models.Survey{},
		&models.SurveyQuestion{},
		&models.DoctorSurveyResponse{},
		&models.QuestionResponse{},
		&models.Redemption{},
		&models.ExportJob{},
	)
}
