package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorClientMapping answers "is doctor X assigned to client Y" for the
// survey eligibility filter.
type DoctorClientMapping struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DoctorID  string    `gorm:"size:36;not null;uniqueIndex:idx_doctor_client" json:"doctor_id"`
	ClientID  string    `gorm:"size:36;not null;uniqueIndex:idx_doctor_client" json:"client_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Doctor Doctor `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Client Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *DoctorClientMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (DoctorClientMapping) TableName() string {
	return "doctor_client_mappings"
}

type DoctorRepMapping struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DoctorID  string    `gorm:"size:36;not null;uniqueIndex:idx_doctor_rep" json:"doctor_id"`
	RepID     string    `gorm:"size:36;not null;uniqueIndex:idx_doctor_rep" json:"rep_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Doctor Doctor         `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	Rep    Representative `gorm:"foreignKey:RepID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *DoctorRepMapping) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (DoctorRepMapping) TableName() string {
	return "doctor_rep_mappings"
}
