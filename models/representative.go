package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Representative struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	ClientID  string    `gorm:"size:36;not null;index" json:"client_id"`
	Region    *string   `gorm:"size:100" json:"region,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Client Client `gorm:"foreignKey:ClientID" json:"-"`
}

func (r *Representative) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (Representative) TableName() string {
	return "representatives"
}
