package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;index" json:"user_id"`
	CompanyName string    `gorm:"size:255;not null" json:"company_name"`
	ContactInfo *string   `gorm:"type:text" json:"contact_info,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Surveys []Survey `gorm:"foreignKey:ClientID" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (Client) TableName() string {
	return "clients"
}
