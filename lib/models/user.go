package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserProfile struct {
	ID                 string `gorm:"primaryKey"`
	Email              string `gorm:"unique"`
	FullName           string
	PhoneNumber        string
	DeliveryToken      string
	LastKnownLatitude  *float64
	LastKnownLongitude *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// DisplayName falls back to the contact handle when no name is set.
func (p *UserProfile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
