package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booleans carry no column defaults on purpose: gorm omits zero-value
// fields when a default exists, which would turn a saved "false" into
// "true". An absent settings row defaults to sharing-enabled in code.
type UserSettings struct {
	ID                    string `gorm:"primaryKey"`
	UserID                string `gorm:"index"`
	VoiceDetectionEnabled bool
	VoiceSensitivity      float64
	WakeWord              string
	AccessKey             string // dispatch key for the hotword engine
	AutoLocationSharing   bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
