package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Alert struct {
	ID            string   `gorm:"primaryKey" json:"id"`
	UserID        string   `gorm:"index" json:"user_id"`
	AlertType     string   `json:"alert_type"`
	Severity      string   `json:"severity"`
	TriggerMethod string   `json:"trigger_method"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Message       string   `json:"message"`
	IsResolved    bool     `json:"is_resolved"`
	ResolvedAt    string   `json:"resolved_at"`
	// Stored as RFC3339 text; the history merge must tolerate values it
	// cannot parse, sorting them as oldest.
	CreatedAt string `json:"created_at"`
}

type Alerts []Alert

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return nil
}

// Created parses the record's creation time. Unparsable or missing
// timestamps collapse to the epoch so they sort as oldest.
func (a *Alert) Created() time.Time {
	t, err := time.Parse(time.RFC3339, a.CreatedAt)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}
