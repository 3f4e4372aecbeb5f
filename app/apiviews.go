package app

import (
	"github.com/fiffu/guardwatch/lib/models"
)

type AlertView struct {
	ID            string   `json:"id"`
	AlertType     string   `json:"alert_type"`
	Severity      string   `json:"severity"`
	TriggerMethod string   `json:"trigger_method"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Message       string   `json:"message"`
	IsResolved    bool     `json:"is_resolved"`
	CreatedAt     string   `json:"created_at"`
}

type GuardianView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Relationship string `json:"relationship"`
	IsPrimary    bool   `json:"is_primary"`
	IsActive     bool   `json:"is_active"`
}

type ProfileView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

type SettingsView struct {
	VoiceDetectionEnabled bool    `json:"voice_detection_enabled"`
	VoiceSensitivity      float64 `json:"voice_sensitivity"`
	WakeWord              string  `json:"wake_word"`
	AutoLocationSharing   bool    `json:"auto_location_sharing"`
}

type SettingsRequest struct {
	VoiceDetectionEnabled bool    `json:"voice_detection_enabled"`
	VoiceSensitivity      float64 `json:"voice_sensitivity"`
	WakeWord              string  `json:"wake_word"`
	AccessKey             string  `json:"access_key"`
	AutoLocationSharing   bool    `json:"auto_location_sharing"`
}

func (view AlertView) From(entity models.Alert) AlertView {
	return AlertView{
		ID:            entity.ID,
		AlertType:     entity.AlertType,
		Severity:      entity.Severity,
		TriggerMethod: entity.TriggerMethod,
		Latitude:      entity.Latitude,
		Longitude:     entity.Longitude,
		Message:       entity.Message,
		IsResolved:    entity.IsResolved,
		CreatedAt:     entity.CreatedAt,
	}
}

func (view GuardianView) From(entity models.Guardian) GuardianView {
	return GuardianView{
		ID:           entity.ID,
		Name:         entity.Name,
		Phone:        entity.Phone,
		Email:        entity.Email,
		Relationship: entity.Relationship,
		IsPrimary:    entity.IsPrimary,
		IsActive:     entity.IsActive,
	}
}

func (view ProfileView) From(entity models.UserProfile) ProfileView {
	return ProfileView{
		ID:          entity.ID,
		Email:       entity.Email,
		FullName:    entity.FullName,
		PhoneNumber: entity.PhoneNumber,
	}
}

func (view SettingsView) From(entity models.UserSettings) SettingsView {
	return SettingsView{
		VoiceDetectionEnabled: entity.VoiceDetectionEnabled,
		VoiceSensitivity:      entity.VoiceSensitivity,
		WakeWord:              entity.WakeWord,
		AutoLocationSharing:   entity.AutoLocationSharing,
	}
}

type Fromable[Entity any, Repr any] interface {
	From(Entity) Repr
}

func FromMany[T any, U Fromable[T, U]](elems []T) []U {
	out := make([]U, len(elems))
	for i, t := range elems {
		var u U
		out[i] = u.From(t)
	}
	return out
}
