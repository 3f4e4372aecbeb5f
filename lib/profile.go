package lib

import (
	"context"
	"errors"

	"github.com/fiffu/guardwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profiles struct {
	log *zap.Logger
	db  *gorm.DB
}

func (svc *profiles) UpsertProfile(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	tx := svc.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "phone_number", "updated_at"}),
		}).
		Create(profile)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (svc *profiles) ProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	tx := svc.db.WithContext(ctx).Where("email = ?", email).First(profile)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (svc *profiles) ProfileByID(ctx context.Context, id string) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	tx := svc.db.WithContext(ctx).Where("id = ?", id).First(profile)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// GetSettings returns nil without error when the user never saved settings.
func (svc *profiles) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	tx := svc.db.WithContext(ctx).Where("user_id = ?", userID).First(settings)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return settings, nil
}

func (svc *profiles) SaveSettings(ctx context.Context, userID string, settings *models.UserSettings) error {
	settings.UserID = userID

	existing, err := svc.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		settings.ID = existing.ID
		tx := svc.db.WithContext(ctx).Model(existing).Updates(map[string]any{
			"voice_detection_enabled": settings.VoiceDetectionEnabled,
			"voice_sensitivity":       settings.VoiceSensitivity,
			"wake_word":               settings.WakeWord,
			"access_key":              settings.AccessKey,
			"auto_location_sharing":   settings.AutoLocationSharing,
		})
		return tx.Error
	}

	tx := svc.db.WithContext(ctx).Create(settings)
	return tx.Error
}
