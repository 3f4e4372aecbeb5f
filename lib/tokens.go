package lib

import (
	"context"
	"errors"

	"github.com/fiffu/guardwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type tokenResolver struct {
	log    *zap.Logger
	db     *gorm.DB
	source TokenSource
}

// ResolveToken finds the delivery token currently addressing a guardian.
//
// When the guardian is the signed-in user, the local messaging subsystem is
// the only authority for the freshest token: ask it directly and push the
// result back to the guardian's profile row. Every other guardian relies on
// whatever their own device last persisted. An empty result means the
// guardian is unreachable for this alert; that is not an error.
func (svc *tokenResolver) ResolveToken(ctx context.Context, me *Identity, guardianEmail string) (string, error) {
	if me != nil && me.Email == guardianEmail {
		if token, err := svc.source.FreshToken(ctx); err != nil {
			svc.log.Sugar().Warnw("Failed to obtain fresh delivery token", "err", err)
		} else if token != "" {
			svc.persistToken(ctx, me.ID, token)
			return token, nil
		}
	}

	profile := models.UserProfile{}
	tx := svc.db.WithContext(ctx).Where("email = ?", guardianEmail).First(&profile)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	return profile.DeliveryToken, nil
}

// RegisterToken persists a rotated delivery token for a profile.
func (svc *tokenResolver) RegisterToken(ctx context.Context, userID, token string) error {
	tx := svc.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Update("delivery_token", token)
	if err := tx.Error; err != nil {
		return err
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (svc *tokenResolver) persistToken(ctx context.Context, userID, token string) {
	if err := svc.RegisterToken(ctx, userID, token); err != nil {
		// Refresh still succeeded; the stale row self-heals on the next rotation.
		svc.log.Sugar().Warnw("Failed to persist refreshed token", "user_id", userID, "err", err)
	}
}
