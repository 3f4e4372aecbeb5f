package lib

import (
	"context"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/models"
	"github.com/fiffu/guardwatch/senders"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type guardians struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	senders senders.Registry
}

// EnrollGuardian links a guardian contact to the owner and sends a
// best-effort invitation email; a failed invitation does not undo the link.
func (svc *guardians) EnrollGuardian(ctx context.Context, owner *models.UserProfile, guardian *models.Guardian) (*models.Guardian, error) {
	guardian.UserID = owner.ID
	tx := svc.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(guardian)
	if err := tx.Error; err != nil {
		return nil, err
	}

	svc.sendInvitation(ctx, owner, guardian)
	svc.log.Sugar().Infof("Enrolled guardian %s for user %s", guardian.ID, owner.ID)
	return guardian, nil
}

func (svc *guardians) sendInvitation(ctx context.Context, owner *models.UserProfile, guardian *models.Guardian) {
	if guardian.Email == "" {
		return
	}
	sender, ok := svc.senders["email"]
	if !ok {
		return
	}

	id, err := sender.SendEnrollment(ctx, guardian.Email, guardian.Name, owner.DisplayName())
	if err != nil {
		svc.log.Sugar().Infow("Failed to send guardian invitation", "err", err)
	} else {
		svc.log.Sugar().Infow("Sent guardian invitation to "+guardian.Email, "message_id", id)
	}
}

// ListGuardians returns every guardian link for the owner, in no
// particular order.
func (svc *guardians) ListGuardians(ctx context.Context, ownerID string) (models.Guardians, error) {
	var links models.Guardians
	tx := svc.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&links)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (svc *guardians) RemoveGuardian(ctx context.Context, ownerID, guardianID string) error {
	tx := svc.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Where("id = ?", guardianID).
		Delete(&models.Guardian{})
	if err := tx.Error; err != nil {
		return err
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
