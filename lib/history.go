package lib

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/localstate"
	"github.com/fiffu/guardwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const overflowNamespace = "alert_overflow"

type history struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	state *localstate.Store
}

// Record inserts the alert into the durable store, then enforces the
// per-user retention cap. Retention failures after a successful insert are
// logged and swallowed; they never fail the write.
func (svc *history) Record(ctx context.Context, alert *models.Alert) error {
	tx := svc.db.WithContext(ctx).Create(alert)
	if err := tx.Error; err != nil {
		return err
	}

	svc.enforceRetention(ctx, alert.UserID)
	return nil
}

// enforceRetention keeps the newest DurableCap alerts for the owner in the
// durable store, relocating the remainder into the local overflow cache.
// Rows are deleted from the durable store only after the overflow blob is
// safely written, so a crash mid-way leaves duplicates rather than losses;
// ListAll de-duplicates by id.
func (svc *history) enforceRetention(ctx context.Context, ownerID string) {
	var stored models.Alerts
	tx := svc.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&stored)
	if err := tx.Error; err != nil {
		svc.log.Sugar().Errorw("Retention: failed to list durable alerts", "err", err)
		return
	}
	if len(stored) <= svc.cfg.Retention.DurableCap {
		return
	}

	sortNewestFirst(stored)
	moved := stored[svc.cfg.Retention.DurableCap:]

	local, err := svc.localAlerts()
	if err != nil {
		svc.log.Sugar().Warnw("Retention: discarding unreadable overflow cache", "err", err)
		local = nil
	}

	merged := append(local, moved...)
	sortNewestFirst(merged)
	if len(merged) > svc.cfg.Retention.LocalCap {
		merged = merged[:svc.cfg.Retention.LocalCap]
	}

	if err := svc.saveLocalAlerts(merged); err != nil {
		svc.log.Sugar().Errorw("Retention: failed to write overflow cache", "err", err)
		return
	}

	ids := make([]string, len(moved))
	for i, alert := range moved {
		ids[i] = alert.ID
	}
	tx = svc.db.WithContext(ctx).Delete(&models.Alert{}, "id IN ?", ids)
	if err := tx.Error; err != nil {
		svc.log.Sugar().Errorw("Retention: failed to delete relocated alerts", "err", err)
		return
	}
	svc.log.Sugar().Infof("Relocated %d alerts to the overflow cache", len(moved))
}

// ListAll merges the owner's durable alerts with the overflow cache, newest
// first. The overflow scope is per-installation, so entries for other owners
// never accumulate there in practice.
func (svc *history) ListAll(ctx context.Context, ownerID string) (models.Alerts, error) {
	var stored models.Alerts
	tx := svc.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&stored)
	if err := tx.Error; err != nil {
		return nil, err
	}

	local, err := svc.localAlerts()
	if err != nil {
		svc.log.Sugar().Warnw("Ignoring unreadable overflow cache", "err", err)
		local = nil
	}

	seen := make(map[string]bool, len(stored))
	merged := make(models.Alerts, 0, len(stored)+len(local))
	for _, alert := range stored {
		seen[alert.ID] = true
		merged = append(merged, alert)
	}
	for _, alert := range local {
		if !seen[alert.ID] {
			merged = append(merged, alert)
		}
	}

	sortNewestFirst(merged)
	return merged, nil
}

// ClearLocal drops the overflow cache for this installation.
func (svc *history) ClearLocal() error {
	return svc.state.Delete(overflowNamespace)
}

func (svc *history) localAlerts() (models.Alerts, error) {
	blob, err := svc.state.Get(overflowNamespace)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}

	var alerts models.Alerts
	if err := json.Unmarshal(blob, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (svc *history) saveLocalAlerts(alerts models.Alerts) error {
	blob, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	return svc.state.Put(overflowNamespace, blob)
}

func sortNewestFirst(alerts models.Alerts) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Created().After(alerts[j].Created())
	})
}
