package lib

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/models"
	"github.com/fiffu/guardwatch/senders"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type alertTrigger struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *gorm.DB
	senders  senders.Registry
	auth     Auth
	locator  Locator
	resolver *tokenResolver
	history  *history
}

// Outcome reports how many guardians were reached out of those targeted.
type Outcome struct {
	Notified int `json:"notified"`
	Total    int `json:"total"`
}

func (o *Outcome) String() string {
	return fmt.Sprintf("notified %d of %d guardians", o.Notified, o.Total)
}

// TriggerAlert runs the full emergency fan-out: resolve the signed-in user,
// take a best-effort location fix, and dispatch one alert to every guardian
// concurrently. An alert record is written only when at least one delivery
// succeeded.
func (svc *alertTrigger) TriggerAlert(ctx context.Context, triggerMethod string) (outcome *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			svc.log.Sugar().Errorw("Recovered from panic during alert fan-out", "panic", r)
			outcome, err = nil, ErrInternal
		}
	}()

	me, authErr := svc.auth.CurrentIdentity(ctx)
	if authErr != nil {
		return nil, ErrNotAuthenticated
	}

	settings := svc.loadSettings(ctx, me)
	var location *models.LatLng
	if settings == nil || settings.AutoLocationSharing {
		location = svc.currentLocation(ctx)
	}

	links, err := svc.listActiveGuardians(ctx, me.ID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, ErrNoGuardians
	}
	targets := dedupeByEmail(links)

	payload := svc.buildPayload(ctx, me, location)

	results := make([]bool, len(targets))
	var wg sync.WaitGroup
	for i, guardian := range targets {
		wg.Add(1)
		go func(i int, guardian models.Guardian) {
			defer wg.Done()
			// The recover at the operation boundary cannot reach this
			// goroutine; a panicking sender must degrade to a miss here.
			defer func() {
				if r := recover(); r != nil {
					svc.log.Sugar().Errorw("Recovered from panic while dispatching to guardian", "guardian", guardian.Email, "panic", r)
				}
			}()
			results[i] = svc.dispatchToGuardian(ctx, me, guardian, payload)
		}(i, guardian)
	}
	wg.Wait()

	notified := 0
	for _, delivered := range results {
		if delivered {
			notified++
		}
	}
	if notified == 0 {
		return nil, ErrAllDispatchesFailed
	}

	svc.recordAlert(ctx, me, triggerMethod, location, payload)
	return &Outcome{Notified: notified, Total: len(targets)}, nil
}

// loadSettings is best-effort: the fan-out proceeds on defaults when the
// user never saved settings or the read fails.
func (svc *alertTrigger) loadSettings(ctx context.Context, me *Identity) *models.UserSettings {
	settings := &models.UserSettings{}
	tx := svc.db.WithContext(ctx).Where("user_id = ?", me.ID).First(settings)
	if err := tx.Error; err != nil {
		return nil
	}
	return settings
}

// currentLocation waits for one bounded fix. Location is never fatal to the
// alert; any failure degrades to no coordinates.
func (svc *alertTrigger) currentLocation(ctx context.Context) *models.LatLng {
	timeout := time.Duration(svc.cfg.Locator.TimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	location, err := svc.locator.Locate(ctx)
	if err != nil {
		svc.log.Sugar().Warnw("Proceeding with alert but without location data", "err", err)
		return nil
	}
	return location
}

func (svc *alertTrigger) listActiveGuardians(ctx context.Context, ownerID string) (models.Guardians, error) {
	var links models.Guardians
	tx := svc.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Where("is_active = ?", true).
		Find(&links)
	if err := tx.Error; err != nil {
		return nil, err
	}
	return links, nil
}

// dedupeByEmail collapses duplicate guardian links so a contact enrolled
// twice is alerted once.
func dedupeByEmail(links models.Guardians) models.Guardians {
	seen := make(map[string]bool, len(links))
	deduped := make(models.Guardians, 0, len(links))
	for _, guardian := range links {
		if seen[guardian.Email] {
			continue
		}
		seen[guardian.Email] = true
		deduped = append(deduped, guardian)
	}
	return deduped
}

func (svc *alertTrigger) buildPayload(ctx context.Context, me *Identity, location *models.LatLng) *models.AlertPayload {
	name := me.Email
	phone := ""
	profile := &models.UserProfile{}
	tx := svc.db.WithContext(ctx).Where("id = ?", me.ID).First(profile)
	if tx.Error == nil {
		name = profile.DisplayName()
		phone = profile.PhoneNumber
	}

	return &models.AlertPayload{
		Title:       "guardwatch alert",
		Body:        fmt.Sprintf("%s needs help", name),
		FullName:    name,
		Email:       me.Email,
		PhoneNumber: phone,
		Location:    location,
	}
}

func (svc *alertTrigger) dispatchToGuardian(ctx context.Context, me *Identity, guardian models.Guardian, payload *models.AlertPayload) bool {
	token, err := svc.resolver.ResolveToken(ctx, me, guardian.Email)
	if err != nil {
		svc.log.Sugar().Errorw("Token lookup failed for guardian", "guardian", guardian.Email, "err", err)
		return false
	}
	if token == "" {
		svc.log.Sugar().Warnf("No delivery token found for guardian: %s", guardian.Email)
		return false
	}

	sender, ok := svc.senders["push"]
	if !ok {
		svc.log.Sugar().Error("No push sender registered")
		return false
	}

	if _, err := sender.SendAlert(ctx, token, payload); err != nil {
		svc.log.Sugar().Errorw("Failed to deliver alert", "guardian", guardian.Email, "err", err)
		return false
	}
	return true
}

// recordAlert writes the single history record for a successful fan-out.
// A failed write never alters the outcome already reported to the user.
func (svc *alertTrigger) recordAlert(ctx context.Context, me *Identity, triggerMethod string, location *models.LatLng, payload *models.AlertPayload) {
	phone := payload.PhoneNumber
	if phone == "" {
		phone = "Not available"
	}

	alert := &models.Alert{
		UserID:        me.ID,
		AlertType:     "emergency",
		Severity:      "high",
		TriggerMethod: triggerMethod,
		Message:       fmt.Sprintf("Emergency alert from %s - Mobile: %s", payload.FullName, phone),
	}
	if location != nil {
		alert.Latitude = &location.Latitude
		alert.Longitude = &location.Longitude
	}

	if err := svc.history.Record(ctx, alert); err != nil {
		svc.log.Sugar().Errorw("Failed to record alert history", "err", err)
	}
}
