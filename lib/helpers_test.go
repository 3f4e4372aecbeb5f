package lib

import (
	"context"
	"sync"
	"testing"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib/localstate"
	"github.com/fiffu/guardwatch/lib/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UserProfile{},
		&models.UserSettings{},
		&models.Guardian{},
		&models.Alert{},
	))
	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Retention.DurableCap = 10
	cfg.Retention.LocalCap = 50
	cfg.Locator.TimeoutSecs = 1
	cfg.Relay.TimeoutSecs = 1
	return cfg
}

func newTestState(t *testing.T) *localstate.Store {
	t.Helper()

	state, err := localstate.New(t.TempDir())
	require.NoError(t, err)
	return state
}

func newTestHistory(t *testing.T, db *gorm.DB) *history {
	t.Helper()
	return &history{newTestConfig(), zap.NewNop(), db, newTestState(t)}
}

type fakeAuth struct {
	identity *Identity
	err      error
}

func (f *fakeAuth) CurrentIdentity(ctx context.Context) (*Identity, error) {
	return f.identity, f.err
}

type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) FreshToken(ctx context.Context) (string, error) {
	return f.token, f.err
}

type fakeLocator struct {
	location *models.LatLng
	err      error
}

func (f *fakeLocator) Locate(ctx context.Context) (*models.LatLng, error) {
	return f.location, f.err
}

type sentAlert struct {
	target  string
	payload *models.AlertPayload
}

type fakeSender struct {
	mu           sync.Mutex
	alerts       []sentAlert
	failTargets  map[string]bool
	panicTargets map[string]bool
	enrollments  []string
	enrollErr    error
	alertErr     error
}

func (f *fakeSender) SendAlert(ctx context.Context, target string, payload *models.AlertPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panicTargets[target] {
		panic("relay client blew up")
	}
	if f.alertErr != nil {
		return "", f.alertErr
	}
	if f.failTargets[target] {
		return "", context.DeadlineExceeded
	}
	f.alerts = append(f.alerts, sentAlert{target, payload})
	return "message-id", nil
}

func (f *fakeSender) SendEnrollment(ctx context.Context, target, guardianName, ownerName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.enrollErr != nil {
		return "", f.enrollErr
	}
	f.enrollments = append(f.enrollments, target)
	return "message-id", nil
}
