package lib

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fiffu/guardwatch/lib/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAlerts(t *testing.T, hist *history, ownerID string, count int, start time.Time) {
	t.Helper()

	for i := 0; i < count; i++ {
		alert := &models.Alert{
			UserID:        ownerID,
			AlertType:     "emergency",
			Severity:      "high",
			TriggerMethod: "voice",
			Message:       fmt.Sprintf("alert %d", i),
			CreatedAt:     start.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		}
		require.NoError(t, hist.Record(context.Background(), alert))
	}
}

func durableCount(t *testing.T, hist *history, ownerID string) int {
	t.Helper()

	var count int64
	require.NoError(t, hist.db.Model(&models.Alert{}).Where("user_id = ?", ownerID).Count(&count).Error)
	return int(count)
}

func TestRecordEnforcesDurableCap(t *testing.T) {
	hist := newTestHistory(t, newTestDB(t))
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeAlerts(t, hist, "owner", 15, start)

	assert.Equal(t, 10, durableCount(t, hist, "owner"))

	all, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, all, 15)

	// Newest first, no duplicates.
	seen := map[string]bool{}
	for i, alert := range all {
		assert.False(t, seen[alert.ID], "duplicate alert %s", alert.ID)
		seen[alert.ID] = true
		if i > 0 {
			assert.False(t, all[i-1].Created().Before(alert.Created()))
		}
	}
}

func TestRecordTruncatesOverflowCache(t *testing.T) {
	hist := newTestHistory(t, newTestDB(t))
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	writeAlerts(t, hist, "owner", 70, start)

	assert.Equal(t, 10, durableCount(t, hist, "owner"))

	local, err := hist.localAlerts()
	require.NoError(t, err)
	assert.Len(t, local, 50)

	all, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, all, 60)

	// The newest write survives at the head of the merged view.
	newest := start.Add(69 * time.Minute)
	assert.Equal(t, newest.Format(time.RFC3339), all[0].CreatedAt)
}

func TestListAllIsIdempotent(t *testing.T) {
	hist := newTestHistory(t, newTestDB(t))
	writeAlerts(t, hist, "owner", 25, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	first, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	second, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestListAllSortsUnparsableTimestampsAsOldest(t *testing.T) {
	hist := newTestHistory(t, newTestDB(t))

	garbled := &models.Alert{UserID: "owner", Message: "garbled", CreatedAt: "not-a-timestamp"}
	require.NoError(t, hist.db.Create(garbled).Error)
	writeAlerts(t, hist, "owner", 3, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	all, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "garbled", all[3].Message)
}

func TestClearLocal(t *testing.T) {
	hist := newTestHistory(t, newTestDB(t))
	writeAlerts(t, hist, "owner", 15, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	local, err := hist.localAlerts()
	require.NoError(t, err)
	require.NotEmpty(t, local)

	require.NoError(t, hist.ClearLocal())

	local, err = hist.localAlerts()
	require.NoError(t, err)
	assert.Empty(t, local)

	// Durable records are untouched.
	all, err := hist.ListAll(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
