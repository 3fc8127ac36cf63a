package lifecycle

import (
	"eigenkey/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deviceIDs(events []*models.UsageEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.DeviceID)
	}
	return out
}

func TestUsageHistory_Events(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	a, usage := newTestArchiver(t, now)
	appendAt(t, usage, "archived", now.Add(-10*24*time.Hour))
	require.NoError(t, usage.Append(&models.UsageEvent{
		Timestamp: now.Format(time.RFC3339Nano),
		KeyMask:   MaskKey("EF-26Q1-B3H8LP5N"),
		DeviceID:  "someone-else",
	}))
	_, _, err := a.Roll()
	require.NoError(t, err)
	appendAt(t, usage, "live", now)

	history := NewUsageHistory(usage, a)

	live, err := history.Events(" ef-26q1-a9f4kz2m", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, deviceIDs(live))

	all, err := history.Events(testKey, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"archived", "live"}, deviceIDs(all))
}

func TestUsageHistory_NoEvents(t *testing.T) {
	a, usage := newTestArchiver(t, time.Now())

	events, err := NewUsageHistory(usage, a).Events(testKey, true)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration, status models.UsageStatus, device string) *models.UsageEvent {
		return &models.UsageEvent{Timestamp: base.Add(d).Format(time.RFC3339Nano), Status: status, DeviceID: device}
	}
	events := []*models.UsageEvent{
		at(0, models.StatusAccess, "a"),
		at(time.Hour, models.StatusAccess, "a"),
		at(24*time.Hour, models.StatusWarning, "b"),
		at(24*time.Hour, models.StatusAccess, "b"),
		at(72*time.Hour, models.StatusBlocked, ""),
		{Timestamp: "garbage", Status: models.StatusAccess, DeviceID: "c"},
	}

	s := Summarize(events, time.UTC)

	assert.Equal(t, 6, s.Events)
	assert.Equal(t, 4, s.ByStatus[models.StatusAccess])
	assert.Equal(t, 1, s.ByStatus[models.StatusWarning])
	assert.Equal(t, 1, s.ByStatus[models.StatusBlocked])
	assert.Equal(t, 3, s.Devices)
	assert.Equal(t, 3, s.ActiveDays)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, time.UTC)
	assert.Zero(t, s.Events)
	assert.Zero(t, s.ActiveDays)
}
