package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedDays(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, ElapsedDays("2026-03-15", now))
	assert.Equal(t, 1, ElapsedDays("2026-03-14", now))
	assert.Equal(t, 29, ElapsedDays("2026-02-14", now))
	assert.Equal(t, 30, ElapsedDays("2026-02-13", now))
	assert.Equal(t, -1, ElapsedDays("2026-03-16", now))
	assert.Equal(t, 0, ElapsedDays("not a date", now))
	assert.Equal(t, 0, ElapsedDays("", now))
}

func TestElapsedDays_IgnoresDSTShift(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// clocks move forward on 2026-03-29
	now := time.Date(2026, 3, 30, 0, 0, 0, 0, loc)

	assert.Equal(t, 2, ElapsedDays("2026-03-28", now))
	assert.Equal(t, 1, ElapsedDays("2026-03-28", now.Add(-time.Nanosecond)))
}

func TestExpiryDate(t *testing.T) {
	assert.Equal(t, "2026-04-14", ExpiryDate("2026-03-15", 30))
	assert.Equal(t, "2027-01-30", ExpiryDate("2026-12-31", 30))
	assert.Equal(t, "", ExpiryDate("garbage", 30))
}

func TestKeyRecord_FirstSeenOr(t *testing.T) {
	assert.Equal(t, "2026-01-01", (&KeyRecord{FirstSeen: "2026-01-01"}).FirstSeenOr("x"))
	assert.Equal(t, "x", (&KeyRecord{}).FirstSeenOr("x"))

	var nilRecord *KeyRecord
	assert.Equal(t, "x", nilRecord.FirstSeenOr("x"))
}

func TestNewKeyRecord(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 59, 59, 500, time.UTC)
	rec := NewKeyRecord("EF-26Q1-A9F4KZ2M", now)

	assert.Equal(t, "2026-03-15", rec.FirstSeen)
	ts, err := ParseTimestamp(rec.ActivatedAt, time.UTC)
	require.NoError(t, err)
	assert.True(t, ts.Equal(now))
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)

	ts, err := ParseTimestamp("2026-03-15T10:00:00.123456+02:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2026, 3, 15, 8, 0, 0, 123456000, time.UTC)))

	ts, err = ParseTimestamp("2026-03-15T10:00:00.123456", loc)
	require.NoError(t, err)
	assert.True(t, ts.Equal(time.Date(2026, 3, 15, 8, 0, 0, 123456000, time.UTC)))

	ts, err = ParseTimestamp("2026-03-15T10:00:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 10, ts.Hour())

	_, err = ParseTimestamp("yesterday", loc)
	assert.Error(t, err)
}
