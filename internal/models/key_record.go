package models

import "time"

// DateLayout is the on-disk format of KeyRecord.FirstSeen.
const DateLayout = "2006-01-02"

// localTimestampLayout matches activation timestamps written without a zone.
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// KeyRecord anchors the validity window of a key on its first successful use.
type KeyRecord struct {
	Key         string `json:"key,omitempty"`
	FirstSeen   string `json:"first_seen"`
	ActivatedAt string `json:"activated_at"`
}

// KeyState is the persisted mapping of normalized key to its record.
type KeyState map[string]*KeyRecord

func NewKeyRecord(key string, now time.Time) *KeyRecord {
	return &KeyRecord{
		Key:         key,
		FirstSeen:   now.Format(DateLayout),
		ActivatedAt: now.Format(time.RFC3339Nano),
	}
}

// FirstSeenOr returns FirstSeen, or fallback when the record has none.
func (r *KeyRecord) FirstSeenOr(fallback string) string {
	if r == nil || r.FirstSeen == "" {
		return fallback
	}
	return r.FirstSeen
}

// ElapsedDays counts whole days from midnight of firstSeen to now using wall
// clock arithmetic, so DST shifts never lose or gain a day. An unparsable
// date counts as zero days.
func ElapsedDays(firstSeen string, now time.Time) int {
	first, err := time.Parse(DateLayout, firstSeen)
	if err != nil {
		return 0
	}
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), time.UTC)
	days := int(wall.Sub(first) / (24 * time.Hour))
	if wall.Before(first) {
		// floor for negative spans
		if wall.Sub(first)%(24*time.Hour) != 0 {
			days--
		}
	}
	return days
}

// ExpiryDate is the first day on which a key anchored at firstSeen is no
// longer valid.
func ExpiryDate(firstSeen string, validityDays int) string {
	first, err := time.Parse(DateLayout, firstSeen)
	if err != nil {
		return ""
	}
	return first.AddDate(0, 0, validityDays).Format(DateLayout)
}

// ParseTimestamp accepts RFC 3339 timestamps and zone-less ISO timestamps,
// interpreting the latter in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(localTimestampLayout, value, loc)
}
