package models

import "time"

type UsageStatus string

const (
	StatusAccess  UsageStatus = "access"
	StatusWarning UsageStatus = "warning"
	StatusBlocked UsageStatus = "blocked"
)

// UnknownValue is stored for client attributes that were not supplied.
const UnknownValue = "unknown"

// UsageEvent is one line of the append-only usage log.
type UsageEvent struct {
	Timestamp string      `json:"timestamp"`
	KeyMask   string      `json:"key_mask"`
	Status    UsageStatus `json:"status"`
	IPHash    string      `json:"ip_hash"`
	UAHash    string      `json:"ua_hash"`
	DeviceID  string      `json:"device_id"`
	Page      string      `json:"page"`
}

func (e *UsageEvent) Time(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.Timestamp, loc)
}

// ClientInfo describes the caller of one access attempt.
type ClientInfo struct {
	IP        string
	UserAgent string
	DeviceID  string
	Page      string
}
