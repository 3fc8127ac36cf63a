package lifecycle

import (
	"eigenkey/internal/models"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
)

// UsageHistory reads the events recorded for one key from the live log and,
// optionally, from archived segments.
type UsageHistory struct {
	usage    *UsageLog
	archiver *Archiver
}

func NewUsageHistory(usage *UsageLog, archiver *Archiver) *UsageHistory {
	return &UsageHistory{usage: usage, archiver: archiver}
}

// Events returns the key's events oldest first. Archived segments precede
// the live log.
func (h *UsageHistory) Events(key string, includeArchives bool) ([]*models.UsageEvent, error) {
	mask := MaskKey(NormalizeKey(key))
	var events []*models.UsageEvent
	collect := func(event *models.UsageEvent) bool {
		if event.KeyMask == mask {
			events = append(events, event)
		}
		return true
	}

	if includeArchives {
		paths, err := h.archiver.Archives()
		if err != nil {
			return nil, fmt.Errorf("list archives: %w", err)
		}
		for _, path := range paths {
			if err := h.archiver.ScanArchive(path, collect); err != nil {
				return nil, err
			}
		}
	}
	if err := h.usage.Scan(collect); err != nil {
		return nil, err
	}
	return events, nil
}

// Close releases the archive decoder.
func (h *UsageHistory) Close() {
	h.archiver.Close()
}

// UsageSummary aggregates the events of one key.
type UsageSummary struct {
	Events     int
	ByStatus   map[models.UsageStatus]int
	Devices    int
	ActiveDays int
}

// Summarize counts events per status, distinct devices and the distinct
// calendar days in loc on which the key was used.
func Summarize(events []*models.UsageEvent, loc *time.Location) UsageSummary {
	summary := UsageSummary{Events: len(events), ByStatus: make(map[models.UsageStatus]int)}
	devices := make(map[string]struct{})
	days := roaring.New()

	for _, event := range events {
		summary.ByStatus[event.Status]++
		if event.DeviceID != "" {
			devices[event.DeviceID] = struct{}{}
		}
		if ts, err := event.Time(loc); err == nil {
			days.Add(epochDay(ts.In(loc)))
		}
	}

	summary.Devices = len(devices)
	summary.ActiveDays = int(days.GetCardinality())
	return summary
}

func epochDay(t time.Time) uint32 {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return uint32(day.Unix() / 86400)
}
