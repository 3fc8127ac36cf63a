package lifecycle

import (
	"context"
	"eigenkey/internal/lifecycle/interfaces"
	"eigenkey/internal/models"
	"eigenkey/internal/providers"
	"eigenkey/internal/structures"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

const (
	OutcomeValid    = "valid"
	OutcomeFirstUse = "first_use"
	OutcomeExpired  = "expired"
	OutcomeInvalid  = "invalid"
)

type TrackerInterface interface {
	Validate(ctx context.Context, key string) models.ValidationResult
	RecordUsage(key string, status models.UsageStatus, client models.ClientInfo)
	CheckSharingAnomaly(key string) models.AnomalyResult
	AllowListSize(ctx context.Context) int
	Probe() error
	Degraded() bool
}

// Tracker implements the key lifecycle: allow-list lookup, first-use
// anchoring, expiry, usage logging and sharing detection. Storage failures
// never reach the caller. While the state file cannot be written every
// allow-listed key validates as a first use.
type Tracker struct {
	source    interfaces.KeySourceInterface
	store     interfaces.KeyStateStoreInterface
	usage     *UsageLog
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	validity  int
	threshold int
	window    time.Duration
	now       Clock
	degraded  atomic.Bool
}

func NewTracker(
	conf *structures.Config,
	source interfaces.KeySourceInterface,
	store interfaces.KeyStateStoreInterface,
	usage *UsageLog,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) TrackerInterface {
	return newTracker(conf, source, store, usage, logger, metrics, time.Now)
}

func newTracker(
	conf *structures.Config,
	source interfaces.KeySourceInterface,
	store interfaces.KeyStateStoreInterface,
	usage *UsageLog,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	now Clock,
) *Tracker {
	return &Tracker{
		source:    source,
		store:     store,
		usage:     usage,
		logger:    logger,
		metrics:   metrics,
		validity:  conf.Access.ValidityDays,
		threshold: conf.Sharing.DeviceThreshold,
		window:    conf.Sharing.TimeWindow,
		now:       now,
	}
}

func (t *Tracker) Validate(ctx context.Context, key string) models.ValidationResult {
	key = NormalizeKey(key)
	result := models.ValidationResult{KeyMask: MaskKey(key)}

	if !t.isAllowed(ctx, key) {
		t.metrics.IncValidations(OutcomeInvalid)
		return result
	}

	now := t.now()
	today := now.Format(models.DateLayout)

	state, err := t.store.Load()
	if err != nil {
		t.logger.Warnf(providers.TypeApp, "Key state unreadable, treating as empty: %s", err)
	}
	if state == nil {
		state = make(models.KeyState)
	}

	record, ok := state[key]
	if !ok {
		state[key] = models.NewKeyRecord(key, now)
		if err := t.store.Save(state); err != nil {
			t.markDegraded(err)
		} else {
			t.markHealthy()
		}

		t.metrics.IncValidations(OutcomeFirstUse)
		result.Valid = true
		result.FirstSeen = today
		result.ExpiresOn = models.ExpiryDate(today, t.validity)
		result.DaysRemaining = t.validity
		result.IsFirstUse = true
		return result
	}

	firstSeen := record.FirstSeenOr(today)
	elapsed := max(models.ElapsedDays(firstSeen, now), 0)
	result.FirstSeen = firstSeen
	result.ExpiresOn = models.ExpiryDate(firstSeen, t.validity)

	if elapsed >= t.validity {
		t.metrics.IncValidations(OutcomeExpired)
		result.Expired = true
		return result
	}

	t.metrics.IncValidations(OutcomeValid)
	result.Valid = true
	result.DaysRemaining = t.validity - elapsed
	return result
}

func (t *Tracker) isAllowed(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}
	keys, err := t.source.Keys(ctx)
	if err != nil {
		t.logger.Errorf(providers.TypeApp, "Allow-list unavailable: %s", err)
		return false
	}
	for _, allowed := range keys {
		if NormalizeKey(allowed) == key {
			return true
		}
	}
	return false
}

func (t *Tracker) RecordUsage(key string, status models.UsageStatus, client models.ClientInfo) {
	mask := MaskKey(NormalizeKey(key))
	page := client.Page
	if page == "" {
		page = models.UnknownValue
	}

	event := &models.UsageEvent{
		Timestamp: t.now().Format(time.RFC3339Nano),
		KeyMask:   mask,
		Status:    status,
		IPHash:    HashClientValue(client.IP),
		UAHash:    HashClientValue(client.UserAgent),
		DeviceID:  client.DeviceID,
		Page:      page,
	}

	if err := t.usage.Append(event); err != nil {
		t.metrics.IncStorageWriteFailures()
		t.logger.Warnf(providers.TypeApp, "Usage log append failed: %s", err)
	}
	t.metrics.IncUsageEvents(string(status))
	t.logger.Infof(providers.TypeAccess, "%s key=%s device=%s page=%s ip=%s", status, mask, client.DeviceID, page, event.IPHash)
}

// CheckSharingAnomaly counts distinct devices for the key's mask inside the
// window. It does not require a key record, so detection keeps working while
// storage is degraded.
func (t *Tracker) CheckSharingAnomaly(key string) models.AnomalyResult {
	mask := MaskKey(NormalizeKey(key))
	now := t.now()
	windowStart := now.Add(-t.window)
	devices := make(map[string]struct{})

	err := t.usage.Scan(func(event *models.UsageEvent) bool {
		if event.KeyMask != mask || event.DeviceID == "" {
			return true
		}
		ts, err := event.Time(now.Location())
		if err != nil || ts.Before(windowStart) {
			return true
		}
		devices[event.DeviceID] = struct{}{}
		return true
	})
	if err != nil {
		t.logger.Warnf(providers.TypeApp, "Usage log unreadable, skipping sharing check: %s", err)
		return models.AnomalyResult{}
	}

	result := models.AnomalyResult{DeviceCount: len(devices)}
	if result.DeviceCount > t.threshold {
		t.metrics.IncSharingAnomalies()
		result.IsAnomaly = true
		result.Message = fmt.Sprintf(
			"Unusual usage detected: this key was used on %d devices within %s. Contact the author if you need multi-device access.",
			result.DeviceCount, formatWindow(t.window))
		t.logger.Warnf(providers.TypeAccess, "sharing anomaly key=%s devices=%d", mask, result.DeviceCount)
	}
	return result
}

func (t *Tracker) AllowListSize(ctx context.Context) int {
	keys, err := t.source.Keys(ctx)
	if err != nil {
		return 0
	}
	return len(keys)
}

// Probe checks that the key state can be written and updates the degraded
// flag accordingly.
func (t *Tracker) Probe() error {
	if err := t.store.Probe(); err != nil {
		t.markDegraded(err)
		return err
	}
	t.markHealthy()
	return nil
}

func (t *Tracker) Degraded() bool {
	return t.degraded.Load()
}

func (t *Tracker) markDegraded(err error) {
	t.metrics.IncStorageWriteFailures()
	if t.degraded.CompareAndSwap(false, true) {
		t.logger.Warnf(providers.TypeApp, "Key state not writable, expiry tracking disabled (every key is a first use): %s", err)
	}
}

func (t *Tracker) markHealthy() {
	if t.degraded.CompareAndSwap(true, false) {
		t.logger.Infof(providers.TypeApp, "Key state writable again, expiry tracking restored")
	}
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return d.String()
}
