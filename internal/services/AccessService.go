package services

import (
	"context"
	"eigenkey/internal/lifecycle"
	"eigenkey/internal/models"
	"eigenkey/internal/providers"
)

const anomalyCachePrefix = "anomaly:"

// AnomalyCacheKey is the cache slot holding the rendered anomaly report for a
// masked key.
func AnomalyCacheKey(mask string) string {
	return anomalyCachePrefix + mask
}

type AccessServiceInterface interface {
	Authorize(ctx context.Context, key string, client models.ClientInfo) models.AccessDecision
	Inspect(ctx context.Context, key string) models.AccessDecision
	CheckAnomaly(key string) models.AnomalyResult
	StorageDegraded() bool
	AllowListSize(ctx context.Context) int
	Warmup(ctx context.Context)
}

// AccessService runs the gate a protected page applies before rendering:
// validate, log blocked attempts, flag sharing, log access.
type AccessService struct {
	tracker lifecycle.TrackerInterface
	cache   providers.CacheProviderInterface
	logger  providers.Logger
}

func (as *AccessService) Authorize(ctx context.Context, key string, client models.ClientInfo) models.AccessDecision {
	result := as.tracker.Validate(ctx, key)
	decision := models.AccessDecision{Validation: result}

	if !result.Valid {
		as.tracker.RecordUsage(key, models.StatusBlocked, client)
		decision.Status = models.StatusBlocked
		return decision
	}

	anomaly := as.tracker.CheckSharingAnomaly(key)
	if anomaly.IsAnomaly {
		as.tracker.RecordUsage(key, models.StatusWarning, client)
	}
	as.tracker.RecordUsage(key, models.StatusAccess, client)
	as.cache.Del(AnomalyCacheKey(result.KeyMask))

	decision.Granted = true
	decision.Status = models.StatusAccess
	decision.Anomaly = anomaly
	return decision
}

// Inspect validates and checks sharing without writing to the usage log.
// Validation still anchors first_seen for a never-seen key.
func (as *AccessService) Inspect(ctx context.Context, key string) models.AccessDecision {
	result := as.tracker.Validate(ctx, key)
	decision := models.AccessDecision{
		Granted:    result.Valid,
		Validation: result,
		Anomaly:    as.tracker.CheckSharingAnomaly(key),
	}
	if result.Valid {
		decision.Status = models.StatusAccess
	} else {
		decision.Status = models.StatusBlocked
	}
	return decision
}

func (as *AccessService) CheckAnomaly(key string) models.AnomalyResult {
	return as.tracker.CheckSharingAnomaly(key)
}

func (as *AccessService) StorageDegraded() bool {
	return as.tracker.Degraded()
}

func (as *AccessService) AllowListSize(ctx context.Context) int {
	return as.tracker.AllowListSize(ctx)
}

// Warmup resolves the allow-list once and probes key state storage so a
// read-only deployment is reported at startup rather than on first use.
func (as *AccessService) Warmup(ctx context.Context) {
	size := as.tracker.AllowListSize(ctx)
	if size == 0 {
		as.logger.Warnf(providers.TypeApp, "Allow-list is empty, every key will be rejected")
	} else {
		as.logger.Infof(providers.TypeApp, "Allow-list loaded: %d keys", size)
	}
	if err := as.tracker.Probe(); err != nil {
		as.logger.Warnf(providers.TypeApp, "Key state storage probe failed: %s", err)
	}
}

func NewAccessService(tracker lifecycle.TrackerInterface, cache providers.CacheProviderInterface, logger providers.Logger) AccessServiceInterface {
	return &AccessService{
		tracker: tracker,
		cache:   cache,
		logger:  logger,
	}
}
