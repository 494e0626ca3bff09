package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"astro-server/internal/shared/config"
)

// Facade wraps a Store with JSON marshaling and the TTL policy. A nil
// Facade is valid and caches nothing, mirroring the disabled-redis
// convention used elsewhere.
type Facade struct {
	store  Store
	logger *slog.Logger
}

func NewFacade(store Store, logger *slog.Logger) *Facade {
	if store == nil {
		return nil
	}
	return &Facade{store: store, logger: logger.With("component", "cache")}
}

// Get unmarshals a cached value into out, reporting whether it was
// present. Store errors degrade to a miss: the caller recomputes.
func (f *Facade) Get(ctx context.Context, key string, out any) bool {
	if f == nil {
		return false
	}
	raw, ok, err := f.store.Get(ctx, key)
	if err != nil {
		f.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		f.logger.Warn("cache entry corrupt, discarding", "key", key, "error", err)
		return false
	}
	return true
}

// Put stores a value under the given TTL. Failures are logged and
// swallowed since caching is best-effort.
func (f *Facade) Put(ctx context.Context, key string, value any, ttl time.Duration) {
	if f == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		f.logger.Warn("cache value not serializable", "key", key, "error", err)
		return
	}
	if err := f.store.Put(ctx, key, raw, ttl); err != nil {
		f.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// TTL policy: birth charts are immutable facts and never expire;
// current-sky transits hold until the UTC day rolls over; timelines,
// forecasts and geocoding results use the configured windows.

func (f *Facade) ChartTTL() time.Duration { return 0 }

// TransitsForDateTTL expires at the end of the current UTC day.
func (f *Facade) TransitsForDateTTL(now time.Time) time.Duration {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return midnight.Sub(utc)
}

func (f *Facade) TimelineTTL() time.Duration {
	return config.GlobalConfig.Cache.TimelineTTL
}

func (f *Facade) ForecastTTL() time.Duration {
	return config.GlobalConfig.Cache.ForecastTTL
}

func (f *Facade) GeocodeTTL() time.Duration {
	return config.GlobalConfig.Cache.GeocodeTTL
}
