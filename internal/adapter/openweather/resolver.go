package openweather

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// mockTTL caps how long a mock snapshot may be served from cache, so a
// recovering provider is retried sooner than the regular TTL would allow.
const mockTTL = 5 * time.Minute

// CachedResolver implements domain.SnapshotResolver over a Provider with a
// TTL cache keyed by rounded coordinates and single-flight population. A
// burst of claims from one area costs at most one provider call per cell
// per TTL window.
type CachedResolver struct {
	provider Provider
	fallback Provider
	ttl      time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu        sync.RWMutex
	snapshots map[string]cachedSnapshot

	flight singleflight.Group
}

type cachedSnapshot struct {
	snapshot  domain.WeatherSnapshot
	expiresAt time.Time
}

// NewCachedResolver creates a resolver around provider. A nil provider
// means every lookup is served by the deterministic mock; a nil clock means
// wall time.
func NewCachedResolver(provider Provider, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *CachedResolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics != nil {
		enabled := 0.0
		if provider != nil {
			enabled = 1
		}
		metrics.ProviderEnabled.Set(enabled)
	}
	return &CachedResolver{
		provider:  provider,
		fallback:  NewMockProvider(clock),
		ttl:       ttl,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
		snapshots: make(map[string]cachedSnapshot),
	}
}

// Resolve returns the snapshot for the coordinate's weather cell, fetching
// and caching it on a miss. Provider trouble degrades to mock data; the
// only error is malformed coordinates.
func (r *CachedResolver) Resolve(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	if !(domain.LatLon{Lat: lat, Lon: lon}).Valid() {
		return domain.WeatherSnapshot{}, fmt.Errorf("resolve weather: invalid coordinates (%v, %v)", lat, lon)
	}

	key := cellKey(lat, lon)

	if snapshot, ok := r.cached(key); ok {
		r.countCache("hit")
		return snapshot, nil
	}
	r.countCache("miss")

	v, _, _ := r.flight.Do(key, func() (any, error) {
		// Another caller may have populated the cell while this one
		// waited on the flight lock.
		if snapshot, ok := r.cached(key); ok {
			return snapshot, nil
		}
		snapshot := r.fetch(ctx, key, lat, lon)
		r.store(key, snapshot)
		return snapshot, nil
	})
	return v.(domain.WeatherSnapshot), nil
}

// fetch asks the live provider and falls back to the mock on any failure.
func (r *CachedResolver) fetch(ctx context.Context, key string, lat, lon float64) domain.WeatherSnapshot {
	if r.provider != nil {
		snapshot, err := r.provider.Current(ctx, lat, lon)
		if err == nil {
			return snapshot
		}
		r.logger.Warn("weather provider failed, serving mock data", "cell", key, "error", err)
		r.countFallback()
	} else {
		r.countFallback()
	}
	snapshot, _ := r.fallback.Current(ctx, lat, lon)
	return snapshot
}

func (r *CachedResolver) cached(key string) (domain.WeatherSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.snapshots[key]
	if !ok || !r.clock.Now().Before(entry.expiresAt) {
		return domain.WeatherSnapshot{}, false
	}
	return entry.snapshot, true
}

// store replaces the cell's entry wholesale; cached snapshots are never
// mutated in place.
func (r *CachedResolver) store(key string, snapshot domain.WeatherSnapshot) {
	ttl := r.ttl
	if snapshot.IsMock && mockTTL < ttl {
		ttl = mockTTL
	}
	r.mu.Lock()
	r.snapshots[key] = cachedSnapshot{snapshot: snapshot, expiresAt: r.clock.Now().Add(ttl)}
	r.mu.Unlock()
}

func (r *CachedResolver) countCache(result string) {
	if r.metrics != nil {
		r.metrics.WeatherCache.WithLabelValues(result).Inc()
	}
}

func (r *CachedResolver) countFallback() {
	if r.metrics != nil {
		r.metrics.MockFallbacks.Inc()
	}
}

// cellKey rounds coordinates to two decimals, grouping claims within
// roughly a kilometre into one weather cell.
func cellKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
