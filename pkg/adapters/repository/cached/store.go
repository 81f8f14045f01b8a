// Package cached keeps the catalog snapshot in memory between reads of a
// slower record store.
package cached

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

const (
	snapshotKey = "snapshot"
	loadTimeout = 30 * time.Second
)

// Store wraps a RecordStore with a TTL cache. Concurrent misses share one
// backing read. The returned slice is shared between callers and must not
// be modified.
type Store struct {
	next    ports.RecordStore
	cache   *cache.Cache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewStore(next ports.RecordStore, ttl time.Duration, m *metrics.Metrics) *Store {
	return &Store{
		next:    next,
		cache:   cache.New(ttl, ttl*2),
		metrics: m,
		logger:  logging.ForModule("record-cache"),
	}
}

func (s *Store) Load(ctx context.Context) ([]domain.Model, error) {
	if v, found := s.cache.Get(snapshotKey); found {
		if models, ok := v.([]domain.Model); ok {
			s.metrics.RecordCacheHit()
			return models, nil
		}
	}
	s.metrics.RecordCacheMiss()

	// The load is shared, so one caller going away must not fail the others.
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	v, err, shared := s.group.Do(snapshotKey, func() (any, error) {
		start := time.Now()
		models, err := s.next.Load(loadCtx)
		if err != nil {
			s.metrics.RecordLoadError()
			return nil, err
		}
		s.cache.Set(snapshotKey, models, cache.DefaultExpiration)
		s.logger.Debug("catalog snapshot loaded", "models", len(models), "duration", time.Since(start))
		return models, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("catalog snapshot load shared")
	}
	return v.([]domain.Model), nil
}

// Save writes through and drops the cached snapshot.
func (s *Store) Save(ctx context.Context, models []domain.Model) error {
	defer s.Invalidate()
	return s.next.Save(ctx, models)
}

func (s *Store) Invalidate() {
	s.cache.Delete(snapshotKey)
}
