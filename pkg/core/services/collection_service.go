package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

// CollectionService manages the set of variants each user owns.
type CollectionService struct {
	repo    ports.CollectionRepository
	catalog ports.CatalogService
	locks   keyedMutex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCollectionService(repo ports.CollectionRepository, catalog ports.CatalogService, m *metrics.Metrics) *CollectionService {
	return &CollectionService{
		repo:    repo,
		catalog: catalog,
		locks:   keyedMutex{locks: make(map[string]*refLock)},
		metrics: m,
		logger:  logging.ForModule("collection"),
	}
}

func (s *CollectionService) List(ctx context.Context, userID string) ([]string, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	ids, err := s.repo.List(ctx, userID)
	s.metrics.ObserveCollectionOp("list", err)
	return ids, err
}

// Add marks a variant as owned. Adding an owned variant leaves the set unchanged.
func (s *CollectionService) Add(ctx context.Context, userID, variantID string) ([]string, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	if err := requireID("variant id", variantID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	ids, err := s.repo.Add(ctx, userID, variantID)
	s.metrics.ObserveCollectionOp("add", err)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("collection add failed", "user_id", userID, "variant_id", variantID, "error", err)
		return nil, err
	}
	return ids, nil
}

// Remove unmarks a variant. Removing an absent variant leaves the set unchanged.
func (s *CollectionService) Remove(ctx context.Context, userID, variantID string) ([]string, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	if err := requireID("variant id", variantID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	ids, err := s.repo.Remove(ctx, userID, variantID)
	s.metrics.ObserveCollectionOp("remove", err)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("collection remove failed", "user_id", userID, "variant_id", variantID, "error", err)
		return nil, err
	}
	return ids, nil
}

// Items returns the user's collection as table rows, one per owned variant
// still present in the catalog, ordered by sort.
func (s *CollectionService) Items(ctx context.Context, userID string, sort *search.Sort) ([]search.Row, error) {
	if sort != nil {
		if _, err := search.ParseSort(sort.Field, string(sort.Direction)); err != nil {
			return nil, err
		}
	}

	ids, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []search.Row{}, nil
	}

	models, err := s.catalog.GetVariantsByIDs(ctx, ids)
	s.metrics.ObserveCollectionOp("items", err)
	if err != nil {
		return nil, err
	}
	rows := search.Rows(models)
	search.SortRows(rows, sort)
	return rows, nil
}

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidQuery, name)
	}
	return nil
}

// keyedMutex serializes work per key. Entries are dropped once unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
