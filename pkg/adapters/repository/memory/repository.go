// Package memory keeps the catalog and collections in process memory. It
// backs tests and single-instance deployments without a database.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// RecordStore holds a catalog snapshot.
type RecordStore struct {
	mu     sync.RWMutex
	models []domain.Model
}

func NewRecordStore(models []domain.Model) *RecordStore {
	return &RecordStore{models: slices.Clone(models)}
}

func (s *RecordStore) Load(_ context.Context) ([]domain.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.models), nil
}

func (s *RecordStore) Save(_ context.Context, models []domain.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = slices.Clone(models)
	return nil
}

// CollectionRepository holds one ordered id set per user.
type CollectionRepository struct {
	mu   sync.Mutex
	sets map[string][]string
}

func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{sets: make(map[string][]string)}
}

func (r *CollectionRepository) List(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(userID), nil
}

func (r *CollectionRepository) Add(_ context.Context, userID, variantID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.sets[userID], variantID) {
		r.sets[userID] = append(r.sets[userID], variantID)
	}
	return r.snapshot(userID), nil
}

func (r *CollectionRepository) Remove(_ context.Context, userID, variantID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.sets[userID]
	if i := slices.Index(ids, variantID); i >= 0 {
		r.sets[userID] = slices.Delete(slices.Clone(ids), i, i+1)
	}
	return r.snapshot(userID), nil
}

func (r *CollectionRepository) snapshot(userID string) []string {
	out := make([]string, len(r.sets[userID]))
	copy(out, r.sets[userID])
	return out
}
