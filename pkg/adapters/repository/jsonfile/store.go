// Package jsonfile reads and writes the catalog as one JSON document, the
// snapshot format the catalog is distributed in.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context) ([]domain.Model, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog: %w", domain.ErrDataUnavailable, err)
	}
	var models []domain.Model
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("%w: decode catalog %s: %w", domain.ErrDataUnavailable, s.path, err)
	}
	if models == nil {
		models = []domain.Model{}
	}
	return models, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the snapshot, so readers never see a partial document.
func (s *Store) Save(_ context.Context, models []domain.Model) error {
	data, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("%w: encode catalog: %w", domain.ErrDataUnavailable, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("%w: write catalog: %w", domain.ErrDataUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write catalog: %w", domain.ErrDataUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write catalog: %w", domain.ErrDataUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: write catalog: %w", domain.ErrDataUnavailable, err)
	}
	return nil
}
