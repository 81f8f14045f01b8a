package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/k3a/html2text"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

// CatalogService answers read queries against the catalog snapshot. Every
// call loads the snapshot once from the record store.
type CatalogService struct {
	store   ports.RecordStore
	images  ports.ImageResolver
	engine  *search.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCatalogService builds the service. images and m may be nil.
func NewCatalogService(store ports.RecordStore, images ports.ImageResolver, engine *search.Engine, m *metrics.Metrics) *CatalogService {
	if engine == nil {
		engine = search.NewEngine(search.DefaultPolicy())
	}
	return &CatalogService{
		store:   store,
		images:  images,
		engine:  engine,
		metrics: m,
		logger:  logging.ForModule("catalog"),
	}
}

func (s *CatalogService) Search(ctx context.Context, q search.Query) ([]domain.Model, error) {
	return s.SearchView(ctx, q, "")
}

// SearchView runs a search with a per-call projection. An empty projection
// keeps the engine's configured one.
func (s *CatalogService) SearchView(ctx context.Context, q search.Query, p search.Projection) ([]domain.Model, error) {
	start := time.Now()
	models, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.ObserveSearch(q.Field, 0, err, time.Since(start))
		return nil, err
	}

	if q.HasText() {
		if _, ok := search.Resolve(q.Field); !ok {
			logging.FromContext(ctx, s.logger).Warn("unknown search field", "field", q.Field)
		}
	}

	result := s.engine.WithProjection(p).Run(models, q)
	s.metrics.ObserveSearch(q.Field, len(result), nil, time.Since(start))
	return result, nil
}

func (s *CatalogService) GetByKey(ctx context.Context, key string) (*domain.Model, error) {
	models, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := search.FindByKey(models, key)
	if !ok {
		return nil, fmt.Errorf("%w: model %q", domain.ErrNotFound, key)
	}
	return &m, nil
}

func (s *CatalogService) GetManyByKeys(ctx context.Context, keys []string) ([]domain.Model, error) {
	models, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return search.SelectByKeys(models, keys), nil
}

func (s *CatalogService) GetVariantsByIDs(ctx context.Context, ids []string) ([]domain.Model, error) {
	models, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return search.SelectVariants(models, ids), nil
}

func (s *CatalogService) AvailableYears(ctx context.Context) ([]string, error) {
	models, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return search.AvailableYears(models), nil
}

// Describe builds the detail view of one model. Image URLs that fail to
// resolve are left out of the view.
func (s *CatalogService) Describe(ctx context.Context, key string) (*domain.ModelView, error) {
	m, err := s.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	view := &domain.ModelView{
		Model:      *m,
		Name:       search.FormatName(m.Key),
		YearRanges: search.FormatYearRanges(search.ModelYears(*m)),
		Columns:    search.AvailableFields([]domain.Model{*m}),
		Images:     map[string]string{},
	}
	if m.Description != nil {
		view.DescriptionText = html2text.HTML2Text(*m.Description)
	}

	if s.images == nil {
		return view, nil
	}
	for _, v := range m.Variants {
		if v.ID == "" || !v.HasImage() {
			continue
		}
		url, ok, err := s.images.Resolve(ctx, v)
		if err != nil {
			logging.FromContext(ctx, s.logger).Warn("image resolution failed", "variant_id", v.ID, "error", err)
			continue
		}
		if ok {
			view.Images[v.ID] = url
		}
	}
	return view, nil
}

// ResolveImage returns the image URL of one variant.
func (s *CatalogService) ResolveImage(ctx context.Context, variantID string) (string, error) {
	if variantID == "" {
		return "", fmt.Errorf("%w: variant id is required", domain.ErrInvalidQuery)
	}
	if s.images == nil {
		return "", fmt.Errorf("%w: image for %q", domain.ErrNotFound, variantID)
	}

	found, err := s.GetVariantsByIDs(ctx, []string{variantID})
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: variant %q", domain.ErrNotFound, variantID)
	}

	url, ok, err := s.images.Resolve(ctx, found[0].Variants[0])
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: image for %q", domain.ErrNotFound, variantID)
	}
	return url, nil
}

// Import replaces the stored catalog. Keys must be present and unique.
func (s *CatalogService) Import(ctx context.Context, models []domain.Model) error {
	seen := make(map[string]struct{}, len(models))
	for i, m := range models {
		if m.Key == "" {
			return fmt.Errorf("%w: record %d has no key", domain.ErrInvalidQuery, i)
		}
		if _, dup := seen[m.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", domain.ErrInvalidQuery, m.Key)
		}
		seen[m.Key] = struct{}{}
	}

	if err := s.store.Save(ctx, models); err != nil {
		return err
	}
	s.logger.Info("catalog imported", "models", len(models))
	return nil
}
