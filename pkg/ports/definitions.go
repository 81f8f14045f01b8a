package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
)

// RecordStore reads and writes the whole catalog snapshot.
// Implementations return errors wrapping domain.ErrDataUnavailable.
type RecordStore interface {
	Load(ctx context.Context) ([]domain.Model, error)
	Save(ctx context.Context, models []domain.Model) error
}

// CollectionRepository stores one set of variant ids per user.
// Add and Remove must be atomic per user and return the resulting set.
type CollectionRepository interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, variantID string) ([]string, error)
	Remove(ctx context.Context, userID, variantID string) ([]string, error)
}

// ImageResolver turns a variant's image marker into a fetchable URL.
// ok is false when the variant has no image.
type ImageResolver interface {
	Resolve(ctx context.Context, v domain.Variant) (url string, ok bool, err error)
}

// CatalogService defines the read operations over the catalog
type CatalogService interface {
	Search(ctx context.Context, q search.Query) ([]domain.Model, error)
	SearchView(ctx context.Context, q search.Query, p search.Projection) ([]domain.Model, error)
	GetByKey(ctx context.Context, key string) (*domain.Model, error)
	GetManyByKeys(ctx context.Context, keys []string) ([]domain.Model, error)
	GetVariantsByIDs(ctx context.Context, ids []string) ([]domain.Model, error)

	AvailableYears(ctx context.Context) ([]string, error)
	Describe(ctx context.Context, key string) (*domain.ModelView, error)
	ResolveImage(ctx context.Context, variantID string) (string, error)
	Import(ctx context.Context, models []domain.Model) error
}

// CollectionService defines the per-user collection operations
type CollectionService interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, variantID string) ([]string, error)
	Remove(ctx context.Context, userID, variantID string) ([]string, error)
	Items(ctx context.Context, userID string, sort *search.Sort) ([]search.Row, error)
}
