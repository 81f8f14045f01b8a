// Package app wires configuration, storage, services and the HTTP router
// into a runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/repository/cached"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/repository/jsonfile"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/repository/memory"
	mongorepo "github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/repository/mongo"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/adapters/storage/s3"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/services"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

type App struct {
	Handler     http.Handler
	Records     ports.RecordStore
	Catalog     *services.CatalogService
	Collections *services.CollectionService
	Metrics     *metrics.Metrics

	closers []func(context.Context) error
	sqlite  *sqlite.SQLiteRepository
	logger  *slog.Logger
}

// Build assembles the application described by cfg. The caller must Close
// the returned App.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{logger: logging.ForModule("app")}

	policy, err := cfg.SearchPolicy()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.Metrics, err = metrics.New(registry); err != nil {
		return nil, err
	}

	store, err := a.recordStore(cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.Records = store
	if cfg.CatalogCacheTTL > 0 {
		store = cached.NewStore(store, cfg.CatalogCacheTTL, a.Metrics)
	}

	repo, err := a.collectionRepository(ctx, cfg)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	images, err := s3.NewFromConfig(ctx, cfg.AWSRegion, s3.Options{
		Bucket:          cfg.ImageBucket,
		Prefix:          cfg.ImagePrefix,
		PublicBaseURL:   cfg.ImagePublicBaseURL,
		FallbackBaseURL: cfg.ImageFallbackBaseURL,
		URLTTL:          cfg.ImageURLTTL,
	}, a.Metrics)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.Catalog = services.NewCatalogService(store, images, search.NewEngine(policy), a.Metrics)
	a.Collections = services.NewCollectionService(repo, a.Catalog, a.Metrics)
	a.Handler = handler.NewRouter(cfg, a.Catalog, a.Collections, a.Metrics)

	a.logger.Info("application built",
		"catalog_source", cfg.CatalogSource,
		"collection_backend", cfg.CollectionBackend,
		"year_trim", policy.YearTrim,
		"variant_match", policy.VariantMatch)
	return a, nil
}

// OpenCatalog builds only the catalog service over the uncached record
// store, for offline tooling. Images are not resolved.
func OpenCatalog(cfg *config.Config) (*App, error) {
	a := &App{logger: logging.ForModule("app")}
	store, err := a.recordStore(cfg)
	if err != nil {
		return nil, err
	}
	a.Records = store
	a.Catalog = services.NewCatalogService(store, nil, nil, nil)
	return a, nil
}

// recordStore opens the catalog store selected by CATALOG_SOURCE.
func (a *App) recordStore(cfg *config.Config) (ports.RecordStore, error) {
	switch cfg.CatalogSource {
	case "file":
		return jsonfile.NewStore(cfg.CatalogPath), nil
	case "sqlite":
		return a.openSQLite(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func (a *App) collectionRepository(ctx context.Context, cfg *config.Config) (ports.CollectionRepository, error) {
	switch cfg.CollectionBackend {
	case "sqlite":
		return a.openSQLite(cfg.DatabaseURL)
	case "memory":
		a.logger.Warn("collections are kept in memory and lost on restart")
		return memory.NewCollectionRepository(), nil
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGO_URI is required for the mongo collection backend")
		}
		client, err := mongorepo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)

		repo := mongorepo.NewCollectionRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown collection backend %q", cfg.CollectionBackend)
	}
}

// openSQLite opens the database once and shares it between the record
// store and the collection repository.
func (a *App) openSQLite(dbURL string) (*sqlite.SQLiteRepository, error) {
	if a.sqlite != nil {
		return a.sqlite, nil
	}
	repo, err := sqlite.NewSQLiteRepository(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.sqlite = repo
	a.closers = append(a.closers, func(context.Context) error { return repo.Close() })
	return repo, nil
}

// Close releases database connections in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
