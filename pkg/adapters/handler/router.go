package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, catalog ports.CatalogService, collection ports.CollectionService, m *metrics.Metrics) http.Handler {
	// Initialize Handlers
	h := NewCatalogHandler(catalog, cfg.MinQueryLength)
	ch := NewCollectionHandler(collection)

	// Initialize Middleware
	mw := NewMiddleware(cfg, m)

	// Initialize Auth Handler
	authHandler := NewAuthHandler(cfg)

	// Setup Router
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Public catalog reads, rate limited per client
	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, mw.RateLimit(fn))
	}
	public("GET /api/search", h.Search)
	public("GET /api/car", h.Car)
	public("POST /api/cars", h.Cars)
	public("POST /api/variants", h.Variants)
	public("GET /api/years", h.Years)
	public("GET /api/fields", h.Fields)
	public("GET /api/image/{id}", h.Image)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/collection", ch.List)
	protectedMux.HandleFunc("GET /api/v1/collection/items", ch.Items)
	protectedMux.HandleFunc("POST /api/v1/collection/{variantID}", ch.Add)
	protectedMux.HandleFunc("DELETE /api/v1/collection/{variantID}", ch.Remove)

	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	if m != nil {
		mux.Handle("GET /metrics", mw.AuthMiddleware(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	return mw.RequestLogger(mux)
}
