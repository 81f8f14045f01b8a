// Package metrics provides the Prometheus metrics of the catalog service.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searchTotal    *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	searchResults  prometheus.Histogram

	collectionOps *prometheus.CounterVec

	recordCacheHits   prometheus.Counter
	recordCacheMisses prometheus.Counter
	recordLoadErrors  prometheus.Counter

	imageResolutions *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them on registry.
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register catalog metrics: %w", err)
	}
	return m, nil
}

// Registry returns the registry the metrics were registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) initMetrics() {
	m.searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_search_total",
			Help: "Total number of catalog searches",
		},
		[]string{"field", "outcome"}, // outcome: hit, empty, error
	)
	m.searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Time taken to run a catalog search including the snapshot load",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"field"},
	)
	m.searchResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_search_results",
		Help:    "Number of models returned per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 7),
	})

	m.collectionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_operations_total",
			Help: "Total number of collection operations",
		},
		[]string{"op", "outcome"}, // op: list, add, remove, items; outcome: ok, error
	)

	m.recordCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_cache_hits_total",
		Help: "Total number of catalog snapshot cache hits",
	})
	m.recordCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_cache_misses_total",
		Help: "Total number of catalog snapshot cache misses",
	})
	m.recordLoadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "record_load_errors_total",
		Help: "Total number of failed catalog snapshot loads",
	})

	m.imageResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_resolutions_total",
			Help: "Total number of image URL resolutions",
		},
		[]string{"source"}, // source: public, presign, passthrough, legacy, cache, none, error
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(field string, results int, err error, d time.Duration) {
	if m == nil {
		return
	}
	if field == "" {
		field = "none"
	}
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case results == 0:
		outcome = "empty"
	}
	m.searchTotal.WithLabelValues(field, outcome).Inc()
	m.searchDuration.WithLabelValues(field).Observe(d.Seconds())
	if err == nil {
		m.searchResults.Observe(float64(results))
	}
}

// ObserveCollectionOp records one collection operation.
func (m *Metrics) ObserveCollectionOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.collectionOps.WithLabelValues(op, outcome).Inc()
}

// RecordCacheHit counts a snapshot served from cache.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.recordCacheHits.Inc()
}

// RecordCacheMiss counts a snapshot read from the backing store.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.recordCacheMisses.Inc()
}

// RecordLoadError counts a failed snapshot read.
func (m *Metrics) RecordLoadError() {
	if m == nil {
		return
	}
	m.recordLoadErrors.Inc()
}

// ObserveImageResolution counts an image URL resolution by source.
func (m *Metrics) ObserveImageResolution(source string) {
	if m == nil {
		return
	}
	m.imageResolutions.WithLabelValues(source).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.searchTotal.Describe(ch)
	m.searchDuration.Describe(ch)
	m.searchResults.Describe(ch)
	m.collectionOps.Describe(ch)
	m.recordCacheHits.Describe(ch)
	m.recordCacheMisses.Describe(ch)
	m.recordLoadErrors.Describe(ch)
	m.imageResolutions.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.searchTotal.Collect(ch)
	m.searchDuration.Collect(ch)
	m.searchResults.Collect(ch)
	m.collectionOps.Collect(ch)
	m.recordCacheHits.Collect(ch)
	m.recordCacheMisses.Collect(ch)
	m.recordLoadErrors.Collect(ch)
	m.imageResolutions.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
}
