package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestObserveSearch(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveSearch("color", 3, nil, time.Millisecond)
	m.ObserveSearch("color", 0, nil, time.Millisecond)
	m.ObserveSearch("", 0, errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchTotal.WithLabelValues("color", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchTotal.WithLabelValues("color", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchTotal.WithLabelValues("none", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.searchDuration))
}

func TestObserveCollectionOp(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveCollectionOp("add", nil)
	m.ObserveCollectionOp("add", nil)
	m.ObserveCollectionOp("remove", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.collectionOps.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collectionOps.WithLabelValues("remove", "error")))
}

func TestCacheCounters(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()
	m.RecordLoadError()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordCacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordCacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordLoadErrors))
}

func TestObserveHTTPRequest(t *testing.T) {
	m := newTestMetrics(t)

	m.ObserveHTTPRequest("GET", "GET /api/search", 200, 5*time.Millisecond)
	m.ObserveImageResolution("presign")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "GET /api/search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imageResolutions.WithLabelValues("presign")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSearch("color", 1, nil, time.Second)
		m.ObserveCollectionOp("add", nil)
		m.RecordCacheHit()
		m.RecordCacheMiss()
		m.RecordLoadError()
		m.ObserveImageResolution("none")
		m.ObserveHTTPRequest("GET", "/", 200, time.Second)
	})
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}
