package muxtree

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mux := newTestRouter(t, WithMetrics(reg))
	require.NotNil(t, mux.metrics)

	mux.MustHandle(http.MethodGet, "/users/{id}", emptyHandler)
	mux.MustHandle(http.MethodGet, "/files/*rest", emptyHandler)
	assert.Error(t, mux.Handle(http.MethodGet, "/users/{id", emptyHandler))
	assert.Error(t, mux.Handle(http.MethodGet, "/dup/{a}/{a}", emptyHandler))
	assert.Equal(t, float64(2), testutil.ToFloat64(mux.metrics.registrationErrors))
	assert.Equal(t, float64(0), testutil.ToFloat64(mux.metrics.routes))

	mux.Freeze()
	assert.Equal(t, float64(2), testutil.ToFloat64(mux.metrics.routes))

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/1", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a/b", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/users/1", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	_ = mux.Lookup(http.MethodGet, "/missing")

	assert.Equal(t, float64(2), testutil.ToFloat64(mux.metrics.lookups.WithLabelValues("matched")))
	assert.Equal(t, float64(1), testutil.ToFloat64(mux.metrics.lookups.WithLabelValues("method_not_allowed")))
	assert.Equal(t, float64(2), testutil.ToFloat64(mux.metrics.lookups.WithLabelValues("not_found")))

	expected := `
# HELP muxtree_routes Number of registered routes
# TYPE muxtree_routes gauge
muxtree_routes 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "muxtree_routes"))
}

func TestMetrics_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(WithMetrics(reg))
	require.NoError(t, err)

	_, err = New(WithMetrics(reg))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

func TestMetrics_RollbackOnPartialRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	routes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "routes",
		Help:      "Number of registered routes",
	})
	require.NoError(t, reg.Register(routes))

	_, err := New(WithMetrics(reg))
	require.ErrorIs(t, err, ErrInvalidConfig)

	require.True(t, reg.Unregister(routes))
	mux, err := New(WithMetrics(reg))
	require.NoError(t, err)
	assert.NotNil(t, mux.metrics)
}

func TestMetrics_Disabled(t *testing.T) {
	var m *metrics
	assert.NotPanics(t, func() {
		m.observe(Matched)
		m.setRoutes(1)
		m.registrationFailed()
	})
}
