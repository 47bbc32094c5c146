package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 20*time.Millisecond)
}

func TestTimerObserveDuration(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_duration_seconds",
		Help:    "Test duration histogram",
		Buckets: prometheus.DefBuckets,
	})
	NewTimer().ObserveDuration(h)
	assert.Equal(t, 1, testutil.CollectAndCount(h))
}

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(ClockRejectionsTotal.WithLabelValues("clock_in", "test"))
	ClockRejectionsTotal.WithLabelValues("clock_in", "test").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ClockRejectionsTotal.WithLabelValues("clock_in", "test")))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shifttrack_clock_rejections_total")
}
