package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{models.NewChartError("c", models.ErrNetworkFailure, "x", nil), "network_failure"},
		{models.NewChartError("c", models.ErrServerReported, "x", nil), "server_error"},
		{models.Malformed("c", "bad"), "malformed"},
		{fmt.Errorf("wrapped: %w", models.ErrStaleResponse), "stale"},
		{models.ErrInvalidFilter, "invalid_filter"},
		{models.ErrMissingTarget, "missing_target"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ChartUpdate("salesTrendChart", nil)
	r.ChartUpdate("salesTrendChart", nil)
	r.ChartUpdate("salesTrendChart", models.Malformed("salesTrendChart", "bad"))
	r.GuardDrop("salesRegionChart")
	r.DashboardLoad("skipped")
	r.ObserveFetch("/api/sales-trend", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.chartUpdates.WithLabelValues("salesTrendChart", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.chartUpdates.WithLabelValues("salesTrendChart", "malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.guardDrops.WithLabelValues("salesRegionChart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dashboardLoads.WithLabelValues("skipped")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ChartUpdate("x", nil)
		r.GuardDrop("x")
		r.DashboardLoad("ok")
		r.ObserveFetch("/x", time.Second)
		r.Snapshot(nil)
	})
}

func TestHandler(t *testing.T) {
	r := New()
	r.Snapshot(nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `salesdash_snapshots_total{outcome="ok"} 1`), body)
}
