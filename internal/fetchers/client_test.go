package fetchers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGetSendsQuery(t *testing.T) {
	var got url.Values
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		assert.Equal(t, "/api/sales-trend", r.URL.Path)
		jsonResponse(http.StatusOK, `{}`)(w, r)
	})

	q := url.Values{}
	q.Set("period_type", "MS")
	q.Set("start_date", "2024-01-01")
	_, err := c.Get(context.Background(), "salesTrendChart", PathSalesTrend, q)
	require.NoError(t, err)
	assert.Equal(t, "MS", got.Get("period_type"))
	assert.Equal(t, "2024-01-01", got.Get("start_date"))
}

func TestGetErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
		message string
	}{
		{
			name:    "non-OK status",
			handler: jsonResponse(http.StatusInternalServerError, `oops`),
			kind:    models.ErrNetworkFailure,
			message: "HTTP error! Status: 500",
		},
		{
			name:    "non-OK status with error field",
			handler: jsonResponse(http.StatusBadRequest, `{"error": "bad period"}`),
			kind:    models.ErrNetworkFailure,
			message: "HTTP 400: bad period",
		},
		{
			name:    "error field with OK status",
			handler: jsonResponse(http.StatusOK, `{"error": "No data for region"}`),
			kind:    models.ErrServerReported,
			message: "No data for region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			_, err := c.Get(context.Background(), "salesRegionChart", PathSalesRegion, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "expected %v, got %v", tt.kind, err)
			assert.Equal(t, tt.message, models.UserMessage(err))
		})
	}
}

func TestGetTransportFailure(t *testing.T) {
	srv := httptest.NewServer(jsonResponse(http.StatusOK, `{}`))
	base := srv.URL
	srv.Close()

	c := NewClient(base, time.Second)
	_, err := c.Get(context.Background(), "salesFunnelChart", PathSalesFunnel, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNetworkFailure)
	assert.Equal(t, "Failed to load data", models.UserMessage(err))
}

func TestErrorFieldIgnoresNonObjects(t *testing.T) {
	assert.Equal(t, "", errorField([]byte(`[{"error": "x"}]`)))
	assert.Equal(t, "", errorField([]byte(`{"error": null}`)))
	assert.Equal(t, "", errorField([]byte(`{"error": ""}`)))
	assert.Equal(t, "boom", errorField([]byte(` {"error": "boom"}`)))
}

func TestGetJSONValidatesSchema(t *testing.T) {
	c := newTestServer(t, jsonResponse(http.StatusOK, `{"salespersons": ["A"], "sales": ["lots"]}`))

	var out models.SalespersonPayload
	err := c.GetJSON(context.Background(), "salesSalespersonChart", PathSalesperson, nil, SalespersonSchema, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestSummaryMetrics(t *testing.T) {
	var got url.Values
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		jsonResponse(http.StatusOK, `{"total_sales": 1500000, "avg_order_value": 2500.5}`)(w, r)
	})

	p := models.FilterParams{StartDate: "2024-01-01", EndDate: "2025-12-31", Region: "North"}
	m, err := c.SummaryMetrics(context.Background(), "total-sales", p)
	require.NoError(t, err)
	assert.Equal(t, 1500000.0, m.TotalSales)
	assert.Equal(t, 2500.5, m.AvgOrderValue)
	assert.Equal(t, "North", got.Get("region"))
}

func TestRangeQueryOmitsAllRegion(t *testing.T) {
	q := RangeQuery(models.FilterParams{StartDate: "a", EndDate: "b", Region: "all"})
	assert.False(t, q.Has("region"))
}

func TestPanels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathTopPerformers, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "month", r.URL.Query().Get("filter"))
		jsonResponse(http.StatusOK, `[{"name": "Asha", "sales": 120000, "image": "a.png", "progress": 80}]`)(w, r)
	})
	mux.HandleFunc(PathPendingOrders, jsonResponse(http.StatusOK, `[{"order_id": 17, "customer_name": "Acme", "total_amount": 900}]`))
	mux.HandleFunc(PathRegions, jsonResponse(http.StatusOK, `{"regions": ["North", "South"]}`))
	mux.HandleFunc(PathRecentActivity, jsonResponse(http.StatusOK, `{"activities": [{"type": "order", "description": "New order"}]}`))

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	performers, err := c.TopPerformers(ctx, "top-performers", "month")
	require.NoError(t, err)
	require.Len(t, performers, 1)
	assert.Equal(t, "Asha", performers[0].Name)

	orders, err := c.PendingOrders(ctx, "pending-orders")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.FlexString("17"), orders[0].OrderID)

	regions, err := c.Regions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"North", "South"}, regions)

	feed, err := c.RecentActivity(ctx, "recent-activity", url.Values{"filter": {"week"}})
	require.NoError(t, err)
	require.Len(t, feed.Activities, 1)
	assert.Equal(t, "order", feed.Activities[0].Type)
}
