package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/charts"
	"salesdash/internal/models"
)

func regionConfig(t *testing.T, kind charts.Kind) charts.RenderConfig {
	t.Helper()
	cfg, err := charts.Region(models.RegionPayload{
		Regions: []string{"North", "South"},
		Sales:   []float64{1200, 800},
	}, charts.MapOptions{Kind: kind, Title: "Sales by Region"})
	require.NoError(t, err)
	return cfg
}

func TestCanvasClearRestoresSize(t *testing.T) {
	c := NewCanvas("salesRegionChart", 0, 0)
	w, h := c.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)

	c.Resize(1600, 900)
	_, _ = c.Write([]byte("drawn"))
	assert.False(t, c.Empty())

	c.Clear()
	assert.True(t, c.Empty())
	w, h = c.Size()
	assert.Equal(t, DefaultWidth, w)
	assert.Equal(t, DefaultHeight, h)
}

func TestSet(t *testing.T) {
	s := NewSet("a", "b")
	_, ok := s.Get("a")
	assert.True(t, ok)

	s.Remove("a")
	_, ok = s.Get("a")
	assert.False(t, ok)

	s.Add(NewCanvas("modal", 1200, 600))
	c, ok := s.Get("modal")
	require.True(t, ok)
	w, _ := c.Size()
	assert.Equal(t, 1200, w)

	var nilSet *Set
	_, ok = nilSet.Get("a")
	assert.False(t, ok)
}

func TestEChartsBar(t *testing.T) {
	canvas := NewCanvas("salesRegionChart", 0, 0)
	r, err := EChartsFactory{}.New(canvas, regionConfig(t, charts.KindBar))
	require.NoError(t, err)

	html := string(canvas.Bytes())
	assert.Contains(t, html, "salesRegionChart")
	assert.Contains(t, html, "North")
	assert.NotEmpty(t, r.ID())
	assert.Equal(t, "bar", r.Config().Type)

	r.Destroy()
	assert.True(t, r.Destroyed())
	assert.True(t, canvas.Empty())
	r.Destroy()
}

func TestEChartsEveryKind(t *testing.T) {
	for _, kind := range []charts.Kind{charts.KindBar, charts.KindLine, charts.KindArea, charts.KindPie} {
		t.Run(string(kind), func(t *testing.T) {
			canvas := NewCanvas("c-"+string(kind), 0, 0)
			_, err := EChartsFactory{}.New(canvas, regionConfig(t, kind))
			require.NoError(t, err)
			assert.False(t, canvas.Empty())
		})
	}
}

func TestEChartsAreaFill(t *testing.T) {
	b, err := BuildECharts("salesRegionChart", 800, 400, regionConfig(t, charts.KindArea))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf))
	assert.Contains(t, buf.String(), `"areaStyle"`)
	assert.Contains(t, buf.String(), `"opacity":0.2`)
}

func TestEChartsFunnel(t *testing.T) {
	cfg, err := charts.Funnel(models.FunnelPayload{Leads: 10, Quotes: 6, Orders: 3, Invoices: 2},
		charts.MapOptions{Kind: charts.KindFunnel, FunnelAvailable: EChartsFactory{}.SupportsFunnel()})
	require.NoError(t, err)
	require.Equal(t, "funnel", cfg.Type)

	canvas := NewCanvas("salesFunnelChart", 0, 0)
	_, err = EChartsFactory{}.New(canvas, cfg)
	require.NoError(t, err)
	assert.Contains(t, string(canvas.Bytes()), "Invoices")
}

func TestEChartsCustomerOverlay(t *testing.T) {
	cfg, err := charts.Customer(models.CustomerPayload{
		Customers:             []string{"Acme", "Globex"},
		Revenues:              []float64{500, 300},
		CumulativePercentages: []float64{62.5, 100},
	}, charts.MapOptions{Kind: charts.KindBar})
	require.NoError(t, err)

	b, err := BuildECharts("salesCustomerChart", 800, 400, cfg)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf))
	assert.Contains(t, buf.String(), "Cumulative %")
}

func TestEChartsUnsupportedType(t *testing.T) {
	_, err := BuildECharts("x", 100, 100, charts.RenderConfig{Type: "radar"})
	assert.Error(t, err)
}

func TestPNGRenderers(t *testing.T) {
	for _, kind := range []charts.Kind{charts.KindBar, charts.KindLine, charts.KindPie} {
		t.Run(string(kind), func(t *testing.T) {
			canvas := NewCanvas("png-"+string(kind), 640, 320)
			r, err := PNGFactory{}.New(canvas, regionConfig(t, kind))
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(canvas.Bytes()), "\x89PNG"))
			r.Destroy()
			assert.True(t, canvas.Empty())
		})
	}
}

func TestPNGFunnelFallsBackToBars(t *testing.T) {
	f := PNGFactory{}
	require.False(t, f.SupportsFunnel())

	cfg, err := charts.Funnel(models.FunnelPayload{Leads: 10, Quotes: 6, Orders: 3, Invoices: 2},
		charts.MapOptions{Kind: charts.KindFunnel, FunnelAvailable: f.SupportsFunnel()})
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg.Type)

	canvas := NewCanvas("salesFunnelChart", 640, 320)
	_, err = f.New(canvas, cfg)
	require.NoError(t, err)
	assert.False(t, canvas.Empty())
}

func TestPNGTrendWithGaps(t *testing.T) {
	cfg, err := charts.Trend(models.TrendPayload{
		Actual:   models.Series{Periods: []string{"2025-01", "2025-02"}, Sales: []float64{100, 120}},
		Forecast: models.Series{Periods: []string{"2025-03", "2025-04"}, Sales: []float64{130, 150}},
	}, charts.MapOptions{Kind: charts.KindArea, PeriodType: "MS"})
	require.NoError(t, err)

	canvas := NewCanvas("salesTrendChart", 800, 400)
	_, err = PNGFactory{}.New(canvas, cfg)
	require.NoError(t, err)
	assert.False(t, canvas.Empty())
}
