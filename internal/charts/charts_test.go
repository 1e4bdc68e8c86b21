package charts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/models"
)

func values(ps []*float64) []interface{} {
	out := make([]interface{}, len(ps))
	for i, p := range ps {
		if p == nil {
			out[i] = nil
		} else {
			out[i] = *p
		}
	}
	return out
}

func TestAlignSeries(t *testing.T) {
	actual := models.Series{Periods: []string{"2025-02", "2025-01"}, Sales: []float64{20, 10}}
	predicted := models.Series{Periods: []string{"2025-02", "2025-03"}, Sales: []float64{21, 31}}
	forecast := models.Series{Periods: []string{"2025-04"}, Sales: []float64{40}}

	periods, aligned := AlignSeries(actual, predicted, forecast)

	assert.Equal(t, []string{"2025-01", "2025-02", "2025-03", "2025-04"}, periods)
	require.Len(t, aligned, 3)
	for _, row := range aligned {
		assert.Len(t, row, len(periods))
	}
	assert.Equal(t, []interface{}{10.0, 20.0, nil, nil}, values(aligned[0]))
	assert.Equal(t, []interface{}{nil, 21.0, 31.0, nil}, values(aligned[1]))
	assert.Equal(t, []interface{}{nil, nil, nil, 40.0}, values(aligned[2]))
}

func TestAlignSeriesEmpty(t *testing.T) {
	periods, aligned := AlignSeries(models.Series{}, models.Series{})
	assert.Empty(t, periods)
	assert.Len(t, aligned, 2)
}

func TestTrend(t *testing.T) {
	p := models.TrendPayload{
		Actual:     models.Series{Periods: []string{"2025-01", "2025-02"}, Sales: []float64{100, 200}},
		Predicted:  models.Series{Periods: []string{"2025-02"}, Sales: []float64{210}},
		Forecast:   models.Series{Periods: []string{"2025-03"}, Sales: []float64{250}},
		PeriodType: "MS",
	}

	cfg, err := Trend(p, MapOptions{Kind: KindLine, PeriodType: "QS"})
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, []string{"Jan 2025", "Feb 2025", "Mar 2025"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 3)
	assert.Nil(t, cfg.Data.Datasets[0].Data[2], "actual has no March value")
	assert.Equal(t, []int{5, 5}, cfg.Data.Datasets[1].BorderDash)
	assert.True(t, cfg.Data.Datasets[0].SpanGaps)
	assert.Equal(t, "Month", cfg.Scale("x").TitleText())
	assert.Equal(t, "#4e73df", cfg.Data.Datasets[0].BorderColor[0].Hex())
}

func TestTrendArea(t *testing.T) {
	p := models.TrendPayload{Actual: models.Series{Periods: []string{"2024"}, Sales: []float64{1}}}

	cfg, err := Trend(p, MapOptions{Kind: KindArea, PeriodType: "YS"})
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	for _, ds := range cfg.Data.Datasets {
		assert.True(t, ds.Fill)
		assert.Equal(t, 0.2, ds.BackgroundColor[0].A)
	}
	assert.Equal(t, "Year", cfg.Scale("x").TitleText())
}

func TestTrendRejectsRaggedSeries(t *testing.T) {
	p := models.TrendPayload{Actual: models.Series{Periods: []string{"2025-01"}, Sales: nil}}
	_, err := Trend(p, MapOptions{})
	assert.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestFunnelFallback(t *testing.T) {
	p := models.FunnelPayload{Leads: 100, Quotes: 60, Orders: 30, Invoices: 20}

	cfg, err := Funnel(p, MapOptions{Kind: KindFunnel, FunnelAvailable: false})
	require.NoError(t, err)

	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "y", cfg.Options.IndexAxis)
	assert.Equal(t, "Count", cfg.Scale("x").TitleText())
	assert.True(t, cfg.Scale("x").Reverse)
	assert.True(t, cfg.Scale("x").BeginAtZero)
	assert.Equal(t, "Stage", cfg.Scale("y").TitleText())
	assert.Equal(t, FunnelStages, cfg.Data.Labels)
	assert.Equal(t, []interface{}{100.0, 60.0, 30.0, 20.0}, values(cfg.Data.Datasets[0].Data))
}

func TestFunnelAvailable(t *testing.T) {
	cfg, err := Funnel(models.FunnelPayload{Leads: 1}, MapOptions{Kind: KindFunnel, FunnelAvailable: true})
	require.NoError(t, err)

	assert.Equal(t, "funnel", cfg.Type)
	assert.Equal(t, "", cfg.Options.IndexAxis)
	require.NotNil(t, cfg.Scale("x").Display)
	assert.False(t, *cfg.Scale("x").Display)
}

func TestFunnelOtherKindsUseHorizontalBars(t *testing.T) {
	cfg, err := Funnel(models.FunnelPayload{}, MapOptions{Kind: KindPie, FunnelAvailable: true})
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "y", cfg.Options.IndexAxis)
}

func TestRestyleFunnelMatchesMapper(t *testing.T) {
	p := models.FunnelPayload{Leads: 100, Quotes: 60, Orders: 30, Invoices: 20}
	for _, kind := range []Kind{KindBar, KindLine, KindArea, KindPie, KindFunnel} {
		for _, available := range []bool{true, false} {
			built, err := Funnel(p, MapOptions{Kind: kind, FunnelAvailable: available})
			require.NoError(t, err)
			base, err := Funnel(p, MapOptions{Kind: KindFunnel, FunnelAvailable: true})
			require.NoError(t, err)

			restyled := RestyleFunnel(base, kind, available)
			assert.Equal(t, built.Type, restyled.Type, "kind %s, funnel %v", kind, available)
			assert.Equal(t, built.Options.IndexAxis, restyled.Options.IndexAxis, "kind %s, funnel %v", kind, available)
		}
	}
}

func TestKeepKind(t *testing.T) {
	base, err := GrowthRate(models.GrowthPayload{Periods: []string{"2025-01", "2025-02"}, GrowthRates: []float64{1, 2}}, MapOptions{PeriodType: "MS"})
	require.NoError(t, err)
	cfg := KeepKind(base, KindPie, true)
	assert.Equal(t, base.Type, cfg.Type)
	cfg.Data.Labels[0] = "changed"
	assert.Equal(t, "Jan 2025", base.Data.Labels[0])
}

func TestRegionLengthMismatch(t *testing.T) {
	_, err := Region(models.RegionPayload{Regions: []string{"N", "S"}, Sales: []float64{1}}, MapOptions{})
	assert.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestRegion(t *testing.T) {
	cfg, err := Region(models.RegionPayload{Regions: []string{"North"}, Sales: []float64{1234.5}}, MapOptions{Kind: KindBar})
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, "Region", cfg.Scale("x").TitleText())
	assert.Equal(t, "Sales (₹): ₹1,234.50", cfg.TooltipText(0, 0))
}

func TestCustomerTopTen(t *testing.T) {
	p := models.CustomerPayload{}
	for i := 0; i < 15; i++ {
		p.Customers = append(p.Customers, string(rune('A'+i)))
		p.Revenues = append(p.Revenues, float64(1000-i))
		p.CumulativePercentages = append(p.CumulativePercentages, float64(i*6))
	}

	cfg, err := Customer(p, MapOptions{Kind: KindBar})
	require.NoError(t, err)

	assert.Len(t, cfg.Data.Labels, 10)
	for _, ds := range cfg.Data.Datasets {
		assert.Len(t, ds.Data, 10)
	}
	assert.Equal(t, "y1", cfg.Data.Datasets[1].YAxisID)
	assert.Equal(t, "line", cfg.Data.Datasets[1].Type)
	require.NotNil(t, cfg.Scale("y1").Max)
	assert.Equal(t, 100.0, *cfg.Scale("y1").Max)
	assert.Equal(t, "right", cfg.Scale("y1").Position)
	assert.Equal(t, "Cumulative %: 12.00%", cfg.TooltipText(1, 2))
}

func TestTargetAchievement(t *testing.T) {
	p := models.TargetPayload{
		Labels:      []string{"Asha - 2025-Q1"},
		Targets:     []float64{2000000},
		Achieved:    []float64{1500000},
		Percentages: []float64{75},
	}

	cfg, err := TargetAchievement(p, MapOptions{Kind: KindBar})
	require.NoError(t, err)

	y := cfg.Scale("y")
	require.NotNil(t, y.Min)
	assert.Equal(t, 1000000.0, *y.Min)
	assert.False(t, y.BeginAtZero)
	assert.Equal(t, "₹15L", TickText(y, 1500000))
	assert.Equal(t, "Target (₹): ₹20.00L", cfg.TooltipText(0, 0))
	assert.Equal(t, "Achieved (₹): ₹15.00L (75.00% of Target)", cfg.TooltipText(1, 0))
}

func TestTargetAchievementMismatch(t *testing.T) {
	p := models.TargetPayload{Labels: []string{"a"}, Targets: []float64{1}, Achieved: []float64{1}}
	_, err := TargetAchievement(p, MapOptions{})
	assert.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestCategory(t *testing.T) {
	cfg, err := Category(models.CategoryPayload{Categories: []string{"Tools", "Paint"}, Sales: []float64{60, 40}}, MapOptions{Kind: KindPie})
	require.NoError(t, err)

	assert.Equal(t, "pie", cfg.Type)
	ds := cfg.Data.Datasets[0]
	assert.Equal(t, "Sales Distribution (%)", ds.Label)
	assert.Len(t, ds.BackgroundColor, 5)
	assert.Equal(t, "Paint: 40%", cfg.TooltipText(0, 1))
}

func TestGrowthRateAllMonths(t *testing.T) {
	p := models.GrowthPayload{Periods: []string{"2025-01", "2025-02", "2025-03"}, GrowthRates: []float64{1.5, -2, 3.25}, PeriodType: "MS"}

	cfg, err := GrowthRate(p, MapOptions{SelectedDate: "all"})
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	assert.Nil(t, cfg.Options.Plugins.Annotation)
	assert.Equal(t, 45, *cfg.Scale("x").Ticks.MaxRotation)
}

func TestGrowthRateSelectedMonth(t *testing.T) {
	p := models.GrowthPayload{Periods: []string{"2025-02", "2025-03"}, GrowthRates: []float64{4, 12.345}, PeriodType: "MS"}

	cfg, err := GrowthRate(p, MapOptions{SelectedDate: "2025-03-01"})
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	ann := cfg.Options.Plugins.Annotation
	require.NotNil(t, ann)
	assert.Equal(t, "Mar 2025", ann.XValue)
	assert.Equal(t, "point", ann.Type)
	assert.True(t, strings.HasPrefix(ann.Label, "Growth: 12.3"), ann.Label)
	assert.Equal(t, 0, *cfg.Scale("x").Ticks.MaxRotation)
}

func TestGrowthRateSinglePointIsBar(t *testing.T) {
	p := models.GrowthPayload{Periods: []string{"2025-03"}, GrowthRates: []float64{5}, PeriodType: "MS"}

	cfg, err := GrowthRate(p, MapOptions{SelectedDate: "2025-03-01"})
	require.NoError(t, err)

	assert.Equal(t, "bar", cfg.Type)
	require.NotNil(t, cfg.Options.Plugins.Annotation)
	assert.Equal(t, "box", cfg.Options.Plugins.Annotation.Type)
	assert.Equal(t, "Growth: 5.00%", cfg.Options.Plugins.Annotation.Label)
}

func TestGrowthRateEmpty(t *testing.T) {
	_, err := GrowthRate(models.GrowthPayload{}, MapOptions{})
	require.ErrorIs(t, err, models.ErrMalformedPayload)
	assert.Equal(t, "No sales growth data available for the selected period", models.UserMessage(err))
}

func TestRepeatVsNew(t *testing.T) {
	p := models.RepeatVsNewPayload{Periods: []string{"2025-Q1"}, RepeatSales: []float64{10}, NewSales: []float64{5}, PeriodType: "QS"}

	cfg, err := RepeatVsNew(p, MapOptions{Kind: KindLine})
	require.NoError(t, err)

	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, "Quarter", cfg.Scale("x").TitleText())
	assert.Equal(t, []string{"2025-Q1"}, cfg.Data.Labels)
}

func TestApplyKindRoundTrip(t *testing.T) {
	base, err := Salesperson(models.SalespersonPayload{Salespersons: []string{"A"}, Sales: []float64{1}}, MapOptions{Kind: KindBar})
	require.NoError(t, err)

	area := ApplyKind(base, KindArea, false)
	assert.Equal(t, "line", area.Type)
	assert.True(t, area.Data.Datasets[0].Fill)
	assert.Equal(t, 0.2, area.Data.Datasets[0].BackgroundColor[0].A)

	funnel := ApplyKind(area, KindFunnel, false)
	assert.Equal(t, "bar", funnel.Type)
	assert.Equal(t, "y", funnel.Options.IndexAxis)

	bar := ApplyKind(base, KindBar, false)
	assert.Equal(t, "", bar.Options.IndexAxis)
	assert.False(t, bar.Data.Datasets[0].Fill)
	assert.Equal(t, 0.6, bar.Data.Datasets[0].BackgroundColor[0].A)
	assert.Equal(t, "Salesperson", bar.Scale("x").TitleText())

	// base must be untouched
	assert.Equal(t, 0.6, base.Data.Datasets[0].BackgroundColor[0].A)
}

func TestRenderConfigJSON(t *testing.T) {
	cfg, err := Trend(models.TrendPayload{
		Actual:   models.Series{Periods: []string{"2025-01"}, Sales: []float64{1}},
		Forecast: models.Series{Periods: []string{"2025-02"}, Sales: []float64{2}},
	}, MapOptions{Kind: KindLine, PeriodType: "MS"})
	require.NoError(t, err)

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data := decoded["data"].(map[string]interface{})
	datasets := data["datasets"].([]interface{})
	first := datasets[0].(map[string]interface{})

	assert.Equal(t, []interface{}{1.0, nil}, first["data"])
	assert.Equal(t, "rgba(78, 115, 223, 1)", first["borderColor"])
}

func TestParseKind(t *testing.T) {
	for _, k := range []string{"bar", "line", "area", "pie", "funnel"} {
		_, err := ParseKind(k)
		assert.NoError(t, err)
	}
	_, err := ParseKind("radar")
	assert.Error(t, err)
}
