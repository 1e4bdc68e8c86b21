package dashboard

import (
	"net/url"
	"time"

	"salesdash/internal/charts"
	"salesdash/internal/config"
	"salesdash/internal/fetchers"
	"salesdash/internal/models"
)

// Chart ids
const (
	ChartTrend       = "salesTrendChart"
	ChartRegion      = "salesRegionChart"
	ChartFunnel      = "salesFunnelChart"
	ChartCustomer    = "salesCustomerChart"
	ChartSalesperson = "salesSalespersonChart"
	ChartTarget      = "salesTargetAchievementChart"
	ChartCategory    = "salesByCategoryChart"
	ChartGrowth      = "salesGrowthRateChart"
	ChartRepeatVsNew = "repeatVsNewSalesChart"
)

// ModalCanvasID is the fullscreen canvas
const ModalCanvasID = "modalCanvas"

const msgFutureDate = "Selected date is in the future. Please choose an earlier date."

// QueryFunc builds the request query for a chart. now is used by charts
// whose window depends on the current date.
type QueryFunc func(p models.FilterParams, now time.Time) (url.Values, error)

// BuildFunc validates a payload and maps it to a render config
type BuildFunc func(chartID string, body []byte, o charts.MapOptions) (charts.RenderConfig, error)

// Descriptor is everything needed to update one chart
type Descriptor struct {
	ID        string
	CanvasID  string
	LoadingID string
	ErrorID   string
	ControlID string
	Title     string
	Kind      charts.Kind
	Path      string
	Query     QueryFunc
	Schema    *fetchers.Schema
	Build     BuildFunc
	// Restyle redraws a built config with another kind; nil means ApplyKind
	Restyle charts.Restyler
}

// Registry is the fixed, ordered table of chart descriptors
type Registry struct {
	order []string
	byID  map[string]*Descriptor
}

func mapper[P any](schema *fetchers.Schema, m func(P, charts.MapOptions) (charts.RenderConfig, error)) BuildFunc {
	return func(chartID string, body []byte, o charts.MapOptions) (charts.RenderConfig, error) {
		var p P
		if err := fetchers.Decode(chartID, body, schema, &p); err != nil {
			return charts.RenderConfig{}, err
		}
		return m(p, o)
	}
}

var (
	seriesSchema = `{"type": "object", "properties": {
		"periods": {"type": "array", "items": {"type": "string"}},
		"sales": {"type": "array", "items": {"type": "number"}}
	}}`
	trendSchema = fetchers.MustSchema("sales-trend", `{
		"type": "object",
		"properties": {"actual": `+seriesSchema+`, "predicted": `+seriesSchema+`, "forecast": `+seriesSchema+`},
		"required": ["actual", "predicted", "forecast"]
	}`)
	regionSchema      = fetchers.ArraysSchema("sales-by-region", []string{"regions"}, []string{"sales"})
	customerSchema    = fetchers.ArraysSchema("sales-by-customer", []string{"customers"}, []string{"revenues", "cumulative_percentages"})
	targetSchema      = fetchers.ArraysSchema("sales-target-vs-achievement", []string{"labels"}, []string{"targets", "achieved", "percentages"})
	categorySchema    = fetchers.ArraysSchema("sales-by-category", []string{"categories"}, []string{"sales"})
	growthSchema      = fetchers.ArraysSchema("sales-growth-rate", []string{"periods"}, []string{"growth_rates"})
	repeatVsNewSchema = fetchers.ArraysSchema("repeat-vs-new-sales", []string{"periods"}, []string{"repeat_sales", "new_sales"})
)

// NewRegistry builds the nine chart descriptors, applying any kind and
// title overrides from layout.
func NewRegistry(layout *config.Layout) *Registry {
	descs := []*Descriptor{
		{
			ID: ChartTrend, LoadingID: "chartLoading", ErrorID: "sales-trend-error",
			Title: "Monthly Sales Trend", Kind: charts.KindLine,
			Path: fetchers.PathSalesTrend, Query: trendQuery,
			Schema: trendSchema, Build: mapper(trendSchema, charts.Trend),
		},
		{
			ID: ChartRegion, LoadingID: "regionChartLoading", ErrorID: "sales-region-error",
			Title: "Sales by Region", Kind: charts.KindBar,
			Path: fetchers.PathSalesRegion, Query: regionQuery,
			Schema: regionSchema, Build: mapper(regionSchema, charts.Region),
		},
		{
			ID: ChartFunnel, LoadingID: "funnelLoading", ErrorID: "sales-funnel-error",
			Title: "Sales Funnel", Kind: charts.KindFunnel,
			Path: fetchers.PathSalesFunnel, Query: selectedDateQuery,
			Schema: fetchers.FunnelSchema, Build: mapper(fetchers.FunnelSchema, charts.Funnel),
			Restyle: charts.RestyleFunnel,
		},
		{
			ID: ChartCustomer, LoadingID: "customerLoading", ErrorID: "sales-customer-error",
			Title: "Top Customers", Kind: charts.KindBar,
			Path: fetchers.PathSalesCustomer, Query: selectedDateQuery,
			Schema: customerSchema, Build: mapper(customerSchema, charts.Customer),
		},
		{
			ID: ChartSalesperson, LoadingID: "salespersonLoading", ErrorID: "sales-salesperson-error",
			Title: "Sales by Salesperson", Kind: charts.KindBar,
			Path: fetchers.PathSalesperson, Query: selectedDateQuery,
			Schema: fetchers.SalespersonSchema, Build: mapper(fetchers.SalespersonSchema, charts.Salesperson),
		},
		{
			ID: ChartTarget, LoadingID: "targetAchievementLoading", ErrorID: "sales-target-achievement-error",
			Title: "Target vs Achievement", Kind: charts.KindBar,
			Path: fetchers.PathTargetAchieved, Query: selectedDateQuery,
			Schema: targetSchema, Build: mapper(targetSchema, charts.TargetAchievement),
		},
		{
			ID: ChartCategory, LoadingID: "categoryLoading", ErrorID: "sales-category-error",
			Title: "Sales by Category", Kind: charts.KindPie,
			Path: fetchers.PathSalesCategory, Query: periodQuery,
			Schema: categorySchema, Build: mapper(categorySchema, charts.Category),
		},
		{
			ID: ChartGrowth, LoadingID: "growthRateLoading", ErrorID: "sales-growth-rate-error",
			Title: "Sales Growth Rate", Kind: charts.KindLine,
			Path: fetchers.PathGrowthRate, Query: growthQuery,
			Schema: growthSchema, Build: mapper(growthSchema, charts.GrowthRate),
			Restyle: charts.KeepKind,
		},
		{
			ID: ChartRepeatVsNew, LoadingID: "repeatVsNewLoading", ErrorID: "repeat-vs-new-error",
			Title: "Repeat vs New Customer Sales", Kind: charts.KindBar,
			Path: fetchers.PathRepeatVsNew, Query: periodQuery,
			Schema: repeatVsNewSchema, Build: mapper(repeatVsNewSchema, charts.RepeatVsNew),
		},
	}

	r := &Registry{byID: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		d.CanvasID = d.ID
		d.ControlID = "fullscreen-" + d.ID
		if layout != nil {
			if o, ok := layout.For(d.ID); ok {
				if k, err := charts.ParseKind(o.Kind); err == nil {
					d.Kind = k
				}
				if o.Title != "" {
					d.Title = o.Title
				}
			}
		}
		r.order = append(r.order, d.ID)
		r.byID[d.ID] = d
	}
	return r
}

// Get returns a descriptor by chart id
func (r *Registry) Get(id string) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// IDs lists chart ids in display order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Kinds returns each chart's initial kind
func (r *Registry) Kinds() map[string]charts.Kind {
	out := make(map[string]charts.Kind, len(r.order))
	for _, id := range r.order {
		out[id] = r.byID[id].Kind
	}
	return out
}

// CanvasIDs lists every chart canvas plus the fullscreen modal
func (r *Registry) CanvasIDs() []string {
	ids := make([]string, 0, len(r.order)+1)
	for _, id := range r.order {
		ids = append(ids, r.byID[id].CanvasID)
	}
	return append(ids, ModalCanvasID)
}

func trendQuery(p models.FilterParams, _ time.Time) (url.Values, error) {
	q := url.Values{}
	q.Set("period_type", p.PeriodType)
	q.Set("start_date", p.StartDate)
	q.Set("end_date", p.EndDate)
	q.Set("forecast_start", p.ForecastStart)
	if p.SelectedDate != "" {
		q.Set("selected_date", p.SelectedDate)
	}
	return q, nil
}

func regionQuery(p models.FilterParams, _ time.Time) (url.Values, error) {
	q := url.Values{}
	if p.Region != "" && p.Region != "all" {
		q.Set("region_label", p.Region)
	}
	if p.SelectedDate != "" {
		q.Set("selected_date", p.SelectedDate)
	}
	return q, nil
}

func selectedDateQuery(p models.FilterParams, _ time.Time) (url.Values, error) {
	q := url.Values{}
	if p.SelectedDate != "" {
		q.Set("selected_date", p.SelectedDate)
	}
	return q, nil
}

// periodQuery sends either the selected date or the global range
func periodQuery(p models.FilterParams, _ time.Time) (url.Values, error) {
	q := url.Values{}
	q.Set("period_type", p.PeriodType)
	if p.SelectedDate != "" {
		q.Set("selected_date", p.SelectedDate)
	} else {
		q.Set("start_date", p.StartDate)
		q.Set("end_date", p.EndDate)
	}
	return q, nil
}

// growthQuery always asks for monthly growth. A selected month is
// compared with the one before it; otherwise the global range is used,
// capped at today.
func growthQuery(p models.FilterParams, now time.Time) (url.Values, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	q := url.Values{}
	q.Set("period_type", "MS")

	if p.HasSelectedDate() {
		sel, err := time.Parse("2006-01-02", p.SelectedDate)
		if err != nil {
			return nil, models.NewChartError(ChartGrowth, models.ErrInvalidFilter, "Selected date must be a YYYY-MM-DD date.", err)
		}
		monthStart := time.Date(sel.Year(), sel.Month(), 1, 0, 0, 0, 0, time.UTC)
		monthEnd := monthStart.AddDate(0, 1, -1)
		if monthEnd.After(today) {
			return nil, models.NewChartError(ChartGrowth, models.ErrInvalidFilter, msgFutureDate, nil)
		}
		q.Set("start_date", monthStart.AddDate(0, -1, 0).Format("2006-01-02"))
		q.Set("end_date", monthEnd.Format("2006-01-02"))
		return q, nil
	}

	end := p.EndDate
	if e, err := time.Parse("2006-01-02", end); err == nil && e.After(today) {
		end = today.Format("2006-01-02")
	}
	q.Set("start_date", p.StartDate)
	q.Set("end_date", end)
	return q, nil
}
