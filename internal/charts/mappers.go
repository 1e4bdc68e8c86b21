package charts

import (
	"fmt"

	"salesdash/internal/format"
	"salesdash/internal/models"
)

// MapOptions carries the request context a mapper needs beyond the payload
type MapOptions struct {
	Kind            Kind
	PeriodType      string
	SelectedDate    string
	FunnelAvailable bool
	Title           string
}

func (o MapOptions) periodType(fromPayload string) string {
	if fromPayload != "" {
		return fromPayload
	}
	return o.PeriodType
}

// Base palette shared by the category and funnel charts
var palette = []Color{
	RGBA(255, 99, 132, 1),
	RGBA(54, 162, 235, 1),
	RGBA(75, 192, 192, 1),
	RGBA(255, 206, 86, 1),
	RGBA(153, 102, 255, 1),
}

var (
	trendActual    = RGBA(78, 115, 223, 1)
	trendPredicted = RGBA(28, 200, 138, 1)
	trendForecast  = RGBA(246, 194, 62, 1)
)

func solid(c Color) Colors  { return Colors{c.WithAlpha(solidAlpha)} }
func border(c Color) Colors { return Colors{c.WithAlpha(1)} }

func paletteColors(n int, alpha float64) Colors {
	out := make(Colors, n)
	for i := range out {
		out[i] = palette[i%len(palette)].WithAlpha(alpha)
	}
	return out
}

func baseOptions(title string) Options {
	o := Options{
		Responsive: true,
		Plugins:    Plugins{Legend: Legend{Display: true, Position: "top"}},
	}
	if title != "" {
		o.Plugins.Title = &Title{Display: true, Text: title}
	}
	return o
}

func axis(title string) *Scale {
	return &Scale{Title: &AxisTitle{Display: true, Text: title}}
}

func categoryAxis(title string, rotate bool) *Scale {
	s := axis(title)
	s.Grid = &Grid{Display: false}
	if rotate {
		s.Ticks = &Ticks{AutoSkip: boolPtr(true), MaxRotation: intPtr(45), MinRotation: intPtr(45)}
	}
	return s
}

func amountAxis(title string) *Scale {
	s := axis(title)
	s.BeginAtZero = true
	s.Ticks = &Ticks{Format: FormatCurrency}
	return s
}

func sameLength(chartID string, name string, n int, others map[string]int) error {
	for field, m := range others {
		if m != n {
			return models.Malformed(chartID, "%s and %s differ in length (%d vs %d)", name, field, n, m)
		}
	}
	return nil
}

// Trend builds the actual / predicted / forecast line chart on one
// aligned period axis.
func Trend(p models.TrendPayload, o MapOptions) (RenderConfig, error) {
	const id = "salesTrendChart"
	for name, s := range map[string]models.Series{"actual": p.Actual, "predicted": p.Predicted, "forecast": p.Forecast} {
		if len(s.Periods) != len(s.Sales) {
			return RenderConfig{}, models.Malformed(id, "%s periods and sales differ in length (%d vs %d)", name, len(s.Periods), len(s.Sales))
		}
	}

	periods, aligned := AlignSeries(p.Actual, p.Predicted, p.Forecast)
	pt := o.periodType(p.PeriodType)

	series := []struct {
		label string
		color Color
		dash  []int
	}{
		{"Actual Sales (₹)", trendActual, nil},
		{"Predicted Sales (₹)", trendPredicted, []int{5, 5}},
		{"Forecasted Sales (₹)", trendForecast, []int{5, 5}},
	}

	cfg := RenderConfig{
		Type: string(KindLine),
		Data: ChartData{Labels: format.ChartLabels(periods, pt)},
	}
	for i, s := range series {
		pc := s.color
		cfg.Data.Datasets = append(cfg.Data.Datasets, Dataset{
			Label:                s.label,
			Data:                 aligned[i],
			BackgroundColor:      solid(s.color),
			BorderColor:          border(s.color),
			BorderDash:           s.dash,
			PointRadius:          intPtr(5),
			PointBackgroundColor: &pc,
			SpanGaps:             true,
			TooltipFormat:        FormatCurrency,
		})
	}

	cfg.Options = baseOptions(o.Title)
	cfg.Options.Scales = map[string]*Scale{
		"x": categoryAxis(format.PeriodName(pt), false),
		"y": amountAxis("Sales Amount (₹)"),
	}

	kind := o.Kind
	if kind == "" {
		kind = KindLine
	}
	return ApplyKind(cfg, kind, o.FunnelAvailable), nil
}

// Region builds sales per region
func Region(p models.RegionPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("salesRegionChart", "regions", len(p.Regions), map[string]int{"sales": len(p.Sales)}); err != nil {
		return RenderConfig{}, err
	}
	c := palette[4]
	cfg := RenderConfig{
		Data: ChartData{
			Labels: p.Regions,
			Datasets: []Dataset{{
				Label:           "Sales (₹)",
				Data:            Nums(p.Sales),
				BackgroundColor: solid(c),
				BorderColor:     border(c),
				BorderWidth:     1,
				TooltipFormat:   FormatCurrency,
			}},
		},
		Options: baseOptions(o.Title),
	}
	cfg.Options.Scales = map[string]*Scale{
		"x": categoryAxis("Region", true),
		"y": amountAxis("Sales Amount (₹)"),
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}

// FunnelStages are the funnel labels in pipeline order
var FunnelStages = []string{"Leads", "Quotes", "Orders", "Invoices"}

// Funnel builds the sales pipeline. Without a funnel renderer it is a
// horizontal bar chart with the widest stage on top.
func Funnel(p models.FunnelPayload, o MapOptions) (RenderConfig, error) {
	cfg := RenderConfig{
		Data: ChartData{
			Labels: append([]string(nil), FunnelStages...),
			Datasets: []Dataset{{
				Label:           "Count",
				Data:            Nums([]float64{p.Leads, p.Quotes, p.Orders, p.Invoices}),
				BackgroundColor: paletteColors(4, solidAlpha),
				BorderColor:     paletteColors(4, 1),
				BorderWidth:     1,
				TooltipFormat:   FormatCount,
			}},
		},
		Options: baseOptions(o.Title),
	}
	// Anything but an actual funnel is drawn as the horizontal fallback
	return ApplyKind(cfg, KindFunnel, o.FunnelAvailable && o.Kind == KindFunnel), nil
}

const topCustomers = 10

// Customer builds the top customers by revenue with a cumulative share line
func Customer(p models.CustomerPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("salesCustomerChart", "customers", len(p.Customers), map[string]int{
		"revenues":               len(p.Revenues),
		"cumulative_percentages": len(p.CumulativePercentages),
	}); err != nil {
		return RenderConfig{}, err
	}
	n := len(p.Customers)
	if n > topCustomers {
		n = topCustomers
	}

	revenue := palette[2]
	share := palette[0]
	cfg := RenderConfig{
		Data: ChartData{
			Labels: p.Customers[:n],
			Datasets: []Dataset{
				{
					Label:           "Revenue (₹)",
					Data:            Nums(p.Revenues[:n]),
					BackgroundColor: solid(revenue),
					BorderColor:     border(revenue),
					BorderWidth:     1,
					YAxisID:         "y",
					TooltipFormat:   FormatCurrency,
				},
				{
					Label:           "Cumulative %",
					Data:            Nums(p.CumulativePercentages[:n]),
					Type:            string(KindLine),
					BackgroundColor: Colors{share.WithAlpha(areaAlpha)},
					BorderColor:     border(share),
					YAxisID:         "y1",
					PointRadius:     intPtr(5),
					TooltipFormat:   FormatPercent,
				},
			},
		},
		Options: baseOptions(o.Title),
	}

	y := amountAxis("Revenue (₹)")
	y.Position = "left"
	y1 := axis("Cumulative %")
	y1.BeginAtZero = true
	y1.Position = "right"
	y1.Max = Num(100)
	y1.Ticks = &Ticks{Format: FormatPercent}
	cfg.Options.Scales = map[string]*Scale{
		"x":  categoryAxis("Customer", false),
		"y":  y,
		"y1": y1,
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}

// Salesperson builds sales per salesperson
func Salesperson(p models.SalespersonPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("salesSalespersonChart", "salespersons", len(p.Salespersons), map[string]int{"sales": len(p.Sales)}); err != nil {
		return RenderConfig{}, err
	}
	c := palette[1]
	cfg := RenderConfig{
		Data: ChartData{
			Labels: p.Salespersons,
			Datasets: []Dataset{{
				Label:           "Sales (₹)",
				Data:            Nums(p.Sales),
				BackgroundColor: solid(c),
				BorderColor:     border(c),
				BorderWidth:     1,
				TooltipFormat:   FormatCurrency,
			}},
		},
		Options: baseOptions(o.Title),
	}
	cfg.Options.Scales = map[string]*Scale{
		"x": categoryAxis("Salesperson", true),
		"y": amountAxis("Sales Amount (₹)"),
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}

// targetAxisMin keeps small targets from flattening the bars
const targetAxisMin = 1000000

// TargetAchievement builds target vs achieved per salesperson and period,
// in lakhs. Achieved tooltips carry the percentage of target.
func TargetAchievement(p models.TargetPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("salesTargetAchievementChart", "labels", len(p.Labels), map[string]int{
		"targets":     len(p.Targets),
		"achieved":    len(p.Achieved),
		"percentages": len(p.Percentages),
	}); err != nil {
		return RenderConfig{}, err
	}

	suffix := make([]string, len(p.Percentages))
	for i, pct := range p.Percentages {
		suffix[i] = fmt.Sprintf("(%s of Target)", format.Percent(pct))
	}

	target, achieved := palette[0], palette[2]
	cfg := RenderConfig{
		Data: ChartData{
			Labels: p.Labels,
			Datasets: []Dataset{
				{
					Label:           "Target (₹)",
					Data:            Nums(p.Targets),
					BackgroundColor: solid(target),
					BorderColor:     border(target),
					BorderWidth:     1,
					TooltipFormat:   FormatLakhs,
				},
				{
					Label:           "Achieved (₹)",
					Data:            Nums(p.Achieved),
					BackgroundColor: solid(achieved),
					BorderColor:     border(achieved),
					BorderWidth:     1,
					TooltipFormat:   FormatLakhs,
					TooltipSuffix:   suffix,
				},
			},
		},
		Options: baseOptions(o.Title),
	}

	y := axis("Amount (₹)")
	y.Min = Num(targetAxisMin)
	y.Ticks = &Ticks{Format: FormatLakhs}
	cfg.Options.Scales = map[string]*Scale{
		"x": categoryAxis("Salesperson - Period", true),
		"y": y,
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}

// Category builds the share of sales per product category
func Category(p models.CategoryPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("salesByCategoryChart", "categories", len(p.Categories), map[string]int{"sales": len(p.Sales)}); err != nil {
		return RenderConfig{}, err
	}
	cfg := RenderConfig{
		Data: ChartData{
			Labels: p.Categories,
			Datasets: []Dataset{{
				Label:           "Sales Distribution (%)",
				Data:            Nums(p.Sales),
				BackgroundColor: paletteColors(len(palette), solidAlpha),
				BorderColor:     paletteColors(len(palette), 1),
				BorderWidth:     1,
			}},
		},
		Options: baseOptions(o.Title),
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}

// GrowthRate builds month-over-month growth. With a month selected the
// last point is annotated with its growth value.
func GrowthRate(p models.GrowthPayload, o MapOptions) (RenderConfig, error) {
	const id = "salesGrowthRateChart"
	if len(p.Periods) == 0 || len(p.GrowthRates) == 0 {
		return RenderConfig{}, models.Malformed(id, "No sales growth data available for the selected period")
	}
	if err := sameLength(id, "periods", len(p.Periods), map[string]int{"growth_rates": len(p.GrowthRates)}); err != nil {
		return RenderConfig{}, err
	}

	sel := models.FilterParams{SelectedDate: o.SelectedDate}
	allMonths := !sel.HasSelectedDate()
	kind := KindLine
	if !allMonths && len(p.GrowthRates) == 1 {
		kind = KindBar
	}

	c := palette[0]
	bg := c.WithAlpha(areaAlpha)
	if kind == KindBar {
		bg = c.WithAlpha(solidAlpha)
	}
	radius := 5
	if kind == KindBar {
		radius = 0
	}
	pc := c
	labels := format.ChartLabels(p.Periods, o.periodType(p.PeriodType))

	cfg := RenderConfig{
		Type: string(kind),
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:                "Growth Rate (%)",
				Data:                 Nums(p.GrowthRates),
				BackgroundColor:      Colors{bg},
				BorderColor:          border(c),
				Fill:                 kind == KindBar,
				PointRadius:          intPtr(radius),
				PointBackgroundColor: &pc,
				SpanGaps:             true,
				TooltipFormat:        FormatPercent,
			}},
		},
		Options: baseOptions(o.Title),
	}

	rotation := 0
	if allMonths {
		rotation = 45
	}
	x := categoryAxis("Month", false)
	x.Ticks = &Ticks{AutoSkip: boolPtr(allMonths), MaxRotation: intPtr(rotation), MinRotation: intPtr(rotation)}
	y := axis("Growth Rate (%)")
	y.Ticks = &Ticks{Format: FormatPercent}
	cfg.Options.Scales = map[string]*Scale{"x": x, "y": y}

	if !allMonths {
		last := len(p.GrowthRates) - 1
		ann := &Annotation{
			Type:        "point",
			XValue:      labels[last],
			YMin:        p.GrowthRates[last],
			YMax:        p.GrowthRates[last],
			Radius:      8,
			BorderColor: c,
			Label:       "Growth: " + format.Percent(p.GrowthRates[last]),
		}
		if kind == KindBar {
			fill := c.WithAlpha(areaAlpha)
			ann.Type = "box"
			ann.YMin = 0
			ann.Radius = 0
			ann.BackgroundColor = &fill
		}
		cfg.Options.Plugins.Annotation = ann
	}
	return cfg, nil
}

// RepeatVsNew compares sales from returning and first-time customers
func RepeatVsNew(p models.RepeatVsNewPayload, o MapOptions) (RenderConfig, error) {
	if err := sameLength("repeatVsNewSalesChart", "periods", len(p.Periods), map[string]int{
		"repeat_sales": len(p.RepeatSales),
		"new_sales":    len(p.NewSales),
	}); err != nil {
		return RenderConfig{}, err
	}
	pt := o.periodType(p.PeriodType)
	repeat, fresh := palette[1], palette[0]
	cfg := RenderConfig{
		Data: ChartData{
			Labels: format.ChartLabels(p.Periods, pt),
			Datasets: []Dataset{
				{
					Label:           "Repeat Customer Sales (₹)",
					Data:            Nums(p.RepeatSales),
					BackgroundColor: solid(repeat),
					BorderColor:     border(repeat),
					BorderWidth:     1,
					TooltipFormat:   FormatCurrency,
				},
				{
					Label:           "New Customer Sales (₹)",
					Data:            Nums(p.NewSales),
					BackgroundColor: solid(fresh),
					BorderColor:     border(fresh),
					BorderWidth:     1,
					TooltipFormat:   FormatCurrency,
				},
			},
		},
		Options: baseOptions(o.Title),
	}
	cfg.Options.Scales = map[string]*Scale{
		"x": categoryAxis(format.PeriodName(pt), false),
		"y": amountAxis("Sales Amount (₹)"),
	}
	return ApplyKind(cfg, o.Kind, o.FunnelAvailable), nil
}
