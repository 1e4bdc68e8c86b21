package render

import (
	"fmt"
	"io"
	"strconv"

	gecharts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"salesdash/internal/charts"
	"salesdash/internal/logger"
)

// Chart is a go-echarts chart that can be added to a page or rendered alone
type Chart interface {
	components.Charter
	Render(w io.Writer) error
}

// EChartsFactory renders configs as embeddable ECharts HTML
type EChartsFactory struct{}

func (EChartsFactory) Name() string         { return "echarts" }
func (EChartsFactory) SupportsFunnel() bool { return true }

// EChartsRenderer is a chart rendered to HTML on its canvas
type EChartsRenderer struct {
	*baseRenderer
	chart Chart
}

// Chart returns the underlying go-echarts chart
func (r *EChartsRenderer) Chart() Chart { return r.chart }

func (f EChartsFactory) New(canvas *Canvas, cfg charts.RenderConfig) (Renderer, error) {
	w, h := canvas.Size()
	c, err := BuildECharts(canvas.ID, w, h, cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Render(canvas); err != nil {
		canvas.Clear()
		return nil, fmt.Errorf("failed to render %s: %w", canvas.ID, err)
	}
	logger.Debug("echarts renderer bound", logger.Fields{"canvas": canvas.ID, "type": cfg.Type})
	return &EChartsRenderer{baseRenderer: newBase(canvas, cfg), chart: c}, nil
}

// BuildECharts converts a render config into a go-echarts chart whose
// element id is chartID.
func BuildECharts(chartID string, width, height int, cfg charts.RenderConfig) (Chart, error) {
	initOpts := opts.Initialization{
		ChartID: chartID,
		Width:   strconv.Itoa(width) + "px",
		Height:  strconv.Itoa(height) + "px",
	}
	global := []gecharts.GlobalOpts{
		gecharts.WithInitializationOpts(initOpts),
		gecharts.WithLegendOpts(opts.Legend{Show: opts.Bool(cfg.Options.Plugins.Legend.Display), Top: "top"}),
	}
	if t := cfg.Options.Plugins.Title; t != nil && t.Display {
		global = append(global, gecharts.WithTitleOpts(opts.Title{Title: t.Text}))
	}

	switch charts.Kind(cfg.Type) {
	case charts.KindPie:
		return buildPie(cfg, global), nil
	case charts.KindFunnel:
		return buildFunnel(cfg, global), nil
	case charts.KindLine:
		return buildLine(cfg, global), nil
	case charts.KindBar:
		return buildBar(cfg, global), nil
	}
	return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
}

func axisOpts(cfg charts.RenderConfig) (opts.XAxis, opts.YAxis) {
	x := opts.XAxis{NameLocation: "middle", NameGap: 30}
	y := opts.YAxis{NameLocation: "middle", NameGap: 60}
	if s := cfg.Scale("x"); s != nil {
		x.Name = s.TitleText()
		if s.Ticks != nil && s.Ticks.MaxRotation != nil && *s.Ticks.MaxRotation > 0 {
			x.AxisLabel = &opts.AxisLabel{Rotate: float64(*s.Ticks.MaxRotation)}
			x.NameGap = 60
		}
	}
	if s := cfg.Scale("y"); s != nil {
		y.Name = s.TitleText()
		if s.Min != nil {
			y.Min = *s.Min
		}
		if s.Max != nil {
			y.Max = *s.Max
		}
	}
	return x, y
}

func lineData(ds charts.Dataset) []opts.LineData {
	out := make([]opts.LineData, len(ds.Data))
	for i, v := range ds.Data {
		if v == nil {
			out[i] = opts.LineData{Value: nil}
			continue
		}
		out[i] = opts.LineData{Value: *v}
	}
	return out
}

func barData(ds charts.Dataset) []opts.BarData {
	perPoint := len(ds.BackgroundColor) > 1
	out := make([]opts.BarData, len(ds.Data))
	for i, v := range ds.Data {
		d := opts.BarData{Value: nil}
		if v != nil {
			d.Value = *v
		}
		if perPoint {
			d.ItemStyle = &opts.ItemStyle{Color: ds.BackgroundColor.At(i).String()}
		}
		out[i] = d
	}
	return out
}

func lineSeriesOpts(ds charts.Dataset, yAxisIndex int) []gecharts.SeriesOpts {
	so := []gecharts.SeriesOpts{
		gecharts.WithLineChartOpts(opts.LineChart{ConnectNulls: opts.Bool(ds.SpanGaps), YAxisIndex: yAxisIndex}),
		gecharts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BorderColor.At(0).String()}),
	}
	style := opts.LineStyle{Color: ds.BorderColor.At(0).String()}
	if len(ds.BorderDash) > 0 {
		style.Type = "dashed"
	}
	so = append(so, gecharts.WithLineStyleOpts(style))
	if ds.Fill {
		so = append(so, gecharts.WithAreaStyleOpts(opts.AreaStyle{
			Color:   ds.BackgroundColor.At(0).WithAlpha(1).String(),
			Opacity: float32(ds.BackgroundColor.At(0).A),
		}))
	}
	return so
}

func annotationOpts(cfg charts.RenderConfig) []gecharts.SeriesOpts {
	a := cfg.Options.Plugins.Annotation
	if a == nil {
		return nil
	}
	return []gecharts.SeriesOpts{
		gecharts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
			Name:       a.Label,
			Coordinate: []interface{}{a.XValue, a.YMax},
			Label:      &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		}),
	}
}

func buildLine(cfg charts.RenderConfig, global []gecharts.GlobalOpts) Chart {
	x, y := axisOpts(cfg)
	line := gecharts.NewLine()
	line.SetGlobalOptions(append(global,
		gecharts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		gecharts.WithXAxisOpts(x),
		gecharts.WithYAxisOpts(y),
	)...)
	line.SetXAxis(cfg.Data.Labels)
	for i, ds := range cfg.Data.Datasets {
		so := lineSeriesOpts(ds, 0)
		if i == len(cfg.Data.Datasets)-1 {
			so = append(so, annotationOpts(cfg)...)
		}
		line.AddSeries(ds.Label, lineData(ds), so...)
	}
	return line
}

func buildBar(cfg charts.RenderConfig, global []gecharts.GlobalOpts) Chart {
	x, y := axisOpts(cfg)
	bar := gecharts.NewBar()
	bar.SetGlobalOptions(append(global,
		gecharts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		gecharts.WithXAxisOpts(x),
		gecharts.WithYAxisOpts(y),
	)...)
	bar.SetXAxis(cfg.Data.Labels)

	var overlays []charts.Dataset
	for _, ds := range cfg.Data.Datasets {
		if ds.Type == string(charts.KindLine) {
			overlays = append(overlays, ds)
			continue
		}
		so := []gecharts.SeriesOpts{
			gecharts.WithItemStyleOpts(opts.ItemStyle{
				Color:       ds.BackgroundColor.At(0).String(),
				BorderColor: ds.BorderColor.At(0).String(),
			}),
		}
		bar.AddSeries(ds.Label, barData(ds), append(so, annotationOpts(cfg)...)...)
	}

	if len(overlays) > 0 {
		if s := cfg.Scale("y1"); s != nil {
			// the second y axis sits on the right
			y1 := opts.YAxis{Name: s.TitleText()}
			if s.Max != nil {
				y1.Max = *s.Max
			}
			bar.ExtendYAxis(y1)
		}
		line := gecharts.NewLine()
		line.SetXAxis(cfg.Data.Labels)
		for _, ds := range overlays {
			axis := 0
			if ds.YAxisID == "y1" {
				axis = 1
			}
			line.AddSeries(ds.Label, lineData(ds), lineSeriesOpts(ds, axis)...)
		}
		bar.Overlap(line)
	}

	if cfg.Options.IndexAxis == "y" {
		bar.XYReversal()
	}
	return bar
}

func buildPie(cfg charts.RenderConfig, global []gecharts.GlobalOpts) Chart {
	pie := gecharts.NewPie()
	pie.SetGlobalOptions(append(global,
		gecharts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: "{b}: {c} ({d}%)"}),
	)...)
	for _, ds := range cfg.Data.Datasets {
		data := make([]opts.PieData, 0, len(ds.Data))
		for i, v := range ds.Data {
			if v == nil || i >= len(cfg.Data.Labels) {
				continue
			}
			data = append(data, opts.PieData{
				Name:      cfg.Data.Labels[i],
				Value:     *v,
				ItemStyle: &opts.ItemStyle{Color: ds.BackgroundColor.At(i).String()},
			})
		}
		pie.AddSeries(ds.Label, data)
	}
	return pie
}

func buildFunnel(cfg charts.RenderConfig, global []gecharts.GlobalOpts) Chart {
	funnel := gecharts.NewFunnel()
	funnel.SetGlobalOptions(append(global,
		gecharts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)...)
	for _, ds := range cfg.Data.Datasets {
		data := make([]opts.FunnelData, 0, len(ds.Data))
		for i, v := range ds.Data {
			if v == nil || i >= len(cfg.Data.Labels) {
				continue
			}
			data = append(data, opts.FunnelData{Name: cfg.Data.Labels[i], Value: *v})
		}
		funnel.AddSeries(ds.Label, data)
	}
	return funnel
}
