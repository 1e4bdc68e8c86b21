package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"salesdash/internal/charts"
)

// PNGFactory renders configs as static PNG images. It has no funnel
// renderer, so funnels arrive here already converted to bars.
type PNGFactory struct{}

func (PNGFactory) Name() string         { return "png" }
func (PNGFactory) SupportsFunnel() bool { return false }

type pngGraph interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (f PNGFactory) New(canvas *Canvas, cfg charts.RenderConfig) (Renderer, error) {
	w, h := canvas.Size()
	graph, err := buildPNG(cfg, w, h)
	if err != nil {
		return nil, err
	}
	if err := graph.Render(chart.PNG, canvas); err != nil {
		canvas.Clear()
		return nil, fmt.Errorf("failed to render %s: %w", canvas.ID, err)
	}
	return newBase(canvas, cfg), nil
}

func drawingColor(c charts.Color) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: uint8(c.A * 255)}
}

func chartTitle(cfg charts.RenderConfig) string {
	if t := cfg.Options.Plugins.Title; t != nil && t.Display {
		return t.Text
	}
	return ""
}

func buildPNG(cfg charts.RenderConfig, w, h int) (pngGraph, error) {
	switch charts.Kind(cfg.Type) {
	case charts.KindPie:
		return pieGraph(cfg, w, h), nil
	case charts.KindLine:
		return lineGraph(cfg, w, h), nil
	case charts.KindBar, charts.KindFunnel:
		return barGraph(cfg, w, h), nil
	}
	return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
}

// barGraph draws every dataset's bars side by side per label. Overlay
// lines are drawn as bars too since go-chart bar charts have one series.
func barGraph(cfg charts.RenderConfig, w, h int) *chart.BarChart {
	multi := len(cfg.Data.Datasets) > 1
	var bars []chart.Value
	for i, label := range cfg.Data.Labels {
		for _, ds := range cfg.Data.Datasets {
			if i >= len(ds.Data) || ds.Data[i] == nil {
				continue
			}
			name := label
			if multi {
				name = fmt.Sprintf("%s (%s)", label, ds.Label)
			}
			bars = append(bars, chart.Value{
				Value: *ds.Data[i],
				Label: name,
				Style: chart.Style{
					FillColor:   drawingColor(ds.BackgroundColor.At(i)),
					StrokeColor: drawingColor(ds.BorderColor.At(i)),
					StrokeWidth: 1,
				},
			})
		}
	}

	y := chart.YAxis{Name: cfg.Scale("y").TitleText()}
	if s := cfg.Scale("y"); s != nil && s.Min != nil {
		top := *s.Min
		for _, b := range bars {
			if b.Value > top {
				top = b.Value
			}
		}
		y.Range = &chart.ContinuousRange{Min: *s.Min, Max: top * 1.1}
	}
	barWidth := 40
	if n := len(bars); n > 0 && w/n < 60 {
		barWidth = w / n / 2
	}
	return &chart.BarChart{
		Title:      chartTitle(cfg),
		TitleStyle: chart.Style{FontSize: 14},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      w,
		Height:     h,
		BarWidth:   barWidth,
		XAxis:      chart.Style{FontSize: 8, TextRotationDegrees: 45},
		YAxis:      y,
		Bars:       bars,
	}
}

// lineGraph plots each dataset against the label index. Missing points
// are left out so the line skips them.
func lineGraph(cfg charts.RenderConfig, w, h int) *chart.Chart {
	ticks := make([]chart.Tick, len(cfg.Data.Labels))
	for i, l := range cfg.Data.Labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	graph := &chart.Chart{
		Title:      chartTitle(cfg),
		TitleStyle: chart.Style{FontSize: 14},
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Width:      w,
		Height:     h,
		XAxis:      chart.XAxis{Name: cfg.Scale("x").TitleText(), Ticks: ticks},
		YAxis:      chart.YAxis{Name: cfg.Scale("y").TitleText()},
	}

	for _, ds := range cfg.Data.Datasets {
		var xs, ys []float64
		for i, v := range ds.Data {
			if v == nil {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
		}
		if len(xs) == 0 {
			continue
		}
		if len(xs) == 1 {
			// go-chart needs two points to draw a range
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
		}
		style := chart.Style{
			StrokeColor: drawingColor(ds.BorderColor.At(0)),
			StrokeWidth: 2,
			DotColor:    drawingColor(ds.BorderColor.At(0)),
			DotWidth:    3,
		}
		if len(ds.BorderDash) > 0 {
			style.StrokeDashArray = []float64{5, 5}
		}
		if ds.Fill {
			style.FillColor = drawingColor(ds.BackgroundColor.At(0))
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    ds.Label,
			Style:   style,
			XValues: xs,
			YValues: ys,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

func pieGraph(cfg charts.RenderConfig, w, h int) *chart.PieChart {
	var values []chart.Value
	if len(cfg.Data.Datasets) > 0 {
		ds := cfg.Data.Datasets[0]
		for i, v := range ds.Data {
			if v == nil || i >= len(cfg.Data.Labels) {
				continue
			}
			values = append(values, chart.Value{
				Value: *v,
				Label: cfg.Data.Labels[i],
				Style: chart.Style{FillColor: drawingColor(ds.BackgroundColor.At(i))},
			})
		}
	}
	return &chart.PieChart{
		Title:  chartTitle(cfg),
		Width:  w,
		Height: h,
		Values: values,
	}
}
