// Package charts maps metrics API payloads into render configurations.
//
// A RenderConfig is renderer-neutral: it serialises to the
// {type, data, options} shape browser charting libraries accept and is
// read directly by the ECharts and PNG renderers in internal/render.
package charts

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is a chart presentation the user can pick
type Kind string

const (
	KindBar    Kind = "bar"
	KindLine   Kind = "line"
	KindArea   Kind = "area"
	KindPie    Kind = "pie"
	KindFunnel Kind = "funnel"
)

// ParseKind validates a kind string
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBar, KindLine, KindArea, KindPie, KindFunnel:
		return k, nil
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// Tooltip value formats
const (
	FormatCurrency = "currency"
	FormatPercent  = "percent"
	FormatCount    = "count"
	FormatLakhs    = "lakhs"
)

// Color is an RGBA colour serialised as a CSS rgba() string
type Color struct {
	R, G, B uint8
	A       float64
}

func RGBA(r, g, b uint8, a float64) Color { return Color{R: r, G: g, B: b, A: a} }

// WithAlpha returns the colour with a different opacity
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex returns the colour as #rrggbb, dropping opacity
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Colors is one colour per data point, or a single colour for the
// whole dataset. A single colour serialises as a plain string.
type Colors []Color

func (cs Colors) MarshalJSON() ([]byte, error) {
	if len(cs) == 1 {
		return json.Marshal(cs[0])
	}
	return json.Marshal([]Color(cs))
}

// At returns the colour for point i
func (cs Colors) At(i int) Color {
	if len(cs) == 0 {
		return Color{A: 1}
	}
	return cs[i%len(cs)]
}

// Dataset is one data series. Nil entries in Data mean "no data" for
// that label and are drawn as gaps, never as zero.
type Dataset struct {
	Label                string     `json:"label"`
	Data                 []*float64 `json:"data"`
	Type                 string     `json:"type,omitempty"`
	BackgroundColor      Colors     `json:"backgroundColor,omitempty"`
	BorderColor          Colors     `json:"borderColor,omitempty"`
	BorderWidth          int        `json:"borderWidth,omitempty"`
	BorderDash           []int      `json:"borderDash,omitempty"`
	Fill                 bool       `json:"fill"`
	PointRadius          *int       `json:"pointRadius,omitempty"`
	PointBackgroundColor *Color     `json:"pointBackgroundColor,omitempty"`
	SpanGaps             bool       `json:"spanGaps,omitempty"`
	YAxisID              string     `json:"yAxisID,omitempty"`
	TooltipFormat        string     `json:"tooltipFormat,omitempty"`
	TooltipSuffix        []string   `json:"tooltipSuffix,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Grid struct {
	Display bool `json:"display"`
}

type Ticks struct {
	AutoSkip    *bool  `json:"autoSkip,omitempty"`
	MaxRotation *int   `json:"maxRotation,omitempty"`
	MinRotation *int   `json:"minRotation,omitempty"`
	Format      string `json:"format,omitempty"`
}

// Scale is one axis
type Scale struct {
	Display     *bool      `json:"display,omitempty"`
	Title       *AxisTitle `json:"title,omitempty"`
	BeginAtZero bool       `json:"beginAtZero"`
	Reverse     bool       `json:"reverse,omitempty"`
	Position    string     `json:"position,omitempty"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	Grid        *Grid      `json:"grid,omitempty"`
	Ticks       *Ticks     `json:"ticks,omitempty"`
}

// TitleText returns the axis title or ""
func (s *Scale) TitleText() string {
	if s == nil || s.Title == nil {
		return ""
	}
	return s.Title.Text
}

type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Annotation highlights one point of a chart
type Annotation struct {
	Type            string  `json:"type"`
	XValue          string  `json:"xValue"`
	YMin            float64 `json:"yMin"`
	YMax            float64 `json:"yMax"`
	Radius          int     `json:"radius,omitempty"`
	BorderColor     Color   `json:"borderColor"`
	BackgroundColor *Color  `json:"backgroundColor,omitempty"`
	Label           string  `json:"label"`
}

type Plugins struct {
	Legend     Legend      `json:"legend"`
	Title      *Title      `json:"title,omitempty"`
	Annotation *Annotation `json:"annotation,omitempty"`
}

type Options struct {
	Responsive          bool              `json:"responsive"`
	MaintainAspectRatio bool              `json:"maintainAspectRatio"`
	IndexAxis           string            `json:"indexAxis,omitempty"`
	Scales              map[string]*Scale `json:"scales,omitempty"`
	Plugins             Plugins           `json:"plugins"`
}

// RenderConfig is everything a renderer needs to draw one chart
type RenderConfig struct {
	Type    string    `json:"type"`
	Data    ChartData `json:"data"`
	Options Options   `json:"options"`
}

// Scale returns the named axis or nil
func (c *RenderConfig) Scale(name string) *Scale {
	if c.Options.Scales == nil {
		return nil
	}
	return c.Options.Scales[name]
}

// Clone deep-copies the parts of a config that kind changes rewrite
func (c RenderConfig) Clone() RenderConfig {
	out := c
	out.Data.Labels = append([]string(nil), c.Data.Labels...)
	out.Data.Datasets = make([]Dataset, len(c.Data.Datasets))
	for i, ds := range c.Data.Datasets {
		ds.Data = append([]*float64(nil), ds.Data...)
		ds.BackgroundColor = append(Colors(nil), ds.BackgroundColor...)
		ds.BorderColor = append(Colors(nil), ds.BorderColor...)
		ds.BorderDash = append([]int(nil), ds.BorderDash...)
		ds.TooltipSuffix = append([]string(nil), ds.TooltipSuffix...)
		out.Data.Datasets[i] = ds
	}
	if c.Options.Scales != nil {
		out.Options.Scales = make(map[string]*Scale, len(c.Options.Scales))
		for k, s := range c.Options.Scales {
			cp := *s
			out.Options.Scales[k] = &cp
		}
	}
	if c.Options.Plugins.Title != nil {
		t := *c.Options.Plugins.Title
		out.Options.Plugins.Title = &t
	}
	if c.Options.Plugins.Annotation != nil {
		a := *c.Options.Plugins.Annotation
		out.Options.Plugins.Annotation = &a
	}
	return out
}

// Num returns a pointer to v for use as a data point
func Num(v float64) *float64 { return &v }

// Nums converts plain values into data points
func Nums(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = Num(vs[i])
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
