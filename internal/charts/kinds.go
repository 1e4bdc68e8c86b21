package charts

// Opacities used for dataset fills
const (
	solidAlpha = 0.6
	areaAlpha  = 0.2
)

// Effective returns the chart type a renderer is asked to draw for the
// requested kind. Area charts are filled line charts, and funnels fall
// back to bars when no funnel renderer is available.
func Effective(kind Kind, funnelAvailable bool) Kind {
	switch {
	case kind == KindArea:
		return KindLine
	case kind == KindFunnel && !funnelAvailable:
		return KindBar
	case kind == "":
		return KindBar
	}
	return kind
}

// ApplyKind returns a copy of cfg restyled for kind. Datasets with their
// own type (overlay lines on a bar chart) keep their styling.
func ApplyKind(cfg RenderConfig, kind Kind, funnelAvailable bool) RenderConfig {
	out := cfg.Clone()
	eff := Effective(kind, funnelAvailable)
	out.Type = string(eff)

	alpha := solidAlpha
	if kind == KindArea {
		alpha = areaAlpha
	}
	for i := range out.Data.Datasets {
		ds := &out.Data.Datasets[i]
		if ds.Type != "" {
			continue
		}
		ds.Fill = kind == KindArea
		for j := range ds.BackgroundColor {
			ds.BackgroundColor[j] = ds.BackgroundColor[j].WithAlpha(alpha)
		}
	}

	switch {
	case kind == KindFunnel && eff == KindBar:
		out.Options.IndexAxis = "y"
		out.Options.Scales = funnelFallbackScales()
	case eff == KindFunnel:
		out.Options.IndexAxis = ""
		out.Options.Scales = map[string]*Scale{
			"x": {Display: boolPtr(false)},
			"y": {Display: boolPtr(false)},
		}
	default:
		out.Options.IndexAxis = ""
	}
	return out
}

// Restyler applies a chosen kind to a config a mapper already built
type Restyler func(cfg RenderConfig, kind Kind, funnelAvailable bool) RenderConfig

// RestyleFunnel follows Funnel: only the funnel kind on a funnel renderer
// draws a funnel, anything else is the horizontal bar layout.
func RestyleFunnel(cfg RenderConfig, kind Kind, funnelAvailable bool) RenderConfig {
	return ApplyKind(cfg, KindFunnel, funnelAvailable && kind == KindFunnel)
}

// KeepKind leaves a config whose kind follows its data untouched
func KeepKind(cfg RenderConfig, _ Kind, _ bool) RenderConfig {
	return cfg.Clone()
}

// funnelFallbackScales lays a bar chart out as a horizontal funnel
func funnelFallbackScales() map[string]*Scale {
	return map[string]*Scale{
		"x": {
			Title:       &AxisTitle{Display: true, Text: "Count"},
			BeginAtZero: true,
			Reverse:     true,
		},
		"y": {
			Title: &AxisTitle{Display: true, Text: "Stage"},
			Grid:  &Grid{Display: false},
		},
	}
}
