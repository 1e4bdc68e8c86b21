package charts

import (
	"fmt"

	"salesdash/internal/format"
)

// TooltipText renders the tooltip for one data point. Points without
// data have no tooltip.
func (c *RenderConfig) TooltipText(dataset, point int) string {
	if dataset < 0 || dataset >= len(c.Data.Datasets) {
		return ""
	}
	ds := c.Data.Datasets[dataset]
	if point < 0 || point >= len(ds.Data) || ds.Data[point] == nil {
		return ""
	}
	v := *ds.Data[point]

	var text string
	switch ds.TooltipFormat {
	case FormatCurrency:
		text = fmt.Sprintf("%s: %s", ds.Label, format.Currency(v))
	case FormatPercent:
		text = fmt.Sprintf("%s: %s", ds.Label, format.Percent(v))
	case FormatLakhs:
		text = fmt.Sprintf("%s: %s", ds.Label, format.Lakhs(v, 2))
	case FormatCount:
		text = fmt.Sprintf("%s: %s", ds.Label, format.Count(v))
	default:
		label := ds.Label
		if point < len(c.Data.Labels) {
			label = c.Data.Labels[point]
		}
		text = fmt.Sprintf("%s: %v%%", label, v)
	}
	if point < len(ds.TooltipSuffix) && ds.TooltipSuffix[point] != "" {
		text += " " + ds.TooltipSuffix[point]
	}
	return text
}

// TickText renders an axis tick value in the axis' format
func TickText(s *Scale, v float64) string {
	if s == nil || s.Ticks == nil {
		return fmt.Sprintf("%v", v)
	}
	switch s.Ticks.Format {
	case FormatCurrency:
		return format.AxisCurrency(v)
	case FormatPercent:
		return fmt.Sprintf("%v%%", v)
	case FormatLakhs:
		return format.Lakhs(v, 0)
	}
	return fmt.Sprintf("%v", v)
}
