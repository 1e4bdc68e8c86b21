package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"salesdash/internal/dashboard"
	"salesdash/internal/format"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// MarkdownToHTML converts markdown to HTML using goldmark. Raw HTML in
// the input is not passed through.
func MarkdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Summary describes a snapshot as markdown
func Summary(s Snapshot) string {
	var b strings.Builder

	b.WriteString("# Sales Dashboard Snapshot\n\n")
	fmt.Fprintf(&b, "Taken %s\n\n", s.TakenAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Filters\n\n| Filter | Value |\n|---|---|\n")
	row(&b, "Period", fmt.Sprintf("%s (%s)", format.PeriodName(s.Filters.PeriodType), s.Filters.PeriodType))
	row(&b, "Start Date", s.Filters.StartDate)
	row(&b, "End Date", s.Filters.EndDate)
	row(&b, "Forecast Start", s.Filters.ForecastStart)
	row(&b, "Region", s.Filters.Region)
	b.WriteString("\n")

	b.WriteString("## Key Metrics\n\n| Metric | Value | Detail |\n|---|---|---|\n")
	cardRow(&b, "Total Sales", s.Cards.TotalSales)
	cardRow(&b, "Average Order Value", s.Cards.AvgOrderValue)
	cardRow(&b, "New Customers", s.Cards.NewCustomers)
	cardRow(&b, "Conversion Rate", s.Cards.ConversionRate)
	b.WriteString("\n")

	b.WriteString("## Top Performers\n\n")
	switch {
	case s.Cards.TopPerformersError != "":
		fmt.Fprintf(&b, "_%s_\n\n", escape(s.Cards.TopPerformersError))
	case len(s.Cards.TopPerformers) == 0:
		b.WriteString("_No data_\n\n")
	default:
		for i, p := range s.Cards.TopPerformers {
			fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, escape(p.Name), escape(p.Sales))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Charts\n\n| Chart | Kind | Date | Status |\n|---|---|---|---|\n")
	for _, st := range s.Charts {
		status := "ok"
		switch {
		case st.Error != "":
			status = st.Error
		case st.Config == nil:
			status = "not loaded"
		}
		date := st.SelectedDate
		if date == "" {
			date = "all"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(chartTitle(st)), st.Kind, escape(date), escape(status))
	}
	return b.String()
}

func row(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", name, escape(value))
}

func cardRow(b *strings.Builder, name string, c dashboard.Card) {
	value, detail := c.Value, c.Subtext
	if c.Error != "" {
		value, detail = "-", c.Error
	}
	fmt.Fprintf(b, "| %s | %s | %s |\n", name, escape(value), escape(detail))
}

// escape keeps values from breaking table cells or adding markup
func escape(s string) string {
	r := strings.NewReplacer("|", "\\|", "\n", " ", "<", "&lt;", ">", "&gt;", "*", "\\*", "_", "\\_")
	return r.Replace(s)
}
