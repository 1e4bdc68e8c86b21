package reports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/components"

	"salesdash/internal/charts"
	"salesdash/internal/render"
)

const summaryPlaceholder = "<body>"

// Page renders every chart of a snapshot onto one go-echarts page, with
// the summary HTML above the charts.
func Page(s Snapshot, summaryHTML string, width, height int) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = "Sales Dashboard Snapshot " + s.TakenAt.Format("2006-01-02 15:04")
	page.SetLayout(components.PageFlexLayout)

	for _, st := range s.Rendered() {
		c, err := render.BuildECharts(st.ChartID, width, height, *st.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", st.ChartID, err)
		}
		page.AddCharts(c)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return injectSummary(buf.String(), summaryHTML), nil
}

func injectSummary(page, summaryHTML string) []byte {
	section := `<div class="snapshot-summary" style="max-width:960px;margin:16px auto;font-family:sans-serif;">` + summaryHTML + `</div>`
	if i := strings.Index(page, summaryPlaceholder); i >= 0 {
		at := i + len(summaryPlaceholder)
		return []byte(page[:at] + "\n" + section + page[at:])
	}
	return []byte(section + page)
}

// ChartPNG draws one chart config as a PNG image
func ChartPNG(chartID string, cfg charts.RenderConfig, width, height int) ([]byte, error) {
	canvas := render.NewCanvas(chartID, width, height)
	r, err := render.PNGFactory{}.New(canvas, cfg)
	if err != nil {
		return nil, err
	}
	data := canvas.Bytes()
	r.Destroy()
	return data, nil
}
