package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdash/internal/charts"
	"salesdash/internal/dashboard"
	"salesdash/internal/format"
)

type indexData struct {
	Filters     dashboard.FilterState
	Cards       dashboard.Cards
	Charts      []dashboard.Status
	DateOptions []format.DateOption
	Kinds       []charts.Kind
	PeriodTypes []string
	ImageCharts bool
	Snapshots   bool
}

func (s *Server) handleIndex(c *gin.Context) {
	sess := sessionFrom(c)
	sess.ensureLoaded(c.Request.Context())
	d := sess.dash

	data := indexData{
		Filters:     d.Filters().State(),
		Cards:       d.Cards(),
		Charts:      d.Statuses(),
		DateOptions: d.Filters().DateOptions(),
		Kinds:       []charts.Kind{charts.KindBar, charts.KindLine, charts.KindArea, charts.KindPie, charts.KindFunnel},
		PeriodTypes: []string{"MS", "QS", "YS"},
		ImageCharts: d.Factory().Name() == "png",
		Snapshots:   s.snapshots != nil,
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		s.log.Error("failed to render dashboard page", err)
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"periodName": format.PeriodName,
}).Parse(indexHTML))

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Sales Dashboard</title>
  <style>
    body { margin: 0; font-family: "Segoe UI", Arial, sans-serif; background: #f5f6fa; color: #1b1b1b; }
    header { padding: 16px 24px; background: #fff; border-bottom: 1px solid #e1e4ea; }
    h1 { margin: 0 0 8px; font-size: 20px; }
    .filters { display: flex; flex-wrap: wrap; gap: 12px; align-items: center; font-size: 13px; }
    .cards { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; padding: 16px 24px; }
    .card, .chart { background: #fff; border: 1px solid #e1e4ea; border-radius: 8px; padding: 12px; }
    .card .value { font-size: 22px; font-weight: 600; }
    .error { color: #b42318; font-size: 13px; }
    .charts { display: grid; grid-template-columns: repeat(auto-fill, minmax(460px, 1fr)); gap: 12px; padding: 0 24px 24px; }
    .chart iframe, .chart img { width: 100%; height: 420px; border: 0; }
    .chart header { padding: 0; border: 0; display: flex; gap: 8px; align-items: center; }
    .chart h2 { font-size: 15px; margin: 0; flex: 1; }
  </style>
</head>
<body>
<header>
  <h1>Sales Dashboard</h1>
  <form class="filters" id="filters">
    <label>Period
      <select name="period_type">
        {{- range .PeriodTypes }}
        <option value="{{ . }}"{{ if eq . $.Filters.PeriodType }} selected{{ end }}>{{ periodName . }}</option>
        {{- end }}
      </select>
    </label>
    <label>Start <input type="date" name="start_date" value="{{ .Filters.StartDate }}" /></label>
    <label>End <input type="date" name="end_date" value="{{ .Filters.EndDate }}" /></label>
    <label>Forecast <input type="date" name="forecast_start" value="{{ .Filters.ForecastStart }}" /></label>
    <label>Region <input type="text" name="region" value="{{ .Filters.Region }}" /></label>
    <button type="submit">Apply</button>
    <button type="button" id="reset">Reset</button>
    <a href="/api/export.xlsx">Export XLSX</a>
    {{- if .Snapshots }}
    <button type="button" id="snapshot">Save snapshot</button>
    {{- end }}
    <span class="error" id="filter-error"></span>
  </form>
</header>

<section class="cards">
  {{- with .Cards }}
  <div class="card"><div>Total Sales</div><div class="value">{{ .TotalSales.Value }}</div><div class="error">{{ .TotalSales.Error }}</div></div>
  <div class="card"><div>Average Order Value</div><div class="value">{{ .AvgOrderValue.Value }}</div><div class="error">{{ .AvgOrderValue.Error }}</div></div>
  <div class="card"><div>New Customers</div><div class="value">{{ .NewCustomers.Value }}</div><div>{{ .NewCustomers.Subtext }}</div><div class="error">{{ .NewCustomers.Error }}</div></div>
  <div class="card"><div>Conversion Rate</div><div class="value">{{ .ConversionRate.Value }}</div><div class="error">{{ .ConversionRate.Error }}</div></div>
  {{- end }}
</section>

<section class="charts">
  {{- range .Charts }}
  <div class="chart" id="{{ .ChartID }}-card">
    <header>
      <h2>{{ .Title }}</h2>
      <select data-chart="{{ .ChartID }}" class="chart-date">
        <option value="">All</option>
        {{- $selected := .SelectedDate }}
        {{- range $.DateOptions }}
        <option value="{{ .Value }}"{{ if eq .Value $selected }} selected{{ end }}>{{ .Label }}</option>
        {{- end }}
      </select>
      <select data-chart="{{ .ChartID }}" class="chart-kind">
        {{- $kind := .Kind }}
        {{- range $.Kinds }}
        <option value="{{ . }}"{{ if eq . $kind }} selected{{ end }}>{{ . }}</option>
        {{- end }}
      </select>
      <button type="button" class="fullscreen" id="fullscreen-{{ .ChartID }}" data-chart="{{ .ChartID }}"{{ if .ControlDisabled }} disabled{{ end }}>Fullscreen</button>
    </header>
    {{- if .Error }}
    <p class="error">{{ .Error }}</p>
    {{- else if $.ImageCharts }}
    <img src="/api/charts/{{ .ChartID }}/render" alt="{{ .Title }}" />
    {{- else }}
    <iframe src="/api/charts/{{ .ChartID }}/render" title="{{ .Title }}"></iframe>
    {{- end }}
  </div>
  {{- end }}
</section>

<script>
(function () {
  function post(url, body) {
    return fetch(url, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body || {})})
      .then(function (r) { return r.json().then(function (j) { return {ok: r.ok, body: j}; }); });
  }
  var form = document.getElementById('filters');
  form.addEventListener('submit', function (e) {
    e.preventDefault();
    var data = Object.fromEntries(new FormData(form).entries());
    post('/api/filters/apply', data).then(function (r) {
      if (!r.ok) { document.getElementById('filter-error').textContent = r.body.message; return; }
      location.reload();
    });
  });
  document.getElementById('reset').addEventListener('click', function () {
    post('/api/filters/reset').then(function () { location.reload(); });
  });
  var snap = document.getElementById('snapshot');
  if (snap) {
    snap.addEventListener('click', function () {
      post('/api/snapshots').then(function (r) { alert(r.ok ? 'Snapshot saved: ' + r.body.folder : r.body.message); });
    });
  }
  document.querySelectorAll('.chart-date').forEach(function (el) {
    el.addEventListener('change', function () {
      post('/api/charts/' + el.dataset.chart + '/filter', {date: el.value}).then(function () { location.reload(); });
    });
  });
  document.querySelectorAll('.chart-kind').forEach(function (el) {
    el.addEventListener('change', function () {
      post('/api/charts/' + el.dataset.chart + '/kind', {kind: el.value}).then(function () { location.reload(); });
    });
  });
  document.querySelectorAll('.fullscreen').forEach(function (el) {
    el.addEventListener('click', function () {
      post('/api/charts/' + el.dataset.chart + '/fullscreen').then(function (r) {
        if (r.ok) { window.open('/api/charts/modalCanvas/render', '_blank'); }
      });
    });
  });
})();
</script>
</body>
</html>`
