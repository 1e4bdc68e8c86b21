// Package dashboard holds the state of one sales dashboard: filters, the
// update guard, chart renderers and widget status. Every user action the
// page offers is a method on Dashboard.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/charts"
	"salesdash/internal/config"
	"salesdash/internal/fetchers"
	"salesdash/internal/format"
	"salesdash/internal/logger"
	"salesdash/internal/metrics"
	"salesdash/internal/models"
	"salesdash/internal/render"
)

// maxParallelCharts bounds the chart fetches of one reload
const maxParallelCharts = 4

// maxStaleReruns bounds how often one cycle chases newer filters before
// it gives up and reports the chart as out of date
const maxStaleReruns = 3

// Status is what a chart widget shows
type Status struct {
	ChartID         string               `json:"chart_id"`
	Title           string               `json:"title"`
	Kind            charts.Kind          `json:"kind"`
	SelectedDate    string               `json:"selected_date,omitempty"`
	Loading         bool                 `json:"loading"`
	Error           string               `json:"error,omitempty"`
	ControlDisabled bool                 `json:"control_disabled"`
	Config          *charts.RenderConfig `json:"config,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Options configures a Dashboard
type Options struct {
	Client      *fetchers.Client
	Factory     render.Factory
	Defaults    FilterState
	DateOptions []format.DateOption
	Layout      *config.Layout
	Metrics     *metrics.Recorder
	// Now defaults to time.Now
	Now func() time.Time
	// Canvas size for every chart canvas
	Width, Height int
}

// Dashboard is one user's dashboard
type Dashboard struct {
	client    *fetchers.Client
	registry  *Registry
	filters   *FilterStore
	guard     *UpdateGuard
	lifecycle *Lifecycle
	canvases  *render.Set
	metrics   *metrics.Recorder
	now       func() time.Time
	log       *logger.Logger

	mu         sync.Mutex
	statuses   map[string]*Status
	cards      Cards
	fullscreen string
}

// New builds a dashboard with one canvas per chart plus the fullscreen canvas
func New(o Options) (*Dashboard, error) {
	if o.Client == nil {
		return nil, errors.New("dashboard: metrics API client is required")
	}
	if o.Factory == nil {
		o.Factory = render.EChartsFactory{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}

	reg := NewRegistry(o.Layout)
	canvases := render.NewSet()
	for _, id := range reg.CanvasIDs() {
		canvases.Add(render.NewCanvas(id, o.Width, o.Height))
	}

	d := &Dashboard{
		client:    o.Client,
		registry:  reg,
		filters:   NewFilterStore(o.Defaults, reg.Kinds(), o.DateOptions),
		guard:     NewUpdateGuard(),
		lifecycle: NewLifecycle(o.Factory),
		canvases:  canvases,
		metrics:   o.Metrics,
		now:       o.Now,
		log:       logger.WithComponent("dashboard"),
		statuses:  make(map[string]*Status),
	}
	for _, id := range reg.IDs() {
		desc, _ := reg.Get(id)
		d.statuses[id] = &Status{ChartID: id, Title: desc.Title, Kind: desc.Kind}
	}
	return d, nil
}

func (d *Dashboard) Filters() *FilterStore   { return d.filters }
func (d *Dashboard) Registry() *Registry     { return d.registry }
func (d *Dashboard) Guard() *UpdateGuard     { return d.guard }
func (d *Dashboard) Lifecycle() *Lifecycle   { return d.lifecycle }
func (d *Dashboard) Canvases() *render.Set   { return d.canvases }
func (d *Dashboard) Factory() render.Factory { return d.lifecycle.Factory() }

// LoadDashboard reloads every card and chart with the current filters.
// A reload that starts while another is running is skipped.
func (d *Dashboard) LoadDashboard(ctx context.Context) error {
	if !d.guard.TryAcquireDashboard() {
		d.log.Info("dashboard is already loading, skipping")
		d.metrics.DashboardLoad("skipped")
		return nil
	}
	defer d.guard.ReleaseDashboard()

	err := d.reload(ctx)
	if err != nil {
		d.metrics.DashboardLoad("partial")
	} else {
		d.metrics.DashboardLoad("ok")
	}
	return err
}

func (d *Dashboard) reload(ctx context.Context) error {
	state := d.filters.State()
	var g errgroup.Group
	var cardsErr, chartsErr error
	g.Go(func() error {
		_, cardsErr = d.LoadCards(ctx, state.Params(""))
		return nil
	})
	g.Go(func() error {
		chartsErr = d.UpdateCharts(ctx, state)
		return nil
	})
	_ = g.Wait()
	return errors.Join(cardsErr, chartsErr)
}

// ApplyFilters validates and stores new global filters, clears every
// per-chart date and reloads the dashboard. Invalid filters change
// nothing and fetch nothing.
func (d *Dashboard) ApplyFilters(ctx context.Context, in FilterState) (FilterState, error) {
	state, err := d.filters.Apply(in)
	if err != nil {
		d.log.Warn("filters rejected", logger.Fields{"error": models.UserMessage(err)})
		return state, err
	}
	d.log.Info("filters applied", logger.Fields{
		"period_type": state.PeriodType, "start_date": state.StartDate,
		"end_date": state.EndDate, "region": state.Region,
	})
	return state, d.LoadDashboard(ctx)
}

// ResetFilters restores the default filters and reloads the dashboard
func (d *Dashboard) ResetFilters(ctx context.Context) (FilterState, error) {
	state := d.filters.Reset()
	d.log.Info("filters reset")
	return state, d.LoadDashboard(ctx)
}

// ChangeRegion updates the region and refreshes what depends on it
func (d *Dashboard) ChangeRegion(ctx context.Context, region string) (FilterState, error) {
	state := d.filters.SetRegion(region)
	var g errgroup.Group
	var cardsErr, chartErr error
	g.Go(func() error {
		_, cardsErr = d.LoadCards(ctx, state.Params(""))
		return nil
	})
	g.Go(func() error {
		chartErr = d.UpdateCharts(ctx, state, ChartRegion)
		return nil
	})
	_ = g.Wait()
	return state, errors.Join(cardsErr, chartErr)
}

// ApplyChartFilter selects a date for one chart and refreshes only that chart
func (d *Dashboard) ApplyChartFilter(ctx context.Context, chartID, date string) error {
	if _, ok := d.registry.Get(chartID); !ok {
		return models.NewChartError(chartID, models.ErrMissingTarget, "Unknown chart", nil)
	}
	if err := d.filters.SetChartFilter(chartID, date); err != nil {
		d.setError(chartID, err)
		return err
	}
	return d.UpdateCharts(ctx, d.filters.State(), chartID)
}

// ChangeChartKind switches a chart's presentation. A drawn chart is
// restyled in place without fetching; otherwise the kind is used on the
// next load.
func (d *Dashboard) ChangeChartKind(chartID, kind string) (Status, error) {
	desc, ok := d.registry.Get(chartID)
	if !ok {
		return Status{}, models.NewChartError(chartID, models.ErrMissingTarget, "Unknown chart", nil)
	}
	k, err := charts.ParseKind(kind)
	if err != nil {
		return d.Status(chartID), models.NewChartError(chartID, models.ErrInvalidFilter, err.Error(), nil)
	}
	d.filters.SetKind(chartID, k)

	d.mu.Lock()
	d.statuses[chartID].Kind = k
	d.mu.Unlock()

	if _, bound := d.lifecycle.Renderer(chartID); !bound {
		return d.Status(chartID), nil
	}
	cfg, err := d.lifecycle.Restyle(chartID, k, desc.Restyle)
	if err != nil {
		d.setError(chartID, err)
		return d.Status(chartID), err
	}
	d.setConfig(chartID, cfg)
	return d.Status(chartID), nil
}

// Fullscreen draws a copy of a chart on the modal canvas
func (d *Dashboard) Fullscreen(chartID string) (charts.RenderConfig, error) {
	canvas, _ := d.canvases.Get(ModalCanvasID)
	cfg, err := d.lifecycle.Duplicate(chartID, canvas)
	if err != nil {
		return cfg, err
	}
	d.mu.Lock()
	d.fullscreen = chartID
	d.mu.Unlock()
	return cfg, nil
}

// CloseFullscreen releases the modal canvas
func (d *Dashboard) CloseFullscreen() {
	d.lifecycle.Release(ModalCanvasID)
	d.mu.Lock()
	d.fullscreen = ""
	d.mu.Unlock()
}

// FullscreenChart is the chart shown in the modal, "" when closed
func (d *Dashboard) FullscreenChart() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

// UpdateCharts refreshes the given charts, or every chart when none is
// named, using fs plus each chart's selected date. fs is validated first;
// invalid filters abort before any guard is taken or request is sent.
// Per-chart failures end up in the chart's status and are joined into
// the returned error.
func (d *Dashboard) UpdateCharts(ctx context.Context, fs FilterState, chartIDs ...string) error {
	if err := fs.Validate(); err != nil {
		return err
	}
	if len(chartIDs) == 0 {
		chartIDs = d.registry.IDs()
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(maxParallelCharts)
	for _, id := range chartIDs {
		id := id
		g.Go(func() error {
			if err := d.updateChart(ctx, id, fs); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// updateChart runs one guarded fetch-and-draw cycle. A trigger arriving
// while the chart is busy is dropped, but it still advances the chart's
// generation so the busy cycle sees its result is stale and runs again
// with the latest filters, up to maxStaleReruns times.
func (d *Dashboard) updateChart(ctx context.Context, chartID string, fs FilterState) error {
	token := d.guard.Begin(chartID)
	if !d.guard.TryAcquire(chartID) {
		d.log.Debug("chart is already updating, skipping", logger.Fields{"chart": chartID})
		d.metrics.GuardDrop(chartID)
		return nil
	}
	defer d.guard.Release(chartID)

	desc, ok := d.registry.Get(chartID)
	if !ok {
		err := models.NewChartError(chartID, models.ErrMissingTarget, "Unknown chart", nil)
		d.metrics.ChartUpdate(chartID, err)
		return err
	}

	err := d.runCycle(ctx, desc, fs.Params(d.filters.ChartFilter(chartID)), token)
	for i := 0; i < maxStaleReruns && errors.Is(err, models.ErrStaleResponse); i++ {
		d.log.Debug("response superseded, updating again", logger.Fields{"chart": chartID, "attempt": i + 1})
		token = d.guard.Begin(chartID)
		state := d.filters.State()
		err = d.runCycle(ctx, desc, state.Params(d.filters.ChartFilter(chartID)), token)
	}
	if errors.Is(err, models.ErrStaleResponse) {
		err = models.NewChartError(chartID, models.ErrStaleResponse, "Filters kept changing while the chart was loading. Please refresh it.", err)
	}
	d.metrics.ChartUpdate(chartID, err)

	if err == nil {
		cfg, _ := d.lifecycle.Config(chartID)
		d.setConfig(chartID, cfg)
		return nil
	}
	d.log.Warn("chart update failed", logger.Fields{"chart": chartID, "error": err.Error()})
	d.setError(chartID, err)
	return err
}

func (d *Dashboard) runCycle(ctx context.Context, desc *Descriptor, p models.FilterParams, token uint64) error {
	canvas, ok := d.canvases.Get(desc.CanvasID)
	if !ok {
		d.lifecycle.Destroy(desc.ID)
		return models.NewChartError(desc.ID, models.ErrMissingTarget, "Chart canvas not found", nil)
	}
	d.setLoading(desc.ID)

	query, err := desc.Query(p, d.now())
	if err != nil {
		d.lifecycle.Destroy(desc.ID)
		canvas.Clear()
		return err
	}
	mo := charts.MapOptions{
		Kind:            d.filters.Kind(desc.ID),
		PeriodType:      p.PeriodType,
		SelectedDate:    p.SelectedDate,
		FunnelAvailable: d.lifecycle.Factory().SupportsFunnel(),
		Title:           desc.Title,
	}

	return d.lifecycle.Replace(ctx, Request{
		ChartID: desc.ID,
		Canvas:  canvas,
		Fetch: func(ctx context.Context) ([]byte, error) {
			return d.client.Get(ctx, desc.ID, desc.Path, query)
		},
		Build: func(body []byte) (charts.RenderConfig, error) {
			return desc.Build(desc.ID, body, mo)
		},
		Current: func() bool { return d.guard.Current(desc.ID, token) },
	})
}

// ErrorText is the message a chart widget shows for err. Messages from
// the server and validation messages are shown as they are.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrServerReported),
		errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, models.ErrMalformedPayload),
		errors.Is(err, models.ErrChartNotReady),
		errors.Is(err, models.ErrStaleResponse):
		return models.UserMessage(err)
	}
	return fmt.Sprintf("Failed to load chart data: %s", models.UserMessage(err))
}

func (d *Dashboard) setLoading(chartID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.statuses[chartID]
	s.Loading = true
	s.Error = ""
	s.Config = nil
}

func (d *Dashboard) setConfig(chartID string, cfg charts.RenderConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.statuses[chartID]
	s.Loading = false
	s.Error = ""
	s.ControlDisabled = false
	s.Config = &cfg
	s.UpdatedAt = d.now()
}

func (d *Dashboard) setError(chartID string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.statuses[chartID]
	if !ok {
		return
	}
	s.Loading = false
	s.Error = ErrorText(err)
	s.ControlDisabled = true
	s.Config = nil
}

// Status returns a copy of one chart's widget state
func (d *Dashboard) Status(chartID string) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.statuses[chartID]
	if !ok {
		return Status{ChartID: chartID}
	}
	out := *s
	out.SelectedDate = d.filters.ChartFilter(chartID)
	if s.Config != nil {
		c := s.Config.Clone()
		out.Config = &c
	}
	return out
}

// Statuses returns every chart's widget state in display order
func (d *Dashboard) Statuses() []Status {
	ids := d.registry.IDs()
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.Status(id))
	}
	return out
}
