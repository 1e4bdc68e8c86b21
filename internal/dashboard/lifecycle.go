package dashboard

import (
	"context"
	"sync"

	"salesdash/internal/charts"
	"salesdash/internal/logger"
	"salesdash/internal/models"
	"salesdash/internal/render"
)

// Request describes one fetch-and-draw cycle for a chart
type Request struct {
	ChartID string
	Canvas  *render.Canvas
	// Fetch returns the raw payload. It runs without the lifecycle lock.
	Fetch func(ctx context.Context) ([]byte, error)
	// Build validates the payload and maps it to a render config
	Build func(body []byte) (charts.RenderConfig, error)
	// Current reports whether this request is still the newest for the
	// chart. Nil means always current.
	Current func() bool
}

type binding struct {
	chartID  string
	renderer render.Renderer
	// base is the mapped config before any later kind change
	base charts.RenderConfig
}

// owner is the renderer drawing on a canvas. chartID is empty for
// copies made by Duplicate.
type owner struct {
	chartID  string
	renderer render.Renderer
}

// Lifecycle owns every renderer. A canvas is owned by at most one
// renderer at any time.
type Lifecycle struct {
	mu       sync.Mutex
	factory  render.Factory
	byChart  map[string]*binding
	byCanvas map[string]owner
	log      *logger.Logger
}

func NewLifecycle(factory render.Factory) *Lifecycle {
	return &Lifecycle{
		factory:  factory,
		byChart:  make(map[string]*binding),
		byCanvas: make(map[string]owner),
		log:      logger.WithComponent("lifecycle"),
	}
}

// Factory returns the renderer factory in use
func (l *Lifecycle) Factory() render.Factory { return l.factory }

// Replace tears down whatever is drawn for the chart and on its canvas,
// fetches fresh data and binds a new renderer. On any error nothing is
// left bound to the chart or the canvas.
func (l *Lifecycle) Replace(ctx context.Context, req Request) error {
	if req.Canvas == nil {
		return models.NewChartError(req.ChartID, models.ErrMissingTarget, "Chart canvas not found", nil)
	}

	l.mu.Lock()
	l.detachChartLocked(req.ChartID)
	l.detachCanvasLocked(req.Canvas.ID)
	req.Canvas.Clear()
	l.mu.Unlock()

	body, err := req.Fetch(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if req.Current != nil && !req.Current() {
		l.log.Debug("discarding superseded response", logger.Fields{"chart": req.ChartID})
		return models.NewChartError(req.ChartID, models.ErrStaleResponse, "superseded by a newer request", nil)
	}

	cfg, err := req.Build(body)
	if err != nil {
		return err
	}

	// Another cycle may have drawn here while the fetch was running
	l.detachChartLocked(req.ChartID)
	l.detachCanvasLocked(req.Canvas.ID)
	req.Canvas.Clear()

	r, err := l.factory.New(req.Canvas, cfg)
	if err != nil {
		return models.NewChartError(req.ChartID, models.ErrMalformedPayload, "Chart could not be drawn", err)
	}
	l.byChart[req.ChartID] = &binding{chartID: req.ChartID, renderer: r, base: cfg}
	l.byCanvas[req.Canvas.ID] = owner{chartID: req.ChartID, renderer: r}
	l.log.Debug("renderer bound", logger.Fields{"chart": req.ChartID, "canvas": req.Canvas.ID, "renderer": r.ID()})
	return nil
}

// Restyle redraws a bound chart with another kind, without refetching.
// policy is the chart's own restyle rule; nil applies the kind as is.
func (l *Lifecycle) Restyle(chartID string, kind charts.Kind, policy charts.Restyler) (charts.RenderConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byChart[chartID]
	if !ok {
		return charts.RenderConfig{}, models.NewChartError(chartID, models.ErrChartNotReady, "Chart is still loading", nil)
	}
	if policy == nil {
		policy = charts.ApplyKind
	}
	cfg := policy(b.base, kind, l.factory.SupportsFunnel())
	canvas := b.renderer.Canvas()

	b.renderer.Destroy()
	delete(l.byCanvas, canvas.ID)
	delete(l.byChart, chartID)

	r, err := l.factory.New(canvas, cfg)
	if err != nil {
		return charts.RenderConfig{}, models.NewChartError(chartID, models.ErrMalformedPayload, "Chart could not be drawn", err)
	}
	l.byChart[chartID] = &binding{chartID: chartID, renderer: r, base: b.base}
	l.byCanvas[canvas.ID] = owner{chartID: chartID, renderer: r}
	return cfg, nil
}

// Duplicate draws the current config of a chart on another canvas, such
// as the fullscreen modal. The copy is owned by that canvas only.
func (l *Lifecycle) Duplicate(chartID string, canvas *render.Canvas) (charts.RenderConfig, error) {
	if canvas == nil {
		return charts.RenderConfig{}, models.NewChartError(chartID, models.ErrMissingTarget, "Fullscreen canvas not found", nil)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byChart[chartID]
	if !ok {
		return charts.RenderConfig{}, models.NewChartError(chartID, models.ErrChartNotReady,
			"Chart is still loading. Please wait a moment and try again.", nil)
	}
	cfg := b.renderer.Config()

	l.detachCanvasLocked(canvas.ID)
	canvas.Clear()
	r, err := l.factory.New(canvas, cfg)
	if err != nil {
		return charts.RenderConfig{}, models.NewChartError(chartID, models.ErrMalformedPayload, "Chart could not be drawn", err)
	}
	l.byCanvas[canvas.ID] = owner{renderer: r}
	return cfg, nil
}

// Release destroys the renderer on a canvas, if any
func (l *Lifecycle) Release(canvasID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detachCanvasLocked(canvasID)
}

// Destroy drops the renderer bound to a chart, if any
func (l *Lifecycle) Destroy(chartID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detachChartLocked(chartID)
}

// Config returns the config currently drawn for a chart
func (l *Lifecycle) Config(chartID string) (charts.RenderConfig, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byChart[chartID]
	if !ok {
		return charts.RenderConfig{}, false
	}
	return b.renderer.Config(), true
}

// Renderer returns the renderer bound to a chart
func (l *Lifecycle) Renderer(chartID string) (render.Renderer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.byChart[chartID]
	if !ok {
		return nil, false
	}
	return b.renderer, true
}

// Owner returns the renderer that owns a canvas
func (l *Lifecycle) Owner(canvasID string) (render.Renderer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.byCanvas[canvasID]
	return o.renderer, ok
}

// Bound counts live renderers
func (l *Lifecycle) Bound() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byCanvas)
}

func (l *Lifecycle) detachChartLocked(chartID string) {
	b, ok := l.byChart[chartID]
	if !ok {
		return
	}
	delete(l.byChart, chartID)
	canvasID := b.renderer.Canvas().ID
	if l.byCanvas[canvasID].renderer == b.renderer {
		delete(l.byCanvas, canvasID)
	}
	b.renderer.Destroy()
}

func (l *Lifecycle) detachCanvasLocked(canvasID string) {
	o, ok := l.byCanvas[canvasID]
	if !ok {
		return
	}
	delete(l.byCanvas, canvasID)
	if b, ok := l.byChart[o.chartID]; ok && b.renderer == o.renderer {
		delete(l.byChart, o.chartID)
	}
	o.renderer.Destroy()
}
