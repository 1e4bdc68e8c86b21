package render

import (
	"sync/atomic"

	"github.com/google/uuid"

	"salesdash/internal/charts"
)

// Renderer is a chart drawn on one canvas
type Renderer interface {
	// ID is unique per renderer instance
	ID() string
	Canvas() *Canvas
	Config() charts.RenderConfig
	// Destroy clears the canvas. Calling it twice is a no-op.
	Destroy()
	Destroyed() bool
}

// Factory creates renderers
type Factory interface {
	Name() string
	New(canvas *Canvas, cfg charts.RenderConfig) (Renderer, error)
	// SupportsFunnel reports whether funnel configs can be drawn natively
	SupportsFunnel() bool
}

type baseRenderer struct {
	id        string
	canvas    *Canvas
	cfg       charts.RenderConfig
	destroyed atomic.Bool
}

func newBase(canvas *Canvas, cfg charts.RenderConfig) *baseRenderer {
	return &baseRenderer{id: uuid.NewString(), canvas: canvas, cfg: cfg.Clone()}
}

func (r *baseRenderer) ID() string                  { return r.id }
func (r *baseRenderer) Canvas() *Canvas             { return r.canvas }
func (r *baseRenderer) Config() charts.RenderConfig { return r.cfg.Clone() }
func (r *baseRenderer) Destroyed() bool             { return r.destroyed.Load() }

func (r *baseRenderer) Destroy() {
	if r.destroyed.Swap(true) {
		return
	}
	r.canvas.Clear()
}
