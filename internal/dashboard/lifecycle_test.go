package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/charts"
	"salesdash/internal/models"
	"salesdash/internal/render"
)

type fakeRenderer struct {
	id        string
	canvas    *render.Canvas
	cfg       charts.RenderConfig
	mu        sync.Mutex
	destroyed bool
}

func (r *fakeRenderer) ID() string                  { return r.id }
func (r *fakeRenderer) Canvas() *render.Canvas      { return r.canvas }
func (r *fakeRenderer) Config() charts.RenderConfig { return r.cfg.Clone() }

func (r *fakeRenderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.destroyed {
		r.destroyed = true
		r.canvas.Clear()
	}
}

func (r *fakeRenderer) Destroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// fakeFactory records what it draws and can be told to fail
type fakeFactory struct {
	mu      sync.Mutex
	fail    bool
	funnel  bool
	created []*fakeRenderer
}

func (f *fakeFactory) Name() string         { return "fake" }
func (f *fakeFactory) SupportsFunnel() bool { return f.funnel }

func (f *fakeFactory) New(canvas *render.Canvas, cfg charts.RenderConfig) (render.Renderer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("draw failed")
	}
	r := &fakeRenderer{id: fmt.Sprintf("r%d", len(f.created)+1), canvas: canvas, cfg: cfg.Clone()}
	_, _ = fmt.Fprintf(canvas, "<%s %s>", r.id, cfg.Type)
	f.created = append(f.created, r)
	return r, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func barConfig() charts.RenderConfig {
	return charts.RenderConfig{
		Type: "bar",
		Data: charts.ChartData{
			Labels: []string{"North", "South"},
			Datasets: []charts.Dataset{{
				Label:           "Sales",
				Data:            charts.Nums([]float64{1, 2}),
				BackgroundColor: charts.Colors{charts.RGBA(78, 115, 223, 0.6)},
			}},
		},
	}
}

func okRequest(canvas *render.Canvas) Request {
	return Request{
		ChartID: ChartRegion,
		Canvas:  canvas,
		Fetch:   func(context.Context) ([]byte, error) { return []byte(`{}`), nil },
		Build:   func([]byte) (charts.RenderConfig, error) { return barConfig(), nil },
	}
}

func TestReplaceBindsOneRenderer(t *testing.T) {
	f := &fakeFactory{}
	l := NewLifecycle(f)
	canvas := render.NewCanvas(ChartRegion, 0, 0)

	require.NoError(t, l.Replace(context.Background(), okRequest(canvas)))
	require.NoError(t, l.Replace(context.Background(), okRequest(canvas)))

	assert.Equal(t, 1, l.Bound())
	assert.True(t, f.created[0].Destroyed())
	assert.False(t, f.created[1].Destroyed())

	owner, ok := l.Owner(canvas.ID)
	require.True(t, ok)
	bound, ok := l.Renderer(ChartRegion)
	require.True(t, ok)
	assert.Equal(t, bound.ID(), owner.ID())
	assert.Equal(t, "<r2 bar>", string(canvas.Bytes()))
}

func TestReplaceFailuresLeaveNothingBound(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request, *fakeFactory)
		kind   error
	}{
		{
			name: "fetch failure",
			mutate: func(r *Request, _ *fakeFactory) {
				r.Fetch = func(context.Context) ([]byte, error) {
					return nil, models.NewChartError(ChartRegion, models.ErrNetworkFailure, "Failed to load data", nil)
				}
			},
			kind: models.ErrNetworkFailure,
		},
		{
			name: "malformed payload",
			mutate: func(r *Request, _ *fakeFactory) {
				r.Build = func([]byte) (charts.RenderConfig, error) {
					return charts.RenderConfig{}, models.Malformed(ChartRegion, "regions and sales differ in length")
				}
			},
			kind: models.ErrMalformedPayload,
		},
		{
			name:   "superseded",
			mutate: func(r *Request, _ *fakeFactory) { r.Current = func() bool { return false } },
			kind:   models.ErrStaleResponse,
		},
		{
			name:   "renderer failure",
			mutate: func(_ *Request, f *fakeFactory) { f.fail = true },
			kind:   models.ErrMalformedPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFactory{}
			l := NewLifecycle(f)
			canvas := render.NewCanvas(ChartRegion, 0, 0)
			require.NoError(t, l.Replace(context.Background(), okRequest(canvas)))

			req := okRequest(canvas)
			tt.mutate(&req, f)
			err := l.Replace(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err.Error())

			assert.Equal(t, 0, l.Bound())
			_, ok := l.Renderer(ChartRegion)
			assert.False(t, ok)
			assert.True(t, f.created[0].Destroyed())
			assert.True(t, canvas.Empty())
		})
	}
}

func TestReplaceMissingCanvas(t *testing.T) {
	l := NewLifecycle(&fakeFactory{})
	req := okRequest(nil)
	err := l.Replace(context.Background(), req)
	assert.True(t, errors.Is(err, models.ErrMissingTarget))
}

func TestReplaceClearsForeignOwner(t *testing.T) {
	f := &fakeFactory{}
	l := NewLifecycle(f)
	shared := render.NewCanvas("shared", 0, 0)

	req := okRequest(shared)
	req.ChartID = ChartTrend
	require.NoError(t, l.Replace(context.Background(), req))

	// a second chart drawing on the same canvas takes it over
	require.NoError(t, l.Replace(context.Background(), okRequest(shared)))
	assert.Equal(t, 1, l.Bound())
	_, ok := l.Renderer(ChartTrend)
	assert.False(t, ok)
	assert.True(t, f.created[0].Destroyed())
}

func TestReplaceConcurrentSameCanvas(t *testing.T) {
	f := &fakeFactory{}
	l := NewLifecycle(f)
	canvas := render.NewCanvas(ChartRegion, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Replace(context.Background(), okRequest(canvas))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, l.Bound())
	live := 0
	for _, r := range f.created {
		if !r.Destroyed() {
			live++
		}
	}
	assert.Equal(t, 1, live)
}

func TestRestyle(t *testing.T) {
	f := &fakeFactory{}
	l := NewLifecycle(f)

	_, err := l.Restyle(ChartRegion, charts.KindLine, nil)
	assert.True(t, errors.Is(err, models.ErrChartNotReady))

	canvas := render.NewCanvas(ChartRegion, 0, 0)
	require.NoError(t, l.Replace(context.Background(), okRequest(canvas)))

	cfg, err := l.Restyle(ChartRegion, charts.KindArea, nil)
	require.NoError(t, err)
	assert.Equal(t, "line", cfg.Type)
	assert.True(t, cfg.Data.Datasets[0].Fill)
	assert.Equal(t, 0.2, cfg.Data.Datasets[0].BackgroundColor[0].A)
	assert.True(t, f.created[0].Destroyed())
	assert.Equal(t, 1, l.Bound())

	// restyling starts from the mapped config, not the previous restyle
	cfg, err = l.Restyle(ChartRegion, charts.KindBar, nil)
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg.Type)
	assert.False(t, cfg.Data.Datasets[0].Fill)
	assert.Equal(t, 0.6, cfg.Data.Datasets[0].BackgroundColor[0].A)
	assert.Equal(t, "<r3 bar>", string(canvas.Bytes()))
}

func TestDuplicate(t *testing.T) {
	f := &fakeFactory{}
	l := NewLifecycle(f)
	modal := render.NewCanvas(ModalCanvasID, 0, 0)

	_, err := l.Duplicate(ChartRegion, modal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrChartNotReady))
	assert.Equal(t, "Chart is still loading. Please wait a moment and try again.", models.UserMessage(err))

	canvas := render.NewCanvas(ChartRegion, 0, 0)
	require.NoError(t, l.Replace(context.Background(), okRequest(canvas)))

	cfg, err := l.Duplicate(ChartRegion, modal)
	require.NoError(t, err)
	assert.Equal(t, "bar", cfg.Type)
	assert.Equal(t, 2, l.Bound())

	// opening again replaces the copy, the chart itself is untouched
	_, err = l.Duplicate(ChartRegion, modal)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Bound())
	assert.True(t, f.created[1].Destroyed())
	assert.False(t, f.created[0].Destroyed())

	l.Release(ModalCanvasID)
	assert.Equal(t, 1, l.Bound())
	assert.True(t, modal.Empty())
	_, ok := l.Renderer(ChartRegion)
	assert.True(t, ok)

	l.Destroy(ChartRegion)
	assert.Equal(t, 0, l.Bound())
	_, ok = l.Config(ChartRegion)
	assert.False(t, ok)
}
