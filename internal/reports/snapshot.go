// Package reports turns the state of a loaded dashboard into snapshot
// files: an ECharts page, a markdown summary, one PNG per chart and an
// XLSX workbook of the chart data.
package reports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"salesdash/internal/charts"
	"salesdash/internal/dashboard"
	"salesdash/internal/logger"
	"salesdash/internal/metrics"
	"salesdash/internal/storage"
)

// Snapshot file names
const (
	FileDashboard = storage.IndexFile
	FileSummary   = "summary.md"
	FileWorkbook  = "chart-data.xlsx"
	chartsDir     = "charts/"
)

// ErrSnapshotInProgress is returned while another snapshot is being built
var ErrSnapshotInProgress = errors.New("snapshot generation already in progress")

// Snapshot is a point-in-time copy of a dashboard
type Snapshot struct {
	TakenAt time.Time
	Filters dashboard.FilterState
	Cards   dashboard.Cards
	Charts  []dashboard.Status
}

// Capture copies the current state of d
func Capture(d *dashboard.Dashboard, now time.Time) Snapshot {
	return Snapshot{
		TakenAt: now.UTC(),
		Filters: d.Filters().State(),
		Cards:   d.Cards(),
		Charts:  d.Statuses(),
	}
}

// Rendered returns the charts that have a config, in dashboard order
func (s Snapshot) Rendered() []dashboard.Status {
	out := make([]dashboard.Status, 0, len(s.Charts))
	for _, st := range s.Charts {
		if st.Config != nil {
			out = append(out, st)
		}
	}
	return out
}

// Builder generates snapshot files and stores them
type Builder struct {
	store   storage.SnapshotStore
	metrics *metrics.Recorder
	width   int
	height  int
	log     *logger.Logger

	// one snapshot at a time
	mu sync.Mutex
}

// NewBuilder creates a builder writing to store. rec may be nil.
func NewBuilder(store storage.SnapshotStore, rec *metrics.Recorder) *Builder {
	return &Builder{
		store:   store,
		metrics: rec,
		width:   900,
		height:  450,
		log:     logger.WithComponent("reports"),
	}
}

// Files generates every file of a snapshot, keyed by relative name
func (b *Builder) Files(s Snapshot) (map[string][]byte, error) {
	files := make(map[string][]byte)

	summary := Summary(s)
	files[FileSummary] = []byte(summary)

	summaryHTML, err := MarkdownToHTML(summary)
	if err != nil {
		return nil, err
	}
	page, err := Page(s, summaryHTML, b.width, b.height)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard page: %w", err)
	}
	files[FileDashboard] = page

	for _, st := range s.Rendered() {
		png, err := ChartPNG(st.ChartID, *st.Config, b.width, b.height)
		if err != nil {
			// the chart is still in the page and workbook
			b.log.Warn("failed to render chart image", logger.Fields{"chart": st.ChartID, "error": err.Error()})
			continue
		}
		files[chartsDir+st.ChartID+".png"] = png
	}

	workbook, err := ExportWorkbook(s)
	if err != nil {
		return nil, err
	}
	files[FileWorkbook] = workbook

	return files, nil
}

// Store generates and stores a snapshot, returning its folder. The
// dashboard page is written last so listings only see complete folders.
func (b *Builder) Store(ctx context.Context, s Snapshot) (folder string, err error) {
	if !b.mu.TryLock() {
		return "", ErrSnapshotInProgress
	}
	defer b.mu.Unlock()
	defer func() { b.metrics.Snapshot(err) }()

	files, err := b.Files(s)
	if err != nil {
		return "", err
	}
	for name, data := range files {
		if name == FileDashboard {
			continue
		}
		if err := b.store.StoreFile(ctx, data, name, s.TakenAt); err != nil {
			return "", fmt.Errorf("failed to store %s: %w", name, err)
		}
	}
	if err := b.store.StoreFile(ctx, files[FileDashboard], FileDashboard, s.TakenAt); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", FileDashboard, err)
	}

	folder = storage.SnapshotFolder(s.TakenAt)
	b.log.Info("snapshot stored", logger.Fields{
		"folder":   folder,
		"location": b.store.Location(),
		"files":    len(files),
	})
	return folder, nil
}

// List returns the newest snapshot folders
func (b *Builder) List(ctx context.Context, limit int) ([]string, error) {
	return b.store.ListSnapshots(ctx, limit)
}

// File reads one stored snapshot file by its path in the store
func (b *Builder) File(ctx context.Context, path string) ([]byte, error) {
	return b.store.GetFile(ctx, path)
}

// chartTitle prefers the title drawn on the chart
func chartTitle(st dashboard.Status) string {
	if st.Config != nil {
		if t := st.Config.Options.Plugins.Title; t != nil && t.Text != "" {
			return t.Text
		}
	}
	return st.Title
}

func statusKind(st dashboard.Status) charts.Kind {
	if st.Config != nil && st.Config.Type != "" {
		return charts.Kind(st.Config.Type)
	}
	return st.Kind
}
