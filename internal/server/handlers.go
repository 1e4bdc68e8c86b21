package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salesdash/internal/config"
	"salesdash/internal/dashboard"
	"salesdash/internal/logger"
	"salesdash/internal/models"
	"salesdash/internal/reports"
	"salesdash/internal/storage"
)

type dashboardResponse struct {
	OK      bool                  `json:"ok"`
	Filters dashboard.FilterState `json:"filters"`
	Cards   dashboard.Cards       `json:"cards"`
	Charts  []dashboard.Status    `json:"charts"`
}

func dashboardState(d *dashboard.Dashboard) dashboardResponse {
	return dashboardResponse{OK: true, Filters: d.Filters().State(), Cards: d.Cards(), Charts: d.Statuses()}
}

// handleHealth provides the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	snapshots := "disabled"
	if s.snapshots != nil {
		snapshots = "ok"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   config.GetVersion(),
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.startedAt).Round(time.Second).String(),
		"sessions":  s.sessions.Len(),
		"checks": gin.H{
			"config":      "ok",
			"snapshots":   snapshots,
			"metrics_api": s.cfg.MetricsAPIURL,
		},
	})
}

func (s *Server) handleGetFilters(c *gin.Context) {
	d := sessionFrom(c).dash
	kinds := make(map[string]string)
	for _, id := range d.Registry().IDs() {
		kinds[id] = string(d.Filters().Kind(id))
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"filters":       d.Filters().State(),
		"defaults":      d.Filters().Defaults(),
		"chart_filters": d.Filters().ChartFilters(),
		"kinds":         kinds,
		"date_options":  d.Filters().DateOptions(),
	})
}

func (s *Server) handleApplyFilters(c *gin.Context) {
	var in dashboard.FilterState
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		abortWithError(c, err)
		return
	}
	d := sessionFrom(c).dash
	if _, err := d.ApplyFilters(c.Request.Context(), in); err != nil {
		// per-chart failures are in the chart statuses
		s.log.Warn("dashboard reload had failures", logger.Fields{"error": err.Error()})
	}
	c.JSON(http.StatusOK, dashboardState(d))
}

func (s *Server) handleResetFilters(c *gin.Context) {
	d := sessionFrom(c).dash
	if _, err := d.ResetFilters(c.Request.Context()); err != nil {
		s.log.Warn("dashboard reload had failures", logger.Fields{"error": err.Error()})
	}
	c.JSON(http.StatusOK, dashboardState(d))
}

type regionRequest struct {
	Region string `json:"region" binding:"required"`
}

func (s *Server) handleRegion(c *gin.Context) {
	var req regionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Region is required.")
		return
	}
	d := sessionFrom(c).dash
	if _, err := d.ChangeRegion(c.Request.Context(), req.Region); err != nil {
		s.log.Warn("region refresh had failures", logger.Fields{"region": req.Region, "error": err.Error()})
	}
	c.JSON(http.StatusOK, dashboardState(d))
}

func (s *Server) handleCards(c *gin.Context) {
	sess := sessionFrom(c)
	sess.ensureLoaded(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true, "cards": sess.dash.Cards()})
}

func (s *Server) handleCharts(c *gin.Context) {
	sess := sessionFrom(c)
	sess.ensureLoaded(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true, "charts": sess.dash.Statuses(), "fullscreen": sess.dash.FullscreenChart()})
}

// chartID resolves the :id parameter, answering 404 for unknown charts
func chartID(c *gin.Context, d *dashboard.Dashboard) (string, bool) {
	id := c.Param("id")
	if _, ok := d.Registry().Get(id); !ok {
		abortWithError(c, models.NewChartError(id, models.ErrMissingTarget, "Unknown chart: "+id, nil))
		return "", false
	}
	return id, true
}

func (s *Server) handleChart(c *gin.Context) {
	d := sessionFrom(c).dash
	id, ok := chartID(c, d)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chart": d.Status(id)})
}

// handleChartRender serves what is drawn on a chart's canvas
func (s *Server) handleChartRender(c *gin.Context) {
	sess := sessionFrom(c)
	d := sess.dash
	id := c.Param("id")
	if id != dashboard.ModalCanvasID {
		if _, ok := chartID(c, d); !ok {
			return
		}
		sess.ensureLoaded(c.Request.Context())
	}
	canvas, ok := d.Canvases().Get(id)
	if !ok || canvas.Empty() {
		msg := "Chart is not drawn."
		if st := d.Status(id); st.Error != "" {
			msg = st.Error
		}
		abortWithError(c, models.NewChartError(id, models.ErrChartNotReady, msg, nil))
		return
	}
	contentType := "text/html; charset=utf-8"
	if d.Factory().Name() == "png" {
		contentType = "image/png"
	}
	c.Data(http.StatusOK, contentType, canvas.Bytes())
}

type chartFilterRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleChartFilter(c *gin.Context) {
	d := sessionFrom(c).dash
	id, ok := chartID(c, d)
	if !ok {
		return
	}
	var req chartFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := d.ApplyChartFilter(c.Request.Context(), id, req.Date); err != nil && chartRequestErr(err) {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chart": d.Status(id)})
}

type chartKindRequest struct {
	Kind string `json:"kind" binding:"required"`
}

func (s *Server) handleChartKind(c *gin.Context) {
	d := sessionFrom(c).dash
	id, ok := chartID(c, d)
	if !ok {
		return
	}
	var req chartKindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Chart kind is required.")
		return
	}
	st, err := d.ChangeChartKind(id, req.Kind)
	if err != nil && chartRequestErr(err) {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chart": st})
}

func (s *Server) handleChartRefresh(c *gin.Context) {
	d := sessionFrom(c).dash
	id, ok := chartID(c, d)
	if !ok {
		return
	}
	if err := d.UpdateCharts(c.Request.Context(), d.Filters().State(), id); err != nil && chartRequestErr(err) {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chart": d.Status(id)})
}

func (s *Server) handleFullscreen(c *gin.Context) {
	d := sessionFrom(c).dash
	id, ok := chartID(c, d)
	if !ok {
		return
	}
	cfg, err := d.Fullscreen(id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chart": id, "canvas": dashboard.ModalCanvasID, "config": cfg})
}

func (s *Server) handleCloseFullscreen(c *gin.Context) {
	sessionFrom(c).dash.CloseFullscreen()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleRecentActivity(c *gin.Context) {
	d := sessionFrom(c).dash
	activities, err := d.RecentActivity(c.Request.Context(), c.Query("filter"))
	if err != nil {
		s.panelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "activities": activities})
}

func (s *Server) handleTopPerformers(c *gin.Context) {
	d := sessionFrom(c).dash
	performers, err := d.TopPerformers(c.Request.Context(), c.Query("filter"))
	if err != nil {
		s.panelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "performers": performers})
}

func (s *Server) handlePendingOrders(c *gin.Context) {
	d := sessionFrom(c).dash
	orders, err := d.PendingOrders(c.Request.Context())
	if err != nil {
		s.panelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "orders": orders})
}

func (s *Server) handleRegions(c *gin.Context) {
	d := sessionFrom(c).dash
	regions, err := d.Regions(c.Request.Context())
	if err != nil {
		s.panelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "regions": regions})
}

func (s *Server) panelError(c *gin.Context, err error) {
	status, code := errStatus(err)
	c.AbortWithStatusJSON(status, errResponse{OK: false, Error: code, Message: dashboard.PanelError(err)})
}

func (s *Server) handleExport(c *gin.Context) {
	sess := sessionFrom(c)
	sess.ensureLoaded(c.Request.Context())
	snap := reports.Capture(sess.dash, s.now())
	data, err := reports.ExportWorkbook(snap)
	if err != nil {
		s.log.Error("failed to export workbook", err)
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+reports.FileWorkbook+`"`)
	c.Data(http.StatusOK, storage.GetContentType(reports.FileWorkbook), data)
}

// handleListSnapshots lists recent snapshots, newest first
func (s *Server) handleListSnapshots(c *gin.Context) {
	if !s.snapshotsEnabled(c) {
		return
	}
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive number")
			return
		}
		limit = min(n, 100)
	}
	folders, err := s.snapshots.List(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("failed to list snapshots", err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"snapshots": folders,
		"count":     len(folders),
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

// handleCreateSnapshot stores a snapshot of the caller's dashboard. Only
// one snapshot is generated at a time; a second request gets 409.
func (s *Server) handleCreateSnapshot(c *gin.Context) {
	if !s.snapshotsEnabled(c) {
		return
	}
	sess := sessionFrom(c)
	sess.ensureLoaded(c.Request.Context())

	folder, err := s.snapshots.Store(c.Request.Context(), reports.Capture(sess.dash, s.now()))
	if err != nil {
		if status, _ := errStatus(err); status != http.StatusConflict {
			s.log.Error("snapshot failed", err)
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"folder": folder,
		"url":    "/snapshots/" + folder + "/" + reports.FileDashboard,
	})
}

// handleSnapshotFile serves stored snapshot files from local storage or GCS
func (s *Server) handleSnapshotFile(c *gin.Context) {
	if !s.snapshotsEnabled(c) {
		return
	}
	filePath := strings.TrimPrefix(c.Param("path"), "/")
	if filePath == "" {
		badRequest(c, "File path required")
		return
	}
	data, err := s.snapshots.File(c.Request.Context(), filePath)
	if err != nil {
		s.log.Debug("snapshot file not found", logger.Fields{"path": filePath, "error": err.Error()})
		c.AbortWithStatusJSON(http.StatusNotFound, errResponse{OK: false, Error: "NOT_FOUND", Message: "File not found"})
		return
	}
	c.Data(http.StatusOK, storage.GetContentType(filePath), data)
}

func (s *Server) snapshotsEnabled(c *gin.Context) bool {
	if s.snapshots == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errResponse{OK: false, Error: "UNAVAILABLE", Message: "Snapshot storage is not configured"})
		return false
	}
	return true
}
