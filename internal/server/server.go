package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesdash/internal/config"
	"salesdash/internal/dashboard"
	"salesdash/internal/fetchers"
	"salesdash/internal/format"
	"salesdash/internal/logger"
	"salesdash/internal/metrics"
	"salesdash/internal/render"
	"salesdash/internal/reports"
)

const defaultSessionTTL = 12 * time.Hour

// Options configures a Server
type Options struct {
	Config  *config.Config
	Client  *fetchers.Client
	Factory render.Factory
	Layout  *config.Layout
	Metrics *metrics.Recorder
	// Snapshots is nil when snapshot storage is not configured
	Snapshots  *reports.Builder
	SessionTTL time.Duration
	// MaxSessions defaults to Config.MaxSessions
	MaxSessions int
	Now         func() time.Time
}

// Server serves the dashboard over HTTP, one Dashboard per session
type Server struct {
	cfg        *config.Config
	metrics    *metrics.Recorder
	snapshots  *reports.Builder
	sessions   *Sessions
	sessionTTL time.Duration
	now        func() time.Time
	startedAt  time.Time
	log        *logger.Logger
}

// New creates a server. Dashboards share the client, factory and layout.
func New(o Options) (*Server, error) {
	if o.Config == nil {
		return nil, errors.New("server: config is required")
	}
	if o.Client == nil {
		return nil, errors.New("server: metrics API client is required")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = defaultSessionTTL
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = o.Config.MaxSessions
	}

	dateOptions, err := monthOptions(o.Config)
	if err != nil {
		return nil, err
	}
	defaults := dashboard.FiltersFromConfig(o.Config)

	s := &Server{
		cfg:        o.Config,
		metrics:    o.Metrics,
		snapshots:  o.Snapshots,
		sessionTTL: o.SessionTTL,
		now:        o.Now,
		startedAt:  o.Now(),
		log:        logger.WithComponent("server"),
	}
	s.sessions = NewSessions(o.SessionTTL, o.MaxSessions, o.Now, func() (*dashboard.Dashboard, error) {
		return dashboard.New(dashboard.Options{
			Client:      o.Client,
			Factory:     o.Factory,
			Defaults:    defaults,
			DateOptions: dateOptions,
			Layout:      o.Layout,
			Metrics:     o.Metrics,
			Now:         o.Now,
		})
	})
	return s, nil
}

func monthOptions(cfg *config.Config) ([]format.DateOption, error) {
	from, err := format.ParseDate(cfg.DateOptionsFrom)
	if err != nil {
		return nil, errors.Join(errors.New("invalid DATE_OPTIONS_FROM"), err)
	}
	to, err := format.ParseDate(cfg.DateOptionsTo)
	if err != nil {
		return nil, errors.Join(errors.New("invalid DATE_OPTIONS_TO"), err)
	}
	return format.MonthOptions(from, to), nil
}

// Routes configures HTTP routes for the server
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/health", s.handleHealth)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	r.GET("/snapshots/*path", s.handleSnapshotFile)

	app := r.Group("/", s.withSession())
	app.GET("/", s.handleIndex)

	api := app.Group("/api")
	api.GET("/filters", s.handleGetFilters)
	api.POST("/filters/apply", s.handleApplyFilters)
	api.POST("/filters/reset", s.handleResetFilters)
	api.POST("/region", s.handleRegion)
	api.GET("/cards", s.handleCards)

	api.GET("/charts", s.handleCharts)
	api.GET("/charts/:id", s.handleChart)
	api.GET("/charts/:id/render", s.handleChartRender)
	api.POST("/charts/:id/filter", s.handleChartFilter)
	api.POST("/charts/:id/kind", s.handleChartKind)
	api.POST("/charts/:id/refresh", s.handleChartRefresh)
	api.POST("/charts/:id/fullscreen", s.handleFullscreen)
	api.DELETE("/fullscreen", s.handleCloseFullscreen)

	api.GET("/panels/recent-activity", s.handleRecentActivity)
	api.GET("/panels/top-performers", s.handleTopPerformers)
	api.GET("/panels/pending-orders", s.handlePendingOrders)
	api.GET("/regions", s.handleRegions)

	api.GET("/export.xlsx", s.handleExport)
	api.GET("/snapshots", s.handleListSnapshots)
	api.POST("/snapshots", s.handleCreateSnapshot)

	return r
}

// requestLogger logs every request through the structured logger
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := logger.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("request failed", fields)
			return
		}
		log.Debug("request served", fields)
	}
}
