package main

import (
	"context"
	"fmt"
	"net/http/httptest"

	"github.com/spf13/cobra"

	"salesdash/internal/config"
	"salesdash/internal/fetchers"
	"salesdash/internal/logger"
	"salesdash/internal/metrics"
	"salesdash/internal/mocks"
	"salesdash/internal/render"
	"salesdash/internal/reports"
	"salesdash/internal/storage"
)

// app holds what both commands share
type app struct {
	cfg       *config.Config
	layout    *config.Layout
	client    *fetchers.Client
	factory   render.Factory
	metrics   *metrics.Recorder
	store     storage.SnapshotStore
	snapshots *reports.Builder

	mockAPI *httptest.Server
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, layout: layout, metrics: metrics.New()}

	apiURL := cfg.MetricsAPIURL
	if mockDir, _ := cmd.Flags().GetString("mock-dir"); mockDir != "" {
		api, err := mocks.LoadMockAPI(mockDir)
		if err != nil {
			return nil, err
		}
		a.mockAPI = httptest.NewServer(api)
	} else if mock, _ := cmd.Flags().GetBool("mock"); mock {
		a.mockAPI = httptest.NewServer(mocks.NewMockAPI())
	}
	if a.mockAPI != nil {
		apiURL = a.mockAPI.URL
		logger.Info("serving sample metrics API", logger.Fields{"url": apiURL})
	}

	a.client = fetchers.NewClient(apiURL, cfg.HTTPTimeout)
	a.client.SetObserver(a.metrics)

	a.factory = render.Factory(render.EChartsFactory{})
	if !cfg.FunnelEnabled {
		a.factory = render.PNGFactory{}
	}

	store, err := storage.NewSnapshotStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.snapshots = reports.NewBuilder(store, a.metrics)

	logger.Info("configuration loaded", logger.Fields{
		"environment": cfg.Environment,
		"metrics_api": apiURL,
		"renderer":    a.factory.Name(),
		"snapshots":   store.Location(),
		"version":     config.GetVersion(),
	})
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("failed to close snapshot storage", logger.Fields{"error": err.Error()})
		}
	}
	if a.mockAPI != nil {
		a.mockAPI.Close()
	}
}
