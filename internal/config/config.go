package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the sales dashboard service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8990"`

	// Metrics API the dashboard reads from
	MetricsAPIURL string        `env:"METRICS_API_URL,default=http://localhost:5001"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT,default=30s"`

	// Filter defaults used on first load and on reset
	DefaultPeriodType    string `env:"DEFAULT_PERIOD_TYPE,default=MS"`
	DefaultStartDate     string `env:"DEFAULT_START_DATE,default=2024-01-01"`
	DefaultEndDate       string `env:"DEFAULT_END_DATE,default=2025-12-31"`
	DefaultForecastStart string `env:"DEFAULT_FORECAST_START,default=2026-01-01"`
	DefaultRegion        string `env:"DEFAULT_REGION,default=all"`

	// Months offered by the per-chart date pickers
	DateOptionsFrom string `env:"DATE_OPTIONS_FROM,default=2023-01-01"`
	DateOptionsTo   string `env:"DATE_OPTIONS_TO,default=2025-05-01"`

	// Renderer capabilities
	FunnelEnabled bool `env:"FUNNEL_ENABLED,default=true"`

	// Snapshot storage
	DeploymentMode    string `env:"DEPLOYMENT_MODE,default=local"`
	LocalSnapshotsDir string `env:"LOCAL_SNAPSHOTS_DIR,default=./snapshots"`
	GCSBucket         string `env:"GCS_BUCKET"`

	// Upper bound on live browser sessions, each with its own dashboard
	MaxSessions int `env:"MAX_SESSIONS,default=1000"`

	// Optional YAML file with per-chart initial kinds and titles
	LayoutFile string `env:"LAYOUT_FILE"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.DeploymentMode == "gcs" && cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required when DEPLOYMENT_MODE=gcs")
	}
	return &cfg, nil
}

// Layout loads the layout file when one is configured
func (c *Config) Layout() (*Layout, error) {
	if c.LayoutFile == "" {
		return &Layout{}, nil
	}
	return LoadLayout(c.LayoutFile)
}
