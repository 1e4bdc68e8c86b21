package storage

import (
	"context"
	"errors"
	"fmt"

	"salesdash/internal/config"
)

// DeploymentMode selects where snapshots are written
type DeploymentMode string

const (
	DeploymentLocal DeploymentMode = "local"
	DeploymentGCS   DeploymentMode = "gcs"
)

// NewSnapshotStore creates a store for the configured deployment mode
func NewSnapshotStore(ctx context.Context, cfg *config.Config) (SnapshotStore, error) {
	if cfg == nil {
		return nil, errors.New("storage: config is required")
	}
	switch DeploymentMode(cfg.DeploymentMode) {
	case DeploymentLocal, "":
		store, err := NewLocalStore(cfg.LocalSnapshotsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return store, nil

	case DeploymentGCS:
		store, err := NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported deployment mode: %s", cfg.DeploymentMode)
	}
}
