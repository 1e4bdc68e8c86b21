package storage

import (
	"context"
	"time"
)

// SnapshotStore persists dashboard snapshots. Every file of one snapshot
// lives in the folder SnapshotFolder(timestamp).
type SnapshotStore interface {
	// Close releases the underlying client
	Close() error

	// StoreFile writes one snapshot file
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error

	// GetFile reads a file by its path relative to the store root
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListSnapshots lists snapshot folders, newest first. limit <= 0 lists all.
	ListSnapshots(ctx context.Context, limit int) ([]string, error)

	// Location describes where snapshots are written, for logs
	Location() string
}
