package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"salesdash/internal/logger"
)

// LocalStore keeps snapshots on the local file system
type LocalStore struct {
	baseDir string
	log     *logger.Logger
}

// NewLocalStore creates the base directory if needed
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "snapshots"
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}
	return &LocalStore{
		baseDir: baseDir,
		log:     logger.WithComponent("storage"),
	}, nil
}

// Close is a no-op for local storage
func (l *LocalStore) Close() error {
	return nil
}

func (l *LocalStore) Location() string {
	return l.baseDir
}

// StoreFile writes a file into the snapshot folder for timestamp
func (l *LocalStore) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel, err := cleanRelative(filename)
	if err != nil {
		return err
	}
	filePath := filepath.Join(l.baseDir, filepath.FromSlash(SnapshotFolder(timestamp)), filepath.FromSlash(rel))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	l.log.Debug("stored snapshot file", logger.Fields{"path": filePath, "bytes": len(fileData)})
	return nil
}

// GetFile reads a file relative to the base directory
func (l *LocalStore) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	rel, err := cleanRelative(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// ListSnapshots finds every folder holding a dashboard.html
func (l *LocalStore) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	var indexPaths []string
	err := filepath.WalkDir(l.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() && d.Name() == IndexFile {
			rel, relErr := filepath.Rel(l.baseDir, p)
			if relErr == nil {
				indexPaths = append(indexPaths, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk snapshots directory: %w", err)
	}
	return newestFirst(indexPaths, limit), nil
}
