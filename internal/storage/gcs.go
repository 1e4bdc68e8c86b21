package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"salesdash/internal/logger"
)

// GCSStore keeps snapshots in a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

// NewGCSStore creates a GCS client for bucketName. opts are passed to the
// client, e.g. option.WithEndpoint for an emulator.
func NewGCSStore(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucketName == "" {
		return nil, errors.New("GCS bucket name is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucketName,
		log:    logger.WithComponent("storage"),
	}, nil
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}

func (g *GCSStore) Location() string {
	return "gs://" + g.bucket
}

// StoreFile uploads a file into the snapshot folder for timestamp
func (g *GCSStore) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	rel, err := cleanRelative(filename)
	if err != nil {
		return err
	}
	objectPath := SnapshotFolder(timestamp) + "/" + rel
	g.log.Debug("storing file to GCS", logger.Fields{"object": g.Location() + "/" + objectPath})

	writer := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = GetContentType(filename)
	writer.CacheControl = "public, max-age=3600"
	writer.Metadata = map[string]string{
		"generated-at": timestamp.Format(time.RFC3339),
		"filename":     rel,
	}

	if _, err := writer.Write(fileData); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write file to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS file upload: %w", err)
	}
	return nil
}

// GetFile downloads an object by its path in the bucket
func (g *GCSStore) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	rel, err := cleanRelative(filePath)
	if err != nil {
		return nil, err
	}
	reader, err := g.client.Bucket(g.bucket).Object(rel).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for file %s: %w", filePath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

// ListSnapshots lists folders holding a dashboard.html object
func (g *GCSStore) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{})

	var indexPaths []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		if strings.HasSuffix(attrs.Name, "/"+IndexFile) {
			indexPaths = append(indexPaths, attrs.Name)
		}
	}
	return newestFirst(indexPaths, limit), nil
}
