package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// IndexFile marks a folder as a complete snapshot
const IndexFile = "dashboard.html"

// SnapshotFolder is the folder for a snapshot taken at timestamp.
// Format: YYYY/MM/DD/DashboardSnapshot-YYYY-MM-DD-HH-MM-SS
func SnapshotFolder(timestamp time.Time) string {
	ts := timestamp.UTC()
	return fmt.Sprintf("%04d/%02d/%02d/DashboardSnapshot-%04d-%02d-%02d-%02d-%02d-%02d",
		ts.Year(), ts.Month(), ts.Day(),
		ts.Year(), ts.Month(), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second())
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".json"):
		return "application/json"
	case strings.HasSuffix(filename, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(filename, ".md"):
		return "text/markdown; charset=utf-8"
	case strings.HasSuffix(filename, ".png"):
		return "image/png"
	case strings.HasSuffix(filename, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(filename, ".txt"):
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

// cleanRelative rejects absolute paths and paths leaving the store root
func cleanRelative(p string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid snapshot path %q", p)
	}
	return clean, nil
}

// newestFirst turns index file paths into snapshot folders, newest first
func newestFirst(indexPaths []string, limit int) []string {
	folders := make([]string, 0, len(indexPaths))
	for _, p := range indexPaths {
		folders = append(folders, path.Dir(p))
	}
	// folder names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(folders)))
	if limit > 0 && limit < len(folders) {
		folders = folders[:limit]
	}
	return folders
}
