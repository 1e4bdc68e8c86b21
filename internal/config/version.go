package config

import (
	"os"
	"path/filepath"
	"strings"
)

const fallbackVersion = "0.1.0"

// GetVersion returns APP_VERSION when set (CI builds) and otherwise the
// contents of the nearest VERSION file.
func GetVersion() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	for _, p := range []string{"VERSION", filepath.Join("..", "VERSION"), filepath.Join("..", "..", "VERSION")} {
		if content, err := os.ReadFile(p); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}
	return fallbackVersion
}
