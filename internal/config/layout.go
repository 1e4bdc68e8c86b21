package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout customises how individual charts start out
type Layout struct {
	Charts []ChartLayout `yaml:"charts"`
}

// ChartLayout overrides the initial kind and title of one chart
type ChartLayout struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"`
	Title string `yaml:"title"`
}

// LoadLayout reads a YAML layout file
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}
	return ParseLayout(data)
}

// ParseLayout decodes layout YAML
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	seen := make(map[string]bool, len(l.Charts))
	for i, c := range l.Charts {
		if c.ID == "" {
			return nil, fmt.Errorf("layout entry %d has no id", i)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("layout lists chart %s twice", c.ID)
		}
		seen[c.ID] = true
	}
	return &l, nil
}

// For returns the override for a chart id, if any
func (l *Layout) For(id string) (ChartLayout, bool) {
	if l == nil {
		return ChartLayout{}, false
	}
	for _, c := range l.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartLayout{}, false
}
