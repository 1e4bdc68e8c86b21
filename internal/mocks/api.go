// Package mocks serves canned metrics API responses. It backs the tests
// and `salesdash serve --mock` for running the dashboard without the API.
package mocks

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"salesdash/internal/logger"
)

type response struct {
	status int
	body   string
}

// MockAPI is an http.Handler answering metrics API paths
type MockAPI struct {
	mu        sync.Mutex
	responses map[string]response
	hooks     map[string]func(*http.Request)
	calls     map[string]int
	queries   map[string]url.Values
	log       *logger.Logger
}

// NewMockAPI answers every known path with DefaultPayloads
func NewMockAPI() *MockAPI {
	m := &MockAPI{
		responses: make(map[string]response, len(DefaultPayloads)),
		hooks:     make(map[string]func(*http.Request)),
		calls:     make(map[string]int),
		queries:   make(map[string]url.Values),
		log:       logger.WithComponent("mock-api"),
	}
	for path, body := range DefaultPayloads {
		m.responses[path] = response{status: http.StatusOK, body: body}
	}
	return m
}

// LoadMockAPI starts from the defaults and overrides a path with
// <dir>/<name>.json when present, e.g. sales-trend.json for /api/sales-trend.
func LoadMockAPI(dir string) (*MockAPI, error) {
	m := NewMockAPI()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mock data dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read mock payload %s: %w", e.Name(), err)
		}
		path := "/api/" + strings.TrimSuffix(e.Name(), ".json")
		m.Set(path, http.StatusOK, string(content))
		m.log.Debug("loaded mock payload", logger.Fields{"path": path})
	}
	return m, nil
}

// Set replaces the response for path
func (m *MockAPI) Set(path string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = response{status: status, body: body}
}

// SetHook runs fn before answering path. fn may block.
func (m *MockAPI) SetHook(path string, fn func(*http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fn == nil {
		delete(m.hooks, path)
		return
	}
	m.hooks[path] = fn
}

// Calls counts requests to path
func (m *MockAPI) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// TotalCalls counts every request
func (m *MockAPI) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// LastQuery is the query of the latest request to path
func (m *MockAPI) LastQuery(path string) url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[path]
}

func (m *MockAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.calls[r.URL.Path]++
	m.queries[r.URL.Path] = r.URL.Query()
	hook := m.hooks[r.URL.Path]
	resp, ok := m.responses[r.URL.Path]
	m.mu.Unlock()

	if hook != nil {
		hook(r)
	}
	if !ok {
		resp = response{status: http.StatusNotFound, body: `{"error": "not found"}`}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}
