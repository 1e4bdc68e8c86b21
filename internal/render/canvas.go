// Package render draws chart configurations onto canvases.
//
// A Canvas is a named render target with an output buffer. Renderers are
// created by a Factory, own exactly one canvas, and clear it when destroyed.
package render

import (
	"bytes"
	"sync"
)

// Default canvas size in pixels
const (
	DefaultWidth  = 900
	DefaultHeight = 400
)

// Canvas is a render target identified by its element id
type Canvas struct {
	ID string

	mu            sync.Mutex
	width, height int
	baseW, baseH  int
	buf           bytes.Buffer
}

// NewCanvas creates an empty canvas. Non-positive sizes fall back to the
// defaults.
func NewCanvas(id string, width, height int) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Canvas{ID: id, width: width, height: height, baseW: width, baseH: height}
}

// Size returns the current drawing size
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Resize changes the drawing size until the next Clear
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width > 0 {
		c.width = width
	}
	if height > 0 {
		c.height = height
	}
}

// Clear drops whatever was drawn and restores the original size
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
	c.width, c.height = c.baseW, c.baseH
}

// Write appends rendered output
func (c *Canvas) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Bytes returns a copy of the rendered output
func (c *Canvas) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.buf.Bytes()...)
}

// Empty reports whether nothing is drawn
func (c *Canvas) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len() == 0
}

// Set is a fixed collection of canvases looked up by id
type Set struct {
	mu       sync.RWMutex
	canvases map[string]*Canvas
}

// NewSet creates one default-sized canvas per id
func NewSet(ids ...string) *Set {
	s := &Set{canvases: make(map[string]*Canvas, len(ids))}
	for _, id := range ids {
		s.canvases[id] = NewCanvas(id, 0, 0)
	}
	return s
}

// Get returns the canvas with the given id
func (s *Set) Get(id string) (*Canvas, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.canvases[id]
	return c, ok
}

// Add registers a canvas, replacing one with the same id
func (s *Set) Add(c *Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvases[c.ID] = c
}

// Remove forgets a canvas. Used to model a target that is gone from the page.
func (s *Set) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.canvases, id)
}
