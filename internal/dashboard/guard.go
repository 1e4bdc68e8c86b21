package dashboard

import "sync"

// UpdateGuard tracks which charts have an update in flight and whether a
// full dashboard reload is running. It also hands out per-chart
// generation tokens so a late response can tell it has been superseded.
type UpdateGuard struct {
	mu       sync.Mutex
	updating map[string]bool
	loading  bool
	gens     map[string]uint64
}

func NewUpdateGuard() *UpdateGuard {
	return &UpdateGuard{
		updating: make(map[string]bool),
		gens:     make(map[string]uint64),
	}
}

// TryAcquire marks chartID as updating. It returns false, and changes
// nothing, when an update is already in flight.
func (g *UpdateGuard) TryAcquire(chartID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updating[chartID] {
		return false
	}
	g.updating[chartID] = true
	return true
}

// Release clears the updating flag whether or not it was set
func (g *UpdateGuard) Release(chartID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.updating, chartID)
}

// Updating reports whether chartID has an update in flight
func (g *UpdateGuard) Updating(chartID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updating[chartID]
}

func (g *UpdateGuard) TryAcquireDashboard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loading {
		return false
	}
	g.loading = true
	return true
}

func (g *UpdateGuard) ReleaseDashboard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
}

// Begin starts a new generation for chartID and returns its token.
// Every trigger calls it, including triggers the guard then drops.
func (g *UpdateGuard) Begin(chartID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[chartID]++
	return g.gens[chartID]
}

// Current reports whether token is still the newest for chartID
func (g *UpdateGuard) Current(chartID string, token uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[chartID] == token
}
