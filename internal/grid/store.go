package grid

import "sync"

// SnapshotStore holds the most recently received map and cost grids.
// Updates are last-write-wins: each replaces the prior grid as a whole
// unit, so a reader never observes a partially written grid. Either
// pointer is nil until the first update of that kind arrives; callers
// must treat nil as "not ready".
type SnapshotStore struct {
	mu      sync.RWMutex
	mapGrid *Grid
	costmap *Grid
}

// NewSnapshotStore returns an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// UpdateMap replaces the current occupancy grid.
func (s *SnapshotStore) UpdateMap(g *Grid) {
	s.mu.Lock()
	s.mapGrid = g
	s.mu.Unlock()
}

// UpdateCostmap replaces the current cost grid.
func (s *SnapshotStore) UpdateCostmap(g *Grid) {
	s.mu.Lock()
	s.costmap = g
	s.mu.Unlock()
}

// Snapshot returns the grids current at the instant of the call.
// Either may be nil. The returned grids are shared, immutable values;
// a later update swaps the pointers and never touches these.
func (s *SnapshotStore) Snapshot() (mapGrid, costmap *Grid) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mapGrid, s.costmap
}
