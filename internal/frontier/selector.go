package frontier

import (
	"math"
	"sync"
)

// CellKey identifies a frontier by grid cell. Cost is deliberately not
// part of the identity: a frontier that reappears at the same cell after
// a costmap update is still considered visited, which keeps the visited
// set monotonic and guarantees the exploration session terminates.
type CellKey struct {
	Row int
	Col int
}

// Selector picks the next frontier to pursue and owns the set of
// frontier identities already chosen as navigation targets. The visited
// set only ever grows and survives for the lifetime of the session.
type Selector struct {
	mu      sync.Mutex
	visited map[CellKey]struct{}
}

// NewSelector returns a Selector with an empty visited set.
func NewSelector() *Selector {
	return &Selector{visited: make(map[CellKey]struct{})}
}

// Select returns the unvisited frontier nearest (straight-line, in cell
// units) to the robot cell, breaking exact distance ties in favour of
// lower cost. The chosen frontier is marked visited at selection time,
// independent of whether navigation to it later succeeds. Returns false
// when every candidate has already been targeted.
func (s *Selector) Select(frontiers []Frontier, robotRow, robotCol int) (Frontier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chosen Frontier
	found := false
	minDist := math.Inf(1)
	for _, f := range frontiers {
		if _, seen := s.visited[CellKey{f.Row, f.Col}]; seen {
			continue
		}
		d := math.Hypot(float64(robotRow-f.Row), float64(robotCol-f.Col))
		if d < minDist || (d == minDist && f.Cost < chosen.Cost) {
			minDist = d
			chosen = f
			found = true
		}
	}
	if found {
		s.visited[CellKey{chosen.Row, chosen.Col}] = struct{}{}
	}
	return chosen, found
}

// VisitedCount reports how many frontier identities have been targeted.
func (s *Selector) VisitedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}
