package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/explorer/internal/grid"
)

// centreFrontiers returns the eight frontiers around an unknown cell at
// (2,2) in a 5x5 free map, matching detector scan order.
func centreFrontiers(t *testing.T) []Frontier {
	t.Helper()
	m := makeGrid(5, 5, grid.CellFree)
	setCell(m, 2, 2, grid.CellUnknown)
	c := makeGrid(5, 5, 0)
	frontiers, err := Detect(m, c)
	require.NoError(t, err)
	require.Len(t, frontiers, 8)
	return frontiers
}

func TestSelectNearest(t *testing.T) {
	t.Parallel()

	// From the grid origin corner, (1,1) is the nearest of the eight.
	s := NewSelector()
	chosen, ok := s.Select(centreFrontiers(t), 0, 0)
	require.True(t, ok)
	assert.Equal(t, 1, chosen.Row)
	assert.Equal(t, 1, chosen.Col)
}

func TestSelectCostTieBreak(t *testing.T) {
	t.Parallel()

	// Two frontiers equidistant from the robot; the cheaper one wins
	// regardless of slice order.
	a := Frontier{Row: 0, Col: 2, Cost: 30}
	b := Frontier{Row: 2, Col: 0, Cost: 10}

	s := NewSelector()
	chosen, ok := s.Select([]Frontier{a, b}, 0, 0)
	require.True(t, ok)
	assert.Equal(t, b, chosen)

	s = NewSelector()
	chosen, ok = s.Select([]Frontier{b, a}, 0, 0)
	require.True(t, ok)
	assert.Equal(t, b, chosen)
}

func TestSelectNearerBeatsCheaper(t *testing.T) {
	t.Parallel()

	// A farther, cheaper frontier must not displace a nearer one. The
	// original selection expression could do so depending on evaluation
	// order; nearest-first is the intended policy.
	near := Frontier{Row: 1, Col: 1, Cost: 90}
	far := Frontier{Row: 4, Col: 4, Cost: 1}

	s := NewSelector()
	chosen, ok := s.Select([]Frontier{far, near}, 0, 0)
	require.True(t, ok)
	assert.Equal(t, near, chosen)
}

func TestSelectMarksVisited(t *testing.T) {
	t.Parallel()

	frontiers := centreFrontiers(t)
	s := NewSelector()

	// Repeated selection over the same set walks outward by distance and
	// never returns the same identity twice.
	seen := make(map[CellKey]bool)
	for i := 0; i < len(frontiers); i++ {
		chosen, ok := s.Select(frontiers, 0, 0)
		require.True(t, ok, "selection %d", i)
		key := CellKey{chosen.Row, chosen.Col}
		assert.False(t, seen[key], "frontier %+v selected twice", key)
		seen[key] = true
		assert.Equal(t, i+1, s.VisitedCount())
	}

	// All visited: nothing left to select.
	_, ok := s.Select(frontiers, 0, 0)
	assert.False(t, ok)
	assert.Equal(t, len(frontiers), s.VisitedCount())
}

func TestSelectSecondCallNextNearest(t *testing.T) {
	t.Parallel()

	frontiers := centreFrontiers(t)
	s := NewSelector()

	first, ok := s.Select(frontiers, 0, 0)
	require.True(t, ok)
	assert.Equal(t, CellKey{1, 1}, CellKey{first.Row, first.Col})

	// Second call on the same set must return a different frontier at the
	// next-smallest distance (either (1,2) or (2,1), distance sqrt(5)).
	second, ok := s.Select(frontiers, 0, 0)
	require.True(t, ok)
	assert.NotEqual(t, CellKey{first.Row, first.Col}, CellKey{second.Row, second.Col})
	assert.Equal(t, 3, second.Row+second.Col)
}

func TestSelectEmptyInput(t *testing.T) {
	t.Parallel()

	s := NewSelector()
	_, ok := s.Select(nil, 0, 0)
	assert.False(t, ok)
	assert.Zero(t, s.VisitedCount())
}

func TestVisitedSurvivesCostChange(t *testing.T) {
	t.Parallel()

	// Identity is (row,col): the same cell with an updated cost is still
	// visited and is never re-selected.
	s := NewSelector()
	_, ok := s.Select([]Frontier{{Row: 3, Col: 4, Cost: 10}}, 0, 0)
	require.True(t, ok)

	_, ok = s.Select([]Frontier{{Row: 3, Col: 4, Cost: 55}}, 0, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, s.VisitedCount())
}
