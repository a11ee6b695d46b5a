package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts consistent dimensions", func(t *testing.T) {
		t.Parallel()
		g := &Grid{Width: 3, Height: 2, Resolution: 0.05, Cells: make([]int8, 6)}
		assert.NoError(t, g.Validate())
	})

	t.Run("rejects cell count mismatch", func(t *testing.T) {
		t.Parallel()
		g := &Grid{Width: 3, Height: 2, Cells: make([]int8, 5)}
		assert.Error(t, g.Validate())
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		t.Parallel()
		g := &Grid{Width: 0, Height: 2}
		assert.Error(t, g.Validate())
	})
}

func TestWorldCoordinates(t *testing.T) {
	t.Parallel()

	// Round-trip check at the reference resolution and origin.
	g := &Grid{
		Width: 10, Height: 10,
		Resolution: 0.05,
		OriginX:    -1.0, OriginY: -1.0,
		Cells: make([]int8, 100),
	}
	assert.InDelta(t, 4*0.05-1.0, g.WorldX(4), 1e-12)
	assert.InDelta(t, 7*0.05-1.0, g.WorldY(7), 1e-12)
}

func TestAt(t *testing.T) {
	t.Parallel()

	g := &Grid{Width: 3, Height: 2, Cells: []int8{0, 1, 2, 3, 4, 5}}
	assert.Equal(t, int8(0), g.At(0, 0))
	assert.Equal(t, int8(2), g.At(0, 2))
	assert.Equal(t, int8(3), g.At(1, 0))
	assert.Equal(t, int8(5), g.At(1, 2))
}

func TestSnapshotStore(t *testing.T) {
	t.Parallel()

	t.Run("empty store returns nil grids", func(t *testing.T) {
		t.Parallel()
		s := NewSnapshotStore()
		m, c := s.Snapshot()
		assert.Nil(t, m)
		assert.Nil(t, c)
	})

	t.Run("updates replace wholesale", func(t *testing.T) {
		t.Parallel()
		s := NewSnapshotStore()
		first := &Grid{Width: 2, Height: 2, Cells: make([]int8, 4)}
		second := &Grid{Width: 3, Height: 3, Cells: make([]int8, 9)}

		s.UpdateMap(first)
		m, _ := s.Snapshot()
		require.Same(t, first, m)

		s.UpdateMap(second)
		m, _ = s.Snapshot()
		require.Same(t, second, m)
	})

	t.Run("map and costmap are independent", func(t *testing.T) {
		t.Parallel()
		s := NewSnapshotStore()
		cost := &Grid{Width: 2, Height: 2, Cells: make([]int8, 4)}
		s.UpdateCostmap(cost)
		m, c := s.Snapshot()
		assert.Nil(t, m)
		assert.Same(t, cost, c)
	})
}

func TestComputeCoverage(t *testing.T) {
	t.Parallel()

	t.Run("nil map yields zero stats", func(t *testing.T) {
		t.Parallel()
		cs := ComputeCoverage(nil, nil)
		assert.Zero(t, cs.TotalCells)
	})

	t.Run("tallies cell classes", func(t *testing.T) {
		t.Parallel()
		m := &Grid{Width: 2, Height: 2, Cells: []int8{CellFree, CellUnknown, CellOccupied, 42}}
		cs := ComputeCoverage(m, nil)
		assert.Equal(t, 4, cs.TotalCells)
		assert.Equal(t, 1, cs.FreeCells)
		assert.Equal(t, 1, cs.UnknownCells)
		assert.Equal(t, 2, cs.OccupiedCells) // intermediate values count as occupied
		assert.InDelta(t, 0.75, cs.ExploredFraction, 1e-12)
	})

	t.Run("cost stats over free cells only", func(t *testing.T) {
		t.Parallel()
		m := &Grid{Width: 2, Height: 2, Cells: []int8{CellFree, CellFree, CellOccupied, CellUnknown}}
		c := &Grid{Width: 2, Height: 2, Cells: []int8{10, 30, 99, 99}}
		cs := ComputeCoverage(m, c)
		assert.InDelta(t, 20, cs.CostMean, 1e-12)
		assert.False(t, math.IsNaN(cs.CostStdDev))
	})

	t.Run("costmap with mismatched dimensions is ignored", func(t *testing.T) {
		t.Parallel()
		m := &Grid{Width: 2, Height: 1, Cells: []int8{CellFree, CellFree}}
		c := &Grid{Width: 3, Height: 1, Cells: []int8{1, 2, 3}}
		cs := ComputeCoverage(m, c)
		assert.Zero(t, cs.CostMean)
	})
}
