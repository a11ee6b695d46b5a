package frontier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/explorer/internal/grid"
)

// makeGrid builds a grid with every cell set to fill.
func makeGrid(w, h int, fill int8) *grid.Grid {
	cells := make([]int8, w*h)
	for i := range cells {
		cells[i] = fill
	}
	return &grid.Grid{
		Width: w, Height: h,
		Resolution: 0.05,
		OriginX:    -1.0, OriginY: -1.0,
		Cells: cells,
	}
}

func setCell(g *grid.Grid, row, col int, v int8) {
	g.Cells[row*g.Width+col] = v
}

func TestDetectSingleUnknownCell(t *testing.T) {
	t.Parallel()

	// 5x5 all free except the centre, which is unknown. The eight
	// neighbors of the centre are frontiers; nothing on the border is.
	m := makeGrid(5, 5, grid.CellFree)
	setCell(m, 2, 2, grid.CellUnknown)
	c := makeGrid(5, 5, 0)
	setCell(c, 1, 1, 7)

	frontiers, err := Detect(m, c)
	require.NoError(t, err)
	require.Len(t, frontiers, 8)

	want := []Frontier{
		{Row: 1, Col: 1, Cost: 7},
		{Row: 1, Col: 2}, {Row: 1, Col: 3},
		{Row: 2, Col: 1}, {Row: 2, Col: 3},
		{Row: 3, Col: 1}, {Row: 3, Col: 2}, {Row: 3, Col: 3},
	}
	if diff := cmp.Diff(want, frontiers); diff != "" {
		t.Errorf("frontier mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectBorderExclusion(t *testing.T) {
	t.Parallel()

	// Unknown cells along the entire border: interior free cells next to
	// them are frontiers, but no frontier may itself sit on the border.
	m := makeGrid(6, 6, grid.CellFree)
	for i := 0; i < 6; i++ {
		setCell(m, 0, i, grid.CellUnknown)
		setCell(m, 5, i, grid.CellUnknown)
		setCell(m, i, 0, grid.CellUnknown)
		setCell(m, i, 5, grid.CellUnknown)
	}
	c := makeGrid(6, 6, 0)

	frontiers, err := Detect(m, c)
	require.NoError(t, err)
	require.NotEmpty(t, frontiers)
	for _, f := range frontiers {
		assert.True(t, f.Row >= 1 && f.Row <= 4, "row %d on border", f.Row)
		assert.True(t, f.Col >= 1 && f.Col <= 4, "col %d on border", f.Col)
	}
}

func TestDetectFrontierCondition(t *testing.T) {
	t.Parallel()

	t.Run("occupied cells are never frontiers", func(t *testing.T) {
		t.Parallel()
		m := makeGrid(5, 5, grid.CellOccupied)
		setCell(m, 2, 2, grid.CellUnknown)
		c := makeGrid(5, 5, 0)
		frontiers, err := Detect(m, c)
		require.NoError(t, err)
		assert.Empty(t, frontiers)
	})

	t.Run("intermediate occupancy values are non-free", func(t *testing.T) {
		t.Parallel()
		m := makeGrid(5, 5, 50)
		setCell(m, 2, 2, grid.CellUnknown)
		setCell(m, 1, 1, grid.CellFree)
		c := makeGrid(5, 5, 0)
		frontiers, err := Detect(m, c)
		require.NoError(t, err)
		require.Len(t, frontiers, 1)
		assert.Equal(t, Frontier{Row: 1, Col: 1}, frontiers[0])
	})

	t.Run("no unknown cells means no frontiers", func(t *testing.T) {
		t.Parallel()
		m := makeGrid(8, 8, grid.CellFree)
		c := makeGrid(8, 8, 0)
		frontiers, err := Detect(m, c)
		require.NoError(t, err)
		assert.Empty(t, frontiers)
	})
}

func TestDetectDeterminism(t *testing.T) {
	t.Parallel()

	m := makeGrid(7, 7, grid.CellFree)
	setCell(m, 2, 2, grid.CellUnknown)
	setCell(m, 4, 5, grid.CellUnknown)
	c := makeGrid(7, 7, 3)

	first, err := Detect(m, c)
	require.NoError(t, err)
	second, err := Detect(m, c)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated detection differs (-first +second):\n%s", diff)
	}

	// Row-major ordering: row strictly non-decreasing, col increasing
	// within a row.
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		ordered := cur.Row > prev.Row || (cur.Row == prev.Row && cur.Col > prev.Col)
		assert.True(t, ordered, "output not in scan order at %d: %+v then %+v", i, prev, cur)
	}
}

func TestDetectDimensionMismatch(t *testing.T) {
	t.Parallel()

	m := makeGrid(5, 5, grid.CellFree)
	c := makeGrid(4, 5, 0)
	_, err := Detect(m, c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDetectCostAnnotation(t *testing.T) {
	t.Parallel()

	m := makeGrid(5, 5, grid.CellFree)
	setCell(m, 2, 2, grid.CellUnknown)
	c := makeGrid(5, 5, 0)
	setCell(c, 3, 3, 42)

	frontiers, err := Detect(m, c)
	require.NoError(t, err)
	for _, f := range frontiers {
		if f.Row == 3 && f.Col == 3 {
			assert.Equal(t, 42.0, f.Cost)
			return
		}
	}
	t.Fatal("frontier (3,3) not found")
}
