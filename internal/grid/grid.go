// Package grid holds the occupancy and traversal-cost grid model shared by
// the exploration pipeline. Grids arrive from upstream mapping as whole
// snapshots and are never mutated in place; an update replaces the previous
// grid wholesale.
package grid

import (
	"fmt"
)

// Cell value sentinels. Values between CellFree and CellOccupied are
// occupancy probabilities; detection treats anything other than CellFree
// as non-free.
const (
	CellUnknown  int8 = -1
	CellFree     int8 = 0
	CellOccupied int8 = 100
)

// Grid is a row-major 2D occupancy or cost grid with a physical resolution
// and world-frame origin. Immutable once constructed.
type Grid struct {
	Width      int
	Height     int
	Resolution float64 // metres per cell
	OriginX    float64 // world X of cell (0,0)
	OriginY    float64 // world Y of cell (0,0)
	Cells      []int8  // row-major, len = Width*Height
}

// Validate checks the structural invariant len(Cells) == Width*Height.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive: %dx%d", g.Width, g.Height)
	}
	if len(g.Cells) != g.Width*g.Height {
		return fmt.Errorf("grid cell count %d does not match %dx%d", len(g.Cells), g.Width, g.Height)
	}
	return nil
}

// At returns the cell value at (row, col). Callers are responsible for
// bounds; the detector only ever scans interior cells.
func (g *Grid) At(row, col int) int8 {
	return g.Cells[row*g.Width+col]
}

// WorldX converts a column index to a world-frame X coordinate.
func (g *Grid) WorldX(col int) float64 {
	return float64(col)*g.Resolution + g.OriginX
}

// WorldY converts a row index to a world-frame Y coordinate.
func (g *Grid) WorldY(row int) float64 {
	return float64(row)*g.Resolution + g.OriginY
}
