// Package frontier detects and selects exploration frontiers: free map
// cells bordering at least one unknown cell, scored by the traversal cost
// grid and by distance from the robot.
package frontier

import (
	"errors"
	"fmt"

	"github.com/banshee-data/explorer/internal/grid"
)

// ErrDimensionMismatch reports a map/costmap dimension disagreement. This
// is an upstream contract break, not a recoverable condition: the caller
// must surface it rather than compute on misaligned grids.
var ErrDimensionMismatch = errors.New("map and costmap dimensions differ")

// Frontier is a free map cell adjacent to at least one unknown cell,
// annotated with the costmap value at the same cell. Identity for
// visited-tracking purposes is the (Row, Col) pair only; Cost may change
// between detections of the same physical frontier as the costmap updates.
type Frontier struct {
	Row  int
	Col  int
	Cost float64
}

// neighborOffsets is the 8-connected neighborhood.
var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Detect scans the map grid for frontier cells. Border cells are excluded
// because their 8-neighborhood is incomplete. Output is in row-major scan
// order, so repeated calls on identical inputs produce identical,
// identically ordered results.
func Detect(mapGrid, costmap *grid.Grid) ([]Frontier, error) {
	if mapGrid.Width != costmap.Width || mapGrid.Height != costmap.Height {
		return nil, fmt.Errorf("%w: map %dx%d, costmap %dx%d",
			ErrDimensionMismatch, mapGrid.Width, mapGrid.Height, costmap.Width, costmap.Height)
	}

	var frontiers []Frontier
	for row := 1; row < mapGrid.Height-1; row++ {
		for col := 1; col < mapGrid.Width-1; col++ {
			if mapGrid.At(row, col) != grid.CellFree {
				continue
			}
			for _, off := range neighborOffsets {
				if mapGrid.At(row+off[0], col+off[1]) == grid.CellUnknown {
					frontiers = append(frontiers, Frontier{
						Row:  row,
						Col:  col,
						Cost: float64(costmap.At(row, col)),
					})
					break
				}
			}
		}
	}
	return frontiers, nil
}
