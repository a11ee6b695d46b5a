package grid

import (
	"gonum.org/v1/gonum/stat"
)

// CoverageStats summarises how much of a map grid has been explored and
// the traversal cost profile of the known area. Served by the monitor
// status endpoint and logged when exploration completes.
type CoverageStats struct {
	TotalCells       int     `json:"total_cells"`
	FreeCells        int     `json:"free_cells"`
	OccupiedCells    int     `json:"occupied_cells"`
	UnknownCells     int     `json:"unknown_cells"`
	ExploredFraction float64 `json:"explored_fraction"` // 1 - unknown/total
	CostMean         float64 `json:"cost_mean"`         // over free map cells
	CostStdDev       float64 `json:"cost_std_dev"`
}

// ComputeCoverage tallies cell classes on the map grid and, when a costmap
// with matching dimensions is supplied, cost statistics over free cells.
// A nil map grid yields zero stats.
func ComputeCoverage(mapGrid, costmap *Grid) CoverageStats {
	var cs CoverageStats
	if mapGrid == nil {
		return cs
	}
	cs.TotalCells = len(mapGrid.Cells)

	withCost := costmap != nil &&
		costmap.Width == mapGrid.Width && costmap.Height == mapGrid.Height
	var costs []float64
	for i, v := range mapGrid.Cells {
		switch {
		case v == CellUnknown:
			cs.UnknownCells++
		case v == CellFree:
			cs.FreeCells++
			if withCost {
				costs = append(costs, float64(costmap.Cells[i]))
			}
		default:
			cs.OccupiedCells++
		}
	}
	if cs.TotalCells > 0 {
		cs.ExploredFraction = 1 - float64(cs.UnknownCells)/float64(cs.TotalCells)
	}
	if len(costs) > 0 {
		cs.CostMean, cs.CostStdDev = stat.MeanStdDev(costs, nil)
		if len(costs) == 1 {
			cs.CostStdDev = 0
		}
	}
	return cs
}
