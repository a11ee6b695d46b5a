package nav

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/explorer/internal/grid"
	"github.com/banshee-data/explorer/internal/monitoring"
)

// SimWorld is a scripted robot stand-in so the binary runs end-to-end
// without a navigation stack. It holds a fully-known ground-truth grid,
// publishes a partially-revealed copy to the snapshot store, and on each
// succeeded goal teleports the robot and reveals the cells around it.
type SimWorld struct {
	mu        sync.Mutex
	truth     *grid.Grid
	truthCost *grid.Grid
	mapGrid   *grid.Grid
	costmap   *grid.Grid
	robotRow  int
	robotCol  int

	snapshots *grid.SnapshotStore
	travel    time.Duration
	radius    int
}

// SimWorldConfig sizes the simulated world. Zero values select defaults.
type SimWorldConfig struct {
	Dim        int           // grid side length; default 24
	Resolution float64       // meters per cell; default 0.05
	Travel     time.Duration // simulated drive time per goal; default 50ms
	Radius     int           // Chebyshev reveal radius; default 3
}

// NewSimWorld builds the ground truth, reveals the cells around the
// starting pose, and publishes the first snapshots.
func NewSimWorld(cfg SimWorldConfig, snapshots *grid.SnapshotStore) *SimWorld {
	if cfg.Dim < 8 {
		cfg.Dim = 24
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = 0.05
	}
	if cfg.Travel <= 0 {
		cfg.Travel = 50 * time.Millisecond
	}
	if cfg.Radius <= 0 {
		cfg.Radius = 3
	}

	dim := cfg.Dim
	origin := -cfg.Resolution * float64(dim) / 2

	truth := &grid.Grid{
		Width: dim, Height: dim,
		Resolution: cfg.Resolution,
		OriginX:    origin, OriginY: origin,
		Cells: make([]int8, dim*dim),
	}
	truthCost := &grid.Grid{
		Width: dim, Height: dim,
		Resolution: cfg.Resolution,
		OriginX:    origin, OriginY: origin,
		Cells: make([]int8, dim*dim),
	}
	// Occupied walls, free interior. Cells one step in from a wall carry
	// inflation cost so the selector has something to tie-break on.
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			i := row*dim + col
			if row == 0 || col == 0 || row == dim-1 || col == dim-1 {
				truth.Cells[i] = grid.CellOccupied
				truthCost.Cells[i] = grid.CellOccupied
			} else if row == 1 || col == 1 || row == dim-2 || col == dim-2 {
				truthCost.Cells[i] = 50
			}
		}
	}

	unknown := make([]int8, dim*dim)
	for i := range unknown {
		unknown[i] = grid.CellUnknown
	}
	s := &SimWorld{
		truth:     truth,
		truthCost: truthCost,
		mapGrid: &grid.Grid{
			Width: dim, Height: dim,
			Resolution: cfg.Resolution,
			OriginX:    origin, OriginY: origin,
			Cells: unknown,
		},
		costmap: &grid.Grid{
			Width: dim, Height: dim,
			Resolution: cfg.Resolution,
			OriginX:    origin, OriginY: origin,
			Cells: append([]int8(nil), unknown...),
		},
		robotRow:  dim / 2,
		robotCol:  dim / 2,
		snapshots: snapshots,
		travel:    cfg.Travel,
		radius:    cfg.Radius,
	}
	s.mu.Lock()
	s.revealLocked()
	s.publishLocked()
	s.mu.Unlock()
	return s
}

// CurrentCell implements the loop's position provider.
func (s *SimWorld) CurrentCell() (row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.robotRow, s.robotCol
}

// Submit implements Service. Targets outside the map or on occupied
// cells are rejected; everything else succeeds after the travel delay.
func (s *SimWorld) Submit(ctx context.Context, targetX, targetY float64) (*GoalHandle, error) {
	goalCtx, cancel := context.WithCancel(ctx)
	h := NewGoalHandle(cancel)
	go s.drive(goalCtx, h, targetX, targetY)
	return h, nil
}

func (s *SimWorld) drive(ctx context.Context, h *GoalHandle, targetX, targetY float64) {
	row, col, err := s.cellForWorld(targetX, targetY)
	if err != nil {
		monitoring.Logf("[sim] rejecting goal (%.2f, %.2f): %v", targetX, targetY, err)
		h.ResolveAccepted(false)
		return
	}
	h.ResolveAccepted(true)

	timer := time.NewTimer(s.travel)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		h.ResolveResult(Outcome{Status: GoalCanceled, Reason: ctx.Err().Error()})
		return
	case <-timer.C:
	}

	s.mu.Lock()
	s.robotRow, s.robotCol = row, col
	s.revealLocked()
	s.publishLocked()
	s.mu.Unlock()

	h.ResolveResult(Outcome{
		Status:  GoalSucceeded,
		Payload: fmt.Sprintf("reached cell (%d, %d)", row, col),
	})
}

func (s *SimWorld) cellForWorld(x, y float64) (row, col int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.truth
	col = int((x - g.OriginX) / g.Resolution)
	row = int((y - g.OriginY) / g.Resolution)
	if row < 0 || row >= g.Height || col < 0 || col >= g.Width {
		return 0, 0, fmt.Errorf("target cell (%d, %d) outside %dx%d map", row, col, g.Height, g.Width)
	}
	if g.At(row, col) == grid.CellOccupied {
		return 0, 0, fmt.Errorf("target cell (%d, %d) is occupied", row, col)
	}
	return row, col, nil
}

// revealLocked copies ground truth into the published grids for all
// cells within the reveal radius of the robot.
func (s *SimWorld) revealLocked() {
	g := s.truth
	for row := s.robotRow - s.radius; row <= s.robotRow+s.radius; row++ {
		if row < 0 || row >= g.Height {
			continue
		}
		for col := s.robotCol - s.radius; col <= s.robotCol+s.radius; col++ {
			if col < 0 || col >= g.Width {
				continue
			}
			i := row*g.Width + col
			s.mapGrid.Cells[i] = s.truth.Cells[i]
			s.costmap.Cells[i] = s.truthCost.Cells[i]
		}
	}
}

// publishLocked pushes fresh copies to the snapshot store so readers
// never observe later reveals through a shared slice.
func (s *SimWorld) publishLocked() {
	if s.snapshots == nil {
		return
	}
	mapCopy := *s.mapGrid
	mapCopy.Cells = append([]int8(nil), s.mapGrid.Cells...)
	costCopy := *s.costmap
	costCopy.Cells = append([]int8(nil), s.costmap.Cells...)
	s.snapshots.UpdateMap(&mapCopy)
	s.snapshots.UpdateCostmap(&costCopy)
}
