// Package explore runs the autonomous exploration decision loop: on a
// fixed period it reads the current grid snapshot, detects frontiers,
// selects the next one to visit, and drives a single outstanding
// navigation goal until no frontiers remain.
package explore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/explorer/internal/frontier"
	"github.com/banshee-data/explorer/internal/grid"
	"github.com/banshee-data/explorer/internal/nav"
	"github.com/banshee-data/explorer/internal/timeutil"
)

// State is the loop lifecycle state. The transition Running → Terminal is
// one-way; a finished session is never resumed.
type State string

const (
	StateRunning  State = "running"
	StateTerminal State = "terminal"
)

// DefaultTickPeriod matches the reference exploration cadence. It is a
// tunable, not a correctness constraint.
const DefaultTickPeriod = 5 * time.Second

// PositionProvider supplies the robot's current grid cell. The value is a
// point-in-time read with no staleness guarantee beyond "best known".
type PositionProvider interface {
	CurrentCell() (row, col int)
}

// PositionFunc adapts a function to the PositionProvider interface.
type PositionFunc func() (row, col int)

// CurrentCell implements PositionProvider.
func (f PositionFunc) CurrentCell() (int, int) { return f() }

// Detector is the frontier detection function. It exists as a config
// field so tests can substitute instrumented detectors; the default is
// frontier.Detect.
type Detector func(mapGrid, costmap *grid.Grid) ([]frontier.Frontier, error)

// LoopConfig bundles the loop's collaborators. All fields except
// TickPeriod and Detect are required.
type LoopConfig struct {
	Snapshots  *grid.SnapshotStore
	Selector   *frontier.Selector
	Controller *nav.Controller
	Position   PositionProvider

	// TickPeriod is the exploration cadence; zero selects DefaultTickPeriod.
	TickPeriod time.Duration

	// Detect defaults to frontier.Detect.
	Detect Detector

	// Clock defaults to timeutil.RealClock; tests may substitute a
	// timeutil.MockClock to drive ticks manually.
	Clock timeutil.Clock
}

// Stats is a point-in-time snapshot of loop activity for the monitor
// webserver.
type Stats struct {
	State             State `json:"state"`
	Ticks             int   `json:"ticks"`
	SkippedNotReady   int   `json:"skipped_not_ready"`
	SkippedGoalBusy   int   `json:"skipped_goal_busy"`
	SkippedAllVisited int   `json:"skipped_all_visited"`
	LastFrontierCount int   `json:"last_frontier_count"`
	VisitedFrontiers  int   `json:"visited_frontiers"`
	GoalsSubmitted    int   `json:"goals_submitted"`
	GoalsSucceeded    int   `json:"goals_succeeded"`
	GoalsFailed       int   `json:"goals_failed"`
	GoalsRejected     int   `json:"goals_rejected"`
}

// Loop is the exploration orchestrator.
type Loop struct {
	cfg LoopConfig

	done     chan struct{}
	doneOnce sync.Once
	period   chan time.Duration

	mu                sync.Mutex
	state             State
	ticks             int
	skippedNotReady   int
	skippedGoalBusy   int
	skippedAllVisited int
	lastFrontierCount int
}

// NewLoop validates the wiring and returns a loop in the Running state.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Snapshots == nil || cfg.Selector == nil || cfg.Controller == nil || cfg.Position == nil {
		return nil, errors.New("explore: snapshot store, selector, controller and position provider are required")
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	if cfg.Detect == nil {
		cfg.Detect = frontier.Detect
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Loop{
		cfg:    cfg,
		done:   make(chan struct{}),
		period: make(chan time.Duration, 1),
		state:  StateRunning,
	}, nil
}

// SetTickPeriod changes the exploration cadence at runtime. The new
// period takes effect before the next tick fires.
func (l *Loop) SetTickPeriod(d time.Duration) error {
	if d <= 0 {
		return errors.New("explore: tick period must be positive")
	}
	// Replace any pending update rather than queueing behind it.
	select {
	case <-l.period:
	default:
	}
	select {
	case l.period <- d:
	default:
	}
	return nil
}

// Done is closed exactly once, when the loop reaches Terminal. It is the
// "exploration complete" signal for the host process.
func (l *Loop) Done() <-chan struct{} { return l.done }

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot returns current loop statistics.
func (l *Loop) Snapshot() Stats {
	submitted, succeeded, failed, rejected := l.cfg.Controller.Counters()
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		State:             l.state,
		Ticks:             l.ticks,
		SkippedNotReady:   l.skippedNotReady,
		SkippedGoalBusy:   l.skippedGoalBusy,
		SkippedAllVisited: l.skippedAllVisited,
		LastFrontierCount: l.lastFrontierCount,
		VisitedFrontiers:  l.cfg.Selector.VisitedCount(),
		GoalsSubmitted:    submitted,
		GoalsSucceeded:    succeeded,
		GoalsFailed:       failed,
		GoalsRejected:     rejected,
	}
}

// Run drives ticks until exploration completes, the context is canceled,
// or an upstream contract violation surfaces. On completion it returns
// nil after signalling Done; on cancellation it cancels any outstanding
// goal and returns the context error.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.cfg.Clock.NewTicker(l.cfg.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.cfg.Controller.CancelCurrent()
			return ctx.Err()
		case d := <-l.period:
			diagf("tick period changed to %s", d)
			ticker.Reset(d)
		case <-ticker.C():
			terminal, err := l.tick(ctx)
			if err != nil {
				// Dimension mismatch or similar invariant break: escalate
				// to the host rather than compute on bad grids.
				l.cfg.Controller.CancelCurrent()
				return err
			}
			if terminal {
				return nil
			}
		}
	}
}

// tick performs one exploration decision. It returns terminal=true when
// the session reached the Terminal state, and a non-nil error only for
// fatal precondition violations.
func (l *Loop) tick(ctx context.Context) (terminal bool, err error) {
	l.mu.Lock()
	l.ticks++
	tickNo := l.ticks
	l.mu.Unlock()

	mapGrid, costmap := l.cfg.Snapshots.Snapshot()
	if mapGrid == nil || costmap == nil {
		l.mu.Lock()
		l.skippedNotReady++
		l.mu.Unlock()
		diagf("tick %d: grids not ready (map=%t costmap=%t)", tickNo, mapGrid != nil, costmap != nil)
		return false, nil
	}

	frontiers, err := l.cfg.Detect(mapGrid, costmap)
	if err != nil {
		opsf("tick %d: frontier detection failed: %v", tickNo, err)
		return false, err
	}

	l.mu.Lock()
	l.lastFrontierCount = len(frontiers)
	l.mu.Unlock()
	tracef("tick %d: %d frontiers", tickNo, len(frontiers))

	if len(frontiers) == 0 {
		l.terminate()
		return true, nil
	}

	// One outstanding goal: while the previous attempt is non-terminal,
	// drop this tick rather than queueing a second submission.
	if l.cfg.Controller.Busy() {
		l.mu.Lock()
		l.skippedGoalBusy++
		l.mu.Unlock()
		diagf("tick %d: goal in flight, skipping", tickNo)
		return false, nil
	}

	row, col := l.cfg.Position.CurrentCell()
	chosen, ok := l.cfg.Selector.Select(frontiers, row, col)
	if !ok {
		// All current frontiers already targeted: nothing new to do yet.
		// Unknown area may still appear, so this is not completion.
		l.mu.Lock()
		l.skippedAllVisited++
		l.mu.Unlock()
		diagf("tick %d: all %d frontiers already visited", tickNo, len(frontiers))
		return false, nil
	}

	worldX := mapGrid.WorldX(chosen.Col)
	worldY := mapGrid.WorldY(chosen.Row)
	diagf("tick %d: frontier (%d,%d) cost=%.0f -> goal (%.3f, %.3f)",
		tickNo, chosen.Row, chosen.Col, chosen.Cost, worldX, worldY)

	if err := l.cfg.Controller.Submit(ctx, worldX, worldY); err != nil {
		if errors.Is(err, nav.ErrGoalInFlight) {
			l.mu.Lock()
			l.skippedGoalBusy++
			l.mu.Unlock()
			diagf("tick %d: goal slot taken between gate and submit", tickNo)
			return false, nil
		}
		// Submission failures are per-attempt: the frontier stays visited
		// and the next tick selects afresh.
		opsf("tick %d: goal submission failed: %v", tickNo, err)
	}
	return false, nil
}

// terminate moves the loop to Terminal and fires the completion signal
// exactly once.
func (l *Loop) terminate() {
	l.mu.Lock()
	l.state = StateTerminal
	l.mu.Unlock()
	l.doneOnce.Do(func() {
		opsf("no frontiers remain: exploration complete")
		close(l.done)
	})
}
