package nav

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/explorer/internal/monitoring"
)

// ErrGoalInFlight is returned by Submit while a prior goal is non-terminal.
// The exploration loop is responsible for gating submissions; this error
// is the backstop for callers that don't.
var ErrGoalInFlight = errors.New("a navigation goal is already in flight")

// GoalRecord is the controller's view of one navigation attempt. Snapshots
// of it are served by the monitor webserver and persisted by the goal sink.
type GoalRecord struct {
	GoalID             string     `json:"goal_id"`
	TargetX            float64    `json:"target_x"`
	TargetY            float64    `json:"target_y"`
	Status             GoalStatus `json:"status"`
	SubmittedUnixNanos int64      `json:"submitted_unix_nanos"`
	ResolvedUnixNanos  int64      `json:"resolved_unix_nanos,omitempty"`
	Detail             string     `json:"detail,omitempty"` // payload or failure reason
}

// GoalSink receives goal records as they are created and as their status
// changes. Implementations live outside this package (e.g. the sqlite
// store); a nil sink disables recording.
type GoalSink interface {
	RecordGoal(rec GoalRecord) error
}

// ControllerConfig holds the controller's dependencies and timeouts.
type ControllerConfig struct {
	Service Service
	Sink    GoalSink // optional

	// AcceptTimeout bounds the wait for the acceptance stage; zero means
	// wait indefinitely. ResultTimeout likewise bounds execution.
	AcceptTimeout time.Duration
	ResultTimeout time.Duration
}

// Controller drives one navigation goal at a time through its lifecycle
// and surfaces terminal outcomes. It enforces nothing about scheduling
// beyond refusing overlapping submissions.
type Controller struct {
	cfg ControllerConfig

	mu      sync.Mutex
	busy    bool
	current GoalRecord
	handle  *GoalHandle
	last    *GoalRecord // most recent terminal record

	// GoalsSubmitted / GoalsSucceeded / GoalsFailed / GoalsRejected are
	// session counters, read via Counters().
	submitted, succeeded, failed, rejected int
}

// NewController creates a Controller for the given service.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{cfg: cfg}
}

// Busy reports whether a goal is currently non-terminal.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Current returns a snapshot of the in-flight goal, or the most recent
// terminal goal when idle. ok is false before any submission.
func (c *Controller) Current() (rec GoalRecord, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.current, true
	}
	if c.last != nil {
		return *c.last, true
	}
	return GoalRecord{}, false
}

// Counters returns session goal counts: submitted, succeeded, failed,
// rejected.
func (c *Controller) Counters() (submitted, succeeded, failed, rejected int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted, c.succeeded, c.failed, c.rejected
}

// Submit sends a new goal to the navigation service and drives its
// lifecycle in the background. Returns ErrGoalInFlight while a prior
// goal is non-terminal.
func (c *Controller) Submit(ctx context.Context, targetX, targetY float64) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrGoalInFlight
	}
	c.busy = true
	c.mu.Unlock()

	handle, err := c.cfg.Service.Submit(ctx, targetX, targetY)
	if err != nil {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
		return fmt.Errorf("submit goal: %w", err)
	}

	rec := GoalRecord{
		GoalID:             uuid.NewString(),
		TargetX:            targetX,
		TargetY:            targetY,
		Status:             GoalPending,
		SubmittedUnixNanos: time.Now().UnixNano(),
	}

	c.mu.Lock()
	c.current = rec
	c.handle = handle
	c.submitted++
	c.mu.Unlock()

	c.record(rec)
	monitoring.Logf("[nav] goal %s submitted: x=%.3f y=%.3f", rec.GoalID, targetX, targetY)

	go c.drive(ctx, handle, rec)
	return nil
}

// CancelCurrent requests cancellation of the in-flight goal, if any.
func (c *Controller) CancelCurrent() {
	c.mu.Lock()
	handle := c.handle
	busy := c.busy
	c.mu.Unlock()
	if busy && handle != nil {
		handle.Cancel()
	}
}

// drive walks one goal through acceptance and result resolution.
func (c *Controller) drive(ctx context.Context, handle *GoalHandle, rec GoalRecord) {
	accepted, ok := c.awaitAcceptance(ctx, handle, &rec)
	if !ok {
		return // canceled or timed out; finish already called
	}
	if !accepted {
		rec.Status = GoalRejected
		rec.Detail = "goal rejected by navigation service"
		monitoring.Logf("[nav] goal %s rejected", rec.GoalID)
		c.finish(rec)
		return
	}

	rec.Status = GoalAccepted
	c.record(rec)
	rec.Status = GoalExecuting
	c.setCurrent(rec)
	c.record(rec)
	monitoring.Logf("[nav] goal %s accepted, executing", rec.GoalID)

	c.awaitResult(ctx, handle, &rec)
}

func (c *Controller) awaitAcceptance(ctx context.Context, handle *GoalHandle, rec *GoalRecord) (accepted, ok bool) {
	var timeout <-chan time.Time
	if c.cfg.AcceptTimeout > 0 {
		t := time.NewTimer(c.cfg.AcceptTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case accepted = <-handle.Accepted():
		return accepted, true
	case <-ctx.Done():
		handle.Cancel()
		rec.Status = GoalCanceled
		rec.Detail = ctx.Err().Error()
		c.finish(*rec)
		return false, false
	case <-timeout:
		handle.Cancel()
		rec.Status = GoalFailed
		rec.Detail = "timed out waiting for goal acceptance"
		monitoring.Logf("[nav] goal %s: %s", rec.GoalID, rec.Detail)
		c.finish(*rec)
		return false, false
	}
}

func (c *Controller) awaitResult(ctx context.Context, handle *GoalHandle, rec *GoalRecord) {
	var timeout <-chan time.Time
	if c.cfg.ResultTimeout > 0 {
		t := time.NewTimer(c.cfg.ResultTimeout)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case outcome := <-handle.Result():
		rec.Status = outcome.Status
		if outcome.Status == GoalSucceeded {
			rec.Detail = outcome.Payload
			monitoring.Logf("[nav] goal %s succeeded", rec.GoalID)
		} else {
			rec.Detail = outcome.Reason
			monitoring.Logf("[nav] goal %s failed: %s", rec.GoalID, outcome.Reason)
		}
	case <-ctx.Done():
		handle.Cancel()
		rec.Status = GoalCanceled
		rec.Detail = ctx.Err().Error()
	case <-timeout:
		handle.Cancel()
		rec.Status = GoalFailed
		rec.Detail = "timed out waiting for goal result"
		monitoring.Logf("[nav] goal %s: %s", rec.GoalID, rec.Detail)
	}
	c.finish(*rec)
}

// finish records the terminal state and releases the in-flight slot.
func (c *Controller) finish(rec GoalRecord) {
	rec.ResolvedUnixNanos = time.Now().UnixNano()
	c.mu.Lock()
	c.busy = false
	c.handle = nil
	c.last = &rec
	switch rec.Status {
	case GoalSucceeded:
		c.succeeded++
	case GoalRejected:
		c.rejected++
	case GoalFailed:
		c.failed++
	}
	c.mu.Unlock()
	c.record(rec)
}

func (c *Controller) setCurrent(rec GoalRecord) {
	c.mu.Lock()
	c.current = rec
	c.mu.Unlock()
}

func (c *Controller) record(rec GoalRecord) {
	if c.cfg.Sink == nil {
		return
	}
	if err := c.cfg.Sink.RecordGoal(rec); err != nil {
		monitoring.Logf("[nav] failed to record goal %s: %v", rec.GoalID, err)
	}
}
