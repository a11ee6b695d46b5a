// Package nav drives single navigation goals against an external
// navigation service. The service reports acceptance and completion
// asynchronously; each stage is exposed as a channel so the lifecycle
// can be driven and tested without a live robot stack.
package nav

import "context"

// GoalStatus is the lifecycle state of one navigation attempt.
type GoalStatus string

const (
	GoalPending   GoalStatus = "pending"   // submitted, awaiting acceptance
	GoalAccepted  GoalStatus = "accepted"  // accepted, execution about to start
	GoalRejected  GoalStatus = "rejected"  // refused by the service; terminal
	GoalExecuting GoalStatus = "executing" // accepted and running
	GoalSucceeded GoalStatus = "succeeded" // terminal
	GoalFailed    GoalStatus = "failed"    // terminal
	GoalCanceled  GoalStatus = "canceled"  // terminal
)

// Terminal reports whether no further transitions can occur.
func (s GoalStatus) Terminal() bool {
	switch s {
	case GoalRejected, GoalSucceeded, GoalFailed, GoalCanceled:
		return true
	}
	return false
}

// Outcome is the terminal result of an accepted goal.
type Outcome struct {
	Status  GoalStatus
	Payload string // opaque result payload on success
	Reason  string // error description on failure
}

// Service is the external navigation capability. Submit must return
// promptly; acceptance and the terminal result arrive later on the
// handle's channels.
type Service interface {
	Submit(ctx context.Context, targetX, targetY float64) (*GoalHandle, error)
}

// GoalHandle is the two-stage resolution of one submitted goal: first
// acceptance, then (only if accepted) a terminal outcome. Both channels
// are buffered so a resolving service never blocks.
type GoalHandle struct {
	accepted chan bool
	result   chan Outcome
	cancelFn func()
}

// NewGoalHandle creates an unresolved handle. cancel may be nil when the
// service offers no cancellation.
func NewGoalHandle(cancel func()) *GoalHandle {
	return &GoalHandle{
		accepted: make(chan bool, 1),
		result:   make(chan Outcome, 1),
		cancelFn: cancel,
	}
}

// Accepted yields exactly one value: whether the service accepted the goal.
func (h *GoalHandle) Accepted() <-chan bool { return h.accepted }

// Result yields the terminal outcome of an accepted goal.
func (h *GoalHandle) Result() <-chan Outcome { return h.result }

// ResolveAccepted is called by Service implementations to resolve the
// acceptance stage.
func (h *GoalHandle) ResolveAccepted(ok bool) { h.accepted <- ok }

// ResolveResult is called by Service implementations to resolve the
// terminal outcome.
func (h *GoalHandle) ResolveResult(o Outcome) { h.result <- o }

// Cancel requests cancellation from the service, if it offers any.
func (h *GoalHandle) Cancel() {
	if h.cancelFn != nil {
		h.cancelFn()
	}
}
