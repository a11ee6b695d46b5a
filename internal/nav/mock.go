package nav

import (
	"context"
	"sync"
)

// MockResponse scripts how the mock service handles one submission.
// Nil Accept or Outcome leaves that stage unresolved so a test can drive
// it by hand through the recorded handle.
type MockResponse struct {
	SubmitErr error
	Accept    *bool
	Outcome   *Outcome
}

// Submission records one Submit call observed by the mock.
type Submission struct {
	TargetX, TargetY float64
	Handle           *GoalHandle
	Canceled         bool
}

// MockService is a scripted Service test double. Responses are consumed
// in submission order; once the script runs out every further goal is
// accepted and succeeds immediately.
type MockService struct {
	mu          sync.Mutex
	responses   []MockResponse
	submissions []*Submission
}

// NewMockService creates a mock with the given scripted responses.
func NewMockService(responses ...MockResponse) *MockService {
	return &MockService{responses: responses}
}

// AcceptAndSucceed is the default script entry: accepted, then succeeded.
func AcceptAndSucceed() MockResponse {
	accept := true
	return MockResponse{Accept: &accept, Outcome: &Outcome{Status: GoalSucceeded}}
}

// Reject scripts an immediate rejection.
func Reject() MockResponse {
	accept := false
	return MockResponse{Accept: &accept}
}

// AcceptAndFail scripts acceptance followed by navigation failure.
func AcceptAndFail(reason string) MockResponse {
	accept := true
	return MockResponse{Accept: &accept, Outcome: &Outcome{Status: GoalFailed, Reason: reason}}
}

// Submit implements Service.
func (m *MockService) Submit(_ context.Context, targetX, targetY float64) (*GoalHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp := AcceptAndSucceed()
	if len(m.responses) > 0 {
		resp = m.responses[0]
		m.responses = m.responses[1:]
	}
	if resp.SubmitErr != nil {
		return nil, resp.SubmitErr
	}

	sub := &Submission{TargetX: targetX, TargetY: targetY}
	sub.Handle = NewGoalHandle(func() {
		m.mu.Lock()
		sub.Canceled = true
		m.mu.Unlock()
	})
	m.submissions = append(m.submissions, sub)

	if resp.Accept != nil {
		sub.Handle.ResolveAccepted(*resp.Accept)
		if *resp.Accept && resp.Outcome != nil {
			sub.Handle.ResolveResult(*resp.Outcome)
		}
	}
	return sub.Handle, nil
}

// Submissions returns the Submit calls observed so far.
func (m *MockService) Submissions() []*Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Submission, len(m.submissions))
	copy(out, m.submissions)
	return out
}
