package recon

import (
	"fmt"
	"sync"
)

// SessionState tracks the bulk recalculation workflow:
// Idle -> Calculated (preview in memory, nothing written) -> Committed.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateCalculated SessionState = "calculated"
	StateCommitted  SessionState = "committed"
)

// Session holds one operator's bulk recalculation preview. The preview lives
// only in memory: re-running the calculation discards any uncommitted one,
// and there is no partial persistence of the Calculated state.
type Session struct {
	mu     sync.Mutex
	state  SessionState
	result *RecalcResult
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current workflow state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Calculate runs the bulk recalculation and stores the preview, discarding
// any previous one regardless of whether it was committed.
func (s *Session) Calculate(in RecalcInput) *RecalcResult {
	res := Recalculate(in)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &res
	s.state = StateCalculated
	return &res
}

// Preview returns the stored preview, or nil when no calculation ran yet.
func (s *Session) Preview() *RecalcResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// MarkCommitted records that all approved batches of the current preview have
// been written. It fails when there is no preview to commit.
func (s *Session) MarkCommitted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCalculated {
		return fmt.Errorf("MarkCommitted: no preview to commit (state %s)", s.state)
	}
	s.state = StateCommitted
	return nil
}

// Reset drops the preview and returns to Idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
	s.state = StateIdle
}
