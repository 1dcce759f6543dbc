package session

import (
	"errors"
	"fmt"
	"sync"
)

// State is the single authoritative session state.
type State string

const (
	StateIdle       State = "idle"
	StatePreviewing State = "previewing"
	StateRecording  State = "recording"
	// StateBusy is a transient guard held for the duration of any multi-step
	// operation; while held, no other session-mutating operation may begin.
	StateBusy State = "busy"
)

// ErrWrongState is returned when an operation is triggered from a state that
// does not satisfy its precondition, including while another operation holds
// the busy guard. Duplicate triggers resolve to this error, never to a
// half-applied operation.
var ErrWrongState = errors.New("operation not allowed in the current state")

// StateMachine gates all session-mutating operations behind a single guard.
type StateMachine struct {
	mu    sync.Mutex
	state State
}

// NewStateMachine creates a state machine starting in Idle.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateIdle}
}

// Current returns the current state.
func (m *StateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Begin atomically enters the busy guard if the current state is one of the
// given preconditions, returning the state it left. The caller must pair
// every successful Begin with exactly one Finish, on every exit path.
func (m *StateMachine) Begin(from ...State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range from {
		if m.state == s {
			prev := m.state
			m.state = StateBusy
			return prev, nil
		}
	}

	return m.state, fmt.Errorf("%w: %s", ErrWrongState, m.state)
}

// Finish releases the busy guard, settling on the given state.
func (m *StateMachine) Finish(to State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = to
}
