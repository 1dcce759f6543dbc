package session

import (
	"errors"
	"sync"
	"testing"
)

func TestStateMachine_StartsIdle(t *testing.T) {
	m := NewStateMachine()
	if got := m.Current(); got != StateIdle {
		t.Errorf("Expected initial state idle, got %s", got)
	}
}

func TestStateMachine_BeginEntersBusy(t *testing.T) {
	m := NewStateMachine()

	prev, err := m.Begin(StateIdle)
	if err != nil {
		t.Fatalf("Expected begin from idle to succeed, got: %v", err)
	}
	if prev != StateIdle {
		t.Errorf("Expected previous state idle, got %s", prev)
	}
	if got := m.Current(); got != StateBusy {
		t.Errorf("Expected busy while the operation runs, got %s", got)
	}

	m.Finish(StatePreviewing)
	if got := m.Current(); got != StatePreviewing {
		t.Errorf("Expected previewing after finish, got %s", got)
	}
}

func TestStateMachine_RejectsWrongPrecondition(t *testing.T) {
	m := NewStateMachine()

	if _, err := m.Begin(StateRecording); !errors.Is(err, ErrWrongState) {
		t.Errorf("Expected ErrWrongState, got: %v", err)
	}
	if got := m.Current(); got != StateIdle {
		t.Errorf("Expected state unchanged after rejection, got %s", got)
	}
}

func TestStateMachine_RejectsWhileBusy(t *testing.T) {
	m := NewStateMachine()

	if _, err := m.Begin(StateIdle); err != nil {
		t.Fatalf("Expected begin to succeed, got: %v", err)
	}

	if _, err := m.Begin(StateIdle, StatePreviewing, StateRecording); !errors.Is(err, ErrWrongState) {
		t.Errorf("Expected duplicate trigger to be rejected while busy, got: %v", err)
	}
}

func TestStateMachine_ConcurrentBeginAdmitsOne(t *testing.T) {
	m := NewStateMachine()

	const n = 16
	admitted := make(chan struct{}, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Begin(StateIdle); err == nil {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for range admitted {
		count++
	}
	if count != 1 {
		t.Errorf("Expected exactly one concurrent begin to be admitted, got %d", count)
	}
}
