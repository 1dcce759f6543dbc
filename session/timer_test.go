package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{5 * time.Second, "00:05"},
		{65 * time.Second, "01:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{time.Hour + 23*time.Minute + 45*time.Second, "01:23:45"},
		{-3 * time.Second, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}

func TestTimer_AutoStopFiresOnce(t *testing.T) {
	timer := NewTimer()

	var fired atomic.Int32
	timer.Start(time.Second, func() {
		fired.Add(1)
		timer.Stop()
	})

	deadline := time.Now().Add(5 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if fired.Load() == 0 {
		t.Fatal("Expected auto-stop to fire")
	}

	// Further ticks must not re-trigger.
	time.Sleep(1500 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("Expected exactly one auto-stop, got %d", got)
	}
}

func TestTimer_NoAutoStopWithoutMax(t *testing.T) {
	timer := NewTimer()

	var fired atomic.Int32
	timer.Start(0, func() { fired.Add(1) })
	defer timer.Stop()

	time.Sleep(1200 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("Expected no auto-stop when no maximum is configured")
	}
	if timer.Elapsed() <= 0 {
		t.Error("Expected elapsed to advance while running")
	}
}

func TestTimer_ResetZeroesElapsed(t *testing.T) {
	timer := NewTimer()

	timer.Start(0, nil)
	time.Sleep(50 * time.Millisecond)
	timer.Reset()

	if timer.Running() {
		t.Error("Expected timer stopped after reset")
	}
	if got := timer.Elapsed(); got != 0 {
		t.Errorf("Expected zero elapsed after reset, got %v", got)
	}
}

func TestTimer_StopIsIdempotent(t *testing.T) {
	timer := NewTimer()

	timer.Start(0, nil)
	timer.Stop()
	timer.Stop() // must not panic or block

	frozen := timer.Elapsed()
	time.Sleep(30 * time.Millisecond)
	if got := timer.Elapsed(); got != frozen {
		t.Errorf("Expected elapsed frozen after stop, got %v then %v", frozen, got)
	}
}
