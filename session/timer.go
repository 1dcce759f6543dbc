package session

import (
	"fmt"
	"sync"
	"time"
)

// Timer tracks the elapsed time of a recording and triggers the configured
// auto-stop once the maximum duration is reached.
type Timer struct {
	mu         sync.Mutex
	running    bool
	startedAt  time.Time
	frozen     time.Duration
	done       chan struct{}
	maxElapsed time.Duration
	armed      bool
	onAutoStop func()
}

// NewTimer creates a stopped timer at zero elapsed.
func NewTimer() *Timer {
	return &Timer{}
}

// Start begins tracking elapsed time. When maxElapsed is positive, the
// auto-stop callback fires once elapsed reaches it. No-op while running.
func (t *Timer) Start(maxElapsed time.Duration, onAutoStop func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.running = true
	t.startedAt = time.Now()
	t.frozen = 0
	t.maxElapsed = maxElapsed
	t.onAutoStop = onAutoStop
	t.armed = maxElapsed > 0 && onAutoStop != nil
	t.done = make(chan struct{})

	go t.tick(t.done)
}

// tick checks the auto-stop threshold once per second. The callback is
// invoked without the lock held, since it re-enters the timer via Stop.
func (t *Timer) tick(done chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			var callback func()
			if t.running && t.armed && time.Since(t.startedAt) >= t.maxElapsed {
				// Disarm before invoking so a tick that lands during the
				// stop sequence cannot re-trigger it.
				t.armed = false
				callback = t.onAutoStop
			}
			t.mu.Unlock()

			if callback != nil {
				callback()
			}
		}
	}
}

// Stop halts tracking, freezing the elapsed value. Safe to call from the
// auto-stop callback and idempotent.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.frozen = time.Since(t.startedAt)
	t.running = false
	t.armed = false
	close(t.done)
	t.done = nil
}

// Reset sets elapsed back to zero. Stops the timer if running.
func (t *Timer) Reset() {
	t.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = 0
}

// Running reports whether the timer is tracking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the tracked duration: live while running, frozen after
// Stop, zero after Reset.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return time.Since(t.startedAt)
	}
	return t.frozen
}

// FormatElapsed renders a duration as mm:ss, switching to hh:mm:ss once it
// reaches one hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
