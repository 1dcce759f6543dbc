package capture

import "sync"

// Frame is a single captured image. Implementations own native resources and
// must be closed by whoever holds the last reference.
type Frame interface {
	// Clone returns an independent copy of the frame.
	Clone() Frame
	// Close releases the frame's resources.
	Close() error
}

// FrameSlot holds the single most recent preview frame. The capture goroutine
// replaces its contents and the control flow reads the latest value; writes
// are last-write-wins and the previous frame is closed on replacement. There
// is never more than one buffered frame.
type FrameSlot struct {
	mu     sync.Mutex
	latest Frame
}

// Put stores the frame as the most recent one, closing the previous frame.
// The slot takes ownership of f.
func (s *FrameSlot) Put(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil {
		s.latest.Close()
	}
	s.latest = f
}

// Snapshot returns an independent copy of the most recent frame. The caller
// owns the returned frame and must close it.
func (s *FrameSlot) Snapshot() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return nil, false
	}
	return s.latest.Clone(), true
}

// Clear closes and drops the buffered frame, if any.
func (s *FrameSlot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil {
		s.latest.Close()
		s.latest = nil
	}
}
