package capture

import (
	"sync"
	"testing"
)

// fakeFrame is a Frame stand-in that tracks clone/close calls.
type fakeFrame struct {
	mu     sync.Mutex
	closed bool
	clones int
}

func (f *fakeFrame) Clone() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clones++
	return &fakeFrame{}
}

func (f *fakeFrame) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeFrame) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestFrameSlot_PutClosesPrevious(t *testing.T) {
	slot := &FrameSlot{}

	first := &fakeFrame{}
	second := &fakeFrame{}

	slot.Put(first)
	slot.Put(second)

	if !first.isClosed() {
		t.Error("previous frame should be closed on replacement")
	}
	if second.isClosed() {
		t.Error("latest frame should stay open")
	}
}

func TestFrameSlot_SnapshotReturnsCopy(t *testing.T) {
	slot := &FrameSlot{}

	if _, ok := slot.Snapshot(); ok {
		t.Fatal("empty slot should not produce a snapshot")
	}

	frame := &fakeFrame{}
	slot.Put(frame)

	snap, ok := slot.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot")
	}
	if snap == Frame(frame) {
		t.Error("snapshot must be an independent copy, not the buffered frame")
	}
	if frame.clones != 1 {
		t.Errorf("expected exactly one clone, got %d", frame.clones)
	}
}

func TestFrameSlot_ClearClosesFrame(t *testing.T) {
	slot := &FrameSlot{}

	frame := &fakeFrame{}
	slot.Put(frame)
	slot.Clear()

	if !frame.isClosed() {
		t.Error("clear should close the buffered frame")
	}
	if _, ok := slot.Snapshot(); ok {
		t.Error("cleared slot should not produce a snapshot")
	}

	// Clearing twice is a no-op.
	slot.Clear()
}

func TestFrameSlot_ConcurrentPutAndSnapshot(t *testing.T) {
	slot := &FrameSlot{}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			slot.Put(&fakeFrame{})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if snap, ok := slot.Snapshot(); ok {
				snap.Close()
			}
		}
	}()

	wg.Wait()
	slot.Clear()
}
