package capture

import (
	"errors"
	"testing"

	"github.com/xx7Ahmed7xx/videobooth/common"
)

// fakeDevice implements Device for preview tests.
type fakeDevice struct {
	caps      []Capability
	applied   Capability
	started   bool
	stopped   bool
	callback  FrameCallback
	startErr  error
	applyErr  error
	stopCalls int
}

func (d *fakeDevice) Capabilities() []Capability { return d.caps }

func (d *fakeDevice) Apply(c Capability) error {
	d.applied = c
	return d.applyErr
}

func (d *fakeDevice) Start(onFrame FrameCallback) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.started = true
	d.callback = onFrame
	return nil
}

func (d *fakeDevice) Stop() error {
	d.stopped = true
	d.stopCalls++
	return nil
}

// fakeManager implements DeviceManager for preview tests.
type fakeManager struct {
	device  *fakeDevice
	openErr error
	opens   int
}

func (m *fakeManager) ListVideoDevices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "0", DisplayName: "Fake camera"}}, nil
}

func (m *fakeManager) Open(id string) (Device, error) {
	m.opens++
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m.device, nil
}

func TestCameraPreview_StartResolvesCapability(t *testing.T) {
	device := &fakeDevice{caps: []Capability{
		{Width: 1920, Height: 1080, FrameRate: 30},
		{Width: 1280, Height: 720, FrameRate: 30},
	}}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	capability, err := preview.Start("0", PresetHD())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capability.Width != 1280 || capability.Height != 720 {
		t.Errorf("expected the HD mode, got %s", capability)
	}
	if device.applied != capability {
		t.Errorf("device should be configured with the resolved mode")
	}
	if !device.started {
		t.Error("device should be delivering frames")
	}
	if !preview.Active() {
		t.Error("preview should report active")
	}
}

func TestCameraPreview_StartIsIdempotent(t *testing.T) {
	device := &fakeDevice{caps: []Capability{{Width: 640, Height: 480, FrameRate: 30}}}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	if _, err := preview.Start("0", PresetAny()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := preview.Start("0", PresetAny()); err != nil {
		t.Fatalf("unexpected error on duplicate start: %v", err)
	}

	if manager.opens != 1 {
		t.Errorf("duplicate start must not open the device again, got %d opens", manager.opens)
	}
}

func TestCameraPreview_StartFailsWithoutCapabilities(t *testing.T) {
	device := &fakeDevice{}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	if _, err := preview.Start("0", PresetAny()); err == nil {
		t.Fatal("expected an error for a device without capabilities")
	}
	if !device.stopped {
		t.Error("device handle must be released on failure")
	}
	if preview.Active() {
		t.Error("preview must not report active after a failed start")
	}
}

func TestCameraPreview_StartReleasesDeviceOnStartError(t *testing.T) {
	device := &fakeDevice{
		caps:     []Capability{{Width: 640, Height: 480, FrameRate: 30}},
		startErr: errors.New("device busy"),
	}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	if _, err := preview.Start("0", PresetAny()); err == nil {
		t.Fatal("expected start error to propagate")
	}
	if !device.stopped {
		t.Error("device handle must be released when frame delivery fails to start")
	}
}

func TestCameraPreview_FramesLandInSlot(t *testing.T) {
	device := &fakeDevice{caps: []Capability{{Width: 640, Height: 480, FrameRate: 30}}}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	if _, err := preview.Start("0", PresetAny()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate the capture goroutine delivering a frame.
	delivered := &fakeFrame{}
	device.callback(delivered)

	if delivered.clones != 1 {
		t.Error("the callback frame must be cloned before it is retained")
	}

	snap, ok := preview.Snapshot()
	if !ok {
		t.Fatal("expected a snapshot after frame delivery")
	}
	snap.Close()
}

func TestCameraPreview_StopIsIdempotentAndClearsSlot(t *testing.T) {
	device := &fakeDevice{caps: []Capability{{Width: 640, Height: 480, FrameRate: 30}}}
	manager := &fakeManager{device: device}
	preview := NewCameraPreview(common.NopLogger, manager)

	if _, err := preview.Start("0", PresetAny()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	device.callback(&fakeFrame{})

	if err := preview.Stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if device.stopCalls != 1 {
		t.Errorf("expected one device stop, got %d", device.stopCalls)
	}
	if _, ok := preview.Snapshot(); ok {
		t.Error("stopping the preview must clear the frame slot")
	}

	// Second stop is a no-op.
	if err := preview.Stop(); err != nil {
		t.Fatalf("duplicate stop should not error: %v", err)
	}
	if device.stopCalls != 1 {
		t.Errorf("duplicate stop must not touch the device again, got %d", device.stopCalls)
	}
}
