package capture

import (
	"fmt"
	"sync"

	"github.com/xx7Ahmed7xx/videobooth/common"
)

// Preview manages the live confidence-monitor feed from a camera.
type Preview interface {
	// Start opens the device, applies the best capability for the preset and
	// begins frame delivery into the preview slot. No-op when already active.
	Start(deviceID string, preset ResolutionPreset) (Capability, error)
	// Stop halts frame delivery and fully releases the device. Blocks until
	// the device is closed; no-op when not active.
	Stop() error
	// Active reports whether the preview is currently running.
	Active() bool
	// ActiveCapability returns the capture mode the preview is running with.
	ActiveCapability() (Capability, bool)
	// Snapshot returns an independent copy of the most recent preview frame.
	Snapshot() (Frame, bool)
}

// CameraPreview implements Preview on top of a DeviceManager, buffering the
// most recent frame in a single-slot buffer.
type CameraPreview struct {
	logger  common.Logger
	devices DeviceManager
	slot    FrameSlot

	mu         sync.Mutex
	device     Device
	capability Capability
	active     bool
}

// NewCameraPreview creates a preview backed by the given device manager.
func NewCameraPreview(logger common.Logger, devices DeviceManager) *CameraPreview {
	if logger == nil {
		logger = common.NopLogger
	}
	return &CameraPreview{
		logger:  logger,
		devices: devices,
	}
}

func (p *CameraPreview) Start(deviceID string, preset ResolutionPreset) (Capability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return p.capability, nil // Already previewing
	}

	device, err := p.devices.Open(deviceID)
	if err != nil {
		return Capability{}, fmt.Errorf("failed to open preview device: %w", err)
	}

	capability, ok := ResolveCapability(device.Capabilities(), preset)
	if !ok {
		device.Stop()
		return Capability{}, fmt.Errorf("device %s reports no capabilities", deviceID)
	}

	if err := device.Apply(capability); err != nil {
		// The resolver picked a probed mode, but some drivers renege once
		// another consumer holds the device. Keep going with whatever mode
		// the driver settled on.
		p.logger.Warn("Preview device refused resolved mode", "device", deviceID, "mode", capability, "error", err)
	}

	err = device.Start(func(f Frame) {
		// The callback frame is only valid for the duration of the call.
		p.slot.Put(f.Clone())
	})
	if err != nil {
		device.Stop()
		return Capability{}, fmt.Errorf("failed to start preview: %w", err)
	}

	p.device = device
	p.capability = capability
	p.active = true

	p.logger.Info("Preview started", "device", deviceID, "mode", capability)
	return capability, nil
}

func (p *CameraPreview) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return nil // Already stopped
	}

	err := p.device.Stop()
	p.device = nil
	p.active = false
	p.slot.Clear()

	if err != nil {
		return fmt.Errorf("failed to stop preview device: %w", err)
	}

	p.logger.Info("Preview stopped")
	return nil
}

func (p *CameraPreview) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *CameraPreview) ActiveCapability() (Capability, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capability, p.active
}

func (p *CameraPreview) Snapshot() (Frame, bool) {
	return p.slot.Snapshot()
}
