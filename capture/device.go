package capture

// DeviceInfo identifies an attached capture device.
type DeviceInfo struct {
	ID          string
	DisplayName string
}

// FrameCallback receives captured frames. The frame reference is only valid
// for the duration of the callback; it must be cloned if retained.
type FrameCallback func(Frame)

// Device is an open capture device handle. Exactly one Device per physical
// camera may be open at a time; Stop releases the handle.
type Device interface {
	// Capabilities returns the capture modes the device accepted during
	// probing. The list may be empty if the driver rejected every probe.
	Capabilities() []Capability
	// Apply configures the device for the given capture mode.
	Apply(c Capability) error
	// Start begins frame delivery on the device's own goroutine.
	Start(onFrame FrameCallback) error
	// Stop halts frame delivery, blocks until the capture loop has fully
	// finished, and releases the device handle. Safe to call more than once.
	Stop() error
}

// DeviceManager enumerates and opens capture devices.
type DeviceManager interface {
	ListVideoDevices() ([]DeviceInfo, error)
	Open(id string) (Device, error)
}
