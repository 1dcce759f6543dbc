package capture

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xx7Ahmed7xx/videobooth/common"
	"gocv.io/x/gocv"
)

// probeModes are the capture modes offered to the driver during capability
// probing. Drivers answer a Set with the nearest mode they support, so the
// accepted list is whatever survives the set-then-read-back round trip.
var probeModes = []Capability{
	{Width: 640, Height: 480, FrameRate: 30},
	{Width: 854, Height: 480, FrameRate: 30},
	{Width: 1280, Height: 720, FrameRate: 30},
	{Width: 1280, Height: 720, FrameRate: 60},
	{Width: 1920, Height: 1080, FrameRate: 30},
	{Width: 1920, Height: 1080, FrameRate: 60},
	{Width: 3840, Height: 2160, FrameRate: 30},
}

// matFrame wraps a gocv.Mat as a Frame.
type matFrame struct {
	mat gocv.Mat
}

func (f *matFrame) Clone() Frame {
	return &matFrame{mat: f.mat.Clone()}
}

func (f *matFrame) Close() error {
	return f.mat.Close()
}

// EncodeJPEG encodes the frame as a JPEG image.
func (f *matFrame) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", f.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// EncodeJPEG encodes a frame as JPEG if the underlying implementation
// supports it.
func EncodeJPEG(f Frame) ([]byte, error) {
	enc, ok := f.(interface{ EncodeJPEG() ([]byte, error) })
	if !ok {
		return nil, fmt.Errorf("frame does not support still encoding")
	}
	return enc.EncodeJPEG()
}

// WebcamManager implements DeviceManager using gocv.
type WebcamManager struct {
	logger common.Logger
}

// NewWebcamManager creates a new gocv-backed device manager.
func NewWebcamManager(logger common.Logger) *WebcamManager {
	if logger == nil {
		logger = common.NopLogger
	}
	return &WebcamManager{logger: logger}
}

// ListVideoDevices enumerates attached cameras. On Linux this is the
// /dev/video* nodes; elsewhere the default device index is reported.
func (m *WebcamManager) ListVideoDevices() ([]DeviceInfo, error) {
	nodes, err := filepath.Glob("/dev/video*")
	if err == nil && len(nodes) > 0 {
		sort.Strings(nodes)
		devices := make([]DeviceInfo, 0, len(nodes))
		for _, node := range nodes {
			devices = append(devices, DeviceInfo{ID: node, DisplayName: node})
		}
		return devices, nil
	}

	return []DeviceInfo{{ID: "0", DisplayName: "Default camera"}}, nil
}

// Open opens the camera and probes its capabilities.
func (m *WebcamManager) Open(id string) (Device, error) {
	webcam, err := openVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("failed to open webcam: %w", err)
	}

	dev := &webcamDevice{
		logger: m.logger,
		id:     id,
		webcam: webcam,
	}
	dev.capabilities = dev.probeCapabilities()

	m.logger.Info("Opened capture device", "device", id, "capabilities", len(dev.capabilities))
	return dev, nil
}

// openVideoCapture accepts either a numeric device index or a device path.
func openVideoCapture(id string) (*gocv.VideoCapture, error) {
	if idx, err := strconv.Atoi(id); err == nil {
		return gocv.OpenVideoCapture(idx)
	}
	return gocv.OpenVideoCapture(id)
}

// webcamDevice implements Device on top of a gocv.VideoCapture.
type webcamDevice struct {
	logger       common.Logger
	id           string
	capabilities []Capability

	mu      sync.Mutex
	webcam  *gocv.VideoCapture
	running bool
	done    chan struct{}
}

func (d *webcamDevice) Capabilities() []Capability {
	caps := make([]Capability, len(d.capabilities))
	copy(caps, d.capabilities)
	return caps
}

// probeCapabilities offers each well-known mode to the driver and keeps the
// ones it accepts verbatim. Falls back to the driver's current mode when
// every probe is rejected.
func (d *webcamDevice) probeCapabilities() []Capability {
	seen := make(map[string]bool)
	var accepted []Capability

	for _, mode := range probeModes {
		d.webcam.Set(gocv.VideoCaptureFrameWidth, float64(mode.Width))
		d.webcam.Set(gocv.VideoCaptureFrameHeight, float64(mode.Height))
		d.webcam.Set(gocv.VideoCaptureFPS, mode.FrameRate)

		got := Capability{
			Width:     int(d.webcam.Get(gocv.VideoCaptureFrameWidth)),
			Height:    int(d.webcam.Get(gocv.VideoCaptureFrameHeight)),
			FrameRate: d.webcam.Get(gocv.VideoCaptureFPS),
		}

		if got.Width != mode.Width || got.Height != mode.Height {
			continue
		}
		if got.FrameRate <= 0 {
			got.FrameRate = mode.FrameRate
		}
		if !seen[got.String()] {
			seen[got.String()] = true
			accepted = append(accepted, got)
		}
	}

	if len(accepted) == 0 {
		current := Capability{
			Width:     int(d.webcam.Get(gocv.VideoCaptureFrameWidth)),
			Height:    int(d.webcam.Get(gocv.VideoCaptureFrameHeight)),
			FrameRate: d.webcam.Get(gocv.VideoCaptureFPS),
		}
		if current.Width <= 0 || current.Height <= 0 {
			current = Capability{Width: 640, Height: 480, FrameRate: 30}
			d.logger.Warn("Driver rejected all mode probes, assuming default", "device", d.id, "mode", current)
		}
		accepted = append(accepted, current)
	}

	return accepted
}

func (d *webcamDevice) Apply(c Capability) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.webcam == nil {
		return fmt.Errorf("device %s is closed", d.id)
	}

	d.webcam.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
	d.webcam.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	if c.FrameRate > 0 {
		d.webcam.Set(gocv.VideoCaptureFPS, c.FrameRate)
	}

	width := int(d.webcam.Get(gocv.VideoCaptureFrameWidth))
	height := int(d.webcam.Get(gocv.VideoCaptureFrameHeight))
	if width != c.Width || height != c.Height {
		return fmt.Errorf("device %s refused mode %s (driver reports %dx%d)", d.id, c, width, height)
	}

	return nil
}

func (d *webcamDevice) Start(onFrame FrameCallback) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.webcam == nil {
		return fmt.Errorf("device %s is closed", d.id)
	}
	if d.running {
		return nil // Already delivering frames
	}

	d.running = true
	d.done = make(chan struct{})

	go d.captureLoop(onFrame)
	return nil
}

// captureLoop reads frames until the device is stopped. The frame passed to
// the callback is reused across iterations, so callbacks must clone.
func (d *webcamDevice) captureLoop(onFrame FrameCallback) {
	defer close(d.done)

	img := gocv.NewMat()
	defer img.Close()

	frame := &matFrame{mat: img}

	for {
		d.mu.Lock()
		running := d.running
		webcam := d.webcam
		d.mu.Unlock()

		if !running || webcam == nil {
			return
		}

		if ok := webcam.Read(&img); !ok {
			// Transient read failures happen while the driver settles.
			time.Sleep(67 * time.Millisecond)
			continue
		}

		if img.Empty() {
			continue
		}

		if onFrame != nil {
			onFrame(frame)
		}
	}
}

func (d *webcamDevice) Stop() error {
	d.mu.Lock()
	if !d.running && d.webcam == nil {
		d.mu.Unlock()
		return nil // Already stopped
	}

	wasRunning := d.running
	d.running = false
	done := d.done
	d.mu.Unlock()

	// Wait for the capture loop to fully finish before releasing the handle;
	// the driver keeps the device busy until the last read returns.
	if wasRunning && done != nil {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			d.logger.Warn("Timeout waiting for capture loop to stop", "device", d.id)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.webcam != nil {
		d.logger.Info("Closing capture device", "device", d.id)
		d.webcam.Close()
		d.webcam = nil
	}

	return nil
}
