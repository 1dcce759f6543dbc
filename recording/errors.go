package recording

import "errors"

var (
	// ErrAlreadyRunning is returned when a start is attempted while an engine
	// process handle already exists.
	ErrAlreadyRunning = errors.New("engine process is already running")

	// ErrEngineNotFound is returned when the engine binary is missing.
	ErrEngineNotFound = errors.New("engine binary not found")

	// ErrProcessStartFailure is returned when the engine could not be
	// launched or died before the settling check.
	ErrProcessStartFailure = errors.New("engine process failed to start")

	// ErrDeviceContention marks a start failure attributable to the capture
	// device being held by another consumer.
	ErrDeviceContention = errors.New("capture device is held by another consumer")

	// ErrStopTimeout is returned when the engine survived both the graceful
	// quit and the forced termination.
	ErrStopTimeout = errors.New("engine did not stop within the grace period")
)
