package recording

// SessionConfig describes a single recording attempt. It is built once per
// attempt and not modified afterwards.
type SessionConfig struct {
	EnginePath string

	// CameraID is the capture device as known to the application (a numeric
	// index or a device path/name). The engine input descriptor is derived
	// from it per platform.
	CameraID string
	// MicrophoneID is the audio device; empty means a video-only session.
	MicrophoneID string

	OutputPath string

	Width  int
	Height int
	// FrameRate of 0 leaves the rate to the driver.
	FrameRate float64

	PreferHardware            bool
	ValidateModeBeforeStart   bool
	UseLowCompressionFallback bool
}

// HasAudio reports whether the session records an audio track.
func (c SessionConfig) HasAudio() bool {
	return c.MicrophoneID != ""
}

// EffectiveFrameRate returns the frame rate used for derived settings such as
// the keyframe interval when the driver default is in effect.
func (c SessionConfig) EffectiveFrameRate() float64 {
	if c.FrameRate > 0 {
		return c.FrameRate
	}
	return 30
}
