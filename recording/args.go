package recording

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/xx7Ahmed7xx/videobooth/encoding"
)

// quitToken is written to the engine's stdin to request a graceful stop.
const quitToken = "q\n"

// BuildEngineArgs assembles the engine invocation for a recording attempt.
// Video timestamps are taken from the wall clock and kept variable rather
// than forced to a rigid grid, so long recordings do not drift against the
// audio track; audio gets a gentle resample-based drift correction instead.
func BuildEngineArgs(cfg SessionConfig, enc encoding.Candidate) []string {
	args := []string{"-hide_banner"}

	// Accelerator device options must precede the inputs.
	args = append(args, enc.InputArgs...)

	// Video input.
	args = append(args, "-f", videoDemuxer())
	if cfg.Width > 0 && cfg.Height > 0 {
		args = append(args, "-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
	}
	if cfg.FrameRate > 0 {
		args = append(args, "-framerate", strconv.FormatFloat(cfg.FrameRate, 'g', -1, 64))
	}
	args = append(args, "-use_wallclock_as_timestamps", "1")
	args = append(args, "-i", VideoInputDescriptor(cfg.CameraID))

	// Audio input, omitted entirely for video-only sessions.
	if cfg.HasAudio() {
		args = append(args, "-f", audioDemuxer())
		args = append(args, "-i", audioInputDescriptor(cfg.MicrophoneID))
	}

	// Keep captured timestamps instead of duplicating/dropping frames.
	args = append(args, "-fps_mode", "vfr")

	// Normalize the pixel format for broad playback compatibility.
	filter := "format=yuv420p"
	if enc.Filter != "" {
		filter = filter + "," + enc.Filter
	}
	args = append(args, "-vf", filter)

	if cfg.HasAudio() {
		args = append(args, "-af", "aresample=async=1")
	}

	args = append(args, "-c:v", enc.Encoder)
	args = append(args, enc.QualityArgs...)

	if cfg.HasAudio() {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	}

	// Keyframe every two seconds of effective frame rate.
	args = append(args, "-g", strconv.Itoa(int(2*cfg.EffectiveFrameRate())))

	// Relocate the container metadata so playback can start while the file
	// is still downloading.
	args = append(args, "-movflags", "+faststart")

	args = append(args, "-y", cfg.OutputPath)

	return args
}

func videoDemuxer() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "v4l2"
	}
}

func audioDemuxer() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "alsa"
	}
}

// VideoInputDescriptor translates the application's camera identifier into
// the engine's input descriptor for this platform.
func VideoInputDescriptor(cameraID string) string {
	switch runtime.GOOS {
	case "windows":
		if strings.HasPrefix(cameraID, "video=") {
			return cameraID
		}
		return "video=" + cameraID
	case "darwin":
		// avfoundation wants "video:audio"; a bare index selects video only.
		return cameraID
	default:
		if idx, err := strconv.Atoi(cameraID); err == nil {
			return fmt.Sprintf("/dev/video%d", idx)
		}
		return cameraID
	}
}

func audioInputDescriptor(microphoneID string) string {
	switch runtime.GOOS {
	case "windows":
		if strings.HasPrefix(microphoneID, "audio=") {
			return microphoneID
		}
		return "audio=" + microphoneID
	case "darwin":
		if strings.HasPrefix(microphoneID, ":") {
			return microphoneID
		}
		return ":" + microphoneID
	default:
		return microphoneID
	}
}
