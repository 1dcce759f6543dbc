package recording

import (
	"runtime"
	"strings"
	"testing"

	"github.com/xx7Ahmed7xx/videobooth/encoding"
)

func argsContain(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func argsHaveFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestBuildEngineArgs_VideoOnlyOmitsAudio(t *testing.T) {
	cfg := SessionConfig{
		EnginePath: "ffmpeg",
		CameraID:   "0",
		OutputPath: "/tmp/out.mp4",
		Width:      1280,
		Height:     720,
		FrameRate:  30,
	}

	args := BuildEngineArgs(cfg, encoding.SoftwareBaseline())

	if argsHaveFlag(args, "-c:a") {
		t.Error("Expected no audio codec for a video-only session")
	}
	if argsHaveFlag(args, "-af") {
		t.Error("Expected no audio filter for a video-only session")
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "alsa") || strings.Contains(joined, "audio=") {
		t.Errorf("Expected no audio input, got: %s", joined)
	}
}

func TestBuildEngineArgs_AudioSession(t *testing.T) {
	cfg := SessionConfig{
		EnginePath:   "ffmpeg",
		CameraID:     "0",
		MicrophoneID: "hw:1,0",
		OutputPath:   "/tmp/out.mp4",
		Width:        1280,
		Height:       720,
		FrameRate:    30,
	}

	args := BuildEngineArgs(cfg, encoding.SoftwareBaseline())

	if !argsContain(args, "-c:a", "aac") {
		t.Error("Expected aac audio codec")
	}
	if !argsContain(args, "-af", "aresample=async=1") {
		t.Error("Expected audio drift correction filter")
	}
}

func TestBuildEngineArgs_KeyframeIntervalFromFrameRate(t *testing.T) {
	cfg := SessionConfig{
		EnginePath: "ffmpeg",
		CameraID:   "0",
		OutputPath: "/tmp/out.mp4",
		FrameRate:  25,
	}

	args := BuildEngineArgs(cfg, encoding.SoftwareBaseline())

	if !argsContain(args, "-g", "50") {
		t.Errorf("Expected -g 50 for 25 fps, got: %v", args)
	}
}

func TestBuildEngineArgs_DefaultFrameRateWhenUnset(t *testing.T) {
	cfg := SessionConfig{
		EnginePath: "ffmpeg",
		CameraID:   "0",
		OutputPath: "/tmp/out.mp4",
	}

	args := BuildEngineArgs(cfg, encoding.SoftwareBaseline())

	if argsHaveFlag(args, "-framerate") {
		t.Error("Expected no -framerate when the driver default is in effect")
	}
	if !argsContain(args, "-g", "60") {
		t.Errorf("Expected -g 60 from the 30 fps default, got: %v", args)
	}
}

func TestBuildEngineArgs_WallClockAndVfr(t *testing.T) {
	cfg := SessionConfig{
		EnginePath: "ffmpeg",
		CameraID:   "0",
		OutputPath: "/tmp/out.mp4",
	}

	args := BuildEngineArgs(cfg, encoding.SoftwareBaseline())

	if !argsContain(args, "-use_wallclock_as_timestamps", "1") {
		t.Error("Expected wall-clock timestamps on the video input")
	}
	if !argsContain(args, "-fps_mode", "vfr") {
		t.Error("Expected variable frame rate output")
	}
	if !argsContain(args, "-movflags", "+faststart") {
		t.Error("Expected faststart container flag")
	}
}

func TestBuildEngineArgs_EncoderFilterAppended(t *testing.T) {
	cfg := SessionConfig{
		EnginePath: "ffmpeg",
		CameraID:   "0",
		OutputPath: "/tmp/out.mp4",
	}
	enc := encoding.Candidate{
		Encoder: "h264_vaapi",
		Filter:  "format=nv12,hwupload",
	}

	args := BuildEngineArgs(cfg, enc)

	if !argsContain(args, "-vf", "format=yuv420p,format=nv12,hwupload") {
		t.Errorf("Expected encoder filter appended to the pixel format filter, got: %v", args)
	}
}

func TestVideoInputDescriptor(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Descriptor translation is platform dependent")
	}

	if got := VideoInputDescriptor("2"); got != "/dev/video2" {
		t.Errorf("Expected /dev/video2, got %s", got)
	}
	if got := VideoInputDescriptor("/dev/video0"); got != "/dev/video0" {
		t.Errorf("Expected pass-through for device paths, got %s", got)
	}
}

func TestModeListed(t *testing.T) {
	modes := []string{
		"[video4linux2,v4l2 @ 0x55] Raw       :     yuyv422 :           YUYV 4:2:2 : 640x480 1280x720",
	}

	if !ModeListed(modes, 1280, 720) {
		t.Error("Expected 1280x720 to be listed")
	}
	if ModeListed(modes, 1920, 1080) {
		t.Error("Expected 1920x1080 to be absent")
	}
	if !ModeListed(nil, 1920, 1080) {
		t.Error("Expected an empty listing to count as unknown, not absent")
	}
}
