package recording

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// ListDeviceModes asks the engine for the capture modes it sees on a device.
// The output is line-oriented text meant for humans; it is parsed by
// substring matching and used for diagnostics only. Failures return an empty
// list, never an error: the probe-and-record path is the authoritative test
// of what the device can do.
func ListDeviceModes(enginePath, cameraID string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var args []string
	switch runtime.GOOS {
	case "windows":
		args = []string{"-hide_banner", "-f", "dshow", "-list_options", "true", "-i", VideoInputDescriptor(cameraID)}
	case "darwin":
		args = []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""}
	default:
		args = []string{"-hide_banner", "-f", "v4l2", "-list_formats", "all", "-i", VideoInputDescriptor(cameraID)}
	}

	// The listing goes to stderr and the invocation exits non-zero by design,
	// so the combined output is all that matters.
	cmd := exec.CommandContext(ctx, enginePath, args...)
	output, _ := cmd.CombinedOutput()

	var modes []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "x") && strings.ContainsAny(line, "0123456789") {
			modes = append(modes, line)
		}
	}

	return modes
}

// ModeListed reports whether a WxH mode appears in a device mode listing.
// An empty listing means the capability is unknown, which counts as listed.
func ModeListed(modes []string, width, height int) bool {
	if len(modes) == 0 {
		return true
	}

	needle := fmt.Sprintf("%dx%d", width, height)
	for _, mode := range modes {
		if strings.Contains(mode, needle) {
			return true
		}
	}
	return false
}
