package inspect

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xfrr/goffmpeg/transcoder"
	"github.com/xx7Ahmed7xx/videobooth/common"
)

// minValidSize is the smallest output file that could plausibly hold a
// finalized container. Anything below it is a header-only stub from an
// engine that died before writing frames.
const minValidSize = 1000

// OutputInfo describes a finished recording file.
type OutputInfo struct {
	Path            string
	SizeBytes       int64
	DurationSeconds float64
}

// Inspector validates and describes a produced output file.
type Inspector interface {
	// Inspect probes the output file and returns its basic properties. An
	// error means the file is missing, truncated or unreadable as media.
	Inspect(path string) (*OutputInfo, error)
}

// FFmpegInspector implements Inspector by probing the file with ffmpeg.
type FFmpegInspector struct {
	logger common.Logger
}

// NewFFmpegInspector creates a new ffmpeg-based output inspector.
func NewFFmpegInspector(logger common.Logger) *FFmpegInspector {
	if logger == nil {
		logger = common.NopLogger
	}
	return &FFmpegInspector{logger: logger}
}

func (i *FFmpegInspector) Inspect(path string) (*OutputInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("output file missing: %w", err)
	}
	if stat.Size() < minValidSize {
		return nil, fmt.Errorf("output file is truncated (%d bytes)", stat.Size())
	}

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(path, ""); err != nil {
		return nil, fmt.Errorf("failed to probe output file: %w", err)
	}

	metadata := trans.MediaFile().Metadata()

	duration, err := ParseDurationSeconds(metadata.Format.Duration)
	if err != nil {
		i.logger.Warn("Could not parse output duration", "path", path, "raw", metadata.Format.Duration)
		duration = 0
	}

	info := &OutputInfo{
		Path:            path,
		SizeBytes:       stat.Size(),
		DurationSeconds: duration,
	}

	i.logger.Debug("Inspected output file", "path", path, "size", info.SizeBytes, "duration", info.DurationSeconds)
	return info, nil
}

// ParseDurationSeconds parses the probe's duration field, which reports
// seconds as a decimal string.
func ParseDurationSeconds(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return seconds, nil
}
