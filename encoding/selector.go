package encoding

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/xx7Ahmed7xx/videobooth/common"
)

// Selector picks the encoder a recording attempt should use.
type Selector interface {
	// Select returns the encoder to record with. It never fails: when no
	// accelerator survives its probe, the software baseline is returned.
	Select(preferHardware bool, lowCompression bool) Candidate
}

// engineProber answers what the engine binary can actually do.
type engineProber interface {
	// CompiledEncoders lists the encoders compiled into the engine.
	CompiledEncoders() (map[string]bool, error)
	// Probe runs a short synthetic encode with the candidate and returns an
	// error if the encoder is unusable at runtime.
	Probe(c Candidate) error
}

// FFmpegSelector selects encoders by introspecting and probing the engine
// binary. Accelerators can be compiled in yet unusable (missing driver,
// permissions, device contention), so a dry probe encode is the authoritative
// test; the compiled-in listing only prunes candidates that cannot work.
type FFmpegSelector struct {
	logger common.Logger
	prober engineProber
}

// NewFFmpegSelector creates a selector for the given engine binary.
func NewFFmpegSelector(logger common.Logger, enginePath string) *FFmpegSelector {
	if logger == nil {
		logger = common.NopLogger
	}
	return &FFmpegSelector{
		logger: logger,
		prober: &execProber{enginePath: enginePath, timeout: 10 * time.Second},
	}
}

// newSelectorWithProber is used by tests to substitute the prober.
func newSelectorWithProber(logger common.Logger, prober engineProber) *FFmpegSelector {
	if logger == nil {
		logger = common.NopLogger
	}
	return &FFmpegSelector{logger: logger, prober: prober}
}

func (s *FFmpegSelector) Select(preferHardware bool, lowCompression bool) Candidate {
	baseline := SoftwareBaseline()
	if lowCompression {
		baseline = LowCompressionFallback()
	}

	if !preferHardware {
		return baseline
	}

	compiled, err := s.prober.CompiledEncoders()
	if err != nil {
		// Capability unknown, not fatal: probe every candidate instead.
		s.logger.Warn("Failed to list engine encoders, probing all candidates", "error", err)
		compiled = nil
	}

	for _, candidate := range hardwareCandidates() {
		if compiled != nil && !compiled[candidate.Encoder] {
			s.logger.Debug("Skipping encoder not compiled into engine", "encoder", candidate.Encoder)
			continue
		}

		if err := s.prober.Probe(candidate); err != nil {
			s.logger.Info("Encoder probe failed, trying next candidate", "encoder", candidate.Encoder, "error", err)
			continue
		}

		s.logger.Info("Selected hardware encoder", "encoder", candidate.Encoder)
		return candidate
	}

	s.logger.Info("No usable hardware encoder, using software baseline", "encoder", baseline.Encoder)
	return baseline
}

// encoderLinePattern matches the engine's encoder listing, e.g.
// " V....D h264_vaapi           H.264/AVC (VAAPI)".
var encoderLinePattern = regexp.MustCompile(`^ ([VA][.SFXBD]{5})\s+([a-zA-Z0-9_-]+)\s+`)

// execProber implements engineProber by invoking the engine binary.
type execProber struct {
	enginePath string
	timeout    time.Duration
}

func (p *execProber) CompiledEncoders() (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.enginePath, "-hide_banner", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query engine encoders: %w", err)
	}

	encoders := make(map[string]bool)
	for _, line := range strings.Split(string(output), "\n") {
		// Skip header lines that contain " = "
		if strings.Contains(line, " = ") {
			continue
		}

		matches := encoderLinePattern.FindStringSubmatch(line)
		if len(matches) >= 3 {
			flags := matches[1]
			name := matches[2]
			if len(name) > 0 && (strings.HasPrefix(flags, "V") || strings.HasPrefix(flags, "A")) {
				encoders[name] = true
			}
		}
	}

	return encoders, nil
}

// Probe encodes a few frames of a generated test pattern at minimal
// resolution. The exit code is the only signal that matters; the textual
// output is forwarded nowhere.
func (p *execProber) Probe(c Candidate) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	args := []string{"-hide_banner", "-v", "error"}
	args = append(args, c.InputArgs...)
	args = append(args, "-f", "lavfi", "-i", "testsrc2=size=128x96:rate=10")
	args = append(args, "-frames:v", "3")
	if c.Filter != "" {
		args = append(args, "-vf", c.Filter)
	}
	args = append(args, "-c:v", c.Encoder)
	args = append(args, c.QualityArgs...)
	args = append(args, "-f", "null", "-")

	cmd := exec.CommandContext(ctx, p.enginePath, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("probe encode with %s failed: %w", c.Encoder, err)
	}

	return nil
}
