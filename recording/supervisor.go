package recording

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/xx7Ahmed7xx/videobooth/common"
	"github.com/xx7Ahmed7xx/videobooth/encoding"
)

// Supervisor owns the engine child process for a recording attempt. At most
// one process handle exists at any time.
type Supervisor interface {
	// Start launches the engine for the given attempt. Fails with
	// ErrAlreadyRunning when a handle exists and ErrEngineNotFound when the
	// binary is missing. A successful return means the process launched, not
	// that the recording is healthy; callers apply a settling delay and check
	// Running before declaring success.
	Start(cfg SessionConfig, enc encoding.Candidate) error
	// Stop requests a graceful quit and escalates to forced termination after
	// the polite timeout. No-op when no process handle exists. The handle is
	// released on every path.
	Stop(politeTimeout time.Duration) error
	// Running reports whether a live process handle exists.
	Running() bool
	// OnExit registers the observer invoked exactly once per process
	// lifetime when the process is gone, however it went.
	OnExit(fn func())
	// Stats returns resource usage of the running engine process.
	Stats() (*ProcessStats, bool)
}

// EngineSupervisor implements Supervisor around an exec.Cmd.
type EngineSupervisor struct {
	logger common.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	exited chan struct{}
	onExit func()

	// buildArgs is swapped out by tests.
	buildArgs func(SessionConfig, encoding.Candidate) []string
}

// NewEngineSupervisor creates a supervisor for the engine binary.
func NewEngineSupervisor(logger common.Logger) *EngineSupervisor {
	if logger == nil {
		logger = common.NopLogger
	}
	return &EngineSupervisor{
		logger:    logger,
		buildArgs: BuildEngineArgs,
	}
}

func (s *EngineSupervisor) OnExit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExit = fn
}

func (s *EngineSupervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

func (s *EngineSupervisor) Start(cfg SessionConfig, enc encoding.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return ErrAlreadyRunning
	}

	binary, err := resolveEngineBinary(cfg.EnginePath)
	if err != nil {
		return err
	}

	if cfg.ValidateModeBeforeStart {
		// Diagnostics only; the mode listing never gates a start.
		modes := ListDeviceModes(binary, cfg.CameraID)
		if !ModeListed(modes, cfg.Width, cfg.Height) {
			s.logger.Warn("Requested mode not in device listing",
				"device", cfg.CameraID, "width", cfg.Width, "height", cfg.Height)
		}
	}

	args := s.buildArgs(cfg, enc)
	s.logger.Info("Starting engine", "binary", binary, "encoder", enc.Encoder, "output", cfg.OutputPath)
	s.logger.Debug("Engine invocation", "args", strings.Join(args, " "))

	cmd := exec.Command(binary, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrProcessStartFailure, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.exited = make(chan struct{})

	// The pipes must be drained for the life of the process; a full pipe
	// buffer stalls the engine mid-recording.
	go s.drain("stdout", stdout)
	go s.drain("stderr", stderr)
	go s.wait(cmd, s.exited)

	return nil
}

// resolveEngineBinary locates the engine binary, distinguishing an explicit
// path from a name looked up on PATH.
func resolveEngineBinary(enginePath string) (string, error) {
	if strings.ContainsAny(enginePath, `/\`) {
		if _, err := os.Stat(enginePath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrEngineNotFound, enginePath)
		}
		return enginePath, nil
	}

	binary, err := exec.LookPath(enginePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrEngineNotFound, enginePath)
	}
	return binary, nil
}

// drain forwards engine output line by line to the log sink. The engine
// rewrites its progress line with carriage returns, so the scanner splits on
// both CR and LF.
func (s *EngineSupervisor) drain(stream string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitCRLF)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.logger.Debug("engine output", "stream", stream, "line", line)
	}
}

func splitCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// wait reaps the process and fires the exit observer. This runs exactly once
// per process lifetime, whether the exit was graceful, forced, or a crash.
func (s *EngineSupervisor) wait(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	if err != nil {
		s.logger.Info("Engine process exited", "error", err)
	} else {
		s.logger.Info("Engine process exited cleanly")
	}

	s.mu.Lock()
	var handler func()
	if s.cmd == cmd {
		s.cmd = nil
		s.stdin = nil
		handler = s.onExit
	}
	s.mu.Unlock()

	close(exited)

	if handler != nil {
		handler()
	}
}

func (s *EngineSupervisor) Stop(politeTimeout time.Duration) error {
	s.mu.Lock()
	cmd := s.cmd
	stdin := s.stdin
	exited := s.exited
	s.mu.Unlock()

	if cmd == nil {
		return nil // Nothing to stop
	}

	// Ask politely first. The write can fail if the process already died;
	// the exit channel settles it either way.
	if stdin != nil {
		if _, err := io.WriteString(stdin, quitToken); err != nil {
			s.logger.Debug("Failed to write quit token", "error", err)
		}
	}

	select {
	case <-exited:
		return nil
	case <-time.After(politeTimeout):
	}

	s.logger.Warn("Engine ignored graceful stop, terminating", "timeout", politeTimeout)
	if cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			s.logger.Error("Failed to kill engine process", "error", err)
		}
	}

	select {
	case <-exited:
		return nil
	case <-time.After(politeTimeout):
		return fmt.Errorf("%w after forced termination", ErrStopTimeout)
	}
}
