package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xx7Ahmed7xx/videobooth/capture"
	"github.com/xx7Ahmed7xx/videobooth/common"
	"github.com/xx7Ahmed7xx/videobooth/config"
	"github.com/xx7Ahmed7xx/videobooth/encoding"
	"github.com/xx7Ahmed7xx/videobooth/inspect"
	"github.com/xx7Ahmed7xx/videobooth/journal"
	"github.com/xx7Ahmed7xx/videobooth/recording"
	"github.com/xx7Ahmed7xx/videobooth/review"
)

// ErrInvalidSelection is returned when no capture device is configured.
// Rejected before any state change; the operator fixes the selection and
// retries.
var ErrInvalidSelection = errors.New("no capture device selected")

// Dependencies are the collaborators the orchestrator composes. Journal may
// be nil to disable session journaling.
type Dependencies struct {
	Devices    capture.DeviceManager
	Preview    capture.Preview
	Selector   encoding.Selector
	Supervisor recording.Supervisor
	Inspector  inspect.Inspector
	Gate       review.Gate
	Journal    journal.Journal
}

// attempt carries the per-recording bookkeeping from start to stop. Created
// on successful start, discarded when the attempt ends.
type attempt struct {
	config             recording.SessionConfig
	encoder            encoding.Candidate
	startedAt          time.Time
	mustRestorePreview bool
}

// Orchestrator composes the preview, encoder selection, engine supervision
// and timing into the start/stop workflows. All session state is owned here
// and mutated only under the state machine's busy guard.
type Orchestrator struct {
	logger common.Logger
	cfg    *config.Config
	deps   Dependencies

	sm    *StateMachine
	timer *Timer

	mu     sync.Mutex
	active *attempt

	// sleep is swapped out by tests to skip countdown and settling waits.
	sleep func(time.Duration)
}

// NewOrchestrator creates the orchestrator in Idle and registers itself as
// the engine exit observer.
func NewOrchestrator(logger common.Logger, cfg *config.Config, deps Dependencies) *Orchestrator {
	if logger == nil {
		logger = common.NopLogger
	}

	o := &Orchestrator{
		logger: logger,
		cfg:    cfg,
		deps:   deps,
		sm:     NewStateMachine(),
		timer:  NewTimer(),
		sleep:  time.Sleep,
	}

	deps.Supervisor.OnExit(o.handleEngineExit)
	return o
}

// State returns the current session state.
func (o *Orchestrator) State() State {
	return o.sm.Current()
}

// ListDevices enumerates the available capture devices.
func (o *Orchestrator) ListDevices() ([]capture.DeviceInfo, error) {
	return o.deps.Devices.ListVideoDevices()
}

// Snapshot encodes the most recent preview frame as a JPEG still.
func (o *Orchestrator) Snapshot() ([]byte, error) {
	frame, ok := o.deps.Preview.Snapshot()
	if !ok {
		return nil, fmt.Errorf("no preview frame available")
	}
	defer frame.Close()

	return capture.EncodeJPEG(frame)
}

// StartPreview opens the configured camera and begins the live feed.
func (o *Orchestrator) StartPreview() error {
	if _, err := o.sm.Begin(StateIdle); err != nil {
		return err
	}

	if o.cfg.CameraDevice == "" {
		o.sm.Finish(StateIdle)
		return ErrInvalidSelection
	}

	preset := o.preset()
	capability, err := o.deps.Preview.Start(o.cfg.CameraDevice, preset)
	if err != nil {
		o.logger.Error("Failed to start preview", "device", o.cfg.CameraDevice, "error", err)
		o.sm.Finish(StateIdle)
		return err
	}

	o.logger.Info("Preview active", "mode", capability)
	o.sm.Finish(StatePreviewing)
	return nil
}

// StopPreview halts the live feed. Accepts Idle so a preview left running
// after a recording can still be shut down; calling it with no active
// preview is a no-op.
func (o *Orchestrator) StopPreview() error {
	if _, err := o.sm.Begin(StatePreviewing, StateIdle); err != nil {
		return err
	}

	err := o.deps.Preview.Stop()
	if err != nil {
		o.logger.Error("Failed to stop preview", "error", err)
	}

	o.sm.Finish(StateIdle)
	return err
}

// StartRecording negotiates the capture mode and encoder, then launches the
// engine with the dual-open retry policy: the first attempt keeps the
// preview running as a confidence monitor; if the engine cannot open the
// device alongside it, the preview is stopped and the start retried once.
func (o *Orchestrator) StartRecording() error {
	prev, err := o.sm.Begin(StateIdle, StatePreviewing)
	if err != nil {
		return err
	}

	if o.cfg.CameraDevice == "" {
		o.sm.Finish(prev)
		return ErrInvalidSelection
	}

	o.countdown()

	capability, err := o.negotiateCapability()
	if err != nil {
		o.logger.Error("Capability negotiation failed", "device", o.cfg.CameraDevice, "error", err)
		o.sm.Finish(o.settledFailureState())
		return err
	}

	encoder := o.deps.Selector.Select(o.cfg.PreferHardwareEncoder, o.cfg.UseLowCompressionCodec)
	o.logger.Info("Encoder selected", "encoder", encoder.Encoder, "hardware", encoder.Hardware)

	outputPath, err := o.newOutputPath()
	if err != nil {
		o.sm.Finish(o.settledFailureState())
		return err
	}

	recCfg := recording.SessionConfig{
		EnginePath:                o.cfg.EnginePath,
		CameraID:                  o.cfg.CameraDevice,
		MicrophoneID:              o.cfg.MicrophoneDevice,
		OutputPath:                outputPath,
		Width:                     capability.Width,
		Height:                    capability.Height,
		FrameRate:                 capability.FrameRate,
		PreferHardware:            o.cfg.PreferHardwareEncoder,
		ValidateModeBeforeStart:   o.cfg.ValidateModeBeforeStart,
		UseLowCompressionFallback: o.cfg.UseLowCompressionCodec,
	}

	previewWasActive := o.deps.Preview.Active()
	mustRestore := false

	err = o.launchAttempt(recCfg, encoder)
	if err != nil && !errors.Is(err, recording.ErrEngineNotFound) && previewWasActive {
		// A start that dies with the preview holding the device is treated
		// as contention: suspend the preview and retry with exclusive access.
		o.logger.Warn("Start failed with preview active, retrying with exclusive device access",
			"error", fmt.Errorf("%w: %v", recording.ErrDeviceContention, err))

		if stopErr := o.deps.Preview.Stop(); stopErr != nil {
			o.logger.Error("Failed to stop preview for retry", "error", stopErr)
		}
		mustRestore = true

		err = o.launchAttempt(recCfg, encoder)
	}

	if err != nil {
		o.logger.Error("Recording start failed", "error", err)
		o.sm.Finish(o.settledFailureState())
		return err
	}

	o.mu.Lock()
	o.active = &attempt{
		config:             recCfg,
		encoder:            encoder,
		startedAt:          time.Now(),
		mustRestorePreview: mustRestore,
	}
	o.mu.Unlock()

	maxElapsed := time.Duration(o.cfg.MaxRecordingSeconds) * time.Second
	o.timer.Start(maxElapsed, o.autoStop)

	o.sm.Finish(StateRecording)

	// An exit in the window between the settling check and the transition
	// lands while the guard is still held and is dropped; pick it up now
	// that the state can be reconciled.
	if !o.deps.Supervisor.Running() {
		o.handleEngineExit()
		return fmt.Errorf("%w: engine exited before the session settled", recording.ErrProcessStartFailure)
	}

	o.logger.Info("Recording started", "output", outputPath, "mode", capability, "encoder", encoder.Encoder)
	return nil
}

// StopRecording gracefully stops the engine, finalizes the output through
// the review gate and journal, and restores the preview if it was suspended
// for the attempt.
func (o *Orchestrator) StopRecording() error {
	return o.stopRecording(journal.EndReasonOperator)
}

func (o *Orchestrator) stopRecording(reason string) error {
	if _, err := o.sm.Begin(StateRecording); err != nil {
		return err
	}

	o.timer.Stop()

	stopTimeout := time.Duration(o.cfg.StopTimeoutSeconds) * time.Second
	if err := o.deps.Supervisor.Stop(stopTimeout); err != nil {
		o.logger.Error("Engine stop failed", "error", err)
	}

	o.cleanupAfterRecording(reason)

	o.timer.Reset()
	o.sm.Finish(StateIdle)
	return nil
}

// autoStop is invoked by the timer once the maximum duration is reached.
func (o *Orchestrator) autoStop() {
	o.logger.Info("Maximum recording duration reached, stopping")
	if err := o.stopRecording(journal.EndReasonAutoStop); err != nil {
		o.logger.Warn("Auto-stop found no recording to stop", "error", err)
	}
}

// handleEngineExit reconciles session state when the engine dies outside a
// Stop call. Exits observed in any state other than Recording belong to an
// in-progress stop and are ignored.
func (o *Orchestrator) handleEngineExit() {
	// The wait goroutine hands the notification over after Stop has already
	// returned, so it can arrive once a new engine is live. In that case the
	// exit belongs to the stopped process and the live one will deliver its
	// own.
	if o.deps.Supervisor.Running() {
		return
	}

	if _, err := o.sm.Begin(StateRecording); err != nil {
		return
	}

	o.logger.Warn("Engine exited unexpectedly, reconciling session state")

	o.timer.Stop()
	o.cleanupAfterRecording(journal.EndReasonEngineExit)

	o.timer.Reset()
	o.sm.Finish(StateIdle)
}

// cleanupAfterRecording finalizes the ended attempt: restores the preview if
// it was suspended, runs the output through the review gate, and journals
// the session. Must only run under the busy guard.
func (o *Orchestrator) cleanupAfterRecording(reason string) {
	o.mu.Lock()
	a := o.active
	o.active = nil
	o.mu.Unlock()

	if a == nil {
		return
	}

	if a.mustRestorePreview {
		if _, err := o.deps.Preview.Start(o.cfg.CameraDevice, o.preset()); err != nil {
			o.logger.Error("Failed to restore preview", "error", err)
		}
	}

	o.finalizeOutput(a, reason)
}

// finalizeOutput validates the produced file, applies the review gate's
// keep/discard decision and records the session in the journal. Failures
// here are logged, never propagated: the output's fate does not affect
// session state.
func (o *Orchestrator) finalizeOutput(a *attempt, reason string) {
	var durationSeconds float64
	var sizeBytes int64

	info, err := o.deps.Inspector.Inspect(a.config.OutputPath)
	if err != nil {
		o.logger.Warn("Output file failed inspection", "path", a.config.OutputPath, "error", err)
	} else {
		durationSeconds = info.DurationSeconds
		sizeBytes = info.SizeBytes
	}

	kept := false
	if err == nil {
		kept = o.deps.Gate.Review(a.config.OutputPath)
	}

	if !kept {
		if rmErr := os.Remove(a.config.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			o.logger.Error("Failed to delete discarded output", "path", a.config.OutputPath, "error", rmErr)
		}
		o.logger.Info("Recording discarded", "path", a.config.OutputPath)
	} else {
		o.logger.Info("Recording kept", "path", a.config.OutputPath, "duration", durationSeconds, "size", sizeBytes)
	}

	if o.deps.Journal == nil {
		return
	}

	entry := &journal.Entry{
		StartedAt:       a.startedAt,
		EndedAt:         time.Now(),
		OutputPath:      a.config.OutputPath,
		Encoder:         a.encoder.Encoder,
		Width:           a.config.Width,
		Height:          a.config.Height,
		DurationSeconds: durationSeconds,
		SizeBytes:       sizeBytes,
		Kept:            kept,
		EndReason:       reason,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.deps.Journal.Add(ctx, entry); err != nil {
		o.logger.Error("Failed to journal session", "error", err)
	}
}

// launchAttempt starts the engine and applies the settling delay: a launch
// only counts as successful if the process is still alive afterwards.
func (o *Orchestrator) launchAttempt(cfg recording.SessionConfig, enc encoding.Candidate) error {
	if err := o.deps.Supervisor.Start(cfg, enc); err != nil {
		return err
	}

	o.sleep(time.Duration(o.cfg.SettleDelayMillis) * time.Millisecond)

	if !o.deps.Supervisor.Running() {
		return fmt.Errorf("%w: engine exited during the settling delay", recording.ErrProcessStartFailure)
	}

	return nil
}

// negotiateCapability picks the capture mode for the attempt: the preview's
// active mode when it is running, otherwise a short probe of the device.
func (o *Orchestrator) negotiateCapability() (capture.Capability, error) {
	if capability, ok := o.deps.Preview.ActiveCapability(); ok {
		return capability, nil
	}

	device, err := o.deps.Devices.Open(o.cfg.CameraDevice)
	if err != nil {
		return capture.Capability{}, fmt.Errorf("failed to open device for negotiation: %w", err)
	}
	defer device.Stop()

	capability, ok := capture.ResolveCapability(device.Capabilities(), o.preset())
	if !ok {
		return capture.Capability{}, fmt.Errorf("device %s reports no capabilities", o.cfg.CameraDevice)
	}

	return capability, nil
}

// settledFailureState is where a failed start lands: back to Previewing when
// the confidence monitor survived the failure, otherwise Idle.
func (o *Orchestrator) settledFailureState() State {
	if o.deps.Preview.Active() {
		return StatePreviewing
	}
	return StateIdle
}

// countdown gives the operator a visible lead-in before the engine starts.
func (o *Orchestrator) countdown() {
	for i := o.cfg.CountdownSeconds; i > 0; i-- {
		o.logger.Info("Recording starts", "in", i)
		o.sleep(time.Second)
	}
}

func (o *Orchestrator) preset() capture.ResolutionPreset {
	preset, err := capture.ParsePreset(o.cfg.ResolutionPreset)
	if err != nil {
		o.logger.Warn("Unknown resolution preset, using catch-all", "preset", o.cfg.ResolutionPreset)
		return capture.PresetAny()
	}
	return preset
}

func (o *Orchestrator) newOutputPath() (string, error) {
	if err := os.MkdirAll(o.cfg.OutputDirectory, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("session_%s.mp4", time.Now().Format("20060102_150405"))
	return filepath.Join(o.cfg.OutputDirectory, name), nil
}
