package session

import (
	"github.com/xx7Ahmed7xx/videobooth/recording"
)

// Status is the read-only projection of the session handed to operators.
type Status struct {
	State          State  `json:"state"`
	PreviewActive  bool   `json:"preview_active"`
	PreviewMode    string `json:"preview_mode,omitempty"`
	Elapsed        string `json:"elapsed"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	MaxSeconds     int    `json:"max_seconds"`
	Encoder        string `json:"encoder,omitempty"`
	OutputPath     string `json:"output_path,omitempty"`

	Engine *recording.ProcessStats `json:"engine,omitempty"`
}

// Status assembles the current projection. Safe to call from any goroutine;
// it only reads.
func (o *Orchestrator) Status() Status {
	elapsed := o.timer.Elapsed()

	status := Status{
		State:          o.sm.Current(),
		PreviewActive:  o.deps.Preview.Active(),
		Elapsed:        FormatElapsed(elapsed),
		ElapsedSeconds: int(elapsed.Seconds()),
		MaxSeconds:     o.cfg.MaxRecordingSeconds,
	}

	if capability, ok := o.deps.Preview.ActiveCapability(); ok {
		status.PreviewMode = capability.String()
	}

	o.mu.Lock()
	if o.active != nil {
		status.Encoder = o.active.encoder.Encoder
		status.OutputPath = o.active.config.OutputPath
	}
	o.mu.Unlock()

	if stats, ok := o.deps.Supervisor.Stats(); ok {
		status.Engine = stats
	}

	return status
}
