package review

import (
	"github.com/xx7Ahmed7xx/videobooth/common"
)

// Gate decides whether a finished recording is kept or discarded. The
// decision never influences session state, only the fate of the output file.
type Gate interface {
	// Review is presented with the produced output path and returns true to
	// keep the file, false to delete it.
	Review(outputPath string) bool
}

// AutoKeepGate keeps every recording. Used when no operator review step is
// configured.
type AutoKeepGate struct {
	logger common.Logger
}

// NewAutoKeepGate creates a gate that approves every recording.
func NewAutoKeepGate(logger common.Logger) *AutoKeepGate {
	if logger == nil {
		logger = common.NopLogger
	}
	return &AutoKeepGate{logger: logger}
}

func (g *AutoKeepGate) Review(outputPath string) bool {
	g.logger.Debug("Auto-approving recording", "path", outputPath)
	return true
}
