package recording

import (
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessStats is a point-in-time snapshot of the engine's resource usage.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryRSS  uint64  `json:"memory_rss"`
}

// Stats samples the running engine process. The second return is false when
// no process is running or the sample could not be taken.
func (s *EngineSupervisor) Stats() (*ProcessStats, bool) {
	s.mu.Lock()
	cmd := s.cmd
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil, false
	}

	proc, err := process.NewProcess(int32(cmd.Process.Pid))
	if err != nil {
		return nil, false
	}

	stats := &ProcessStats{PID: proc.Pid}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.MemoryRSS = mem.RSS
	}

	return stats, true
}
