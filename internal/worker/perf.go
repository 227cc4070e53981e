package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/jppabloc/hytale-dashboard/internal/install"
)

// ErrServerNotRunning indicates no server process could be found.
var ErrServerNotRunning = errors.New("worker: server process not found")

// FindServerProcess locates the running Java server by scanning for the
// server jar in process command lines.
func FindServerProcess(ctx context.Context) (*process.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range procs {
		args, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			// Processes may exit or be unreadable mid-scan
			continue
		}
		for _, arg := range args {
			if strings.HasSuffix(arg, install.ServerJar) {
				return p, nil
			}
		}
	}

	return nil, ErrServerNotRunning
}

// SampleProcess reads CPU and memory usage of the server process into
// the sample. A vanished process leaves the fields nil; the sample is
// still recorded so gaps are visible on the dashboard.
func SampleProcess(ctx context.Context, p *process.Process, sample *PerfSample) {
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		sample.CPUPercent = &cpu
	}
	if memPct, err := p.MemoryPercentWithContext(ctx); err == nil {
		v := float64(memPct)
		sample.RAMPercent = &v
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		mb := float64(mem.RSS) / (1024 * 1024)
		sample.RAMMB = &mb
	}
}
