// Package profiler implements an optional goroutine that samples a
// hart's retired-instruction counter once a second and logs an
// instructions-per-second figure. It is purely diagnostic: nothing
// about emulation correctness depends on it running, and its only
// synchronization requirement on the hart is that CycleCount be safe
// to read concurrently with Run, which it is (both sides use an
// atomic counter).
package profiler

import (
	"context"
	"log/slog"
	"time"
)

// Source is the subset of *cpu.Hart the profiler needs.
type Source interface {
	CycleCount() uint64
}

// Run samples source.CycleCount() once a second and logs the
// instructions retired since the previous sample, until ctx is
// cancelled. It is meant to be launched in its own goroutine.
func Run(ctx context.Context, source Source, logger *slog.Logger) {
	RunInterval(ctx, source, logger, time.Second)
}

// RunInterval is Run with an explicit sampling interval, split out so
// tests don't have to wait a full second per sample.
func RunInterval(ctx context.Context, source Source, logger *slog.Logger, interval time.Duration) {
	if logger == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := source.CycleCount()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := source.CycleCount()
			delta := current - last
			last = current
			logger.Info("profiler", "instructions_per_second", delta, "total_instructions", current)
		}
	}
}
