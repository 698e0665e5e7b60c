package profiler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	count atomic.Uint64
}

func (f *fakeSource) CycleCount() uint64 { return f.count.Load() }

func TestRunIntervalSamplesUntilCancelled(t *testing.T) {
	src := &fakeSource{}
	src.count.Store(1000)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunInterval(ctx, src, slog.Default(), 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunInterval did not stop after context cancellation")
	}
}

func TestRunWithNilLoggerReturnsImmediately(t *testing.T) {
	src := &fakeSource{}
	done := make(chan struct{})
	go func() {
		RunInterval(context.Background(), src, nil, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunInterval with a nil logger should return immediately")
	}
}
