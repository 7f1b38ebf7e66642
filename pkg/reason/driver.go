package reason

import (
	"context"
	"log/slog"
	"time"
)

// Driver runs a Cycle repeatedly at a fixed wall-clock interval until its
// context is cancelled. The interval is an operational concern (how often
// the server advances logical time) and is independent of the DURATION
// parameter (Params.Duration), which no part of the cycle reads.
type Driver struct {
	cycle    *Cycle
	interval time.Duration
	logger   *slog.Logger

	stopped chan struct{}
}

// NewDriver constructs a Driver. A non-positive interval defaults to 100ms.
func NewDriver(cycle *Cycle, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Driver{cycle: cycle, interval: interval, logger: cycle.logger, stopped: make(chan struct{})}
}

// Run blocks, stepping the cycle on every tick, until ctx is cancelled. It
// runs in its own goroutine. The API's step endpoint also calls Cycle.Step;
// Step holds a per-Cycle lock, so only one step runs at a time.
func (d *Driver) Run(ctx context.Context) {
	defer close(d.stopped)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("cycle driver stopping")
			return
		case <-ticker.C:
			n := d.cycle.Step()
			d.logger.Debug("cycle stepped", "premises_executed", n)
		}
	}
}

// Stopped returns a channel closed once Run has returned, for callers that
// want to wait for a clean shutdown.
func (d *Driver) Stopped() <-chan struct{} { return d.stopped }
