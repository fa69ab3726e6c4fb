package encounter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner drives a tick function from a wall-clock ticker, for headless
// drivers and tests that have no render loop to hang frames off. Pausing
// the runner only skips tick delivery; pairing it with Experience.Suspend
// is the caller's job.
type Runner struct {
	interval time.Duration
	tick     func(now time.Time)
	logger   *zap.Logger

	mu     sync.Mutex
	paused bool
}

// NewRunner creates a Runner that invokes tick every interval once Run is
// called.
//
// Precondition: interval must be > 0 and tick must be non-nil. logger may
// be nil for no logging.
func NewRunner(interval time.Duration, tick func(now time.Time), logger *zap.Logger) *Runner {
	if interval <= 0 {
		panic("encounter: runner interval must be positive")
	}
	if tick == nil {
		panic("encounter: runner tick func must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		interval: interval,
		tick:     tick,
		logger:   logger,
	}
}

// Run blocks, invoking the tick function at every interval until ctx is
// cancelled. Ticks that fire while the runner is paused are dropped, not
// queued.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Debug("runner started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner stopped")
			return
		case now := <-ticker.C:
			if r.Paused() {
				continue
			}
			r.tick(now)
		}
	}
}

// Pause stops tick delivery until Resume. Pausing twice is a no-op.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume restarts tick delivery.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
}

// Paused reports whether tick delivery is stopped.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}
