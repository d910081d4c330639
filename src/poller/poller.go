package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"currency-observer/src/logger"
)

// -----------------------------------------------------------------------------

// Runner is the unit of work driven by each tick.
type Runner interface {
	RunOnce()
}

// -----------------------------------------------------------------------------

// Poller drives the dispatcher at a fixed period from a single goroutine.
// It fires regardless of subscriber count, re-arms unconditionally whatever
// the cycle outcome, and stops only via context cancellation. Because cycles
// run sequentially, a cycle that outlasts the period makes the ticker drop
// ticks rather than overlap work.
type Poller struct {
	Runner     Runner
	Interval   time.Duration
	Logger     *logger.Logger
	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewPoller(runner Runner, interval time.Duration, log *logger.Logger) *Poller {
	return &Poller{
		Runner:   runner,
		Interval: interval,
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// Start begins the polling loop.
// ctx: controls the lifecycle (cancellation stops the loop)
// wg: signals when the loop has fully stopped
func (p *Poller) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning.Load() {
		return fmt.Errorf("poller is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	p.cancelFunc = cancel
	p.isRunning.Store(true)

	wg.Add(1)
	go p.runLoop(ctx, wg)
	p.Logger.Info("Started poller (interval %s)", p.Interval)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning.Load() {
		return fmt.Errorf("poller is not running")
	}

	if p.cancelFunc != nil {
		p.cancelFunc()
	}
	p.isRunning.Store(false)
	p.Logger.Info("Stopped poller")
	return nil
}

// -----------------------------------------------------------------------------

// runLoop runs one cycle immediately, then one per tick.
func (p *Poller) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	p.Runner.RunOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Runner.RunOnce()
		}
	}
}
