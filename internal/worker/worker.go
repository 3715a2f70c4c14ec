package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a long-running unit of work. It should return once ctx is done.
type Task func(ctx context.Context) error

// Pool runs named background tasks and coordinates their shutdown.
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	errs   chan error
	logger *slog.Logger
}

// NewPool creates a new worker pool
func NewPool(logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		errs:   make(chan error, 16),
		logger: logger,
	}
}

// Go starts task in its own goroutine. A non-nil error is logged and
// published on Errors.
func (p *Pool) Go(name string, task Task) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.logger.Debug("▶️ [Worker] Task started", "task", name)

		if err := task(p.ctx); err != nil {
			p.logger.Error("❌ [Worker] Task failed", "task", name, "error", err)
			select {
			case p.errs <- err:
			default:
			}
			return
		}
		p.logger.Debug("⏹️ [Worker] Task finished", "task", name)
	}()
}

// Errors reports task failures. Used by main to stop on a dead server.
func (p *Pool) Errors() <-chan error {
	return p.errs
}

// Context returns the pool's context
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Shutdown cancels the pool context and waits up to timeout for tasks to
// return. It reports whether every task completed in time.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.logger.Info("🛑 [Worker] Initiating graceful shutdown...")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("✅ [Worker] All background tasks completed")
		return true
	case <-time.After(timeout):
		p.logger.Warn("⚠️ [Worker] Shutdown timeout exceeded, some tasks may not have completed",
			"timeout", timeout,
		)
		return false
	}
}
