package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/infrastructure/metrics"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

// Task is a side effect that runs after the primary write committed.
type Task func(ctx context.Context) error

// Dispatcher runs fire-and-forget side effects (customer email and the like)
// in their own goroutines. A task's error or panic is logged and counted,
// never handed back to whoever dispatched it.
type Dispatcher struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	closing bool
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		timeout: timeout,
		logger:  logger,
		metrics: m,
	}
}

// Go detaches task from ctx's cancellation (the request is usually finished
// by the time the task runs) but keeps its values, such as the trace id.
func (d *Dispatcher) Go(ctx context.Context, name string, task Task, fields ...zap.Field) error {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		d.logger.Warn("side effect dropped, dispatcher closed", append(fields, zap.String("task", name))...)
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		logger := d.logger.With(append(fields, zap.String("task", name))...)
		if err := run(taskCtx, task); err != nil {
			d.metrics.SideEffects.WithLabelValues(name, "error").Inc()
			logger.Error("side effect failed", zap.Error(err))
			return
		}
		d.metrics.SideEffects.WithLabelValues(name, "ok").Inc()
		logger.Debug("side effect completed")
	}()
	return nil
}

func run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

// Close stops accepting tasks and waits for in-flight ones or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
