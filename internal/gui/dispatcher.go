package gui

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// DefaultDispatchTimeout bounds how long Do waits for the UI goroutine.
const DefaultDispatchTimeout = 30 * time.Second

// ErrDispatcherClosed is returned by Do after Close or after Run returned.
var ErrDispatcherClosed = errors.New("gui dispatcher closed")

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

// Dispatcher serializes GUI work onto the goroutine that calls Run.
// Run must be called from the main goroutine on platforms with thread affinity.
type Dispatcher struct {
	timeout time.Duration
	work    chan job
	done    chan struct{}
	once    sync.Once
}

// NewDispatcher creates a Dispatcher; timeout <= 0 selects DefaultDispatchTimeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &Dispatcher{
		timeout: timeout,
		work:    make(chan job),
		done:    make(chan struct{}),
	}
}

// Run executes queued work until ctx is done or Close is called.
func (d *Dispatcher) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer d.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.done:
			return nil
		case j := <-d.work:
			j.result <- d.exec(j)
		}
	}
}

func (d *Dispatcher) exec(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gui panic: %v", r)
		}
	}()
	return j.fn(WithOwner(j.ctx))
}

// Do runs fn on the UI goroutine and waits for it.
func (d *Dispatcher) Do(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case d.work <- j:
	case <-d.done:
		return ErrDispatcherClosed
	case <-ctx.Done():
		return fmt.Errorf("gui dispatch: %w", ctx.Err())
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("gui dispatch: %w", ctx.Err())
	}
}

// Close stops Run. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
}
