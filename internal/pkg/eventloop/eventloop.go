package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/gooath/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

var (
	// ErrClosed is returned when work is submitted after the loop stopped.
	ErrClosed = errors.New("eventloop: closed")
	// ErrRunning is returned when Run is called on a loop that already runs.
	ErrRunning = errors.New("eventloop: already running")
)

// Loop serializes work onto a single owner goroutine.
//
// Everything that mutates the object tree is posted here, so handlers never
// need locks of their own. The queue is unbounded: Post never blocks, even
// when called from a task running on the loop.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	done    chan struct{}
	running atomic.Bool
}

// New creates an idle loop. Call Run to start processing.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run processes posted tasks until ctx is canceled. Tasks still queued when
// the context ends are dropped.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closed = true
			dropped := len(l.queue)
			l.queue = nil
			l.mu.Unlock()

			if dropped > 0 {
				slog.WarnContext(ctx, "event loop stopped with pending tasks", "dropped", dropped)
			}
			return ctx.Err()

		case <-l.wake:
			for {
				l.mu.Lock()
				batch := l.queue
				l.queue = nil
				l.mu.Unlock()

				if len(batch) == 0 {
					break
				}
				for _, task := range batch {
					l.exec(ctx, task)
				}
			}
		}
	}
}

// Post enqueues fn. It returns false when the loop is closed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}

	return true
}

// Call runs fn on the loop and waits for its result. Calling it from a task
// running on the loop blocks until ctx ends.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	if !l.Post(func() {
		defer func() {
			if rvr := recover(); rvr != nil {
				errCh <- fmt.Errorf("eventloop: panic in call: %v", rvr)
				panic(rvr)
			}
		}()
		errCh <- fn()
	}) {
		return ErrClosed
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-errCh:
			return err
		default:
			return ErrClosed
		}
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(ctx context.Context, task func()) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			paths := stacktrace.InternalPaths(stack)
			if len(paths) == 0 {
				slog.ErrorContext(ctx, "panic occurred in event loop task", "panic", fmt.Sprint(rvr), "stack", string(stack))
			} else {
				slog.ErrorContext(ctx, "panic occurred in event loop task", "panic", fmt.Sprint(rvr), "stack", paths)
			}
		}
	}()

	task()
}
