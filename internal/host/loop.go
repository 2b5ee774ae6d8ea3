package host

import (
	"context"
	"sync"

	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
)

// Loop delivers callbacks one at a time from a single goroutine, so web-side code never
// observes two replies concurrently. Deliveries keep the order they were posted in.
type Loop struct {
	startOnce sync.Once
	wake      chan struct{}
	stopped   chan struct{}

	mu    sync.Mutex
	queue []delivery
}

type delivery struct {
	fn   native.Callback
	args []interface{}
}

func NewLoop() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Start runs the loop until ctx is canceled. Posts made before Start are kept.
func (l *Loop) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			l.drain(ctx)
		}
	}
}

func (l *Loop) drain(ctx context.Context) {
	for ctx.Err() == nil {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		d := l.queue[0]
		l.queue[0] = delivery{}
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.deliver(d)
	}
}

func (l *Loop) deliver(d delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("host: callback panicked: ", r)
		}
	}()
	d.fn(d.args...)
}

// Post queues fn to run on the loop. A nil fn is dropped.
func (l *Loop) Post(fn native.Callback, args ...interface{}) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, delivery{fn: fn, args: args})
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wrap returns a Callback that posts to fn instead of calling it directly.
func (l *Loop) Wrap(fn native.Callback) native.Callback {
	if fn == nil {
		return nil
	}
	return func(args ...interface{}) {
		l.Post(fn, args...)
	}
}

// Flush waits until everything posted before the call has been delivered.
func (l *Loop) Flush(ctx context.Context) error {
	done := make(chan struct{})
	l.Post(func(...interface{}) {
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}
