// Package pubsub signals one-shot, keyed events such as "the initial property bundle
// has been applied".
package pubsub

import (
	"context"
	"sync"
)

type PubSub interface {
	// Emit unblocks every Waiter on 'key'. Later Emits of the same key are no-ops.
	Emit(key string)
	// Emitted reports whether 'key' has been emitted.
	Emitted(key string) bool
	// Wait blocks until 'key' is emitted or the PubSub's context is canceled.
	Wait(key string)
	// WaitContext is Wait bounded by ctx, returning ctx.Err() if ctx ends first.
	WaitContext(ctx context.Context, key string) error
}

type waiter struct {
	cancel context.CancelFunc
}

type pubsub struct {
	mu          sync.Mutex
	subscribers map[string][]*waiter
	emitted     map[string]bool
	ctx         context.Context
}

// New creates a new PubSub that unblocks all calls to Wait when ctx is canceled
func New(ctx context.Context) PubSub {
	return &pubsub{
		ctx:         ctx,
		subscribers: make(map[string][]*waiter),
		emitted:     make(map[string]bool),
	}
}

func (ps *pubsub) Emit(key string) {
	ps.mu.Lock()
	if ps.emitted[key] {
		ps.mu.Unlock()
		return
	}
	ps.emitted[key] = true
	waiters := ps.subscribers[key]
	delete(ps.subscribers, key)
	ps.mu.Unlock()
	for _, w := range waiters {
		w.cancel()
	}
}

func (ps *pubsub) Emitted(key string) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.emitted[key]
}

func (ps *pubsub) Wait(key string) {
	_ = ps.WaitContext(context.Background(), key)
}

func (ps *pubsub) WaitContext(ctx context.Context, key string) error {
	select {
	case <-ps.ctx.Done():
		return nil
	default:
	}

	ps.mu.Lock()
	if ps.emitted[key] {
		ps.mu.Unlock()
		return nil
	}
	emitted, cancel := context.WithCancel(ps.ctx)
	w := &waiter{cancel: cancel}
	ps.subscribers[key] = append(ps.subscribers[key], w)
	ps.mu.Unlock()

	select {
	case <-ps.ctx.Done():
		return nil
	case <-emitted.Done():
		return nil
	case <-ctx.Done():
		ps.unsubscribe(key, w)
		return ctx.Err()
	}
}

func (ps *pubsub) unsubscribe(key string, w *waiter) {
	ps.mu.Lock()
	waiters := ps.subscribers[key]
	for i, other := range waiters {
		if other == w {
			waiters = append(waiters[:i:i], waiters[i+1:]...)
			break
		}
	}
	if len(waiters) == 0 {
		delete(ps.subscribers, key)
	} else {
		ps.subscribers[key] = waiters
	}
	ps.mu.Unlock()
	w.cancel()
}

