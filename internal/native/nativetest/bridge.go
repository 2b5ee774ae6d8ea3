// Package nativetest provides a recording native.Bridge for tests.
//
// Dispatches are recorded in order. Asynchronous calls stay pending until the test
// delivers a reply with Reply or Fail; listeners receive pushes from Push.
package nativetest

import (
	"fmt"
	"sync"

	"github.com/hack-pad/palmshim/internal/native"
	"github.com/pkg/errors"
)

type Kind string

const (
	KindExec                Kind = "exec"
	KindListen              Kind = "listen"
	KindExecSync            Kind = "execSync"
	KindExecWithoutCallback Kind = "execWithoutCallback"
)

// Dispatch is one recorded bridge invocation.
type Dispatch struct {
	Kind      Kind
	Interface string
	Operation string
	Args      []interface{}
}

func (d Dispatch) String() string {
	return fmt.Sprintf("%s %s.%s%v", d.Kind, d.Interface, d.Operation, d.Args)
}

// SyncFunc answers an ExecSync dispatch.
type SyncFunc func(args []interface{}) (string, error)

type pendingCall struct {
	Dispatch
	success, failure native.Callback
}

type listener struct {
	Dispatch
	handler native.Callback
}

type Bridge struct {
	mu         sync.Mutex
	dispatches []Dispatch
	pending    []pendingCall
	listeners  []listener
	sync       map[string]SyncFunc
}

var _ native.Bridge = (*Bridge)(nil)

func New() *Bridge {
	return &Bridge{
		sync: make(map[string]SyncFunc),
	}
}

func key(iface, operation string) string {
	return iface + "." + operation
}

// HandleSync installs the answer for synchronous calls to iface.operation.
func (b *Bridge) HandleSync(iface, operation string, fn SyncFunc) {
	b.mu.Lock()
	b.sync[key(iface, operation)] = fn
	b.mu.Unlock()
}

// RespondSync is HandleSync with a constant result.
func (b *Bridge) RespondSync(iface, operation, result string) {
	b.HandleSync(iface, operation, func([]interface{}) (string, error) {
		return result, nil
	})
}

func (b *Bridge) record(d Dispatch) {
	b.dispatches = append(b.dispatches, d)
}

func (b *Bridge) Exec(success, failure native.Callback, iface, operation string, args ...interface{}) {
	d := Dispatch{Kind: KindExec, Interface: iface, Operation: operation, Args: args}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(d)
	b.pending = append(b.pending, pendingCall{Dispatch: d, success: success, failure: failure})
}

func (b *Bridge) Listen(handler native.Callback, iface, operation string, args ...interface{}) {
	d := Dispatch{Kind: KindListen, Interface: iface, Operation: operation, Args: args}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(d)
	b.listeners = append(b.listeners, listener{Dispatch: d, handler: handler})
}

func (b *Bridge) ExecSync(iface, operation string, args ...interface{}) (string, error) {
	b.mu.Lock()
	b.record(Dispatch{Kind: KindExecSync, Interface: iface, Operation: operation, Args: args})
	fn := b.sync[key(iface, operation)]
	b.mu.Unlock()
	if fn == nil {
		return "", errors.Errorf("nativetest: no sync handler for %s", key(iface, operation))
	}
	return fn(args)
}

func (b *Bridge) ExecWithoutCallback(iface, operation string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Dispatch{Kind: KindExecWithoutCallback, Interface: iface, Operation: operation, Args: args})
}

// Dispatches returns a copy of everything recorded so far.
func (b *Bridge) Dispatches() []Dispatch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Dispatch(nil), b.dispatches...)
}

// DispatchesOf filters recorded dispatches by operation name.
func (b *Bridge) DispatchesOf(operation string) []Dispatch {
	var matched []Dispatch
	for _, d := range b.Dispatches() {
		if d.Operation == operation {
			matched = append(matched, d)
		}
	}
	return matched
}

// Pending returns the number of asynchronous calls to operation still awaiting a reply.
func (b *Bridge) Pending(operation string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, p := range b.pending {
		if p.Operation == operation {
			count++
		}
	}
	return count
}

func (b *Bridge) popPending(operation string) (pendingCall, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.pending {
		if p.Operation == operation {
			b.pending = append(b.pending[:i:i], b.pending[i+1:]...)
			return p, nil
		}
	}
	return pendingCall{}, errors.Errorf("nativetest: no pending %q call", operation)
}

// Reply invokes the success continuation of the oldest pending call to operation.
func (b *Bridge) Reply(operation string, args ...interface{}) error {
	p, err := b.popPending(operation)
	if err != nil {
		return err
	}
	if p.success != nil {
		p.success(args...)
	}
	return nil
}

// Fail invokes the failure continuation of the oldest pending call to operation.
func (b *Bridge) Fail(operation string, args ...interface{}) error {
	p, err := b.popPending(operation)
	if err != nil {
		return err
	}
	if p.failure != nil {
		p.failure(args...)
	}
	return nil
}

// Push invokes every listener registered for operation.
func (b *Bridge) Push(operation string, args ...interface{}) int {
	b.mu.Lock()
	var handlers []native.Callback
	for _, l := range b.listeners {
		if l.Operation == operation {
			handlers = append(handlers, l.handler)
		}
	}
	b.mu.Unlock()
	for _, handler := range handlers {
		handler(args...)
	}
	return len(handlers)
}
