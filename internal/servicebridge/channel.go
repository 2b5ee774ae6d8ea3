// Package servicebridge implements PalmServiceBridge: RPC channels from web content to
// native platform services, each registered with the native side under its own id.
package servicebridge

import (
	"fmt"
	"sync"

	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
)

const version = "1.1"

// Version is the capability string reported to callers for feature negotiation.
func Version() string {
	return version
}

// ResultHandler receives a native reply payload. Success and failure are not
// distinguished here; the native side encodes that inside the payload.
type ResultHandler func(reply interface{})

func discardResult(interface{}) {}

type State int

const (
	StateCreated State = iota
	StateCalling
	StateIdle
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateCalling:
		return "calling"
	case StateIdle:
		return "idle"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Channel is one PalmServiceBridge instance.
type Channel struct {
	id      common.ChannelID
	manager *Manager

	mu      sync.Mutex
	handler ResultHandler
	state   State
	pending int
}

func (c *Channel) ID() common.ChannelID {
	return c.id
}

// wireID is the id as the bridge carries it: a JS number.
func (c *Channel) wireID() float64 {
	return float64(c.id)
}

// SetResultHandler replaces the reply callback. The handler is looked up when a reply
// arrives, so replacing it redirects replies for calls already in flight. A nil
// handler discards replies.
func (c *Channel) SetResultHandler(fn ResultHandler) {
	if fn == nil {
		fn = discardResult
	}
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// Call dispatches method with its request payload. The reply arrives through the
// result handler. Calls made while another is outstanding are dispatched independently
// and every reply goes to the current handler.
func (c *Channel) Call(method, payload string) {
	c.mu.Lock()
	if c.state == StateDestroyed {
		log.Warnf("service bridge %s: call %q after destroy", c.id, method)
	} else {
		c.pending++
		c.state = StateCalling
	}
	c.mu.Unlock()

	log.Debugf("service bridge %s: call %s", c.id, method)
	c.manager.bridge.Exec(c.deliver, c.deliver, native.PalmServiceBridge, native.OpCall, c.wireID(), method, payload)
}

func (c *Channel) deliver(args ...interface{}) {
	c.mu.Lock()
	handler := c.handler
	if c.pending > 0 {
		c.pending--
	}
	if c.state == StateCalling && c.pending == 0 {
		c.state = StateIdle
	}
	c.mu.Unlock()

	handler(native.Arg(args, 0))
}

// Cancel asks the native side to abort the in-flight call. The result handler may or
// may not fire afterwards.
func (c *Channel) Cancel() {
	c.manager.bridge.Exec(nil, nil, native.PalmServiceBridge, native.OpCancel, c.wireID())
}

// Destroy unregisters the channel from the native side. It must be called exactly
// once; repeated calls are forwarded as-is.
func (c *Channel) Destroy() {
	c.mu.Lock()
	c.state = StateDestroyed
	c.mu.Unlock()

	c.manager.channels.Delete(c.id)
	c.manager.bridge.Exec(nil, nil, native.PalmServiceBridge, native.OpReleaseInstance, c.wireID())
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending is the number of calls dispatched whose reply has not arrived.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Channel) String() string {
	return fmt.Sprintf("Channel(%s, %s)", c.id, c.State())
}
