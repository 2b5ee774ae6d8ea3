// Package native describes the execution bridge between web content and the platform.
//
// Every PalmSystem and PalmServiceBridge operation is marshaled into one of four
// dispatch forms: an asynchronous call with success and failure continuations, a
// long-lived registration whose continuation fires repeatedly, a synchronous call that
// blocks for its result, and a fire-and-forget command.
package native

import "github.com/pkg/errors"

// Interface names the native peers understand.
const (
	PalmSystem        = "PalmSystem"
	PalmServiceBridge = "PalmServiceBridge"
)

// PalmServiceBridge operations.
const (
	OpCreateInstance  = "createInstance"
	OpCall            = "call"
	OpCancel          = "cancel"
	OpReleaseInstance = "releaseInstance"
)

// PalmSystem operations with dedicated shim logic. The remaining one-way commands are
// catalogued in package palmsystem.
const (
	OpInitializeProperties          = "initializeProperties"
	OpRegisterPropertyChangeHandler = "registerPropertyChangeHandler"
	OpSetProperty                   = "setProperty"
	OpGetActivityID                 = "getActivityId"
	OpGetResource                   = "getResource"
)

var (
	ErrNoNativeBridge   = errors.New("native bridge is not available")
	ErrUnknownInterface = errors.New("unknown native interface")
)

// Callback receives the arguments of one native reply.
type Callback func(args ...interface{})

// Noop discards a reply.
func Noop(...interface{}) {}

type Bridge interface {
	// Exec dispatches an asynchronous operation. The native side is expected to invoke
	// exactly one of success or failure, once. If it never replies, neither fires.
	// Nil continuations discard the reply.
	Exec(success, failure Callback, iface, operation string, args ...interface{})
	// Listen registers handler for an operation the native side replies to any number
	// of times, such as property change notifications.
	Listen(handler Callback, iface, operation string, args ...interface{})
	// ExecSync blocks until the native side returns a result in-line.
	ExecSync(iface, operation string, args ...interface{}) (string, error)
	// ExecWithoutCallback dispatches a command and ignores any result.
	ExecWithoutCallback(iface, operation string, args ...interface{})
}
