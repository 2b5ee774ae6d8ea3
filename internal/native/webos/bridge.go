//go:build js && wasm
// +build js,wasm

// Package webos dispatches native bridge calls to the _webOS object a device's web
// runtime injects into every page.
package webos

import (
	"fmt"
	"sync"

	"github.com/hack-pad/palmshim/internal/interop"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/safejs"
	"github.com/pkg/errors"
)

const globalName = "_webOS"

type Bridge struct {
	webOS  safejs.Value
	unused safejs.Func

	mu        sync.Mutex
	listeners []safejs.Func
}

var _ native.Bridge = (*Bridge)(nil)

// New finds the runtime's _webOS object. It returns native.ErrNoNativeBridge when the
// page is not running on a device.
func New() (*Bridge, error) {
	webOS, err := safejs.Global().Get(globalName)
	if err != nil {
		return nil, errors.Wrap(err, globalName)
	}
	if truthy, err := webOS.Truthy(); err != nil || !truthy {
		return nil, native.ErrNoNativeBridge
	}
	unused, err := safejs.FuncOf(func(safejs.Value, []safejs.Value) any { return nil })
	if err != nil {
		return nil, err
	}
	return &Bridge{
		webOS:  webOS,
		unused: unused,
	}, nil
}

// Exec hands the runtime a pair of continuations. Both are released once either fires.
func (b *Bridge) Exec(success, failure native.Callback, iface, operation string, args ...interface{}) {
	if success == nil && failure == nil {
		b.call("exec", b.unused, b.unused, iface, operation, jsArgs(args))
		return
	}

	var once sync.Once
	var onSuccess, onFailure safejs.Func
	release := func() {
		once.Do(func() {
			onSuccess.Release()
			onFailure.Release()
		})
	}
	onSuccess = b.continuation(fmt.Sprint(iface, ".", operation, " success"), success, release)
	onFailure = b.continuation(fmt.Sprint(iface, ".", operation, " failure"), failure, release)
	b.call("exec", onSuccess, onFailure, iface, operation, jsArgs(args))
}

func (b *Bridge) continuation(name string, fn native.Callback, release func()) safejs.Func {
	cont, err := safejs.FuncOf(func(_ safejs.Value, args []safejs.Value) any {
		defer release()
		log.Debug("reply: ", name)
		if fn != nil {
			fn(goArgs(args)...)
		}
		return nil
	})
	if err != nil {
		log.Error("webos: ", name, ": ", err)
	}
	return cont
}

// Listen keeps handler alive for the lifetime of the page.
func (b *Bridge) Listen(handler native.Callback, iface, operation string, args ...interface{}) {
	listener, err := safejs.FuncOf(func(_ safejs.Value, args []safejs.Value) any {
		handler(goArgs(args)...)
		return nil
	})
	if err != nil {
		log.Error("webos: listen ", iface, ".", operation, ": ", err)
		return
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, listener)
	b.mu.Unlock()
	b.call("exec", listener, b.unused, iface, operation, jsArgs(args))
}

func (b *Bridge) ExecSync(iface, operation string, args ...interface{}) (string, error) {
	callArgs := []any{iface, operation}
	if args != nil {
		callArgs = append(callArgs, jsArgs(args))
	}
	result, err := b.webOS.Call("execSync", callArgs...)
	if err != nil {
		return "", errors.Wrapf(err, "%s.%s", iface, operation)
	}
	return resultString(result)
}

func (b *Bridge) ExecWithoutCallback(iface, operation string, args ...interface{}) {
	callArgs := []any{iface, operation}
	if args != nil {
		callArgs = append(callArgs, jsArgs(args))
	}
	if _, err := b.webOS.Call("execWithoutCallback", callArgs...); err != nil {
		log.Error("webos: ", iface, ".", operation, ": ", err)
	}
}

func (b *Bridge) call(method string, success, failure safejs.Func, iface, operation string, args []any) {
	if _, err := b.webOS.Call(method, success, failure, iface, operation, args); err != nil {
		log.Error("webos: ", iface, ".", operation, ": ", err)
	}
}

func jsArgs(args []interface{}) []any {
	values := make([]any, 0, len(args))
	for _, arg := range args {
		values = append(values, safejs.Safe(interop.ToJS(arg)))
	}
	return values
}

func goArgs(args []safejs.Value) []interface{} {
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		values = append(values, interop.ToGo(safejs.Unsafe(arg)))
	}
	return values
}

// resultString follows the runtime's habit of returning strings, and stringifies
// anything else the way JS would concatenate it.
func resultString(result safejs.Value) (string, error) {
	switch result.Type() {
	case safejs.TypeUndefined, safejs.TypeNull:
		return "", nil
	case safejs.TypeString:
		return result.String()
	}
	value := interop.ToGo(safejs.Unsafe(result))
	switch value := value.(type) {
	case float64, bool:
		return fmt.Sprint(value), nil
	default:
		str, err := safejs.Global().Get("String")
		if err != nil {
			return "", err
		}
		converted, err := str.Invoke(result)
		if err != nil {
			return "", err
		}
		return converted.String()
	}
}
