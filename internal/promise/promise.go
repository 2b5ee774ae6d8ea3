//go:build js
// +build js

// Package promise bridges JS promises and Go.
package promise

import (
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/interop"
	"github.com/hack-pad/palmshim/internal/jsfunc"
)

type Resolver func(interface{})

var jsPromise = js.Global().Get("Promise")

type JS struct {
	value js.Value
}

// New creates a pending promise and its settle functions.
func New() (resolve, reject Resolver, promise JS) {
	resolvers := make(chan Resolver, 2)
	promise = JS{
		value: jsPromise.New(jsfunc.SingleUse(func(this js.Value, args []js.Value) interface{} {
			resolve, reject := args[0], args[1]
			resolvers <- func(result interface{}) { resolve.Invoke(interop.ToJS(result)) }
			resolvers <- func(result interface{}) { reject.Invoke(interop.ToJS(result)) }
			return nil
		})),
	}
	resolve, reject = <-resolvers, <-resolvers
	return
}

// Go runs fn on its own goroutine and settles the returned promise with its result.
// Errors reject with a coded JS Error.
func Go(fn func() (interface{}, error)) JS {
	resolve, reject, prom := New()
	go func() {
		value, err := fn()
		if err != nil {
			reject(interop.JSError(err))
			return
		}
		resolve(value)
	}()
	return prom
}

func (p JS) JSValue() js.Value {
	return p.value
}
