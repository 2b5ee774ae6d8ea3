//go:build js
// +build js

// Package jsfunc wraps Go functions handed to JS as callbacks.
package jsfunc

import "syscall/js"

type Func = func(this js.Value, args []js.Value) interface{}

// SingleUse releases the function after its first invocation.
func SingleUse(fn Func) js.Func {
	var wrapperFn js.Func
	wrapperFn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		wrapperFn.Release()
		return fn(this, args)
	})
	return wrapperFn
}
