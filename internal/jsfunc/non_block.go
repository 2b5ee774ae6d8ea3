//go:build js
// +build js

package jsfunc

import "syscall/js"

// NonBlocking runs fn on its own goroutine so it may wait on other JS events.
func NonBlocking(fn Func) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		go fn(this, args)
		return nil
	})
}
