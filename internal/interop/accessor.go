//go:build js
// +build js

package interop

import (
	"syscall/js"
)

// Getter produces a property value on every read.
type Getter = func() interface{}

// Setter receives an assigned value. A returned error is thrown to the assigning code.
type Setter = func(value js.Value) error

// DefineAccessor defines obj[name] as an accessor property. Like a plain
// Object.defineProperty call it is neither enumerable nor configurable. A nil setter
// makes the property read-only; assignments are then ignored outside strict mode.
func DefineAccessor(obj js.Value, name string, get Getter, set Setter) {
	descriptor := map[string]interface{}{
		"get": NewFunc("get "+name, func(js.Value, []js.Value) (interface{}, error) {
			return get(), nil
		}),
	}
	if set != nil {
		descriptor["set"] = NewFunc("set "+name, func(_ js.Value, args []js.Value) (interface{}, error) {
			value := js.Undefined()
			if len(args) > 0 {
				value = args[0]
			}
			return nil, set(value)
		})
	}
	jsObject.Call("defineProperty", obj, name, descriptor)
}
