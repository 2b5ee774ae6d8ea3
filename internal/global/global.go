//go:build js
// +build js

// Package global owns the JS-visible names the shim installs: the window-level Palm
// objects and a private namespace for shim controls such as log level and readiness.
package global

import "syscall/js"

const namespaceKey = "palmShim"

var (
	window    js.Value
	namespace js.Value
)

func init() {
	window = js.Global()
	if !window.Get(namespaceKey).Truthy() {
		window.Set(namespaceKey, map[string]interface{}{})
	}
	namespace = window.Get(namespaceKey)
}

// SetDefault sets a shim control value unless the page already provided one.
func SetDefault(key string, value interface{}) {
	if namespace.Get(key).IsUndefined() {
		namespace.Set(key, value)
	}
}

func Set(key string, value interface{}) {
	namespace.Set(key, value)
}

func Get(key string) js.Value {
	return namespace.Get(key)
}

// Namespace returns the shim's private object so functions can be installed on it.
func Namespace() js.Value {
	return namespace
}

// Window returns the global object the Palm APIs are installed on.
func Window() js.Value {
	return window
}

// SetWindow installs a value directly on the global object, e.g. window.PalmSystem.
func SetWindow(key string, value interface{}) {
	window.Set(key, value)
}
