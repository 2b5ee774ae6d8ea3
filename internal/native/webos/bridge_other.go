//go:build !(js && wasm)
// +build !js !wasm

package webos

import "github.com/hack-pad/palmshim/internal/native"

// Bridge is only available inside a device's web runtime.
type Bridge struct {
	native.Bridge
}

func New() (*Bridge, error) {
	return nil, native.ErrNoNativeBridge
}
