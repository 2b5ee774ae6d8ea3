//go:build js && wasm
// +build js,wasm

// Command shim installs window.PalmSystem and window.PalmServiceBridge in a page. On a
// device the calls go to the runtime's _webOS bridge; in a plain browser they are
// answered by an emulated host.
package main

import (
	"context"

	"github.com/hack-pad/palmshim/internal/global"
	"github.com/hack-pad/palmshim/internal/js/palm"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/native/webos"
	"github.com/pkg/errors"
)

func main() {
	ctx := context.Background()
	bridge, mode, err := openBridge(ctx)
	if err != nil {
		log.Error("shim: ", err)
		panic(err)
	}
	palm.Init(ctx, bridge)
	global.Set("mode", mode)
	log.Debug("shim: ready in ", mode, " mode")
	select {}
}

func openBridge(ctx context.Context) (native.Bridge, string, error) {
	bridge, err := webos.New()
	switch {
	case err == nil:
		return bridge, "device", nil
	case errors.Is(err, native.ErrNoNativeBridge):
		emulated, err := startEmulator(ctx)
		return emulated, "emulator", err
	default:
		return nil, "", err
	}
}
