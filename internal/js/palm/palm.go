//go:build js && wasm
// +build js,wasm

// Package palm installs window.PalmSystem and window.PalmServiceBridge.
package palm

import (
	"context"
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/global"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/hack-pad/palmshim/internal/promise"
	"github.com/hack-pad/palmshim/internal/servicebridge"
)

const readyKey = "palmSystemReady"

// Init binds both shims to bridge and starts property synchronization. The returned
// system is the one window.PalmSystem reads from.
func Init(ctx context.Context, bridge native.Bridge) *palmsystem.System {
	sys := palmsystem.New(bridge)
	installPalmSystem(sys)
	installServiceBridge(servicebridge.NewManager(bridge), bridge)
	sys.Initialize()

	ready := promise.Go(func() (interface{}, error) {
		if err := sys.WaitInitialized(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	global.SetWindow(readyKey, ready.JSValue())
	return sys
}

func argString(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}
