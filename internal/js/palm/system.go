//go:build js && wasm
// +build js,wasm

package palm

import (
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/global"
	"github.com/hack-pad/palmshim/internal/interop"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/palmsystem"
)

const (
	palmSystemKey      = "PalmSystem"
	palmGetResourceKey = "palmGetResource"
)

func installPalmSystem(sys *palmsystem.System) {
	obj := js.Global().Get("Object").New()

	for _, name := range palmsystem.Names() {
		name := name
		var set interop.Setter
		if palmsystem.Mutable(name) {
			set = func(value js.Value) error {
				return sys.Set(name, interop.ToGo(value))
			}
		}
		interop.DefineAccessor(obj, string(name), func() interface{} {
			value, err := sys.Get(name)
			if err != nil {
				log.Warn("PalmSystem.", name, ": ", err)
				return nil
			}
			return value
		}, set)
	}

	for _, cmd := range palmsystem.Commands {
		name := cmd.Name
		interop.SetFunc(obj, name, func(_ js.Value, args []js.Value) (interface{}, error) {
			return sys.Exec(name, interop.ToGoArgs(args)...)
		})
	}

	interop.SetFunc(obj, "getIdentifier", func(js.Value, []js.Value) (interface{}, error) {
		return sys.GetIdentifier(), nil
	})
	getResource := func(_ js.Value, args []js.Value) (interface{}, error) {
		return sys.GetResource(argString(args, 0), argString(args, 1))
	}
	interop.SetFunc(obj, "getResource", getResource)
	interop.SetFunc(global.Window(), palmGetResourceKey, getResource)

	global.SetWindow(palmSystemKey, obj)
}
