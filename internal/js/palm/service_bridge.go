//go:build js && wasm
// +build js,wasm

package palm

import (
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/global"
	"github.com/hack-pad/palmshim/internal/interop"
	"github.com/hack-pad/palmshim/internal/jserror"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/servicebridge"
)

const (
	serviceBridgeKey = "PalmServiceBridge"
	instanceIDKey    = "instanceId"
	callbackKey      = "onservicecallback"
)

// jsFunction.New() builds an empty function, the default onservicecallback.
var jsFunction = js.Global().Get("Function")

type serviceBridgeBinding struct {
	manager *servicebridge.Manager
	bridge  native.Bridge
}

func installServiceBridge(manager *servicebridge.Manager, bridge native.Bridge) {
	b := &serviceBridgeBinding{manager: manager, bridge: bridge}
	constructor := interop.NewFunc(serviceBridgeKey, b.construct)
	prototype := constructor.Get("prototype")
	interop.SetFunc(prototype, "version", func(js.Value, []js.Value) (interface{}, error) {
		return servicebridge.Version(), nil
	})
	interop.SetFunc(prototype, "call", b.call)
	interop.SetFunc(prototype, "cancel", b.cancel)
	interop.SetFunc(prototype, "destroy", b.destroy)
	global.SetWindow(serviceBridgeKey, constructor)
}

func (b *serviceBridgeBinding) construct(this js.Value, _ []js.Value) (interface{}, error) {
	channel := b.manager.NewChannel()
	this.Set(instanceIDKey, float64(channel.ID()))
	this.Set(callbackKey, jsFunction.New())
	channel.SetResultHandler(resultHandler(this))
	return nil, nil
}

// resultHandler looks up onservicecallback when the reply arrives, so reassigning it
// redirects replies already in flight.
func resultHandler(this js.Value) servicebridge.ResultHandler {
	return func(reply interface{}) {
		callback := this.Get(callbackKey)
		if callback.Type() != js.TypeFunction {
			return
		}
		callback.Call("call", this, interop.ToJS(reply))
	}
}

func (b *serviceBridgeBinding) channelID(this js.Value) (common.ChannelID, bool) {
	idValue := this.Get(instanceIDKey)
	if idValue.Type() != js.TypeNumber {
		return 0, false
	}
	return common.ChannelIDFromFloat(idValue.Float())
}

func (b *serviceBridgeBinding) call(this js.Value, args []js.Value) (interface{}, error) {
	method, payload := argString(args, 0), argString(args, 1)
	id, ok := b.channelID(this)
	if !ok {
		return nil, jserror.New("call on an object that is not a PalmServiceBridge", jserror.CodeInvalid)
	}
	if channel, ok := b.manager.Lookup(id); ok {
		channel.Call(method, payload)
		return nil, nil
	}
	log.Warnf("service bridge %s: call %q after destroy", id, method)
	deliver := func(args ...interface{}) {
		resultHandler(this)(native.Arg(args, 0))
	}
	b.bridge.Exec(deliver, deliver, native.PalmServiceBridge, native.OpCall, float64(id), method, payload)
	return nil, nil
}

func (b *serviceBridgeBinding) cancel(this js.Value, _ []js.Value) (interface{}, error) {
	if id, ok := b.channelID(this); ok {
		if channel, ok := b.manager.Lookup(id); ok {
			channel.Cancel()
			return nil, nil
		}
		b.bridge.Exec(nil, nil, native.PalmServiceBridge, native.OpCancel, float64(id))
	}
	return nil, nil
}

func (b *serviceBridgeBinding) destroy(this js.Value, _ []js.Value) (interface{}, error) {
	id, ok := b.channelID(this)
	if !ok {
		return nil, nil
	}
	if channel, ok := b.manager.Lookup(id); ok {
		channel.Destroy()
		return nil, nil
	}
	b.bridge.Exec(nil, nil, native.PalmServiceBridge, native.OpReleaseInstance, float64(id))
	return nil, nil
}
