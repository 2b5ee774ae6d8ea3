//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/global"
	"github.com/hack-pad/palmshim/internal/host"
	"github.com/hack-pad/palmshim/internal/interop"
	"github.com/hack-pad/palmshim/internal/jsfunc"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/resourcefs"
	"github.com/pkg/errors"
)

const (
	configKey   = "config"
	databaseKey = "resourceDatabase"
)

// startEmulator serves the bridge from an in-memory copy of the IndexedDB resource
// store. Synchronous PalmSystem calls cannot wait on IndexedDB from inside a JS
// callback, so reads are answered from memory and writes are mirrored back.
func startEmulator(ctx context.Context) (*host.Host, error) {
	cfg, err := pageConfig()
	if err != nil {
		return nil, err
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	persisted, err := resourcefs.New(ctx, resourcefs.Options{
		Name:              databaseName(),
		RelaxedDurability: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open resource database")
	}
	memFS, err := mem.NewFS()
	if err != nil {
		return nil, err
	}
	if _, err := resourcefs.Copy(ctx, memFS, persisted); err != nil {
		log.Warn("shim: loading persisted resources: ", err)
	}

	h, err := host.New(ctx, host.Options{Config: cfg, FS: memFS})
	if err != nil {
		return nil, err
	}

	interop.SetFunc(global.Namespace(), "writeResource", func(_ js.Value, args []js.Value) (interface{}, error) {
		if len(args) < 2 {
			return nil, errors.New("writeResource(path, contents) needs two arguments")
		}
		p, contents := args[0].String(), []byte(args[1].String())
		if err := h.WriteResource(p, contents); err != nil {
			return nil, err
		}
		go func() {
			if err := resourcefs.WriteFile(persisted, h.ResourcePath(p), contents); err != nil {
				log.Warn("shim: persisting ", p, ": ", err)
			}
		}()
		return nil, nil
	})
	global.Set("relaunch", jsfunc.NonBlocking(func(_ js.Value, args []js.Value) interface{} {
		params := "{}"
		if len(args) > 0 {
			params = js.Global().Get("JSON").Call("stringify", args[0]).String()
		}
		h.Relaunch(params)
		return nil
	}))
	return h, nil
}

func databaseName() string {
	name := global.Get(databaseKey)
	if name.Type() != js.TypeString {
		return ""
	}
	return name.String()
}

// pageConfig reads palmShim.config, which may be an object or YAML/JSON text.
func pageConfig() (*config.Config, error) {
	cfg := config.Defaults()
	raw := global.Get(configKey)
	switch raw.Type() {
	case js.TypeUndefined, js.TypeNull:
	case js.TypeString:
		if err := config.Parse([]byte(raw.String()), cfg); err != nil {
			return nil, err
		}
	default:
		text := js.Global().Get("JSON").Call("stringify", raw).String()
		if err := config.Parse([]byte(text), cfg); err != nil {
			return nil, err
		}
	}
	return cfg, config.Validate(cfg)
}
