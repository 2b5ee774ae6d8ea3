//go:build !js
// +build !js

// Command palmhost runs an application's PalmSystem and PalmServiceBridge calls against
// the emulated host from a terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/host"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/hack-pad/palmshim/internal/resourcefs"
	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "", "YAML host configuration")
	appInfo := flag.String("app", "", "Path to the application's appinfo.json")
	resource := flag.String("resource", "", "Read a resource through PalmSystem.getResource")
	resourceJSON := flag.Bool("json", false, "Decode -resource as JSON")
	call := flag.String("call", "", "Service URI to call through PalmServiceBridge")
	payload := flag.String("payload", "{}", "JSON payload for -call")
	set := flag.String("set", "", "Set a mutable property, as name=value")
	flag.Parse()
	log.SetOutput(os.Stderr)

	if err := run(options{
		configPath:   *configPath,
		appInfo:      *appInfo,
		resource:     *resource,
		resourceJSON: *resourceJSON,
		call:         *call,
		payload:      *payload,
		set:          *set,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "palmhost:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	appInfo      string
	resource     string
	resourceJSON bool
	call         string
	payload      string
	set          string
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log.SetLevel(log.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fs, err := resourcefs.New(ctx, resourcefs.Options{})
	if err != nil {
		return err
	}
	h, err := host.New(ctx, host.Options{Config: cfg, FS: fs})
	if err != nil {
		return err
	}
	sys := palmsystem.New(h)
	sys.Initialize()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	if err := sys.WaitInitialized(waitCtx); err != nil {
		return errors.Wrap(err, "initialize properties")
	}

	switch {
	case opts.resource != "":
		kind := ""
		if opts.resourceJSON {
			kind = palmsystem.ResourceKindJSON
		}
		value, err := sys.GetResource(opts.resource, kind)
		if err != nil {
			return err
		}
		return printJSON(value)
	case opts.call != "":
		reply, err := callService(ctx, h, opts.call, opts.payload, cfg.Services.CallTimeout)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	case opts.set != "":
		name, value, ok := strings.Cut(opts.set, "=")
		if !ok {
			return errors.Errorf("-set %q: expected name=value", opts.set)
		}
		if err := setProperty(ctx, h, sys, palmsystem.Name(name), value); err != nil {
			return err
		}
	}
	return printJSON(sys.Snapshot().Map())
}

func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnvOverrides(cfg)
	if opts.appInfo != "" {
		cfg.App.InfoPath = opts.appInfo
	}
	infoPath, err := filepath.Abs(cfg.App.InfoPath)
	if err != nil {
		return nil, err
	}
	cfg.App.InfoPath = filepath.ToSlash(infoPath)
	if cfg.Resources.Root == "" {
		cfg.Resources.Root = filepath.ToSlash(filepath.Dir(infoPath))
	}
	return cfg, config.Validate(cfg)
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}
