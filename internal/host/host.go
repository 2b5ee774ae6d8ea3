// Package host is an in-process platform peer. It answers the same PalmSystem and
// PalmServiceBridge operations a device would, from local state, so the shims can run
// without one.
package host

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/resourcefs"
	"github.com/pkg/errors"
)

type request struct {
	operation string
	args      []interface{}
	success   native.Callback
	failure   native.Callback
}

func (r request) reply(args ...interface{}) {
	if r.success != nil {
		r.success(args...)
	}
}

func (r request) fail(args ...interface{}) {
	if r.failure != nil {
		r.failure(args...)
	}
}

type extension interface {
	exec(req request)
	execSync(operation string, args []interface{}) (string, error)
}

type Options struct {
	Config *config.Config
	// FS holds app descriptions, resources and platform marker files.
	FS hackpadfs.FS
	// Now defaults to time.Now.
	Now func() time.Time
}

type Host struct {
	loop       *Loop
	config     *config.Config
	app        AppInfo
	services   *ServiceMux
	palm       *palmSystemExtension
	bridge     *serviceBridgeExtension
	extensions map[string]extension
}

var _ native.Bridge = (*Host)(nil)

// New builds a host and starts its callback loop. The loop stops when ctx is canceled.
func New(ctx context.Context, opts Options) (*Host, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	if opts.FS == nil {
		return nil, errors.New("host: a filesystem is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	app, err := LoadAppInfo(opts.FS, cfg.App.InfoPath)
	if err != nil {
		log.Warn("host: ", err, "; continuing without an app description")
	}
	resources, err := NewResourceLoader(opts.FS, cfg.Resources, app.Privileged())
	if err != nil {
		return nil, err
	}

	services := NewServiceMux()
	RegisterSystemServices(services, cfg, now)

	h := &Host{
		loop:     NewLoop(),
		config:   cfg,
		app:      app,
		services: services,
		palm:     newPalmSystemExtension(ctx, cfg, app, opts.FS, resources),
		bridge:   newServiceBridgeExtension(ctx, services, cfg.Services.CallTimeout),
	}
	h.extensions = map[string]extension{
		native.PalmSystem:        h.palm,
		native.PalmServiceBridge: h.bridge,
	}
	h.loop.Start(ctx)
	log.Debugf("host: serving %q (%s)", app.ID, app.Title)
	return h, nil
}

func (h *Host) extension(iface string) (extension, error) {
	ext, ok := h.extensions[iface]
	if !ok {
		return nil, errors.Wrap(native.ErrUnknownInterface, iface)
	}
	return ext, nil
}

func (h *Host) Exec(success, failure native.Callback, iface, operation string, args ...interface{}) {
	req := request{
		operation: operation,
		args:      args,
		success:   h.loop.Wrap(success),
		failure:   h.loop.Wrap(failure),
	}
	ext, err := h.extension(iface)
	if err != nil {
		log.Warn("host: ", err)
		req.fail(errorReply(err))
		return
	}
	ext.exec(req)
}

func (h *Host) Listen(handler native.Callback, iface, operation string, args ...interface{}) {
	h.Exec(handler, nil, iface, operation, args...)
}

func (h *Host) ExecSync(iface, operation string, args ...interface{}) (string, error) {
	ext, err := h.extension(iface)
	if err != nil {
		return "", err
	}
	return ext.execSync(operation, args)
}

func (h *Host) ExecWithoutCallback(iface, operation string, args ...interface{}) {
	h.Exec(nil, nil, iface, operation, args...)
}

// Flush waits until every reply queued so far has been delivered.
func (h *Host) Flush(ctx context.Context) error {
	return h.loop.Flush(ctx)
}

func (h *Host) App() AppInfo {
	return h.app
}

func (h *Host) Config() *config.Config {
	return h.config
}

// Services exposes the service mux so callers can install additional methods.
func (h *Host) Services() *ServiceMux {
	return h.services
}

// Relaunch replaces the launch parameters and pushes them to listeners.
func (h *Host) Relaunch(params string) {
	h.palm.setProperty("launchParams", params)
}

// ResourcePath is the absolute path a resource reference resolves to.
func (h *Host) ResourcePath(p string) string {
	return h.palm.resources.Resolve(p)
}

// WriteResource replaces a resource file and drops its cached contents.
func (h *Host) WriteResource(p string, data []byte) error {
	resources := h.palm.resources
	if err := resourcefs.WriteFile(h.palm.fs, resources.Resolve(p), data); err != nil {
		return err
	}
	resources.Forget(p)
	return nil
}

func (h *Host) Banners() []Banner {
	return h.palm.bannerList()
}

func (h *Host) Window() WindowState {
	return h.palm.windowState()
}

// Commands counts the PalmSystem commands that were received but have no host behavior.
func (h *Host) Commands() map[string]int {
	return h.palm.recordedCommands()
}

func toJSON(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Error("host: encode: ", err)
		return "{}"
	}
	return string(buf)
}
