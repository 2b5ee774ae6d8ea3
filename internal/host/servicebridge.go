package host

import (
	"context"
	"sync"
	"time"

	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

var ErrUnknownInstance = errors.New("unknown service bridge instance")

type serviceBridgeExtension struct {
	ctx       context.Context
	mux       *ServiceMux
	timeout   time.Duration
	instances *xsync.Map[common.ChannelID, *instance]
}

// instance is the host side of one service bridge channel. Canceling it aborts every
// call in flight; later calls run under a fresh context.
type instance struct {
	id     common.ChannelID
	parent context.Context

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func newInstance(parent context.Context, id common.ChannelID) *instance {
	inst := &instance{id: id, parent: parent}
	inst.ctx, inst.cancel = context.WithCancel(parent)
	return inst
}

func (i *instance) context() context.Context {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ctx
}

func (i *instance) cancelCalls() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancel()
	i.ctx, i.cancel = context.WithCancel(i.parent)
}

func (i *instance) release() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancel()
}

func newServiceBridgeExtension(ctx context.Context, mux *ServiceMux, timeout time.Duration) *serviceBridgeExtension {
	return &serviceBridgeExtension{
		ctx:       ctx,
		mux:       mux,
		timeout:   timeout,
		instances: xsync.NewMap[common.ChannelID, *instance](),
	}
}

func channelID(args []interface{}) (common.ChannelID, bool) {
	switch v := native.Arg(args, 0).(type) {
	case float64:
		return common.ChannelIDFromFloat(v)
	case int:
		return common.ChannelIDFromFloat(float64(v))
	default:
		return 0, false
	}
}

func (s *serviceBridgeExtension) exec(req request) {
	id, ok := channelID(req.args)
	if !ok {
		log.Warnf("host: %s with invalid instance id %v", req.operation, native.Arg(req.args, 0))
		req.fail(errorReply(errors.Wrapf(ErrUnknownInstance, "%v", native.Arg(req.args, 0))))
		return
	}
	switch req.operation {
	case native.OpCreateInstance:
		if old, loaded := s.instances.LoadAndStore(id, newInstance(s.ctx, id)); loaded {
			log.Warnf("host: service bridge %s created twice", id)
			old.release()
		}
		req.reply()
	case native.OpCall:
		s.call(id, req)
	case native.OpCancel:
		if inst, ok := s.instances.Load(id); ok {
			inst.cancelCalls()
		}
	case native.OpReleaseInstance:
		if inst, ok := s.instances.LoadAndDelete(id); ok {
			inst.release()
		}
	default:
		log.Warnf("host: unknown service bridge operation %q", req.operation)
		req.fail(errorReply(errors.Errorf("unknown operation %q", req.operation)))
	}
}

func (s *serviceBridgeExtension) call(id common.ChannelID, req request) {
	inst, ok := s.instances.Load(id)
	if !ok {
		req.fail(errorReply(errors.Wrap(ErrUnknownInstance, id.String())))
		return
	}
	method, _ := native.ArgString(req.args, 1)
	payload, _ := native.ArgString(req.args, 2)

	ctx := inst.context()
	go func() {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		req.reply(s.mux.Serve(ctx, method, payload))
	}()
}

func (s *serviceBridgeExtension) execSync(operation string, args []interface{}) (string, error) {
	return "", errors.Errorf("service bridge operation %q has no synchronous form", operation)
}

// Instances is the number of registered service bridge instances.
func (h *Host) Instances() int {
	return h.bridge.instances.Size()
}
