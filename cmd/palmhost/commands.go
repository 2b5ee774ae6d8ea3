//go:build !js
// +build !js

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hack-pad/palmshim/internal/host"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/hack-pad/palmshim/internal/servicebridge"
	"github.com/pkg/errors"
)

// callService makes one PalmServiceBridge call and waits for its reply.
func callService(ctx context.Context, h *host.Host, uri, payload string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	channel := servicebridge.NewManager(h).NewChannel()
	defer channel.Destroy()
	replies := make(chan interface{}, 1)
	channel.SetResultHandler(func(reply interface{}) {
		select {
		case replies <- reply:
		default:
		}
	})
	channel.Call(uri, payload)

	select {
	case reply := <-replies:
		return fmt.Sprint(reply), nil
	case <-ctx.Done():
		channel.Cancel()
		return "", errors.Wrapf(ctx.Err(), "call %s", uri)
	}
}

// setProperty writes a mutable property and waits for the host to push it back.
func setProperty(ctx context.Context, h *host.Host, sys *palmsystem.System, name palmsystem.Name, value string) error {
	pushed := make(chan struct{}, 1)
	cancelWatch := sys.Watch(func(changed palmsystem.Name, _ interface{}) {
		if changed == name {
			select {
			case pushed <- struct{}{}:
			default:
			}
		}
	})
	defer cancelWatch()

	if err := sys.Set(name, value); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.Flush(ctx); err != nil {
		return err
	}
	select {
	case <-pushed:
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "set %s", name)
	}
}
