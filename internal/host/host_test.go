package host

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/hack-pad/palmshim/internal/resourcefs"
	"github.com/hack-pad/palmshim/internal/servicebridge"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppDir  = "/usr/palm/applications/com.example.hello"
	testAppInfo = `{
		"id": "com.example.hello",
		"title": "Hello",
		"version": "1.2.3",
		"main": "index.html",
		"icon": "icon.png"
	}`
)

var testNow = time.Date(2013, time.June, 1, 12, 30, 15, 0, time.UTC)

func newTestHost(t *testing.T, files map[string]string, configure func(*config.Config)) (*Host, hackpadfs.FS) {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)
	files[testAppDir+"/appinfo.json"] = testAppInfo
	for path, contents := range files {
		require.NoError(t, resourcefs.WriteFile(fs, path, []byte(contents)))
	}

	cfg := config.Defaults()
	cfg.App.InfoPath = testAppDir + "/appinfo.json"
	cfg.Resources.Root = testAppDir
	if configure != nil {
		configure(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h, err := New(ctx, Options{
		Config: cfg,
		FS:     fs,
		Now:    func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return h, fs
}

func flush(t *testing.T, h *Host) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, h.Flush(ctx))
}

func TestNewRequiresFS(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, func(cfg *config.Config) {
		cfg.Properties.Locale = "fr"
		cfg.Properties.ModelName = "Pre3"
		cfg.Properties.PlatformVersion = "2.2.4"
		cfg.App.ActivityID = 5
	})
	store := palmsystem.NewStore(h)
	store.Initialize()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.WaitInitialized(ctx))

	props := store.Snapshot()
	assert.Equal(t, "fr", props.Locale)
	assert.Equal(t, "com.example.hello 1000", props.Identifier)
	assert.Equal(t, "1.2.3", props.Version)
	assert.Equal(t, "{}", props.LaunchParams)
	assert.True(t, props.IsActivated)
	device, err := props.Device()
	require.NoError(t, err)
	assert.Equal(t, palmsystem.Device{ModelName: "Pre3", PlatformVersion: "2.2.4"}, device)

	id, err := store.ActivityID()
	require.NoError(t, err)
	assert.Equal(t, 5, id)
}

func TestSetPropertyPushesBack(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	system := palmsystem.New(h)
	system.Initialize()
	flush(t, h)

	require.NoError(t, system.Set(palmsystem.WindowOrientation, "landscape"))
	flush(t, h)
	assert.Equal(t, "landscape", system.WindowOrientation())

	system.SetHasAlphaHole(true)
	flush(t, h)
	assert.True(t, system.HasAlphaHole())

	system.SetWindowOrientationCommand("left")
	flush(t, h)
	assert.Equal(t, "left", system.WindowOrientation())

	system.Deactivate()
	flush(t, h)
	assert.False(t, system.IsActivated())

	h.Relaunch(`{"target":"inbox"}`)
	flush(t, h)
	assert.Equal(t, `{"target":"inbox"}`, system.LaunchParams())
}

func TestGetResource(t *testing.T) {
	h, fs := newTestHost(t, map[string]string{
		testAppDir + "/resources/strings.json": `{"hello":"bonjour"}`,
		"/media/internal/notes.txt":            "remember the milk",
	}, nil)
	system := palmsystem.New(h)

	value, err := system.GetResource("resources/strings.json", palmsystem.ResourceKindJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"hello": "bonjour"}, value)

	value, err = system.GetResource("file:///media/internal/notes.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "remember the milk", value)

	value, err = system.GetResource("missing.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	result, err := h.ExecSync(native.PalmSystem, native.OpGetResource, "resources/strings.json")
	require.NoError(t, err)
	assert.Equal(t, "", result, "wrong argument count")
	result, err = h.ExecSync(native.PalmSystem, native.OpGetResource, float64(1), "")
	require.NoError(t, err)
	assert.Equal(t, "", result, "non-string path")

	require.NoError(t, resourcefs.WriteFile(fs, "/media/internal/notes.txt", []byte("changed")))
	value, err = system.GetResource("/media/internal/notes.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "remember the milk", value, "served from cache")

	require.NoError(t, h.WriteResource("file:///media/internal/notes.txt", []byte("rewritten")))
	value, err = system.GetResource("/media/internal/notes.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", value)
}

func TestGetResourceRestricted(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{
		"/media/internal/notes.txt": "shared",
		"/etc/passwd":               "secret",
	}, func(cfg *config.Config) {
		cfg.Resources.Restrict = true
	})

	result, err := h.ExecSync(native.PalmSystem, native.OpGetResource, "/media/internal/notes.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "shared", result)

	result, err = h.ExecSync(native.PalmSystem, native.OpGetResource, "/etc/passwd", "")
	require.NoError(t, err)
	assert.Equal(t, "", result)
}

func TestMarkFirstUseDone(t *testing.T) {
	h, fs := newTestHost(t, map[string]string{}, nil)
	system := palmsystem.New(h)

	assert.False(t, resourcefs.Exists(fs, "/var/luna/preferences/ran-first-use"))
	system.MarkFirstUseDone()
	assert.True(t, resourcefs.Exists(fs, "/var/luna/preferences/ran-first-use"))
}

func TestBanners(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	system := palmsystem.New(h)

	first, err := system.AddBannerMessage(palmsystem.Banner{Message: "hello", Duration: 3})
	require.NoError(t, err)
	second, err := system.AddBannerMessage(palmsystem.Banner{Message: "world", DoNotSuppress: true})
	require.NoError(t, err)
	assert.Equal(t, "1", first)
	assert.Equal(t, "2", second)

	banners := h.Banners()
	require.Len(t, banners, 2)
	assert.Equal(t, "hello", banners[0].Message)
	assert.Equal(t, 3, banners[0].Duration)
	assert.True(t, banners[1].DoNotSuppress)

	system.RemoveBannerMessage(first)
	assert.Len(t, h.Banners(), 1)
	system.ClearBannerMessages()
	assert.Empty(t, h.Banners())
}

func TestWindowAndRecordedCommands(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	system := palmsystem.New(h)

	assert.True(t, h.Window().Visible)
	system.Hide()
	system.StageReady()
	system.KeepAlive(true)
	system.EnableFullScreenMode(true)
	assert.Equal(t, WindowState{Visible: false, Stage: "ready", KeepAlive: true, FullScreen: true}, h.Window())

	system.Paste()
	system.Paste()
	_, err := system.Exec("simulateMouseClick", float64(1), float64(2), true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"paste": 2, "simulateMouseClick": 1}, h.Commands())

	identifier, err := system.GetIdentifierForFrame("frame", "index.html")
	require.NoError(t, err)
	assert.Equal(t, "com.example.hello 1000", identifier)
}

func TestUnknownInterface(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)

	_, err := h.ExecSync("Nope", "op")
	assert.True(t, errors.Is(err, native.ErrUnknownInterface))

	failed := make(chan interface{}, 1)
	h.Exec(nil, func(args ...interface{}) {
		failed <- native.Arg(args, 0)
	}, "Nope", "op")
	select {
	case reply := <-failed:
		assert.Contains(t, reply, `"returnValue":false`)
	case <-time.After(time.Second):
		t.Fatal("no failure reply")
	}
}

func waitReply(t *testing.T, replies <-chan interface{}) map[string]interface{} {
	t.Helper()
	select {
	case reply := <-replies:
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(reply.(string)), &decoded))
		return decoded
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a service reply")
		return nil
	}
}

func TestServiceBridgeRoundTrip(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	manager := servicebridge.NewManager(h)

	replies := make(chan interface{}, 4)
	channel := manager.NewChannel()
	channel.SetResultHandler(func(reply interface{}) {
		replies <- reply
	})
	flush(t, h)
	assert.Equal(t, 1, h.Instances())

	channel.Call(URIGetSystemTime, `{}`)
	reply := waitReply(t, replies)
	assert.Equal(t, true, reply["returnValue"])
	assert.Equal(t, float64(testNow.Unix()), reply["utc"])
	assert.Equal(t, "Etc/UTC", reply["timezone"])

	channel.Call(URIGetPreferences, `{"keys":["timeFormat","missing"]}`)
	reply = waitReply(t, replies)
	assert.Equal(t, map[string]interface{}{"returnValue": true, "timeFormat": "HH12"}, reply)

	channel.Call("luna://com.example.nothing/here", `{}`)
	reply = waitReply(t, replies)
	assert.Equal(t, false, reply["returnValue"])
	assert.Equal(t, float64(-1), reply["errorCode"])

	flush(t, h)
	assert.Equal(t, servicebridge.StateIdle, channel.State())

	channel.Destroy()
	assert.Zero(t, h.Instances())

	channel.Call(URIGetSystemTime, `{}`)
	reply = waitReply(t, replies)
	assert.Equal(t, false, reply["returnValue"], "calls after destroy are rejected by the host")
}

func TestServiceBridgeCancel(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	started := make(chan struct{})
	h.Services().Handle("luna://com.example.slow/wait", func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	manager := servicebridge.NewManager(h)
	replies := make(chan interface{}, 1)
	channel := manager.NewChannel()
	channel.SetResultHandler(func(reply interface{}) {
		replies <- reply
	})
	channel.Call("luna://com.example.slow/wait", `{}`)
	<-started
	channel.Cancel()

	reply := waitReply(t, replies)
	assert.Equal(t, false, reply["returnValue"])
	assert.Equal(t, context.Canceled.Error(), reply["errorText"])

	channel.Call(URIGetSystemTime, `{}`)
	reply = waitReply(t, replies)
	assert.Equal(t, true, reply["returnValue"], "instance usable after cancel")
}

func TestServiceBridgeCancelBeforeStart(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	h.Services().Handle("luna://com.example.slow/wait", func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	manager := servicebridge.NewManager(h)
	for i := 0; i < 20; i++ {
		replies := make(chan interface{}, 1)
		channel := manager.NewChannel()
		channel.SetResultHandler(func(reply interface{}) {
			replies <- reply
		})
		channel.Call("luna://com.example.slow/wait", `{}`)
		channel.Cancel()

		reply := waitReply(t, replies)
		assert.Equal(t, false, reply["returnValue"])
		assert.Equal(t, context.Canceled.Error(), reply["errorText"])
		channel.Destroy()
	}
}

func TestServiceBridgeInvalidID(t *testing.T) {
	h, _ := newTestHost(t, map[string]string{}, nil)
	failed := make(chan interface{}, 1)
	h.Exec(nil, func(args ...interface{}) {
		failed <- native.Arg(args, 0)
	}, native.PalmServiceBridge, native.OpCall, float64(42), URIGetSystemTime, `{}`)
	reply := waitReply(t, failed)
	assert.Equal(t, false, reply["returnValue"])

	h.Exec(nil, func(args ...interface{}) {
		failed <- native.Arg(args, 0)
	}, native.PalmServiceBridge, native.OpCreateInstance, "not a number")
	reply = waitReply(t, failed)
	assert.Equal(t, false, reply["returnValue"])

	_, err := h.ExecSync(native.PalmServiceBridge, native.OpCall)
	assert.Error(t, err)
}
