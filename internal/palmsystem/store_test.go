package palmsystem

import (
	"context"
	"testing"
	"time"

	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/native/nativetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *nativetest.Bridge) {
	t.Helper()
	bridge := nativetest.New()
	store := NewStore(bridge)
	store.Initialize()
	return store, bridge
}

func TestInitializeDispatches(t *testing.T) {
	store, bridge := newStore(t)
	store.Initialize()

	assert.Equal(t, []nativetest.Dispatch{
		{Kind: nativetest.KindExec, Interface: native.PalmSystem, Operation: native.OpInitializeProperties},
		{Kind: nativetest.KindListen, Interface: native.PalmSystem, Operation: native.OpRegisterPropertyChangeHandler},
	}, bridge.Dispatches())
}

func TestDefaultsWithoutBundle(t *testing.T) {
	store, _ := newStore(t)

	assert.False(t, store.Initialized())
	assert.Equal(t, "en", store.Locale())
	assert.True(t, store.IsActivated())
	value, err := store.Get(Locale)
	require.NoError(t, err)
	assert.Equal(t, "en", value)
	value, err = store.Get(IsActivated)
	require.NoError(t, err)
	assert.Equal(t, true, value)
}

func TestBundle(t *testing.T) {
	for _, tc := range []struct {
		description string
		bundle      interface{}
		locale      string
		activated   bool
	}{
		{
			description: "object",
			bundle:      map[string]interface{}{"locale": "fr", "isActivated": false},
			locale:      "fr",
			activated:   false,
		},
		{
			description: "json text",
			bundle:      `{"locale":"fr","isActivated":false}`,
			locale:      "fr",
			activated:   false,
		},
		{
			description: "absent",
			bundle:      nil,
			locale:      "en",
			activated:   true,
		},
		{
			description: "malformed json",
			bundle:      `{"locale":`,
			locale:      "en",
			activated:   true,
		},
		{
			description: "missing keys keep defaults",
			bundle:      map[string]interface{}{"timeZone": "Europe/Paris", "bogus": 1},
			locale:      "en",
			activated:   true,
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			store, bridge := newStore(t)
			require.NoError(t, bridge.Reply(native.OpInitializeProperties, tc.bundle))

			assert.True(t, store.Initialized())
			assert.Equal(t, tc.locale, store.Locale())
			assert.Equal(t, tc.activated, store.IsActivated())
		})
	}
}

func TestBundleFailureStillInitializes(t *testing.T) {
	store, bridge := newStore(t)
	require.NoError(t, bridge.Fail(native.OpInitializeProperties, "unavailable"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, store.WaitInitialized(ctx))
	assert.Equal(t, DefaultProperties(), store.Snapshot())
}

func TestWaitInitialized(t *testing.T) {
	store, bridge := newStore(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, store.WaitInitialized(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() {
		done <- store.WaitInitialized(context.Background())
	}()
	require.NoError(t, bridge.Reply(native.OpInitializeProperties, map[string]interface{}{"locale": "de"}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitInitialized did not return after the bundle reply")
	}
	assert.Equal(t, "de", store.Locale())
}

func TestPushUnknownNameIgnored(t *testing.T) {
	store, bridge := newStore(t)
	before := store.Snapshot()

	assert.Equal(t, 1, bridge.Push(native.OpRegisterPropertyChangeHandler, "bogusKey", 1))
	assert.Equal(t, before, store.Snapshot())

	bridge.Push(native.OpRegisterPropertyChangeHandler, "locale", "de")
	assert.Equal(t, "de", store.Locale())
}

func TestPushCoercion(t *testing.T) {
	for _, tc := range []struct {
		name   Name
		value  interface{}
		expect interface{}
		ok     bool
	}{
		{name: HasAlphaHole, value: true, expect: true, ok: true},
		{name: HasAlphaHole, value: "true", expect: true, ok: true},
		{name: HasAlphaHole, value: float64(1), expect: true, ok: true},
		{name: IsActivated, value: "", expect: false, ok: true},
		{name: IsActivated, value: "maybe", expect: true, ok: false},
		{name: WindowOrientation, value: "up", expect: "up", ok: true},
		{name: LaunchParams, value: map[string]interface{}{"target": "x"}, expect: `{"target":"x"}`, ok: true},
		{name: Locale, value: nil, expect: "en", ok: false},
		{name: ActivityID, value: float64(42), expect: 42, ok: true},
	} {
		t.Run(string(tc.name), func(t *testing.T) {
			store, _ := newStore(t)
			assert.Equal(t, tc.ok, store.OnPropertyChanged(tc.name, tc.value))
			props := store.Snapshot()
			value, _ := props.Get(tc.name)
			assert.Equal(t, tc.expect, value)
		})
	}
}

func TestPushWithoutName(t *testing.T) {
	store, bridge := newStore(t)
	before := store.Snapshot()
	bridge.Push(native.OpRegisterPropertyChangeHandler)
	bridge.Push(native.OpRegisterPropertyChangeHandler, float64(3), "x")
	assert.Equal(t, before, store.Snapshot())
}

func TestWatch(t *testing.T) {
	store, bridge := newStore(t)

	type change struct {
		name  Name
		value interface{}
	}
	var changes []change
	cancel := store.Watch(func(name Name, value interface{}) {
		changes = append(changes, change{name, value})
	})

	bridge.Push(native.OpRegisterPropertyChangeHandler, "windowOrientation", "left")
	bridge.Push(native.OpRegisterPropertyChangeHandler, "nope", "x")
	cancel()
	bridge.Push(native.OpRegisterPropertyChangeHandler, "windowOrientation", "right")

	assert.Equal(t, []change{{WindowOrientation, "left"}}, changes)
}

func TestSetIsEventuallyConsistent(t *testing.T) {
	store, bridge := newStore(t)

	require.NoError(t, store.Set(WindowOrientation, "landscape"))
	assert.Equal(t, []nativetest.Dispatch{
		{Kind: nativetest.KindExec, Interface: native.PalmSystem, Operation: native.OpSetProperty, Args: []interface{}{"windowOrientation", "landscape"}},
	}, bridge.DispatchesOf(native.OpSetProperty))
	assert.Equal(t, "", store.WindowOrientation())

	bridge.Push(native.OpRegisterPropertyChangeHandler, "windowOrientation", "landscape")
	assert.Equal(t, "landscape", store.WindowOrientation())
}

func TestSetRejected(t *testing.T) {
	store, bridge := newStore(t)

	assert.True(t, errors.Is(store.Set(Locale, "fr"), ErrReadOnlyProperty))
	assert.True(t, errors.Is(store.Set("bannerMessageCounter", 1), ErrUnknownProperty))
	assert.Empty(t, bridge.DispatchesOf(native.OpSetProperty))

	store.SetHasAlphaHole(true)
	store.SetWindowOrientation("up")
	assert.Len(t, bridge.DispatchesOf(native.OpSetProperty), 2)
}

func TestGetUnknown(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Get("bogus")
	assert.True(t, errors.Is(err, ErrUnknownProperty))
}

func TestActivityIDIsLive(t *testing.T) {
	store, bridge := newStore(t)

	next := "7"
	bridge.HandleSync(native.PalmSystem, native.OpGetActivityID, func([]interface{}) (string, error) {
		return next, nil
	})
	store.OnPropertyChanged(ActivityID, float64(99))

	id, err := store.ActivityID()
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	next = " 12abc"
	value, err := store.Get(ActivityID)
	require.NoError(t, err)
	assert.Equal(t, 12, value)

	next = "none"
	_, err = store.ActivityID()
	assert.Error(t, err)
	assert.Len(t, bridge.DispatchesOf(native.OpGetActivityID), 3)
}

func TestGetResource(t *testing.T) {
	store, bridge := newStore(t)
	resources := map[string]string{
		"good.json": `{"a":1}`,
		"bad.json":  `{a:`,
		"page.html": "<html></html>",
	}
	bridge.HandleSync(native.PalmSystem, native.OpGetResource, func(args []interface{}) (string, error) {
		return resources[args[0].(string)], nil
	})

	value, err := store.GetResource("good.json", ResourceKindJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, value)

	_, err = store.GetResource("bad.json", ResourceKindJSON)
	assert.True(t, errors.Is(err, ErrDeserialize))
	var resourceErr *ResourceError
	require.ErrorAs(t, err, &resourceErr)
	assert.Equal(t, "bad.json", resourceErr.Key)

	value, err = store.GetResource("page.html", "")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", value)

	assert.Equal(t, []interface{}{"good.json", ResourceKindJSON}, bridge.DispatchesOf(native.OpGetResource)[0].Args)
}
