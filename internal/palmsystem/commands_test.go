package palmsystem

import (
	"testing"

	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/native/nativetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandCatalogueUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Commands {
		assert.False(t, seen[c.Name], "duplicate command %q", c.Name)
		seen[c.Name] = true
		assert.False(t, Known(Name(c.Name)), "command %q shadows a property", c.Name)
	}
	assert.Len(t, CommandNames(), len(Commands))
}

func TestExecForward(t *testing.T) {
	bridge := nativetest.New()
	system := New(bridge)

	result, err := system.Exec("playSoundNotification", "alerts", "/sounds/ding.mp3")
	require.NoError(t, err)
	assert.Nil(t, result)

	result, err = system.Exec("applyLaunchFeedback", float64(10), float64(20))
	require.NoError(t, err)
	assert.Nil(t, result)

	system.Paste()
	system.EnableFullScreenMode(true)

	assert.Equal(t, []nativetest.Dispatch{
		{Kind: nativetest.KindExecWithoutCallback, Interface: native.PalmSystem, Operation: "playSoundNotification", Args: []interface{}{"alerts", "/sounds/ding.mp3", nil, nil}},
		{Kind: nativetest.KindExecWithoutCallback, Interface: native.PalmSystem, Operation: "applyLaunchFeedback"},
		{Kind: nativetest.KindExecWithoutCallback, Interface: native.PalmSystem, Operation: "paste"},
		{Kind: nativetest.KindExecWithoutCallback, Interface: native.PalmSystem, Operation: "enableFullScreenMode", Args: []interface{}{true}},
	}, bridge.Dispatches())
}

func TestExecSync(t *testing.T) {
	bridge := nativetest.New()
	system := New(bridge)
	bridge.HandleSync(native.PalmSystem, "addBannerMessage", func(args []interface{}) (string, error) {
		return "banner-" + args[0].(string), nil
	})

	id, err := system.AddBannerMessage(Banner{Message: "hello", Duration: 3})
	require.NoError(t, err)
	assert.Equal(t, "banner-hello", id)
	assert.Equal(t,
		[]interface{}{"hello", "", "", "", "", 3, false},
		bridge.DispatchesOf("addBannerMessage")[0].Args,
	)

	_, err = system.GetIdentifierForFrame("frame", "file:///index.html")
	assert.Error(t, err, "no sync handler installed")
}

func TestExecStub(t *testing.T) {
	bridge := nativetest.New()
	system := New(bridge)

	for name, expect := range map[string]interface{}{
		"encrypt":                "",
		"getDeviceKeys":          "",
		"addActiveCallBanner":    true,
		"removeActiveCallBanner": nil,
		"printFrame":             nil,
	} {
		result, err := system.Exec(name, "ignored")
		require.NoError(t, err)
		assert.Equal(t, expect, result, name)
	}
	assert.Empty(t, bridge.Dispatches())
}

func TestExecUnknown(t *testing.T) {
	system := New(nativetest.New())
	_, err := system.Exec("launchRockets")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestGetIdentifierIsCached(t *testing.T) {
	bridge := nativetest.New()
	system := New(bridge)
	system.Initialize()
	require.NoError(t, bridge.Reply(native.OpInitializeProperties, map[string]interface{}{"identifier": "com.example.app 1234"}))

	assert.Equal(t, "com.example.app 1234", system.GetIdentifier())
	assert.Empty(t, bridge.DispatchesOf("getIdentifier"))
}
