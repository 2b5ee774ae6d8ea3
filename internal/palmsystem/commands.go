package palmsystem

import (
	"sort"

	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/pkg/errors"
)

var ErrUnknownCommand = errors.New("unknown PalmSystem command")

type CommandKind int

const (
	// Forward sends the command without waiting for a result.
	Forward CommandKind = iota
	// Sync blocks for the native result and returns it.
	Sync
	// Stub answers locally with a constant. The native side is not involved.
	Stub
)

// Command describes one PalmSystem method. Arity is the number of caller arguments
// forwarded to the native side: missing ones are sent as null and extras are dropped.
type Command struct {
	Name   string
	Kind   CommandKind
	Arity  int
	Result interface{}
}

var Commands = []Command{
	{Name: "getIdentifierForFrame", Kind: Sync, Arity: 2},
	{Name: "addBannerMessage", Kind: Sync, Arity: 7},
	{Name: "removeBannerMessage", Arity: 1},
	{Name: "clearBannerMessages"},
	{Name: "playSoundNotification", Arity: 4},
	{Name: "simulateMouseClick", Arity: 3},
	{Name: "paste"},
	{Name: "copiedToClipboard"},
	{Name: "pastedFromClipboard"},
	{Name: "setWindowOrientation", Arity: 1},
	{Name: "encrypt", Kind: Stub, Result: ""},
	{Name: "decrypt", Kind: Stub, Result: ""},
	{Name: "shutdown"},
	{Name: "markFirstUseDone"},
	{Name: "enableFullScreenMode", Arity: 1},
	{Name: "activate"},
	{Name: "deactivate"},
	{Name: "stagePreparing"},
	{Name: "stageReady"},
	{Name: "setAlertSound", Arity: 2},
	{Name: "receivePageUpDownInLandscape", Arity: 1},
	{Name: "show"},
	{Name: "hide"},
	{Name: "enableDockMode", Arity: 1},
	{Name: "getLocalizedString", Kind: Stub, Result: ""},
	{Name: "addNewContentIndicator", Kind: Stub, Result: ""},
	{Name: "removeNewContentIndicator", Kind: Stub},
	{Name: "runAnimationLoop", Kind: Stub},
	{Name: "setActiveBannerWindowWidth"},
	{Name: "cancelVibrations"},
	{Name: "setWindowProperties", Arity: 1},
	{Name: "addActiveCallBanner", Kind: Stub, Result: true},
	{Name: "removeActiveCallBanner", Kind: Stub},
	{Name: "updateActiveCallBanner", Kind: Stub},
	{Name: "applyLaunchFeedback"},
	{Name: "launcherReady"},
	{Name: "getDeviceKeys", Kind: Stub, Result: ""},
	{Name: "repaint"},
	{Name: "hideSpellingWidget"},
	{Name: "printFrame", Kind: Stub},
	{Name: "editorFocused", Arity: 3},
	{Name: "allowResizeOnPositiveSpaceChange", Arity: 1},
	{Name: "keepAlive", Arity: 1},
	{Name: "useSimulatedMouseClicks", Arity: 1},
	{Name: "handleTapAndHoldEvent", Arity: 2},
	{Name: "setManualKeyboardEnabled", Arity: 1},
	{Name: "keyboardShow", Arity: 1},
	{Name: "keyboardHide"},
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(Commands))
	for _, c := range Commands {
		m[c.Name] = c
	}
	return m
}()

func LookupCommand(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok
}

// CommandNames returns the catalogue names sorted.
func CommandNames() []string {
	names := make([]string, 0, len(Commands))
	for _, c := range Commands {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

func (c Command) nativeArgs(args []interface{}) []interface{} {
	if c.Arity == 0 {
		return nil
	}
	forwarded := make([]interface{}, c.Arity)
	copy(forwarded, args)
	return forwarded
}

// System is window.PalmSystem: the property store plus the command catalogue.
type System struct {
	*Store
	bridge native.Bridge
}

func New(bridge native.Bridge) *System {
	return &System{
		Store:  NewStore(bridge),
		bridge: bridge,
	}
}

// Exec runs a catalogue command by name. Forwarded commands return nil, synchronous
// ones the native result, and stubs their constant.
func (s *System) Exec(name string, args ...interface{}) (interface{}, error) {
	cmd, ok := LookupCommand(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownCommand, name)
	}
	switch cmd.Kind {
	case Sync:
		result, err := s.bridge.ExecSync(native.PalmSystem, cmd.Name, cmd.nativeArgs(args)...)
		return result, errors.Wrap(err, cmd.Name)
	case Stub:
		return cmd.Result, nil
	default:
		s.bridge.ExecWithoutCallback(native.PalmSystem, cmd.Name, cmd.nativeArgs(args)...)
		return nil, nil
	}
}

func (s *System) forward(name string, args ...interface{}) {
	if _, err := s.Exec(name, args...); err != nil {
		log.Error("palmsystem: ", err)
	}
}

func (s *System) GetIdentifier() string {
	return s.Identifier()
}

func (s *System) GetIdentifierForFrame(id, url string) (string, error) {
	result, err := s.Exec("getIdentifierForFrame", id, url)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Banner is the payload of addBannerMessage.
type Banner struct {
	Message       string
	Params        string
	Icon          string
	SoundClass    string
	SoundFile     string
	Duration      int
	DoNotSuppress bool
}

// AddBannerMessage posts a banner and returns the native banner id.
func (s *System) AddBannerMessage(b Banner) (string, error) {
	result, err := s.Exec("addBannerMessage", b.Message, b.Params, b.Icon, b.SoundClass, b.SoundFile, b.Duration, b.DoNotSuppress)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (s *System) RemoveBannerMessage(id string) { s.forward("removeBannerMessage", id) }
func (s *System) ClearBannerMessages()          { s.forward("clearBannerMessages") }

func (s *System) PlaySoundNotification(soundClass, file string, duration int, wakeUpScreen bool) {
	s.forward("playSoundNotification", soundClass, file, duration, wakeUpScreen)
}

func (s *System) Paste()               { s.forward("paste") }
func (s *System) CopiedToClipboard()   { s.forward("copiedToClipboard") }
func (s *System) PastedFromClipboard() { s.forward("pastedFromClipboard") }

// SetWindowOrientationCommand is the setWindowOrientation method, distinct from
// writing the windowOrientation property.
func (s *System) SetWindowOrientationCommand(orientation string) {
	s.forward("setWindowOrientation", orientation)
}

func (s *System) Shutdown()                        { s.forward("shutdown") }
func (s *System) MarkFirstUseDone()                { s.forward("markFirstUseDone") }
func (s *System) EnableFullScreenMode(enable bool) { s.forward("enableFullScreenMode", enable) }
func (s *System) Activate()                        { s.forward("activate") }
func (s *System) Deactivate()                      { s.forward("deactivate") }
func (s *System) StagePreparing()                  { s.forward("stagePreparing") }
func (s *System) StageReady()                      { s.forward("stageReady") }
func (s *System) Show()                            { s.forward("show") }
func (s *System) Hide()                            { s.forward("hide") }
func (s *System) KeepAlive(keep bool)              { s.forward("keepAlive", keep) }
func (s *System) KeyboardShow(fieldType int)       { s.forward("keyboardShow", fieldType) }
func (s *System) KeyboardHide()                    { s.forward("keyboardHide") }
func (s *System) ApplyLaunchFeedback()             { s.forward("applyLaunchFeedback") }
func (s *System) LauncherReady()                   { s.forward("launcherReady") }
