// Package palmsystem implements the PalmSystem property store and command catalogue.
//
// Properties are cached locally. The native side seeds them once with an initial bundle
// and then pushes individual changes. Writes are requests: they are forwarded to the
// native side and only become visible once the corresponding push arrives.
package palmsystem

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/pubsub"
	"github.com/pkg/errors"
)

const eventInitialized = "initialized"

var (
	ErrUnknownProperty  = errors.New("unknown property")
	ErrReadOnlyProperty = errors.New("property is read-only")
)

// ChangeFunc observes a property after the store applied a new value.
type ChangeFunc func(name Name, value interface{})

type Store struct {
	bridge native.Bridge
	events pubsub.PubSub

	initOnce sync.Once

	mu          sync.RWMutex
	props       Properties
	watchers    map[int]ChangeFunc
	nextWatcher int
}

func NewStore(bridge native.Bridge) *Store {
	return &Store{
		bridge:   bridge,
		events:   pubsub.New(context.Background()),
		props:    DefaultProperties(),
		watchers: make(map[int]ChangeFunc),
	}
}

// Initialize requests the initial bundle and registers for change pushes. Neither
// waits for the other; whichever arrives first is applied first. Repeated calls do nothing.
func (s *Store) Initialize() {
	s.initOnce.Do(func() {
		s.bridge.Exec(s.applyBundle, s.bundleFailed, native.PalmSystem, native.OpInitializeProperties)
		s.bridge.Listen(s.propertyPushed, native.PalmSystem, native.OpRegisterPropertyChangeHandler)
	})
}

func (s *Store) bundleFailed(args ...interface{}) {
	log.Warn("palmsystem: initializeProperties failed, keeping defaults: ", native.Arg(args, 0))
	s.events.Emit(eventInitialized)
}

func (s *Store) applyBundle(args ...interface{}) {
	defer s.events.Emit(eventInitialized)

	bundle, err := decodeBundle(native.Arg(args, 0))
	if err != nil {
		log.Warn("palmsystem: ignoring property bundle: ", err)
		return
	}
	if bundle == nil {
		log.Debug("palmsystem: no property bundle, keeping defaults")
		return
	}

	var changed []Name
	s.mu.Lock()
	for _, name := range Names() {
		value, ok := bundle[string(name)]
		if !ok {
			continue
		}
		if err := s.props.Set(name, value); err != nil {
			log.Warn("palmsystem: bundle: ", err)
			continue
		}
		changed = append(changed, name)
	}
	s.mu.Unlock()

	for _, name := range changed {
		s.notify(name)
	}
}

func decodeBundle(raw interface{}) (map[string]interface{}, error) {
	switch bundle := raw.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return bundle, nil
	case string:
		return decodeBundleJSON([]byte(bundle))
	case []byte:
		return decodeBundleJSON(bundle)
	default:
		return nil, errors.Errorf("unexpected bundle type %T", raw)
	}
}

func decodeBundleJSON(buf []byte) (map[string]interface{}, error) {
	var bundle map[string]interface{}
	err := json.Unmarshal(buf, &bundle)
	return bundle, errors.Wrap(err, "decode bundle")
}

func (s *Store) propertyPushed(args ...interface{}) {
	name, ok := native.ArgString(args, 0)
	if !ok {
		log.Debug("palmsystem: ignoring property push without a name")
		return
	}
	s.OnPropertyChanged(Name(name), native.Arg(args, 1))
}

// OnPropertyChanged applies a pushed value. Unknown names and values that cannot be
// coerced to the property's type leave the store unchanged.
func (s *Store) OnPropertyChanged(name Name, value interface{}) bool {
	if !Known(name) {
		log.Debugf("palmsystem: ignoring push for unknown property %q", name)
		return false
	}
	s.mu.Lock()
	err := s.props.Set(name, value)
	s.mu.Unlock()
	if err != nil {
		log.Warn("palmsystem: push: ", err)
		return false
	}
	s.notify(name)
	return true
}

func (s *Store) notify(name Name) {
	s.mu.RLock()
	value, _ := s.props.Get(name)
	watchers := make([]ChangeFunc, 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range watchers {
		fn(name, value)
	}
}

// Watch registers fn for every applied change. The returned func unregisters it.
func (s *Store) Watch(fn ChangeFunc) (cancel func()) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Initialized reports whether the initial bundle reply has been handled.
func (s *Store) Initialized() bool {
	return s.events.Emitted(eventInitialized)
}

// WaitInitialized blocks until the initial bundle reply has been handled or ctx ends.
func (s *Store) WaitInitialized(ctx context.Context) error {
	return s.events.WaitContext(ctx, eventInitialized)
}

// Get returns the cached value of name. activityId is never cached and is read from
// the native side on every call.
func (s *Store) Get(name Name) (interface{}, error) {
	if name == ActivityID {
		return s.ActivityID()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.props.Get(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownProperty, string(name))
	}
	return value, nil
}

// Snapshot copies the cached properties.
func (s *Store) Snapshot() Properties {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props
}

func (s *Store) ActivityID() (int, error) {
	result, err := s.bridge.ExecSync(native.PalmSystem, native.OpGetActivityID)
	if err != nil {
		return 0, errors.Wrap(err, "getActivityId")
	}
	id, err := parseLeadingInt(result)
	return id, errors.Wrap(err, "getActivityId")
}

// Set asks the native side to change a mutable property. The cache is not touched; the
// new value becomes visible once the native side pushes it back.
func (s *Store) Set(name Name, value interface{}) error {
	if !Known(name) {
		return errors.Wrap(ErrUnknownProperty, string(name))
	}
	if !Mutable(name) {
		return errors.Wrap(ErrReadOnlyProperty, string(name))
	}
	s.bridge.Exec(nil, nil, native.PalmSystem, native.OpSetProperty, string(name), value)
	return nil
}

func (s *Store) SetHasAlphaHole(value bool) {
	_ = s.Set(HasAlphaHole, value)
}

func (s *Store) SetWindowOrientation(value string) {
	_ = s.Set(WindowOrientation, value)
}

func (s *Store) LaunchParams() string               { return s.Snapshot().LaunchParams }
func (s *Store) HasAlphaHole() bool                 { return s.Snapshot().HasAlphaHole }
func (s *Store) Locale() string                     { return s.Snapshot().Locale }
func (s *Store) LocaleRegion() string               { return s.Snapshot().LocaleRegion }
func (s *Store) TimeFormat() string                 { return s.Snapshot().TimeFormat }
func (s *Store) TimeZone() string                   { return s.Snapshot().TimeZone }
func (s *Store) IsMinimal() bool                    { return s.Snapshot().IsMinimal }
func (s *Store) Identifier() string                 { return s.Snapshot().Identifier }
func (s *Store) Version() string                    { return s.Snapshot().Version }
func (s *Store) ScreenOrientation() string          { return s.Snapshot().ScreenOrientation }
func (s *Store) WindowOrientation() string          { return s.Snapshot().WindowOrientation }
func (s *Store) SpecifiedWindowOrientation() string { return s.Snapshot().SpecifiedWindowOrientation }
func (s *Store) VideoOrientation() string           { return s.Snapshot().VideoOrientation }
func (s *Store) DeviceInfo() string                 { return s.Snapshot().DeviceInfo }
func (s *Store) IsActivated() bool                  { return s.Snapshot().IsActivated }
func (s *Store) PhoneRegion() string                { return s.Snapshot().PhoneRegion }
