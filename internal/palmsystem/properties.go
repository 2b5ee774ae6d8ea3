package palmsystem

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Name is a platform property name as exposed on window.PalmSystem.
type Name string

const (
	LaunchParams               Name = "launchParams"
	HasAlphaHole               Name = "hasAlphaHole"
	Locale                     Name = "locale"
	LocaleRegion               Name = "localeRegion"
	TimeFormat                 Name = "timeFormat"
	TimeZone                   Name = "timeZone"
	IsMinimal                  Name = "isMinimal"
	Identifier                 Name = "identifier"
	Version                    Name = "version"
	ScreenOrientation          Name = "screenOrientation"
	WindowOrientation          Name = "windowOrientation"
	SpecifiedWindowOrientation Name = "specifiedWindowOrientation"
	VideoOrientation           Name = "videoOrientation"
	DeviceInfo                 Name = "deviceInfo"
	IsActivated                Name = "isActivated"
	ActivityID                 Name = "activityId"
	PhoneRegion                Name = "phoneRegion"
)

// Properties is the full set of platform properties. Field tags match the keys of the
// native initializeProperties bundle.
type Properties struct {
	LaunchParams               string `json:"launchParams"`
	HasAlphaHole               bool   `json:"hasAlphaHole"`
	Locale                     string `json:"locale"`
	LocaleRegion               string `json:"localeRegion"`
	TimeFormat                 string `json:"timeFormat"`
	TimeZone                   string `json:"timeZone"`
	IsMinimal                  bool   `json:"isMinimal"`
	Identifier                 string `json:"identifier"`
	Version                    string `json:"version"`
	ScreenOrientation          string `json:"screenOrientation"`
	WindowOrientation          string `json:"windowOrientation"`
	SpecifiedWindowOrientation string `json:"specifiedWindowOrientation"`
	VideoOrientation           string `json:"videoOrientation"`
	DeviceInfo                 string `json:"deviceInfo"`
	IsActivated                bool   `json:"isActivated"`
	ActivityID                 int    `json:"activityId"`
	PhoneRegion                string `json:"phoneRegion"`
}

const defaultDeviceInfo = `{"modelName":"unknown","platformVersion":"0.0.0"}`

// DefaultProperties are the values reported before the native bundle arrives.
func DefaultProperties() Properties {
	return Properties{
		LaunchParams: "{}",
		Locale:       "en",
		LocaleRegion: "us",
		TimeFormat:   "HH12",
		TimeZone:     "Etc/UTC",
		DeviceInfo:   defaultDeviceInfo,
		IsActivated:  true,
	}
}

// Device is the decoded form of the deviceInfo property.
type Device struct {
	ModelName       string `json:"modelName"`
	PlatformVersion string `json:"platformVersion"`
}

func (d Device) String() string {
	buf, _ := json.Marshal(d)
	return string(buf)
}

func (p Properties) Device() (Device, error) {
	var d Device
	err := json.Unmarshal([]byte(p.DeviceInfo), &d)
	return d, errors.Wrap(err, "decode deviceInfo")
}

type descriptor struct {
	name    Name
	mutable bool
	str     func(*Properties) *string
	boolean func(*Properties) *bool
	integer func(*Properties) *int
}

var descriptors = []descriptor{
	{name: LaunchParams, str: func(p *Properties) *string { return &p.LaunchParams }},
	{name: HasAlphaHole, mutable: true, boolean: func(p *Properties) *bool { return &p.HasAlphaHole }},
	{name: Locale, str: func(p *Properties) *string { return &p.Locale }},
	{name: LocaleRegion, str: func(p *Properties) *string { return &p.LocaleRegion }},
	{name: TimeFormat, str: func(p *Properties) *string { return &p.TimeFormat }},
	{name: TimeZone, str: func(p *Properties) *string { return &p.TimeZone }},
	{name: IsMinimal, boolean: func(p *Properties) *bool { return &p.IsMinimal }},
	{name: Identifier, str: func(p *Properties) *string { return &p.Identifier }},
	{name: Version, str: func(p *Properties) *string { return &p.Version }},
	{name: ScreenOrientation, str: func(p *Properties) *string { return &p.ScreenOrientation }},
	{name: WindowOrientation, mutable: true, str: func(p *Properties) *string { return &p.WindowOrientation }},
	{name: SpecifiedWindowOrientation, str: func(p *Properties) *string { return &p.SpecifiedWindowOrientation }},
	{name: VideoOrientation, str: func(p *Properties) *string { return &p.VideoOrientation }},
	{name: DeviceInfo, str: func(p *Properties) *string { return &p.DeviceInfo }},
	{name: IsActivated, boolean: func(p *Properties) *bool { return &p.IsActivated }},
	{name: ActivityID, integer: func(p *Properties) *int { return &p.ActivityID }},
	{name: PhoneRegion, str: func(p *Properties) *string { return &p.PhoneRegion }},
}

var descriptorsByName = func() map[Name]descriptor {
	m := make(map[Name]descriptor, len(descriptors))
	for _, d := range descriptors {
		m[d.name] = d
	}
	return m
}()

// Names lists every known property in declaration order.
func Names() []Name {
	names := make([]Name, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.name
	}
	return names
}

// Known reports whether name is part of the fixed property set.
func Known(name Name) bool {
	_, ok := descriptorsByName[name]
	return ok
}

// Mutable reports whether web content may request a change to name.
func Mutable(name Name) bool {
	return descriptorsByName[name].mutable
}

// Get returns the value of name as a string, bool, or int.
func (p *Properties) Get(name Name) (interface{}, bool) {
	d, ok := descriptorsByName[name]
	if !ok {
		return nil, false
	}
	switch {
	case d.str != nil:
		return *d.str(p), true
	case d.boolean != nil:
		return *d.boolean(p), true
	default:
		return *d.integer(p), true
	}
}

// Set coerces value to the property's type and stores it. Unknown names are rejected
// with ErrUnknownProperty.
func (p *Properties) Set(name Name, value interface{}) error {
	d, ok := descriptorsByName[name]
	if !ok {
		return errors.Wrap(ErrUnknownProperty, string(name))
	}
	switch {
	case d.str != nil:
		s, err := coerceString(value)
		if err != nil {
			return errors.Wrap(err, string(name))
		}
		*d.str(p) = s
	case d.boolean != nil:
		b, err := coerceBool(value)
		if err != nil {
			return errors.Wrap(err, string(name))
		}
		*d.boolean(p) = b
	default:
		i, err := coerceInt(value)
		if err != nil {
			return errors.Wrap(err, string(name))
		}
		*d.integer(p) = i
	}
	return nil
}

// Map renders the properties as a bundle keyed by property name.
func (p Properties) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(descriptors))
	for _, d := range descriptors {
		value, _ := p.Get(d.name)
		m[string(d.name)] = value
	}
	return m
}

func coerceString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", errors.New("null is not a string")
	default:
		// structured values such as launch parameters objects are kept as JSON text
		buf, err := json.Marshal(v)
		return string(buf), errors.Wrap(err, "encode value")
	}
}

func coerceBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		if v == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(v)
		return b, errors.Wrapf(err, "parse %q as bool", v)
	default:
		return false, errors.Errorf("%T is not a bool", value)
	}
}

func coerceInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		return parseLeadingInt(v)
	default:
		return 0, errors.Errorf("%T is not an integer", value)
	}
}

// parseLeadingInt reads an optionally signed run of decimal digits after leading
// whitespace and ignores anything that follows, like JS parseInt(s, 10).
func parseLeadingInt(s string) (int, error) {
	trimmed := strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(trimmed) && (trimmed[end] == '-' || trimmed[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, errors.Errorf("parse %q: not a number", s)
	}
	n, err := strconv.Atoi(trimmed[:end])
	return n, errors.Wrapf(err, "parse %q", s)
}
