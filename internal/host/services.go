package host

import (
	"context"
	"encoding/json"
	"time"
	_ "time/tzdata" // browsers have no zoneinfo database

	"github.com/hack-pad/palmshim/internal/config"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

const (
	URIGetSystemTime  = "luna://com.palm.systemservice/time/getSystemTime"
	URIGetPreferences = "luna://com.palm.systemservice/getPreferences"
)

// ServiceFunc answers one service call. The returned object is sent back with
// returnValue set to true unless the handler set it.
type ServiceFunc func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)

// ServiceError is a failure reply with an explicit error code.
type ServiceError struct {
	Code int
	Text string
}

func (e *ServiceError) Error() string {
	return e.Text
}

const defaultErrorCode = -1

// ServiceMux routes service URIs to handlers.
type ServiceMux struct {
	handlers *xsync.Map[string, ServiceFunc]
}

func NewServiceMux() *ServiceMux {
	return &ServiceMux{
		handlers: xsync.NewMap[string, ServiceFunc](),
	}
}

func (m *ServiceMux) Handle(uri string, fn ServiceFunc) {
	m.handlers.Store(uri, fn)
}

// Serve runs the handler for uri and encodes its reply. It never fails: errors become
// reply payloads with returnValue false.
func (m *ServiceMux) Serve(ctx context.Context, uri, payload string) string {
	reply, err := m.serve(ctx, uri, payload)
	if err != nil {
		log.Debugf("host: service %s: %v", uri, err)
		return errorReply(err)
	}
	return encodeReply(reply)
}

func (m *ServiceMux) serve(ctx context.Context, uri, payload string) (map[string]interface{}, error) {
	fn, ok := m.handlers.Load(uri)
	if !ok {
		return nil, &ServiceError{Code: defaultErrorCode, Text: "Unknown method " + uri}
	}
	params := map[string]interface{}{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &params); err != nil {
			return nil, &ServiceError{Code: defaultErrorCode, Text: "Malformed JSON payload: " + err.Error()}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply, err := fn(ctx, params)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		reply = map[string]interface{}{}
	}
	if _, set := reply["returnValue"]; !set {
		reply["returnValue"] = true
	}
	return reply, nil
}

func errorReply(err error) string {
	code := defaultErrorCode
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		code = serviceErr.Code
	}
	return encodeReply(map[string]interface{}{
		"returnValue": false,
		"errorCode":   code,
		"errorText":   err.Error(),
	})
}

func encodeReply(reply map[string]interface{}) string {
	buf, err := json.Marshal(reply)
	if err != nil {
		return errorReply(errors.Wrap(err, "encode reply"))
	}
	return string(buf)
}

type systemServices struct {
	now         func() time.Time
	timeZone    string
	preferences map[string]interface{}
}

// RegisterSystemServices installs the built-in system service methods.
func RegisterSystemServices(mux *ServiceMux, cfg *config.Config, now func() time.Time) {
	s := &systemServices{
		now:         now,
		timeZone:    cfg.Properties.TimeZone,
		preferences: cfg.Services.Preferences,
	}
	mux.Handle(URIGetSystemTime, s.getSystemTime)
	mux.Handle(URIGetPreferences, s.getPreferences)
}

func (s *systemServices) location() *time.Location {
	loc, err := time.LoadLocation(s.timeZone)
	if err != nil {
		log.Debugf("host: time zone %q unavailable, using UTC: %v", s.timeZone, err)
		return time.UTC
	}
	return loc
}

func (s *systemServices) getSystemTime(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	loc := s.location()
	now := s.now().In(loc)
	_, offset := now.Zone()
	return map[string]interface{}{
		"utc":      now.Unix(),
		"timezone": loc.String(),
		"offset":   offset / 60,
		"localtime": map[string]interface{}{
			"year":   now.Year(),
			"month":  int(now.Month()),
			"day":    now.Day(),
			"hour":   now.Hour(),
			"minute": now.Minute(),
			"second": now.Second(),
		},
	}, nil
}

func (s *systemServices) getPreferences(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
	keys, ok := params["keys"].([]interface{})
	if !ok {
		return nil, &ServiceError{Code: defaultErrorCode, Text: "keys must be an array"}
	}
	reply := map[string]interface{}{}
	for _, key := range keys {
		name, ok := key.(string)
		if !ok {
			continue
		}
		if value, found := s.preferences[name]; found {
			reply[name] = value
		}
	}
	return reply, nil
}
