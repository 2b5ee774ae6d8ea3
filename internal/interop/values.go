//go:build js
// +build js

package interop

import (
	"encoding/json"
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/log"
)

var (
	jsObject = js.Global().Get("Object")
	jsJSON   = js.Global().Get("JSON")
)

// ToGo converts a JS value into the plain Go values a native bridge carries: nil, bool,
// float64, string, []interface{} and map[string]interface{}. Functions and symbols
// become nil.
func ToGo(value js.Value) interface{} {
	switch value.Type() {
	case js.TypeBoolean:
		return value.Bool()
	case js.TypeNumber:
		return value.Float()
	case js.TypeString:
		return value.String()
	case js.TypeObject:
		var decoded interface{}
		text := jsJSON.Call("stringify", value).String()
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			log.Warnf("interop: cannot convert object: %v", err)
			return nil
		}
		return decoded
	default:
		return nil
	}
}

// ToGoArgs converts every argument with ToGo.
func ToGoArgs(args []js.Value) []interface{} {
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		values = append(values, ToGo(arg))
	}
	return values
}

// ToJS converts a Go value into a JS value. Types js.ValueOf does not accept are passed
// through JSON.
func ToJS(value interface{}) (converted js.Value) {
	switch value := value.(type) {
	case js.Value:
		return value
	case nil:
		return js.Undefined()
	case bool, string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return js.ValueOf(value)
	case []interface{}:
		values := make([]interface{}, 0, len(value))
		for _, v := range value {
			values = append(values, ToJS(v))
		}
		return js.ValueOf(values)
	case map[string]interface{}:
		values := make(map[string]interface{}, len(value))
		for k, v := range value {
			values[k] = ToJS(v)
		}
		return js.ValueOf(values)
	}
	buf, err := json.Marshal(value)
	if err != nil {
		log.Warnf("interop: cannot convert (%T): %v", value, err)
		return js.Undefined()
	}
	return jsJSON.Call("parse", string(buf))
}
