//go:build js
// +build js

package interop

import (
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/jserror"
	"github.com/pkg/errors"
)

var jsErr = js.Global().Get("Error")

// JSError converts err into a JS Error with a code property. Errors thrown by JS are
// passed back unchanged. A nil err is null.
func JSError(err error) js.Value {
	if err == nil {
		return js.Null()
	}
	var thrown js.Error
	if errors.As(err, &thrown) {
		return thrown.Value
	}
	value := jsErr.New(err.Error())
	value.Set("code", jserror.Code(err))
	return value
}
