//go:build js
// +build js

package interop

import (
	"runtime/debug"
	"strings"
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/log"
	"github.com/pkg/errors"
)

// Func is a Go implementation of a JS function. A non-nil error is thrown to the
// JS caller as an Error carrying a code.
type Func = func(this js.Value, args []js.Value) (interface{}, error)

const (
	resultKey = "value"
	errorKey  = "error"
)

// throwingWrapper unwraps the result envelope FuncOf hands back and rethrows errors,
// since a Go callback cannot throw into JS on its own.
var throwingWrapper = js.Global().Get("Function").New("impl", `
return function() {
	var result = impl.apply(this, arguments);
	if (result && result.error) {
		throw result.error;
	}
	return result ? result.value : undefined;
};`)

// SetFunc installs fn as val[name].
func SetFunc(val js.Value, name string, fn Func) js.Value {
	wrapped := NewFunc(name, fn)
	val.Set(name, wrapped)
	return wrapped
}

// NewFunc builds a JS function around fn. name only labels logs and errors.
func NewFunc(name string, fn Func) js.Value {
	impl := js.FuncOf(func(this js.Value, args []js.Value) (envelope interface{}) {
		log.Debug("running op: ", name)
		const unhelpfulStackLines = 7
		defer handlePanic(unhelpfulStackLines, name, &envelope)

		ret, err := fn(this, args)
		if err != nil {
			log.Debugf("op %s failed: %v", name, err)
			return map[string]interface{}{errorKey: JSError(errors.Wrap(err, name))}
		}
		return map[string]interface{}{resultKey: ToJS(ret)}
	})
	return throwingWrapper.Invoke(impl)
}

func handlePanic(skipPanicLines int, name string, envelope *interface{}) {
	r := recover()
	if r == nil {
		return
	}
	stack := string(debug.Stack())
	for iter := 0; iter < skipPanicLines; iter++ {
		ix := strings.IndexRune(stack, '\n')
		if ix == -1 {
			break
		}
		stack = stack[ix+1:]
	}
	var err error
	switch r := r.(type) {
	case js.Value:
		log.ErrorJSValues(
			js.ValueOf("panic:"),
			r,
			js.ValueOf("\n\n"+stack),
		)
		err = js.Error{Value: r}
	case error:
		log.Errorf("panic: %+v\n\n%s", r, stack)
		err = r
	default:
		log.Errorf("panic: (%T) %+v\n\n%s", r, r, stack)
		err = errors.Errorf("%v", r)
	}
	*envelope = map[string]interface{}{errorKey: JSError(errors.Wrap(err, name))}
}
