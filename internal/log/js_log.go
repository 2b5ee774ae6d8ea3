//go:build js && wasm
// +build js,wasm

package log

import (
	"syscall/js"

	"github.com/hack-pad/palmshim/internal/global"
)

var (
	console = js.Global().Get("console")
)

const logLevelKey = "logLevel"

func init() {
	global.SetDefault(logLevelKey, CurrentLevel().String())
	global.SetDefault("setLogLevel", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return nil
		}
		SetLevel(ParseLevel(args[0].String()))
		return CurrentLevel().String()
	}))
}

func levelChanged(level Level) {
	global.Set(logLevelKey, level.String())
}

func DebugJSValues(args ...interface{}) int {
	return logJSValues(LevelDebug, 1, args...)
}

func ErrorJSValues(args ...interface{}) int {
	return logJSValues(LevelError, 1, args...)
}

func logJSValues(kind Level, skip int, args ...interface{}) int {
	if !enabled(kind) {
		return 0
	}
	caller := getCaller(skip + 1)
	args = append([]interface{}{caller}, args...)
	console.Call(kind.String(), args...)
	return 0
}

func writeLog(c Level, s string) {
	console.Call(c.String(), s)
}
