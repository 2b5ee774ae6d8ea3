//go:build !js
// +build !js

package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stderr
	// debugEnv keeps native logging quiet unless DEBUG=true, matching a browser console
	// that nobody has opened.
	debugEnv = os.Getenv("DEBUG") == "true"
)

// SetOutput redirects native log output and enables it regardless of DEBUG.
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	debugEnv = true
	outputMu.Unlock()
}

func levelChanged(Level) {}

func writeLog(c Level, s string) {
	outputMu.Lock()
	defer outputMu.Unlock()
	if debugEnv {
		fmt.Fprintf(output, "%s: %s\n", c.String(), s)
	}
}
