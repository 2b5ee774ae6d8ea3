//go:build !js
// +build !js

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		name   string
		expect Level
	}{
		{"debug", LevelDebug},
		{"log", LevelLog},
		{"info", LevelLog},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"verbose", -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ParseLevel(tc.name))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := CurrentLevel()
	defer SetLevel(prev)

	SetLevel(LevelWarn)
	assert.Zero(t, Print("hidden"))
	assert.NotZero(t, Warn("shown"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "warn: ")
	assert.Contains(t, buf.String(), "shown")

	SetLevel(Level(42))
	assert.Equal(t, LevelWarn, CurrentLevel())
}
