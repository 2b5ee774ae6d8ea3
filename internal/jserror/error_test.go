package jserror

import (
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	for _, tc := range []struct {
		description string
		err         error
		code        string
	}{
		{"deserialize", &palmsystem.ResourceError{Key: "a.json", Err: errors.New("bad")}, CodeParse},
		{"unknown property", errors.Wrap(palmsystem.ErrUnknownProperty, "bogus"), CodeInvalid},
		{"unknown command", palmsystem.ErrUnknownCommand, CodeInvalid},
		{"read-only", palmsystem.ErrReadOnlyProperty, CodePermission},
		{"no bridge", native.ErrNoNativeBridge, CodeNotImplemented},
		{"missing file", hackpadfs.ErrNotExist, CodeNotExist},
		{"explicit code", New("nope", "EBUSY"), "EBUSY"},
		{"wrapped explicit code", errors.Wrap(New("nope", "EBUSY"), "context"), "EBUSY"},
		{"unknown", errors.New("something"), CodeInvalid},
	} {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.code, Code(tc.err))
		})
	}
}

func TestWrap(t *testing.T) {
	err := Wrap(palmsystem.ErrReadOnlyProperty, "set locale")
	assert.Equal(t, CodePermission, err.Code())
	assert.Equal(t, "set locale: property is read-only", err.Message())
	assert.True(t, errors.Is(err, palmsystem.ErrReadOnlyProperty))
}
