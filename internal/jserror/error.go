// Package jserror attaches errno-style codes to errors surfaced to web content.
package jserror

import (
	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/hack-pad/palmshim/internal/palmsystem"
	"github.com/pkg/errors"
)

const (
	CodeInvalid        = "EINVAL"
	CodeParse          = "EPARSE"
	CodeNotImplemented = "ENOSYS"
	CodeNotExist       = "ENOENT"
	CodePermission     = "EPERM"
)

type Error interface {
	error
	Message() string
	Code() string
}

type jsErr struct {
	error
	code string
}

func New(message, code string) Error {
	return WrapErr(errors.New(message), code)
}

func WrapErr(err error, code string) Error {
	return &jsErr{
		error: err,
		code:  code,
	}
}

// Wrap prefixes err with message and keeps the code err maps to.
func Wrap(err error, message string) Error {
	return WrapErr(errors.Wrap(err, message), Code(err))
}

func (e *jsErr) Message() string {
	return e.Error()
}

func (e *jsErr) Code() string {
	return e.code
}

func (e *jsErr) Unwrap() error {
	return e.error
}

// Code picks the code for err. Errors already carrying a code keep it.
func Code(err error) string {
	var coded Error
	if errors.As(err, &coded) {
		return coded.Code()
	}
	switch {
	case errors.Is(err, palmsystem.ErrDeserialize):
		return CodeParse
	case errors.Is(err, palmsystem.ErrUnknownProperty),
		errors.Is(err, palmsystem.ErrUnknownCommand):
		return CodeInvalid
	case errors.Is(err, palmsystem.ErrReadOnlyProperty),
		errors.Is(err, hackpadfs.ErrPermission):
		return CodePermission
	case errors.Is(err, native.ErrNoNativeBridge),
		errors.Is(err, native.ErrUnknownInterface):
		return CodeNotImplemented
	case errors.Is(err, hackpadfs.ErrNotExist):
		return CodeNotExist
	default:
		log.Debugf("jserror: no code for (%T) %v", err, err)
		return CodeInvalid
	}
}
