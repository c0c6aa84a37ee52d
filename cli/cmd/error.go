package cmd

import (
	"log/slog"
	"slices"
)

// Error is a command failure. Each Error descends from one of the sentinels
// declared below, and [errors.Is] matches it against that sentinel no
// matter which cause or attributes were added on the way.
type Error struct {
	msg   string
	cause error
	attrs []slog.Attr
	root  *Error
}

// NewError declares a sentinel.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

func (e *Error) derive() *Error {
	c := *e

	return &c
}

func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	}

	return e.msg + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.root != nil && t.root == e.root
}

// LogValue groups the message, the cause, and the attributes. The cause is
// logged as a value so its own LogValue, if any, is expanded.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", e.msg)}

	if e.cause != nil {
		attrs = append(attrs, slog.Any("cause", e.cause))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.cause = err

	return c
}

// With returns a copy of e carrying attrs in addition to its own.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.derive()
	c.attrs = append(slices.Clip(e.attrs), attrs...)

	return c
}

var (
	ErrLoad        = NewError("load sources")
	ErrNoSource    = NewError("no source (use '-' for stdin)")
	ErrBadValue    = NewError("value did not resolve")
	ErrOutput      = NewError("write output")
	ErrQuery       = NewError("evaluate query")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
)
