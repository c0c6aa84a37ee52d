package lang

import (
	"errors"
	"log/slog"
	"slices"
)

// ErrorKind classifies an [Error] produced while loading a document.
type ErrorKind int

// Error kinds.
const (
	KindUnknown ErrorKind = iota
	KindKeyNotFound
	KindTooManyIncludes
	KindIncludeFailed
	KindIncludeNotAllowedFromStr
	KindDisabledExternalSource
	KindParseFailed
	KindIO
	KindCycleDetected
	KindMissingKey
	KindInvalidKey
	KindDeserialization
)

var errorKindNames = [...]string{
	KindUnknown:                  "unknown",
	KindKeyNotFound:              "key not found",
	KindTooManyIncludes:          "too many includes",
	KindIncludeFailed:            "include failed",
	KindIncludeNotAllowedFromStr: "include not allowed from string",
	KindDisabledExternalSource:   "external source disabled",
	KindParseFailed:              "parse failed",
	KindIO:                       "i/o error",
	KindCycleDetected:            "cycle detected",
	KindMissingKey:               "missing key",
	KindInvalidKey:               "invalid key",
	KindDeserialization:          "deserialization failed",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return errorKindNames[KindUnknown]
	}

	return errorKindNames[k]
}

// Sentinels, one per [ErrorKind]. Match them with [errors.Is].
var (
	ErrKeyNotFound              = newKindError(KindKeyNotFound)
	ErrTooManyIncludes          = newKindError(KindTooManyIncludes)
	ErrIncludeFailed            = newKindError(KindIncludeFailed)
	ErrIncludeNotAllowedFromStr = newKindError(KindIncludeNotAllowedFromStr)
	ErrDisabledExternalSource   = newKindError(KindDisabledExternalSource)
	ErrParseFailed              = newKindError(KindParseFailed)
	ErrIO                       = newKindError(KindIO)
	ErrCycleDetected            = newKindError(KindCycleDetected)
	ErrMissingKey               = newKindError(KindMissingKey)
	ErrInvalidKey               = newKindError(KindInvalidKey)
	ErrDeserialization          = newKindError(KindDeserialization)
)

// Error is a load failure of some [ErrorKind], with an optional cause and
// attributes locating it (file, line, path, ...). Errors are immutable:
// [Error.Wrap] and [Error.With] return copies.
//
// Two errors of the same non-zero kind match under [errors.Is].
type Error struct {
	msg   string
	cause error
	attrs []slog.Attr
	kind  ErrorKind
}

// NewError returns an Error of [KindUnknown] with message msg.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind ErrorKind) *Error {
	return &Error{msg: kind.String(), kind: kind}
}

// WrapError returns err itself if it is or wraps an *Error, and otherwise
// an Error of [KindUnknown] caused by err.
func WrapError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{cause: err}
}

// Kind returns the kind of e, or of the nearest wrapped Error with one.
func (e *Error) Kind() ErrorKind {
	for e != nil {
		if e.kind != KindUnknown {
			return e.kind
		}

		var inner *Error
		if !errors.As(e.cause, &inner) {
			break
		}

		e = inner
	}

	return KindUnknown
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

	return ok && e.kind != KindUnknown && e.kind == t.kind
}

// LogValue renders e as a group of its message, its cause, and its
// attributes in the order they were added.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.cause != nil {
		attrs = append(attrs, slog.String("cause", e.cause.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.cause = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(slices.Clip(e.attrs), attrs...)

	return &c
}

// Attr returns the value of the first attribute named key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	i := slices.IndexFunc(e.attrs, func(a slog.Attr) bool { return a.Key == key })
	if i < 0 {
		return slog.Value{}, false
	}

	return e.attrs[i].Value, true
}

// policy is the single point deciding whether a failure aborts the load
// (strict) or is embedded in the document as an error marker (lenient).
type policy struct {
	strict bool
}

// fail applies the policy to a failure produced during the fold.
func (p policy) fail(err *Error) (Raw, error) {
	if p.strict {
		return Raw{}, err
	}

	return ErrorRaw(err), nil
}

// bad applies the policy to a failure produced during finalization.
func (p policy) bad(err *Error) (*Value, error) {
	if p.strict {
		return nil, err
	}

	return BadValue(err), nil
}
