package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// RawKind identifies the variant held by a [Raw].
type RawKind int

// Raw value kinds. RawPending is the zero value and never leaves the
// package.
const (
	RawPending RawKind = iota
	RawBool
	RawInt
	RawReal
	RawStr
	RawUnquoted
	RawNull
	RawConcat
	RawSubstitution
	RawIncluded
	RawAppend
	RawEmptyObject
	RawEmptyArray
	RawError
)

var rawKindNames = [...]string{
	RawPending:      "Pending",
	RawBool:         "Bool",
	RawInt:          "Int",
	RawReal:         "Real",
	RawStr:          "Str",
	RawUnquoted:     "Unquoted",
	RawNull:         "Null",
	RawConcat:       "Concat",
	RawSubstitution: "Substitution",
	RawIncluded:     "Included",
	RawAppend:       "Append",
	RawEmptyObject:  "EmptyObject",
	RawEmptyArray:   "EmptyArray",
	RawError:        "Error",
}

func (k RawKind) String() string {
	if k < 0 || int(k) >= len(rawKindNames) {
		return "Unknown"
	}

	return rawKindNames[k]
}

// Raw is the right-hand side of one assignment, before resolution.
//
// Only the fields belonging to Kind are meaningful:
//
//   - RawBool, RawInt, RawReal: Bool, Int, Real
//   - RawStr, RawUnquoted: Str
//   - RawConcat: Items
//   - RawSubstitution: Target, Optional, Fallback
//   - RawIncluded: Inner, OriginalPath, IncludeRoot, Rooted
//   - RawAppend: Inner, OriginalPath, ItemID
//   - RawError: Err
//
// A Raw is treated as immutable once built.
type Raw struct {
	Fallback     *Raw
	Inner        *Raw
	Err          *Error
	Str          string
	ItemID       string
	Items        []Raw
	Target       Path
	OriginalPath Path
	IncludeRoot  Path
	Int          int64
	Real         float64
	Kind         RawKind
	Bool         bool
	Optional     bool
	Rooted       bool
}

// Bool returns a boolean raw value.
func Bool(b bool) Raw { return Raw{Kind: RawBool, Bool: b} }

// Int returns an integer raw value.
func Int(i int64) Raw { return Raw{Kind: RawInt, Int: i} }

// Real returns a floating-point raw value.
func Real(f float64) Raw { return Raw{Kind: RawReal, Real: f} }

// Str returns a quoted string raw value.
func Str(s string) Raw { return Raw{Kind: RawStr, Str: s} }

// Unquoted returns an unquoted string raw value. Unquoted text is trimmed
// at concatenation boundaries and "null" finalizes to Null.
func Unquoted(s string) Raw { return Raw{Kind: RawUnquoted, Str: s} }

// Null returns the null raw value.
func Null() Raw { return Raw{Kind: RawNull} }

// EmptyObject returns the placeholder of an explicit {}.
func EmptyObject() Raw { return Raw{Kind: RawEmptyObject} }

// EmptyArray returns the placeholder of an explicit [].
func EmptyArray() Raw { return Raw{Kind: RawEmptyArray} }

// Subst returns a mandatory substitution of target.
func Subst(target Path) Raw {
	return Raw{Kind: RawSubstitution, Target: target}
}

// OptionalSubst returns an optional substitution of target.
func OptionalSubst(target Path) Raw {
	return Raw{Kind: RawSubstitution, Target: target, Optional: true}
}

// ErrorRaw returns the marker of a failure embedded in lenient mode.
func ErrorRaw(err *Error) Raw { return Raw{Kind: RawError, Err: err} }

// Concat joins items into one value. Whitespace-only unquoted fragments at
// either end are dropped, and a single remaining item is returned as is.
func Concat(items ...Raw) Raw {
	for len(items) > 0 && items[0].blank() {
		items = items[1:]
	}

	for len(items) > 0 && items[len(items)-1].blank() {
		items = items[:len(items)-1]
	}

	switch len(items) {
	case 0:
		return Unquoted("")
	case 1:
		return items[0]
	}

	return Raw{Kind: RawConcat, Items: items}
}

func included(inner Raw, orig Path) Raw {
	return Raw{Kind: RawIncluded, Inner: &inner, OriginalPath: orig}
}

func appended(inner Raw, orig Path, id string) Raw {
	return Raw{Kind: RawAppend, Inner: &inner, OriginalPath: orig, ItemID: id}
}

// blank reports whether r is unquoted whitespace.
func (r Raw) blank() bool {
	return r.Kind == RawUnquoted && strings.TrimSpace(r.Str) == ""
}

// pending reports whether r still needs a substitution resolved.
func (r Raw) pending() bool {
	switch r.Kind {
	case RawSubstitution:
		return true
	case RawIncluded, RawAppend:
		return r.Inner != nil && r.Inner.pending()
	case RawConcat:
		for _, it := range r.Items {
			if it.pending() {
				return true
			}
		}
	}

	return false
}

// withFallback returns r with fb recorded as the value displaced from r's
// slot. Only substitutions, possibly wrapped, record a fallback.
func (r Raw) withFallback(fb Raw) Raw {
	switch r.Kind {
	case RawSubstitution:
		if r.Fallback == nil {
			r.Fallback = &fb
		}
	case RawIncluded, RawAppend:
		if r.Inner != nil {
			inner := r.Inner.withFallback(fb)
			r.Inner = &inner
		}
	}

	return r
}

// render returns the text r contributes to a string concatenation.
func (r Raw) render() (string, bool) {
	switch r.Kind {
	case RawBool:
		return strconv.FormatBool(r.Bool), true
	case RawInt:
		return strconv.FormatInt(r.Int, 10), true
	case RawReal:
		return strconv.FormatFloat(r.Real, 'f', -1, 64), true
	case RawStr, RawUnquoted:
		return r.Str, true
	case RawNull:
		return "null", true
	case RawIncluded, RawAppend:
		if r.Inner != nil {
			return r.Inner.render()
		}
	}

	return "", false
}

// String renders r for diagnostics.
func (r Raw) String() string {
	switch r.Kind {
	case RawStr:
		return strconv.Quote(r.Str)
	case RawSubstitution:
		opt := ""
		if r.Optional {
			opt = "?"
		}

		return "${" + opt + r.Target.String() + "}"
	case RawConcat:
		parts := make([]string, len(r.Items))
		for i, it := range r.Items {
			parts[i] = it.String()
		}

		return "concat(" + strings.Join(parts, ", ") + ")"
	case RawIncluded, RawAppend:
		inner := "null"
		if r.Inner != nil {
			inner = r.Inner.String()
		}

		return strings.ToLower(r.Kind.String()) + "(" + inner + ")"
	case RawEmptyObject:
		return "{}"
	case RawEmptyArray:
		return "[]"
	case RawError:
		if r.Err == nil {
			return "error"
		}

		return "error(" + r.Err.Error() + ")"
	case RawPending:
		return "pending"
	}

	s, _ := r.render()

	return s
}

// LogValue implements slog.LogValuer.
func (r Raw) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", r.Kind.String()),
		slog.String("value", r.String()),
	)
}
