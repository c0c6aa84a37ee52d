package lang

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the type of a finalized [Value].
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindArray
	KindObject
	KindBad
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindReal:   "real",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
	KindBad:    "bad",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}

	return kindNames[k]
}

// Value is a fully resolved document node. Values are immutable once
// produced by [Finalize].
//
// A value of kind KindBad marks a failure kept in the document in lenient
// mode, or the result of navigating to a missing or invalid key.
type Value struct {
	object  map[string]*Value
	err     *Error
	str     string
	array   []*Value
	integer int64
	float   float64
	Kind    Kind
	boolean bool
}

// NullValue returns the null value.
func NullValue() *Value { return &Value{Kind: KindNull} }

// BoolValue returns a boolean value.
func BoolValue(b bool) *Value { return &Value{Kind: KindBool, boolean: b} }

// IntValue returns an integer value.
func IntValue(i int64) *Value { return &Value{Kind: KindInt, integer: i} }

// RealValue returns a floating-point value.
func RealValue(f float64) *Value { return &Value{Kind: KindReal, float: f} }

// StringValue returns a string value.
func StringValue(s string) *Value { return &Value{Kind: KindString, str: s} }

// ArrayValue returns an array of elems.
func ArrayValue(elems ...*Value) *Value {
	if elems == nil {
		elems = []*Value{}
	}

	return &Value{Kind: KindArray, array: elems}
}

// ObjectValue returns an object of members.
func ObjectValue(members map[string]*Value) *Value {
	if members == nil {
		members = map[string]*Value{}
	}

	return &Value{Kind: KindObject, object: members}
}

// BadValue returns a value marking err.
func BadValue(err *Error) *Value { return &Value{Kind: KindBad, err: err} }

var (
	missingKey = BadValue(ErrMissingKey)
	invalidKey = BadValue(ErrInvalidKey)
)

// Get returns the member named key of an object. A missing member yields
// a bad value of kind MissingKey; any other receiver yields InvalidKey.
func (v *Value) Get(key string) *Value {
	if v.Kind != KindObject {
		return invalidKey
	}

	if m, ok := v.object[key]; ok {
		return m
	}

	return missingKey
}

// Index returns element i of an array. On an object, it returns the member
// with the i-th smallest numeric key, which is how arrays read from
// .properties files appear.
func (v *Value) Index(i int) *Value {
	switch v.Kind {
	case KindArray:
		if i < 0 || i >= len(v.array) {
			return missingKey
		}

		return v.array[i]

	case KindObject:
		type numeric struct {
			key string
			n   uint64
		}

		var keys []numeric

		for k := range v.object {
			if n, err := strconv.ParseUint(k, 10, 64); err == nil {
				keys = append(keys, numeric{key: k, n: n})
			}
		}

		slices.SortFunc(keys, func(a, b numeric) int {
			switch {
			case a.n < b.n:
				return -1
			case a.n > b.n:
				return 1
			}

			return 0
		})

		if i < 0 || i >= len(keys) {
			return invalidKey
		}

		return v.object[keys[i].key]
	}

	return invalidKey
}

// Lookup follows a dotted path expression from v. Numeric segments index
// arrays.
func (v *Value) Lookup(path string) *Value {
	p, err := ParsePath(path)
	if err != nil {
		return BadValue(WrapError(err))
	}

	cur := v

	for _, seg := range p {
		if cur.Kind == KindArray {
			i, err := strconv.Atoi(seg.Key)
			if err != nil {
				return invalidKey
			}

			cur = cur.Index(i)
		} else {
			cur = cur.Get(seg.Key)
		}

		if cur.Kind == KindBad {
			return cur
		}
	}

	return cur
}

// Err returns the error marked by a bad value, or nil.
func (v *Value) Err() *Error {
	if v.Kind != KindBad {
		return nil
	}

	return v.err
}

// Keys returns the member names of an object in sorted order.
func (v *Value) Keys() []string {
	if v.Kind != KindObject {
		return nil
	}

	keys := make([]string, 0, len(v.object))
	for k := range v.object {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Len returns the number of elements or members of a container.
func (v *Value) Len() int {
	switch v.Kind {
	case KindArray:
		return len(v.array)
	case KindObject:
		return len(v.object)
	}

	return 0
}

// AsBool casts v to a boolean. Strings true, yes, on, false, no, and off
// are accepted.
func (v *Value) AsBool() (bool, bool) {
	switch v.Kind {
	case KindBool:
		return v.boolean, true
	case KindString:
		switch v.str {
		case "true", "yes", "on":
			return true, true
		case "false", "no", "off":
			return false, true
		}
	}

	return false, false
}

// AsInt casts v to an integer. Strings are parsed.
func (v *Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.integer, true
	case KindString:
		i, err := strconv.ParseInt(v.str, 10, 64)

		return i, err == nil
	}

	return 0, false
}

// AsFloat casts v to a floating-point number. Strings are parsed.
func (v *Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindReal:
		return v.float, true
	case KindInt:
		return float64(v.integer), true
	case KindString:
		f, err := strconv.ParseFloat(v.str, 64)

		return f, err == nil
	}

	return 0, false
}

// AsString renders a scalar as a string.
func (v *Value) AsString() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.str, true
	case KindBool:
		return strconv.FormatBool(v.boolean), true
	case KindInt:
		return strconv.FormatInt(v.integer, 10), true
	case KindReal:
		return strconv.FormatFloat(v.float, 'f', -1, 64), true
	}

	return "", false
}

type unit struct {
	names []string
	scale float64
}

var byteUnits = []unit{
	{[]string{"", "B", "b", "byte", "bytes"}, 1},
	{[]string{"kB", "kilobyte", "kilobytes"}, 1e3},
	{[]string{"MB", "megabyte", "megabytes"}, 1e6},
	{[]string{"GB", "gigabyte", "gigabytes"}, 1e9},
	{[]string{"TB", "terabyte", "terabytes"}, 1e12},
	{[]string{"PB", "petabyte", "petabytes"}, 1e15},
	{[]string{"EB", "exabyte", "exabytes"}, 1e18},
	{[]string{"ZB", "zettabyte", "zettabytes"}, 1e21},
	{[]string{"YB", "yottabyte", "yottabytes"}, 1e24},
	{[]string{"K", "k", "Ki", "KiB", "kibibyte", "kibibytes"}, 1 << 10},
	{[]string{"M", "m", "Mi", "MiB", "mebibyte", "mebibytes"}, 1 << 20},
	{[]string{"G", "g", "Gi", "GiB", "gibibyte", "gibibytes"}, 1 << 30},
	{[]string{"T", "t", "Ti", "TiB", "tebibyte", "tebibytes"}, 1 << 40},
	{[]string{"P", "p", "Pi", "PiB", "pebibyte", "pebibytes"}, 1 << 50},
	{[]string{"E", "e", "Ei", "EiB", "exbibyte", "exbibytes"}, 1 << 60},
	{[]string{"Z", "z", "Zi", "ZiB", "zebibyte", "zebibytes"}, math.Pow(2, 70)},
	{[]string{"Y", "y", "Yi", "YiB", "yobibyte", "yobibytes"}, math.Pow(2, 80)},
}

// durationUnits scale to nanoseconds. A bare number is milliseconds.
var durationUnits = []unit{
	{[]string{"ns", "nano", "nanos", "nanosecond", "nanoseconds"}, 1},
	{[]string{"us", "micro", "micros", "microsecond", "microseconds"}, 1e3},
	{[]string{"", "ms", "milli", "millis", "millisecond", "milliseconds"}, 1e6},
	{[]string{"s", "second", "seconds"}, 1e9},
	{[]string{"m", "minute", "minutes"}, 60e9},
	{[]string{"h", "hour", "hours"}, 3600e9},
	{[]string{"d", "day", "days"}, 86400e9},
	{[]string{"w", "week", "weeks"}, 7 * 86400e9},
	{[]string{"mo", "month", "months"}, 30 * 86400e9},
	{[]string{"y", "year", "years"}, 365 * 86400e9},
}

// AsBytes casts v to a size in bytes. Numbers are bytes already; strings
// are a number followed by an optional SI or IEC unit.
func (v *Value) AsBytes() (float64, bool) {
	return v.scaled(byteUnits)
}

// AsDuration casts v to a duration. Numbers are milliseconds; strings are
// a number followed by an optional unit from nanoseconds to years.
func (v *Value) AsDuration() (time.Duration, bool) {
	ns, ok := v.scaled(durationUnits)
	if !ok {
		return 0, false
	}

	return time.Duration(math.Round(ns)), true
}

// scaled converts v to the base unit of units. A number carries the unit
// named "".
func (v *Value) scaled(units []unit) (float64, bool) {
	var (
		num    float64
		suffix string
	)

	switch v.Kind {
	case KindInt:
		num = float64(v.integer)
	case KindReal:
		num = v.float
	case KindString:
		var ok bool
		if num, suffix, ok = splitUnit(v.str); !ok {
			return 0, false
		}
	default:
		return 0, false
	}

	for _, u := range units {
		if slices.Contains(u.names, suffix) {
			return num * u.scale, true
		}
	}

	return 0, false
}

// splitUnit splits s into its leading number and the trimmed remainder.
func splitUnit(s string) (float64, string, bool) {
	s = strings.TrimSpace(s)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for ; i < len(s) && (isDigit(s[i]) || s[i] == '.'); i++ {
		digits++
	}

	if digits == 0 {
		return 0, "", false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}

		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}

			i = j
		}
	}

	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", false
	}

	return f, strings.TrimSpace(s[i:]), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Finalize re-runs resolution over v. Finalizing a finalized value yields
// an equal value.
func (v *Value) Finalize(ctx context.Context, opts ...Option) (*Value, error) {
	if v.Kind != KindObject && v.Kind != KindArray {
		return v, nil
	}

	cfg := makeConfig(opts...)

	t, err := merge(ctx, FromValue(v), &cfg)
	if err != nil {
		return nil, err
	}

	return finalize(ctx, t, &cfg)
}

// String renders v as JSON.
func (v *Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return v.Kind.String()
	}

	return string(b)
}

// LogValue implements slog.LogValuer.
func (v *Value) LogValue() slog.Value {
	if v.Kind == KindBad {
		return v.err.LogValue()
	}

	return slog.StringValue(v.String())
}

// render returns the text v contributes to a string concatenation.
func (v *Value) render() string {
	if v.Kind == KindNull {
		return "null"
	}

	s, _ := v.AsString()

	return s
}

func (v *Value) blank() bool {
	return v.Kind == KindString && strings.TrimSpace(v.str) == ""
}

// merge returns the union of objects v and o; members of o win, and
// nested objects merge recursively.
func (v *Value) merge(o *Value) *Value {
	out := make(map[string]*Value, len(v.object)+len(o.object))

	for k, m := range v.object {
		out[k] = m
	}

	for k, m := range o.object {
		if cur, ok := out[k]; ok && cur.Kind == KindObject && m.Kind == KindObject {
			out[k] = cur.merge(m)

			continue
		}

		out[k] = m
	}

	return ObjectValue(out)
}

// raw converts a scalar back to the raw value it finalizes from.
func (v *Value) raw() Raw {
	switch v.Kind {
	case KindBool:
		return Bool(v.boolean)
	case KindInt:
		return Int(v.integer)
	case KindReal:
		return Real(v.float)
	case KindString:
		return Str(v.str)
	case KindBad:
		return ErrorRaw(v.err)
	}

	return Null()
}
