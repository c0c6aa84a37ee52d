package lang

import (
	"log/slog"

	"github.com/google/uuid"
)

// Assignment binds a raw value to a path. It is the unit of the flat stream
// produced by the grammar layer and consumed by the merger.
type Assignment struct {
	Path  Path
	Value Raw
}

// LogValue implements slog.LogValuer.
func (a Assignment) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.Path.String()),
		slog.Any("value", a.Value),
	)
}

// Stream is an ordered list of assignments in document order.
type Stream []Assignment

// Add appends an assignment of v at path. Unquoted keys of path are split
// on '.'.
func (s *Stream) Add(path Path, v Raw) {
	*s = append(*s, Assignment{Path: path.expand(), Value: v})
}

// Append splices the assignments of o after those of s.
func (s *Stream) Append(o Stream) {
	*s = append(*s, o...)
}

// Nest returns a copy of s with every path re-rooted under prefix.
func (s Stream) Nest(prefix Path) Stream {
	prefix = prefix.expand()

	out := make(Stream, len(s))
	for i, a := range s {
		out[i] = Assignment{Path: prefix.Append(a.Path...), Value: a.Value}
	}

	return out
}

// Element returns a copy of s re-rooted under array index i.
func (s Stream) Element(i int64) Stream {
	return s.Nest(Path{Index(i)})
}

// AppendTo returns a copy of s describing one element appended to the array
// at prefix. Every assignment shares itemID so the merger places all of
// them under the same index.
func (s Stream) AppendTo(prefix Path, itemID string) Stream {
	prefix = prefix.expand().Append(Anonymous())

	out := make(Stream, len(s))
	for i, a := range s {
		out[i] = Assignment{
			Path:  prefix.Append(a.Path...),
			Value: appended(a.Value, a.Path.Clone(), itemID),
		}
	}

	return out
}

// Included returns a copy of s with every value wrapped as content of an
// included document, remembering the path it had in that document.
func (s Stream) Included() Stream {
	out := make(Stream, len(s))
	for i, a := range s {
		out[i] = Assignment{
			Path:  a.Path,
			Value: included(a.Value, a.Path.Clone()),
		}
	}

	return out
}

// renewed returns a copy of s whose appended items carry new item ids.
// Assignments that shared an id share its replacement, so an element built
// from several assignments stays one element.
func (s Stream) renewed() Stream {
	ids := make(map[string]string)

	out := make(Stream, len(s))
	for i, a := range s {
		out[i] = Assignment{Path: a.Path, Value: renewRaw(a.Value, ids)}
	}

	return out
}

func renewRaw(r Raw, ids map[string]string) Raw {
	if r.Kind == RawAppend && r.ItemID != "" {
		id, ok := ids[r.ItemID]
		if !ok {
			id = uuid.NewString()
			ids[r.ItemID] = id
		}

		r.ItemID = id
	}

	if r.Inner != nil {
		inner := renewRaw(*r.Inner, ids)
		r.Inner = &inner
	}

	if r.Fallback != nil {
		fb := renewRaw(*r.Fallback, ids)
		r.Fallback = &fb
	}

	if r.Items != nil {
		items := make([]Raw, len(r.Items))
		for i, it := range r.Items {
			items[i] = renewRaw(it, ids)
		}

		r.Items = items
	}

	return r
}

// Rooted returns a copy of s with the inclusion root of every included
// value filled in from its absolute path.
func (s Stream) Rooted() Stream {
	out := make(Stream, len(s))
	for i, a := range s {
		out[i] = a.rooted()
	}

	return out
}

func (a Assignment) rooted() Assignment {
	a.Value = rootRaw(a.Value, a.Path)

	return a
}

// rootRaw fills IncludeRoot of every Included layer of r, outermost first.
// Each layer is rooted against the same absolute path, trimmed by the
// length of the path the value had in its own document.
func rootRaw(r Raw, abs Path) Raw {
	switch r.Kind {
	case RawIncluded:
		if !r.Rooted {
			n := max(len(abs)-len(r.OriginalPath), 0)
			r.IncludeRoot = abs.Prefix(n).Clone()
			r.Rooted = true
		}

		fallthrough

	case RawAppend:
		if r.Inner != nil {
			inner := rootRaw(*r.Inner, abs)
			r.Inner = &inner
		}
	}

	return r
}

// FromValue flattens a finalized value back into a stream.
func FromValue(v *Value) Stream {
	var s Stream

	flattenValue(&s, nil, v)

	return s
}

func flattenValue(s *Stream, at Path, v *Value) {
	switch v.Kind {
	case KindObject:
		if len(v.object) == 0 {
			s.Add(at, EmptyObject())

			return
		}

		for _, k := range v.Keys() {
			flattenValue(s, at.Append(Key(k)), v.object[k])
		}

	case KindArray:
		s.Add(at, EmptyArray())

		for i, e := range v.array {
			flattenValue(s, at.Append(Index(int64(i))), e)
		}

	default:
		s.Add(at, v.raw())
	}
}
