package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// SegmentKind identifies the kind of a [Segment].
type SegmentKind int

// Segment kinds.
const (
	SegmentKey SegmentKind = iota
	SegmentIndex
	SegmentAnonymous
)

// Segment is one step of a [Path].
//
// Unquoted marks a key written without quotes in the source. Such a key is
// split on '.' when its assignment enters the merger; quoted keys keep
// literal dots.
type Segment struct {
	Key      string
	Index    int64
	Kind     SegmentKind
	Unquoted bool
}

// Key returns a literal key segment.
func Key(k string) Segment { return Segment{Kind: SegmentKey, Key: k} }

// UnquotedKey returns a key segment subject to dotted-key expansion.
func UnquotedKey(k string) Segment {
	return Segment{Kind: SegmentKey, Key: k, Unquoted: true}
}

// Index returns an array index segment.
func Index(i int64) Segment { return Segment{Kind: SegmentIndex, Index: i} }

// Anonymous returns the placeholder segment of a value appended with "+=".
// The merger replaces it with a concrete index.
func Anonymous() Segment { return Segment{Kind: SegmentAnonymous} }

// Equal reports whether s and o address the same child. The Unquoted flag
// is ignored.
func (s Segment) Equal(o Segment) bool {
	if s.Kind != o.Kind {
		return false
	}

	switch s.Kind {
	case SegmentKey:
		return s.Key == o.Key
	case SegmentIndex:
		return s.Index == o.Index
	default:
		return true
	}
}

// matches is Equal, except that a numeric key also selects an index.
func (s Segment) matches(o Segment) bool {
	if s.Kind == SegmentKey && o.Kind == SegmentIndex {
		i, err := strconv.ParseInt(s.Key, 10, 64)

		return err == nil && i == o.Index
	}

	return s.Equal(o)
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return strconv.FormatInt(s.Index, 10)
	case SegmentAnonymous:
		return "+"
	}

	if s.Key == "" || strings.ContainsAny(s.Key, ".\"$ \t{}[]") {
		return strconv.Quote(s.Key)
	}

	return s.Key
}

// Path is an ordered list of segments identifying a location in a document.
type Path []Segment

// ParsePath parses a dotted path expression such as a.b."c.d".0.
// Quoted segments keep literal dots; numeric segments remain keys and
// select array elements during lookup.
func ParsePath(s string) (Path, error) {
	var (
		path Path
		part strings.Builder
		quot bool // current segment contained a quoted run
	)

	flush := func(pos int) error {
		key := part.String()
		if !quot {
			key = strings.TrimSpace(key)
		}

		if key == "" && !quot {
			return ErrInvalidKey.With(
				slog.String("path", s),
				slog.Int("offset", pos),
			)
		}

		path = append(path, Key(key))
		part.Reset()

		quot = false

		return nil
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '.':
			if err := flush(i); err != nil {
				return nil, err
			}

		case '"':
			end := i + 1
			for end < len(s) && s[end] != '"' {
				if s[end] == '\\' {
					end++
				}

				end++
			}

			if end >= len(s) {
				return nil, ErrInvalidKey.With(
					slog.String("path", s),
					slog.String("reason", "unterminated quote"),
				)
			}

			unq, err := strconv.Unquote(s[i : end+1])
			if err != nil {
				return nil, ErrInvalidKey.Wrap(err).With(slog.String("path", s))
			}

			part.WriteString(unq)

			quot = true
			i = end

		default:
			part.WriteByte(c)
		}
	}

	if err := flush(len(s)); err != nil {
		return nil, err
	}

	return path, nil
}

// Segments returns the segments of p.
func (p Path) Segments() []Segment { return p }

// Len returns the number of segments.
func (p Path) Len() int { return len(p) }

// Prefix returns the first n segments of p.
func (p Path) Prefix(n int) Path {
	if n > len(p) {
		n = len(p)
	}

	return p[:n:n]
}

// StartsWith reports whether prefix is a prefix of p.
func (p Path) StartsWith(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}

	for i, s := range prefix {
		if !p[i].Equal(s) {
			return false
		}
	}

	return true
}

// Equal reports whether p and o address the same location.
func (p Path) Equal(o Path) bool {
	return len(p) == len(o) && p.StartsWith(o)
}

// Append returns a new path of p followed by segs.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)

	return append(out, segs...)
}

// Clone returns a copy of p that shares no storage with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}

	return append(make(Path, 0, len(p)), p...)
}

// String renders p as a dotted path expression.
func (p Path) String() string {
	var sb strings.Builder

	for i, s := range p {
		if i > 0 {
			sb.WriteByte('.')
		}

		sb.WriteString(s.String())
	}

	return sb.String()
}

// LogValue implements slog.LogValuer.
func (p Path) LogValue() slog.Value { return slog.StringValue(p.String()) }

// envName renders p as the name of its fallback environment variable.
func (p Path) envName() string {
	parts := make([]string, len(p))
	for i, s := range p {
		if s.Kind == SegmentKey {
			parts[i] = s.Key
		} else {
			parts[i] = s.String()
		}
	}

	return strings.Join(parts, ".")
}

// key returns an unambiguous map key for p.
func (p Path) key() string {
	var sb strings.Builder

	for _, s := range p {
		switch s.Kind {
		case SegmentKey:
			sb.WriteString(strconv.Quote(s.Key))
		case SegmentIndex:
			sb.WriteByte('[')
			sb.WriteString(strconv.FormatInt(s.Index, 10))
			sb.WriteByte(']')
		default:
			sb.WriteString("[+]")
		}
	}

	return sb.String()
}

// expand splits every unquoted key on '.', producing the path the merger
// operates on.
func (p Path) expand() Path {
	var out Path

	for _, s := range p {
		if s.Kind != SegmentKey || !s.Unquoted {
			out = append(out, s)

			continue
		}

		for k := range strings.SplitSeq(s.Key, ".") {
			out = append(out, Key(k))
		}
	}

	return out
}
