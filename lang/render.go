package lang

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
)

// WriteHOCON renders v as a HOCON document indented by indent spaces per
// level. A root object is written without braces. Bad values are written
// as null followed by a comment naming the error.
func (v *Value) WriteHOCON(w io.Writer, indent int) error {
	bw := bufio.NewWriter(w)
	r := hoconWriter{w: bw, indent: strings.Repeat(" ", max(indent, 0))}

	if v.Kind == KindObject {
		r.members(v, 0)
	} else {
		r.value(v, 0)
		r.w.WriteByte('\n')
	}

	return bw.Flush()
}

type hoconWriter struct {
	w      *bufio.Writer
	indent string
}

func (r hoconWriter) pad(depth int) {
	for range depth {
		r.w.WriteString(r.indent)
	}
}

func (r hoconWriter) members(v *Value, depth int) {
	for _, k := range v.Keys() {
		m := v.object[k]

		r.pad(depth)
		r.w.WriteString(hoconKey(k))

		if m.Kind == KindObject {
			r.w.WriteByte(' ')
		} else {
			r.w.WriteString(" = ")
		}

		r.value(m, depth)
		r.w.WriteByte('\n')
	}
}

func (r hoconWriter) value(v *Value, depth int) {
	switch v.Kind {
	case KindObject:
		if v.Len() == 0 {
			r.w.WriteString("{}")

			return
		}

		r.w.WriteString("{\n")
		r.members(v, depth+1)
		r.pad(depth)
		r.w.WriteByte('}')

	case KindArray:
		if v.Len() == 0 {
			r.w.WriteString("[]")

			return
		}

		r.w.WriteString("[\n")

		for i, e := range v.array {
			r.pad(depth + 1)
			r.value(e, depth+1)

			if i < len(v.array)-1 {
				r.w.WriteByte(',')
			}

			r.w.WriteByte('\n')
		}

		r.pad(depth)
		r.w.WriteByte(']')

	case KindString:
		r.w.WriteString(quote(v.str))

	case KindBad:
		r.w.WriteString("null # ")
		r.w.WriteString(strings.ReplaceAll(v.err.Error(), "\n", " "))

	case KindNull:
		r.w.WriteString("null")

	case KindReal:
		s, _ := v.AsString()
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}

		r.w.WriteString(s)

	default:
		s, _ := v.AsString()
		r.w.WriteString(s)
	}
}

// hoconKey quotes k unless it is a plain unquoted key.
func hoconKey(k string) string {
	if k == "" {
		return quote(k)
	}

	for _, c := range k {
		ok := c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !ok {
			return quote(k)
		}
	}

	return k
}

// quote renders s as a JSON string, which HOCON reads back unchanged.
func quote(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// WriteProperties renders the leaves of v as a Java properties file, one
// dotted path per line in sorted key order. Array elements use their index
// as the path segment, null is written as an empty value, and empty
// containers are omitted.
func (v *Value) WriteProperties(w io.Writer) error {
	p := properties.NewProperties()
	p.DisableExpansion = true

	if err := setProperties(p, nil, v); err != nil {
		return err
	}

	if _, err := p.Write(w, properties.UTF8); err != nil {
		return ErrIO.Wrap(err)
	}

	return nil
}

func setProperties(p *properties.Properties, at Path, v *Value) error {
	var text string

	switch v.Kind {
	case KindObject:
		for _, k := range v.Keys() {
			if err := setProperties(p, at.Append(Key(k)), v.object[k]); err != nil {
				return err
			}
		}

		return nil

	case KindArray:
		for i, e := range v.array {
			if err := setProperties(p, at.Append(Index(int64(i))), e); err != nil {
				return err
			}
		}

		return nil

	case KindNull:
	case KindBad:
		text = v.err.Error()
	default:
		text = v.render()
	}

	if _, _, err := p.Set(at.envName(), text); err != nil {
		return ErrIO.Wrap(err)
	}

	return nil
}
