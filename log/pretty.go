package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// colorize reports whether output written to w is colorized under mode.
func colorize(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette holds the colors of each part of a pretty record.
type palette struct {
	levels map[slog.Level]*color.Color
	key    *color.Color
	msg    *color.Color
	str    *color.Color
	num    *color.Color
	yes    *color.Color
	no     *color.Color
	dur    *color.Color
	when   *color.Color
	null   *color.Color
	fail   *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}

		return c
	}

	return palette{
		key:  mk(color.FgHiBlack),
		msg:  mk(color.Bold),
		str:  mk(color.FgCyan),
		num:  mk(color.FgYellow),
		yes:  mk(color.FgGreen),
		no:   mk(color.FgRed),
		dur:  mk(color.FgMagenta),
		when: mk(color.FgBlue),
		null: mk(color.FgHiBlack),
		fail: mk(color.FgHiRed),
		levels: map[slog.Level]*color.Color{
			slog.Level(LevelTrace): mk(color.FgHiBlack),
			slog.LevelDebug:        mk(color.FgBlue),
			slog.LevelInfo:         mk(color.FgGreen),
			slog.LevelWarn:         mk(color.FgYellow),
			slog.LevelError:        mk(color.FgRed, color.Bold),
		},
	}
}

// level returns the color of the highest named level not above l.
func (p palette) level(l slog.Level) *color.Color {
	for _, at := range []slog.Level{
		slog.LevelError,
		slog.LevelWarn,
		slog.LevelInfo,
		slog.LevelDebug,
	} {
		if l >= at {
			return p.levels[at]
		}
	}

	return p.levels[slog.Level(LevelTrace)]
}

// prefixed is an attribute added by WithAttrs under the groups open at the
// time.
type prefixed struct {
	prefix string
	attr   slog.Attr
}

// prettyHandler writes one record per line as key=value pairs, or as an
// indented object when json is set. Group keys are joined with '.' except
// for group values in json mode, which nest.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	prefix string
	attrs  []prefixed
	json   bool
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	json, colored bool,
) *prettyHandler {
	return &prettyHandler{
		opts: *opts,
		mu:   &sync.Mutex{},
		w:    w,
		pal:  newPalette(colored),
		json: json,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = make([]prefixed, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		c.attrs = append(c.attrs, prefixed{prefix: h.prefix, attr: a})
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ln := &line{pal: h.pal, json: h.json}
	if h.json {
		ln.buf.WriteByte('{')
	}

	if !r.Time.IsZero() {
		ln.attr(1, "", h.builtin(slog.Time(slog.TimeKey, r.Time)))
	}

	if a := h.builtin(slog.Any(slog.LevelKey, r.Level)); a.Key != "" {
		ln.key(1, a.Key)
		h.pal.level(r.Level).Fprint(&ln.buf, a.Value.String())
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			ln.attr(1, "", h.builtin(
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line))))
		}
	}

	if a := h.builtin(slog.String(slog.MessageKey, r.Message)); a.Key != "" {
		ln.key(1, a.Key)
		h.pal.msg.Fprint(&ln.buf, a.Value.String())
	}

	for _, p := range h.attrs {
		ln.attr(1, p.prefix, p.attr)
	}

	r.Attrs(func(a slog.Attr) bool {
		ln.attr(1, h.prefix, a)

		return true
	})

	if h.json {
		ln.buf.WriteString("\n}")
	}

	ln.buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(ln.buf.Bytes())

	return err
}

// builtin applies ReplaceAttr to one of the record's own fields.
func (h *prettyHandler) builtin(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// line accumulates the rendering of one record.
type line struct {
	buf   bytes.Buffer
	pal   palette
	count int
	json  bool
}

func (ln *line) key(depth int, k string) {
	if ln.json {
		if ln.count > 0 {
			ln.buf.WriteByte(',')
		}

		ln.buf.WriteByte('\n')
		ln.buf.WriteString(strings.Repeat("  ", depth))
		ln.pal.key.Fprint(&ln.buf, k)
		ln.buf.WriteString(": ")
	} else {
		if ln.count > 0 {
			ln.buf.WriteByte(' ')
		}

		ln.pal.key.Fprint(&ln.buf, k)
		ln.buf.WriteByte('=')
	}

	ln.count++
}

func (ln *line) attr(depth int, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Key == "" && a.Value.Kind() != slog.KindGroup {
		return
	}

	if a.Value.Kind() != slog.KindGroup {
		ln.key(depth, prefix+a.Key)
		ln.value(a.Value)

		return
	}

	group := a.Value.Group()

	switch {
	case len(group) == 0:
		return

	case a.Key == "":
		for _, g := range group {
			ln.attr(depth, prefix, g)
		}

	case !ln.json:
		for _, g := range group {
			ln.attr(depth, prefix+a.Key+".", g)
		}

	default:
		ln.key(depth, prefix+a.Key)
		ln.buf.WriteByte('{')

		outer := ln.count
		ln.count = 0

		for _, g := range group {
			ln.attr(depth+1, "", g)
		}

		ln.count = outer

		ln.buf.WriteByte('\n')
		ln.buf.WriteString(strings.Repeat("  ", depth))
		ln.buf.WriteByte('}')
	}
}

func (ln *line) value(v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		ln.pal.str.Fprint(&ln.buf, v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		ln.pal.num.Fprint(&ln.buf, v.String())

	case slog.KindBool:
		if v.Bool() {
			ln.pal.yes.Fprint(&ln.buf, "true")
		} else {
			ln.pal.no.Fprint(&ln.buf, "false")
		}

	case slog.KindDuration:
		ln.pal.dur.Fprint(&ln.buf, v.Duration().String())

	case slog.KindTime:
		ln.pal.when.Fprint(&ln.buf, v.Time().Format("2006-01-02T15:04:05Z07:00"))

	default:
		switch x := v.Any().(type) {
		case nil:
			ln.pal.null.Fprint(&ln.buf, "null")
		case error:
			ln.pal.fail.Fprint(&ln.buf, x.Error())
		default:
			ln.pal.str.Fprint(&ln.buf, fmt.Sprint(x))
		}
	}
}
