package log

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a record. It extends [slog.Level] with Trace,
// which sits one step below Debug.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the level of a Logger made without [WithLevel].
const DefaultLevel = LevelInfo

var levelNames = map[Level]string{
	LevelTrace: "trace",
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

// String returns the lowercase name of l. Levels between the named ones
// render as slog does, e.g. "INFO+2".
func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}

	return slog.Level(l).String()
}

// Levels returns the names of the defined levels, lowest first.
func Levels() iter.Seq[string] {
	return names(LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError)
}

// names yields the String of each of vals in order.
func names[T fmt.Stringer](vals ...T) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range vals {
			if !yield(v.String()) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, case-insensitively. Besides
// "trace", s may be anything [slog.Level.UnmarshalText] accepts, such as
// "warn" or "INFO+2". Unrecognized text yields [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, LevelTrace.String()) {
		return LevelTrace
	}

	var l slog.Level
	if l.UnmarshalText([]byte(s)) != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the encoding of records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a Logger made without [WithFormat].
const DefaultFormat = FormatJSON

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Formats returns the names of the output formats, default first.
func Formats() iter.Seq[string] { return names(FormatJSON, FormatText) }

// ParseFormat returns the format named by s, or [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

// ColorMode selects when pretty output is colorized.
type ColorMode int

const (
	// ColorAuto colorizes only when the output is a terminal and NO_COLOR
	// is unset.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// DefaultColor is the default color mode.
const DefaultColor = ColorAuto

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ColorModes returns the names of the color modes, default first.
func ColorModes() iter.Seq[string] { return names(ColorAuto, ColorAlways, ColorNever) }

// ParseColorMode parses "auto", "always", or "never". Anything else is
// [DefaultColor].
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "on", "yes":
		return ColorAlways
	case "never", "off", "no":
		return ColorNever
	default:
		return DefaultColor
	}
}

// FormatTime renders a record time. An empty result drops the time.
type FormatTime func(time.Time) string

// DefaultTimeLayout formats times unless [WithTimeLayout] says otherwise.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller leaves the call site out of records.
const DefaultCaller = false

// DefaultPretty enables the pretty handler.
const DefaultPretty = true

// config is everything a handler is built from. The mutex guards the
// fields against an Option applied while records are written.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	color      ColorMode
	caller     bool
	pretty     bool
}

// makeConfig returns the defaults for w overridden by opts.
func makeConfig(w io.Writer, opts ...Option) config {
	c := config{mutex: &sync.RWMutex{}}

	return apply(apply(c, WithDefaults(w)), opts...)
}

// clone copies c under a fresh mutex, then applies opts.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// replaceAttr renders the time with the configured layout, dropping it for
// an empty layout, and names levels by [Level.String] in upper case.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			s := c.formatTime(t)
			if s == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(s)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// handler builds the slog.Handler described by c with opts applied.
func (c config) handler(opts ...Option) slog.Handler {
	cfg := apply(c, opts...)

	ho := &slog.HandlerOptions{
		AddSource:   cfg.caller,
		Level:       slog.Level(cfg.level),
		ReplaceAttr: cfg.replaceAttr,
	}

	switch {
	case cfg.format != FormatJSON && cfg.format != FormatText:
		return slog.DiscardHandler

	case cfg.pretty:
		return newPrettyHandler(cfg.output, ho,
			cfg.format == FormatJSON, colorize(cfg.output, cfg.color))

	case cfg.format == FormatJSON:
		return slog.NewJSONHandler(cfg.output, ho)

	default:
		return slog.NewTextHandler(cfg.output, ho)
	}
}

// Option transforms a logger configuration. Options never modify the config
// they are given; they return an updated copy.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// set returns an Option that applies fn to a config while holding its lock.
func set(fn func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		fn(&c)

		return c
	}
}

// WithDefaults resets every setting to its package default and sends
// records to w.
func WithDefaults(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return set(func(c *config) {
		c.output = w
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.color = DefaultColor
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput sends records to w, or discards them when w is nil.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return set(func(c *config) { c.output = w })
}

// WithLevel drops records below level.
func WithLevel(level Level) Option {
	return set(func(c *config) { c.level = level })
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return set(func(c *config) { c.format = format })
}

// WithTimeLayout formats record times with layout, which is either a name
// from [time] such as "RFC3339Nano" (any case, punctuation ignored) or a
// literal layout. A blank layout or "none" drops the time.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return set(func(c *config) { c.formatTime = format })
}

// WithCaller adds the logging call site to each record.
func WithCaller(enable bool) Option {
	return set(func(c *config) { c.caller = enable })
}

// WithPretty renders records for reading. Text records keep values
// unquoted and flatten groups into dotted keys; JSON records are indented
// over several lines.
func WithPretty(enable bool) Option {
	return set(func(c *config) { c.pretty = enable })
}

// WithColor returns a functional option that selects when pretty output is
// colorized.
func WithColor(mode ColorMode) Option {
	return set(func(c *config) { c.color = mode })
}

// namedLayouts lists the [time] layouts selectable by name, each under
// every alias it answers to.
var namedLayouts = []struct {
	layout  string
	aliases []string
}{
	{time.RFC3339, []string{"rfc3339"}},
	{time.RFC3339Nano, []string{"rfc3339nano"}},
	{time.RFC822, []string{"rfc822"}},
	{time.RFC822Z, []string{"rfc822z"}},
	{time.RFC850, []string{"rfc850"}},
	{time.ANSIC, []string{"ansic"}},
	{time.UnixDate, []string{"unixdate"}},
	{time.RubyDate, []string{"rubydate"}},
	{time.Kitchen, []string{"kitchen"}},
	{time.DateTime, []string{"datetime"}},
	{time.DateOnly, []string{"date", "dateonly"}},
	{time.TimeOnly, []string{"time", "timeonly"}},
	{time.Stamp, []string{"stamp"}},
	{time.StampMilli, []string{"stampmilli", "milli", "ms"}},
	{time.StampMicro, []string{"stampmicro", "micro", "us"}},
	{time.StampNano, []string{"stampnano", "nano", "ns"}},
	{"", []string{"none"}},
}

// layoutName folds layout to the form aliases are written in: lowercase
// letters and digits only.
func layoutName(layout string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}

		return -1
	}, layout)
}

func makeFormatTimeFunc(layout string) FormatTime {
	name := layoutName(layout)

	for _, nl := range namedLayouts {
		if slices.Contains(nl.aliases, name) {
			layout = nl.layout

			break
		}
	}

	if name == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
