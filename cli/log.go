package cli

import (
	"context"
	"encoding"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/log"
)

// The string flag types below reconfigure the default logger as kong
// decodes them, so errors reported while parsing already honor them.
type (
	logLevel  string
	logFormat string
	logColor  string
)

func (l *logLevel) UnmarshalText(text []byte) error {
	return configure(l, text, levelOption)
}

func (f *logFormat) UnmarshalText(text []byte) error {
	return configure(f, text, formatOption)
}

func (c *logColor) UnmarshalText(text []byte) error {
	return configure(c, text, colorOption)
}

func levelOption(s string) log.Option  { return log.WithLevel(log.ParseLevel(s)) }
func formatOption(s string) log.Option { return log.WithFormat(log.ParseFormat(s)) }
func colorOption(s string) log.Option  { return log.WithColor(log.ParseColorMode(s)) }

func configure[T ~string](dst *T, text []byte, opt func(string) log.Option) error {
	*dst = T(text)
	log.Config(opt(string(text)))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevel}"  enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"${logFormat}" enum:"${logFormatEnum}" help:"Set log format."`
	Color      logColor  `default:"${logColor}"  enum:"${logColorEnum}"  help:"Colorize pretty output."`
	TimeLayout string    `default:"RFC3339"                              help:"Set timestamp format."`
	Caller     bool      `default:"false"                                help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                                 help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevel":      log.DefaultLevel.String(),
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormat":     log.DefaultFormat.String(),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
		"logColor":      log.DefaultColor.String(),
		"logColorEnum":  strings.Join(slices.Collect(log.ColorModes()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the parsed logger flags. The returned function logs the
// end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		levelOption(string(f.Level)),
		formatOption(string(f.Format)),
		colorOption(string(f.Color)),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("color", string(f.Color)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "logger stopped") }
}

// scan applies the log flags found in args before kong parses them. Kong
// only decodes flags in the order given, and the boolean flags have no
// decoding hook at all, so without this pass a late --log-level or any
// --[no-]log-pretty would not affect logging during the parse.
func (f *logConfig) scan(args []string) {
	values := map[string]encoding.TextUnmarshaler{
		"level":  &f.Level,
		"format": &f.Format,
		"color":  &f.Color,
	}

	bools := map[string]func(bool){
		"pretty": func(v bool) {
			f.Pretty = v
			log.Config(log.WithPretty(v))
		},
		"caller": func(v bool) {
			f.Caller = v
			log.Config(log.WithCaller(v))
		},
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		negate := strings.HasPrefix(arg, "--no-log-")

		name, ok := strings.CutPrefix(arg, "--log-")
		if negate {
			name, ok = strings.CutPrefix(arg, "--no-log-")
		}

		if !ok {
			continue
		}

		name, value, assigned := strings.Cut(name, "=")

		if u, ok := values[name]; ok && !negate {
			// "--log-level debug" takes the next argument as its value.
			if !assigned && i+1 < len(args) && args[i+1] != "" &&
				args[i+1][0] != '-' {
				value = args[i+1]
				i++
			}

			_ = u.UnmarshalText([]byte(value))

			continue
		}

		set, ok := bools[name]
		if !ok {
			continue
		}

		// Booleans take a value only as "--log-pretty=false".
		v := true
		if assigned {
			var err error
			if v, err = strconv.ParseBool(value); err != nil {
				continue
			}
		}

		set(v != negate)
	}
}
