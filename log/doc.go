// Package log is a small structured logger over [log/slog].
//
// A [Logger] is built once from functional options and is safe for
// concurrent use:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//
//	logger.Info("loaded", slog.String("file", "app.conf"))
//
// Records carry [slog.Attr] values only; there are no printf-style calls.
// [Logger.With] adds attributes to every record of the derived logger, and
// [Logger.Wrap] derives a logger with different options.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-key detail of
// document resolution. The other levels are those of slog.
//
// # Output
//
// [FormatJSON] and [FormatText] map to the slog handlers of the same kind.
// With [WithPretty] (the default) a record is rendered for people instead:
// text keeps values unquoted and flattens groups into dotted keys, JSON is
// indented. Pretty output is colorized according to [WithColor]; in
// [ColorAuto] mode only when writing to a terminal and NO_COLOR is unset.
//
// Times are formatted by [WithTimeLayout], which accepts the names of the
// [time] layouts as well as literal layouts. The layout "none" omits them.
//
// # Package Logger
//
// The package-level functions ([Info], [DebugContext], ...) write through a
// default logger on stderr. [Config] reconfigures it, and [Default]
// returns it for passing to code that takes a Logger. Functions without a
// context argument use [DefaultContextProvider].
package log
