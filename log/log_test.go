package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// plain returns a logger with deterministic output: no time, no color.
func plain(buf *bytes.Buffer, opts ...Option) Logger {
	base := []Option{WithTimeLayout("none"), WithColor(ColorNever)}

	return Make(buf, append(base, opts...)...)
}

func TestMake_Defaults(t *testing.T) {
	l := Make(nil)

	switch {
	case l.level != DefaultLevel:
		t.Errorf("level = %v, want %v", l.level, DefaultLevel)
	case l.format != DefaultFormat:
		t.Errorf("format = %v, want %v", l.format, DefaultFormat)
	case l.color != DefaultColor:
		t.Errorf("color = %v, want %v", l.color, DefaultColor)
	case l.caller != DefaultCaller || l.pretty != DefaultPretty:
		t.Errorf("caller, pretty = %v, %v", l.caller, l.pretty)
	}

	// A nil writer discards.
	l.Error("dropped")
}

func TestLogger_LevelThreshold(t *testing.T) {
	emit := map[string]func(Logger, string, ...slog.Attr){
		"trace": Logger.Trace,
		"debug": Logger.Debug,
		"info":  Logger.Info,
		"warn":  Logger.Warn,
		"error": Logger.Error,
	}

	order := []string{"trace", "debug", "info", "warn", "error"}

	for i, floor := range order {
		t.Run(floor, func(t *testing.T) {
			for j, name := range order {
				var buf bytes.Buffer

				emit[name](plain(&buf, WithLevel(ParseLevel(floor))), "resolved")

				if got, want := buf.Len() > 0, j >= i; got != want {
					t.Errorf("%s at floor %s: logged = %v, want %v", name, floor, got, want)
				}
			}
		})
	}
}

func TestLogger_LevelNames(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithLevel(LevelTrace), WithFormat(FormatText))
	l.Trace("t")
	l.Debug("d")

	want := "level=TRACE msg=t\nlevel=DEBUG msg=d\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogger_PlainJSON(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithPretty(false)).Warn("include skipped",
		slog.String("file", "missing.conf"),
		slog.Int("depth", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v: %s", err, buf.String())
	}

	if _, ok := rec[slog.TimeKey]; ok {
		t.Errorf("time present with layout none: %v", rec)
	}

	for k, want := range map[string]any{
		"level": "WARN",
		"msg":   "include skipped",
		"file":  "missing.conf",
		"depth": float64(2),
	} {
		if rec[k] != want {
			t.Errorf("%s = %v, want %v", k, rec[k], want)
		}
	}
}

func TestLogger_PlainText(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithPretty(false), WithFormat(FormatText)).
		Info("merged", slog.String("key", "a.b"))

	want := "level=INFO msg=merged key=a.b\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithPretty(false), WithTimeLayout("kitchen")).Info("x")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}

	s, _ := rec[slog.TimeKey].(string)
	if !strings.HasSuffix(s, "AM") && !strings.HasSuffix(s, "PM") {
		t.Errorf("time %q is not in kitchen layout", s)
	}
}

func TestLogger_CallerNamesLoggingSite(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer

		plain(&buf, WithCaller(true), WithPretty(pretty), WithFormat(FormatText)).
			Info("here")

		if !strings.Contains(buf.String(), "log_test.go:") {
			t.Errorf("pretty=%v: source missing: %s", pretty, buf.String())
		}
	}

	var buf bytes.Buffer

	plain(&buf, WithFormat(FormatText)).Info("here")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("source present without caller: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	base := plain(&buf, WithFormat(FormatText))
	scoped := base.With(slog.String("file", "app.conf"))

	scoped.Info("parsed")
	base.Info("done")

	want := "level=INFO msg=parsed file=app.conf\nlevel=INFO msg=done\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := plain(&buf, WithFormat(FormatText))
	quiet := base.Wrap(WithLevel(LevelError))

	quiet.Warn("hidden")
	base.Warn("shown")

	if got := buf.String(); got != "level=WARN msg=shown\n" {
		t.Errorf("got %q", got)
	}

	if base.level != DefaultLevel {
		t.Errorf("Wrap changed its receiver: level = %v", base.level)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("x")
	l.InfoContext(t.Context(), "x")
	l.Error("x")

	if l.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on the zero Logger built a handler")
	}

	var buf bytes.Buffer

	l.Wrap(WithOutput(&buf), WithPretty(false)).Info("now on")

	if !strings.Contains(buf.String(), `"msg":"now on"`) {
		t.Errorf("Wrap on the zero Logger: %q", buf.String())
	}
}

func TestLogger_ContextVariants(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithLevel(LevelTrace), WithFormat(FormatText))
	ctx := t.Context()

	l.TraceContext(ctx, "1")
	l.DebugContext(ctx, "2")
	l.InfoContext(ctx, "3")
	l.WarnContext(ctx, "4")
	l.ErrorContext(ctx, "5")

	if n := strings.Count(buf.String(), "\n"); n != 5 {
		t.Errorf("got %d records:\n%s", n, buf.String())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	l := plain(&buf, WithPretty(false))

	var wg sync.WaitGroup

	for i := range 64 {
		wg.Go(func() {
			l.Info("source loaded", slog.Int("id", i))
		})
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 64 {
		t.Fatalf("got %d lines", len(lines))
	}

	for _, ln := range lines {
		if !json.Valid([]byte(ln)) {
			t.Errorf("interleaved record: %q", ln)
		}
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	for _, pretty := range []bool{false, true} {
		l := Make(nil, WithPretty(pretty)).With(slog.String("file", "app.conf"))

		b.Run(map[bool]string{false: "plain", true: "pretty"}[pretty], func(b *testing.B) {
			for i := range b.N {
				l.Info("resolved", slog.Int("n", i))
			}
		})
	}
}
