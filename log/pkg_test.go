package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelDebug),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
		msg   string
	}{
		{"Debug", Debug, "DEBUG", "debug message"},
		{"Info", Info, "INFO", "info message"},
		{"Warn", Warn, "WARN", "warn message"},
		{"Error", Error, "ERROR", "error message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn(tt.msg, slog.String("key", "value"))

			output := buf.String()
			if !strings.Contains(output, tt.msg) {
				t.Errorf("expected output to contain message %q, got: %s", tt.msg, output)
			}
			if !strings.Contains(output, `"level":"`+tt.level+`"`) {
				t.Errorf("expected output to contain level %q, got: %s", tt.level, output)
			}
			if !strings.Contains(output, `"key":"value"`) {
				t.Errorf("expected output to contain attribute, got: %s", output)
			}
		})
	}
}

func TestPackage_Trace_RespectsLevel(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithPretty(false))
	TraceContext(t.Context(), "hidden")

	if buf.Len() != 0 {
		t.Fatalf("trace logged at debug level: %s", buf.String())
	}

	Config(WithLevel(LevelTrace))
	TraceContext(t.Context(), "shown")

	if !strings.Contains(buf.String(), `"level":"TRACE"`) {
		t.Errorf("expected trace record, got: %s", buf.String())
	}
}

func TestPackage_ContextAndWith(t *testing.T) {
	original := Default()
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelDebug),
		WithFormat(FormatText),
		WithTimeLayout("none"),
		WithColor(ColorNever))

	ctx := t.Context()

	DebugContext(ctx, "a")
	InfoContext(ctx, "b")
	WarnContext(ctx, "c")
	ErrorContext(ctx, "d")
	With(slog.String("file", "x.conf")).Info("e")

	want := "level=DEBUG msg=a\nlevel=INFO msg=b\nlevel=WARN msg=c\n" +
		"level=ERROR msg=d\nlevel=INFO msg=e file=x.conf\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
