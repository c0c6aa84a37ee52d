package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/lang"
)

// initCLI is a minimal command line with flags of each kind init writes.
type initCLI struct {
	Engine Engine `embed:""`

	Name  string   `default:"demo"`
	Tags  []string `default:"a,b"`
	Empty string
	Ratio float64 `default:"0.5"`
}

func parseInit(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Vars{ConfigIdentifier: confPath},
		cli.Engine.Vars(),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.conf")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing = true"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			ctx := parseInit(t, confPath, "--strict", "--http-timeout=5s")

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			// The generated file loads through the engine it configures.
			v, err := lang.LoadFile(t.Context(), confPath)
			if err != nil {
				t.Fatalf("generated config does not load: %v", err)
			}

			conf := v.Get(ConfigObject)

			if b, _ := conf.Get("strict").AsBool(); !b {
				t.Errorf("config.strict = %v, want true", conf.Get("strict"))
			}

			if d, _ := conf.Get("http-timeout").AsDuration(); d != 5*time.Second {
				t.Errorf("config.http-timeout = %v, want 5s", d)
			}

			if n, _ := conf.Get("max-include-depth").AsInt(); n != int64(lang.DefaultMaxIncludeDepth) {
				t.Errorf("config.max-include-depth = %d, want %d", n, lang.DefaultMaxIncludeDepth)
			}

			if s, _ := conf.Get("name").AsString(); s != "demo" {
				t.Errorf("config.name = %q, want %q", s, "demo")
			}

			if n := conf.Get("tags").Len(); n != 2 {
				t.Errorf("len(config.tags) = %d, want 2", n)
			}

			if f, _ := conf.Get("ratio").AsFloat(); f != 0.5 {
				t.Errorf("config.ratio = %v, want 0.5", f)
			}

			if conf.Get("empty").Err() == nil {
				t.Error("config.empty written for an empty flag")
			}

			if conf.Get("help").Err() == nil {
				t.Error("config.help written")
			}
		})
	}
}

// TestInitWithInvalidPath tests that an unwritable path fails.
func TestInitWithInvalidPath(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "missing", "config.conf")
	ctx := parseInit(t, confPath)

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

// TestFlagValue tests the conversion of flag values.
func TestFlagValue(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  lang.Kind
		isNil bool
	}{
		{name: "bool", in: true, want: lang.KindBool},
		{name: "string", in: "x", want: lang.KindString},
		{name: "empty_string", in: "", isNil: true},
		{name: "int", in: 42, want: lang.KindInt},
		{name: "float", in: 3.14, want: lang.KindReal},
		{name: "duration", in: time.Minute, want: lang.KindString},
		{name: "strings", in: []string{"a"}, want: lang.KindArray},
		{name: "empty_strings", in: []string{}, isNil: true},
		{name: "nil", in: nil, isNil: true},
		{name: "other", in: struct{ A int }{1}, want: lang.KindString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flagValue(tt.in)

			if tt.isNil {
				if got != nil {
					t.Errorf("flagValue(%v) = %v, want nil", tt.in, got)
				}

				return
			}

			if got == nil || got.Kind != tt.want {
				t.Errorf("flagValue(%v) = %v, want kind %v", tt.in, got, tt.want)
			}
		})
	}
}
