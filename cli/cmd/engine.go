package cmd

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/lang"
	"github.com/ardnew/hocon/log"
)

// Engine holds the loader flags shared by every command.
type Engine struct {
	Strict          bool          `                             help:"Abort on the first unresolved reference or failed include." negatable:""`
	SystemEnv       bool          `default:"true"               help:"Resolve missing substitutions from the environment."         negatable:""`
	MaxIncludeDepth int           `default:"${maxIncludeDepth}" help:"Maximum nesting of include directives."`
	ExternalURL     bool          `default:"true"               help:"Allow url(...) includes."                                    negatable:"" name:"external-url"`
	HTTPTimeout     time.Duration `default:"${httpTimeout}"     help:"Timeout of one url(...) include."                                         name:"http-timeout"`
}

func (Engine) Vars() kong.Vars {
	return kong.Vars{
		"maxIncludeDepth": strconv.Itoa(lang.DefaultMaxIncludeDepth),
		"httpTimeout":     lang.DefaultHTTPTimeout.String(),
	}
}

func (Engine) Group() kong.Group {
	var group kong.Group

	group.Key = "engine"
	group.Title = "Resolution options"

	return group
}

// Options returns the loader options selected by e.
func (e Engine) Options() []lang.Option {
	return []lang.Option{
		lang.WithStrict(e.Strict),
		lang.WithSystemEnv(e.SystemEnv),
		lang.WithMaxIncludeDepth(e.MaxIncludeDepth),
		lang.WithExternalURL(e.ExternalURL),
		lang.WithHTTPTimeout(e.HTTPTimeout),
		lang.WithLogger(log.Default()),
	}
}

// Load resolves sources as one document. Later sources override earlier
// ones, and substitutions may refer across them. The source "-" reads stdin,
// with includes relative to the working directory.
func (e Engine) Load(ctx context.Context, sources ...string) (*lang.Value, error) {
	sources = uniqueSources(sources)
	if len(sources) == 0 {
		return nil, ErrNoSource
	}

	// One loader serves every source, so a file included from several
	// sources is parsed once.
	opts := append(e.Options(), lang.WithLoader(lang.NewFileLoader(e.HTTPTimeout)))

	var s lang.Stream

	for _, src := range sources {
		part, err := e.parse(ctx, src, opts)
		if err != nil {
			return nil, ErrLoad.With(slog.String("source", src)).Wrap(err)
		}

		s.Append(part)
	}

	log.DebugContext(ctx, "parsed sources",
		slog.Int("sources", len(sources)),
		slog.Int("assignments", len(s)),
	)

	t, err := lang.Merge(ctx, s, opts...)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	v, err := lang.Finalize(ctx, t, opts...)
	if err != nil {
		return nil, ErrLoad.Wrap(err)
	}

	return v, nil
}

func (e Engine) parse(
	ctx context.Context,
	src string,
	opts []lang.Option,
) (lang.Stream, error) {
	if src != stdinSource {
		return lang.ParseFile(ctx, src, opts...)
	}

	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}

	return lang.ParseReader(ctx, stdin, dir, opts...)
}
