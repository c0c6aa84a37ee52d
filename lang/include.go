package lang

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
)

// IncludeKind identifies the source named by an include directive.
type IncludeKind int

// Include kinds.
const (
	IncludeFile IncludeKind = iota
	IncludeURL
	IncludeClasspath
)

func (k IncludeKind) String() string {
	switch k {
	case IncludeURL:
		return "url"
	case IncludeClasspath:
		return "classpath"
	default:
		return "file"
	}
}

// Include is one include directive.
type Include struct {
	Target   string
	Kind     IncludeKind
	Required bool
}

// LogValue implements slog.LogValuer.
func (inc Include) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", inc.Kind.String()),
		slog.String("target", inc.Target),
		slog.Bool("required", inc.Required),
	)
}

// LoadContext describes the document an include directive appears in.
// A [Loader] receives the context of the document it must produce: Depth
// already counts the directive, and Dir is the directory of the including
// file against which relative targets resolve.
type LoadContext struct {
	cfg           *config
	Dir           string
	Depth         int
	MaxDepth      int
	AllowIncludes bool
}

// Parse parses the text of the included document. Nested include
// directives resolve relative to dir.
func (lc LoadContext) Parse(ctx context.Context, text, dir string) (Stream, error) {
	child := lc
	child.Dir = dir

	return parse(ctx, text, child)
}

// ParseProperties parses the text of an included .properties document.
func (lc LoadContext) ParseProperties(ctx context.Context, text string) (Stream, error) {
	return parseProperties(ctx, text, lc.cfg)
}

// Loader produces the assignment stream of an included document.
//
// A loader reports a missing source with an error matching
// [fs.ErrNotExist]. Like any other loader failure it becomes an
// [ErrIncludeFailed] at the directive, whether or not it is required.
type Loader interface {
	Load(ctx context.Context, inc Include, lc LoadContext) (Stream, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, inc Include, lc LoadContext) (Stream, error)

// Load implements [Loader].
func (f LoaderFunc) Load(
	ctx context.Context,
	inc Include,
	lc LoadContext,
) (Stream, error) {
	return f(ctx, inc, lc)
}

// include expands directive inc found in the object at path at. The
// included assignments come back nested under at and wrapped as included
// content. A failure produces one error assignment keyed by the target.
func (lc LoadContext) include(
	ctx context.Context,
	inc Include,
	at Path,
) (Stream, error) {
	cfg := lc.cfg

	cfg.logger.TraceContext(ctx, "include",
		slog.Any("directive", inc),
		slog.String("path", at.String()),
		slog.Int("depth", lc.Depth),
	)

	fail := func(err *Error) (Stream, error) {
		err = err.With(
			slog.String("target", inc.Target),
			slog.Bool("required", inc.Required),
			slog.Int("depth", lc.Depth),
		)

		raw, perr := cfg.policy().fail(err)
		if perr != nil {
			return nil, perr
		}

		var s Stream

		s.Add(at.Append(Key(inc.Target)), raw)

		return s, nil
	}

	if lc.Depth > lc.MaxDepth {
		return fail(ErrTooManyIncludes)
	}

	if !lc.AllowIncludes {
		return fail(ErrIncludeNotAllowedFromStr)
	}

	if inc.Kind == IncludeURL && !cfg.externalURL {
		if u, err := url.Parse(inc.Target); err != nil || u.Scheme != "file" {
			return fail(ErrDisabledExternalSource)
		}
	}

	child := lc
	child.Depth++

	s, err := cfg.includeLoader().Load(ctx, inc, child)
	if err != nil {
		var kerr *Error
		if errors.As(err, &kerr) && kerr.Kind() != KindUnknown && kerr.Kind() != KindIO {
			// Parse errors and failures already handled by the policy
			// inside the included document propagate unchanged.
			return nil, err
		}

		if !errors.Is(err, ErrIO) {
			err = ErrIO.Wrap(err)
		}

		return fail(ErrIncludeFailed.Wrap(err))
	}

	return s.Included().Nest(at), nil
}
