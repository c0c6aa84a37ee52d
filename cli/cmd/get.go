package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/hocon/lang"
)

// Get prints the value at a path of the resolved document. Scalars print
// as plain text; objects and arrays print in the selected output format.
type Get struct {
	Path    string   `arg:""         help:"Dotted path, e.g. a.b.0 or a.\"b.c\"." name:"path"`
	Sources []string `arg:""         help:"Source files, or '-' for stdin."      name:"source" optional:""`
	Output  string   `default:"json" enum:"json,yaml,hocon,properties"           help:"Output format of objects and arrays." short:"o"`
	Indent  int      `default:"2"                                                help:"Spaces per indent level."`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context, engine *Engine) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources := g.Sources
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	v, err := engine.Load(ctx, sources...)
	if err != nil {
		return withCommand(err, "get")
	}

	at := v.Lookup(g.Path)
	if e := at.Err(); e != nil {
		return ErrBadValue.
			With(slog.String("command", "get"), slog.String("path", g.Path)).
			Wrap(e)
	}

	switch at.Kind {
	case lang.KindObject, lang.KindArray:
		err = writeValue(at, g.Output, g.Indent)

	case lang.KindNull:
		_, err = fmt.Fprintln(stdout, "null")

	default:
		s, _ := at.AsString()
		_, err = fmt.Fprintln(stdout, s)
	}

	if err != nil {
		return ErrOutput.With(slog.String("command", "get")).Wrap(err)
	}

	return nil
}
