package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/expr-lang/expr"

	"github.com/ardnew/hocon/lang"
)

// Query evaluates an expression against the resolved document and prints
// the result as JSON.
//
// The members of a root object are variables of the expression. A root
// array is bound to the variable root. The functions bytes and duration
// parse size and duration strings the way [lang.Value.AsBytes] and
// [lang.Value.AsDuration] do, and at returns the value at a dotted path.
type Query struct {
	Expr    string   `arg:""      help:"Expression, e.g. 'server.port + 1'." name:"expr"`
	Sources []string `arg:""      help:"Source files, or '-' for stdin."      name:"source" optional:""`
	Indent  int      `default:"2" help:"Spaces per indent level."`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context, engine *Engine) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources := q.Sources
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	v, err := engine.Load(ctx, sources...)
	if err != nil {
		return withCommand(err, "query")
	}

	result, err := evaluate(q.Expr, v)
	if err != nil {
		return ErrQuery.
			With(slog.String("command", "query"), slog.String("expr", q.Expr)).
			Wrap(err)
	}

	b, err := marshalJSON(result, q.Indent)
	if err != nil {
		return ErrOutput.With(slog.String("command", "query")).Wrap(err)
	}

	_, err = stdout.Write(append(b, '\n'))
	if err != nil {
		return ErrOutput.With(slog.String("command", "query")).Wrap(err)
	}

	return nil
}

// evaluate compiles source against the environment built from v and runs
// it.
func evaluate(source string, v *lang.Value) (any, error) {
	env := buildExprEnv(v)

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, err
	}

	return expr.Run(program, env)
}

// buildExprEnv constructs the expression environment of v.
func buildExprEnv(v *lang.Value) map[string]any {
	env, ok := v.Native().(map[string]any)
	if !ok {
		env = map[string]any{"root": v.Native()}
	}

	env["bytes"] = bytesFunc
	env["duration"] = durationFunc
	env["at"] = atFunc(v)

	return env
}

func bytesFunc(s string) (float64, error) {
	n, ok := lang.StringValue(s).AsBytes()
	if !ok {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	return n, nil
}

func durationFunc(s string) (time.Duration, error) {
	d, ok := lang.StringValue(s).AsDuration()
	if !ok {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	return d, nil
}

func atFunc(v *lang.Value) func(string) (any, error) {
	return func(path string) (any, error) {
		at := v.Lookup(path)
		if e := at.Err(); e != nil {
			return nil, e
		}

		return at.Native(), nil
	}
}
