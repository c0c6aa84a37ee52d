package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ardnew/hocon/lang"
)

// Output formats accepted by eval.
const (
	OutputJSON       = "json"
	OutputYAML       = "yaml"
	OutputHOCON      = "hocon"
	OutputProperties = "properties"
)

// Eval resolves its sources and prints the resulting document.
type Eval struct {
	Sources []string `arg:""         help:"Source files, or '-' for stdin." name:"source" optional:""`
	Output  string   `default:"json" enum:"json,yaml,hocon,properties"      help:"Output format."            short:"o"`
	Indent  int      `default:"2"                                           help:"Spaces per indent level."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, engine *Engine) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources := e.Sources
	if len(sources) == 0 {
		sources = []string{stdinSource}
	}

	v, err := engine.Load(ctx, sources...)
	if err != nil {
		return withCommand(err, "eval")
	}

	if err := writeValue(v, e.Output, e.Indent); err != nil {
		return ErrOutput.
			With(slog.String("command", "eval"), slog.String("output", e.Output)).
			Wrap(err)
	}

	return nil
}

// writeValue prints v to stdout in the named format.
func writeValue(v *lang.Value, format string, indent int) error {
	switch format {
	case OutputYAML:
		b, err := v.ToYAML()
		if err != nil {
			return err
		}

		_, err = stdout.Write(b)

		return err

	case OutputHOCON:
		return v.WriteHOCON(stdout, indent)

	case OutputProperties:
		return v.WriteProperties(stdout)
	}

	b, err := marshalJSON(v, indent)
	if err != nil {
		return err
	}

	_, err = stdout.Write(append(b, '\n'))

	return err
}

// marshalJSON encodes x as JSON indented by indent spaces, or compact for a
// non-positive indent.
func marshalJSON(x any, indent int) ([]byte, error) {
	b, err := json.Marshal(x)
	if err != nil || indent <= 0 {
		return b, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", string(bytes.Repeat([]byte{' '}, indent))); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
