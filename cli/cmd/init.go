package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/lang"
	"github.com/ardnew/hocon/log"
	"github.com/ardnew/hocon/profile"
)

const configIndent = 2

// Init writes the current flag values to the configuration file as a
// HOCON object named [ConfigObject].
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	fail := func(err error) error {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !i.Force {
		mode |= os.O_EXCL
	}

	file, err := os.OpenFile(path, mode, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fail(ErrFileExists)
	}

	if err != nil {
		return fail(err)
	}

	doc := lang.ObjectValue(map[string]*lang.Value{
		ConfigObject: i.buildConfig(ktx),
	})

	err = errors.Join(doc.WriteHOCON(file, configIndent), file.Close())
	if err != nil {
		return fail(err)
	}

	log.DebugContext(ctx, "wrote configuration", slog.String("file", path))

	return nil
}

// ignored reports whether a flag is left out of the written configuration.
func ignored(flag *kong.Flag) bool {
	return flag.Hidden || slices.ContainsFunc(
		[]string{"help", "version", profile.Tag},
		func(prefix string) bool { return strings.HasPrefix(flag.Name, prefix) },
	)
}

// buildConfig collects the set flags into one object keyed by flag name.
func (i *Init) buildConfig(ktx *kong.Context) *lang.Value {
	members := make(map[string]*lang.Value)

	for _, flag := range ktx.Model.Flags {
		if ignored(flag) {
			continue
		}

		if val := flagValue(ktx.FlagValue(flag)); val != nil {
			members[flag.Name] = val
		}
	}

	return lang.ObjectValue(members)
}

// flagValue returns the document value of a flag value, or nil if unset.
func flagValue(val any) *lang.Value {
	switch v := val.(type) {
	case nil:
		return nil

	case bool:
		return lang.BoolValue(v)

	case string:
		if v == "" {
			return nil
		}

		return lang.StringValue(v)

	case time.Duration:
		return lang.StringValue(v.String())

	case int:
		return lang.IntValue(int64(v))

	case int64:
		return lang.IntValue(v)

	case uint:
		return lang.IntValue(int64(v)) //nolint:gosec

	case float64:
		return lang.RealValue(v)

	case []string:
		if len(v) == 0 {
			return nil
		}

		elems := make([]*lang.Value, len(v))
		for i, s := range v {
			elems[i] = lang.StringValue(s)
		}

		return lang.ArrayValue(elems...)

	case fmt.Stringer:
		return flagValue(v.String())

	default:
		return flagValue(fmt.Sprint(v))
	}
}
