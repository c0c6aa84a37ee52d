package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/hocon/lang"
	"github.com/ardnew/hocon/log"
	"github.com/ardnew/hocon/pkg"
)

// resolve returns a [kong.ConfigurationLoader] that resolves a HOCON config
// file and reads flag values from its object member name.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config.conf")
//
// The document is resolved by the same engine the commands use, so it may
// include other files and use substitutions. Its name object is converted
// as follows:
//   - Flag names may use hyphens (e.g., "log-level") or underscores
//     (e.g., "log_level")
//   - Nested objects join their keys with hyphens, so log { level = debug }
//     sets --log-level
//   - Arrays become comma-separated lists
//   - Null and unresolved values are ignored
//
// Example config file:
//
//	config {
//	  log { level = debug, format = text }
//	  max-include-depth = 4
//	  system-env = ${?HOCON_SYSTEM_ENV}
//	}
//
// Command-line flags override config file values.
func resolve(
	ctx context.Context,
	name string,
	opts ...lang.Option,
) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		v, err := lang.LoadReader(ctx, r, pkg.ConfigDir(), opts...)
		if err != nil {
			if errors.Is(err, lang.ErrIO) {
				return nil, err
			}

			// Syntax errors leave the defaults in place.
			log.WarnContext(ctx, "ignoring configuration file",
				slog.Any("error", err))

			return config{}, nil
		}

		obj := v.Get(name)
		if obj.Kind != lang.KindObject {
			return config{}, nil
		}

		cfg := make(config)
		cfg.flatten("", obj)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for a resolved config object.
type config map[string]any

// flatten stores the leaves of v under their hyphen-joined keys.
func (r config) flatten(prefix string, v *lang.Value) {
	for _, k := range v.Keys() {
		m := v.Get(k)

		key := k
		if prefix != "" {
			key = prefix + "-" + k
		}

		if m.Kind == lang.KindObject {
			r.flatten(key, m)

			continue
		}

		if val, ok := flagText(m); ok {
			r[key] = val
		}
	}
}

// flagText converts a leaf to the form kong parses. Kong requires numbers
// as strings.
func flagText(v *lang.Value) (any, bool) {
	switch v.Kind {
	case lang.KindBool:
		return v.AsBool()

	case lang.KindArray:
		parts := make([]string, 0, v.Len())

		for i := range v.Len() {
			if s, ok := v.Index(i).AsString(); ok {
				parts = append(parts, s)
			}
		}

		return strings.Join(parts, ","), true

	case lang.KindNull, lang.KindBad, lang.KindObject:
		return nil, false
	}

	return v.AsString()
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed - the config was already resolved successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but config keys may use
	// underscores. Try both forms.
	name := flag.Name
	underscoreName := strings.ReplaceAll(name, "-", "_")

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[underscoreName]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil //nolint:nilnil
}
