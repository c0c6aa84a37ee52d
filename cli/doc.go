// Package cli contains the command line interface for hocon.
//
// # Usage
//
//	hocon [flags] [eval] [source ...]
//	hocon [flags] get <path> [source ...]
//	hocon [flags] query <expr> [source ...]
//	hocon [flags] init [--force]
//
// Sources are files, or "-" for stdin, which is also the default. Multiple
// sources resolve as one document: later sources override earlier ones and
// substitutions may refer across them.
//
// # Configuration File
//
// Flag defaults are read from the config object of config.conf in the user
// configuration directory (see [pkg.ConfigDir]). The file is resolved by the
// engine itself, so it may use includes and substitutions:
//
//	config {
//	  log { level = debug, format = text }
//	  max-include-depth = 4
//	}
//
// The init command writes the current flag values to that file.
//
// # Resolution Options
//
//   - --[no-]strict: Abort on the first unresolved reference or include
//   - --[no-]system-env: Resolve missing substitutions from the environment
//   - --max-include-depth: Maximum nesting of include directives
//   - --[no-]external-url: Allow url(...) includes
//   - --http-timeout: Timeout of one url(...) include
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-color: Colorize pretty output (auto, always, never)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Pretty print log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o hocon .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/hocon/pprof)
//
// # Examples
//
//	# Resolve an application config as YAML
//	hocon -o yaml application.conf
//
//	# Print one setting, failing if it does not resolve
//	hocon --strict get server.port application.conf
//
//	# Compute a value from the resolved document
//	hocon query 'duration(server.timeout).Seconds() * 2' application.conf
package cli
