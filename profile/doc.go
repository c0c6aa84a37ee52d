// Package profile provides optional runtime profiling for the hocon
// command.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only with
// the "pprof" build tag. Without it, [Modes] is empty and [Profiler.Start]
// returns a no-op, so callers never need their own build constraints.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode (e.g.,
// cpu.pprof, mem.pprof).
//
// # Command-Line Usage
//
//	go build -tags pprof .
//	./hocon --pprof-mode cpu eval app.conf
//	./hocon --pprof-mode heap --pprof-dir ./profiles eval app.conf
//	go tool pprof -http=: ./profiles/mem.pprof
//
// The default output directory is the "pprof" subdirectory of the user cache
// directory for hocon, e.g. $XDG_CACHE_HOME/hocon/pprof.
//
// The pprof build also imports [net/http/pprof], registering its handlers
// on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
