package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/alecthomas/kong"
)

// Streams the commands read documents from and print results to.
//
//nolint:gochecknoglobals
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

type contextKey struct{}

// WithContext returns ctx carrying ktx for the commands run under it.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// withCommand tags err with the name of the failing command.
func withCommand(err error, name string) error {
	if e, ok := err.(*Error); ok { //nolint:errorlint
		return e.With(slog.String("command", name))
	}

	return err
}

// fileKey identifies a file independently of the path naming it.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource names standard input among the sources.
const stdinSource = "-"

// uniqueSources drops repeated sources, keeping the first occurrence.
//
// Files are the same when they share device and inode, whatever path or
// symlink reaches them. Every "-" collapses into one stdin source moved to
// the end. A path that cannot be stat'ed is compared by name and kept, so
// the loader can report it or expand it into its .conf, .json, and
// .properties variants.
func uniqueSources(sources []string) []string {
	var (
		out      = make([]string, 0, len(sources))
		seen     = make(map[any]bool)
		hasStdin bool
	)

	for _, src := range sources {
		if src == stdinSource {
			hasStdin = true

			continue
		}

		var id any = src
		if key, ok := sourceKey(src); ok {
			id = key
		}

		if !seen[id] {
			seen[id] = true
			out = append(out, src)
		}
	}

	if hasStdin {
		out = append(out, stdinSource)
	}

	return out
}

// sourceKey returns the identity of the file path resolves to.
func sourceKey(path string) (fileKey, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, false
	}

	return makeFileKey(info)
}

func makeFileKey(info os.FileInfo) (fileKey, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
