package lang

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/hocon/pkg"
)

// fileType identifies the syntax of a source file by its extension.
type fileType int

const (
	typeAll fileType = iota
	typeHOCON
	typeJSON
	typeProperties
)

func fileTypeOf(name string) fileType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".conf":
		return typeHOCON
	case ".json":
		return typeJSON
	case ".properties":
		return typeProperties
	default:
		return typeAll
	}
}

// variants lists the files read for name: name itself, or for a name
// without a known extension, each of its .conf, .json, and .properties
// siblings in that order.
func variants(name string) []string {
	if fileTypeOf(name) != typeAll {
		return []string{name}
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))

	return []string{base + ".conf", base + ".json", base + ".properties"}
}

// FileLoader is the default [Loader]. It reads files relative to the
// including file and fetches http and https URLs. Parsed documents are
// memoized by content, so a file included from several places is parsed
// once per directory and depth. The memo assumes every load served by one
// FileLoader uses the same options.
type FileLoader struct {
	client *resty.Client
	memo   sync.Map // uint64 -> Stream
}

// NewFileLoader returns a loader whose URL fetches time out after timeout.
func NewFileLoader(timeout time.Duration) *FileLoader {
	return &FileLoader{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetHeader("User-Agent", pkg.Name+"/"+pkg.Version()),
	}
}

// Load implements [Loader].
func (l *FileLoader) Load(
	ctx context.Context,
	inc Include,
	lc LoadContext,
) (Stream, error) {
	if inc.Kind != IncludeURL {
		name := inc.Target
		if !filepath.IsAbs(name) {
			name = filepath.Join(lc.Dir, name)
		}

		return l.loadFile(ctx, name, lc)
	}

	u, err := url.Parse(inc.Target)
	if err != nil {
		return nil, ErrIO.Wrap(err).With(slog.String("url", inc.Target))
	}

	switch u.Scheme {
	case "file":
		return l.loadFile(ctx, filepath.FromSlash(u.Path), lc)
	case "http", "https":
		return l.loadURL(ctx, u, lc)
	}

	return nil, ErrIO.With(
		slog.String("url", inc.Target),
		slog.String("reason", "unsupported scheme"),
	)
}

func (l *FileLoader) loadFile(
	ctx context.Context,
	name string,
	lc LoadContext,
) (Stream, error) {
	var (
		out   Stream
		found bool
	)

	for _, file := range variants(name) {
		data, err := readFile(file)
		if err != nil {
			if fileTypeOf(name) == typeAll && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, err
		}

		found = true

		s, err := l.parse(ctx, data, fileTypeOf(file), filepath.Dir(file), lc)
		if err != nil {
			return nil, err
		}

		out.Append(s)
	}

	if !found {
		return nil, ErrIO.Wrap(fs.ErrNotExist).With(slog.String("file", name))
	}

	return out, nil
}

func (l *FileLoader) loadURL(
	ctx context.Context,
	u *url.URL,
	lc LoadContext,
) (Stream, error) {
	resp, err := l.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return nil, ErrIO.Wrap(err).With(slog.String("url", u.String()))
	}

	if resp.IsError() {
		err := ErrIO.With(
			slog.String("url", u.String()),
			slog.Int("status", resp.StatusCode()),
		)
		if resp.StatusCode() == http.StatusNotFound {
			err = err.Wrap(fs.ErrNotExist)
		}

		return nil, err
	}

	typ := fileTypeOf(path.Base(u.Path))
	if typ == typeAll {
		typ = typeHOCON
	}

	return l.parse(ctx, resp.String(), typ, lc.Dir, lc)
}

// parse parses the content of one included document, or returns the
// stream memoized for the same content, directory, and depth.
func (l *FileLoader) parse(
	ctx context.Context,
	data string,
	typ fileType,
	dir string,
	lc LoadContext,
) (Stream, error) {
	key := xxh3.HashString(data) ^
		xxh3.HashString(dir+"\x00"+strconv.Itoa(lc.Depth)+"\x00"+strconv.Itoa(int(typ)))

	if s, ok := l.memo.Load(key); ok {
		lc.cfg.logger.TraceContext(ctx, "include memo hit",
			slog.String("dir", dir),
			slog.Int("depth", lc.Depth))

		// Every inclusion appends its own items.
		return s.(Stream).renewed(), nil
	}

	var (
		s   Stream
		err error
	)

	if typ == typeProperties {
		s, err = lc.ParseProperties(ctx, data)
	} else {
		s, err = lc.Parse(ctx, data, dir)
	}

	if err != nil {
		return nil, err
	}

	l.memo.Store(key, s)

	return s, nil
}

// readFile reads a whole file through a read-ahead buffer.
func readFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return readAll(f, name)
}

func readAll(r io.Reader, source string) (string, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrIO.Wrap(err).With(slog.String("source", source))
	}

	return string(data), nil
}

// Source is the input of a load: either in-memory text, which may not
// include other files, or a file path.
type Source struct {
	Text string
	File string
}

// Load parses, merges, and finalizes src.
func Load(ctx context.Context, src Source, opts ...Option) (*Value, error) {
	if src.File != "" {
		return LoadFile(ctx, src.File, opts...)
	}

	return LoadString(ctx, src.Text, opts...)
}

// LoadString loads a document held in memory. Include directives are not
// allowed in it.
func LoadString(ctx context.Context, text string, opts ...Option) (*Value, error) {
	cfg := makeConfig(opts...)

	s, err := parse(ctx, text, rootContext(&cfg, ""))
	if err != nil {
		return nil, err
	}

	return resolve(ctx, s, &cfg)
}

// LoadReader loads a document read from r. Include directives resolve
// relative to dir; an empty dir disallows them.
func LoadReader(
	ctx context.Context,
	r io.Reader,
	dir string,
	opts ...Option,
) (*Value, error) {
	text, err := readAll(r, "reader")
	if err != nil {
		return nil, err
	}

	cfg := makeConfig(opts...)

	s, err := parse(ctx, text, rootContext(&cfg, dir))
	if err != nil {
		return nil, err
	}

	return resolve(ctx, s, &cfg)
}

// LoadFile loads the document in file. A file without a .conf, .json, or
// .properties extension loads every one of those variants that exists.
func LoadFile(ctx context.Context, file string, opts ...Option) (*Value, error) {
	cfg := makeConfig(opts...)

	s, err := parseFile(ctx, file, &cfg)
	if err != nil {
		return nil, err
	}

	return resolve(ctx, s, &cfg)
}

// ParseFile parses file into its assignment stream, expanding include
// directives.
func ParseFile(ctx context.Context, file string, opts ...Option) (Stream, error) {
	cfg := makeConfig(opts...)

	return parseFile(ctx, file, &cfg)
}

func parseFile(ctx context.Context, file string, cfg *config) (Stream, error) {
	lc := rootContext(cfg, filepath.Dir(file))

	var (
		out   Stream
		found bool
	)

	for _, name := range variants(file) {
		data, err := readFile(name)
		if err != nil {
			if fileTypeOf(file) == typeAll && errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return nil, ErrIO.Wrap(err).With(slog.String("file", name))
		}

		found = true

		var s Stream
		if fileTypeOf(name) == typeProperties {
			s, err = parseProperties(ctx, data, cfg)
		} else {
			s, err = parse(ctx, data, lc)
		}

		if err != nil {
			return nil, err
		}

		out.Append(s)
	}

	if !found {
		return nil, ErrIO.Wrap(fs.ErrNotExist).With(slog.String("file", file))
	}

	return out, nil
}

// ParseReader parses the document read from r into its assignment stream.
// Include directives resolve relative to dir; an empty dir disallows them.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	dir string,
	opts ...Option,
) (Stream, error) {
	text, err := readAll(r, "reader")
	if err != nil {
		return nil, err
	}

	cfg := makeConfig(opts...)

	return parse(ctx, text, rootContext(&cfg, dir))
}

// Parse parses text into its assignment stream. Include directives are
// not allowed.
func Parse(ctx context.Context, text string, opts ...Option) (Stream, error) {
	cfg := makeConfig(opts...)

	return parse(ctx, text, rootContext(&cfg, ""))
}

func rootContext(cfg *config, dir string) LoadContext {
	return LoadContext{
		cfg:           cfg,
		Dir:           dir,
		MaxDepth:      cfg.maxIncludeDepth,
		AllowIncludes: dir != "",
	}
}

func resolve(ctx context.Context, s Stream, cfg *config) (*Value, error) {
	t, err := merge(ctx, s, cfg)
	if err != nil {
		return nil, err
	}

	return finalize(ctx, t, cfg)
}
