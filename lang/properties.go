package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magiconair/properties"
)

// parseProperties reads a Java properties document. Each key is split on
// '.' into a path and every value is a string.
func parseProperties(ctx context.Context, text string, cfg *config) (Stream, error) {
	l := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}

	p, err := l.LoadBytes([]byte(text))
	if err != nil {
		return nil, ErrParseFailed.Wrap(err).With(slog.String("syntax", "properties"))
	}

	var s Stream

	for _, k := range p.Keys() {
		v, _ := p.Get(k)

		var path Path
		for part := range strings.SplitSeq(k, ".") {
			path = append(path, Key(part))
		}

		s.Add(path, Str(v))
	}

	cfg.logger.TraceContext(ctx, "parsed properties", slog.Int("assignments", len(s)))

	return s, nil
}
