package lang

import (
	"os"
	"time"

	"github.com/ardnew/hocon/log"
)

// DefaultMaxIncludeDepth is the default maximum nesting of include
// directives. Users may modify this before loading to change the default.
var DefaultMaxIncludeDepth = 10

// DefaultHTTPTimeout bounds a single URL include fetch.
var DefaultHTTPTimeout = 30 * time.Second

// config holds the settings shared by every stage of a load.
type config struct {
	logger          log.Logger
	loader          Loader
	processEnv      []string
	maxIncludeDepth int
	httpTimeout     time.Duration
	strict          bool
	systemEnv       bool
	externalURL     bool
}

// Option configures parsing, merging, and finalization.
type Option func(*config)

// WithStrict selects strict mode: the first resolution failure aborts the
// load. In lenient mode (the default) failures become bad values.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithSystemEnv enables or disables the environment variable fallback for
// substitutions that cannot be resolved within the document.
func WithSystemEnv(enabled bool) Option {
	return func(c *config) {
		c.systemEnv = enabled
	}
}

// WithMaxIncludeDepth sets the maximum nesting of include directives.
func WithMaxIncludeDepth(depth int) Option {
	return func(c *config) {
		c.maxIncludeDepth = depth
	}
}

// WithExternalURL allows or forbids url(...) includes.
func WithExternalURL(allowed bool) Option {
	return func(c *config) {
		c.externalURL = allowed
	}
}

// WithHTTPTimeout sets the timeout of a URL include fetch.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.httpTimeout = timeout
	}
}

// WithProcessEnv sets the environment used by the environment variable
// fallback. Each entry has the form "KEY=value". Defaults to [os.Environ].
func WithProcessEnv(env []string) Option {
	return func(c *config) {
		c.processEnv = env
	}
}

// WithLoader replaces the default include loader.
func WithLoader(loader Loader) Option {
	return func(c *config) {
		c.loader = loader
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func makeConfig(opts ...Option) config {
	c := config{
		maxIncludeDepth: DefaultMaxIncludeDepth,
		httpTimeout:     DefaultHTTPTimeout,
		systemEnv:       true,
		externalURL:     true,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.processEnv == nil {
		c.processEnv = os.Environ()
	}

	return c
}

// includeLoader returns the loader of includes, creating the default one
// on first use. Merging and finalizing never load, so they never build it.
func (c *config) includeLoader() Loader {
	if c.loader == nil {
		c.loader = NewFileLoader(c.httpTimeout)
	}

	return c.loader
}

func (c config) policy() policy { return policy{strict: c.strict} }
