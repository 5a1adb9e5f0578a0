package imgkit

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Input is one render request.
type Input struct {
	// Source is the document to render. Render never mutates it: stylesheets
	// and scripts are injected into a private copy.
	Source *Source

	// Options override the converter defaults. Embedded meta tag options
	// are applied on top for HTML and file sources.
	Options RenderOptions

	// Stylesheets and Scripts are injected into HTML sources, stylesheets
	// first, each list in order. Any attachment on a non-HTML source fails
	// with ErrImproperSource.
	Stylesheets []Attachment
	Scripts     []Attachment

	// Format overrides the format option and the converter default.
	// RenderFile ignores it: the format comes from the output extension.
	Format Format
}

// Backend selects how pages are rendered.
type Backend string

const (
	// BackendWkhtmltoimage runs the wkhtmltoimage executable (default).
	BackendWkhtmltoimage Backend = "wkhtmltoimage"

	// BackendChrome captures screenshots in headless Chrome.
	BackendChrome Backend = "chrome"
)

// ParseBackend validates a backend name, case-insensitively.
// An empty name selects BackendWkhtmltoimage.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendWkhtmltoimage:
		return BackendWkhtmltoimage, nil
	case BackendChrome:
		return BackendChrome, nil
	}
	return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownBackend, s, BackendWkhtmltoimage, BackendChrome)
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig is the snapshot a Converter renders with. It is copied
// at construction and never changes afterwards.
type converterConfig struct {
	executable     string
	defaultOptions RenderOptions
	defaultFormat  Format
	metaTagPrefix  string
	timeout        time.Duration
	gracePeriod    time.Duration
	backend        Backend
}

// Converter defaults.
const (
	defaultTimeout     = 30 * time.Second
	defaultGracePeriod = 2 * time.Second
)

// DefaultOptions returns the options every converter starts from unless
// WithDefaultOptions replaces them.
func DefaultOptions() RenderOptions {
	return NewRenderOptions("height", 1000)
}

// WithExecutable sets the wkhtmltoimage executable. A bare name is looked
// up in PATH when rendering.
func WithExecutable(path string) Option {
	return func(c *Converter) {
		c.cfg.executable = path
	}
}

// WithDefaultOptions replaces the converter's default options.
func WithDefaultOptions(opts RenderOptions) Option {
	return func(c *Converter) {
		c.cfg.defaultOptions = opts.Clone()
	}
}

// WithDefaultFormat sets the format used when a request names none.
// An unknown format makes NewConverter fail.
func WithDefaultFormat(f Format) Option {
	return func(c *Converter) {
		c.cfg.defaultFormat = f
	}
}

// WithMetaTagPrefix sets the meta tag name prefix marking embedded options.
// An empty prefix disables embedded options.
func WithMetaTagPrefix(prefix string) Option {
	return func(c *Converter) {
		c.cfg.metaTagPrefix = prefix
	}
}

// WithTimeout sets the wall-clock limit of a single render.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("imgkit: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithGracePeriod sets how long a timed out renderer may take to exit after
// SIGTERM before it is killed.
// Panics if d <= 0 (programmer error).
func WithGracePeriod(d time.Duration) Option {
	if d <= 0 {
		panic("imgkit: WithGracePeriod duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.gracePeriod = d
	}
}

// WithBackend selects the rendering backend.
func WithBackend(b Backend) Option {
	return func(c *Converter) {
		c.cfg.backend = b
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
