package imgkit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Converter renders sources to images. Create with NewConverter, call
// Render or RenderFile, and Close when done. Render is safe for concurrent
// use.
type Converter struct {
	cfg      converterConfig
	logger   *slog.Logger
	renderer imageRenderer
}

// NewConverter creates a Converter. Without options it runs the
// wkhtmltoimage found by DefaultExecutable, with DefaultOptions, jpg output
// and a 30s timeout.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			defaultOptions: DefaultOptions(),
			defaultFormat:  DefaultFormat,
			metaTagPrefix:  DefaultMetaTagPrefix,
			timeout:        defaultTimeout,
			gracePeriod:    defaultGracePeriod,
			backend:        BackendWkhtmltoimage,
		},
		logger: discardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.executable == "" {
		c.cfg.executable = DefaultExecutable()
	}

	f, err := ParseFormat(string(c.cfg.defaultFormat))
	if err != nil {
		return nil, fmt.Errorf("default format: %w", err)
	}
	c.cfg.defaultFormat = f

	backend, err := ParseBackend(string(c.cfg.backend))
	if err != nil {
		return nil, err
	}
	c.cfg.backend = backend

	// Tests inject a renderer before construction completes.
	if c.renderer == nil {
		switch backend {
		case BackendChrome:
			c.renderer = newChromeRenderer(c.cfg.timeout, c.logger)
		default:
			c.renderer = newProcessRenderer(c.cfg, c.logger)
		}
	}
	return c, nil
}

// Render renders in and returns the image bytes.
// Recovers from internal panics to prevent crashes from propagating to
// callers.
func (c *Converter) Render(ctx context.Context, in Input) (img []byte, err error) {
	defer recoverInternal(&err)

	req, err := c.prepare(ctx, in, in.Format, "")
	if err != nil {
		return nil, err
	}
	return c.renderer.Render(ctx, req)
}

// RenderFile renders in to path. The format comes from path's extension
// and is validated before anything is spawned or written; the renderer
// writes the file itself.
func (c *Converter) RenderFile(ctx context.Context, in Input, path string) (err error) {
	defer recoverInternal(&err)

	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	req, err := c.prepare(ctx, in, f, path)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(ctx, req)
	return err
}

// Close releases backend resources (the headless browser, if any).
func (c *Converter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}

// Backend returns the backend the converter renders with.
func (c *Converter) Backend() Backend { return c.cfg.backend }

// Executable returns the configured wkhtmltoimage location.
func (c *Converter) Executable() string { return c.cfg.executable }

// prepare runs every step before rendering: option merge, injection and
// format resolution. Nothing here spawns a process or touches the output.
func (c *Converter) prepare(ctx context.Context, in Input, format Format, output string) (*renderRequest, error) {
	if in.Source == nil {
		return nil, ErrNilSource
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := in.Source.clone()
	opts := c.mergeOptions(ctx, src, in.Options)

	if err := inject(src, in.Stylesheets, in.Scripts); err != nil {
		return nil, err
	}

	f, err := resolveFormat(format, &opts, c.cfg.defaultFormat)
	if err != nil {
		return nil, err
	}

	return &renderRequest{
		Source:  src,
		Options: opts,
		Format:  f,
		Output:  output,
	}, nil
}

// mergeOptions layers defaults, then the caller's options, then options
// embedded in the document. Embedded options therefore win over the
// caller's; URL sources have no local document and skip that layer.
func (c *Converter) mergeOptions(ctx context.Context, src *Source, explicit RenderOptions) RenderOptions {
	opts := c.cfg.defaultOptions.Clone()
	opts.Merge(explicit)

	if src.IsURL() || c.cfg.metaTagPrefix == "" {
		return opts
	}

	content, ok := c.documentContent(ctx, src)
	if !ok {
		return opts
	}
	embedded, err := FindEmbeddedOptions(content, c.cfg.metaTagPrefix)
	if err != nil {
		// Embedded options are best effort; the page still renders.
		c.logger.DebugContext(ctx, "ignoring meta tags", "error", err)
		return opts
	}
	if embedded.Len() > 0 {
		c.logger.DebugContext(ctx, "applying embedded options", "keys", embedded.Keys())
	}
	opts.Merge(embedded)
	return opts
}

// documentContent returns the markup to scan for meta tags. A file that
// cannot be read is left for the renderer to report.
func (c *Converter) documentContent(ctx context.Context, src *Source) (string, bool) {
	if src.IsHTML() {
		return src.String(), true
	}
	b, err := os.ReadFile(src.String()) // #nosec G304 -- caller-provided source path
	if err != nil {
		c.logger.DebugContext(ctx, "skipping meta tags", "path", src.String(), "error", err)
		return "", false
	}
	return string(b), true
}

func recoverInternal(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("internal error: %v", r)
	}
}
