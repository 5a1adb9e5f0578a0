package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	imgkit "github.com/alnah/go-imgkit"
	"github.com/alnah/go-imgkit/internal/config"
	"github.com/alnah/go-imgkit/internal/fileutil"
	"github.com/alnah/go-imgkit/internal/pipeline"
)

// Sentinel errors for render operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrReadInput      = errors.New("failed to read input")
	ErrWriteImage     = errors.New("failed to write image")
	ErrTerminalOutput = errors.New("refusing to write image data to a terminal")
	ErrBatchFailed    = errors.New("some renders failed")
)

// stdinInput is the positional argument that reads HTML from stdin.
const stdinInput = "-"

// renderSettings is the result of merging flags over the config file.
type renderSettings struct {
	converterOpts []imgkit.Option
	options       imgkit.RenderOptions
	format        imgkit.Format // explicit --format; wins over the default
	defaultFormat imgkit.Format
	stylesheets   []imgkit.Attachment
	scripts       []imgkit.Attachment
	markdown      bool
	mdOpts        imgkit.MarkdownOptions
	workers       int
	outputDir     string
}

// imageFormat is the format used to name outputs nobody named.
func (s *renderSettings) imageFormat() imgkit.Format {
	switch {
	case s.format != "":
		return s.format
	case s.defaultFormat != "":
		return s.defaultFormat
	}
	return imgkit.DefaultFormat
}

func (s *renderSettings) input(src *imgkit.Source) imgkit.Input {
	return imgkit.Input{
		Source:      src,
		Options:     s.options,
		Stylesheets: s.stylesheets,
		Scripts:     s.scripts,
		Format:      s.format,
	}
}

// runRender renders one input to a file or stdout, or many inputs to files.
func runRender(ctx context.Context, positional []string, flags *renderFlags, env *Environment, logger *slog.Logger) error {
	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		var err error
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	settings, err := resolveSettings(flags, cfg, logger)
	if err != nil {
		return err
	}
	settings.converterOpts = append(settings.converterOpts, env.ConverterOptions...)

	if len(positional) == 0 {
		positional = []string{stdinInput}
	}
	if len(positional) == 1 && !isDir(positional[0]) {
		return renderSingle(ctx, positional[0], flags.output, settings, env, logger)
	}

	if flags.output == stdinInput {
		return fmt.Errorf("%w: several images cannot share stdout", ErrUsage)
	}
	jobs, err := discoverJobs(positional, settings.outputDir, settings.imageFormat())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: no HTML or Markdown files in %s", ErrNoInput, strings.Join(positional, ", "))
	}

	pool := imgkit.NewConverterPool(imgkit.ResolvePoolSize(settings.workers), settings.converterOpts...)
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Warn("closing converters", "err", cerr)
		}
	}()
	logger.Debug("batch render", "files", len(jobs), "workers", pool.Size())

	results := renderBatch(ctx, pool, jobs, settings, env)
	if failed := printResults(env.Stderr, results, flags.common.quiet, flags.common.verbose); failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// resolveSettings merges flags over cfg. Flags win when set.
func resolveSettings(flags *renderFlags, cfg *config.Config, logger *slog.Logger) (*renderSettings, error) {
	s := &renderSettings{
		markdown: flags.markdown.force,
		mdOpts: imgkit.MarkdownOptions{
			Title:          firstNonEmpty(flags.markdown.title, cfg.Markdown.Title),
			HighlightStyle: firstNonEmpty(flags.markdown.highlight, cfg.Markdown.HighlightStyle),
		},
		workers:   cfg.Renderer.Workers,
		outputDir: firstNonEmpty(flags.output, cfg.Output.Dir),
	}
	if flags.workers > 0 {
		s.workers = flags.workers
	}

	backend, err := imgkit.ParseBackend(firstNonEmpty(flags.backend, cfg.Renderer.Backend))
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	if flags.timeout > 0 {
		timeout = flags.timeout
	}

	if flags.format != "" {
		if s.format, err = imgkit.ParseFormat(flags.format); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Format != "" {
		if s.defaultFormat, err = imgkit.ParseFormat(cfg.Output.Format); err != nil {
			return nil, err
		}
	}

	cliOpts, err := parseOptionFlags(flags.options)
	if err != nil {
		return nil, err
	}
	s.options = cfg.Options.RenderOptions()
	s.options.Merge(cliOpts)

	prefix := cfg.MetaTagPrefix()
	if flags.meta.prefixSet {
		prefix = flags.meta.prefix
	}
	if flags.meta.disabled {
		prefix = ""
	}

	for _, path := range flags.css {
		s.stylesheets = append(s.stylesheets, imgkit.FileAttachment(path))
	}
	for _, path := range flags.js {
		src, err := scriptURL(path)
		if err != nil {
			return nil, err
		}
		s.scripts = append(s.scripts, imgkit.FileAttachment(src))
	}

	s.converterOpts = []imgkit.Option{
		imgkit.WithLogger(logger),
		imgkit.WithBackend(backend),
		imgkit.WithMetaTagPrefix(prefix),
	}
	if exe := firstNonEmpty(flags.executable, cfg.Renderer.Executable); exe != "" {
		s.converterOpts = append(s.converterOpts, imgkit.WithExecutable(exe))
	}
	if timeout > 0 {
		s.converterOpts = append(s.converterOpts, imgkit.WithTimeout(timeout))
	}
	if s.defaultFormat != "" {
		s.converterOpts = append(s.converterOpts, imgkit.WithDefaultFormat(s.defaultFormat))
	}
	return s, nil
}

// scriptURL makes a local script path loadable from a page that has no
// base location. URLs are kept as they are.
func scriptURL(path string) (string, error) {
	if imgkit.NewSource(path).IsURL() || strings.HasPrefix(path, "file://") {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrReadInput, path, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// renderSingle renders one input. Without -o, stdin and URL inputs go to
// stdout and file inputs get an image next to them.
func renderSingle(ctx context.Context, in, output string, s *renderSettings, env *Environment, logger *slog.Logger) error {
	conv, err := imgkit.NewConverter(s.converterOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conv.Close(); cerr != nil {
			logger.Warn("closing converter", "err", cerr)
		}
	}()

	src, err := buildSource(ctx, in, s, env.Stdin)
	if err != nil {
		return err
	}

	if output == "" && src.IsFile() {
		output = fileutil.ReplaceExt(in, string(s.imageFormat()))
	}
	if output == "" || output == stdinInput {
		if env.IsTerminal != nil && env.IsTerminal(env.Stdout) {
			return fmt.Errorf("%w: use -o to name an output file", ErrTerminalOutput)
		}
		img, err := conv.Render(ctx, s.input(src))
		if err != nil {
			return err
		}
		if _, err := env.Stdout.Write(img); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteImage, err)
		}
		return nil
	}

	start := time.Now()
	if err := writeImage(ctx, conv, s.input(src), output); err != nil {
		return err
	}
	logger.Info("rendered", "input", in, "output", output, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// writeImage renders to output. The extension picks the format; without
// one the request format applies and the bytes are written here.
func writeImage(ctx context.Context, conv *imgkit.Converter, in imgkit.Input, output string) error {
	hasExt := filepath.Ext(output) != ""
	if hasExt {
		if _, err := imgkit.FormatFromPath(output); err != nil {
			return err
		}
	}
	if err := fileutil.EnsureParentDir(output); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}
	if hasExt {
		return conv.RenderFile(ctx, in, output)
	}

	img, err := conv.Render(ctx, in)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, img, 0o644); err != nil { // #nosec G306 -- images are not secret
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}
	return nil
}

// buildSource turns a positional argument into a source. Markdown is
// converted to HTML. HTML files that need stylesheets or scripts are read
// so the attachments can be injected.
func buildSource(ctx context.Context, in string, s *renderSettings, stdin io.Reader) (*imgkit.Source, error) {
	if in == stdinInput {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		if s.markdown {
			opts := s.mdOpts
			opts.BaseDir = "."
			return imgkit.MarkdownSource(ctx, string(data), opts)
		}
		return imgkit.HTMLSource(string(data)), nil
	}

	if src := imgkit.NewSource(in); src.IsURL() {
		return src, nil
	}

	if !fileutil.FileExists(in) {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, in, os.ErrNotExist)
	}

	needsContent := s.markdown || isMarkdownPath(in) || len(s.stylesheets)+len(s.scripts) > 0
	if !needsContent {
		return imgkit.FileSource(in), nil
	}

	data, err := os.ReadFile(in) // #nosec G304 -- user-provided input
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}

	if s.markdown || isMarkdownPath(in) {
		opts := s.mdOpts
		opts.BaseDir = filepath.Dir(in)
		if opts.Title == "" {
			opts.Title = strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		}
		return imgkit.MarkdownSource(ctx, string(data), opts)
	}

	// Piped HTML has no base location: anchor relative assets to the file.
	html, err := pipeline.RewriteRelativePaths(string(data), filepath.Dir(in))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadInput, in, err)
	}
	return imgkit.HTMLSource(html), nil
}

func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
