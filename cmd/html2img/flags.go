package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	imgkit "github.com/alnah/go-imgkit"
)

// Sentinel errors for flag handling.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrInvalidOption      = errors.New("invalid renderer option")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// markdownFlags tune the Markdown front end.
type markdownFlags struct {
	force     bool // treat every input as Markdown
	title     string
	highlight string
}

// metaFlags control embedded meta tag options.
type metaFlags struct {
	prefix    string
	prefixSet bool
	disabled  bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	output     string
	format     string
	backend    string
	executable string
	timeout    time.Duration
	workers    int
	options    []string
	css        []string
	js         []string
	markdown   markdownFlags
	meta       metaFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show renderer commands and timing")
}

func addRendererFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "renderer: wkhtmltoimage, chrome")
	fs.StringVar(&f.executable, "executable", "", "wkhtmltoimage path")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-page render timeout (e.g. 45s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders in batch mode (0 = auto)")
	fs.StringArrayVarP(&f.options, "option", "O", nil, "renderer option key[=value], repeatable")
}

func addOutputFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file, directory, or - for stdout")
	fs.StringVarP(&f.format, "format", "f", "", "image format: jpg, jpeg, png, tiff, tif")
}

func addAttachmentFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringArrayVar(&f.css, "css", nil, "stylesheet file to inline, repeatable")
	fs.StringArrayVar(&f.js, "js", nil, "script file to reference, repeatable")
}

func addMarkdownFlags(fs *flag.FlagSet, f *markdownFlags) {
	fs.BoolVarP(&f.force, "markdown", "m", false, "treat input as Markdown")
	fs.StringVar(&f.title, "title", "", "Markdown document title")
	fs.StringVar(&f.highlight, "highlight-style", "", "chroma style for code blocks")
}

func addMetaFlags(fs *flag.FlagSet, f *metaFlags) {
	fs.StringVar(&f.prefix, "meta-prefix", imgkit.DefaultMetaTagPrefix, "meta tag name prefix for embedded options")
	fs.BoolVar(&f.disabled, "no-meta", false, "ignore embedded meta tag options")
}

// newRenderFlagSet registers every render flag on a new FlagSet bound to f.
// Completion scripts are generated from the same set.
func newRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, f)
	addRendererFlags(fs, f)
	addAttachmentFlags(fs, f)
	addMarkdownFlags(fs, &f.markdown)
	addMetaFlags(fs, &f.meta)
	return fs
}

// parseRenderFlags parses render flags and returns the positional inputs.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newRenderFlagSet(f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	f.meta.prefixSet = fs.Changed("meta-prefix")

	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, f.workers)
	}
	if f.timeout < 0 {
		return nil, nil, fmt.Errorf("%w: negative --timeout %v", ErrUsage, f.timeout)
	}
	return f, fs.Args(), nil
}

// parseOptionFlags turns repeated -O key[=value] flags into renderer
// options. Leading dashes on keys are dropped. A bare key is a switch.
// Repeating a key collects its values, so -O custom-header=User-Agent
// -O custom-header=bot renders --custom-header User-Agent bot.
func parseOptionFlags(values []string) (imgkit.RenderOptions, error) {
	var opts imgkit.RenderOptions
	for _, kv := range values {
		key, val, hasValue := strings.Cut(kv, "=")
		key = strings.TrimLeft(strings.TrimSpace(key), "-")
		if key == "" {
			return imgkit.RenderOptions{}, fmt.Errorf("%w: %q", ErrInvalidOption, kv)
		}
		if !hasValue {
			opts.Set(key, true)
			continue
		}

		var v any = val
		if prev, ok := opts.Get(key); ok {
			switch p := prev.(type) {
			case string:
				v = []string{p, val}
			case []string:
				v = append(p, val)
			}
		}
		opts.Set(key, v)
	}
	return opts, nil
}
