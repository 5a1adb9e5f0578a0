package imgkit

import (
	"context"
	"fmt"

	"github.com/alnah/go-imgkit/internal/pipeline"
)

// MarkdownOptions configures MarkdownSource.
type MarkdownOptions struct {
	// Title is the document title; defaults to "Document".
	Title string

	// BaseDir resolves relative image and stylesheet paths, usually the
	// directory of the Markdown file. The renderer reads HTML from stdin
	// and has no other way to find them.
	BaseDir string

	// HighlightStyle is a chroma style name for fenced code blocks;
	// defaults to "github".
	HighlightStyle string
}

// MarkdownSource converts Markdown (GFM, footnotes, highlighted code) into
// a complete HTML document and returns it as an HTML source. Raw HTML in
// the Markdown is dropped.
func MarkdownSource(ctx context.Context, markdown string, opts MarkdownOptions) (*Source, error) {
	conv, err := pipeline.NewMarkdownConverter(opts.HighlightStyle)
	if err != nil {
		return nil, err
	}

	doc, err := conv.ToHTML(ctx, markdown, opts.Title)
	if err != nil {
		return nil, err
	}

	if opts.BaseDir != "" {
		doc, err = pipeline.RewriteRelativePaths(doc, opts.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}
	return HTMLSource(doc), nil
}
