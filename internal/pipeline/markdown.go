package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrMarkdownConversion indicates Markdown to HTML conversion failed.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// DefaultHighlightStyle is the chroma style used for fenced code blocks.
const DefaultHighlightStyle = "github"

// documentTemplate wraps Goldmark's fragment output in a complete HTML5
// document. The </head> marker is where stylesheets get injected later.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>`

// baseCSS gives rendered Markdown a readable page width for screenshots.
const baseCSS = `body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;` +
	`line-height:1.5;max-width:860px;margin:0 auto;padding:32px;color:#24292f;background:#fff}` +
	`pre{padding:12px;overflow:auto;border-radius:6px;background:#f6f8fa}` +
	`table{border-collapse:collapse}td,th{border:1px solid #d0d7de;padding:6px 13px}` +
	`img{max-width:100%}`

// MarkdownConverter turns Markdown into a standalone HTML document.
type MarkdownConverter struct {
	md  goldmark.Markdown
	css string
}

// NewMarkdownConverter creates a MarkdownConverter with GFM extensions and
// class-based syntax highlighting. The chroma stylesheet for style is
// embedded in every document; unknown style names fall back to chroma's
// default.
func NewMarkdownConverter(style string) (*MarkdownConverter, error) {
	if style == "" {
		style = DefaultHighlightStyle
	}

	var css bytes.Buffer
	css.WriteString(baseCSS)
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(style)); err != nil {
		return nil, fmt.Errorf("%w: highlight style %q: %v", ErrMarkdownConversion, style, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			// Raw HTML inside Markdown is dropped; WithUnsafe stays off.
		),
	)
	return &MarkdownConverter{md: md, css: css.String()}, nil
}

// ToHTML converts Markdown content to a complete HTML5 document titled title.
// Goldmark has no context support, so the conversion runs in a goroutine and
// ctx is honoured through select.
func (c *MarkdownConverter) ToHTML(ctx context.Context, content, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(title) == "" {
		title = "Document"
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrMarkdownConversion, err)}
			return
		}
		doc := fmt.Sprintf(documentTemplate, html.EscapeString(title), StyleTag(c.css)+"\n", buf.String())
		done <- result{html: doc}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
