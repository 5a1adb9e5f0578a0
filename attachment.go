package imgkit

import (
	"fmt"
	"io"
	"os"

	"github.com/alnah/go-imgkit/internal/pipeline"
)

// Attachment is a stylesheet or script added to an HTML source, given as a
// file path or as in-memory content.
type Attachment struct {
	path    string
	reader  io.Reader
	content string
	inline  bool
}

// FileAttachment refers to a file. Stylesheets are read and inlined;
// scripts are referenced with <script src>.
func FileAttachment(path string) Attachment {
	return Attachment{path: path}
}

// ReaderAttachment inlines whatever r yields. r is consumed by the first
// render that uses it.
func ReaderAttachment(r io.Reader) Attachment {
	return Attachment{reader: r}
}

// InlineAttachment inlines content. Unlike ReaderAttachment it can be
// reused across renders.
func InlineAttachment(content string) Attachment {
	return Attachment{content: content, inline: true}
}

// IsPath reports whether the attachment refers to a file.
func (a Attachment) IsPath() bool { return a.reader == nil && !a.inline }

// Path returns the file path, empty for in-memory attachments.
func (a Attachment) Path() string { return a.path }

func (a Attachment) read() (string, error) {
	if a.inline {
		return a.content, nil
	}
	if a.reader != nil {
		b, err := io.ReadAll(a.reader)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReadAttachment, err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(a.path) // #nosec G304 -- caller-provided attachment path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadAttachment, err)
	}
	return string(b), nil
}

// inject adds stylesheets, then scripts, to an HTML source in list order.
// Each tag goes before the first </head>, or at the start when there is
// none.
func inject(src *Source, stylesheets, scripts []Attachment) error {
	if len(stylesheets) == 0 && len(scripts) == 0 {
		return nil
	}
	if !src.IsHTML() {
		return fmt.Errorf("%w: stylesheets and scripts may only be added to an HTML source, got %s", ErrImproperSource, src.Kind())
	}

	for _, a := range stylesheets {
		css, err := a.read()
		if err != nil {
			return fmt.Errorf("stylesheet: %w", err)
		}
		src.value = pipeline.InsertTag(src.value, pipeline.StyleTag(css))
	}

	for _, a := range scripts {
		var tag string
		if a.IsPath() {
			tag = pipeline.ScriptSrcTag(a.path)
		} else {
			js, err := a.read()
			if err != nil {
				return fmt.Errorf("script: %w", err)
			}
			tag = pipeline.InlineScriptTag(js)
		}
		src.value = pipeline.InsertTag(src.value, tag)
	}
	return nil
}
