package imgkit

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// SourceKind tells how a Source is handed to the renderer.
type SourceKind int

const (
	KindHTML SourceKind = iota // piped on stdin
	KindFile                   // passed as a path
	KindURL                    // passed as is; the renderer fetches it
)

func (k SourceKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// PathHolder is implemented by values exposing a filesystem path, such as
// *os.File. NewSource classifies them as files.
type PathHolder interface {
	Name() string
}

// urlPattern accepts absolute http and https URLs only. It is matched
// against the whole trimmed input, never a substring.
var urlPattern = regexp.MustCompile(`(?i)^https?://[^\s/?#]+(?:[/?#]\S*)?$`)

// Source is the document to render. Its kind is fixed at construction;
// only HTML content can change afterwards.
type Source struct {
	kind  SourceKind
	value string
}

// NewSource classifies v. Strings that are absolute http(s) URLs become URL
// sources, PathHolder values become file sources, and everything else is
// HTML: strings and byte slices verbatim, other values in their fmt form.
// The path of a file source does not need to exist.
func NewSource(v any) *Source {
	switch t := v.(type) {
	case nil:
		return HTMLSource("")
	case string:
		if isURL(t) {
			return URLSource(t)
		}
		return HTMLSource(t)
	case PathHolder:
		return FileSource(t.Name())
	case []byte:
		return HTMLSource(string(t))
	default:
		return HTMLSource(fmt.Sprint(t))
	}
}

// HTMLSource returns an HTML source without classification.
func HTMLSource(content string) *Source {
	return &Source{kind: KindHTML, value: content}
}

// FileSource returns a file source for path without classification.
func FileSource(path string) *Source {
	return &Source{kind: KindFile, value: path}
}

// URLSource returns a URL source without classification. String returns
// rawURL unchanged; the renderer gets it without surrounding whitespace.
func URLSource(rawURL string) *Source {
	return &Source{kind: KindURL, value: rawURL}
}

func (s *Source) Kind() SourceKind { return s.kind }
func (s *Source) IsHTML() bool     { return s.kind == KindHTML }
func (s *Source) IsFile() bool     { return s.kind == KindFile }
func (s *Source) IsURL() bool      { return s.kind == KindURL }

// String returns the path for files, the URL for URLs, and the current
// content for HTML.
func (s *Source) String() string { return s.value }

// target is what the renderer loads: the file path or the trimmed URL.
func (s *Source) target() string {
	if s.kind == KindURL {
		return strings.TrimSpace(s.value)
	}
	return s.value
}

// clone returns an independent copy, so a render can mutate HTML content
// without touching the caller's Source.
func (s *Source) clone() *Source {
	c := *s
	return &c
}

func isURL(s string) bool {
	trimmed := strings.TrimSpace(s)
	if !urlPattern.MatchString(trimmed) {
		return false
	}
	u, err := url.Parse(trimmed)
	return err == nil && u.Host != ""
}
