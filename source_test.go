package imgkit

// Notes:
// - Classification is a total function: every input yields a Source
// - URL detection must match the whole trimmed input, never a prefix line

import (
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNewSource - Classification
// ---------------------------------------------------------------------------

func TestNewSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		kind  SourceKind
		value string
	}{
		{"http url", "http://google.com", KindURL, "http://google.com"},
		{"https url with path and query", "https://example.com/a/b?q=1#top", KindURL, "https://example.com/a/b?q=1#top"},
		{"url with port", "http://localhost:8080/page", KindURL, "http://localhost:8080/page"},
		{"uppercase scheme", "HTTP://EXAMPLE.COM", KindURL, "HTTP://EXAMPLE.COM"},
		{"url with surrounding whitespace", "  http://google.com\n", KindURL, "  http://google.com\n"},
		{"html document", "<blink>Oh Hai!</blink>", KindHTML, "<blink>Oh Hai!</blink>"},
		{"html with a line starting with http", "<blink>Oh Hai!</blink>\nhttp://www.google.com", KindHTML, "<blink>Oh Hai!</blink>\nhttp://www.google.com"},
		{"url followed by more lines", "http://google.com\n<p>x</p>", KindHTML, "http://google.com\n<p>x</p>"},
		{"ftp is not a url", "ftp://example.com/file", KindHTML, "ftp://example.com/file"},
		{"scheme only", "http://", KindHTML, "http://"},
		{"relative path string is html", "page.html", KindHTML, "page.html"},
		{"bytes are html", []byte("<p>bytes</p>"), KindHTML, "<p>bytes</p>"},
		{"bytes are never urls", []byte("http://google.com"), KindHTML, "http://google.com"},
		{"nil is empty html", nil, KindHTML, ""},
		{"other values use fmt", 42, KindHTML, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := NewSource(tt.input)
			if src.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", src.Kind(), tt.kind)
			}
			if src.String() != tt.value {
				t.Errorf("String() = %q, want %q", src.String(), tt.value)
			}
		})
	}
}

func TestNewSource_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "example.html")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src := NewSource(f)
	if !src.IsFile() || src.IsHTML() || src.IsURL() {
		t.Errorf("kind = %v, want file", src.Kind())
	}
	if src.String() != path {
		t.Errorf("String() = %q, want %q", src.String(), path)
	}
}

type namedPath string

func (p namedPath) Name() string { return string(p) }

func TestNewSource_PathHolderNeedNotExist(t *testing.T) {
	t.Parallel()

	src := NewSource(namedPath("/does/not/exist.html"))
	if !src.IsFile() {
		t.Fatalf("kind = %v, want file", src.Kind())
	}
	if src.String() != "/does/not/exist.html" {
		t.Errorf("String() = %q", src.String())
	}
}

func TestSource_Predicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src             *Source
		html, file, url bool
	}{
		{HTMLSource("<p/>"), true, false, false},
		{FileSource("x.html"), false, true, false},
		{URLSource("http://x.com"), false, false, true},
	}

	for _, tt := range tests {
		if tt.src.IsHTML() != tt.html || tt.src.IsFile() != tt.file || tt.src.IsURL() != tt.url {
			t.Errorf("%v source predicates = (%v, %v, %v), want (%v, %v, %v)",
				tt.src.Kind(), tt.src.IsHTML(), tt.src.IsFile(), tt.src.IsURL(), tt.html, tt.file, tt.url)
		}
	}
}

func TestSource_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	src := HTMLSource("<p>a</p>")
	c := src.clone()
	c.value = "<p>b</p>"

	if src.String() != "<p>a</p>" {
		t.Errorf("original changed to %q", src.String())
	}
	if c.Kind() != KindHTML {
		t.Errorf("clone kind = %v, want html", c.Kind())
	}
}

func TestSourceKind_String(t *testing.T) {
	t.Parallel()

	tests := map[SourceKind]string{
		KindHTML:      "html",
		KindFile:      "file",
		KindURL:       "url",
		SourceKind(9): "SourceKind(9)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("SourceKind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
