package imgkit

import (
	"path/filepath"
	"strings"
)

// Format is an output image format understood by the renderer.
type Format string

// Known formats. The set is closed and does not depend on configuration.
const (
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatTIF  Format = "tif"
)

// DefaultFormat is used when neither the request, the options nor the
// converter name a format.
const DefaultFormat = FormatJPG

// formatOption is the option key the resolved format is written to.
const formatOption = "format"

var knownFormats = []Format{FormatJPG, FormatJPEG, FormatPNG, FormatTIFF, FormatTIF}

// KnownFormats returns the supported formats.
func KnownFormats() []Format {
	return append([]Format(nil), knownFormats...)
}

// ParseFormat validates s case-insensitively and returns its canonical
// lower-case form. A leading dot is accepted.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, known := range knownFormats {
		if f == known {
			return f, nil
		}
	}
	return "", &FormatError{Format: s}
}

// FormatFromPath derives the format from path's extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", &FormatError{Format: ""}
	}
	return ParseFormat(ext)
}

// IsJPEG reports whether f is one of the JPEG spellings.
func (f Format) IsJPEG() bool { return f == FormatJPG || f == FormatJPEG }

// IsTIFF reports whether f is one of the TIFF spellings.
func (f Format) IsTIFF() bool { return f == FormatTIFF || f == FormatTIF }

// resolveFormat picks the request format, then the format option, then
// fallback, validates it, and writes it back into opts.
func resolveFormat(explicit Format, opts *RenderOptions, fallback Format) (Format, error) {
	raw := string(explicit)
	if raw == "" {
		if v, ok := opts.Get(formatOption); ok && v != nil && v != false {
			raw = scalarString(v)
		}
	}
	if raw == "" {
		raw = string(fallback)
	}
	if raw == "" {
		raw = string(DefaultFormat)
	}

	f, err := ParseFormat(raw)
	if err != nil {
		return "", err
	}
	opts.Set(formatOption, string(f))
	return f, nil
}

func formatNames() []string {
	names := make([]string, len(knownFormats))
	for i, f := range knownFormats {
		names[i] = string(f)
	}
	return names
}

func (f Format) String() string { return string(f) }

