package imgkit

import "github.com/alnah/go-imgkit/internal/pipeline"

// DefaultMetaTagPrefix marks meta tags carrying rendering options:
//
//	<meta name="imgkit-width" content="1024">
const DefaultMetaTagPrefix = "imgkit-"

// FindEmbeddedOptions extracts options from <head> meta tags whose name
// starts with prefix. The remainder of the name is the option key and the
// content attribute its value. On a parse failure the error wraps
// ErrMetaParse and the options are empty.
func FindEmbeddedOptions(content, prefix string) (RenderOptions, error) {
	var opts RenderOptions
	found, err := pipeline.FindMetaOptions(content, prefix)
	if err != nil {
		return opts, err
	}
	for _, m := range found {
		opts.Set(m.Name, m.Content)
	}
	return opts, nil
}
