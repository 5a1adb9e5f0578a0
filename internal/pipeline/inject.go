package pipeline

import (
	"html"
	"strings"
)

// headClose is the marker tags are inserted in front of.
const headClose = "</head>"

// StyleTag wraps CSS in a <style> block.
// CSS content is sanitized so it cannot close the block early.
func StyleTag(css string) string {
	return "<style>" + sanitizeCSS(css) + "</style>"
}

// InlineScriptTag wraps JavaScript source in a <script> block.
func InlineScriptTag(js string) string {
	return "<script>" + sanitizeScript(js) + "</script>"
}

// ScriptSrcTag references an external script by path or URL.
func ScriptSrcTag(src string) string {
	return `<script src="` + html.EscapeString(src) + `" type="text/javascript"></script>`
}

// InsertTag inserts tag immediately before the first </head> marker,
// matched case-insensitively. Content without a head gets the tag prepended.
func InsertTag(content, tag string) string {
	if idx := strings.Index(strings.ToLower(content), headClose); idx != -1 {
		return content[:idx] + tag + content[idx:]
	}
	return tag + content
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// sanitizeScript escapes closing script tags only; "</" alone is common in
// JavaScript string literals and regexes and must stay intact.
func sanitizeScript(js string) string {
	var b strings.Builder
	lower := strings.ToLower(js)
	last := 0
	for {
		idx := strings.Index(lower[last:], "</script")
		if idx == -1 {
			break
		}
		idx += last
		b.WriteString(js[last:idx])
		b.WriteString(`<\/`)
		last = idx + 2
	}
	b.WriteString(js[last:])
	return b.String()
}
