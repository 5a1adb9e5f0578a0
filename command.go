package imgkit

import (
	"os"
	"path/filepath"
)

// stdioArg tells the renderer to read from stdin or write to stdout.
const stdioArg = "-"

// BuildCommand assembles the renderer argv:
//
//	executable, args..., source, output
//
// The source token is "-" for HTML (piped on stdin) and the path or URL
// otherwise. The output token is output, or "-" for stdout when empty.
func BuildCommand(executable string, args []string, src *Source, output string) []string {
	argv := make([]string, 0, len(args)+3)
	argv = append(argv, executable)
	argv = append(argv, args...)

	if src.IsHTML() {
		argv = append(argv, stdioArg)
	} else {
		argv = append(argv, src.target())
	}

	if output == "" {
		output = stdioArg
	}
	return append(argv, output)
}

// ResolveExecutable returns the executable to spawn. Bare names are left
// for PATH lookup. An absolute path that no longer exists degrades to its
// base name, so a stale configured location still finds the renderer on
// PATH.
func ResolveExecutable(configured string) string {
	if !filepath.IsAbs(configured) {
		return configured
	}
	if _, err := os.Stat(configured); err != nil {
		return filepath.Base(configured)
	}
	return configured
}
