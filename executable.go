package imgkit

import (
	"os"
	"os/exec"
)

// Executable discovery.
const (
	// EnvExecutable overrides the renderer location.
	EnvExecutable = "IMGKIT_WKHTMLTOIMAGE"

	// ExecutableName is the renderer looked up in PATH.
	ExecutableName = "wkhtmltoimage"

	// FallbackExecutable is used when the renderer is not in PATH.
	FallbackExecutable = "/usr/local/bin/wkhtmltoimage"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DefaultExecutable returns the renderer location: $IMGKIT_WKHTMLTOIMAGE
// when set, else wkhtmltoimage from PATH, else FallbackExecutable.
func DefaultExecutable() string {
	if env := os.Getenv(EnvExecutable); env != "" {
		return env
	}
	if path, err := lookPath(ExecutableName); err == nil {
		return path
	}
	return FallbackExecutable
}
