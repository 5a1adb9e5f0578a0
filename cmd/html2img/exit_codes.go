package main

import (
	"context"
	"errors"
	"os"

	imgkit "github.com/alnah/go-imgkit"
	"github.com/alnah/go-imgkit/internal/config"
	"github.com/alnah/go-imgkit/internal/fileutil"
	"github.com/alnah/go-imgkit/internal/hints"
)

// Exit codes for the html2img CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful render
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitRenderer = 4 // wkhtmltoimage or browser failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Renderer errors (exit 4)
	if errors.Is(err, imgkit.ErrCommandFailed) ||
		errors.Is(err, imgkit.ErrRendererNotFound) ||
		errors.Is(err, imgkit.ErrBrowserConnect) ||
		errors.Is(err, imgkit.ErrPageLoad) ||
		errors.Is(err, imgkit.ErrScreenshot) {
		return ExitRenderer
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteImage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, imgkit.ErrReadAttachment) ||
		errors.Is(err, fileutil.ErrNotDirectory) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, imgkit.ErrUnknownFormat) ||
		errors.Is(err, imgkit.ErrUnknownBackend) ||
		errors.Is(err, imgkit.ErrImproperSource) ||
		errors.Is(err, imgkit.ErrUnsupportedFormat) ||
		errors.Is(err, imgkit.ErrMarkdownConversion) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrTerminalOutput) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, configName string) string {
	switch {
	case errors.Is(err, imgkit.ErrRendererNotFound):
		return hints.ForRendererNotFound(imgkit.EnvExecutable)
	case errors.Is(err, imgkit.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, imgkit.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, imgkit.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat()
	case errors.Is(err, imgkit.ErrUnknownFormat):
		return hints.ForUnknownFormat(knownFormatNames())
	case errors.Is(err, imgkit.ErrImproperSource):
		return hints.ForImproperSource()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(configName))
	case errors.Is(err, fileutil.ErrNotDirectory):
		return hints.ForOutputDirectory()
	}
	return ""
}

func knownFormatNames() []string {
	formats := imgkit.KnownFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}
