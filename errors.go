package imgkit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-imgkit/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrNilSource        = errors.New("source cannot be nil")
	ErrImproperSource   = errors.New("improper source")
	ErrUnknownFormat    = errors.New("unknown image format")
	ErrUnknownBackend   = errors.New("unknown renderer backend")
	ErrCommandFailed    = errors.New("command failed")
	ErrTimeout          = errors.New("renderer timed out")
	ErrRendererNotFound = errors.New("renderer executable not found")
	ErrReadAttachment   = errors.New("failed to read attachment")

	// Embedded option discovery. Recovered by the converter, never returned
	// from Render.
	ErrMetaParse = pipeline.ErrMetaParse

	// Markdown front end.
	ErrMarkdownConversion = pipeline.ErrMarkdownConversion

	// Chrome backend.
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageLoad          = errors.New("failed to load page")
	ErrScreenshot        = errors.New("screenshot capture failed")
	ErrUnsupportedFormat = errors.New("format not supported by backend")
)

// FormatError reports a requested or derived format outside the known set.
// It matches ErrUnknownFormat.
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q (known: %s)", ErrUnknownFormat, e.Format, strings.Join(formatNames(), ", "))
}

func (e *FormatError) Unwrap() error { return ErrUnknownFormat }

// CommandError reports a renderer run that produced no usable image.
// It always matches ErrCommandFailed, and ErrTimeout when TimedOut is set.
type CommandError struct {
	Command  []string // full argv, executable first
	Stderr   string
	ExitCode int    // -1 when the process was signaled or never observed exiting
	TimedOut bool   // the run exceeded the converter timeout
	Output   []byte // partial stdout captured before the failure
	Err      error  // underlying cause, if any
}

// CommandLine returns the argv joined with spaces, for display only.
func (e *CommandError) CommandLine() string {
	return strings.Join(e.Command, " ")
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(ErrCommandFailed.Error())
	switch {
	case e.TimedOut:
		b.WriteString(" (timed out)")
	case e.ExitCode > 0:
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}
	b.WriteString(": ")
	b.WriteString(e.CommandLine())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *CommandError) Unwrap() []error {
	errs := []error{ErrCommandFailed}
	if e.TimedOut {
		errs = append(errs, ErrTimeout)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
