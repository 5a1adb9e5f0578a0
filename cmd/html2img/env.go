package main

import (
	"io"
	"os"

	"golang.org/x/term"

	imgkit "github.com/alnah/go-imgkit"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether w is an interactive terminal.
	IsTerminal func(w io.Writer) bool

	// ConverterOptions are appended after the options built from flags
	// and config.
	ConverterOptions []imgkit.Option

	// Doctor probes the host; nil uses the real system.
	Doctor *doctorProbe
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: isTerminal,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- fd fits in int
}
