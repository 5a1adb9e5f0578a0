package imgkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-imgkit/internal/process"
)

// imageRenderer abstracts the rendering backend so the converter pipeline
// can be tested without wkhtmltoimage or a browser.
type imageRenderer interface {
	Render(ctx context.Context, req *renderRequest) ([]byte, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ imageRenderer = (*processRenderer)(nil)
	_ imageRenderer = (*chromeRenderer)(nil)
)

// renderRequest is built fresh for every Render call.
type renderRequest struct {
	Source  *Source       // after injection
	Options RenderOptions // merged, with the resolved format
	Format  Format
	Output  string // file path; empty for bytes
}

// runFunc matches process.Run.
type runFunc func(ctx context.Context, c process.Command) (*process.Outcome, error)

// processRenderer drives the wkhtmltoimage executable.
type processRenderer struct {
	executable  string
	timeout     time.Duration
	gracePeriod time.Duration
	logger      *slog.Logger
	run         runFunc
}

func newProcessRenderer(cfg converterConfig, logger *slog.Logger) *processRenderer {
	return &processRenderer{
		executable:  cfg.executable,
		timeout:     cfg.timeout,
		gracePeriod: cfg.gracePeriod,
		logger:      logger,
		run:         process.Run,
	}
}

// Render runs the renderer once. With an output path the renderer writes
// the file itself and nil bytes are returned.
func (r *processRenderer) Render(ctx context.Context, req *renderRequest) ([]byte, error) {
	argv := BuildCommand(ResolveExecutable(r.executable), req.Options.Args(), req.Source, req.Output)

	var stdin []byte
	if req.Source.IsHTML() {
		stdin = []byte(req.Source.String())
	}

	// The output check below must not see a file left by an earlier run.
	if req.Output != "" {
		if err := os.Remove(req.Output); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("removing previous output: %w", err)
		}
	}

	r.logger.DebugContext(ctx, "running renderer", "argv", argv, "stdin_bytes", len(stdin))
	out, err := r.run(ctx, process.Command{
		Args:        argv,
		Stdin:       stdin,
		Timeout:     r.timeout,
		GracePeriod: r.gracePeriod,
	})
	if err != nil {
		if errors.Is(err, process.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrRendererNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCommandFailed, err)
	}

	cmdErr := &CommandError{
		Command:  argv,
		Stderr:   out.Stderr,
		ExitCode: out.ExitCode,
		Output:   out.Stdout,
	}

	switch out.Status {
	case process.StatusTimedOut:
		cmdErr.TimedOut = true
		r.logger.WarnContext(ctx, "renderer timed out",
			"timeout", r.timeout, "partial_bytes", len(out.Stdout))
		return nil, cmdErr
	case process.StatusProcessError:
		cmdErr.Err = out.Err
		return nil, cmdErr
	}

	// Killed by a signal: whatever was written is not trustworthy.
	if out.ExitCode < 0 {
		return nil, cmdErr
	}

	if req.Output != "" {
		info, statErr := os.Stat(req.Output)
		if statErr != nil || info.Size() == 0 {
			return nil, cmdErr
		}
	} else if len(out.Stdout) == 0 {
		return nil, cmdErr
	}

	// wkhtmltoimage exits 1 when a sub-resource fails to load yet still
	// produces the image.
	if out.ExitCode != 0 {
		r.logger.WarnContext(ctx, "renderer exited with an error but produced output",
			"exit_code", out.ExitCode, "stderr", out.Stderr)
	}

	r.logger.DebugContext(ctx, "renderer finished",
		"duration", out.Duration, "bytes", len(out.Stdout), "output", req.Output)

	if req.Output != "" {
		return nil, nil
	}
	return out.Stdout, nil
}

// Close is a no-op: every run owns and releases its own process.
func (r *processRenderer) Close() error { return nil }
