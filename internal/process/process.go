// Package process runs an external renderer with a stdin payload, concurrent
// stdout/stderr draining and a wall-clock limit.
//
// The child gets three dedicated pipes. The stdin payload is written and the
// pipe closed while both output pipes are drained by their own goroutines, so
// a renderer that floods stderr before reading its input cannot deadlock the
// run. On timeout the process group receives SIGTERM, then SIGKILL once the
// grace period is over. All pipe ends are closed on every exit path.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sentinel errors for process execution.
var (
	ErrEmptyCommand = errors.New("process: empty command")
	ErrNotFound     = errors.New("process: executable not found")
)

// DefaultGracePeriod bounds how long a terminated child may take to exit
// before it is killed and its pipes are closed.
const DefaultGracePeriod = 2 * time.Second

// Status describes how a run ended.
type Status int

const (
	StatusCompleted Status = iota
	StatusTimedOut
	StatusProcessError
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusTimedOut:
		return "timed out"
	case StatusProcessError:
		return "process error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Command describes a single run.
type Command struct {
	Args        []string      // Args[0] is the executable, looked up in PATH when not a path
	Stdin       []byte        // nil leaves stdin unconnected
	Timeout     time.Duration // 0 = bounded by ctx only
	GracePeriod time.Duration // 0 = DefaultGracePeriod
}

// Outcome holds what a run produced.
type Outcome struct {
	Stdout   []byte
	Stderr   string
	ExitCode int // -1 when the process was signaled or its exit was never observed
	Status   Status
	Err      error // set when Status is StatusProcessError
	Duration time.Duration
}

// Run spawns c.Args and returns once the child has exited and both output
// streams reached EOF, or once the timeout or ctx expired.
// The returned error is non-nil only when the process could not be started;
// every other failure is reported through Outcome.Status.
func Run(ctx context.Context, c Command) (*Outcome, error) {
	if len(c.Args) == 0 || c.Args[0] == "" {
		return nil, ErrEmptyCommand
	}

	grace := c.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// #nosec G204 -- argv entries are passed verbatim, never through a shell
	cmd := exec.Command(c.Args[0], c.Args[1:]...)
	setProcessGroup(cmd)

	p, err := openPipes(cmd, c.Stdin != nil)
	if err != nil {
		return nil, err
	}
	defer p.closeAll()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, c.Args[0], err)
		}
		return nil, fmt.Errorf("starting %s: %w", c.Args[0], err)
	}
	// The child holds its own copies now.
	p.closeChildEnds()

	var stdout, stderr lockedBuffer
	var g errgroup.Group
	if p.stdinW != nil {
		g.Go(func() error { return writeStdin(p.stdinW, c.Stdin) })
	}
	g.Go(func() error { return drain(&stdout, p.stdoutR) })
	g.Go(func() error { return drain(&stderr, p.stderrR) })

	var streamErr, waitErr error
	finished := make(chan struct{})
	go func() {
		streamErr = g.Wait()
		waitErr = cmd.Wait()
		close(finished)
	}()

	out := &Outcome{ExitCode: -1}
	select {
	case <-finished:
		out.Status = StatusCompleted
		if streamErr != nil {
			out.Status = StatusProcessError
			out.Err = streamErr
		} else if waitErr != nil && !isExitError(waitErr) {
			out.Status = StatusProcessError
			out.Err = waitErr
		}
		if cmd.ProcessState != nil {
			out.ExitCode = cmd.ProcessState.ExitCode()
		}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			out.Status = StatusTimedOut
		} else {
			out.Status = StatusProcessError
			out.Err = ctx.Err()
		}
		if stop(cmd, p, finished, grace) && cmd.ProcessState != nil {
			out.ExitCode = cmd.ProcessState.ExitCode()
		}
	}

	out.Stdout = stdout.Bytes()
	out.Stderr = string(stderr.Bytes())
	out.Duration = time.Since(start)
	return out, nil
}

// stop terminates the process group, escalating to SIGKILL and closing the
// parent pipe ends after grace. It reports whether the run goroutine
// finished; it never waits longer than two grace periods.
func stop(cmd *exec.Cmd, p *pipes, finished <-chan struct{}, grace time.Duration) bool {
	TerminateProcessGroup(cmd.Process.Pid)

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-finished:
		return true
	case <-timer.C:
	}

	KillProcessGroup(cmd.Process.Pid)
	_ = cmd.Process.Kill()
	// Unblocks the stream goroutines even if a grandchild keeps the pipes open.
	p.closeParentEnds()

	timer.Reset(grace)
	select {
	case <-finished:
		return true
	case <-timer.C:
		return false
	}
}

func writeStdin(w *os.File, payload []byte) error {
	_, err := w.Write(payload)
	closeErr := w.Close()
	if err != nil {
		// The renderer may exit without consuming its input.
		if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
			return nil
		}
		return fmt.Errorf("writing stdin: %w", err)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("closing stdin: %w", closeErr)
	}
	return nil
}

func drain(dst io.Writer, r *os.File) error {
	_, err := io.Copy(dst, r)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("reading output: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission)
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// pipes holds both ends of the three standard streams.
type pipes struct {
	stdinR, stdinW   *os.File
	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File
}

func openPipes(cmd *exec.Cmd, withStdin bool) (*pipes, error) {
	p := &pipes{}
	var err error
	if withStdin {
		if p.stdinR, p.stdinW, err = os.Pipe(); err != nil {
			return nil, fmt.Errorf("creating stdin pipe: %w", err)
		}
		cmd.Stdin = p.stdinR
	}
	if p.stdoutR, p.stdoutW, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	cmd.Stdout = p.stdoutW
	if p.stderrR, p.stderrW, err = os.Pipe(); err != nil {
		p.closeAll()
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	cmd.Stderr = p.stderrW
	return p, nil
}

func (p *pipes) closeChildEnds() {
	closeFiles(p.stdinR, p.stdoutW, p.stderrW)
}

func (p *pipes) closeParentEnds() {
	closeFiles(p.stdinW, p.stdoutR, p.stderrR)
}

// closeAll is safe to call more than once; *os.File.Close is idempotent.
func (p *pipes) closeAll() {
	p.closeChildEnds()
	p.closeParentEnds()
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}

// lockedBuffer lets the caller read output while a stuck stream goroutine
// may still be writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}
