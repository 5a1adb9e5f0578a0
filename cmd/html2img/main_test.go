package main

// Notes:
// - runMain: we test dispatch and exit codes. Rendering through a fake
//   wkhtmltoimage is covered in render_test.go.

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// testEnv returns an environment with captured output and a non-terminal
// stdout.
func testEnv(stdin string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdin:      strings.NewReader(stdin),
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func(io.Writer) bool { return false },
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain_NoArgs(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv("")
	if code := runMain([]string{"html2img"}, env); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "Usage: html2img") {
		t.Errorf("stderr = %q, want usage", stderr.String())
	}
}

func TestRunMain_Version(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"version", "--version"} {
		env, stdout, _ := testEnv("")
		if code := runMain([]string{"html2img", arg}, env); code != ExitSuccess {
			t.Errorf("%s: exit code = %d, want 0", arg, code)
		}
		if !strings.Contains(stdout.String(), "html2img "+Version) {
			t.Errorf("%s: stdout = %q", arg, stdout.String())
		}
	}
}

func TestRunMain_Help(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"help", []string{"html2img", "help"}, "Commands:"},
		{"help render", []string{"html2img", "help", "render"}, "--option"},
		{"help doctor", []string{"html2img", "help", "doctor"}, "--json"},
		{"render --help", []string{"html2img", "render", "--help"}, "Usage: html2img render"},
		{"implicit render -h", []string{"html2img", "-h"}, "Commands:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := testEnv("")
			if code := runMain(tt.args, env); code != ExitSuccess {
				t.Errorf("exit code = %d, want 0", code)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("stdout lacks %q:\n%s", tt.want, stdout.String())
			}
		})
	}
}

func TestRunMain_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"html2img", "page.html", "--nope"}},
		{"negative workers", []string{"html2img", "render", "-w", "-2", "dir"}},
		{"bad format", []string{"html2img", "render", "-f", "bmp", "-"}},
		{"bad backend", []string{"html2img", "render", "-b", "phantomjs", "-"}},
		{"empty option", []string{"html2img", "render", "-O", "=1", "-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, _, stderr := testEnv("<p/>")
			if code := runMain(tt.args, env); code != ExitUsage {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, ExitUsage, stderr.String())
			}
		})
	}
}

func TestRunMain_UnknownHelpTopic(t *testing.T) {
	t.Parallel()

	env, _, stderr := testEnv("")
	runMain([]string{"html2img", "help", "frobnicate"}, env)
	if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
