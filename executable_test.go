package imgkit

// Notes:
// - Not parallel: tests swap the package-level lookPath and set env vars

import (
	"errors"
	"testing"
)

func stubLookPath(t *testing.T, path string, err error) {
	t.Helper()
	orig := lookPath
	lookPath = func(string) (string, error) { return path, err }
	t.Cleanup(func() { lookPath = orig })
}

// ---------------------------------------------------------------------------
// TestDefaultExecutable
// ---------------------------------------------------------------------------

func TestDefaultExecutable_EnvWins(t *testing.T) {
	t.Setenv(EnvExecutable, "/opt/wk/bin/wkhtmltoimage")
	stubLookPath(t, "/usr/bin/wkhtmltoimage", nil)

	if got := DefaultExecutable(); got != "/opt/wk/bin/wkhtmltoimage" {
		t.Errorf("DefaultExecutable() = %q, want env value", got)
	}
}

func TestDefaultExecutable_FromPath(t *testing.T) {
	t.Setenv(EnvExecutable, "")
	stubLookPath(t, "/usr/bin/wkhtmltoimage", nil)

	if got := DefaultExecutable(); got != "/usr/bin/wkhtmltoimage" {
		t.Errorf("DefaultExecutable() = %q, want PATH lookup", got)
	}
}

func TestDefaultExecutable_Fallback(t *testing.T) {
	t.Setenv(EnvExecutable, "")
	stubLookPath(t, "", errors.New("not found"))

	if got := DefaultExecutable(); got != FallbackExecutable {
		t.Errorf("DefaultExecutable() = %q, want %q", got, FallbackExecutable)
	}
}

func TestNewConverter_UsesDefaultExecutable(t *testing.T) {
	t.Setenv(EnvExecutable, "")
	stubLookPath(t, "/usr/bin/wkhtmltoimage", nil)

	conv, err := NewConverter(withRenderer(&mockRenderer{}))
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	if got := conv.Executable(); got != "/usr/bin/wkhtmltoimage" {
		t.Errorf("Executable() = %q, want PATH lookup", got)
	}
}
