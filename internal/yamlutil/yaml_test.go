package yamlutil_test

// Notes:
// - Decoding into real config types is covered in internal/config.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-imgkit/internal/yamlutil"
)

type testConfig struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled bool   `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Parses YAML and rejects unknown fields
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML with known fields only",
			data: []byte("name: strict\ncount: 10"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Name != "strict" {
					t.Errorf("Name = %q, want %q", cfg.Name, "strict")
				}
				if cfg.Count != 10 {
					t.Errorf("Count = %d, want %d", cfg.Count, 10)
				}
			},
		},
		{
			name:    "unknown field causes error",
			data:    []byte("name: test\nunknown_field: value"),
			dest:    &testConfig{},
			wantErr: errors.New("yamlutil:"), // should error on unknown field
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "empty data",
			data:    []byte{},
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if errors.Is(err, tt.wantErr) {
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr.Error()) {
					t.Fatalf("error = %q, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSizeLimit - Both decoders refuse oversized config files
// ---------------------------------------------------------------------------

// Note: MaxInputSize is a package variable, so these subtests run serially.

func TestSizeLimit(t *testing.T) {
	saved := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = saved })
	yamlutil.MaxInputSize = 64

	fits := []byte("name: x\n" + strings.Repeat("#", 56))
	tooBig := append(fits, '#')

	t.Run("strict decode at the limit", func(t *testing.T) {
		var cfg testConfig
		if err := yamlutil.UnmarshalStrict(fits, &cfg); err != nil {
			t.Fatalf("UnmarshalStrict() error = %v", err)
		}
		if cfg.Name != "x" {
			t.Errorf("Name = %q, want %q", cfg.Name, "x")
		}
	})

	t.Run("strict decode over the limit", func(t *testing.T) {
		err := yamlutil.UnmarshalStrict(tooBig, &testConfig{})
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Fatalf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
		}
		if !strings.Contains(err.Error(), "65 bytes (max 64)") {
			t.Errorf("error = %q, want sizes in message", err)
		}
	})

	t.Run("ordered decode over the limit", func(t *testing.T) {
		_, err := yamlutil.UnmarshalOrdered(tooBig)
		if !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Fatalf("UnmarshalOrdered() error = %v, want ErrInputTooLarge", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestSyntaxErrorPrefix - Decoder errors carry the package prefix
// ---------------------------------------------------------------------------

func TestSyntaxErrorPrefix(t *testing.T) {
	t.Parallel()

	broken := []byte("options: [width, 800")

	if err := yamlutil.UnmarshalStrict(broken, &map[string]any{}); err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("UnmarshalStrict() error = %v, want yamlutil: prefix", err)
	}
	if _, err := yamlutil.UnmarshalOrdered(broken); err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("UnmarshalOrdered() error = %v, want yamlutil: prefix", err)
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalOrdered - Keeps mapping order for renderer options
// ---------------------------------------------------------------------------

func TestUnmarshalOrdered(t *testing.T) {
	t.Parallel()

	data := []byte("quality: 75\nzoom: 1.5\ncustom-header: [User-Agent, bot]\nenable-plugins: false\n")
	got, err := yamlutil.UnmarshalOrdered(data)
	if err != nil {
		t.Fatalf("UnmarshalOrdered() error = %v", err)
	}

	wantKeys := []string{"quality", "zoom", "custom-header", "enable-plugins"}
	if len(got) != len(wantKeys) {
		t.Fatalf("len = %d, want %d", len(got), len(wantKeys))
	}
	for i, k := range wantKeys {
		if got[i].Key != k {
			t.Errorf("key[%d] = %q, want %q", i, got[i].Key, k)
		}
	}

	if list, ok := got[2].Value.([]any); !ok || len(list) != 2 {
		t.Errorf("custom-header = %#v, want a two element list", got[2].Value)
	}
	if got[3].Value != false {
		t.Errorf("enable-plugins = %#v, want false", got[3].Value)
	}
}

func TestUnmarshalOrdered_EmptyAndNull(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "null", "~"} {
		got, err := yamlutil.UnmarshalOrdered([]byte(in))
		if err != nil || len(got) != 0 {
			t.Errorf("UnmarshalOrdered(%q) = %v, %v, want no entries", in, got, err)
		}
	}
}

func TestUnmarshalOrdered_NotMapping(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"- a\n- b\n", "just a string"} {
		_, err := yamlutil.UnmarshalOrdered([]byte(in))
		if !errors.Is(err, yamlutil.ErrNotMapping) {
			t.Errorf("UnmarshalOrdered(%q) error = %v, want ErrNotMapping", in, err)
		}
	}
}

func TestUnmarshalOrdered_NestedMapping(t *testing.T) {
	t.Parallel()

	got, err := yamlutil.UnmarshalOrdered([]byte("outer:\n  b: 1\n  a: 2\n"))
	if err != nil {
		t.Fatalf("UnmarshalOrdered() error = %v", err)
	}
	inner, ok := got[0].Value.([]yamlutil.KeyValue)
	if !ok {
		t.Fatalf("nested value = %T, want []yamlutil.KeyValue", got[0].Value)
	}
	if len(inner) != 2 || inner[0].Key != "b" || inner[1].Key != "a" {
		t.Errorf("nested = %#v, want b then a", inner)
	}
}
