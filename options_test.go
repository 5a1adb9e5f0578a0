package imgkit

// Notes:
// - Normalize is checked on exact argv tokens: the renderer sees them as is
// - No shell is involved, so values are asserted unquoted

import (
	"reflect"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNormalizeKey
// ---------------------------------------------------------------------------

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"quality", "quality"},
		{"page_size", "page-size"},
		{"Page-Size", "page-size"},
		{"crop h", "crop-h"},
		{"crop_H", "crop-h"},
		{"enable.javascript", "enable-javascript"},
		{"zoom2x", "zoom2x"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeKey(tt.key); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRenderOptions_Args - Normalization
// ---------------------------------------------------------------------------

func TestRenderOptions_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts RenderOptions
		want []string
	}{
		{
			name: "scalar value follows its flag",
			opts: NewRenderOptions("quality", 75),
			want: []string{"--quality", "75"},
		},
		{
			name: "false is omitted",
			opts: NewRenderOptions("disable_smart_shrinking", false),
			want: nil,
		},
		{
			name: "nil is omitted",
			opts: NewRenderOptions("width", nil),
			want: nil,
		},
		{
			name: "true is a bare flag",
			opts: NewRenderOptions("transparent", true),
			want: []string{"--transparent"},
		},
		{
			name: "multi value keeps order",
			opts: NewRenderOptions("custom_header", []string{"User-Agent", "some user agent"}),
			want: []string{"--custom-header", "User-Agent", "some user agent"},
		},
		{
			name: "any slice",
			opts: NewRenderOptions("cookie", []any{"name", 42}),
			want: []string{"--cookie", "name", "42"},
		},
		{
			name: "floats without exponent",
			opts: NewRenderOptions("zoom", 1.5, "dpi", float32(96)),
			want: []string{"--zoom", "1.5", "--dpi", "96"},
		},
		{
			name: "stringer",
			opts: NewRenderOptions("javascript_delay", 2*time.Second),
			want: []string{"--javascript-delay", "2s"},
		},
		{
			name: "shell metacharacters stay one token",
			opts: NewRenderOptions("header", `blah"; touch /tmp/x #`),
			want: []string{"--header", `blah"; touch /tmp/x #`},
		},
		{
			name: "insertion order preserved",
			opts: NewRenderOptions("width", 800, "height", 600, "quality", 90),
			want: []string{"--width", "800", "--height", "600", "--quality", "90"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.opts.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOptions_Normalize(t *testing.T) {
	t.Parallel()

	opts := NewRenderOptions("quality", 75, "transparent", true, "zoom", false)
	want := []Arg{
		{Flag: "--quality", Values: []string{"75"}},
		{Flag: "--transparent"},
	}
	if got := opts.Normalize(); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestRenderOptions - Mapping operations
// ---------------------------------------------------------------------------

func TestRenderOptions_SetKeepsPosition(t *testing.T) {
	t.Parallel()

	var opts RenderOptions
	opts.Set("width", 800)
	opts.Set("height", 600)
	opts.Set("WIDTH", 1024)

	if got := opts.Keys(); !reflect.DeepEqual(got, []string{"width", "height"}) {
		t.Errorf("Keys() = %v, want [width height]", got)
	}
	if v, _ := opts.Get("width"); v != 1024 {
		t.Errorf("width = %v, want 1024", v)
	}
}

func TestRenderOptions_Merge(t *testing.T) {
	t.Parallel()

	base := NewRenderOptions("height", 1000, "quality", 50)
	base.Merge(NewRenderOptions("quality", 90, "page_size", "Legal"))

	want := []string{"--height", "1000", "--quality", "90", "--page-size", "Legal"}
	if got := base.Args(); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestRenderOptions_MergeFalseDisables(t *testing.T) {
	t.Parallel()

	base := NewRenderOptions("height", 1000)
	base.Merge(NewRenderOptions("height", false))

	if got := base.Args(); len(got) != 0 {
		t.Errorf("Args() = %q, want none", got)
	}
	if base.Len() != 1 {
		t.Errorf("Len() = %d, want 1", base.Len())
	}
}

func TestRenderOptions_Delete(t *testing.T) {
	t.Parallel()

	opts := NewRenderOptions("a", 1, "b", 2, "c", 3)
	opts.Delete("B")
	opts.Delete("missing")

	if got := opts.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() = %v, want [a c]", got)
	}
}

func TestRenderOptions_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := NewRenderOptions("width", 800)
	c := orig.Clone()
	c.Set("width", 1)
	c.Set("height", 2)

	if v, _ := orig.Get("width"); v != 800 {
		t.Errorf("orig width = %v, want 800", v)
	}
	if orig.Len() != 1 {
		t.Errorf("orig Len() = %d, want 1", orig.Len())
	}
}

func TestRenderOptions_ZeroValue(t *testing.T) {
	t.Parallel()

	var opts RenderOptions
	if opts.Len() != 0 || opts.Args() != nil {
		t.Errorf("zero value not empty: %v", opts.Args())
	}
	if _, ok := opts.Get("x"); ok {
		t.Error("Get on zero value found a key")
	}
}

func TestNewRenderOptions_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kv   []any
	}{
		{"odd count", []any{"width"}},
		{"non-string key", []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("NewRenderOptions() did not panic")
				}
			}()
			NewRenderOptions(tt.kv...)
		})
	}
}
