package imgkit

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderOptions is an ordered set of renderer options. Keys are normalized
// when set: lower-cased, with every rune outside [a-z0-9] replaced by '-',
// so "page_size", "Page-Size" and "page size" name the same option.
//
// Values may be:
//   - bool: true emits a bare flag, false omits the option
//   - nil: omits the option
//   - []string or []any: the flag followed by every element, in order
//   - anything else: the flag followed by the value's string form
//
// The zero value is an empty, ready to use set. Plain assignment shares
// storage; use Clone before mutating a copy.
type RenderOptions struct {
	entries []optionEntry
}

type optionEntry struct {
	key   string
	value any
}

// Arg is one normalized command-line option.
type Arg struct {
	Flag   string   // "--" followed by the normalized key
	Values []string // empty for bare flags
}

// NewRenderOptions builds options from alternating key/value pairs, keeping
// their order. Panics on an odd argument count or a non-string key
// (programmer error).
func NewRenderOptions(kv ...any) RenderOptions {
	if len(kv)%2 != 0 {
		panic("imgkit: NewRenderOptions requires key/value pairs")
	}
	var o RenderOptions
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("imgkit: NewRenderOptions key %v is not a string", kv[i]))
		}
		o.Set(key, kv[i+1])
	}
	return o
}

// NormalizeKey returns the canonical form of an option name.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Set stores value under key. An existing key keeps its position.
func (o *RenderOptions) Set(key string, value any) {
	key = NormalizeKey(key)
	for i := range o.entries {
		if o.entries[i].key == key {
			o.entries[i].value = value
			return
		}
	}
	o.entries = append(o.entries, optionEntry{key: key, value: value})
}

// Get returns the value stored under key.
func (o RenderOptions) Get(key string) (any, bool) {
	key = NormalizeKey(key)
	for _, e := range o.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Delete removes key if present.
func (o *RenderOptions) Delete(key string) {
	key = NormalizeKey(key)
	for i, e := range o.entries {
		if e.key == key {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of stored options, including omitted values.
func (o RenderOptions) Len() int { return len(o.entries) }

// Keys returns the normalized keys in order.
func (o RenderOptions) Keys() []string {
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// Merge sets every option of other on o, in other's order.
func (o *RenderOptions) Merge(other RenderOptions) {
	for _, e := range other.entries {
		o.Set(e.key, e.value)
	}
}

// Clone returns an independent copy. Slice values are shared.
func (o RenderOptions) Clone() RenderOptions {
	return RenderOptions{entries: append([]optionEntry(nil), o.entries...)}
}

// Normalize returns the options as command-line flags, in order, dropping
// false and nil values. Values are never quoted: each becomes its own argv
// entry.
func (o RenderOptions) Normalize() []Arg {
	args := make([]Arg, 0, len(o.entries))
	for _, e := range o.entries {
		values, ok := normalizeValue(e.value)
		if !ok {
			continue
		}
		args = append(args, Arg{Flag: "--" + e.key, Values: values})
	}
	return args
}

// Args flattens Normalize into argv tokens.
func (o RenderOptions) Args() []string {
	var tokens []string
	for _, a := range o.Normalize() {
		tokens = append(tokens, a.Flag)
		tokens = append(tokens, a.Values...)
	}
	return tokens
}

// normalizeValue reports the value tokens for v and whether the option is
// emitted at all.
func normalizeValue(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case bool:
		return nil, t
	case string:
		return []string{t}, true
	case []string:
		return append([]string(nil), t...), true
	case []any:
		values := make([]string, len(t))
		for i, item := range t {
			values[i] = scalarString(item)
		}
		return values, true
	default:
		return []string{scalarString(t)}, true
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
