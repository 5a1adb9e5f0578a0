// Package yamlutil wraps YAML parsing to isolate the external dependency.
// Config structs and ordered renderer option maps both decode through here.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: expected a mapping")
)

// KeyValue is one entry of a mapping, in document order.
type KeyValue struct {
	Key   string
	Value any
}

func validateSize(data []byte) error {
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	return nil
}

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if err := validateSize(data); err != nil {
		return err
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalOrdered decodes a top-level mapping and keeps its key order.
// Non-string keys are formatted with %v. Sequences decode as []any and
// nested mappings as []KeyValue. Empty or null input yields no entries.
func UnmarshalOrdered(data []byte) ([]KeyValue, error) {
	if err := validateSize(data); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	if v == nil {
		return nil, nil
	}

	ms, ok := v.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotMapping, v)
	}
	return fromMapSlice(ms), nil
}

func fromMapSlice(ms yaml.MapSlice) []KeyValue {
	out := make([]KeyValue, 0, len(ms))
	for _, item := range ms {
		key, ok := item.Key.(string)
		if !ok {
			key = fmt.Sprint(item.Key)
		}
		out = append(out, KeyValue{Key: key, Value: orderedValue(item.Value)})
	}
	return out
}

func orderedValue(v any) any {
	switch val := v.(type) {
	case yaml.MapSlice:
		return fromMapSlice(val)
	case []any:
		for i := range val {
			val[i] = orderedValue(val[i])
		}
		return val
	}
	return v
}
