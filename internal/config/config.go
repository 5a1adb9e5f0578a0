// Package config loads YAML configuration for the html2img CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	imgkit "github.com/alnah/go-imgkit"
	"github.com/alnah/go-imgkit/internal/fileutil"
	"github.com/alnah/go-imgkit/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxPrefixLength    = 64   // meta tag name prefix
	MaxOptionKeyLength = 64   // longest wkhtmltoimage flag is well under this
	MaxStyleLength     = 50   // chroma style name
	MaxTitleLength     = 200  // Markdown document title
	MaxWorkers         = 64
)

// userConfigDirName is the directory under os.UserConfigDir searched for
// named configs.
const userConfigDirName = "go-imgkit"

// Config holds all configuration for image rendering.
type Config struct {
	Renderer RendererConfig `yaml:"renderer"`
	Output   OutputConfig   `yaml:"output"`
	Meta     MetaConfig     `yaml:"meta"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Options  OptionList     `yaml:"options"`
}

// RendererConfig selects and tunes the rendering backend.
type RendererConfig struct {
	Backend    string `yaml:"backend"`    // "wkhtmltoimage" (default) or "chrome"
	Executable string `yaml:"executable"` // empty = $IMGKIT_WKHTMLTOIMAGE, PATH, fallback
	Timeout    string `yaml:"timeout"`    // Go duration, e.g. "45s"
	Workers    int    `yaml:"workers"`    // batch parallelism, 0 = auto
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Format string `yaml:"format"` // default format when no extension decides
	Dir    string `yaml:"dir"`    // batch output directory (empty = next to source)
}

// MetaConfig controls embedded meta tag options.
type MetaConfig struct {
	Prefix   *string `yaml:"prefix"`   // nil = "imgkit-"
	Disabled bool    `yaml:"disabled"` // ignore embedded options entirely
}

// MarkdownConfig tunes the Markdown front end.
type MarkdownConfig struct {
	Title          string `yaml:"title"`
	HighlightStyle string `yaml:"highlightStyle"`
}

// OptionList holds renderer options in file order. Keys are
// wkhtmltoimage flag names without the leading dashes.
type OptionList []yamlutil.KeyValue

// UnmarshalYAML decodes a mapping while keeping key order.
func (l *OptionList) UnmarshalYAML(data []byte) error {
	kvs, err := yamlutil.UnmarshalOrdered(data)
	if err != nil {
		return err
	}
	*l = kvs
	return nil
}

// RenderOptions converts the list, in order, into renderer options.
func (l OptionList) RenderOptions() imgkit.RenderOptions {
	var opts imgkit.RenderOptions
	for _, kv := range l {
		opts.Set(strings.TrimLeft(kv.Key, "-"), kv.Value)
	}
	return opts
}

// Validate checks values and field lengths. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if _, err := imgkit.ParseBackend(c.Renderer.Backend); err != nil {
		return fmt.Errorf("renderer.backend: %w", err)
	}
	if err := validateFieldLength("renderer.executable", c.Renderer.Executable, MaxPathLength); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Renderer.Workers < 0 || c.Renderer.Workers > MaxWorkers {
		return fmt.Errorf("%w: renderer.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Renderer.Workers)
	}

	if c.Output.Format != "" {
		if _, err := imgkit.ParseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("output.format: %w", err)
		}
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}

	if c.Meta.Prefix != nil {
		if err := validateFieldLength("meta.prefix", *c.Meta.Prefix, MaxPrefixLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("markdown.title", c.Markdown.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("markdown.highlightStyle", c.Markdown.HighlightStyle, MaxStyleLength); err != nil {
		return err
	}

	for i, kv := range c.Options {
		field := fmt.Sprintf("options[%d]", i)
		if strings.TrimLeft(kv.Key, "-") == "" {
			return fmt.Errorf("%w: %s: empty option name", ErrInvalidValue, field)
		}
		if err := validateFieldLength(field, kv.Key, MaxOptionKeyLength); err != nil {
			return err
		}
		if !validOptionValue(kv.Value, true) {
			return fmt.Errorf("%w: options.%s: nested mappings are not supported", ErrInvalidValue, kv.Key)
		}
	}

	return nil
}

// Timeout parses renderer.timeout. Zero means the library default.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Renderer.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Renderer.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: renderer.timeout must be a positive duration, got %q", ErrInvalidValue, c.Renderer.Timeout)
	}
	return d, nil
}

// MetaTagPrefix returns the effective prefix; empty disables embedded options.
func (c *Config) MetaTagPrefix() string {
	switch {
	case c.Meta.Disabled:
		return ""
	case c.Meta.Prefix != nil:
		return *c.Meta.Prefix
	}
	return imgkit.DefaultMetaTagPrefix
}

// validOptionValue accepts scalars and, at the top level, lists of scalars.
func validOptionValue(v any, allowList bool) bool {
	switch val := v.(type) {
	case []any:
		if !allowList {
			return false
		}
		for _, item := range val {
			if !validOptionValue(item, false) {
				return false
			}
		}
		return true
	case []yamlutil.KeyValue, map[string]any:
		return false
	}
	return true
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that defers everything to the
// library defaults.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, userConfigDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then the user config directory, .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
