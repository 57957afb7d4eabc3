package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/parser"
)

const (
	// DefaultIndentWidth is used when no valid indent width is configured.
	DefaultIndentWidth = 2
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "JSONKIT_"
)

// Color modes for tree output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the complete configuration for jsonkit
type Config struct {
	Format FormatConfig `yaml:"format"`
	Limits LimitsConfig `yaml:"limits"`
	Tree   TreeConfig   `yaml:"tree"`
	State  StateConfig  `yaml:"state"`
	Batch  BatchConfig  `yaml:"batch"`
	Dev    DevConfig    `yaml:"dev"`
}

// FormatConfig controls pretty printing
type FormatConfig struct {
	IndentWidth int `yaml:"indent_width"`
}

// LimitsConfig bounds the resources spent on one input
type LimitsConfig struct {
	MaxInputBytes int64         `yaml:"max_input_bytes"`
	MaxDepth      int           `yaml:"max_depth"`
	Timeout       time.Duration `yaml:"timeout"`
}

// TreeConfig controls the tree view
type TreeConfig struct {
	ShowTypes bool   `yaml:"show_types"`
	Color     string `yaml:"color"`
}

// StateConfig controls the saved session state
type StateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// BatchConfig controls processing of several inputs
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format: FormatConfig{
			IndentWidth: DefaultIndentWidth,
		},
		Limits: LimitsConfig{
			MaxInputBytes: parser.DefaultMaxInputBytes,
			MaxDepth:      parser.DefaultMaxDepth,
			Timeout:       5 * time.Second,
		},
		Tree: TreeConfig{
			ShowTypes: false,
			Color:     ColorAuto,
		},
		State: StateConfig{
			Enabled: true,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonkit.yml", ".jsonkit.yaml", "jsonkit.yml", "jsonkit.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate rejects settings that no component can work with.
// An invalid indent width is not fatal; it is replaced by the default.
func (c *Config) Validate() error {
	if c.Limits.MaxInputBytes < 0 {
		return errors.NewConfigurationError("limits.max_input_bytes must not be negative", errors.ErrInvalidSetting)
	}
	if c.Limits.MaxDepth < 0 {
		return errors.NewConfigurationError("limits.max_depth must not be negative", errors.ErrInvalidSetting)
	}
	if c.Limits.Timeout < 0 {
		return errors.NewConfigurationError("limits.timeout must not be negative", errors.ErrInvalidSetting)
	}
	switch c.Tree.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.NewConfigurationError(
			fmt.Sprintf("tree.color must be one of auto, always, never; got %q", c.Tree.Color),
			errors.ErrInvalidSetting,
		)
	}
	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = 1
	}
	if width, err := NormalizeIndent(c.Format.IndentWidth); err != nil {
		c.Format.IndentWidth = width
	}
	return nil
}

// ParserLimits returns the parser limits described by the config.
func (c *Config) ParserLimits() parser.Limits {
	return parser.Limits{
		MaxInputBytes: c.Limits.MaxInputBytes,
		MaxDepth:      c.Limits.MaxDepth,
	}
}

// NormalizeIndent returns width when it is positive. Otherwise it returns
// DefaultIndentWidth together with a configuration error the caller may log.
func NormalizeIndent(width int) (int, error) {
	if width > 0 {
		return width, nil
	}
	return DefaultIndentWidth, errors.NewConfigurationError(
		fmt.Sprintf("indent width %d is not positive, using %d", width, DefaultIndentWidth),
		errors.ErrInvalidIndent,
	)
}

// ParseIndent converts user input such as "4" to an indent width, falling
// back to DefaultIndentWidth with a configuration error for anything that
// is not a positive integer.
func ParseIndent(s string) (int, error) {
	width, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultIndentWidth, errors.NewConfigurationError(
			fmt.Sprintf("indent width %q is not an integer, using %d", s, DefaultIndentWidth),
			errors.ErrInvalidIndent,
		)
	}
	return NormalizeIndent(width)
}

// envBinding ties a config field to its environment variable.
type envBinding struct {
	field string
	apply func(c *Config, value string) error
}

var envBindings = []envBinding{
	{"IndentWidth", func(c *Config, v string) error {
		width, err := ParseIndent(v)
		c.Format.IndentWidth = width
		return err
	}},
	{"MaxInputBytes", func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Limits.MaxInputBytes = n
		return nil
	}},
	{"MaxDepth", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Limits.MaxDepth = n
		return nil
	}},
	{"Timeout", func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Limits.Timeout = d
		return nil
	}},
	{"ShowTypes", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Tree.ShowTypes = b
		return nil
	}},
	{"Color", func(c *Config, v string) error {
		c.Tree.Color = strings.ToLower(v)
		return nil
	}},
	{"StatePath", func(c *Config, v string) error {
		c.State.Path = v
		return nil
	}},
	{"StateEnabled", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.State.Enabled = b
		return nil
	}},
	{"Concurrency", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Batch.Concurrency = n
		return nil
	}},
	{"Debug", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Dev.Debug = b
		return nil
	}},
}

// EnvName returns the environment variable that overrides field,
// e.g. "MaxDepth" -> "JSONKIT_MAX_DEPTH".
func EnvName(field string) string {
	return EnvPrefix + strcase.ToScreamingSnake(field)
}

// ApplyEnv overrides settings from JSONKIT_* environment variables using
// lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		name := EnvName(b.field)
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := b.apply(c, value); err != nil {
			if errors.IsConfigurationError(err) {
				// invalid indent widths already fell back to the default
				continue
			}
			return errors.NewConfigurationError(fmt.Sprintf("invalid value %q for %s", value, name), err)
		}
	}
	return nil
}

// Overrides carries settings given on the command line. Nil fields were
// not set.
type Overrides struct {
	IndentWidth *int
	ShowTypes   *bool
	Color       *string
	Debug       *bool
	NoState     bool
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// command line, then environment, then config file, then defaults.
func LoadConfigWithCLI(configPath string, lookup func(string) (string, bool), o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	}

	if o.IndentWidth != nil {
		cfg.Format.IndentWidth = *o.IndentWidth
	}
	if o.ShowTypes != nil {
		cfg.Tree.ShowTypes = *o.ShowTypes
	}
	if o.Color != nil {
		cfg.Tree.Color = *o.Color
	}
	if o.Debug != nil && *o.Debug {
		cfg.Dev.Debug = true
	}
	if o.NoState {
		cfg.State.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StatePath returns the session state file, defaulting to
// <user config dir>/jsonkit/state.json.
func (c *Config) StatePath() (string, error) {
	if c.State.Path != "" {
		return c.State.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "jsonkit", "state.json"), nil
}
