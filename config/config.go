// Package config loads orgaudit.yaml run configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/orgaudit/analyzer"
	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/finding"
	"github.com/zero-day-ai/orgaudit/sink"
)

// DefaultSourcePath is used when no input path is configured.
const DefaultSourcePath = "employees.csv"

// Config is the full run configuration.
type Config struct {
	Source   SourceConfig    `yaml:"source"`
	Analysis analyzer.Config `yaml:"analysis"`
	Output   OutputConfig    `yaml:"output"`
	Log      LogConfig       `yaml:"log"`
}

// SourceConfig locates the record source.
type SourceConfig struct {
	// Path of the comma-delimited input. Default: employees.csv
	Path string `yaml:"path,omitempty"`

	// NoHeader is set when the input has no header row.
	NoHeader bool `yaml:"no_header,omitempty"`
}

// OutputConfig controls how findings are written.
type OutputConfig struct {
	// Format is text, jsonl or csv. Default: text
	Format string `yaml:"format,omitempty"`

	// Path of the output file. Empty means stdout.
	Path string `yaml:"path,omitempty"`

	// Where is a CEL expression findings must satisfy to be written.
	Where string `yaml:"where,omitempty"`

	// MinSeverity drops findings below this severity.
	MinSeverity string `yaml:"min_severity,omitempty"`

	// Kinds restricts output to these finding kinds.
	Kinds []string `yaml:"kinds,omitempty"`

	// Diagnostics prints diagnostics after the findings.
	Diagnostics bool `yaml:"diagnostics,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info
	Level string `yaml:"level,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Source:   SourceConfig{Path: DefaultSourcePath},
		Analysis: analyzer.DefaultConfig(),
		Output:   OutputConfig{Format: string(sink.FormatText)},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, auditerr.NewConfigurationError("config.Load",
			fmt.Errorf("read config file: %w", err)).
			WithContext(map[string]any{"path": path})
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
// Fields left out keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, auditerr.NewConfigurationError("config.Parse", fmt.Errorf("parse YAML: %w", err))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values left by an explicit empty YAML value.
func (c *Config) applyDefaults() {
	defaults := analyzer.DefaultConfig()
	if c.Analysis.MinRatio == 0 {
		c.Analysis.MinRatio = defaults.MinRatio
	}
	if c.Analysis.MaxRatio == 0 {
		c.Analysis.MaxRatio = defaults.MaxRatio
	}
	if c.Source.Path == "" {
		c.Source.Path = DefaultSourcePath
	}
	if c.Output.Format == "" {
		c.Output.Format = string(sink.FormatText)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if _, err := sink.ParseFormat(c.Output.Format); err != nil {
		return auditerr.NewConfigurationError("config.Validate", err)
	}
	if _, err := c.Filter(); err != nil {
		return auditerr.NewConfigurationError("config.Validate", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return auditerr.NewConfigurationError("config.Validate", err)
	}
	if _, err := c.Expression(); err != nil {
		return err
	}
	return nil
}

// Filter builds the finding filter from the output section.
func (c *Config) Filter() (finding.Filter, error) {
	var f finding.Filter
	if c.Output.MinSeverity != "" {
		s, err := finding.ParseSeverity(c.Output.MinSeverity)
		if err != nil {
			return finding.Filter{}, err
		}
		f.MinSeverity = s
	}
	for _, k := range c.Output.Kinds {
		kind, err := finding.ParseKind(k)
		if err != nil {
			return finding.Filter{}, err
		}
		f.Kinds = append(f.Kinds, kind)
	}
	return f, nil
}

// Expression compiles Output.Where. It returns nil when no expression is
// configured.
func (c *Config) Expression() (*finding.Expression, error) {
	if strings.TrimSpace(c.Output.Where) == "" {
		return nil, nil
	}
	expr, err := finding.CompileExpression(c.Output.Where)
	if err != nil {
		return nil, auditerr.NewConfigurationError("config.Expression", err)
	}
	return expr, nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
