// Package config holds the settings savio applies when a caller gives
// none: default display formats, logging and text encoding. A Config can
// be loaded from YAML; keys absent from the file keep their defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/savio/engine/fileengine"
	"github.com/arloliu/savio/internal/logger"
	"github.com/arloliu/savio/schema"
)

// Config is the savio configuration.
type Config struct {
	Formats Formats `yaml:"formats"`

	// ShowWarnings logs engine warning statuses at warn level.
	ShowWarnings bool   `yaml:"show_warnings"`
	LogLevel     string `yaml:"log_level"`

	// Locale and Unicode select the text encoding of new files.
	Locale  string `yaml:"locale"`
	Unicode bool   `yaml:"unicode"`

	// BlockCases is the number of cases per block of the reference engine.
	BlockCases int `yaml:"block_cases"`
}

// Formats are the default display formats, in "F8.2" form.
type Formats struct {
	Numeric  string `yaml:"numeric"`
	Date     string `yaml:"date"`
	Time     string `yaml:"time"`
	DateTime string `yaml:"datetime"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := schema.DefaultFormats()

	return &Config{
		Formats: Formats{
			Numeric:  d.Numeric.String(),
			Date:     d.Date.String(),
			Time:     d.Time.String(),
			DateTime: d.DateTime.String(),
		},
		LogLevel:   "warn",
		Locale:     "en_US.UTF-8",
		Unicode:    true,
		BlockCases: fileengine.DefaultBlockCases,
	}
}

// Load reads a YAML configuration over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the default formats and the block size.
func (c *Config) Validate() error {
	if _, err := c.Defaults(); err != nil {
		return err
	}

	if c.BlockCases < 1 {
		return fmt.Errorf("block_cases must be positive, got %d", c.BlockCases)
	}

	return nil
}

// Defaults parses the default formats.
func (c *Config) Defaults() (schema.Defaults, error) {
	var (
		d   schema.Defaults
		err error
	)

	if d.Numeric, err = schema.ParseFormat(c.Formats.Numeric); err != nil {
		return d, fmt.Errorf("formats.numeric: %w", err)
	}

	if d.Date, err = schema.ParseFormat(c.Formats.Date); err != nil {
		return d, fmt.Errorf("formats.date: %w", err)
	}

	if d.Time, err = schema.ParseFormat(c.Formats.Time); err != nil {
		return d, fmt.Errorf("formats.time: %w", err)
	}

	if d.DateTime, err = schema.ParseFormat(c.Formats.DateTime); err != nil {
		return d, fmt.Errorf("formats.datetime: %w", err)
	}

	return d, nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	return logger.ParseLevel(c.LogLevel)
}

// Logger returns a text logger on stderr at the configured level.
func (c *Config) Logger() logger.Logger {
	return logger.Text(os.Stderr, c.Level())
}
