// Package config loads polyatrim settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Color modes for trimmed output.
const (
	ColorNever  = "never"
	ColorAlways = "always"
	ColorAuto   = "auto"
)

// Config is the full set of options shared by the CLI and the server.
type Config struct {
	// Model is a model file path. Empty means the built-in model.
	Model     string `yaml:"model"`
	Workers   int    `yaml:"workers"`
	BatchSize int    `yaml:"batch_size"`
	Color     string `yaml:"color"`
	// IsoSeq rewrites Iso-Seq FLNC header coordinates.
	IsoSeq bool `yaml:"isoseq"`
	// Report is where "name<TAB>length" lines go: stderr, stdout, none or a
	// file path.
	Report string `yaml:"report"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig selects slog level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxReads caps the reads accepted by one trim request.
	MaxReads int `yaml:"max_reads"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		BatchSize: 100,
		Color:     ColorNever,
		IsoSeq:    true,
		Report:    "stderr",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			RequestTimeout: 60 * time.Second,
			MaxReads:       10000,
		},
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch_size must be positive, got %d", c.BatchSize))
	}
	switch c.Color {
	case ColorNever, ColorAlways, ColorAuto:
	default:
		errs = append(errs, fmt.Errorf("color must be never, always or auto, got %q", c.Color))
	}
	if c.Report == "" {
		errs = append(errs, errors.New("report must not be empty"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Server.MaxReads <= 0 {
		errs = append(errs, fmt.Errorf("server.max_reads must be positive, got %d", c.Server.MaxReads))
	}
	return errors.Join(errs...)
}

// Parse decodes YAML over the defaults. Unknown keys are an error.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Load reads path. A missing file yields the defaults; an empty path does
// too.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default configuration to path, creating parent
// directories.
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create the config directory: %w", err)
		}
	}
	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
