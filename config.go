package mathpad

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts Go duration strings ("15s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config carries the tunables the serving front end reads from YAML.
type Config struct {
	// Engine selects the backend: "sympy" or "numeric".
	Engine string `yaml:"engine"`
	// Python is the interpreter binary for the sympy backend.
	Python string `yaml:"python"`
	// Domain and Samples control the graph command.
	Domain  Domain `yaml:"domain"`
	Samples int    `yaml:"samples"`
	// ReadyCeiling bounds the wait for the engine to load.
	ReadyCeiling Duration `yaml:"ready_ceiling"`
	LogLevel     string   `yaml:"log_level"`
	LogFile      string   `yaml:"log_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Engine:       "sympy",
		Python:       "python3",
		Domain:       DefaultDomain,
		Samples:      DefaultSamples,
		ReadyCeiling: Duration(15 * time.Second),
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults unchanged. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Engine {
	case "sympy", "numeric":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.Samples < 2 {
		return fmt.Errorf("samples must be at least 2, got %d", c.Samples)
	}
	if !(c.Domain.Min < c.Domain.Max) {
		return fmt.Errorf("invalid domain [%g, %g]", c.Domain.Min, c.Domain.Max)
	}
	if _, err := c.slogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) slogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
}

// SlogLevel returns the configured log level; validation has already
// rejected unknown names.
func (c Config) SlogLevel() slog.Level {
	level, _ := c.slogLevel()
	return level
}
