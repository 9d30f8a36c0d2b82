// Package config loads the intersection command configuration from a YAML
// file and INTERSECTION_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/intersection"
	"github.com/anggasct/intersection/internal/telemetry"
	"github.com/anggasct/intersection/pkg/logging"
)

// DefaultFrame approximates a 60Hz render loop.
const DefaultFrame = 16 * time.Millisecond

// Config is the full command configuration.
type Config struct {
	Green       time.Duration           `yaml:"green"`
	Yellow      time.Duration           `yaml:"yellow"`
	Frame       time.Duration           `yaml:"frame"`
	Roads       intersection.RoadNames  `yaml:"roads"`
	MetricsAddr string                  `yaml:"metrics_addr"`
	Logging     logging.Config          `yaml:"logging"`
	Tracing     telemetry.TracingConfig `yaml:"tracing"`
}

// Default returns the reference timing and road names.
func Default() Config {
	return Config{
		Green:   intersection.DefaultGreen,
		Yellow:  intersection.DefaultYellow,
		Frame:   DefaultFrame,
		Roads:   intersection.DefaultRoadNames(),
		Logging: logging.Config{Level: "info", Format: "text"},
		Tracing: telemetry.DefaultTracingConfig(),
	}
}

// Load reads defaults, then the file at path if non-empty, then environment
// overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults without consulting the
// environment.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decode(bytes.NewReader(data), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays INTERSECTION_*, LOG_* and tracing variables. Durations
// accept Go syntax ("2.5s") or plain seconds ("2.5").
func (c *Config) ApplyEnv() error {
	for _, d := range []struct {
		key    string
		target *time.Duration
	}{
		{"INTERSECTION_GREEN", &c.Green},
		{"INTERSECTION_YELLOW", &c.Yellow},
		{"INTERSECTION_FRAME", &c.Frame},
	} {
		raw := os.Getenv(d.key)
		if raw == "" {
			continue
		}
		v, err := ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = v
	}

	if v := os.Getenv("INTERSECTION_ROAD_A"); v != "" {
		c.Roads.A = v
	}
	if v := os.Getenv("INTERSECTION_ROAD_B"); v != "" {
		c.Roads.B = v
	}
	if v := os.Getenv("INTERSECTION_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}

	env := logging.ConfigFromEnv()
	if env.Level != "" {
		c.Logging.Level = env.Level
	}
	if env.Format != "" {
		c.Logging.Format = env.Format
	}

	c.Tracing = telemetry.TracingConfigFromEnv(c.Tracing)
	return nil
}

// Validate checks the phase durations, frame interval and tracing settings.
func (c Config) Validate() error {
	if _, err := c.Durations(); err != nil {
		return err
	}
	if c.Frame <= 0 {
		return intersection.NewConfigurationError("Config", fmt.Sprintf("frame interval must be positive, got %s", c.Frame))
	}
	if err := c.Tracing.Validate(); err != nil {
		return intersection.NewConfigurationError("Config", err.Error())
	}
	return nil
}

// Durations returns validated phase durations.
func (c Config) Durations() (intersection.PhaseDurations, error) {
	return intersection.NewPhaseDurations(c.Green, c.Yellow)
}

// ParseDuration parses "2.5s"-style durations, or a bare number as seconds.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
