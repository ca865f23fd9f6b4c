package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Every field can be set from the
// environment; a .env file in the working directory is loaded first by the
// command entry point.
type Config struct {
	Addr               string        `env:"ADDR"                 envDefault:":8080"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`
	SessionCodeLength  int           `env:"SESSION_CODE_LENGTH"  envDefault:"5"`
	Chart              ChartConfig   `envPrefix:"CHART_"`
	Log                LogConfig     `envPrefix:"LOG_"`
}

// ChartConfig sizes the rendered charts, in pixels.
type ChartConfig struct {
	Width  int `env:"WIDTH"  envDefault:"800"`
	Height int `env:"HEIGHT" envDefault:"400"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"` // text|json
}

// EnvPrefix is prepended to every variable name, e.g. BQ_ADDR.
const EnvPrefix = "BQ_"

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadChart parses only the chart settings, for commands that render charts
// without running the server.
func LoadChart() (ChartConfig, error) {
	var c ChartConfig
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix + "CHART_"}); err != nil {
		return ChartConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return ChartConfig{}, err
	}
	return c, nil
}

// Validate rejects chart sizes too small to lay out axes and labels.
func (c ChartConfig) Validate() error {
	if c.Width < 200 || c.Height < 150 {
		return fmt.Errorf("chart size %dx%d is too small", c.Width, c.Height)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%sADDR must not be empty", EnvPrefix)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("%sSESSION_IDLE_TIMEOUT must be positive, got %s", EnvPrefix, c.SessionIdleTimeout)
	}
	if c.SessionCodeLength < 4 || c.SessionCodeLength > 12 {
		return fmt.Errorf("%sSESSION_CODE_LENGTH must be 4-12, got %d", EnvPrefix, c.SessionCodeLength)
	}
	if err := c.Chart.Validate(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT must be text or json, got %q", EnvPrefix, c.Log.Format)
	}
	return nil
}

// NewLogger builds the process logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
