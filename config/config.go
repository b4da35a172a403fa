// SPDX-License-Identifier: MIT

// Package config loads togglesolve settings from defaults, an optional YAML
// file and TOGGLESOLVE_* environment variables, in increasing precedence,
// and turns them into solver options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jfkriz/togglesolve/counter"
	"github.com/jfkriz/togglesolve/factory"
	"github.com/jfkriz/togglesolve/gf2"
)

// Environment variables read by Load.
const (
	EnvWorkers     = "TOGGLESOLVE_WORKERS"
	EnvBackend     = "TOGGLESOLVE_BACKEND"
	EnvTimeout     = "TOGGLESOLVE_TIMEOUT"
	EnvMaxFreeVars = "TOGGLESOLVE_MAX_FREE_VARS"
	EnvLogLevel    = "TOGGLESOLVE_LOG_LEVEL"
)

// ErrInvalid indicates a setting outside its allowed range.
var ErrInvalid = errors.New("config: invalid setting")

// Config is the complete application configuration.
type Config struct {
	// Workers bounds concurrently solved machines.
	Workers int `yaml:"workers"`
	// AbortOnError stops the batch at the first failed machine.
	AbortOnError bool `yaml:"abort_on_error"`

	Lights   LightsConfig   `yaml:"lights"`
	Counters CountersConfig `yaml:"counters"`
	Log      LogConfig      `yaml:"log"`
}

// LightsConfig configures the GF(2) solver.
type LightsConfig struct {
	MaxFreeVars int `yaml:"max_free_vars"`
	// OnExcess is "reject" or "warn".
	OnExcess    string `yaml:"on_excess"`
	Parallelism int    `yaml:"parallelism"`
	// Certify re-proves each minimum with a SAT solver.
	Certify bool `yaml:"certify"`
}

// CountersConfig configures the integer solver.
type CountersConfig struct {
	// Backend is "pb" or "search".
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures the slog handler built by NewLogger.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers: runtime.NumCPU(),
		Lights: LightsConfig{
			MaxFreeVars: gf2.DefaultMaxFreeVars,
			OnExcess:    "reject",
			Parallelism: 1,
		},
		Counters: CountersConfig{
			Backend: "pb",
			Timeout: counter.DefaultTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns Default overlaid with the YAML file at path (skipped when
// path is empty) and then with the environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv(EnvWorkers); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		cfg.Workers = i
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Counters.Backend = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Counters.Timeout = d
	}
	if v := os.Getenv(EnvMaxFreeVars); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFreeVars, err)
		}
		cfg.Lights.MaxFreeVars = i
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}

	return nil
}

// Validate reports the first setting outside its allowed range.
func (c Config) Validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d must be positive", ErrInvalid, c.Workers)
	case c.Lights.MaxFreeVars < 0 || c.Lights.MaxFreeVars > gf2.FreeVarCeiling:
		return fmt.Errorf("%w: lights.max_free_vars %d must be in [0, %d]", ErrInvalid, c.Lights.MaxFreeVars, gf2.FreeVarCeiling)
	case c.Lights.Parallelism < 1:
		return fmt.Errorf("%w: lights.parallelism %d must be positive", ErrInvalid, c.Lights.Parallelism)
	case c.Counters.Timeout < 0:
		return fmt.Errorf("%w: counters.timeout %s must not be negative", ErrInvalid, c.Counters.Timeout)
	}
	if _, err := c.excessPolicy(); err != nil {
		return err
	}
	if _, err := c.Backend(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format %q (want text or json)", ErrInvalid, c.Log.Format)
	}

	return nil
}

func (c Config) excessPolicy() (gf2.ExcessPolicy, error) {
	switch strings.ToLower(c.Lights.OnExcess) {
	case "reject":
		return gf2.Reject, nil
	case "warn":
		return gf2.Warn, nil
	default:
		return 0, fmt.Errorf("%w: lights.on_excess %q (want reject or warn)", ErrInvalid, c.Lights.OnExcess)
	}
}

// Backend returns the counter optimiser named by Counters.Backend.
func (c Config) Backend() (counter.Backend, error) {
	switch strings.ToLower(c.Counters.Backend) {
	case "pb":
		return counter.NewPseudoBoolean(), nil
	case "search":
		return counter.NewSearch(), nil
	default:
		return nil, fmt.Errorf("%w: counters.backend %q (want pb or search)", ErrInvalid, c.Counters.Backend)
	}
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}

	return l, nil
}

// NewLogger builds a text or JSON slog.Logger writing to w at Log.Level.
// c must be valid.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := c.level()
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// FactoryOptions translates c into Orchestrator options sharing logger.
// c must be valid.
func (c Config) FactoryOptions(logger *slog.Logger) []factory.Option {
	policy, _ := c.excessPolicy()
	backend, _ := c.Backend()

	opts := []factory.Option{
		factory.WithWorkers(c.Workers),
		factory.WithLogger(logger),
		factory.WithLightsOptions(
			gf2.WithMaxFreeVars(c.Lights.MaxFreeVars),
			gf2.WithExcessPolicy(policy),
			gf2.WithParallelism(c.Lights.Parallelism),
		),
		factory.WithCounterSolver(counter.NewSolver(
			counter.WithBackend(backend),
			counter.WithTimeout(c.Counters.Timeout),
			counter.WithLogger(logger),
		)),
	}
	if c.AbortOnError {
		opts = append(opts, factory.WithAbortOnError())
	}
	if c.Lights.Certify {
		opts = append(opts, factory.WithLightsCertification())
	}

	return opts
}
