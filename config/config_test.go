package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jfkriz/togglesolve/config"
	"github.com/jfkriz/togglesolve/factory"
	"github.com/jfkriz/togglesolve/machine"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "togglesolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
	require.Equal(t, "pb", cfg.Counters.Backend)
	require.Equal(t, 30*time.Second, cfg.Counters.Timeout)
	require.Equal(t, 24, cfg.Lights.MaxFreeVars)
}

func TestLoad_File(t *testing.T) {
	cfg, err := config.Load(filepath.Join("testdata", "togglesolve.yaml"))
	require.NoError(t, err)

	require.Equal(t, 3, cfg.Workers)
	require.True(t, cfg.AbortOnError)
	require.Equal(t, config.LightsConfig{MaxFreeVars: 16, OnExcess: "warn", Parallelism: 2, Certify: true}, cfg.Lights)
	require.Equal(t, config.CountersConfig{Backend: "search", Timeout: 5 * time.Second}, cfg.Counters)
	require.Equal(t, config.LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(writeFile(t, "counters:\n  backend: search\n"))
	require.NoError(t, err)
	require.Equal(t, "search", cfg.Counters.Backend)
	require.Equal(t, config.Default().Counters.Timeout, cfg.Counters.Timeout)
	require.Equal(t, config.Default().Workers, cfg.Workers)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(config.EnvWorkers, "7")
	t.Setenv(config.EnvBackend, "pb")
	t.Setenv(config.EnvTimeout, "250ms")
	t.Setenv(config.EnvMaxFreeVars, "30")
	t.Setenv(config.EnvLogLevel, "warn")

	cfg, err := config.Load(filepath.Join("testdata", "togglesolve.yaml"))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Workers)
	require.Equal(t, "pb", cfg.Counters.Backend)
	require.Equal(t, 250*time.Millisecond, cfg.Counters.Timeout)
	require.Equal(t, 30, cfg.Lights.MaxFreeVars)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeFile(t, "workerz: 2\n"))
	require.Error(t, err)

	_, err = config.Load(writeFile(t, "counters:\n  backend: z3\n"))
	require.ErrorIs(t, err, config.ErrInvalid)

	t.Setenv(config.EnvTimeout, "soon")
	_, err = config.Load("")
	require.ErrorContains(t, err, config.EnvTimeout)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"workers":     func(c *config.Config) { c.Workers = 0 },
		"free vars":   func(c *config.Config) { c.Lights.MaxFreeVars = 63 },
		"parallelism": func(c *config.Config) { c.Lights.Parallelism = 0 },
		"on excess":   func(c *config.Config) { c.Lights.OnExcess = "ignore" },
		"timeout":     func(c *config.Config) { c.Counters.Timeout = -time.Second },
		"backend":     func(c *config.Config) { c.Counters.Backend = "" },
		"level":       func(c *config.Config) { c.Log.Level = "loud" },
		"format":      func(c *config.Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
	require.NoError(t, config.Default().Validate())
}

func TestBackend(t *testing.T) {
	cfg := config.Default()
	be, err := cfg.Backend()
	require.NoError(t, err)
	require.Equal(t, "pb", be.Name())

	cfg.Counters.Backend = "SEARCH"
	be, err = cfg.Backend()
	require.NoError(t, err)
	require.Equal(t, "search", be.Name())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestFactoryOptions_SolveSample(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 2
	cfg.Counters.Backend = "search"

	p, err := machine.NewParser()
	require.NoError(t, err)
	ms, err := p.Parse(strings.NewReader("[.##.] (3) (1,3) (2) (2,3) (0,2) (0,1) {3,5,4,7}\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	rep, err := factory.New(cfg.FactoryOptions(cfg.NewLogger(&buf))...).Run(context.Background(), ms)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Lights.Total)
	require.Equal(t, 10, rep.Counters.Total)
}
