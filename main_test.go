package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bsaid97/go-seoul-density-map/config"
)

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(args))
	return loadConfig(cmd, opts)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := parse(t, "--env", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := parse(t,
		"--env", filepath.Join(t.TempDir(), "none.env"),
		"--excel", "stats.xlsx",
		"--sheet", "통계",
		"--url", "dong.geojson",
		"-o", "map.html",
		"--export", "map.zip",
		"--timeout", "5s",
		"--no-open",
		"--progress",
		"-v",
	)
	require.NoError(t, err)

	assert.Equal(t, "stats.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "통계", cfg.Workbook.Sheet)
	assert.Equal(t, "dong.geojson", cfg.Boundary.URL)
	assert.Equal(t, "map.html", cfg.Output.HTMLPath)
	assert.Equal(t, "map.zip", cfg.Output.ExportPath)
	assert.Equal(t, 5*time.Second, cfg.Boundary.Timeout)
	assert.False(t, cfg.Output.OpenBrowser)
	assert.True(t, cfg.Output.Progress)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "seoulmap.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("output:\n  html_path: from-yaml.html\nworkbook:\n  path: yaml.xlsx\n"), 0o644))
	t.Setenv(config.EnvPrefix+"OUTPUT", "from-env.html")

	cfg, err := parse(t, "--env", filepath.Join(dir, "none.env"), "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env.html", cfg.Output.HTMLPath)
	assert.Equal(t, "yaml.xlsx", cfg.Workbook.Path)

	cfg, err = parse(t, "--env", filepath.Join(dir, "none.env"), "--config", configPath, "--out", "from-flag.html")
	require.NoError(t, err)
	assert.Equal(t, "from-flag.html", cfg.Output.HTMLPath)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(config.LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = newLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestBuildFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zap.InfoLevel)
	opts := &options{
		logger: func(config.LoggingConfig) (*zap.Logger, error) { return zap.New(core), nil },
	}

	cmd := newRootCmd(opts)
	cmd.SetArgs([]string{
		"--env", filepath.Join(dir, "none.env"),
		"--url", filepath.Join(dir, "missing.geojson"),
		"--out", filepath.Join(dir, "index.html"),
		"--no-open",
	})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, errors.As(err, new(errLogged)))

	failures := logs.FilterMessage("Build failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zap.ErrorLevel, failures[0].Level)

	_, err = os.Stat(filepath.Join(dir, "index.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestConfigErrorIsNotLogged(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"--env", filepath.Join(dir, "none.env"), "--config", filepath.Join(dir, "missing.yaml")})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.False(t, errors.As(err, new(errLogged)))
}
