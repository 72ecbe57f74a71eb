package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Pogo.ChartPath = "pogo.csv"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/flav.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "data", cfg.Audit.Dir)
	assert.Empty(t, cfg.Pogo.ChartPath)
	assert.Equal(t, "flav", cfg.Git.AuthorName)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9000\"\n  read_timeout: 5s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "data/flav.db", cfg.Storage.Path)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, ":8080")
	assert.Contains(t, contents, "read_timeout: 15s")
	assert.Contains(t, contents, "path: data/flav.db")
	assert.NotContains(t, contents, "chart_path")
}

func TestApplyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FLAV_ADDR", ":7000")
	t.Setenv("FLAV_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("FLAV_DB_PATH", "")
	t.Setenv("FLAV_LOG_FORMAT", "json")

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Storage.Path, "explicitly empty path disables the store")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FLAV_AUDIT_DIR=/var/flav\nFLAV_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("FLAV_LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("FLAV_AUDIT_DIR") })

	cfg := Default()
	ApplyEnv(cfg)

	assert.Equal(t, "/var/flav", cfg.Audit.Dir)
	assert.Equal(t, "warn", cfg.Log.Level, "process environment wins over .env")
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Pogo.ChartPath = "/abs/chart.csv"
	cfg.Resolve("/srv/flav")

	assert.Equal(t, "/srv/flav/data/flav.db", cfg.Storage.Path)
	assert.Equal(t, "/srv/flav/data", cfg.Audit.Dir)
	assert.Equal(t, "/abs/chart.csv", cfg.Pogo.ChartPath)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = LogConfig{Level: "loud"}.NewLogger(&buf)
	assert.Error(t, err)
	_, err = LogConfig{Level: "info", Format: "xml"}.NewLogger(&buf)
	assert.Error(t, err)
}
