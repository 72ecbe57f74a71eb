package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flav-dev/flav/internal/accounts"
	"github.com/flav-dev/flav/internal/commands"
	"github.com/flav-dev/flav/internal/config"
)

func runFlav(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := commands.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// initProject runs "flav init" in a fresh directory and returns the path
// of its flav.yaml.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runFlav(t, "init", dir)
	require.NoError(t, err)
	return filepath.Join(dir, config.FileName)
}

func TestVersion(t *testing.T) {
	out, err := runFlav(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runFlav(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized flav project")

	for _, d := range []string{"data", filepath.Join("data", "logs")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	_, err = os.Stat(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runFlav(t, "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "data/flav.db", cfg.Storage.Path)
	assert.Equal(t, filepath.Join("data", "pogo-chart.csv"), cfg.Pogo.ChartPath)
}

func TestInit_PogoChart(t *testing.T) {
	dir := t.TempDir()
	_, err := runFlav(t, "init", dir)
	require.NoError(t, err)

	svc, err := accounts.Load(filepath.Join(dir, "data", "pogo-chart.csv"))
	require.NoError(t, err)
	assert.Len(t, svc.All(), len(accounts.DefaultChart()))
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	_, err := runFlav(t, "init", dir)
	require.NoError(t, err)

	_, err = runFlav(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runFlav(t, "init", dir, "--force")
	require.NoError(t, err)
}
