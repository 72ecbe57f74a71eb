package commands

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flav-dev/flav/internal/config"
)

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = ""
	cfg.Audit.Dir = t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer a.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, a.server().Handler(nil), cfg.Server, logger)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewAppLoadsStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "flav.db")
	cfg.Audit.Dir = t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(ctx, cfg, logger)
	require.NoError(t, err)
	c, err := a.clients.Create(ctx, "Acme")
	require.NoError(t, err)
	_, err = a.chart.CreateGroup("Revenue", "")
	require.NoError(t, err)
	require.NoError(t, a.store.SaveChart(ctx, "chart", a.chart.Snapshot()))
	require.NoError(t, a.Close())

	a, err = newApp(ctx, cfg, logger)
	require.NoError(t, err)
	defer a.Close()

	got, err := a.clients.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Len(t, a.chart.Groups(), 1)
}

func TestLoadConfigMissingDefault(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := loadConfig(config.FileName)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, filepath.IsAbs(cfg.Storage.Path))

	_, err = loadConfig("elsewhere.yaml")
	assert.Error(t, err)
}
