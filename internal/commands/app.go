package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flav-dev/flav/internal/accounts"
	"github.com/flav-dev/flav/internal/api"
	"github.com/flav-dev/flav/internal/auditlog"
	"github.com/flav-dev/flav/internal/clients"
	"github.com/flav-dev/flav/internal/config"
	"github.com/flav-dev/flav/internal/db"
	"github.com/flav-dev/flav/internal/groups"
)

// loadConfig reads path, applies FLAV_* overrides and resolves relative
// paths against the config's directory. A missing default config file
// falls back to config.Default.
func loadConfig(path string) (*config.Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(absPath)
	if errors.Is(err, fs.ErrNotExist) && path == config.FileName {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	config.ApplyEnv(cfg)
	cfg.Resolve(filepath.Dir(absPath))
	return cfg, nil
}

// app is the wired set of services behind the CLI and the HTTP API.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *db.Store // nil when storage is disabled
	chart   *groups.Store
	clients *clients.Service
	pogo    *accounts.Service
	audit   *auditlog.Log
}

// newApp opens the snapshot store, if configured, and loads the chart and
// every client from it.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	pogo, err := accounts.Load(cfg.Pogo.ChartPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		chart:  groups.NewStore(),
		pogo:   pogo,
		audit:  auditlog.New(cfg.Audit.Dir),
	}

	var opts []clients.Option
	if cfg.Storage.Path != "" {
		store, err := db.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		a.store = store
		opts = append(opts, clients.WithPersister(store))
	} else {
		logger.Warn("storage disabled, changes are kept in memory only")
	}
	a.clients = clients.NewService(opts...)

	if err := a.load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) load(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	snap, ok, err := a.store.LoadChart(ctx, db.ChartNamespace)
	if err != nil {
		return err
	}
	if ok {
		if err := a.chart.Restore(snap); err != nil {
			return fmt.Errorf("restoring chart: %w", err)
		}
	}

	cs, err := a.store.ListClients(ctx)
	if err != nil {
		return err
	}
	if err := a.clients.Load(cs); err != nil {
		return err
	}
	a.logger.Info("loaded snapshot store",
		"path", a.cfg.Storage.Path,
		"groups", len(snap.Groups),
		"accounts", len(snap.Accounts),
		"clients", len(cs))
	return nil
}

// server builds the HTTP API over the app's services.
func (a *app) server() *api.Server {
	d := api.Deps{
		Groups:  a.chart,
		Clients: a.clients,
		Pogo:    a.pogo,
		Audit:   a.audit,
		Logger:  a.logger,
	}
	if a.store != nil {
		d.Charts = a.store
	}
	return api.New(d)
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// openApp is the common prologue of commands that work on a project.
func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger)
}
