package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "flav.yaml"

// Config represents the top-level flav.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Audit   AuditConfig   `yaml:"audit"`
	Pogo    PogoConfig    `yaml:"pogo"`
	Git     GitConfig     `yaml:"git"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins,omitempty"`
}

// StorageConfig locates the SQLite snapshot store. An empty path keeps
// everything in memory.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// AuditConfig locates the audit log. Entries go to <dir>/logs/audit-log.csv.
type AuditConfig struct {
	Dir string `yaml:"dir"`
}

// PogoConfig locates the POGO chart CSV. Empty means the built-in chart.
type PogoConfig struct {
	ChartPath string `yaml:"chart_path,omitempty"`
}

// GitConfig sets the author of chart export commits.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a flav.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path: "data/flav.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Audit: AuditConfig{
			Dir: "data",
		},
		Git: GitConfig{
			AuthorName:  "flav",
			AuthorEmail: "flav@localhost",
		},
	}
}

// ApplyEnv loads .env from the working directory, if present, and applies
// FLAV_* overrides on top of cfg. Variables already set in the environment
// win over .env.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("FLAV_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("FLAV_ALLOWED_ORIGINS")); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("FLAV_DB_PATH"); ok {
		cfg.Storage.Path = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv("FLAV_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("FLAV_LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("FLAV_AUDIT_DIR")); v != "" {
		cfg.Audit.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("FLAV_POGO_CHART")); v != "" {
		cfg.Pogo.ChartPath = v
	}
}

// Resolve makes relative file paths absolute against root, normally the
// directory holding flav.yaml.
func (c *Config) Resolve(root string) {
	c.Storage.Path = resolve(root, c.Storage.Path)
	c.Audit.Dir = resolve(root, c.Audit.Dir)
	c.Pogo.ChartPath = resolve(root, c.Pogo.ChartPath)
}

// NewLogger builds a slog.Logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", l.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", l.Format)
	}
}

func resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
