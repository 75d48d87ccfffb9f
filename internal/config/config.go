// Package config loads server settings from an optional YAML file with
// EQUIPTRACK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite    = "sqlite"
	DriverMySQL     = "mysql"
	DriverPostgREST = "postgrest"
)

type Config struct {
	HTTPAddr   string           `yaml:"http_addr"`
	RPCSocket  string           `yaml:"rpc_socket"`
	Store      StoreConfig      `yaml:"store"`
	Log        LogConfig        `yaml:"log"`
	History    HistoryConfig    `yaml:"history"`
	Workspaces WorkspacesConfig `yaml:"workspaces"`
}

type StoreConfig struct {
	Driver    string          `yaml:"driver"`
	Path      string          `yaml:"path"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	PostgREST PostgRESTConfig `yaml:"postgrest"`
}

type MySQLConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Database string `yaml:"database"`
	Debug    bool   `yaml:"debug"`
}

type PostgRESTConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	// EmployeeFK writes assigned_employee_id. Leave off for schemas without
	// that column.
	EmployeeFK bool `yaml:"employee_fk"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// WorkspacesConfig bounds the per-browser view state kept by the server.
type WorkspacesConfig struct {
	IdleTTL time.Duration `yaml:"idle_ttl"`
	Max     int           `yaml:"max"`
}

type HistoryConfig struct {
	// RecordLifecycle adds Created and Deployed events on top of the
	// check-in and maintenance events that are always recorded.
	RecordLifecycle bool `yaml:"record_lifecycle"`
}

func Default() *Config {
	return &Config{
		HTTPAddr:  ":8080",
		RPCSocket: "/tmp/equiptrack.sock",
		Store: StoreConfig{
			Driver:    DriverSQLite,
			Path:      "equiptrack.db",
			PostgREST: PostgRESTConfig{Timeout: 20 * time.Second},
		},
		Log:        LogConfig{Format: "json", Level: "info"},
		Workspaces: WorkspacesConfig{IdleTTL: 30 * time.Minute, Max: 1000},
	}
}

// LoadConfig reads path (optional) over the defaults, then applies
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("EQUIPTRACK_HTTP_ADDR", c.HTTPAddr)
	c.RPCSocket = getEnv("EQUIPTRACK_RPC_SOCKET", c.RPCSocket)
	c.Store.Driver = getEnv("EQUIPTRACK_STORE_DRIVER", c.Store.Driver)
	c.Store.Path = getEnv("EQUIPTRACK_DB_PATH", c.Store.Path)
	c.Store.MySQL.User = getEnv("EQUIPTRACK_MYSQL_USER", c.Store.MySQL.User)
	c.Store.MySQL.Password = getEnv("EQUIPTRACK_MYSQL_PASSWORD", c.Store.MySQL.Password)
	c.Store.MySQL.Host = getEnv("EQUIPTRACK_MYSQL_HOST", c.Store.MySQL.Host)
	c.Store.MySQL.Database = getEnv("EQUIPTRACK_MYSQL_DATABASE", c.Store.MySQL.Database)
	c.Store.PostgREST.URL = getEnv("EQUIPTRACK_POSTGREST_URL", c.Store.PostgREST.URL)
	c.Store.PostgREST.APIKey = getEnv("EQUIPTRACK_POSTGREST_KEY", c.Store.PostgREST.APIKey)
	c.Log.Format = getEnv("EQUIPTRACK_LOG_FORMAT", c.Log.Format)
	c.Log.Level = getEnv("EQUIPTRACK_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("EQUIPTRACK_HISTORY_RECORD_LIFECYCLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EQUIPTRACK_HISTORY_RECORD_LIFECYCLE: %w", err)
		}
		c.History.RecordLifecycle = b
	}
	if v := os.Getenv("EQUIPTRACK_POSTGREST_EMPLOYEE_FK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EQUIPTRACK_POSTGREST_EMPLOYEE_FK: %w", err)
		}
		c.Store.PostgREST.EmployeeFK = b
	}
	if v := os.Getenv("EQUIPTRACK_WORKSPACE_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EQUIPTRACK_WORKSPACE_IDLE_TTL: %w", err)
		}
		c.Workspaces.IdleTTL = d
	}
	if v := os.Getenv("EQUIPTRACK_WORKSPACE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EQUIPTRACK_WORKSPACE_MAX: %w", err)
		}
		c.Workspaces.Max = n
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("http_addr is required")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("store.path is required for sqlite")
		}
	case DriverMySQL:
		m := c.Store.MySQL
		if m.User == "" || m.Host == "" || m.Database == "" {
			return errors.New("store.mysql user, host and database are required")
		}
	case DriverPostgREST:
		if strings.TrimSpace(c.Store.PostgREST.URL) == "" {
			return errors.New("store.postgrest.url is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Workspaces.IdleTTL < 0 || c.Workspaces.Max < 0 {
		return errors.New("workspaces idle_ttl and max must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds the process logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
