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

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "equiptrack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.History.RecordLifecycle)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9090"
store:
  driver: postgrest
  postgrest:
    url: https://example.supabase.co
    api_key: from-file
log:
  format: text
  level: debug
history:
  record_lifecycle: true
workspaces:
  idle_ttl: 10m
  max: 50
`)
	t.Setenv("EQUIPTRACK_POSTGREST_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgREST, cfg.Store.Driver)
	assert.Equal(t, "from-env", cfg.Store.PostgREST.APIKey)
	assert.True(t, cfg.History.RecordLifecycle)
	assert.False(t, cfg.Store.PostgREST.EmployeeFK)
	assert.Equal(t, WorkspacesConfig{IdleTTL: 10 * time.Minute, Max: 50}, cfg.Workspaces)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWorkspaceAndFKEnv(t *testing.T) {
	t.Setenv("EQUIPTRACK_POSTGREST_EMPLOYEE_FK", "true")
	t.Setenv("EQUIPTRACK_WORKSPACE_IDLE_TTL", "90s")
	t.Setenv("EQUIPTRACK_WORKSPACE_MAX", "7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Store.PostgREST.EmployeeFK)
	assert.Equal(t, WorkspacesConfig{IdleTTL: 90 * time.Second, Max: 7}, cfg.Workspaces)

	t.Setenv("EQUIPTRACK_WORKSPACE_MAX", "many")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigBadLifecycleEnv(t *testing.T) {
	t.Setenv("EQUIPTRACK_HISTORY_RECORD_LIFECYCLE", "sometimes")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown driver":    func(c *Config) { c.Store.Driver = "mongo" },
		"sqlite no path":    func(c *Config) { c.Store.Path = "" },
		"mysql no host":     func(c *Config) { c.Store.Driver = DriverMySQL; c.Store.MySQL = MySQLConfig{User: "u", Database: "d"} },
		"postgrest no url":  func(c *Config) { c.Store.Driver = DriverPostgREST },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"bad format":        func(c *Config) { c.Log.Format = "xml" },
		"missing http addr": func(c *Config) { c.HTTPAddr = " " },
		"negative max":      func(c *Config) { c.Workspaces.Max = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLoggerHonorsLevelAndFormat(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Format: "text", Level: "warn"}

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "asset_id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "asset_id=7")
}
