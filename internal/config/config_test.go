package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Sheets = SheetsConfig{
		WellsSheetID:   "sheet123",
		WellsTab:       "Pozos",
		PublishSheetID: "sheet456",
		PublishTab:     "Matriz",
	}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionTTL)
	assert.Equal(t, SessionStoreMemory, cfg.Server.SessionStore)
	assert.Equal(t, "move_if_better", cfg.Dispatch.ComparisonPolicy)
	assert.Equal(t, "always_move", cfg.Dispatch.ZeroHoursPolicy)
	assert.Equal(t, 3, cfg.Dispatch.DefaultRigCount)
	assert.Equal(t, "cronopu", cfg.Metrics.Namespace)
	assert.NoError(t, Validate(cfg))
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"unknown session store", func(cfg *Config) { cfg.Server.SessionStore = "redis" }},
		{"postgres without database url", func(cfg *Config) { cfg.Server.SessionStore = SessionStorePostgres }},
		{"unknown comparison policy", func(cfg *Config) { cfg.Dispatch.ComparisonPolicy = "sideways" }},
		{"unknown zero hours policy", func(cfg *Config) { cfg.Dispatch.ZeroHoursPolicy = "maybe" }},
		{"rig count too large", func(cfg *Config) { cfg.Dispatch.DefaultRigCount = 51 }},
		{"negative rig count", func(cfg *Config) { cfg.Dispatch.DefaultRigCount = -1 }},
		{"wells sheet without tab", func(cfg *Config) { cfg.Sheets.WellsTab = "" }},
		{"publish sheet without tab", func(cfg *Config) { cfg.Sheets.PublishTab = "" }},
		{"negative session ttl", func(cfg *Config) { cfg.Server.SessionTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestValidate_PostgresWithDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Server.SessionStore = SessionStorePostgres
	cfg.DatabaseURL = "postgres://localhost/cronopu"

	assert.NoError(t, Validate(cfg))
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	content := `
server:
  addr: ":9000"
  sessionTTL: 30m
  sessionStore: postgres
databaseURL: "postgres://localhost/cronopu"
dispatch:
  comparisonPolicy: move_if_worse
  zeroHoursPolicy: reject
  defaultRigCount: 5
sheets:
  wellsSheetID: "sheet123"
  wellsTab: "Pozos"
metrics:
  namespace: "planner"
`

	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, SessionStorePostgres, cfg.Server.SessionStore)
	assert.Equal(t, "postgres://localhost/cronopu", cfg.DatabaseURL)
	assert.Equal(t, "move_if_worse", cfg.Dispatch.ComparisonPolicy)
	assert.Equal(t, "reject", cfg.Dispatch.ZeroHoursPolicy)
	assert.Equal(t, 5, cfg.Dispatch.DefaultRigCount)
	assert.Equal(t, "sheet123", cfg.Sheets.WellsSheetID)
	assert.Equal(t, "planner", cfg.Metrics.Namespace)
}

func TestLoadFromPath_MinimalConfigUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal_config.yaml")

	err := os.WriteFile(configPath, []byte("dispatch:\n  defaultRigCount: 2\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Dispatch.DefaultRigCount)
	assert.Equal(t, SessionStoreMemory, cfg.Server.SessionStore)
	assert.Empty(t, cfg.Sheets.PublishSheetID)
}

func TestLoadFromPath_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("DATABASE_URL", "postgres://heroku/db")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env_config.yaml")
	err := os.WriteFile(configPath, []byte("server:\n  sessionStore: postgres\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "postgres://heroku/db", cfg.DatabaseURL)
}

func TestLoadFromPath_InvalidPolicy(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_policy.yaml")

	err := os.WriteFile(configPath, []byte("dispatch:\n  comparisonPolicy: sideways\n"), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_yaml.yaml")

	invalidYAML := `
server:
  addr: ":9000"
    invalid indentation
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadWithEnv_FallsBackToDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadWithEnv("missing")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnv_FindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	err := os.WriteFile(filepath.Join(dir, "cronopu_config.test.yaml"), []byte("dispatch:\n  defaultRigCount: 7\n"), 0644)
	require.NoError(t, err)

	cfg, err := LoadWithEnv("test")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Dispatch.DefaultRigCount)
}
