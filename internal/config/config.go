package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Session store backends
const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

// ServerConfig configures the web workflow
type ServerConfig struct {
	Addr          string        `yaml:"addr" validate:"required"`
	SessionTTL    time.Duration `yaml:"sessionTTL" validate:"gt=0"`
	SessionStore  string        `yaml:"sessionStore" validate:"oneof=memory postgres"`
	UploadLimitMB int64         `yaml:"uploadLimitMB" validate:"gt=0"`
}

// DispatchConfig configures the planning engine
type DispatchConfig struct {
	ComparisonPolicy string `yaml:"comparisonPolicy" validate:"oneof=move_if_better move_if_worse"`
	ZeroHoursPolicy  string `yaml:"zeroHoursPolicy" validate:"oneof=always_move reject"`
	DefaultRigCount  int    `yaml:"defaultRigCount" validate:"gte=1,lte=50"`
}

// SheetsConfig points at the Google Sheets used for import and publishing
type SheetsConfig struct {
	WellsSheetID   string `yaml:"wellsSheetID,omitempty"`
	WellsTab       string `yaml:"wellsTab,omitempty" validate:"required_with=WellsSheetID"`
	PublishSheetID string `yaml:"publishSheetID,omitempty"`
	PublishTab     string `yaml:"publishTab,omitempty" validate:"required_with=PublishSheetID"`
}

// MetricsConfig configures Prometheus instrumentation
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Config represents the application configuration
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	DatabaseURL string         `yaml:"databaseURL,omitempty"`
	Dispatch    DispatchConfig `yaml:"dispatch"`
	Sheets      SheetsConfig   `yaml:"sheets,omitempty"`
	Metrics     MetricsConfig  `yaml:"metrics,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns a configuration with every optional field set
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 2 * time.Hour
	}
	if cfg.Server.SessionStore == "" {
		cfg.Server.SessionStore = SessionStoreMemory
	}
	if cfg.Server.UploadLimitMB == 0 {
		cfg.Server.UploadLimitMB = 20
	}
	if cfg.Dispatch.ComparisonPolicy == "" {
		cfg.Dispatch.ComparisonPolicy = "move_if_better"
	}
	if cfg.Dispatch.ZeroHoursPolicy == "" {
		cfg.Dispatch.ZeroHoursPolicy = "always_move"
	}
	if cfg.Dispatch.DefaultRigCount == 0 {
		cfg.Dispatch.DefaultRigCount = 3
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "cronopu"
	}
}

// applyEnv lets the hosting platform override the listen port and database
func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
}

// Load loads and validates the configuration from cronopu_config.yaml.
// It looks for the config file in the current directory first, then in the user's home directory.
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix.
// For example, env="test" will look for "cronopu_config.test.yaml".
// When no file exists the defaults are used.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		cfg := Default()
		applyEnv(cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks cross-field rules
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Server.SessionStore == SessionStorePostgres && cfg.DatabaseURL == "" {
		return fmt.Errorf("config validation failed: databaseURL is required when sessionStore is %q", SessionStorePostgres)
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := "cronopu_config.yaml"
	if env != "" {
		configFileName = "cronopu_config." + env + ".yaml"
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
