package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultStorageKey is the name of the slot the whole application state lives in.
const DefaultStorageKey = "todoAppData_v1"

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	// Backend is one of "sqlite", "redis" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file. ":memory:" keeps it in RAM.
	Path string `mapstructure:"path" yaml:"path"`

	// Key names the slot holding the serialized state.
	Key string `mapstructure:"key" yaml:"key"`

	// QuotaBytes caps the serialized payload. Zero disables the check.
	QuotaBytes int `mapstructure:"quota_bytes" yaml:"quota_bytes"`

	// DebounceMS is the autosave quiet period in milliseconds.
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`

	// RedisURL is used when Backend is "redis".
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme         string `mapstructure:"theme" yaml:"theme"`
	DefaultFilter string `mapstructure:"default_filter" yaml:"default_filter"`
	DefaultSort   string `mapstructure:"default_sort" yaml:"default_sort"`
	Locale        string `mapstructure:"locale" yaml:"locale"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todomaster/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todomaster", "config.yaml")
}

// DefaultDataPath returns the default SQLite database location.
func DefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "todomaster.db")
	}
	return filepath.Join(home, ".local", "share", "todomaster", "todomaster.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Path:       DefaultDataPath(),
			Key:        DefaultStorageKey,
			QuotaBytes: 5 * 1024 * 1024,
			DebounceMS: 500,
			RedisURL:   "redis://localhost:6379/0",
		},
		Display: DisplayConfig{
			Theme:         "default",
			DefaultFilter: "all",
			DefaultSort:   "date",
			Locale:        "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7420",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.quota_bytes", d.Storage.QuotaBytes)
	v.SetDefault("storage.debounce_ms", d.Storage.DebounceMS)
	v.SetDefault("storage.redis_url", d.Storage.RedisURL)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.default_filter", d.Display.DefaultFilter)
	v.SetDefault("display.default_sort", d.Display.DefaultSort)
	v.SetDefault("display.locale", d.Display.Locale)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the defaults. Environment variables
// prefixed with TODOMASTER_ override both (TODOMASTER_STORAGE_BACKEND, ...).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TODOMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// Valid names accepted by Validate. The filter and sort lists mirror the
// query engine's vocabulary.
var (
	validBackends  = []string{BackendSQLite, BackendRedis, BackendMemory}
	validFilters   = []string{"all", "today", "week", "overdue", "completed", "uncompleted"}
	validSorts     = []string{"date", "priority", "created", "title"}
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validFormats   = []string{"text", "json", "logfmt"}
)

// Validate checks enumerated settings and numeric ranges.
func (c *AppConfig) Validate() error {
	var errs []error
	check := func(field, value string, allowed []string) {
		if !slices.Contains(allowed, strings.ToLower(value)) {
			errs = append(errs, fmt.Errorf("%s: unknown value %q (want one of %s)", field, value, strings.Join(allowed, ", ")))
		}
	}
	check("storage.backend", c.Storage.Backend, validBackends)
	check("display.default_filter", c.Display.DefaultFilter, validFilters)
	check("display.default_sort", c.Display.DefaultSort, validSorts)
	check("log.level", c.Log.Level, validLogLevels)
	check("log.format", c.Log.Format, validFormats)
	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key: must not be empty"))
	}
	if c.Storage.QuotaBytes < 0 {
		errs = append(errs, fmt.Errorf("storage.quota_bytes: must not be negative, got %d", c.Storage.QuotaBytes))
	}
	if c.Storage.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("storage.debounce_ms: must not be negative, got %d", c.Storage.DebounceMS))
	}
	return errors.Join(errs...)
}
