// Package config loads datapass settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StoreDriver selects the KeyValueStore backend
type StoreDriver string

const (
	StoreBolt   StoreDriver = "bolt"
	StoreSQLite StoreDriver = "sqlite"
	StoreMemory StoreDriver = "memory"
)

// Config holds all application configuration
type Config struct {
	Refresh       RefreshConfig       `mapstructure:"refresh"`
	Animation     AnimationConfig     `mapstructure:"animation"`
	Carrier       CarrierConfig       `mapstructure:"carrier"`
	Store         StoreConfig         `mapstructure:"store"`
	Connectivity  ConnectivityConfig  `mapstructure:"connectivity"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	API           APIConfig           `mapstructure:"api"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// RefreshConfig controls request gating and background refreshes
type RefreshConfig struct {
	MinInterval  time.Duration `mapstructure:"min_interval"`  // per-widget debounce window
	SettleDelay  time.Duration `mapstructure:"settle_delay"`  // wait after a connectivity flip
	AutoInterval time.Duration `mapstructure:"auto_interval"` // periodic silent refresh
}

// AnimationConfig controls the gauge animation
type AnimationConfig struct {
	FramePeriod      time.Duration `mapstructure:"frame_period"`
	HalfDuration     time.Duration `mapstructure:"half_duration"` // one full 0 to 100 sweep
	OvershootTension float64       `mapstructure:"overshoot_tension"`
}

// CarrierConfig describes what the host telephony layer reports
type CarrierConfig struct {
	Operator string `mapstructure:"operator"`  // network operator display name
	MultiSIM bool   `mapstructure:"multi_sim"` // more than one SIM present
}

// StoreConfig selects where results and widget state live
type StoreConfig struct {
	Driver StoreDriver `mapstructure:"driver"`
	Path   string      `mapstructure:"path"` // directory for bolt, file for sqlite
}

// ConnectivityConfig controls the network watcher
type ConnectivityConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	SysfsRoot    string        `mapstructure:"sysfs_root"`
}

// NotificationsConfig holds push notification settings
type NotificationsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	NtfyURL string `mapstructure:"ntfy"`
	Webhook string `mapstructure:"webhook"`
}

// APIConfig controls the local host API
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Refresh: RefreshConfig{
			MinInterval:  15 * time.Second,
			SettleDelay:  3 * time.Second,
			AutoInterval: 6 * time.Hour,
		},
		Animation: AnimationConfig{
			FramePeriod:      10 * time.Millisecond,
			HalfDuration:     time.Second,
			OvershootTension: 0.6,
		},
		Store: StoreConfig{
			Driver: StoreBolt,
			Path:   defaultDataPath(),
		},
		Connectivity: ConnectivityConfig{
			PollInterval: 2 * time.Second,
			SysfsRoot:    "/sys/class/net",
		},
		API: APIConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "datapass", "datapass.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "datapass", "datapass.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "datapass")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "datapass")
	}
}

// defaultDataPath returns the default state directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "datapass")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "datapass")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")
	return load(v)
}

// LoadFile loads configuration from one YAML file and the environment
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	// Environment variable overrides, e.g. DATAPASS_REFRESH_MIN_INTERVAL
	v.SetEnvPrefix("DATAPASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("refresh.min_interval", cfg.Refresh.MinInterval)
	v.SetDefault("refresh.settle_delay", cfg.Refresh.SettleDelay)
	v.SetDefault("refresh.auto_interval", cfg.Refresh.AutoInterval)
	v.SetDefault("animation.frame_period", cfg.Animation.FramePeriod)
	v.SetDefault("animation.half_duration", cfg.Animation.HalfDuration)
	v.SetDefault("animation.overshoot_tension", cfg.Animation.OvershootTension)
	v.SetDefault("carrier.operator", cfg.Carrier.Operator)
	v.SetDefault("carrier.multi_sim", cfg.Carrier.MultiSIM)
	v.SetDefault("store.driver", string(cfg.Store.Driver))
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("connectivity.poll_interval", cfg.Connectivity.PollInterval)
	v.SetDefault("connectivity.sysfs_root", cfg.Connectivity.SysfsRoot)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.ntfy", cfg.Notifications.NtfyURL)
	v.SetDefault("notifications.webhook", cfg.Notifications.Webhook)
	v.SetDefault("api.enabled", cfg.API.Enabled)
	v.SetDefault("api.addr", cfg.API.Addr)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// Validate rejects settings the scheduler and animator cannot run with
func (c *Config) Validate() error {
	if c.Refresh.MinInterval <= 0 {
		return fmt.Errorf("refresh.min_interval must be positive")
	}
	if c.Refresh.SettleDelay < 0 {
		return fmt.Errorf("refresh.settle_delay must not be negative")
	}
	if c.Refresh.AutoInterval <= 0 {
		return fmt.Errorf("refresh.auto_interval must be positive")
	}
	if c.Animation.FramePeriod <= 0 || c.Animation.HalfDuration <= 0 {
		return fmt.Errorf("animation periods must be positive")
	}
	if c.Connectivity.PollInterval <= 0 {
		return fmt.Errorf("connectivity.poll_interval must be positive")
	}
	switch c.Store.Driver {
	case StoreBolt, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	return nil
}

// SaveCarrier persists the telephony settings chosen in the UI
func SaveCarrier(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("carrier.operator", cfg.Carrier.Operator)
	viper.Set("carrier.multi_sim", cfg.Carrier.MultiSIM)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
