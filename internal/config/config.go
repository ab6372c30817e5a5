package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings. Every field can be set from the environment
// (PORT, ROOM_CAPACITY, RECONNECT_WINDOW, ...) or from an optional config file.
type Config struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	DatabaseURL string `mapstructure:"database_url"`

	RoomCapacity     int           `mapstructure:"room_capacity"`
	ReconnectWindow  time.Duration `mapstructure:"reconnect_window"`
	LivenessInterval time.Duration `mapstructure:"liveness_interval"`
	MaxCodeAttempts  int           `mapstructure:"max_code_attempts"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Port:             8080,
		LogLevel:         "info",
		LogFormat:        "text",
		RoomCapacity:     6,
		ReconnectWindow:  120 * time.Second,
		LivenessInterval: 15 * time.Second,
		MaxCodeAttempts:  100,
	}
}

// NewViper returns a viper instance preloaded with defaults and bound to the
// environment. Callers may bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("room_capacity", d.RoomCapacity)
	v.SetDefault("reconnect_window", d.ReconnectWindow)
	v.SetDefault("liveness_interval", d.LivenessInterval)
	v.SetDefault("max_code_attempts", d.MaxCodeAttempts)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path, overlays the environment and
// validates the result. An empty path skips the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be 1-65535, got %d", c.Port))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.RoomCapacity < 2 {
		errs = append(errs, fmt.Errorf("room_capacity must be at least 2, got %d", c.RoomCapacity))
	}
	if c.ReconnectWindow <= 0 {
		errs = append(errs, errors.New("reconnect_window must be positive"))
	}
	if c.LivenessInterval <= 0 {
		errs = append(errs, errors.New("liveness_interval must be positive"))
	}
	if c.MaxCodeAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_code_attempts must be at least 1, got %d", c.MaxCodeAttempts))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
