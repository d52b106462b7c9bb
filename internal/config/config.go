package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. INLINECREATE_SERVER_ADDR.
const EnvPrefix = "INLINECREATE"

// Config holds application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Endpoint  EndpointConfig  `mapstructure:"endpoint"`
	Theme     ThemeConfig     `mapstructure:"theme"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Widgets   string          `mapstructure:"widgets"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BasePath        string        `mapstructure:"base_path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects where created references live.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// EndpointConfig configures the creation endpoint and the client posting to it.
type EndpointConfig struct {
	RoutePath   string        `mapstructure:"route_path"`
	BaseURL     string        `mapstructure:"base_url"`
	CSRFCookie  string        `mapstructure:"csrf_cookie"`
	CSRFHeader  string        `mapstructure:"csrf_header"`
	RequireAJAX bool          `mapstructure:"require_ajax"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ThemeConfig names the go-theme selection used for class tokens.
type ThemeConfig struct {
	File    string `mapstructure:"file"`
	Name    string `mapstructure:"name"`
	Variant string `mapstructure:"variant"`
}

// TelemetryConfig enables the stdout metric exporter.
type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Load reads configuration from path (optional) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_path", "/")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("endpoint.route_path", "/api/reference/create/")
	v.SetDefault("endpoint.base_url", "")
	v.SetDefault("endpoint.csrf_cookie", "")
	v.SetDefault("endpoint.csrf_header", "X-CSRFToken")
	v.SetDefault("endpoint.require_ajax", false)
	v.SetDefault("endpoint.timeout", 15*time.Second)
	v.SetDefault("theme.file", "")
	v.SetDefault("theme.name", "")
	v.SetDefault("theme.variant", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.interval", 30*time.Second)
	v.SetDefault("widgets", "")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports settings the commands cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Store.Driver) {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("config: store.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Endpoint.Timeout < 0 {
		return errors.New("config: endpoint.timeout must not be negative")
	}
	return nil
}
