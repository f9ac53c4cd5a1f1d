// Package config loads the service configuration from an optional .env file,
// config.toml, an environment overlay (config.<SIGNET_ENV>.toml), and
// SIGNET_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/signet/internal/provider"
	"github.com/JaimeStill/signet/pkg/database"
	"github.com/JaimeStill/signet/pkg/envvar"
	"github.com/JaimeStill/signet/pkg/metrics"
	"github.com/JaimeStill/signet/pkg/storage"
)

const (
	DotEnvFile           = ".env"
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSignetEnv             = "SIGNET_ENV"
	EnvSignetShutdownTimeout = "SIGNET_SHUTDOWN_TIMEOUT"
	EnvSignetVersion         = "SIGNET_VERSION"
	EnvSignetLogLevel        = "SIGNET_LOG_LEVEL"
	EnvSignetLogFormat       = "SIGNET_LOG_FORMAT"
)

var databaseEnv = &database.Env{
	Host:            "SIGNET_DB_HOST",
	Port:            "SIGNET_DB_PORT",
	Name:            "SIGNET_DB_NAME",
	User:            "SIGNET_DB_USER",
	Password:        "SIGNET_DB_PASSWORD",
	SSLMode:         "SIGNET_DB_SSL_MODE",
	MaxOpenConns:    "SIGNET_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SIGNET_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SIGNET_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SIGNET_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "SIGNET_STORAGE_ENABLED",
	ContainerName:    "SIGNET_STORAGE_CONTAINER_NAME",
	ConnectionString: "SIGNET_STORAGE_CONNECTION_STRING",
	AccountURL:       "SIGNET_STORAGE_ACCOUNT_URL",
}

var providerEnv = &provider.Env{
	BaseURL:            "SIGNET_PROVIDER_BASE_URL",
	OrgID:              "SIGNET_PROVIDER_ORG_ID",
	DefaultToken:       "SIGNET_PROVIDER_API_TOKEN",
	AuthScheme:         "SIGNET_PROVIDER_AUTH_SCHEME",
	Timeout:            "SIGNET_PROVIDER_TIMEOUT",
	RefreshConcurrency: "SIGNET_PROVIDER_REFRESH_CONCURRENCY",
}

var metricsEnv = &metrics.Env{
	Enabled: "SIGNET_METRICS_ENABLED",
	Prefix:  "SIGNET_METRICS_PREFIX",
	Path:    "SIGNET_METRICS_PATH",
}

// Config is the root configuration for the Signet service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Provider        provider.Config `toml:"provider"`
	Metrics         metrics.Config  `toml:"metrics"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
	LogFormat       string          `toml:"log_format"`
}

// Env returns the SIGNET_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSignetEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all
// values. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	cfg, err := loadFiles()
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase resolves only the database section from the same sources as
// Load, for tools such as migrations that need nothing else.
func LoadDatabase() (*database.Config, error) {
	cfg, err := loadFiles()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}

	return &cfg.Database, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Provider.Merge(&overlay.Provider)
	c.Metrics.Merge(&overlay.Metrics)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to the
// root config and every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Provider.Finalize(providerEnv); err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	if err := c.Metrics.Finalize(metricsEnv); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

func (c *Config) loadEnv() {
	envvar.String(&c.ShutdownTimeout, EnvSignetShutdownTimeout)
	envvar.String(&c.Version, EnvSignetVersion)
	envvar.String(&c.LogLevel, EnvSignetLogLevel)
	envvar.String(&c.LogFormat, EnvSignetLogFormat)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be debug, info, warn, or error", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: must be text or json", c.LogFormat)
	}
	return nil
}

func loadFiles() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSignetEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
