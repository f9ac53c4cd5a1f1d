package config

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/signet/pkg/envvar"
	"github.com/JaimeStill/signet/pkg/formatting"
	"github.com/JaimeStill/signet/pkg/middleware"
	"github.com/JaimeStill/signet/pkg/pagination"
)

const (
	EnvAPIBasePath    = "SIGNET_API_BASE_PATH"
	EnvAPIMaxBodySize = "SIGNET_API_MAX_BODY_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SIGNET_CORS_ENABLED",
	Origins:          "SIGNET_CORS_ORIGINS",
	AllowedMethods:   "SIGNET_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SIGNET_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SIGNET_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SIGNET_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SIGNET_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SIGNET_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxBodySize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	envvar.String(&c.BasePath, EnvAPIBasePath)
	envvar.String(&c.MaxBodySize, EnvAPIMaxBodySize)
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("invalid base_path %q: must start with /", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_body_size %q: must be positive", c.MaxBodySize)
	}
	return nil
}
