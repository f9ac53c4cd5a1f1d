package provider

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/signet/pkg/envvar"
)

// Config holds the signing provider connection settings.
type Config struct {
	BaseURL            string `toml:"base_url"`
	OrgID              string `toml:"org_id"`
	DefaultToken       string `toml:"default_token"`
	AuthScheme         string `toml:"auth_scheme"`
	Timeout            string `toml:"timeout"`
	RefreshConcurrency int    `toml:"refresh_concurrency"`
}

// Env maps config fields to environment variable names.
type Env struct {
	BaseURL            string
	OrgID              string
	DefaultToken       string
	AuthScheme         string
	Timeout            string
	RefreshConcurrency string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		envvar.String(&c.BaseURL, env.BaseURL)
		envvar.String(&c.OrgID, env.OrgID)
		envvar.String(&c.DefaultToken, env.DefaultToken)
		envvar.String(&c.AuthScheme, env.AuthScheme)
		envvar.String(&c.Timeout, env.Timeout)
		envvar.Int(&c.RefreshConcurrency, env.RefreshConcurrency)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.OrgID != "" {
		c.OrgID = overlay.OrgID
	}
	if overlay.DefaultToken != "" {
		c.DefaultToken = overlay.DefaultToken
	}
	if overlay.AuthScheme != "" {
		c.AuthScheme = overlay.AuthScheme
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RefreshConcurrency != 0 {
		c.RefreshConcurrency = overlay.RefreshConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.AuthScheme == "" {
		c.AuthScheme = "Bearer"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.RefreshConcurrency == 0 {
		c.RefreshConcurrency = 4
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url: %q", c.BaseURL)
	}
	if strings.ContainsAny(c.AuthScheme, " \t") {
		return fmt.Errorf("invalid auth_scheme: %q", c.AuthScheme)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RefreshConcurrency < 1 {
		return fmt.Errorf("refresh_concurrency must be positive")
	}
	return nil
}
