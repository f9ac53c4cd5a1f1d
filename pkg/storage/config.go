package storage

import (
	"fmt"
	"net/url"

	"github.com/JaimeStill/signet/pkg/envvar"
)

// Config holds Azure Blob Storage connection parameters. Exactly one of
// ConnectionString (shared key, e.g. Azurite) or AccountURL (Entra ID via
// DefaultAzureCredential) is used when Enabled; ConnectionString wins if both are set.
type Config struct {
	Enabled          bool   `toml:"enabled"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Enabled          string
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "provider-exchanges"
	}
	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.String(&c.ContainerName, env.ContainerName)
		envvar.String(&c.ConnectionString, env.ConnectionString)
		envvar.String(&c.AccountURL, env.AccountURL)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
}

func (c *Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.AccountURL == "" {
		return fmt.Errorf("connection_string or account_url required")
	}
	if c.ConnectionString == "" {
		u, err := url.Parse(c.AccountURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("invalid account_url: %q", c.AccountURL)
		}
	}
	return nil
}
