package metrics

import (
	"fmt"
	"regexp"

	"github.com/JaimeStill/signet/pkg/envvar"
)

var prefixPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls metric collection and exposition.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Prefix  string `toml:"prefix"`
	Path    string `toml:"path"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Enabled string
	Prefix  string
	Path    string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Prefix == "" {
		c.Prefix = "signet"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.String(&c.Prefix, env.Prefix)
		envvar.String(&c.Path, env.Path)
	}

	if !prefixPattern.MatchString(c.Prefix) {
		return fmt.Errorf("invalid prefix: %q", c.Prefix)
	}
	if c.Path[0] != '/' {
		return fmt.Errorf("path must start with /: %s", c.Path)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
