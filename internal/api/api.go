// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/signet/internal/config"
	"github.com/JaimeStill/signet/internal/infrastructure"
	"github.com/JaimeStill/signet/pkg/formatting"
	"github.com/JaimeStill/signet/pkg/middleware"
	"github.com/JaimeStill/signet/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Metrics run inside the module so the route pattern matched by the inner
// mux is visible to them.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	patterns := registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(runtime.Metrics.Middleware())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.MaxBytes(cfg.API.MaxBodySizeBytes()))

	runtime.Logger.Info(
		"api module ready",
		"base_path", cfg.API.BasePath,
		"routes", len(patterns),
		"max_body_size", formatting.FormatBytes(cfg.API.MaxBodySizeBytes(), 1),
	)

	runtime.Logger.Debug("api routes", "patterns", patterns)

	return m, nil
}
