package api

import (
	"github.com/JaimeStill/signet/internal/config"
	"github.com/JaimeStill/signet/internal/infrastructure"
	"github.com/JaimeStill/signet/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination         pagination.Config
	RefreshConcurrency int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure:     &scoped,
		Pagination:         cfg.API.Pagination,
		RefreshConcurrency: cfg.Provider.RefreshConcurrency,
	}
}
