package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/signet/internal/api"
	"github.com/JaimeStill/signet/internal/config"
	"github.com/JaimeStill/signet/internal/infrastructure"
	"github.com/JaimeStill/signet/pkg/middleware"
	"github.com/JaimeStill/signet/pkg/module"
)

// Modules holds the prefixed modules mounted on the root router.
type Modules struct {
	API *module.Module
}

// NewModules builds every module from the shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount attaches every module to router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recover(infra.Logger))
	router.Use(middleware.Logger(infra.Logger))

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	if cfg.Metrics.Enabled {
		router.Handle("GET "+cfg.Metrics.Path, infra.Metrics.Handler())
	}

	return router
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
