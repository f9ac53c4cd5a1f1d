package api

import (
	"net/http"

	"github.com/JaimeStill/signet/pkg/routes"
)

// registerRoutes mounts every domain group and returns the registered patterns.
func registerRoutes(mux *http.ServeMux, domain *Domain) []string {
	groups := []routes.Group{
		domain.Companies.Handler().Routes(),
		domain.Documents.Handler().Routes(),
		domain.Signers.Handler().Routes(),
	}

	routes.Register(mux, groups...)
	return routes.Patterns(groups...)
}
