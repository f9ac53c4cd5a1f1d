package signers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/handlers"
	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/routes"
)

// Handler provides HTTP endpoints for signer operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "signers"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for signer endpoints. Write
// methods are registered so they answer 405 with an explanation instead of
// the mux's bare response.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/signers",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.reject(ErrCreateNotAllowed)},
			{Method: "PUT", Pattern: "/{id}", Handler: h.reject(ErrUpdateNotAllowed)},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.reject(ErrUpdateNotAllowed)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.reject(ErrDeleteNotAllowed)},
		},
	}
}

// List returns a paginated list of signers filtered by document_id and status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single signer by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) reject(err error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", "GET")
		handlers.RespondError(w, h.logger, http.StatusMethodNotAllowed, err)
	}
}
