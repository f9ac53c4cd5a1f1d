package documents

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/internal/provider"
	"github.com/JaimeStill/signet/pkg/handlers"
	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/routes"
)

const maxBodyBytes = 256 << 10

// Error codes carried in ErrorBody.Code.
const (
	CodeProviderAPIError = "PROVIDER_API_ERROR"
	CodeValidationError  = "VALIDATION_ERROR"
)

// Handler provides HTTP endpoints for document operations.
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
		logger:     logger.With("handler", "documents"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/refresh", Handler: h.RefreshCompany},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "PATCH", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/update-status", Handler: h.RefreshStatus},
			{Method: "GET", Pattern: "/{id}/receipt", Handler: h.Receipt},
		},
	}
}

// List returns a paginated list of document summaries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, err)
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

// Find returns a document with its company and signers.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Create registers a new signature request and responds 201 with the
// full document. Provider failures respond 502.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, maxBodyBytes); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Update edits name, status, or created_by locally.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd UpdateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, maxBodyBytes); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	doc, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document and its signers locally.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshStatus pulls the provider's status for one document.
func (h *Handler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.RefreshStatus(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// RefreshCompany refreshes every open document of the company_id query parameter.
func (h *Handler) RefreshCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		h.respondError(w, ErrInvalidCompanyID)
		return
	}

	result, err := h.sys.RefreshCompany(r.Context(), companyID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Receipt streams the archived provider response for a document.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rc, err := h.sys.Receipt(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("stream receipt failed", "id", id, "error", err)
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := provider.AsAPIError(err); ok {
		h.logger.Error("provider API error", "kind", apiErr.Kind, "status", apiErr.StatusCode, "error", err)
		handlers.RespondErrorBody(w, http.StatusBadGateway, handlers.ErrorBody{
			Error:  "provider API error",
			Detail: apiErr.Error(),
			Code:   CodeProviderAPIError,
		})
		return
	}

	if v, ok := AsValidationError(err); ok {
		handlers.RespondErrorBody(w, http.StatusBadRequest, handlers.ErrorBody{
			Error:  v.Message,
			Detail: v.Field,
			Code:   CodeValidationError,
		})
		return
	}

	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
