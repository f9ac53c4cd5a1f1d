package documents

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/provider"
	"github.com/JaimeStill/signet/pkg/handlers"
)

// Domain errors for document operations.
var (
	ErrNotFound           = errors.New("document not found")
	ErrValidation         = errors.New("validation failed")
	ErrCompanyNotFound    = errors.New("company does not exist")
	ErrDuplicateSigner    = errors.New("signer email already registered on this document")
	ErrCompletedImmutable = errors.New("Cannot change status of completed document")
	ErrInvalidCompanyID   = errors.New("Invalid company_id parameter")
	ErrReceiptNotFound    = errors.New("provider receipt not found")
)

// MapHTTPStatus maps document domain errors to HTTP status codes.
// Provider failures are gateway errors.
func MapHTTPStatus(err error) int {
	if _, ok := provider.AsAPIError(err); ok {
		return http.StatusBadGateway
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrReceiptNotFound),
		errors.Is(err, companies.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateSigner):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrCompanyNotFound),
		errors.Is(err, ErrCompletedImmutable),
		errors.Is(err, ErrInvalidCompanyID),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
