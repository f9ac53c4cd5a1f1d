package signers

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("signer not found")
	ErrInvalidDocumentID = errors.New("Invalid document_id parameter")
	ErrCreateNotAllowed  = errors.New("Signers must be created through document creation process")
	ErrUpdateNotAllowed  = errors.New("Signer updates should be done through the signing provider")
	ErrDeleteNotAllowed  = errors.New("Signers cannot be deleted individually. Delete the document instead.")
)

// MapHTTPStatus maps signer domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidDocumentID):
		return http.StatusBadRequest
	case errors.Is(err, ErrCreateNotAllowed),
		errors.Is(err, ErrUpdateNotAllowed),
		errors.Is(err, ErrDeleteNotAllowed):
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
