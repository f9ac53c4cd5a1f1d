package companies

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/signet/pkg/handlers"
)

// Domain errors for company operations.
var (
	ErrNotFound     = errors.New("company not found")
	ErrDuplicate    = errors.New("company already exists")
	ErrInvalidName  = errors.New("company name must be between 1 and 255 characters")
	ErrInvalidToken = errors.New("api_token must be at most 255 characters")
)

// MapHTTPStatus maps company domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, handlers.ErrInvalidBody):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
