// Package documents implements the signature request lifecycle: local
// persistence of documents and their signers, registration with the signing
// provider, and status refresh.
package documents

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/signers"
)

// Status is the lifecycle state of a document.
type Status string

const (
	// StatusPendingAPI marks a document persisted locally but not yet
	// accepted by the provider.
	StatusPendingAPI Status = "PENDING_API"
	StatusPending    Status = "PENDING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	// StatusAPIError marks a document the provider refused or never answered for.
	StatusAPIError Status = "API_ERROR"
)

// ParseStatus normalizes s case-insensitively and reports whether it names
// a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPendingAPI, StatusPending, StatusCompleted, StatusCancelled, StatusAPIError:
		return st, true
	}
	return "", false
}

// providerStatus maps a status reported by the provider onto a local status.
// Local-only states are never accepted from the provider.
func providerStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "completed", "signed":
		return StatusCompleted, true
	case "cancelled", "canceled", "refused":
		return StatusCancelled, true
	}
	return "", false
}

// CheckTransition rejects any change away from COMPLETED.
func CheckTransition(from, to Status) error {
	if from == StatusCompleted && to != StatusCompleted {
		return ErrCompletedImmutable
	}
	return nil
}

// Document is the detail representation: the document with its company
// and signers in submission order.
type Document struct {
	ID            uuid.UUID         `json:"id"`
	OpenID        *int64            `json:"open_id"`
	Token         string            `json:"token"`
	Name          string            `json:"name"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	LastUpdatedAt time.Time         `json:"last_updated_at"`
	CreatedBy     string            `json:"created_by"`
	Company       companies.Company `json:"company"`
	ExternalID    string            `json:"external_id"`
	Signers       []signers.Signer  `json:"signers"`
}

// Summary is the list representation of a document.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	CreatedBy     string    `json:"created_by"`
	CompanyID     uuid.UUID `json:"company_id"`
	CompanyName   string    `json:"company_name"`
	SignersCount  int       `json:"signers_count"`
}

// SignerInput is one requested recipient of a new document.
type SignerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateCommand carries a new signature request.
type CreateCommand struct {
	CompanyID uuid.UUID     `json:"company_id"`
	Name      string        `json:"name"`
	PDFURL    string        `json:"pdf_url"`
	CreatedBy string        `json:"created_by"`
	Signers   []SignerInput `json:"signers"`
}

const (
	minNameLength  = 3
	maxFieldLength = 255
)

// Normalize trims every field and lowercases signer emails.
func (c *CreateCommand) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.PDFURL = strings.TrimSpace(c.PDFURL)
	c.CreatedBy = strings.TrimSpace(c.CreatedBy)
	for i := range c.Signers {
		c.Signers[i].Name = strings.TrimSpace(c.Signers[i].Name)
		c.Signers[i].Email = strings.ToLower(strings.TrimSpace(c.Signers[i].Email))
	}
}

// Validate checks a normalized command. It returns the first *ValidationError found.
func (c *CreateCommand) Validate() error {
	if c.CompanyID == uuid.Nil {
		return invalid("company_id", "This field is required.")
	}
	if len(c.Name) < minNameLength {
		return invalid("name", "Document name must be at least 3 characters long")
	}
	if len(c.Name) > maxFieldLength {
		return invalid("name", "Ensure this field has no more than 255 characters.")
	}
	if err := validatePDFURL(c.PDFURL); err != nil {
		return err
	}
	if c.CreatedBy == "" || len(c.CreatedBy) > maxFieldLength {
		return invalid("created_by", "This field is required and must be at most 255 characters.")
	}
	if len(c.Signers) == 0 {
		return invalid("signers", "At least one signer is required")
	}

	seen := make(map[string]struct{}, len(c.Signers))
	for i, s := range c.Signers {
		field := fmt.Sprintf("signers[%d]", i)
		if s.Name == "" || len(s.Name) > maxFieldLength {
			return invalid(field+".name", "Signer name is required and must be at most 255 characters.")
		}
		if !validEmail(s.Email) {
			return invalid(field+".email", "Enter a valid email address.")
		}
		if _, dup := seen[s.Email]; dup {
			return invalid("signers", "Duplicate email addresses are not allowed")
		}
		seen[s.Email] = struct{}{}
	}
	return nil
}

func validatePDFURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("pdf_url", "Enter a valid URL.")
	}
	if !strings.HasSuffix(strings.ToLower(raw), ".pdf") {
		return invalid("pdf_url", "URL must point to a PDF file")
	}
	return nil
}

func validEmail(s string) bool {
	if s == "" || len(s) > maxFieldLength {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// UpdateCommand is a local-only edit. Nil fields are left unchanged; the
// provider is not notified.
type UpdateCommand struct {
	Name      *string `json:"name,omitempty"`
	Status    *Status `json:"status,omitempty"`
	CreatedBy *string `json:"created_by,omitempty"`
}

// Validate trims and checks the provided fields, normalizing Status.
func (c *UpdateCommand) Validate() error {
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if len(name) < minNameLength {
			return invalid("name", "Document name must be at least 3 characters long")
		}
		if len(name) > maxFieldLength {
			return invalid("name", "Ensure this field has no more than 255 characters.")
		}
		c.Name = &name
	}
	if c.Status != nil {
		st, ok := ParseStatus(string(*c.Status))
		if !ok {
			return invalid("status", fmt.Sprintf("%q is not a valid choice.", string(*c.Status)))
		}
		c.Status = &st
	}
	if c.CreatedBy != nil {
		by := strings.TrimSpace(*c.CreatedBy)
		if by == "" || len(by) > maxFieldLength {
			return invalid("created_by", "This field is required and must be at most 255 characters.")
		}
		c.CreatedBy = &by
	}
	return nil
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// AsValidationError reports whether err is, or wraps, a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}
