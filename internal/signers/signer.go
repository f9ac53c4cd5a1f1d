// Package signers exposes the recipients of signature requests. Signers are
// written only by the document orchestrator; this package owns their shape
// and the read-only HTTP surface.
package signers

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the signing state of a single recipient.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSigned    Status = "SIGNED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusSigned, StatusCancelled:
		return st, true
	}
	return "", false
}

// Signer is one recipient of a document. Position records submission order,
// which is how provider results are matched back to local rows.
type Signer struct {
	ID         uuid.UUID `json:"id"`
	Token      string    `json:"token"`
	Status     Status    `json:"status"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ExternalID string    `json:"external_id"`
	DocumentID uuid.UUID `json:"document"`
	Position   int       `json:"-"`
}
