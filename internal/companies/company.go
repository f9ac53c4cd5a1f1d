// Package companies implements the company domain: organizations whose
// provider credential is used to create and poll signature requests.
package companies

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxFieldLength = 255

// Company is an organization that owns documents. APIToken is the credential
// presented to the signing provider and is never serialized.
type Company struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdatedAt  time.Time `json:"last_updated_at"`
	APIToken       string    `json:"-"`
	DocumentsCount int       `json:"documents_count"`
}

// CreateCommand carries the data needed to create a company.
type CreateCommand struct {
	Name     string `json:"name"`
	APIToken string `json:"api_token"`
}

// Validate trims the command and checks field bounds.
func (c *CreateCommand) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.APIToken = strings.TrimSpace(c.APIToken)

	if c.Name == "" || len(c.Name) > maxFieldLength {
		return ErrInvalidName
	}
	if len(c.APIToken) > maxFieldLength {
		return ErrInvalidToken
	}
	return nil
}

// UpdateCommand carries a partial company update. Nil fields are left
// unchanged. Setting APIToken rotates the credential.
type UpdateCommand struct {
	Name     *string `json:"name,omitempty"`
	APIToken *string `json:"api_token,omitempty"`
}

// Validate trims the command and checks field bounds.
func (c *UpdateCommand) Validate() error {
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" || len(name) > maxFieldLength {
			return ErrInvalidName
		}
		c.Name = &name
	}
	if c.APIToken != nil {
		token := strings.TrimSpace(*c.APIToken)
		if len(token) > maxFieldLength {
			return ErrInvalidToken
		}
		c.APIToken = &token
	}
	return nil
}
