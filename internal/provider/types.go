package provider

import "encoding/json"

// SignerInput is a signer submitted with a new document.
type SignerInput struct {
	Name  string
	Email string
}

// CreateRequest describes a document to register with the provider.
type CreateRequest struct {
	Name    string
	PDFURL  string
	Signers []SignerInput
}

type createPayload struct {
	Name    string          `json:"name"`
	URLPDF  string          `json:"url_pdf"`
	Signers []signerPayload `json:"signers"`
}

type signerPayload struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	ExternalID string `json:"external_id"`
}

// Signer is the provider's view of one signer. Entries are aligned by
// position with the signers of the CreateRequest.
type Signer struct {
	Token      string `json:"token"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// Document is the provider's response to a successful creation.
type Document struct {
	OpenID     *int64   `json:"open_id"`
	Token      string   `json:"token"`
	Status     string   `json:"status"`
	ExternalID string   `json:"external_id"`
	Name       string   `json:"name"`
	Signers    []Signer `json:"signers"`

	// Raw is the undecoded response body.
	Raw json.RawMessage `json:"-"`
}

// DocumentStatus is the provider's current view of a document.
type DocumentStatus struct {
	Token  string          `json:"token"`
	Status string          `json:"status"`
	Name   string          `json:"name"`
	Raw    json.RawMessage `json:"-"`
}
