// Package provider is a typed client for the external e-signature provider's REST API.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxResponseBytes = 1 << 20
	maxDetailLength  = 512

	opCreate = "create_document"
	opStatus = "document_status"
)

// Recorder observes provider calls. Outcome is "success", "absent", or an
// APIError Kind.
type Recorder interface {
	ObserveProviderCall(operation, outcome string, d time.Duration)
}

// Client calls the provider API on behalf of a company credential.
type Client struct {
	http         *http.Client
	baseURL      string
	orgID        string
	defaultToken string
	authScheme   string
	recorder     Recorder
	logger       *slog.Logger
}

// New creates a Client. recorder may be nil.
func New(cfg *Config, logger *slog.Logger, recorder Recorder) *Client {
	return &Client{
		http:         &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:      cfg.BaseURL,
		orgID:        cfg.OrgID,
		defaultToken: cfg.DefaultToken,
		authScheme:   cfg.AuthScheme,
		recorder:     recorder,
		logger:       logger.With("system", "provider"),
	}
}

// CreateDocument registers a document and its signers. Only HTTP 201 is a
// success; every failure is returned as an *APIError.
func (c *Client) CreateDocument(ctx context.Context, credential string, req CreateRequest) (*Document, error) {
	start := time.Now()
	doc, err := c.createDocument(ctx, credential, req)

	outcome := "success"
	if apiErr, ok := AsAPIError(err); ok {
		outcome = string(apiErr.Kind)
		c.logger.Error("provider document creation failed",
			"name", req.Name,
			"org_id", c.orgID,
			"kind", apiErr.Kind,
			"status", apiErr.StatusCode,
			"error", err,
		)
	} else if err != nil {
		outcome = "error"
	}
	c.observe(opCreate, outcome, start)

	return doc, err
}

func (c *Client) createDocument(ctx context.Context, credential string, req CreateRequest) (*Document, error) {
	payload := createPayload{
		Name:    req.Name,
		URLPDF:  req.PDFURL,
		Signers: make([]signerPayload, len(req.Signers)),
	}
	for i, s := range req.Signers {
		payload.Signers[i] = signerPayload{
			Name:       s.Name,
			Email:      s.Email,
			ExternalID: newSignerExternalID(),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode create request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/docs/", credential, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.logger.Info("creating provider document",
		"name", req.Name,
		"org_id", c.orgID,
		"signers", len(req.Signers),
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode != http.StatusCreated {
		return nil, &APIError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(raw),
		}
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &APIError{Kind: KindDecode, StatusCode: resp.StatusCode, err: err}
	}
	doc.Raw = raw

	c.logger.Info("provider document created", "token", doc.Token, "status", doc.Status)
	return &doc, nil
}

// DocumentStatus fetches the provider's current view of a document. The
// boolean is false on any non-200 response, transport failure, or
// undecodable body; no error is ever surfaced.
func (c *Client) DocumentStatus(ctx context.Context, credential, token string) (DocumentStatus, bool) {
	start := time.Now()
	status, ok := c.documentStatus(ctx, credential, token)

	outcome := "success"
	if !ok {
		outcome = "absent"
	}
	c.observe(opStatus, outcome, start)

	return status, ok
}

func (c *Client) documentStatus(ctx context.Context, credential, token string) (DocumentStatus, bool) {
	var status DocumentStatus

	req, err := c.newRequest(ctx, http.MethodGet, "/docs/"+url.PathEscape(token)+"/", credential, nil)
	if err != nil {
		c.logger.Warn("could not build status request", "error", err)
		return status, false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("error fetching document status", "token", token, "error", err)
		return status, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("could not fetch document status", "token", token, "status", resp.StatusCode)
		return status, false
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("error reading document status", "token", token, "error", err)
		return status, false
	}

	if err := json.Unmarshal(raw, &status); err != nil {
		c.logger.Warn("invalid document status body", "token", token, "error", err)
		return DocumentStatus{}, false
	}
	status.Raw = raw

	return status, true
}

func (c *Client) newRequest(ctx context.Context, method, path, credential string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}

	if credential == "" {
		credential = c.defaultToken
	}
	req.Header.Set("Authorization", c.authScheme+" "+credential)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveProviderCall(op, outcome, time.Since(start))
	}
}

func newSignerExternalID() string {
	return "signer-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func transportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Kind: KindTimeout, err: err}
	}
	return &APIError{Kind: KindConnection, err: err}
}

// errorDetail prefers a string "detail" field and falls back to the trimmed body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}

	detail := strings.TrimSpace(string(raw))
	if len(detail) > maxDetailLength {
		detail = detail[:maxDetailLength]
	}
	return detail
}
