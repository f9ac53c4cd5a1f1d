package signers

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/query"
	"github.com/JaimeStill/signet/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "signers", "s").
	Project("id", "ID").
	Project("token", "Token").
	Project("status", "Status").
	Project("name", "Name").
	Project("email", "Email").
	Project("external_id", "ExternalID").
	Project("document_id", "DocumentID").
	Project("position", "Position")

var defaultSort = []query.SortField{
	{Field: "DocumentID"},
	{Field: "Position"},
}

// Filters contains optional filtering criteria for signer queries.
type Filters struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters. The
// status filter is uppercased; an unparseable document_id is an error.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if d := values.Get("document_id"); d != "" {
		id, err := uuid.Parse(d)
		if err != nil {
			return f, ErrInvalidDocumentID
		}
		f.DocumentID = &id
	}

	if s := values.Get("status"); s != "" {
		st := Status(strings.ToUpper(s))
		f.Status = &st
	}

	return f, nil
}

// ForDocument returns the signers of a document in submission order.
func ForDocument(ctx context.Context, q repository.Querier, documentID uuid.UUID) ([]Signer, error) {
	sql, args := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("DocumentID", documentID).
		Build()

	return repository.QueryMany(ctx, q, sql, args, scanSigner)
}

func scanSigner(s repository.Scanner) (Signer, error) {
	var sg Signer
	err := s.Scan(
		&sg.ID,
		&sg.Token,
		&sg.Status,
		&sg.Name,
		&sg.Email,
		&sg.ExternalID,
		&sg.DocumentID,
		&sg.Position,
	)
	return sg, err
}
