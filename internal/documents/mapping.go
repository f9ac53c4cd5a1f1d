package documents

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/query"
	"github.com/JaimeStill/signet/pkg/repository"
)

var summaryProjection = query.
	NewProjectionMap("public", "document", "d").
	Project("id", "ID").
	Project("name", "Name").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("last_updated_at", "LastUpdatedAt").
	Project("created_by", "CreatedBy").
	Project("company_id", "CompanyID").
	Join("public", "company", "c", "JOIN", "c.id = d.company_id").
	Project("name", "CompanyName").
	ProjectExpr("(SELECT COUNT(*) FROM public.signers s WHERE s.document_id = d.id)", "SignersCount")

var detailProjection = query.
	NewProjectionMap("public", "document", "d").
	Project("id", "ID").
	Project("open_id", "OpenID").
	Project("token", "Token").
	Project("name", "Name").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("last_updated_at", "LastUpdatedAt").
	Project("created_by", "CreatedBy").
	Project("external_id", "ExternalID").
	Join("public", "company", "c", "JOIN", "c.id = d.company_id").
	Project("id", "Company.ID").
	Project("name", "Company.Name").
	Project("created_at", "Company.CreatedAt").
	Project("last_updated_at", "Company.LastUpdatedAt").
	Project("api_token", "Company.APIToken").
	ProjectExpr("(SELECT COUNT(*) FROM public.document cd WHERE cd.company_id = c.id)", "Company.DocumentsCount")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
type Filters struct {
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	Status    *Status    `json:"status,omitempty"`
	Name      *string    `json:"name,omitempty"`
	CreatedBy *string    `json:"created_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CompanyID", f.CompanyID).
		WhereEquals("Status", f.Status).
		WhereContains("Name", f.Name).
		WhereContains("CreatedBy", f.CreatedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// An unparseable company_id yields ErrInvalidCompanyID.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if c := values.Get("company_id"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			return f, ErrInvalidCompanyID
		}
		f.CompanyID = &id
	}

	if s := values.Get("status"); s != "" {
		st := Status(strings.ToUpper(s))
		f.Status = &st
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if by := values.Get("created_by"); by != "" {
		f.CreatedBy = &by
	}

	return f, nil
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var d Summary
	err := s.Scan(
		&d.ID,
		&d.Name,
		&d.Status,
		&d.CreatedAt,
		&d.LastUpdatedAt,
		&d.CreatedBy,
		&d.CompanyID,
		&d.CompanyName,
		&d.SignersCount,
	)
	return d, err
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.OpenID,
		&d.Token,
		&d.Name,
		&d.Status,
		&d.CreatedAt,
		&d.LastUpdatedAt,
		&d.CreatedBy,
		&d.ExternalID,
		&d.Company.ID,
		&d.Company.Name,
		&d.Company.CreatedAt,
		&d.Company.LastUpdatedAt,
		&d.Company.APIToken,
		&d.Company.DocumentsCount,
	)
	return d, err
}
