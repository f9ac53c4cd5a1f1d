package companies

import (
	"net/url"

	"github.com/JaimeStill/signet/pkg/query"
	"github.com/JaimeStill/signet/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "company", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("created_at", "CreatedAt").
	Project("last_updated_at", "LastUpdatedAt").
	Project("api_token", "APIToken").
	ProjectExpr("(SELECT COUNT(*) FROM public.document d WHERE d.company_id = c.id)", "DocumentsCount")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for company queries.
type Filters struct {
	Name *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	return f
}

func scanCompany(s repository.Scanner) (Company, error) {
	var c Company
	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.CreatedAt,
		&c.LastUpdatedAt,
		&c.APIToken,
		&c.DocumentsCount,
	)
	return c, err
}
