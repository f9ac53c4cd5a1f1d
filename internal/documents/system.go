package documents

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/pagination"
)

// System defines the public contract for document operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)

	// Create persists the document and its signers, registers them with the
	// provider, and records the provider's identifiers. A provider failure
	// leaves the document persisted as API_ERROR and returns *provider.APIError.
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)

	// RefreshStatus pulls the provider's status for a document. Provider
	// failures are not errors; the document is returned unchanged.
	RefreshStatus(ctx context.Context, id uuid.UUID) (*Document, error)

	// RefreshCompany refreshes every refreshable document of a company.
	RefreshCompany(ctx context.Context, companyID uuid.UUID) (*RefreshResult, error)

	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Receipt opens the archived provider response for a document.
	Receipt(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
}

// RefreshResult summarizes a company-wide status refresh.
type RefreshResult struct {
	CompanyID uuid.UUID `json:"company_id"`
	Checked   int       `json:"checked"`
	Changed   int       `json:"changed"`
}
