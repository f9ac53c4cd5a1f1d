package signers

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/pagination"
)

// System defines the read-only contract for signer operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Signer], error)

	Find(ctx context.Context, id uuid.UUID) (*Signer, error)
}
