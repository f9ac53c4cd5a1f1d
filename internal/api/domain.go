package api

import (
	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/documents"
	"github.com/JaimeStill/signet/internal/signers"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Companies companies.System
	Documents documents.System
	Signers   signers.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	companiesSystem := companies.New(db, runtime.Logger, runtime.Pagination)
	signersSystem := signers.New(db, runtime.Logger, runtime.Pagination)

	documentsSystem := documents.New(
		documents.NewStore(db, runtime.Logger, runtime.Pagination),
		companiesSystem,
		runtime.Provider,
		runtime.Storage,
		runtime.Metrics,
		runtime.Logger,
		runtime.Pagination,
		runtime.RefreshConcurrency,
	)

	return &Domain{
		Companies: companiesSystem,
		Documents: documentsSystem,
		Signers:   signersSystem,
	}
}
