package documents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/internal/signers"
	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/query"
	"github.com/JaimeStill/signet/pkg/repository"
)

// Draft is a document and its signers as first written, before the
// provider has seen them.
type Draft struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	CreatedBy string
	Signers   []signers.Signer
}

// Acceptance is what the provider assigned to an accepted document.
// Signers are matched to local rows by Position.
type Acceptance struct {
	OpenID     *int64
	Token      string
	ExternalID string
	Status     Status
	Signers    []SignerAcceptance
}

// SignerAcceptance carries the provider identifiers of the signer submitted
// at Position.
type SignerAcceptance struct {
	Position   int
	Token      string
	ExternalID string
}

// Store persists documents and their signers.
type Store interface {
	// Insert writes the draft document as PENDING_API with its signers as
	// PENDING in a single transaction.
	Insert(ctx context.Context, draft Draft) error
	// Accept records the provider's identifiers and status.
	Accept(ctx context.Context, id uuid.UUID, a Acceptance) (*Document, error)
	// MarkAPIError sets status API_ERROR without touching signers.
	MarkAPIError(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Summary], error)
	// SetStatus changes status under a row lock, enforcing CheckTransition.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Document, error)
	// Update applies a local edit under a row lock, enforcing CheckTransition.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListRefreshable returns the ids of a company's documents that hold a
	// provider token and are not COMPLETED or CANCELLED.
	ListRefreshable(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

type store struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a Postgres-backed Store.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &store{
		db:         db,
		logger:     logger.With("system", "documents.store"),
		pagination: pagination,
	}
}

func (s *store) Insert(ctx context.Context, draft Draft) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO public.document (id, name, status, created_by, company_id)
			VALUES ($1, $2, $3, $4, $5)`,
			draft.ID, draft.Name, StatusPendingAPI, draft.CreatedBy, draft.CompanyID,
		)
		if err != nil {
			return struct{}{}, err
		}

		for _, sg := range draft.Signers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO public.signers (id, name, email, status, position, document_id)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				sg.ID, sg.Name, sg.Email, signers.StatusPending, sg.Position, draft.ID,
			)
			if err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapReferenceError(err, ErrNotFound, ErrDuplicateSigner, ErrCompanyNotFound)
	}

	s.logger.Info("document inserted", "id", draft.ID, "company_id", draft.CompanyID, "signers", len(draft.Signers))
	return nil
}

func (s *store) Accept(ctx context.Context, id uuid.UUID, a Acceptance) (*Document, error) {
	doc, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (*Document, error) {
		if err := repository.ExecExpectOne(ctx, tx, `
			UPDATE public.document
			SET open_id = $1, token = $2, external_id = $3, status = $4, last_updated_at = now()
			WHERE id = $5`,
			a.OpenID, a.Token, a.ExternalID, a.Status, id,
		); err != nil {
			return nil, err
		}

		for _, sa := range a.Signers {
			if _, err := tx.ExecContext(ctx, `
				UPDATE public.signers
				SET token = $1, external_id = $2
				WHERE document_id = $3 AND position = $4`,
				sa.Token, sa.ExternalID, id, sa.Position,
			); err != nil {
				return nil, fmt.Errorf("update signer %d: %w", sa.Position, err)
			}
		}

		return find(ctx, tx, id)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateSigner)
	}
	return doc, nil
}

func (s *store) MarkAPIError(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, `
			UPDATE public.document
			SET status = $1, last_updated_at = now()
			WHERE id = $2`,
			StatusAPIError, id,
		)
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicateSigner)
}

func (s *store) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, err := find(ctx, s.db, id)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateSigner)
	}
	return doc, nil
}

func (s *store) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(s.pagination)

	qb := query.
		NewBuilder(summaryProjection, defaultSort).
		WhereSearch(page.Search, "Name", "CompanyName", "CreatedBy")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (s *store) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Document, error) {
	return s.Update(ctx, id, UpdateCommand{Status: &status})
}

func (s *store) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	doc, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (*Document, error) {
		var current Status
		if err := tx.QueryRowContext(ctx,
			"SELECT status FROM public.document WHERE id = $1 FOR UPDATE",
			id,
		).Scan(&current); err != nil {
			return nil, err
		}

		if cmd.Status != nil {
			if err := CheckTransition(current, *cmd.Status); err != nil {
				return nil, err
			}
		}

		if err := repository.ExecExpectOne(ctx, tx, `
			UPDATE public.document
			SET name = COALESCE($1, name),
				status = COALESCE($2, status),
				created_by = COALESCE($3, created_by),
				last_updated_at = now()
			WHERE id = $4`,
			cmd.Name, cmd.Status, cmd.CreatedBy, id,
		); err != nil {
			return nil, err
		}

		return find(ctx, tx, id)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicateSigner)
	}

	s.logger.Info("document updated", "id", id, "status", doc.Status)
	return doc, nil
}

func (s *store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM public.document WHERE id = $1",
			id,
		)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicateSigner)
	}

	s.logger.Warn("document deleted locally; provider not notified", "id", id)
	return nil
}

func (s *store) ListRefreshable(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	q := `
		SELECT id FROM public.document
		WHERE company_id = $1 AND token <> '' AND status NOT IN ($2, $3)
		ORDER BY created_at DESC`

	ids, err := repository.QueryMany(ctx, s.db, q,
		[]any{companyID, StatusCompleted, StatusCancelled},
		func(sc repository.Scanner) (uuid.UUID, error) {
			var id uuid.UUID
			err := sc.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return nil, fmt.Errorf("query refreshable documents: %w", err)
	}
	return ids, nil
}

func find(ctx context.Context, q repository.Querier, id uuid.UUID) (*Document, error) {
	stmt, args := query.NewBuilder(detailProjection).BuildSingle("ID", id)

	doc, err := repository.QueryOne(ctx, q, stmt, args, scanDocument)
	if err != nil {
		return nil, err
	}

	doc.Signers, err = signers.ForDocument(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("load signers: %w", err)
	}
	return &doc, nil
}
