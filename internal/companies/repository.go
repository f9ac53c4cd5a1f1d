package companies

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/query"
	"github.com/JaimeStill/signet/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a company repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "companies"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Company], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count companies: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	companies, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanCompany)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}

	result := pagination.NewPageResult(companies, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Company, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCompany)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Company, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO public.company AS c (id, name, api_token)
		VALUES ($1, $2, $3)
		RETURNING ` + projection.Columns()

	args := []any{uuid.New(), cmd.Name, cmd.APIToken}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Company, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCompany)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Company, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		UPDATE public.company AS c
		SET name = COALESCE($1, c.name),
			api_token = COALESCE($2, c.api_token),
			last_updated_at = now()
		WHERE c.id = $3
		RETURNING ` + projection.Columns()

	args := []any{cmd.Name, cmd.APIToken, id}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Company, error) {
		return repository.QueryOne(ctx, tx, q, args, scanCompany)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company updated", "id", c.ID, "name", c.Name, "token_rotated", cmd.APIToken != nil)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM public.company WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company deleted", "id", id)
	return nil
}
