package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/provider"
	"github.com/JaimeStill/signet/internal/signers"
	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/storage"
)

// Companies resolves the company a document belongs to.
type Companies interface {
	Find(ctx context.Context, id uuid.UUID) (*companies.Company, error)
}

// Provider is the subset of the provider client the orchestrator uses.
type Provider interface {
	CreateDocument(ctx context.Context, credential string, req provider.CreateRequest) (*provider.Document, error)
	DocumentStatus(ctx context.Context, credential, token string) (provider.DocumentStatus, bool)
}

// StatusObserver is notified whenever a document changes status.
type StatusObserver interface {
	ObserveStatusChange(status string)
}

type orchestrator struct {
	store       Store
	companies   Companies
	provider    Provider
	archive     storage.System
	observer    StatusObserver
	logger      *slog.Logger
	pagination  pagination.Config
	concurrency int
}

// New creates the document System. observer may be nil.
func New(
	store Store,
	companies Companies,
	provider Provider,
	archive storage.System,
	observer StatusObserver,
	logger *slog.Logger,
	pagination pagination.Config,
	refreshConcurrency int,
) System {
	if refreshConcurrency < 1 {
		refreshConcurrency = 1
	}
	return &orchestrator{
		store:       store,
		companies:   companies,
		provider:    provider,
		archive:     archive,
		observer:    observer,
		logger:      logger.With("system", "documents"),
		pagination:  pagination,
		concurrency: refreshConcurrency,
	}
}

func (o *orchestrator) Handler() *Handler {
	return NewHandler(o, o.logger, o.pagination)
}

func (o *orchestrator) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	return o.store.List(ctx, page, filters)
}

func (o *orchestrator) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	return o.store.Find(ctx, id)
}

func (o *orchestrator) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	company, err := o.companies.Find(ctx, cmd.CompanyID)
	if err != nil {
		if errors.Is(err, companies.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, cmd.CompanyID)
		}
		return nil, fmt.Errorf("find company: %w", err)
	}

	draft := newDraft(cmd, company.ID)
	if err := o.store.Insert(ctx, draft); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	// The draft is committed. Everything below must leave it either
	// accepted or API_ERROR, even if the caller goes away.
	detached := context.WithoutCancel(ctx)

	accepted, err := o.provider.CreateDocument(ctx, company.APIToken, providerRequest(cmd))
	if err != nil {
		if markErr := o.store.MarkAPIError(detached, draft.ID); markErr != nil {
			o.logger.Error("mark document api error failed", "id", draft.ID, "error", markErr)
		} else {
			o.observe(StatusAPIError)
		}
		return nil, err
	}

	doc, err := o.store.Accept(detached, draft.ID, acceptance(accepted, len(draft.Signers)))
	if err != nil {
		o.logger.Error("provider accepted document but acceptance was not recorded",
			"id", draft.ID,
			"provider_token", accepted.Token,
			"error", err,
		)
		return nil, fmt.Errorf("record provider acceptance: %w", err)
	}
	o.observe(doc.Status)

	o.archiveExchange(detached, doc.ID, accepted.Raw)

	o.logger.Info("document created",
		"id", doc.ID,
		"company_id", company.ID,
		"status", doc.Status,
		"signers", len(doc.Signers),
	)
	return doc, nil
}

func (o *orchestrator) RefreshStatus(ctx context.Context, id uuid.UUID) (*Document, error) {
	doc, _, err := o.refresh(ctx, id)
	return doc, err
}

func (o *orchestrator) RefreshCompany(ctx context.Context, companyID uuid.UUID) (*RefreshResult, error) {
	if _, err := o.companies.Find(ctx, companyID); err != nil {
		return nil, err
	}

	ids, err := o.store.ListRefreshable(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var changed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			_, ok, err := o.refresh(gctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if ok {
				changed.Add(1)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("refresh company documents: %w", err)
	}

	result := &RefreshResult{
		CompanyID: companyID,
		Checked:   len(ids),
		Changed:   int(changed.Load()),
	}
	o.logger.Info("company documents refreshed", "company_id", companyID, "checked", result.Checked, "changed", result.Changed)
	return result, nil
}

// refresh reports whether the stored status changed.
func (o *orchestrator) refresh(ctx context.Context, id uuid.UUID) (*Document, bool, error) {
	doc, err := o.store.Find(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if doc.Token == "" {
		o.logger.Debug("document has no provider token", "id", id)
		return doc, false, nil
	}

	remote, ok := o.provider.DocumentStatus(ctx, doc.Company.APIToken, doc.Token)
	if !ok {
		return doc, false, nil
	}

	next, known := providerStatus(remote.Status)
	if !known {
		o.logger.Warn("ignoring unknown provider status", "id", id, "status", remote.Status)
		return doc, false, nil
	}
	if next == doc.Status {
		return doc, false, nil
	}
	if err := CheckTransition(doc.Status, next); err != nil {
		o.logger.Warn("provider reported status for completed document", "id", id, "status", next)
		return doc, false, nil
	}

	updated, err := o.store.SetStatus(ctx, id, next)
	if err != nil {
		if errors.Is(err, ErrCompletedImmutable) {
			current, ferr := o.store.Find(ctx, id)
			return current, false, ferr
		}
		return nil, false, err
	}

	o.observe(updated.Status)
	o.logger.Info("document status refreshed", "id", id, "from", doc.Status, "to", updated.Status)
	return updated, true, nil
}

func (o *orchestrator) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var before Status
	if cmd.Status != nil {
		current, err := o.store.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		before = current.Status
	}

	doc, err := o.store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Status != nil && doc.Status != before {
		o.observe(doc.Status)
	}
	return doc, nil
}

func (o *orchestrator) Delete(ctx context.Context, id uuid.UUID) error {
	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := o.archive.Delete(ctx, receiptKey(id)); err != nil &&
		!errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrDisabled) {
		o.logger.Warn("delete provider receipt failed", "id", id, "error", err)
	}
	return nil
}

func (o *orchestrator) Receipt(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	if _, err := o.store.Find(ctx, id); err != nil {
		return nil, err
	}

	rc, err := o.archive.Download(ctx, receiptKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrDisabled) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("download receipt: %w", err)
	}
	return rc, nil
}

func (o *orchestrator) archiveExchange(ctx context.Context, id uuid.UUID, raw []byte) {
	if !o.archive.Enabled() || len(raw) == 0 {
		return
	}
	if err := o.archive.Upload(ctx, receiptKey(id), raw, "application/json"); err != nil {
		o.logger.Warn("archive provider response failed", "id", id, "error", err)
	}
}

func (o *orchestrator) observe(status Status) {
	if o.observer != nil {
		o.observer.ObserveStatusChange(string(status))
	}
}

func receiptKey(id uuid.UUID) string {
	return "documents/" + id.String() + "/provider.json"
}

func newDraft(cmd CreateCommand, companyID uuid.UUID) Draft {
	draft := Draft{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      cmd.Name,
		CreatedBy: cmd.CreatedBy,
		Signers:   make([]signers.Signer, len(cmd.Signers)),
	}
	for i, s := range cmd.Signers {
		draft.Signers[i] = signers.Signer{
			ID:         uuid.New(),
			Status:     signers.StatusPending,
			Name:       s.Name,
			Email:      s.Email,
			DocumentID: draft.ID,
			Position:   i,
		}
	}
	return draft
}

func providerRequest(cmd CreateCommand) provider.CreateRequest {
	req := provider.CreateRequest{
		Name:    cmd.Name,
		PDFURL:  cmd.PDFURL,
		Signers: make([]provider.SignerInput, len(cmd.Signers)),
	}
	for i, s := range cmd.Signers {
		req.Signers[i] = provider.SignerInput{Name: s.Name, Email: s.Email}
	}
	return req
}

// acceptance aligns provider signers with submitted signers by position.
// Extra provider entries are ignored; missing ones leave the signer blank.
func acceptance(doc *provider.Document, submitted int) Acceptance {
	status, ok := providerStatus(doc.Status)
	if !ok {
		status = StatusPending
	}

	a := Acceptance{
		OpenID:     doc.OpenID,
		Token:      doc.Token,
		ExternalID: doc.ExternalID,
		Status:     status,
	}
	for i := range min(submitted, len(doc.Signers)) {
		a.Signers = append(a.Signers, SignerAcceptance{
			Position:   i,
			Token:      doc.Signers[i].Token,
			ExternalID: doc.Signers[i].ExternalID,
		})
	}
	return a
}
