package documents_test

import (
	"bytes"
	"context"
	"io"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/internal/companies"
	"github.com/JaimeStill/signet/internal/documents"
	"github.com/JaimeStill/signet/internal/signers"
	"github.com/JaimeStill/signet/pkg/lifecycle"
	"github.com/JaimeStill/signet/pkg/pagination"
	"github.com/JaimeStill/signet/pkg/storage"
)

type memCompanies map[uuid.UUID]companies.Company

func (m memCompanies) Find(_ context.Context, id uuid.UUID) (*companies.Company, error) {
	c, ok := m[id]
	if !ok {
		return nil, companies.ErrNotFound
	}
	return &c, nil
}

type memStore struct {
	mu        sync.Mutex
	companies memCompanies
	docs      map[uuid.UUID]*documents.Document
	inserts   int
	acceptErr error
}

func newMemStore(c memCompanies) *memStore {
	return &memStore{companies: c, docs: make(map[uuid.UUID]*documents.Document)}
}

func clone(d *documents.Document) *documents.Document {
	cp := *d
	cp.Signers = slices.Clone(d.Signers)
	return &cp
}

func (s *memStore) Insert(_ context.Context, draft documents.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[draft.CompanyID]
	if !ok {
		return documents.ErrCompanyNotFound
	}
	s.inserts++

	doc := &documents.Document{
		ID:        draft.ID,
		Name:      draft.Name,
		Status:    documents.StatusPendingAPI,
		CreatedBy: draft.CreatedBy,
		Company:   company,
	}
	for _, sg := range draft.Signers {
		sg.Status = signers.StatusPending
		doc.Signers = append(doc.Signers, sg)
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *memStore) Accept(_ context.Context, id uuid.UUID, a documents.Acceptance) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.acceptErr != nil {
		return nil, s.acceptErr
	}
	doc, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	doc.OpenID = a.OpenID
	doc.Token = a.Token
	doc.ExternalID = a.ExternalID
	doc.Status = a.Status
	for _, sa := range a.Signers {
		for i := range doc.Signers {
			if doc.Signers[i].Position == sa.Position {
				doc.Signers[i].Token = sa.Token
				doc.Signers[i].ExternalID = sa.ExternalID
			}
		}
	}
	return clone(doc), nil
}

func (s *memStore) MarkAPIError(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return documents.ErrNotFound
	}
	doc.Status = documents.StatusAPIError
	return nil
}

func (s *memStore) Find(_ context.Context, id uuid.UUID) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	return clone(doc), nil
}

func (s *memStore) List(context.Context, pagination.PageRequest, documents.Filters) (*pagination.PageResult[documents.Summary], error) {
	result := pagination.NewPageResult[documents.Summary](nil, 0, 1, 20)
	return &result, nil
}

func (s *memStore) SetStatus(ctx context.Context, id uuid.UUID, status documents.Status) (*documents.Document, error) {
	return s.Update(ctx, id, documents.UpdateCommand{Status: &status})
}

func (s *memStore) Update(_ context.Context, id uuid.UUID, cmd documents.UpdateCommand) (*documents.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, documents.ErrNotFound
	}
	if cmd.Status != nil {
		if err := documents.CheckTransition(doc.Status, *cmd.Status); err != nil {
			return nil, err
		}
		doc.Status = *cmd.Status
	}
	if cmd.Name != nil {
		doc.Name = *cmd.Name
	}
	if cmd.CreatedBy != nil {
		doc.CreatedBy = *cmd.CreatedBy
	}
	return clone(doc), nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return documents.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *memStore) ListRefreshable(_ context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uuid.UUID
	for _, d := range s.docs {
		if d.Company.ID != companyID || d.Token == "" {
			continue
		}
		if d.Status == documents.StatusCompleted || d.Status == documents.StatusCancelled {
			continue
		}
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// seed stores a document directly, bypassing creation.
func (s *memStore) seed(doc documents.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = clone(&doc)
}

type memArchive struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemArchive() *memArchive {
	return &memArchive{blobs: make(map[string][]byte)}
}

func (a *memArchive) Start(*lifecycle.Coordinator) error { return nil }
func (a *memArchive) Enabled() bool                      { return true }

func (a *memArchive) Upload(_ context.Context, key string, data []byte, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blobs[key] = slices.Clone(data)
	return nil
}

func (a *memArchive) Download(_ context.Context, key string) (io.ReadCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (a *memArchive) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(a.blobs, key)
	return nil
}

type statusLog struct {
	mu       sync.Mutex
	statuses []string
}

func (l *statusLog) ObserveStatusChange(status string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, status)
}

func (l *statusLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.statuses)
}
