package signers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/signet/internal/signers"
	"github.com/JaimeStill/signet/pkg/handlers"
	"github.com/JaimeStill/signet/pkg/pagination"
)

type mockSystem struct {
	listFn func(ctx context.Context, page pagination.PageRequest, filters signers.Filters) (*pagination.PageResult[signers.Signer], error)
	findFn func(ctx context.Context, id uuid.UUID) (*signers.Signer, error)
}

func (m *mockSystem) Handler() *signers.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters signers.Filters) (*pagination.PageResult[signers.Signer], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*signers.Signer, error) {
	return m.findFn(ctx, id)
}

func newTestHandler(sys signers.System) *signers.Handler {
	return signers.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *signers.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func TestHandlerListFilters(t *testing.T) {
	docID := uuid.New()
	var captured signers.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f signers.Filters) (*pagination.PageResult[signers.Signer], error) {
			captured = f
			result := pagination.NewPageResult([]signers.Signer{{ID: uuid.New(), Name: "Ana", Email: "ana@x.com", DocumentID: docID}}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	t.Run("document and status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/signers?document_id="+docID.String()+"&status=signed", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.DocumentID == nil || *captured.DocumentID != docID {
			t.Errorf("document_id = %v, want %v", captured.DocumentID, docID)
		}
		if captured.Status == nil || *captured.Status != signers.StatusSigned {
			t.Errorf("status = %v, want SIGNED", captured.Status)
		}

		var result pagination.PageResult[map[string]any]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Data[0]["document"] != docID.String() {
			t.Errorf("document = %v, want %v", result.Data[0]["document"], docID)
		}
		if _, ok := result.Data[0]["position"]; ok {
			t.Error("position should not be serialized")
		}
	})

	t.Run("invalid document_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/signers?document_id=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var body handlers.ErrorBody
		json.NewDecoder(rec.Body).Decode(&body)
		if body.Error != "Invalid document_id parameter" {
			t.Errorf("error = %q", body.Error)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, _ uuid.UUID) (*signers.Signer, error) {
			return nil, signers.ErrNotFound
		},
	}
	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/signers/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerWritesNotAllowed(t *testing.T) {
	mux := setupMux(newTestHandler(&mockSystem{}))
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		want   error
	}{
		{"POST", "/signers", signers.ErrCreateNotAllowed},
		{"PUT", "/signers/" + id, signers.ErrUpdateNotAllowed},
		{"PATCH", "/signers/" + id, signers.ErrUpdateNotAllowed},
		{"DELETE", "/signers/" + id, signers.ErrDeleteNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", rec.Code)
			}
			var body handlers.ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.want.Error() {
				t.Errorf("error = %q, want %q", body.Error, tt.want.Error())
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   signers.Status
		wantOK bool
	}{
		{"pending", signers.StatusPending, true},
		{" Signed ", signers.StatusSigned, true},
		{"CANCELLED", signers.StatusCancelled, true},
		{"refused", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := signers.ParseStatus(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
