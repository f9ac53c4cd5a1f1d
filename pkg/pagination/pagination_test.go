package pagination_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/signet/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("got %+v, want 20/100", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PAGE_SIZE", "50")
		t.Setenv("TEST_MAX_PAGE", "200")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "TEST_PAGE_SIZE",
			MaxPageSize:     "TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
			t.Errorf("got %+v, want 50/200", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("Finalize() error = %v, want exceed error", err)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := defaultConfig()
	base.Merge(&pagination.Config{DefaultPageSize: 50})

	if base.DefaultPageSize != 50 || base.MaxPageSize != 100 {
		t.Errorf("got %+v, want 50/100", base)
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values", pagination.PageRequest{}, 1, 20},
		{"negative page", pagination.PageRequest{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage || tt.req.PageSize != tt.wantPageSize {
				t.Errorf("got page %d size %d, want %d/%d",
					tt.req.Page, tt.req.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	t.Run("all params", func(t *testing.T) {
		values := url.Values{
			"page":      {"2"},
			"page_size": {"15"},
			"search":    {"lease"},
			"sort":      {"name,-created_at"},
		}

		req := pagination.PageRequestFromQuery(values, defaultConfig())

		if req.Page != 2 || req.PageSize != 15 {
			t.Errorf("page/size = %d/%d, want 2/15", req.Page, req.PageSize)
		}
		if req.Search == nil || *req.Search != "lease" {
			t.Errorf("Search = %v, want lease", req.Search)
		}
		if len(req.Sort) != 2 || req.Sort[0].Field != "name" || !req.Sort[1].Descending {
			t.Errorf("Sort = %+v", req.Sort)
		}
	})

	t.Run("ordering alias", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{"ordering": {"-name"}}, defaultConfig())
		if len(req.Sort) != 1 || req.Sort[0].Field != "name" || !req.Sort[0].Descending {
			t.Errorf("Sort = %+v, want -name", req.Sort)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		req := pagination.PageRequestFromQuery(url.Values{}, defaultConfig())
		if req.Page != 1 || req.PageSize != 20 || req.Search != nil || req.Sort != nil {
			t.Errorf("got %+v, want defaults", req)
		}
	})
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{"exact division", 100, 20, 5},
		{"remainder", 101, 20, 6},
		{"single page", 5, 20, 1},
		{"empty", 0, 20, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]string{"a"}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}

	t.Run("nil data becomes empty", func(t *testing.T) {
		result := pagination.NewPageResult[string](nil, 0, 1, 20)
		if result.Data == nil || len(result.Data) != 0 {
			t.Errorf("Data = %#v, want empty slice", result.Data)
		}
	})
}
