package http

import (
	"net/url"
	"testing"

	"custos/internal/core"
)

func TestParseListParamsDefaults(t *testing.T) {
	params, err := ParseListParams(url.Values{})
	if err != nil {
		t.Fatalf("ParseListParams: %v", err)
	}
	if params.Sort.Field != core.SortByDate || !params.Sort.Descending {
		t.Fatalf("default sort = %+v", params.Sort)
	}
	if params.PageSize != defaultPageSize || params.PageIndex != 1 {
		t.Fatalf("default paging = %d/%d", params.PageSize, params.PageIndex)
	}
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		wantErr bool
		check   func(t *testing.T, p ListParams)
	}{
		{
			name: "filters",
			query: url.Values{
				"search":     {"  diesel  "},
				"category":   {"combustivel"},
				"culture":    {"soja"},
				"season":     {"2024/2025"},
				"date_from":  {"2025-01-01"},
				"date_to":    {"2025-06-30"},
				"min_amount": {"100,50"},
			},
			check: func(t *testing.T, p ListParams) {
				if p.Query.Search != "diesel" {
					t.Errorf("Search = %q", p.Query.Search)
				}
				if p.Query.Category != core.CategoryFuel {
					t.Errorf("Category = %q", p.Query.Category)
				}
				if p.Query.MinAmount.Cents != 10050 {
					t.Errorf("MinAmount = %d", p.Query.MinAmount.Cents)
				}
				if p.Query.DateFrom.ISO() != "2025-01-01" || p.Query.DateTo.ISO() != "2025-06-30" {
					t.Errorf("dates = %s..%s", p.Query.DateFrom.ISO(), p.Query.DateTo.ISO())
				}
			},
		},
		{
			name:  "explicit sort starts ascending",
			query: url.Values{"sort": {"amount"}},
			check: func(t *testing.T, p ListParams) {
				if p.Sort.Field != core.SortByAmount || p.Sort.Descending {
					t.Errorf("sort = %+v", p.Sort)
				}
			},
		},
		{
			name:  "dir flips explicit sort",
			query: url.Values{"sort": {"amount"}, "dir": {"desc"}},
			check: func(t *testing.T, p ListParams) {
				if p.Sort.Field != core.SortByAmount || !p.Sort.Descending {
					t.Errorf("sort = %+v", p.Sort)
				}
			},
		},
		{
			name:  "page size all",
			query: url.Values{"page_size": {"all"}},
			check: func(t *testing.T, p ListParams) {
				if p.PageSize != core.PageSizeAll {
					t.Errorf("PageSize = %d", p.PageSize)
				}
			},
		},
		{name: "unknown category", query: url.Values{"category": {"luxo"}}, wantErr: true},
		{name: "unknown sort field", query: url.Values{"sort": {"color"}}, wantErr: true},
		{name: "bad direction", query: url.Values{"dir": {"sideways"}}, wantErr: true},
		{name: "bad date", query: url.Values{"date_from": {"01/03/2025"}}, wantErr: true},
		{name: "bad amount", query: url.Values{"min_amount": {"-5"}}, wantErr: true},
		{name: "zero page size", query: url.Values{"page_size": {"0"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseListParams(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseListParams: %v", err)
			}
			tt.check(t, params)
		})
	}
}

func TestToDraftDerivesSeason(t *testing.T) {
	payload := EntryPayload{
		Description: "Sementes",
		Category:    "sementes",
		Amount:      "150,00",
		Date:        "2025-10-05",
	}
	draft, err := payload.ToDraft()
	if err != nil {
		t.Fatalf("ToDraft: %v", err)
	}
	if draft.Season != "2025/2026" {
		t.Fatalf("derived season = %q", draft.Season)
	}
	if draft.Amount.Cents != 15000 {
		t.Fatalf("amount = %d", draft.Amount.Cents)
	}
}

func TestToDraftKeepsExplicitSeason(t *testing.T) {
	payload := EntryPayload{Date: "2025-10-05", Season: "2024/2025"}
	draft, err := payload.ToDraft()
	if err != nil {
		t.Fatalf("ToDraft: %v", err)
	}
	if draft.Season != "2024/2025" {
		t.Fatalf("season = %q", draft.Season)
	}
}

func TestToDraftRejectsBadValues(t *testing.T) {
	if _, err := (EntryPayload{Amount: "abc"}).ToDraft(); err == nil {
		t.Fatal("expected error for bad amount")
	}
	if _, err := (EntryPayload{Date: "05/10/2025"}).ToDraft(); err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestParseIDPath(t *testing.T) {
	tests := []struct {
		path    string
		want    int64
		wantErr bool
	}{
		{path: "/api/entries/42", want: 42},
		{path: "/api/entries/42/", want: 42},
		{path: "/api/entries/", wantErr: true},
		{path: "/api/entries/abc", wantErr: true},
		{path: "/api/entries/1/extra", wantErr: true},
	}
	for _, tt := range tests {
		id, err := ParseIDPath(tt.path, "/api/entries/")
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.path)
			}
			continue
		}
		if err != nil || id != tt.want {
			t.Errorf("%s: id=%d err=%v", tt.path, id, err)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  abc\x00def "); got != "abcdef" {
		t.Fatalf("sanitizeInput = %q", got)
	}
	// Tabs and newlines survive
	if got := sanitizeInput("a\tb\nc"); got != "a\tb\nc" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}
