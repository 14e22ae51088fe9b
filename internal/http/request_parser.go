// Package http provides the JSON API over the cost ledger.
//
// This file implements parsing and validation of request data: list query
// parameters and entry payloads.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"custos/internal/core"
)

const defaultPageSize = 25

// ListParams holds the parsed filter, sort and pagination parameters of a
// listing request.
type ListParams struct {
	Query     core.QuerySpec
	Sort      core.SortSpec
	PageSize  int
	PageIndex int
}

// ParseListParams extracts QuerySpec, SortSpec and pagination from URL query
// parameters. Unknown or malformed values fail instead of silently changing
// the selection.
func ParseListParams(query url.Values) (ListParams, error) {
	params := ListParams{
		Sort:      core.SortSpec{Field: core.SortByDate, Descending: true},
		PageSize:  defaultPageSize,
		PageIndex: 1,
	}

	params.Query.Search = strings.TrimSpace(query.Get("search"))
	params.Query.Culture = strings.TrimSpace(query.Get("culture"))
	params.Query.Season = strings.TrimSpace(query.Get("season"))

	if v := strings.TrimSpace(query.Get("category")); v != "" {
		cat := core.Category(v)
		if !cat.Valid() {
			return params, fmt.Errorf("unknown category %q", v)
		}
		params.Query.Category = cat
	}

	if v := strings.TrimSpace(query.Get("date_from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return params, fmt.Errorf("invalid date_from %q", v)
		}
		params.Query.DateFrom = d
	}
	if v := strings.TrimSpace(query.Get("date_to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return params, fmt.Errorf("invalid date_to %q", v)
		}
		params.Query.DateTo = d
	}

	if v := strings.TrimSpace(query.Get("min_amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return params, fmt.Errorf("invalid min_amount %q", v)
		}
		params.Query.MinAmount = core.Money{Cents: cents}
	}

	if v := strings.TrimSpace(query.Get("sort")); v != "" {
		field := core.SortField(v)
		if !field.Valid() {
			return params, fmt.Errorf("unknown sort field %q", v)
		}
		// An explicit sort field starts ascending; dir can still flip it
		params.Sort = core.SortSpec{Field: field}
	}
	switch dir := strings.TrimSpace(query.Get("dir")); dir {
	case "":
	case "asc":
		params.Sort.Descending = false
	case "desc":
		params.Sort.Descending = true
	default:
		return params, fmt.Errorf("invalid sort direction %q", dir)
	}

	if v := strings.TrimSpace(query.Get("page_size")); v != "" {
		if v == "all" {
			params.PageSize = core.PageSizeAll
		} else {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return params, fmt.Errorf("invalid page_size %q", v)
			}
			params.PageSize = n
		}
	}
	if v := strings.TrimSpace(query.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("invalid page %q", v)
		}
		params.PageIndex = n
	}

	return params, nil
}

// EntryPayload is the JSON body of create and update requests. Amount is a
// decimal string so clients never send binary floats for money.
type EntryPayload struct {
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Amount        string  `json:"amount"`
	Date          string  `json:"date"`
	Season        string  `json:"season"`
	AreaHectares  float64 `json:"area_hectares"`
	Culture       string  `json:"culture"`
	Supplier      string  `json:"supplier"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

// DecodeEntryPayload reads and decodes the request body.
func DecodeEntryPayload(r *http.Request) (EntryPayload, error) {
	var payload EntryPayload
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return EntryPayload{}, fmt.Errorf("decode entry payload: %w", err)
	}
	return payload, nil
}

// ToDraft converts the payload into a draft entry. The season defaults to the
// one derived from the entry date when the client leaves it empty; full
// validation stays with the store.
func (p EntryPayload) ToDraft() (core.CostEntry, error) {
	draft := core.CostEntry{
		Description:   sanitizeInput(p.Description),
		Category:      core.Category(strings.TrimSpace(p.Category)),
		Season:        sanitizeInput(p.Season),
		AreaHectares:  p.AreaHectares,
		Culture:       sanitizeInput(p.Culture),
		Supplier:      sanitizeInput(p.Supplier),
		PaymentMethod: sanitizeInput(p.PaymentMethod),
		Notes:         sanitizeInput(p.Notes),
	}

	if v := strings.TrimSpace(p.Amount); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.CostEntry{}, fmt.Errorf("invalid amount %q: %w", v, err)
		}
		draft.Amount = core.Money{Cents: cents}
	}

	if v := strings.TrimSpace(p.Date); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.CostEntry{}, fmt.Errorf("invalid date %q: %w", v, err)
		}
		draft.Date = d
		if draft.Season == "" {
			draft.Season = core.SeasonFor(d.Time)
		}
	}

	return draft, nil
}

// ParseIDPath extracts the numeric ID from a path like /api/entries/42.
func ParseIDPath(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.Trim(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid entry path %q", path)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", raw)
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
