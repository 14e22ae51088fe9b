// Package http provides the JSON API over the cost ledger.
//
// This file implements response encoding: entry and report DTOs plus the
// error mapping from domain errors to status codes.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"custos/internal/core"
	"custos/internal/report"
)

// EntryDTO is the wire form of a cost entry. Amounts travel both as cents
// and pre-formatted BRL so clients never do money math.
type EntryDTO struct {
	ID              int64   `json:"id"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	CategoryDisplay string  `json:"category_display"`
	AmountCents     int64   `json:"amount_cents"`
	AmountDisplay   string  `json:"amount_display"`
	Date            string  `json:"date"`
	Season          string  `json:"season"`
	AreaHectares    float64 `json:"area_hectares"`
	CostPerHectare  float64 `json:"cost_per_hectare"`
	Culture         string  `json:"culture"`
	Supplier        string  `json:"supplier,omitempty"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func toEntryDTO(e core.CostEntry) EntryDTO {
	return EntryDTO{
		ID:              e.ID,
		Description:     e.Description,
		Category:        string(e.Category),
		CategoryDisplay: e.Category.DisplayName(),
		AmountCents:     e.Amount.Cents,
		AmountDisplay:   e.Amount.FormatBRL(),
		Date:            e.Date.ISO(),
		Season:          e.Season,
		AreaHectares:    e.AreaHectares,
		CostPerHectare:  e.CostPerHectare(),
		Culture:         e.CultureOrDefault(),
		Supplier:        e.Supplier,
		PaymentMethod:   e.PaymentMethod,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toEntryDTOs(entries []core.CostEntry) []EntryDTO {
	out := make([]EntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toEntryDTO(e)
	}
	return out
}

// PageDTO wraps one page of entries with its window metadata.
type PageDTO struct {
	Items      []EntryDTO `json:"items"`
	StartIndex int        `json:"start_index"`
	EndIndex   int        `json:"end_index"`
	TotalItems int        `json:"total_items"`
	TotalPages int        `json:"total_pages"`
	Page       int        `json:"page"`
}

func toPageDTO(p core.Page, pageIndex int) PageDTO {
	return PageDTO{
		Items:      toEntryDTOs(p.Items),
		StartIndex: p.StartIndex,
		EndIndex:   p.EndIndex,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		Page:       pageIndex,
	}
}

type categoryRowDTO struct {
	Category     string  `json:"category"`
	DisplayName  string  `json:"display_name"`
	TotalCents   int64   `json:"total_cents"`
	TotalDisplay string  `json:"total_display"`
	Count        int     `json:"count"`
	Percent      float64 `json:"percent"`
}

func toCategoryRows(rows []report.CategoryRow) []categoryRowDTO {
	out := make([]categoryRowDTO, len(rows))
	for i, r := range rows {
		out[i] = categoryRowDTO{
			Category:     string(r.Category),
			DisplayName:  r.DisplayName,
			TotalCents:   r.Total.Cents,
			TotalDisplay: r.Total.FormatBRL(),
			Count:        r.Count,
			Percent:      r.Percent,
		}
	}
	return out
}

type cultureRowDTO struct {
	Culture          string  `json:"culture"`
	TotalCents       int64   `json:"total_cents"`
	TotalDisplay     string  `json:"total_display"`
	Count            int     `json:"count"`
	AveragePerRecord float64 `json:"average_per_record"`
}

func toCultureRows(rows []report.CultureRow) []cultureRowDTO {
	out := make([]cultureRowDTO, len(rows))
	for i, r := range rows {
		out[i] = cultureRowDTO{
			Culture:          r.Culture,
			TotalCents:       r.Total.Cents,
			TotalDisplay:     r.Total.FormatBRL(),
			Count:            r.Count,
			AveragePerRecord: r.AveragePerRecord,
		}
	}
	return out
}

type monthRowDTO struct {
	Month        string  `json:"month"`
	TotalCents   int64   `json:"total_cents"`
	TotalDisplay string  `json:"total_display"`
	Count        int     `json:"count"`
	DailyAverage float64 `json:"daily_average"`
}

func toMonthRows(rows []report.MonthRow) []monthRowDTO {
	out := make([]monthRowDTO, len(rows))
	for i, r := range rows {
		out[i] = monthRowDTO{
			Month:        r.Month,
			TotalCents:   r.Total.Cents,
			TotalDisplay: r.Total.FormatBRL(),
			Count:        r.Count,
			DailyAverage: r.DailyAverage,
		}
	}
	return out
}

type seasonRowDTO struct {
	Season       string `json:"season"`
	TotalCents   int64  `json:"total_cents"`
	TotalDisplay string `json:"total_display"`
	Count        int    `json:"count"`
}

func toSeasonRows(rows []report.SeasonRow) []seasonRowDTO {
	out := make([]seasonRowDTO, len(rows))
	for i, r := range rows {
		out[i] = seasonRowDTO{
			Season:       r.Season,
			TotalCents:   r.Total.Cents,
			TotalDisplay: r.Total.FormatBRL(),
			Count:        r.Count,
		}
	}
	return out
}

type trendPointDTO struct {
	Month           string  `json:"month"`
	TotalCents      int64   `json:"total_cents"`
	Count           int     `json:"count"`
	AveragePerEntry float64 `json:"average_per_entry"`
	Direction       string  `json:"direction"`
}

func toTrendPoints(points []core.TrendPoint) []trendPointDTO {
	out := make([]trendPointDTO, len(points))
	for i, p := range points {
		out[i] = trendPointDTO{
			Month:           p.Month,
			TotalCents:      p.Total.Cents,
			Count:           p.Count,
			AveragePerEntry: p.AveragePerEntry,
			Direction:       p.Direction.String(),
		}
	}
	return out
}

type financialDTO struct {
	TotalCents     int64      `json:"total_cents"`
	TotalDisplay   string     `json:"total_display"`
	Count          int        `json:"count"`
	Average        float64    `json:"average"`
	CostPerHectare float64    `json:"cost_per_hectare"`
	TopCosts       []EntryDTO `json:"top_costs"`
}

func toFinancialDTO(s report.FinancialSummary) financialDTO {
	return financialDTO{
		TotalCents:     s.Total.Cents,
		TotalDisplay:   s.Total.FormatBRL(),
		Count:          s.Count,
		Average:        s.Average,
		CostPerHectare: s.CostPerHectare,
		TopCosts:       toEntryDTOs(s.TopCosts),
	}
}

type profileDTO struct {
	Name         string  `json:"name"`
	Owner        string  `json:"owner"`
	Location     string  `json:"location"`
	SizeHectares float64 `json:"size_hectares"`
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, fields ...string) {
	writeJSON(w, status, errorBody{Error: message, Fields: fields})
}

// writeDomainError maps domain errors onto status codes: validation 422,
// not found 404, page out of range 400, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, verr.Error(), verr.Fields...)
		return
	}

	var nferr *core.NotFoundError
	if errors.As(err, &nferr) {
		writeError(w, http.StatusNotFound, nferr.Error())
		return
	}

	if errors.Is(err, core.ErrPageOutOfRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeError(w, http.StatusInternalServerError, "internal error")
}
