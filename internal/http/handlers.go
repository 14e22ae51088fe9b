package http

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"custos/internal/core"
	"custos/internal/report"
)

// handleEntries serves the collection: GET lists through the derived-view
// pipeline, POST creates, DELETE clears (with explicit confirmation).
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListEntries(w, r)
	case http.MethodPost:
		s.handleCreateEntry(w, r)
	case http.MethodDelete:
		s.handleClearEntries(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := s.ledger.Store().All()
	filtered := core.Filter(entries, params.Query)
	sorted := core.Sort(filtered, params.Sort)

	// A filter change can leave the requested page past the end; clamp
	// instead of erroring so the client never sees an empty flash.
	pageIndex := core.ClampPageIndex(len(sorted), params.PageSize, params.PageIndex)
	page, err := core.Paginate(sorted, params.PageSize, pageIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageDTO(page, pageIndex))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	payload, err := DecodeEntryPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := payload.ToDraft()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.ledger.CreateEntry(r.Context(), draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(created))
}

func (s *Server) handleClearEntries(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "clearing all entries requires confirm=true")
		return
	}

	if err := s.ledger.ClearEntries(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": 0})
}

// handleEntryByID serves /api/entries/{id}: GET, PUT, DELETE.
func (s *Server) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDPath(r.URL.Path, "/api/entries/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		entry, err := s.ledger.Store().Get(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryDTO(entry))

	case http.MethodPut:
		payload, err := DecodeEntryPayload(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		draft, err := payload.ToDraft()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		updated, err := s.ledger.UpdateEntry(r.Context(), id, draft)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryDTO(updated))

	case http.MethodDelete:
		if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "decode bulk delete payload: "+err.Error())
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "no entry IDs given")
		return
	}

	removed, err := s.ledger.DeleteEntries(r.Context(), body.IDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleExport streams the filtered and sorted sequence as CSV, without
// pagination.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	params, err := ParseListParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := core.Sort(core.Filter(s.ledger.Store().All(), params.Query), params.Sort)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="custos.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"ID", "Data", "Descrição", "Categoria", "Valor (R$)",
		"Safra", "Área (ha)", "Cultura", "Fornecedor", "Pagamento", "Observações"})
	for _, e := range entries {
		_ = cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Date.ISO(),
			e.Description,
			e.Category.DisplayName(),
			strconv.FormatFloat(e.Amount.Reais(), 'f', 2, 64),
			e.Season,
			strconv.FormatFloat(e.AreaHectares, 'f', -1, 64),
			e.CultureOrDefault(),
			e.Supplier,
			e.PaymentMethod,
			e.Notes,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"seasons": s.ledger.Store().Seasons(),
		"current": core.CurrentSeason(s.now()),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type categoryDTO struct {
		Code        string `json:"code"`
		DisplayName string `json:"display_name"`
	}
	var out []categoryDTO
	for _, c := range core.Categories() {
		out = append(out, categoryDTO{Code: string(c), DisplayName: c.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

// DashboardDTO is the aggregate summary view: headline numbers computed over
// the full, unfiltered collection.
type DashboardDTO struct {
	TotalCents         int64         `json:"total_cents"`
	TotalDisplay       string        `json:"total_display"`
	Count              int           `json:"count"`
	NewThisWeek        int           `json:"new_this_week"`
	CostPerHectare     float64       `json:"cost_per_hectare"`
	MonthlyAverage     float64       `json:"monthly_average"`
	HighestCost        *EntryDTO     `json:"highest_cost"`
	CurrentSeason      string        `json:"current_season"`
	SeasonTotalCents   int64         `json:"season_total_cents"`
	SeasonTotalDisplay string        `json:"season_total_display"`
	MonthDelta         monthDeltaDTO `json:"month_delta"`
}

type monthDeltaDTO struct {
	Percent     float64 `json:"percent"`
	HasBaseline bool    `json:"has_baseline"`
	Rising      bool    `json:"rising"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.serveCached(w, r, "dashboard", func() (any, error) {
		return s.buildDashboard(), nil
	})
}

func (s *Server) buildDashboard() DashboardDTO {
	entries := s.ledger.Store().All()
	profile := s.ledger.Store().Profile()
	now := s.now()

	total, count := core.TotalAndCount(entries)
	dto := DashboardDTO{
		TotalCents:     total.Cents,
		TotalDisplay:   total.FormatBRL(),
		Count:          count,
		CostPerHectare: core.CostPerHectare(total, profile.SizeHectares),
		MonthlyAverage: core.MonthlyAverage(entries),
		CurrentSeason:  core.CurrentSeason(now),
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, e := range entries {
		if e.CreatedAt.After(weekAgo) {
			dto.NewThisWeek++
		}
	}

	if ext, ok := core.AmountExtrema(entries); ok {
		highest := toEntryDTO(ext.Max)
		dto.HighestCost = &highest
	}

	seasonTotal := core.SumBySeason(entries)[dto.CurrentSeason]
	dto.SeasonTotalCents = seasonTotal.Total.Cents
	dto.SeasonTotalDisplay = seasonTotal.Total.FormatBRL()

	months := core.SumByMonth(entries)
	currentKey := now.Format("2006-01")
	previousKey := now.AddDate(0, -1, 0).Format("2006-01")
	delta := core.PeriodDelta(months[currentKey].Total, months[previousKey].Total)
	dto.MonthDelta = monthDeltaDTO{
		Percent:     delta.Percent,
		HasBaseline: delta.HasBaseline,
		Rising:      delta.Rising,
	}

	return dto
}

// handleReports serves /api/reports/{name} from the report composer.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/reports/"), "/")
	build, ok := s.reportBuilder(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown report %q", name))
		return
	}

	s.serveCached(w, r, "report:"+name, build)
}

func (s *Server) reportBuilder(name string) (func() (any, error), bool) {
	entries := func() []core.CostEntry { return s.ledger.Store().All() }

	switch name {
	case "categories":
		return func() (any, error) { return toCategoryRows(report.CategoryBreakdown(entries())), nil }, true
	case "cultures":
		return func() (any, error) { return toCultureRows(report.CultureBreakdown(entries())), nil }, true
	case "months":
		return func() (any, error) { return toMonthRows(report.MonthlyEvolution(entries())), nil }, true
	case "seasons":
		return func() (any, error) { return toSeasonRows(report.SeasonComparison(entries())), nil }, true
	case "financial":
		return func() (any, error) {
			size := s.ledger.Store().Profile().SizeHectares
			return toFinancialDTO(report.Financial(entries(), size)), nil
		}, true
	case "trend":
		return func() (any, error) { return toTrendPoints(report.Trend(entries())), nil }, true
	}
	return nil, false
}

// serveCached serves a derived view from the revision-keyed cache, building
// and storing it on a miss.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, name string, build func() (any, error)) {
	key := fmt.Sprintf("%s@%d", name, s.ledger.Store().Revision())

	if body, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Derived view cache hit", "key", key)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	view, err := build()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, err := json.Marshal(view)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode derived view", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.reportCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p := s.ledger.Store().Profile()
		writeJSON(w, http.StatusOK, profileDTO{
			Name:         p.Name,
			Owner:        p.Owner,
			Location:     p.Location,
			SizeHectares: p.SizeHectares,
		})

	case http.MethodPut:
		var payload profileDTO
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "decode profile payload: "+err.Error())
			return
		}
		if payload.SizeHectares < 0 {
			writeError(w, http.StatusUnprocessableEntity, "farm size cannot be negative")
			return
		}

		profile := core.FarmProfile{
			Name:         sanitizeInput(payload.Name),
			Owner:        sanitizeInput(payload.Owner),
			Location:     sanitizeInput(payload.Location),
			SizeHectares: payload.SizeHectares,
		}
		if err := s.ledger.Store().SetProfile(r.Context(), profile); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
