package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"custos/internal/core"
	"custos/internal/ledger"
	"custos/internal/services"
)

type memPersister struct {
	entries []core.CostEntry
	profile core.FarmProfile
}

func (m *memPersister) LoadEntries(context.Context) ([]core.CostEntry, error) {
	return m.entries, nil
}

func (m *memPersister) SaveEntries(_ context.Context, entries []core.CostEntry) error {
	m.entries = append([]core.CostEntry{}, entries...)
	return nil
}

func (m *memPersister) LoadProfile(context.Context) (core.FarmProfile, error) {
	return m.profile, nil
}

func (m *memPersister) SaveProfile(_ context.Context, p core.FarmProfile) error {
	m.profile = p
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := ledger.NewStore(context.Background(), &memPersister{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s := NewServer(":0", services.NewLedgerService(store, nil), 50, time.Minute)
	s.now = func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doJSON(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func createEntry(t *testing.T, s *Server, body string) EntryDTO {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/entries", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var dto EntryDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return dto
}

const seedEntry = `{
	"description": "Sementes de soja",
	"category": "sementes",
	"amount": "1250,00",
	"date": "2025-03-10",
	"area_hectares": 25,
	"culture": "soja"
}`

func TestCreateEntry(t *testing.T) {
	s := newTestServer(t)

	dto := createEntry(t, s, seedEntry)
	if dto.ID != 1 {
		t.Fatalf("ID = %d", dto.ID)
	}
	if dto.AmountCents != 125000 || dto.AmountDisplay != "R$ 1.250,00" {
		t.Fatalf("amount = %d / %q", dto.AmountCents, dto.AmountDisplay)
	}
	// Season derived from the March date: previous September's cycle
	if dto.Season != "2024/2025" {
		t.Fatalf("derived season = %q", dto.Season)
	}
	if dto.CostPerHectare != 50 {
		t.Fatalf("cost per hectare = %v", dto.CostPerHectare)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/entries", `{"description": "  "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	want := []string{"description", "category", "amount", "date", "season"}
	if strings.Join(body.Fields, ",") != strings.Join(want, ",") {
		t.Fatalf("fields = %v, want %v", body.Fields, want)
	}
}

func TestListEntriesPipeline(t *testing.T) {
	s := newTestServer(t)

	createEntry(t, s, seedEntry)
	createEntry(t, s, `{"description":"Adubo","category":"fertilizantes","amount":"500,00","date":"2025-02-01","culture":"soja"}`)
	createEntry(t, s, `{"description":"Diesel","category":"combustivel","amount":"2000,00","date":"2025-01-20","culture":"milho"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/entries?culture=soja&sort=amount&dir=desc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var page PageDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalItems != 2 || len(page.Items) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Items[0].Description != "Sementes de soja" || page.Items[1].Description != "Adubo" {
		t.Fatalf("order: %q then %q", page.Items[0].Description, page.Items[1].Description)
	}
}

func TestListEntriesClampsPage(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)

	rec := doJSON(t, s, http.MethodGet, "/api/entries?page=99", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page PageDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Page != 1 || len(page.Items) != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestListEntriesRejectsBadParams(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/api/entries?category=nope",
		"/api/entries?sort=nope",
		"/api/entries?dir=sideways",
		"/api/entries?page_size=-1",
		"/api/entries?date_from=10-03-2025",
	} {
		if rec := doJSON(t, s, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestGetUpdateDeleteEntry(t *testing.T) {
	s := newTestServer(t)
	created := createEntry(t, s, seedEntry)

	rec := doJSON(t, s, http.MethodGet, "/api/entries/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/entries/1",
		`{"description":"Sementes certificadas","category":"sementes","amount":"1500,00","date":"2025-03-10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated EntryDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if updated.ID != created.ID || updated.AmountCents != 150000 {
		t.Fatalf("updated = %+v", updated)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/entries/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/entries/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestEntryByIDBadPath(t *testing.T) {
	s := newTestServer(t)
	if rec := doJSON(t, s, http.MethodGet, "/api/entries/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBulkDelete(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)
	createEntry(t, s, seedEntry)
	createEntry(t, s, seedEntry)

	rec := doJSON(t, s, http.MethodPost, "/api/entries/bulk-delete", `{"ids":[1,3,99]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["removed"] != 2 {
		t.Fatalf("removed = %d", body["removed"])
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)

	if rec := doJSON(t, s, http.MethodDelete, "/api/entries", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed clear status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/entries?confirm=true", ""); rec.Code != http.StatusOK {
		t.Fatalf("confirmed clear status = %d", rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/entries", "")
	var page PageDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalItems != 0 || page.TotalPages != 1 {
		t.Fatalf("page after clear = %+v", page)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)
	createEntry(t, s, `{"description":"Diesel","category":"combustivel","amount":"2000,00","date":"2025-03-02","culture":"milho"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var dash DashboardDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.TotalCents != 325000 || dash.Count != 2 {
		t.Fatalf("dashboard = %+v", dash)
	}
	if dash.CurrentSeason != "2024/2025" {
		t.Fatalf("current season = %q", dash.CurrentSeason)
	}
	if dash.SeasonTotalCents != 325000 {
		t.Fatalf("season total = %d", dash.SeasonTotalCents)
	}
	if dash.HighestCost == nil || dash.HighestCost.Description != "Diesel" {
		t.Fatalf("highest cost = %+v", dash.HighestCost)
	}
	if dash.NewThisWeek != 2 {
		t.Fatalf("new this week = %d", dash.NewThisWeek)
	}
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)
	createEntry(t, s, `{"description":"Diesel","category":"combustivel","amount":"2000,00","date":"2025-01-20"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/reports/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []categoryRowDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 || rows[0].Category != "combustivel" {
		t.Fatalf("rows = %+v", rows)
	}

	for _, name := range []string{"cultures", "months", "seasons", "financial", "trend"} {
		if rec := doJSON(t, s, http.MethodGet, "/api/reports/"+name, ""); rec.Code != http.StatusOK {
			t.Fatalf("report %s status = %d", name, rec.Code)
		}
	}

	if rec := doJSON(t, s, http.MethodGet, "/api/reports/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown report status = %d", rec.Code)
	}
}

func TestReportCacheServesFreshDataAfterMutation(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)

	first := doJSON(t, s, http.MethodGet, "/api/reports/categories", "")
	// Warm hit under the same revision
	second := doJSON(t, s, http.MethodGet, "/api/reports/categories", "")
	if first.Body.String() != second.Body.String() {
		t.Fatalf("cached response differs")
	}

	createEntry(t, s, `{"description":"Diesel","category":"combustivel","amount":"2000,00","date":"2025-01-20"}`)

	third := doJSON(t, s, http.MethodGet, "/api/reports/categories", "")
	var rows []categoryRowDTO
	if err := json.Unmarshal(third.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("mutation not visible through the cache: %+v", rows)
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)

	rec := doJSON(t, s, http.MethodGet, "/api/entries/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Sementes de soja") || !strings.Contains(body, "1250.00") {
		t.Fatalf("csv body = %q", body)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/profile",
		`{"name":"Fazenda Boa Vista","owner":"Helena","location":"Sorriso/MT","size_hectares":320}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/profile", "")
	var p profileDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if p.Name != "Fazenda Boa Vista" || p.SizeHectares != 320 {
		t.Fatalf("profile = %+v", p)
	}

	if rec := doJSON(t, s, http.MethodPut, "/api/profile", `{"size_hectares":-5}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative size status = %d", rec.Code)
	}
}

func TestSeasons(t *testing.T) {
	s := newTestServer(t)
	createEntry(t, s, seedEntry)

	rec := doJSON(t, s, http.MethodGet, "/api/seasons", "")
	var body struct {
		Seasons []string `json:"seasons"`
		Current string   `json:"current"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Current != "2024/2025" {
		t.Fatalf("current = %q", body.Current)
	}
	if len(body.Seasons) != 1 || body.Seasons[0] != "2024/2025" {
		t.Fatalf("seasons = %v", body.Seasons)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{"/healthz", "/readyz"} {
		if rec := doJSON(t, s, http.MethodGet, target, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
	}
}
