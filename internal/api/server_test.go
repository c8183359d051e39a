package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"matinee/internal/api"
	"matinee/internal/catalog"
	"matinee/internal/library"
	"matinee/internal/logging"
	"matinee/internal/testsupport"
)

func newTestServer(t *testing.T) (http.Handler, *catalog.Entry) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	entry := testsupport.SeedEntry(t, store, catalog.Candidate{
		ExternalKey: "tt1375666",
		Title:       "Inception",
		Year:        2010,
		Director:    "Christopher Nolan",
		Rating:      8.8,
	})
	testsupport.SeedEntry(t, store, catalog.Candidate{
		ExternalKey: "tt0137523",
		Title:       "Fight Club",
		Year:        1999,
	})

	service := library.New(store, logging.NewNop())
	server := api.New("127.0.0.1:0", service, store, logging.NewNop())
	return server.Handler(), entry
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status  string `json:"status"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if body.Status != "ok" || body.Entries != 2 {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/search?q=nolan")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var views []struct {
		Title  string  `json:"title"`
		Rating float64 `json:"rating"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if len(views) != 1 || views[0].Title != "Inception" || views[0].Rating != 8.8 {
		t.Fatalf("unexpected search results: %+v", views)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/search")
	var all []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected whole catalog without q, got %d results", len(all))
	}
}

func TestEntryEndpoint(t *testing.T) {
	handler, entry := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, fmt.Sprintf("/api/entries/%d", entry.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var view struct {
		ID          int64  `json:"id"`
		ExternalKey string `json:"externalKey"`
		SyncState   string `json:"syncState"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode entry response: %v", err)
	}
	if view.ID != entry.ID || view.ExternalKey != "tt1375666" || view.SyncState != "synced" {
		t.Fatalf("unexpected entry view: %+v", view)
	}

	if rec := doRequest(t, handler, http.MethodGet, "/api/entries/99999"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
	if rec := doRequest(t, handler, http.MethodGet, "/api/entries/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestWatchedEndpoint(t *testing.T) {
	handler, entry := newTestServer(t)

	target := fmt.Sprintf("/api/entries/%d/watched", entry.ID)
	if rec := doRequest(t, handler, http.MethodPost, target); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec := doRequest(t, handler, http.MethodGet, fmt.Sprintf("/api/entries/%d", entry.ID))
	var view struct {
		WatchCount int `json:"watchCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode entry response: %v", err)
	}
	if view.WatchCount != 1 {
		t.Fatalf("expected watch count 1, got %d", view.WatchCount)
	}

	if rec := doRequest(t, handler, http.MethodPost, "/api/entries/99999/watched"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}
