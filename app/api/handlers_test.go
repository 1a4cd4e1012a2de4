package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lysyi3m/zot-comb/app/database"
	"github.com/lysyi3m/zot-comb/app/tasks"
)

type fakeRuns struct {
	run *database.Run
}

func (f *fakeRuns) StartRun(string) (string, error)            { return "run1", nil }
func (f *fakeRuns) FinishRun(string, database.RunStats) error { return nil }
func (f *fakeRuns) GetRun(id string) (*database.Run, error) {
	if f.run != nil && f.run.ID == id {
		return f.run, nil
	}
	return nil, nil
}

type fakeChanges struct {
	changes   []database.Change
	lastLimit int
}

func (f *fakeChanges) RecordChange(database.Change) error { return nil }

func (f *fakeChanges) RecentChanges(limit int) ([]database.Change, error) {
	f.lastLimit = limit
	if limit > len(f.changes) {
		limit = len(f.changes)
	}
	return f.changes[:limit], nil
}

func (f *fakeChanges) ChangesForRun(string) ([]database.Change, error) { return f.changes, nil }

type fakeDomains struct{ count int }

func (f *fakeDomains) Contains(string) bool                 { return false }
func (f *fakeDomains) Add(string, string) error             { return nil }
func (f *fakeDomains) All() ([]database.KnownDomain, error) { return nil, nil }
func (f *fakeDomains) Count() (int, error)                  { return f.count, nil }

func testServer(apiKey string) (*fakeChanges, http.Handler) {
	changes := &fakeChanges{changes: []database.Change{
		{ItemKey: "AAAA1111", WebsiteType: "Substack Newsletter", Title: "Post one", Applied: true},
		{ItemKey: "BBBB2222", WebsiteType: "LinkedIn", Title: "Post two", Applied: false},
	}}
	runs := &fakeRuns{run: &database.Run{ID: "run1", Mode: "stream", Processed: 10}}
	handler := NewHandler(runs, changes, &fakeDomains{count: 3}, tasks.NewStats(), "run1")
	return changes, NewServer(handler, apiKey)
}

func getJSON(t *testing.T, server http.Handler, path string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Invalid JSON response for %s: %v", path, err)
		}
	}
	return w.Code, body
}

func TestHealthEndpoint(t *testing.T) {
	_, server := testServer("")

	code, body := getJSON(t, server, "/health", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if body["known_domains"] != float64(3) {
		t.Errorf("Expected 3 known domains, got %v", body["known_domains"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, server := testServer("")

	code, body := getJSON(t, server, "/stats", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	for _, field := range []string{"processed", "substack_found", "linkedin_found", "urls_cleaned", "updated", "errors"} {
		if _, ok := body[field]; !ok {
			t.Errorf("Stats response missing %q", field)
		}
	}
}

func TestChangesEndpoint(t *testing.T) {
	changes, server := testServer("")

	code, body := getJSON(t, server, "/changes?limit=1", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if changes.lastLimit != 1 {
		t.Errorf("Limit parameter not passed through, got %d", changes.lastLimit)
	}
	if body["total"] != float64(1) {
		t.Errorf("Expected 1 change, got %v", body["total"])
	}

	code, _ = getJSON(t, server, "/changes?limit=bogus", nil)
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", code)
	}
}

func TestRunEndpoint(t *testing.T) {
	_, server := testServer("")

	code, body := getJSON(t, server, "/runs/run1", nil)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	run, ok := body["run"].(map[string]interface{})
	if !ok || run["processed"] != float64(10) {
		t.Errorf("Unexpected run payload: %v", body["run"])
	}

	code, _ = getJSON(t, server, "/runs/unknown", nil)
	if code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown run, got %d", code)
	}
}

func TestChangesAuthentication(t *testing.T) {
	_, server := testServer("secret")

	code, _ := getJSON(t, server, "/changes", nil)
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", code)
	}

	code, _ = getJSON(t, server, "/changes", map[string]string{"X-API-Key": "wrong"})
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong key, got %d", code)
	}

	code, _ = getJSON(t, server, "/changes", map[string]string{"X-API-Key": "secret"})
	if code != http.StatusOK {
		t.Errorf("Expected 200 with valid key, got %d", code)
	}

	code, _ = getJSON(t, server, "/changes", map[string]string{"Authorization": "Bearer secret"})
	if code != http.StatusOK {
		t.Errorf("Expected 200 with bearer token, got %d", code)
	}

	// Health stays public
	code, _ = getJSON(t, server, "/health", nil)
	if code != http.StatusOK {
		t.Errorf("Health must stay public, got %d", code)
	}
}
