package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"timekeeper/internal/adapter/memory"
	"timekeeper/internal/domain"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewWithStore(log, memory.NewStore())
	t.Cleanup(func() { a.Close() })

	srv := httptest.NewServer(a.HTTPServer(":0").Handler)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, owner string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s %s: %v", method, path, err)
		}
	}
	return resp
}

func TestAPI_RequiresOwnerHeader(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/projects", "", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestHealthz_NeedsNoOwner(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPI_TrackingFlow(t *testing.T) {
	srv := newTestServer(t)

	var project domain.Project
	resp := doJSON(t, srv, http.MethodPost, "/api/projects", "alice",
		domain.CreateProjectRequest{Name: "Writing"}, &project)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create project: %d", resp.StatusCode)
	}
	if project.ID == "" || project.Color == "" {
		t.Fatalf("unexpected project %+v", project)
	}

	var entry domain.TimeEntry
	resp = doJSON(t, srv, http.MethodPost, "/api/time-entries", "alice",
		domain.CreateTimeEntryRequest{ProjectID: project.ID, Description: "draft"}, &entry)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start entry: %d", resp.StatusCode)
	}
	if entry.EndTime != nil {
		t.Fatal("expected running entry")
	}

	var tracking struct {
		ActiveSession *domain.ActiveSession `json:"activeSession"`
	}
	doJSON(t, srv, http.MethodGet, "/api/tracking", "alice", nil, &tracking)
	if tracking.ActiveSession == nil || tracking.ActiveSession.EntryID != entry.ID {
		t.Fatalf("unexpected active session %+v", tracking.ActiveSession)
	}

	var stopped struct {
		Success bool              `json:"success"`
		Entry   *domain.TimeEntry `json:"entry"`
	}
	resp = doJSON(t, srv, http.MethodPost, "/api/tracking/stop", "alice", nil, &stopped)
	if resp.StatusCode != http.StatusOK || !stopped.Success {
		t.Fatalf("stop: %d %+v", resp.StatusCode, stopped)
	}
	if stopped.Entry == nil || stopped.Entry.EndTime == nil {
		t.Fatalf("expected closed entry, got %+v", stopped.Entry)
	}

	// Stopping while idle still succeeds, with no entry.
	doJSON(t, srv, http.MethodPost, "/api/tracking/stop", "alice", nil, &stopped)
	if !stopped.Success || stopped.Entry != nil {
		t.Errorf("idle stop: %+v", stopped)
	}
}

func TestAPI_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	// Validation: empty project name.
	resp := doJSON(t, srv, http.MethodPost, "/api/projects", "alice",
		domain.CreateProjectRequest{Name: "  "}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	// Not found: unknown project id.
	resp = doJSON(t, srv, http.MethodGet, "/api/projects/nope", "alice", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	// Starting against an unknown project is a validation failure.
	resp = doJSON(t, srv, http.MethodPost, "/api/time-entries", "alice",
		domain.CreateTimeEntryRequest{ProjectID: "nope"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	// Conflict: deleting a project that has entries.
	var project domain.Project
	doJSON(t, srv, http.MethodPost, "/api/projects", "alice",
		domain.CreateProjectRequest{Name: "Busy"}, &project)
	doJSON(t, srv, http.MethodPost, "/api/time-entries", "alice",
		domain.CreateTimeEntryRequest{ProjectID: project.ID}, nil)
	resp = doJSON(t, srv, http.MethodDelete, "/api/projects/"+project.ID, "alice", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestAPI_OwnersAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	var project domain.Project
	doJSON(t, srv, http.MethodPost, "/api/projects", "alice",
		domain.CreateProjectRequest{Name: "Private"}, &project)

	resp := doJSON(t, srv, http.MethodGet, "/api/projects/"+project.ID, "bob", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for another owner's project, got %d", resp.StatusCode)
	}

	var list []domain.ProjectWithStats
	doJSON(t, srv, http.MethodGet, "/api/projects", "bob", nil, &list)
	if len(list) != 0 {
		t.Errorf("expected empty list for bob, got %d", len(list))
	}
}

func TestAPI_TimelineRejectsBadDate(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodGet, "/api/timeline?date=20-08-2025", "alice", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}

	var summary map[string]any
	resp = doJSON(t, srv, http.MethodGet, "/api/timeline?date=2025-08-20", "alice", nil, &summary)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
