package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"timekeeper/internal/domain"
)

// ownerHeader names the header carrying the opaque owner identifier.
// Resolving a real identity to this value is the front door's concern.
const ownerHeader = "X-User-ID"

// HTTPServer returns a configured http.Server exposing the core engine as a
// small JSON API. Call ListenAndServe on the returned server in a goroutine
// and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/projects", a.withOwner(a.handleListProjects))
	mux.HandleFunc("POST /api/projects", a.withOwner(a.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", a.withOwner(a.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", a.withOwner(a.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", a.withOwner(a.handleDeleteProject))

	mux.HandleFunc("GET /api/time-entries", a.withOwner(a.handleListEntries))
	mux.HandleFunc("POST /api/time-entries", a.withOwner(a.handleStartEntry))
	mux.HandleFunc("GET /api/time-entries/{id}", a.withOwner(a.handleGetEntry))
	mux.HandleFunc("PUT /api/time-entries/{id}", a.withOwner(a.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/time-entries/{id}", a.withOwner(a.handleDeleteEntry))

	mux.HandleFunc("GET /api/tracking", a.withOwner(a.handleActiveSession))
	mux.HandleFunc("POST /api/tracking/stop", a.withOwner(a.handleStopTracking))
	mux.HandleFunc("PUT /api/tracking", a.withOwner(a.handleEditActive))

	mux.HandleFunc("GET /api/timeline", a.withOwner(a.handleTimeline))
	mux.HandleFunc("GET /api/stats", a.withOwner(a.handleStats))

	srv := &http.Server{Addr: addr, Handler: loggingMiddleware(a.log, mux)}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// withOwner resolves the owner id from the request header. The API refuses
// requests that carry no identity.
func (a *App) withOwner(next func(w http.ResponseWriter, r *http.Request, owner string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(ownerHeader)
		if owner == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "missing " + ownerHeader + " header"})
			return
		}
		next(w, r, owner)
	}
}

func (a *App) handleListProjects(w http.ResponseWriter, r *http.Request, owner string) {
	projects, err := a.engine.ProjectsWithStats(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *App) handleCreateProject(w http.ResponseWriter, r *http.Request, owner string) {
	var req domain.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	p, err := a.repo.CreateProject(r.Context(), owner, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) handleGetProject(w http.ResponseWriter, r *http.Request, owner string) {
	p, err := a.repo.GetProject(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) handleUpdateProject(w http.ResponseWriter, r *http.Request, owner string) {
	var req domain.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	p, err := a.repo.UpdateProject(r.Context(), owner, r.PathValue("id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) handleDeleteProject(w http.ResponseWriter, r *http.Request, owner string) {
	if err := a.repo.DeleteProject(r.Context(), owner, r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) handleListEntries(w http.ResponseWriter, r *http.Request, owner string) {
	entries, err := a.repo.ListTimeEntriesWithProject(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleStartEntry creates a time entry via the tracking engine: any running
// entry is stopped first and the new one becomes the active session.
func (a *App) handleStartEntry(w http.ResponseWriter, r *http.Request, owner string) {
	var req domain.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	entry, err := a.engine.Start(r.Context(), owner, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *App) handleGetEntry(w http.ResponseWriter, r *http.Request, owner string) {
	entry, err := a.repo.GetTimeEntry(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *App) handleUpdateEntry(w http.ResponseWriter, r *http.Request, owner string) {
	var req domain.UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	entry, err := a.engine.UpdateEntry(r.Context(), owner, r.PathValue("id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (a *App) handleDeleteEntry(w http.ResponseWriter, r *http.Request, owner string) {
	if err := a.engine.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) handleActiveSession(w http.ResponseWriter, r *http.Request, owner string) {
	active, err := a.engine.Active(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activeSession": active})
}

func (a *App) handleStopTracking(w http.ResponseWriter, r *http.Request, owner string) {
	entry, err := a.engine.Stop(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

func (a *App) handleEditActive(w http.ResponseWriter, r *http.Request, owner string) {
	var req domain.EditActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}
	entry, err := a.engine.EditActive(r.Context(), owner, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

// handleTimeline serves the day view. ?date=YYYY-MM-DD, default today.
func (a *App) handleTimeline(w http.ResponseWriter, r *http.Request, owner string) {
	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = d
	}
	summary, err := a.engine.Day(r.Context(), owner, day)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request, owner string) {
	today, err := a.engine.TotalToday(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	week, err := a.engine.TotalThisWeek(r.Context(), owner)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"today": today, "week": week})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Storage
// failures surface as 500 without detail leaking to the client.
func (a *App) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	default:
		a.log.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
