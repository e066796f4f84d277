// Package usecase contains the tracking engine: the state machine that keeps
// each user at zero or one running time entry across start, edit, stop and
// delete, and derives statistics from the entry log.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"timekeeper/internal/domain"
	"timekeeper/internal/ports"
	"timekeeper/internal/repository"
	"timekeeper/internal/session"
)

// Engine orchestrates the repository and the session register. The store
// only guarantees per-key atomicity, so every multi-key sequence runs under
// a per-owner mutex; operations for different owners proceed in parallel.
type Engine struct {
	repo     *repository.Repository
	register *session.Register
	clock    ports.Clock
	log      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine wires a tracking engine.
func NewEngine(repo *repository.Repository, register *session.Register, clock ports.Clock, log *slog.Logger) *Engine {
	return &Engine{
		repo:     repo,
		register: register,
		clock:    clock,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// ownerLock returns the mutex serializing this owner's operations.
func (e *Engine) ownerLock(owner string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		e.locks[owner] = l
	}
	return l
}

// Start begins tracking against a project. If an entry is already running it
// is stopped first, with EndTime set to the call time. The sequence is:
// close the old entry durably, create the new open entry, install the
// pointer last, so at every observable point at most one entry is open.
func (e *Engine) Start(ctx context.Context, owner string, req domain.CreateTimeEntryRequest) (*domain.TimeEntry, error) {
	if req.ProjectID == "" {
		return nil, domain.NewValidationError("projectId", "project id is required")
	}

	l := e.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	if _, err := e.repo.GetProject(ctx, owner, req.ProjectID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("projectId", "unknown project "+req.ProjectID)
		}
		return nil, err
	}

	if err := e.register.ClearActive(ctx, owner); err != nil {
		return nil, err
	}

	entry, err := e.repo.CreateTimeEntry(ctx, owner, req)
	if err != nil {
		return nil, err
	}

	err = e.register.SetActive(ctx, owner, domain.ActiveSession{
		EntryID:   entry.ID,
		ProjectID: entry.ProjectID,
		StartTime: entry.StartTime,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("tracking started",
		slog.String("owner", owner),
		slog.String("entry", entry.ID),
		slog.String("project", entry.ProjectID))
	return entry, nil
}

// Stop closes the running entry and clears the pointer. Calling it while
// idle is a no-op, not an error; it returns nil in that case.
func (e *Engine) Stop(ctx context.Context, owner string) (*domain.TimeEntry, error) {
	l := e.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	active, err := e.register.GetActive(ctx, owner)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	if err := e.register.ClearActive(ctx, owner); err != nil {
		return nil, err
	}

	entry, err := e.repo.GetTimeEntry(ctx, owner, active.EntryID)
	if err != nil {
		// The pointer referenced an entry that no longer exists; the owner
		// is idle either way.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	e.log.Info("tracking stopped",
		slog.String("owner", owner),
		slog.String("entry", entry.ID))
	return entry, nil
}

// Active returns the owner's active session, nil when idle.
func (e *Engine) Active(ctx context.Context, owner string) (*domain.ActiveSession, error) {
	return e.register.GetActive(ctx, owner)
}

// EditActive mutates the running entry in place without closing it.
// A no-op when idle. Safe to call repeatedly with the same or changing
// values; the only side effect is overwriting fields.
func (e *Engine) EditActive(ctx context.Context, owner string, req domain.EditActiveRequest) (*domain.TimeEntry, error) {
	l := e.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	active, err := e.register.GetActive(ctx, owner)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	if req.ProjectID != nil {
		if _, err := e.repo.GetProject(ctx, owner, *req.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("projectId", "unknown project "+*req.ProjectID)
			}
			return nil, err
		}
	}

	entry, err := e.repo.UpdateTimeEntry(ctx, owner, active.EntryID, domain.UpdateTimeEntryRequest{
		ProjectID:   req.ProjectID,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	// Keep the pointer's project in step with the entry.
	if req.ProjectID != nil && *req.ProjectID != active.ProjectID {
		active.ProjectID = *req.ProjectID
		if err := e.register.ReplacePointer(ctx, owner, *active); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// UpdateEntry applies a partial update to any entry. When the update sets an
// EndTime on the currently running entry, the active session is cleared
// afterwards; the already-closed entry makes the clear a pure pointer
// removal.
func (e *Engine) UpdateEntry(ctx context.Context, owner, id string, req domain.UpdateTimeEntryRequest) (*domain.TimeEntry, error) {
	l := e.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	existing, err := e.repo.GetTimeEntry(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	wasRunning := existing.Running()

	entry, err := e.repo.UpdateTimeEntry(ctx, owner, id, req)
	if err != nil {
		return nil, err
	}

	if req.EndTime != nil && wasRunning {
		if err := e.register.ClearActive(ctx, owner); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Delete removes an entry. Deleting the running entry applies stop
// semantics first, so no dangling pointer survives the row.
func (e *Engine) Delete(ctx context.Context, owner, id string) error {
	l := e.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	active, err := e.register.GetActive(ctx, owner)
	if err != nil {
		return err
	}
	if active != nil && active.EntryID == id {
		if err := e.register.ClearActive(ctx, owner); err != nil {
			return err
		}
	}
	return e.repo.DeleteTimeEntry(ctx, owner, id)
}
