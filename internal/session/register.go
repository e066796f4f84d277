// Package session tracks which single time entry, if any, is active for a
// user. The pointer is derived state: it must exist iff the referenced entry
// is still open. The register owns the write ordering that keeps it that way
// on a store without multi-key transactions.
package session

import (
	"context"
	"log/slog"
	"time"

	"timekeeper/internal/domain"
	"timekeeper/internal/ports"
)

// PointerStore persists the per-owner active-session pointer.
type PointerStore interface {
	GetActiveSession(ctx context.Context, owner string) (*domain.ActiveSession, error)
	PutActiveSession(ctx context.Context, owner string, s domain.ActiveSession) error
	DeleteActiveSession(ctx context.Context, owner string) error
}

// EntryCloser closes a running entry. Implementations must treat a missing
// or already-closed entry as success, so that ClearActive stays idempotent.
type EntryCloser interface {
	CloseEntry(ctx context.Context, owner, entryID string, at time.Time) error
}

// Register implements the active-session component.
type Register struct {
	pointers PointerStore
	entries  EntryCloser
	clock    ports.Clock
	log      *slog.Logger
}

// NewRegister wires a Register.
func NewRegister(pointers PointerStore, entries EntryCloser, clock ports.Clock, log *slog.Logger) *Register {
	return &Register{pointers: pointers, entries: entries, clock: clock, log: log}
}

// GetActive returns the owner's active session, nil when idle.
func (r *Register) GetActive(ctx context.Context, owner string) (*domain.ActiveSession, error) {
	return r.pointers.GetActiveSession(ctx, owner)
}

// SetActive installs a new active session, first closing whatever session
// was active before.
func (r *Register) SetActive(ctx context.Context, owner string, s domain.ActiveSession) error {
	if err := r.ClearActive(ctx, owner); err != nil {
		return err
	}
	if err := r.pointers.PutActiveSession(ctx, owner, s); err != nil {
		return err
	}
	r.log.Info("active session set",
		slog.String("owner", owner),
		slog.String("entry", s.EntryID),
		slog.String("project", s.ProjectID))
	return nil
}

// ReplacePointer overwrites the pointer without closing the referenced
// entry. Used when the active entry is edited in place (e.g. moved to a
// different project) and must stay open.
func (r *Register) ReplacePointer(ctx context.Context, owner string, s domain.ActiveSession) error {
	return r.pointers.PutActiveSession(ctx, owner, s)
}

// ClearActive closes the referenced entry and then removes the pointer, in
// that order: a crash between the two steps leaves a pointer to an
// already-closed entry, which the next ClearActive treats as already idle,
// never an open entry with no pointer. No-op when the owner is idle.
func (r *Register) ClearActive(ctx context.Context, owner string) error {
	s, err := r.pointers.GetActiveSession(ctx, owner)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	if err := r.entries.CloseEntry(ctx, owner, s.EntryID, r.clock.Now()); err != nil {
		return err
	}
	if err := r.pointers.DeleteActiveSession(ctx, owner); err != nil {
		return err
	}
	r.log.Info("active session cleared",
		slog.String("owner", owner),
		slog.String("entry", s.EntryID))
	return nil
}
