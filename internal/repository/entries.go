package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"timekeeper/internal/domain"
)

// CreateTimeEntry stores a new entry with a nil EndTime, i.e. running.
// It does not touch the active-session pointer; callers go through the
// tracking engine, which owns the single-active invariant.
func (r *Repository) CreateTimeEntry(ctx context.Context, owner string, req domain.CreateTimeEntryRequest) (*domain.TimeEntry, error) {
	if req.ProjectID == "" {
		return nil, domain.NewValidationError("projectId", "project id is required")
	}

	now := r.clock.Now()
	e := domain.TimeEntry{
		ID:          r.ids.NewID(),
		OwnerID:     owner,
		ProjectID:   req.ProjectID,
		StartTime:   now,
		EndTime:     nil,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.putEntry(ctx, &e); err != nil {
		return nil, err
	}
	r.log.Info("time entry created",
		slog.String("owner", owner),
		slog.String("entry", e.ID),
		slog.String("project", e.ProjectID))
	return &e, nil
}

// GetTimeEntry loads one entry by id.
func (r *Repository) GetTimeEntry(ctx context.Context, owner, id string) (*domain.TimeEntry, error) {
	raw, err := r.store.Get(ctx, entryKey(owner, id))
	if err != nil {
		return nil, fmt.Errorf("get time entry: %w", err)
	}
	if raw == nil {
		return nil, domain.NewNotFoundError("time entry", id)
	}
	var e domain.TimeEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode time entry %s: %w", id, err)
	}
	return &e, nil
}

// ListTimeEntries returns all of the owner's entries, most recent start
// first.
func (r *Repository) ListTimeEntries(ctx context.Context, owner string) ([]domain.TimeEntry, error) {
	kvs, err := r.store.Scan(ctx, entriesPrefix(owner))
	if err != nil {
		return nil, fmt.Errorf("scan time entries: %w", err)
	}
	entries := make([]domain.TimeEntry, 0, len(kvs))
	for _, kv := range kvs {
		var e domain.TimeEntry
		if err := json.Unmarshal(kv.Value, &e); err != nil {
			return nil, fmt.Errorf("decode time entry at %q: %w", kv.Key, err)
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})
	return entries, nil
}

// ListTimeEntriesByProject returns the owner's entries for one project,
// most recent start first.
func (r *Repository) ListTimeEntriesByProject(ctx context.Context, owner, projectID string) ([]domain.TimeEntry, error) {
	all, err := r.ListTimeEntries(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(all))
	for _, e := range all {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListTimeEntriesWithProject inner-joins entries to their projects.
// Entries whose project no longer exists are dropped from the result.
func (r *Repository) ListTimeEntriesWithProject(ctx context.Context, owner string) ([]domain.TimeEntryWithProject, error) {
	entries, err := r.ListTimeEntries(ctx, owner)
	if err != nil {
		return nil, err
	}
	projects, err := r.ListProjects(ctx, owner)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	out := make([]domain.TimeEntryWithProject, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ProjectID]
		if !ok {
			continue
		}
		out = append(out, domain.TimeEntryWithProject{TimeEntry: e, Project: p})
	}
	return out, nil
}

// UpdateTimeEntry merges the provided fields into an existing entry and
// bumps UpdatedAt. It performs no session bookkeeping; the tracking engine
// clears the active pointer when a caller-set EndTime closes the open entry.
func (r *Repository) UpdateTimeEntry(ctx context.Context, owner, id string, req domain.UpdateTimeEntryRequest) (*domain.TimeEntry, error) {
	e, err := r.GetTimeEntry(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectID != nil {
		e.ProjectID = *req.ProjectID
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.StartTime != nil {
		e.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		e.EndTime = req.EndTime
	}
	e.UpdatedAt = r.clock.Now()

	if err := r.putEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteTimeEntry removes one entry.
func (r *Repository) DeleteTimeEntry(ctx context.Context, owner, id string) error {
	if _, err := r.GetTimeEntry(ctx, owner, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, entryKey(owner, id)); err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	r.log.Info("time entry deleted", slog.String("owner", owner), slog.String("entry", id))
	return nil
}

// CloseEntry sets EndTime on a running entry. It is idempotent: a missing or
// already-closed entry is not an error, because the session register may
// legitimately hold a pointer to one after a crash between its two steps.
func (r *Repository) CloseEntry(ctx context.Context, owner, id string, at time.Time) error {
	raw, err := r.store.Get(ctx, entryKey(owner, id))
	if err != nil {
		return fmt.Errorf("get time entry: %w", err)
	}
	if raw == nil {
		return nil
	}
	var e domain.TimeEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("decode time entry %s: %w", id, err)
	}
	if e.EndTime != nil {
		return nil
	}
	e.EndTime = &at
	e.UpdatedAt = r.clock.Now()
	return r.putEntry(ctx, &e)
}

// GetActiveSession loads the owner's active-session pointer, nil when idle.
func (r *Repository) GetActiveSession(ctx context.Context, owner string) (*domain.ActiveSession, error) {
	raw, err := r.store.Get(ctx, activeSessionKey(owner))
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var s domain.ActiveSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode active session: %w", err)
	}
	return &s, nil
}

// PutActiveSession overwrites the owner's active-session pointer.
func (r *Repository) PutActiveSession(ctx context.Context, owner string, s domain.ActiveSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode active session: %w", err)
	}
	if err := r.store.Put(ctx, activeSessionKey(owner), raw); err != nil {
		return fmt.Errorf("put active session: %w", err)
	}
	return nil
}

// DeleteActiveSession removes the owner's active-session pointer.
func (r *Repository) DeleteActiveSession(ctx context.Context, owner string) error {
	if err := r.store.Delete(ctx, activeSessionKey(owner)); err != nil {
		return fmt.Errorf("delete active session: %w", err)
	}
	return nil
}

func (r *Repository) putEntry(ctx context.Context, e *domain.TimeEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode time entry: %w", err)
	}
	if err := r.store.Put(ctx, entryKey(e.OwnerID, e.ID), raw); err != nil {
		return fmt.Errorf("put time entry: %w", err)
	}
	return nil
}
