// Package repository provides owner-scoped persistence for projects and time
// entries on top of the keyed store. It enforces per-record validation only;
// cross-entry constraints (the single-active invariant) belong to the
// tracking engine.
package repository

import (
	"log/slog"

	"timekeeper/internal/ports"
)

// Repository persists Project and TimeEntry records as JSON values under
// owner-scoped key prefixes.
type Repository struct {
	store ports.Store
	clock ports.Clock
	ids   ports.IDSource
	log   *slog.Logger
}

// New wires a Repository over the given store and providers.
func New(store ports.Store, clock ports.Clock, ids ports.IDSource, log *slog.Logger) *Repository {
	return &Repository{store: store, clock: clock, ids: ids, log: log}
}
