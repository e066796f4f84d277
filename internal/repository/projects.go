package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"timekeeper/internal/domain"
)

// CreateProject stores a new project for the owner. A palette color is
// assigned when the request does not carry one.
func (r *Repository) CreateProject(ctx context.Context, owner string, req domain.CreateProjectRequest) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	color := req.Color
	if color == "" {
		color = domain.RandomColor()
	}
	p := domain.Project{
		ID:          r.ids.NewID(),
		OwnerID:     owner,
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.putProject(ctx, &p); err != nil {
		return nil, err
	}
	r.log.Info("project created", slog.String("owner", owner), slog.String("project", p.ID))
	return &p, nil
}

// GetProject loads one project by id.
func (r *Repository) GetProject(ctx context.Context, owner, id string) (*domain.Project, error) {
	raw, err := r.store.Get(ctx, projectKey(owner, id))
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if raw == nil {
		return nil, domain.NewNotFoundError("project", id)
	}
	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjects returns the owner's projects sorted by name, case- and
// locale-aware.
func (r *Repository) ListProjects(ctx context.Context, owner string) ([]domain.Project, error) {
	kvs, err := r.store.Scan(ctx, projectsPrefix(owner))
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	projects := make([]domain.Project, 0, len(kvs))
	for _, kv := range kvs {
		var p domain.Project
		if err := json.Unmarshal(kv.Value, &p); err != nil {
			return nil, fmt.Errorf("decode project at %q: %w", kv.Key, err)
		}
		projects = append(projects, p)
	}

	c := collate.New(language.Und, collate.Loose)
	c.Sort(byProjectName(projects))
	return projects, nil
}

// UpdateProject merges the provided fields into an existing project and
// bumps UpdatedAt.
func (r *Repository) UpdateProject(ctx context.Context, owner, id string, req domain.UpdateProjectRequest) (*domain.Project, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := r.GetProject(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	p.UpdatedAt = r.clock.Now()

	if err := r.putProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project that has no time entries referencing it.
// The check and the delete are separate store operations, so the guard is
// best-effort under concurrent entry creation.
func (r *Repository) DeleteProject(ctx context.Context, owner, id string) error {
	if _, err := r.GetProject(ctx, owner, id); err != nil {
		return err
	}
	entries, err := r.ListTimeEntriesByProject(ctx, owner, id)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return domain.NewConflictError("project has existing time entries")
	}
	if err := r.store.Delete(ctx, projectKey(owner, id)); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	r.log.Info("project deleted", slog.String("owner", owner), slog.String("project", id))
	return nil
}

func (r *Repository) putProject(ctx context.Context, p *domain.Project) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	if err := r.store.Put(ctx, projectKey(p.OwnerID, p.ID), raw); err != nil {
		return fmt.Errorf("put project: %w", err)
	}
	return nil
}

// byProjectName adapts a project slice to the collator's sort interface.
type byProjectName []domain.Project

func (s byProjectName) Len() int           { return len(s) }
func (s byProjectName) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byProjectName) Bytes(i int) []byte { return []byte(s[i].Name) }
