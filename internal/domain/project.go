package domain

import (
	"math/rand"
	"strings"
	"time"
)

// Project represents a named bucket of tracked time, owned by a single user.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProjectRequest carries the caller-supplied fields for a new project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// UpdateProjectRequest carries a partial update; nil fields are left untouched.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// Validate checks the request. Name must contain at least one
// non-whitespace character.
func (r CreateProjectRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "project name is required")
	}
	return nil
}

// Validate rejects a name update that would blank the project name.
func (r UpdateProjectRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return NewValidationError("name", "project name must not be empty")
	}
	return nil
}

// colorPalette is the fixed set of colors assigned to projects created
// without an explicit color.
var colorPalette = []string{
	"#ef4444", "#f97316", "#f59e0b", "#eab308", "#84cc16", "#22c55e",
	"#10b981", "#14b8a6", "#06b6d4", "#0ea5e9", "#3b82f6", "#6366f1",
	"#8b5cf6", "#a855f7", "#d946ef", "#ec4899", "#f43f5e",
}

// RandomColor picks a palette color for a new project.
func RandomColor() string {
	return colorPalette[rand.Intn(len(colorPalette))]
}
