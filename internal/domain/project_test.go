package domain

import (
	"errors"
	"testing"
)

func TestCreateProjectRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateProjectRequest
		wantErr bool
	}{
		{"valid", CreateProjectRequest{Name: "Client work"}, false},
		{"empty name", CreateProjectRequest{Name: ""}, true},
		{"whitespace name", CreateProjectRequest{Name: "   \t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateProjectRequest_Validate(t *testing.T) {
	empty := " "
	if err := (UpdateProjectRequest{Name: &empty}).Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := (UpdateProjectRequest{}).Validate(); err != nil {
		t.Errorf("unexpected error for empty patch: %v", err)
	}
}

func TestRandomColor_FromPalette(t *testing.T) {
	palette := make(map[string]bool, len(colorPalette))
	for _, c := range colorPalette {
		palette[c] = true
	}
	for i := 0; i < 50; i++ {
		if c := RandomColor(); !palette[c] {
			t.Fatalf("color %q not in palette", c)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	var ve *ValidationError
	err := NewValidationError("name", "project name is required")
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("expected ValidationError with field name, got %v", err)
	}

	if !errors.Is(NewNotFoundError("project", "p1"), ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if !errors.Is(NewConflictError("project has existing time entries"), ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}
	if got := NewNotFoundError("time entry", "e1").Error(); got != "time entry e1 not found" {
		t.Errorf("unexpected message %q", got)
	}
}
