package models

import (
	"errors"
	"testing"
)

func TestValidationErrorsIs(t *testing.T) {
	validation := &ValidationErrors{}
	validation.Add("limit", ErrInvalidLimit)

	err := validation.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected errors.Is to match ErrInvalidLimit, got %v", err)
	}
}

func TestValidationErrorsNestedFields(t *testing.T) {
	nested := &ValidationErrors{}
	nested.AddMessage("role", "role is required")

	validation := &ValidationErrors{}
	validation.Add("query", nested)

	err := validation.Err()
	if err == nil {
		t.Fatal("expected error")
	}

	list, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors type, got %T", err)
	}
	if len(list.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(list.Errors))
	}
	if list.Errors[0].Field != "query.role" {
		t.Fatalf("expected field query.role, got %q", list.Errors[0].Field)
	}
}

func TestValidationErrorsEmpty(t *testing.T) {
	var validation ValidationErrors
	if err := validation.Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestOneOfListsAllowedValues(t *testing.T) {
	validation := &ValidationErrors{}
	OneOf(validation, "sync.limit", 50, Limits, ErrInvalidLimit)
	if err := validation.Err(); err != nil {
		t.Fatalf("expected 50 to be accepted, got %v", err)
	}

	OneOf(validation, "sync.limit", 75, Limits, ErrInvalidLimit)
	OneOf(validation, "tui.theme", "neon", []string{"default", "high-contrast"}, nil)

	err := validation.Err()
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	want := "sync.limit: must be one of 20, 50, 100, 200 (got 75); tui.theme: must be one of default, high-contrast (got neon)"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %s\nwant %s", err.Error(), want)
	}
	if fields := validation.Fields(); len(fields) != 2 || fields[0] != "sync.limit" || fields[1] != "tui.theme" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestRequireRejectsBlank(t *testing.T) {
	validation := &ValidationErrors{}
	validation.Require("api.role", "RX")
	validation.Require("api.base_url", "  ")

	if got := validation.Error(); got != "api.base_url: is required" {
		t.Fatalf("unexpected message %q", got)
	}
}
