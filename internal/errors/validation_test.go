package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("question_number", "must be a positive question number", -3)

	if err.Field != "question_number" {
		t.Errorf("Expected field to be 'question_number', got '%s'", err.Field)
	}
	if err.Value != -3 {
		t.Errorf("Expected value to be -3, got '%v'", err.Value)
	}

	expected := "validation error on field 'question_number': must be a positive question number"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("obtained_marks", "must be at least 0", nil))
	expected := "validation failed: obtained_marks must be at least 0"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("grievance_text", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("status", "must be a valid grievance status (pending, under_review, resolved, rejected)", "grievance_status", "closed")

	if err.Rule != "grievance_status" {
		t.Errorf("Expected rule to be 'grievance_status', got '%s'", err.Rule)
	}
	if err.Field != "status" {
		t.Errorf("Expected field to be 'status', got '%s'", err.Field)
	}
}
