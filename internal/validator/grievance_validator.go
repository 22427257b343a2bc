package validator

import (
	"fmt"
	"strings"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// GrievanceValidator handles grievance workflow validation
type GrievanceValidator struct{}

// NewGrievanceValidator creates a new grievance validator
func NewGrievanceValidator() *GrievanceValidator {
	return &GrievanceValidator{}
}

// ValidateTransition checks a status change against the workflow state machine
func (v *GrievanceValidator) ValidateTransition(from, to models.GrievanceStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("grievance in terminal state %s cannot change to %s", from, to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("transition %s -> %s is not allowed", from, to)
	}
	return nil
}

// ValidateText checks the free text body of a grievance
func (v *GrievanceValidator) ValidateText(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 {
		return fmt.Errorf("grievance text must be at least 10 characters")
	}
	if len(trimmed) > 2000 {
		return fmt.Errorf("grievance text must not exceed 2000 characters")
	}
	return nil
}

// ValidateResolution checks the reviewer's outcome for a resolve action
func (v *GrievanceValidator) ValidateResolution(updatedMarks, maxMarks float64) error {
	if updatedMarks < 0 {
		return fmt.Errorf("updated marks cannot be negative, got %.2f", updatedMarks)
	}
	if updatedMarks > maxMarks {
		return fmt.Errorf("updated marks %.2f exceed max marks %.2f", updatedMarks, maxMarks)
	}
	return nil
}
