package validator

import (
	"fmt"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// MarkValidator handles mark ledger validation
type MarkValidator struct{}

// NewMarkValidator creates a new mark validator
func NewMarkValidator() *MarkValidator {
	return &MarkValidator{}
}

// ValidateMark checks a single question mark against its maximum
func (v *MarkValidator) ValidateMark(obtained, max float64) error {
	if max <= 0 {
		return fmt.Errorf("max marks must be positive, got %.2f", max)
	}
	if obtained < 0 {
		return fmt.Errorf("obtained marks cannot be negative, got %.2f", obtained)
	}
	if obtained > max {
		return fmt.Errorf("obtained marks %.2f exceed max marks %.2f", obtained, max)
	}
	return nil
}

// ValidateQuestionNumber checks that a question number falls inside the
// teacher's assignment for the exam
func (v *MarkValidator) ValidateQuestionNumber(assignment *models.ExamTeacherAssignment, questionNumber int) error {
	if questionNumber < 1 {
		return fmt.Errorf("question number must be positive, got %d", questionNumber)
	}
	if assignment == nil {
		return fmt.Errorf("no assignment for question %d", questionNumber)
	}
	if !assignment.Covers(questionNumber) {
		return fmt.Errorf("question %d is outside the assigned question set", questionNumber)
	}
	return nil
}

// ValidateLedgerTotal checks that the summed ledger does not exceed the exam total
func (v *MarkValidator) ValidateLedgerTotal(sum, examTotal float64) error {
	if examTotal > 0 && sum > examTotal {
		return fmt.Errorf("ledger total %.2f exceeds exam total %.2f", sum, examTotal)
	}
	return nil
}
