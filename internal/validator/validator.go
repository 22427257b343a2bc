package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator    *validator.Validate
	markValidator      *MarkValidator
	grievanceValidator *GrievanceValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	utils.RegisterCustomValidators(structValidator)

	return &Validator{
		structValidator:    structValidator,
		markValidator:      NewMarkValidator(),
		grievanceValidator: NewGrievanceValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct tag validation and converts failures to the
// shared ValidationErrors type
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if verrs := ToValidationErrors(err); len(verrs) > 0 {
			return verrs
		}
		return err
	}
	return nil
}

// Mark returns the mark ledger validator
func (v *Validator) Mark() *MarkValidator {
	return v.markValidator
}

// Grievance returns the grievance workflow validator
func (v *Validator) Grievance() *GrievanceValidator {
	return v.grievanceValidator
}
