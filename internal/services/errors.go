package services

import (
	"errors"
	"fmt"

	apperrors "github.com/vidyarthi-portal/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Exam and catalog errors
	ErrExamNotFound       = errors.New("exam not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrExamDuplicateName  = errors.New("exam name already exists for this subject")
	ErrExamNotDeletable   = errors.New("exam cannot be deleted - answer sheets exist")
	ErrStudentNotEnrolled = errors.New("student is not enrolled in this exam")

	// Answer sheet errors
	ErrSheetNotFound      = errors.New("answer sheet not found")
	ErrSheetAlreadyExists = errors.New("answer sheet already uploaded for this student and exam")
	ErrSheetAccessDenied  = errors.New("access denied to answer sheet")

	// Mark ledger errors
	ErrMarkNotFound     = errors.New("question mark not found")
	ErrInvalidMarks     = errors.New("obtained marks outside the allowed range")
	ErrInvalidQuestion  = errors.New("question number is not part of this exam")
	ErrMarksExceedTotal = errors.New("sum of question marks exceeds exam total")

	// Assignment errors
	ErrAssignmentNotFound = errors.New("exam assignment not found")
	ErrAssignmentOverlap  = errors.New("question already assigned to another teacher for this exam")

	// Grievance errors
	ErrGrievanceNotFound    = errors.New("grievance not found")
	ErrInvalidTransition    = errors.New("invalid grievance status transition")
	ErrUnauthorizedReviewer = errors.New("reviewer is not assigned to the disputed question")
	ErrDuplicateGrievance   = errors.New("an open grievance already exists for this question")
	ErrGrievanceNotOwned    = errors.New("grievance does not belong to this student")
	ErrGrievanceConcurrent  = errors.New("grievance was modified concurrently")

	// User/Permission errors
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidRole             = errors.New("invalid user role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrDepartmentNotFound) ||
		errors.Is(err, ErrSheetNotFound) ||
		errors.Is(err, ErrMarkNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrGrievanceNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSheetAccessDenied) ||
		errors.Is(err, ErrUnauthorizedReviewer) ||
		errors.Is(err, ErrGrievanceNotOwned) ||
		errors.Is(err, ErrInsufficientPermissions) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidMarks) ||
		errors.Is(err, ErrInvalidQuestion) ||
		errors.Is(err, ErrInvalidTransition) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrExamDuplicateName) ||
		errors.Is(err, ErrExamNotDeletable) ||
		errors.Is(err, ErrSheetAlreadyExists) ||
		errors.Is(err, ErrAssignmentOverlap) ||
		errors.Is(err, ErrDuplicateGrievance) ||
		errors.Is(err, ErrGrievanceConcurrent)
}
