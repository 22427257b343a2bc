package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// Custom validation functions

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleTeacher,
		models.RoleAdmin,
		models.RoleController,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

func ValidateGrievanceStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.GrievanceStatus{
		models.GrievancePending,
		models.GrievanceUnderReview,
		models.GrievanceResolved,
		models.GrievanceRejected,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func ValidateGradingStatus(fl validator.FieldLevel) bool {
	validStatuses := []models.GradingStatus{
		models.GradingPending,
		models.GradingCompleted,
	}

	value := fl.Field().String()
	for _, validStatus := range validStatuses {
		if string(validStatus) == value {
			return true
		}
	}
	return false
}

func ValidateAnnotationType(fl validator.FieldLevel) bool {
	validTypes := []models.AnnotationType{
		models.AnnotationMark,
		models.AnnotationComment,
		models.AnnotationHighlight,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("user_role", ValidateUserRole)
	validate.RegisterValidation("grievance_status", ValidateGrievanceStatus)
	validate.RegisterValidation("grading_status", ValidateGradingStatus)
	validate.RegisterValidation("annotation_type", ValidateAnnotationType)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
