package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated collections
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.Warn(message, fields...)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// requireUser returns the authenticated user ID or responds 401.
func (h *BaseHandler) requireUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

// currentRole returns the authenticated user's role, defaulting to student.
func (h *BaseHandler) currentRole(c *gin.Context) models.UserRole {
	if role, exists := c.Get("user_role"); exists {
		if r, ok := role.(models.UserRole); ok {
			return r
		}
	}
	return models.RoleStudent
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// handleServiceError maps service errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	// Catalog errors
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Exam not found"})
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Subject not found"})
	case errors.Is(err, services.ErrDepartmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Department not found"})
	case errors.Is(err, services.ErrExamDuplicateName):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "An exam with this name already exists for the subject"})
	case errors.Is(err, services.ErrExamNotDeletable):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Exam has answer sheets and cannot be deleted"})
	case errors.Is(err, services.ErrStudentNotEnrolled):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "Student is not enrolled in this exam"})

	// Answer sheet errors
	case errors.Is(err, services.ErrSheetNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Answer sheet not found"})
	case errors.Is(err, services.ErrSheetAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Answer sheet already uploaded for this student"})
	case errors.Is(err, services.ErrSheetAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access to this answer sheet is denied"})

	// Mark ledger errors
	case errors.Is(err, services.ErrMarkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "No mark recorded for this question"})
	case errors.Is(err, services.ErrInvalidMarks):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid marks value", Details: err.Error()})
	case errors.Is(err, services.ErrInvalidQuestion):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Question number outside assigned range", Details: err.Error()})
	case errors.Is(err, services.ErrMarksExceedTotal):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "Marks exceed the exam total"})

	// Assignment errors
	case errors.Is(err, services.ErrAssignmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Teacher assignment not found"})
	case errors.Is(err, services.ErrAssignmentOverlap):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Question range overlaps an existing assignment"})

	// Grievance errors
	case errors.Is(err, services.ErrGrievanceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Grievance not found"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "Grievance state does not allow this action", Details: err.Error()})
	case errors.Is(err, services.ErrUnauthorizedReviewer):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Reviewer is not assigned to this question"})
	case errors.Is(err, services.ErrDuplicateGrievance):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "An open grievance already exists for this question"})
	case errors.Is(err, services.ErrGrievanceNotOwned):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Grievance belongs to another student"})
	case errors.Is(err, services.ErrGrievanceConcurrent):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Grievance was updated concurrently, retry"})

	// Generic errors
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized access"})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden - insufficient permissions"})
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "User does not hold the required role"})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Bad request"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Resource conflict"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	default:
		h.LogError(c, err, "Unexpected service error", "error_detail", services.FormatError(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
