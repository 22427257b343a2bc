package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type GrievanceHandler struct {
	BaseHandler
	grievanceService services.GrievanceService
}

func NewGrievanceHandler(grievanceService services.GrievanceService, logger utils.Logger) *GrievanceHandler {
	return &GrievanceHandler{
		BaseHandler:      NewBaseHandler(logger),
		grievanceService: grievanceService,
	}
}

// SubmitGrievance files a grievance against one graded question
// @Summary Submit grievance
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievance body services.SubmitGrievanceRequest true "Grievance data"
// @Success 201 {object} services.GrievanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grievances [post]
func (h *GrievanceHandler) SubmitGrievance(c *gin.Context) {
	var req services.SubmitGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting grievance",
		"answer_sheet_id", req.AnswerSheetID,
		"question_number", req.QuestionNumber)

	grievance, err := h.grievanceService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grievance)
}

// GetGrievance retrieves one grievance
// @Summary Get grievance
// @Tags grievances
// @Produce json
// @Param grievance_id path uint true "Grievance ID"
// @Success 200 {object} models.Grievance
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grievances/{grievance_id} [get]
func (h *GrievanceHandler) GetGrievance(c *gin.Context) {
	id := ParseIDParam(c, "grievance_id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	grievance, err := h.grievanceService.Get(c.Request.Context(), id, userID, h.currentRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// ListGrievances lists grievances with filters
// @Summary List grievances
// @Tags grievances
// @Produce json
// @Param status query string false "pending|under_review|resolved|rejected"
// @Param answer_sheet_id query uint false "Answer sheet ID"
// @Success 200 {object} ListResponse
// @Router /grievances [get]
func (h *GrievanceHandler) ListGrievances(c *gin.Context) {
	filters := repositories.GrievanceFilters{
		AnswerSheetID: parseUintQuery(c, "answer_sheet_id"),
		Limit:         parseIntQuery(c, "limit", 20),
		Offset:        parseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		gs := models.GrievanceStatus(status)
		filters.Status = &gs
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	// Students see only their own grievances, teachers only those
	// addressed to them. Admin and controller see everything.
	switch h.currentRole(c) {
	case models.RoleStudent:
		filters.StudentID = &userID
	case models.RoleTeacher:
		filters.TeacherID = &userID
	}

	grievances, total, err := h.grievanceService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: grievances, Total: total})
}

// BeginReview moves a pending grievance to under review
// @Summary Begin review
// @Tags grievances
// @Produce json
// @Param grievance_id path uint true "Grievance ID"
// @Success 200 {object} models.Grievance
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grievances/{grievance_id}/review [post]
func (h *GrievanceHandler) BeginReview(c *gin.Context) {
	id := ParseIDParam(c, "grievance_id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	grievance, err := h.grievanceService.BeginReview(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// ResolveGrievance closes a grievance with a mark correction
// @Summary Resolve grievance
// @Description Updates the ledger entry, resyncs the sheet totals and closes the grievance in one transaction
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievance_id path uint true "Grievance ID"
// @Param resolution body services.ResolveGrievanceRequest true "Resolution data"
// @Success 200 {object} models.Grievance
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grievances/{grievance_id}/resolve [post]
func (h *GrievanceHandler) ResolveGrievance(c *gin.Context) {
	id := ParseIDParam(c, "grievance_id")
	if id == 0 {
		return
	}

	var req services.ResolveGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.GrievanceID = id

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resolving grievance", "grievance_id", id, "updated_marks", req.UpdatedMarks)

	grievance, err := h.grievanceService.Resolve(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}

// RejectGrievance closes a grievance without changing marks
// @Summary Reject grievance
// @Tags grievances
// @Accept json
// @Produce json
// @Param grievance_id path uint true "Grievance ID"
// @Param rejection body services.RejectGrievanceRequest true "Rejection data"
// @Success 200 {object} models.Grievance
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /grievances/{grievance_id}/reject [post]
func (h *GrievanceHandler) RejectGrievance(c *gin.Context) {
	id := ParseIDParam(c, "grievance_id")
	if id == 0 {
		return
	}

	var req services.RejectGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.GrievanceID = id

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	grievance, err := h.grievanceService.Reject(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grievance)
}
