package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
	}
}

// AssignTeacher assigns a teacher to a set of questions on an exam
// @Summary Assign teacher
// @Description Creates or replaces the teacher's question assignment for the exam
// @Tags assignments
// @Accept json
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param assignment body services.AssignRequest true "Assignment data"
// @Success 200 {object} models.ExamTeacherAssignment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{exam_id}/assignments [put]
func (h *AssignmentHandler) AssignTeacher(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	var req services.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.ExamID = examID

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Assigning teacher", "exam_id", examID, "teacher_id", req.TeacherID)

	assignment, err := h.assignmentService.Assign(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListExamAssignments lists every teacher assignment on an exam
// @Summary List exam assignments
// @Tags assignments
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {array} models.ExamTeacherAssignment
// @Router /exams/{exam_id}/assignments [get]
func (h *AssignmentHandler) ListExamAssignments(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	assignments, err := h.assignmentService.GetByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// MyAssignments lists the calling teacher's assignments across exams
// @Summary My assignments
// @Tags assignments
// @Produce json
// @Success 200 {array} models.ExamTeacherAssignment
// @Router /assignments/me [get]
func (h *AssignmentHandler) MyAssignments(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentService.GetByTeacher(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// RemoveAssignment removes a teacher's assignment from an exam
// @Summary Remove assignment
// @Tags assignments
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param teacher_id path string true "Teacher ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/assignments/{teacher_id} [delete]
func (h *AssignmentHandler) RemoveAssignment(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}
	teacherID := ParseStringIDParam(c, "teacher_id")
	if teacherID == "" {
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Remove(c.Request.Context(), examID, teacherID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assignment removed", nil)
}
