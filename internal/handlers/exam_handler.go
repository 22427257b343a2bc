package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	examService       services.ExamService
	enrollmentService services.EnrollmentService
}

func NewExamHandler(
	examService services.ExamService,
	enrollmentService services.EnrollmentService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:       NewBaseHandler(logger),
		examService:       examService,
		enrollmentService: enrollmentService,
	}
}

// CreateDepartment creates a new department
// @Summary Create department
// @Tags catalog
// @Accept json
// @Produce json
// @Param department body services.CreateDepartmentRequest true "Department data"
// @Success 201 {object} models.Department
// @Failure 400 {object} ErrorResponse
// @Router /departments [post]
func (h *ExamHandler) CreateDepartment(c *gin.Context) {
	var req services.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	department, err := h.examService.CreateDepartment(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

// ListDepartments lists all departments
// @Summary List departments
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Department
// @Router /departments [get]
func (h *ExamHandler) ListDepartments(c *gin.Context) {
	departments, err := h.examService.ListDepartments(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, departments)
}

// CreateSubject creates a new subject under a department
// @Summary Create subject
// @Tags catalog
// @Accept json
// @Produce json
// @Param subject body services.CreateSubjectRequest true "Subject data"
// @Success 201 {object} models.Subject
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /subjects [post]
func (h *ExamHandler) CreateSubject(c *gin.Context) {
	var req services.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	subject, err := h.examService.CreateSubject(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

// ListSubjects lists subjects, optionally filtered by department
// @Summary List subjects
// @Tags catalog
// @Produce json
// @Param department_id query uint false "Department ID"
// @Success 200 {array} models.Subject
// @Router /subjects [get]
func (h *ExamHandler) ListSubjects(c *gin.Context) {
	departmentID := parseUintQuery(c, "department_id")

	subjects, err := h.examService.ListSubjects(c.Request.Context(), departmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// CreateExam creates a new exam
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamRequest
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

	exam, err := h.examService.CreateExam(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// GetExam retrieves an exam by ID
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := ParseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// UpdateExam updates an exam
// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param exam body services.UpdateExamRequest true "Fields to update"
// @Success 200 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := ParseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	var req services.UpdateExamRequest
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

	exam, err := h.examService.UpdateExam(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam deletes an exam that has no answer sheets
// @Summary Delete exam
// @Tags exams
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{exam_id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := ParseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam", "exam_id", id)

	if err := h.examService.DeleteExam(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Exam deleted", nil)
}

// ListExams lists exams with filters
// @Summary List exams
// @Tags exams
// @Produce json
// @Param subject_id query uint false "Subject ID"
// @Param department_id query uint false "Department ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} ListResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	filters := repositories.ExamFilters{
		SubjectID:    parseUintQuery(c, "subject_id"),
		DepartmentID: parseUintQuery(c, "department_id"),
		Limit:        parseIntQuery(c, "limit", 20),
		Offset:       parseIntQuery(c, "offset", 0),
		SortBy:       c.DefaultQuery("sort_by", "date"),
		SortOrder:    c.DefaultQuery("sort_order", "desc"),
	}

	exams, total, err := h.examService.ListExams(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: exams, Total: total})
}

// GetQuestionPaper returns a time-limited download link for the question paper
// @Summary Question paper link
// @Tags exams
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/question-paper [get]
func (h *ExamHandler) GetQuestionPaper(c *gin.Context) {
	id := ParseIDParam(c, "exam_id")
	if id == 0 {
		return
	}

	url, err := h.examService.QuestionPaperURL(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question paper link",
		Data:    gin.H{"url": url},
	})
}

// EnrollStudent enrolls a single student in an exam
// @Summary Enroll student
// @Tags enrollments
// @Accept json
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 201 {object} models.ExamEnrollment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /exams/{exam_id}/enrollments [post]
func (h *ExamHandler) EnrollStudent(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	var req struct {
		StudentID string `json:"student_id" binding:"required"`
	}
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

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), examID, req.StudentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// WithdrawStudent removes a student's enrollment
// @Summary Withdraw student
// @Tags enrollments
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param student_id path string true "Student ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/enrollments/{student_id} [delete]
func (h *ExamHandler) WithdrawStudent(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	if err := h.enrollmentService.Withdraw(c.Request.Context(), examID, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Enrollment withdrawn", nil)
}

// ListEnrollments lists all enrollments for an exam
// @Summary List enrollments
// @Tags enrollments
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Success 200 {array} models.ExamEnrollment
// @Router /exams/{exam_id}/enrollments [get]
func (h *ExamHandler) ListEnrollments(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	enrollments, err := h.enrollmentService.ListByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// ImportRoster enrolls students in bulk from a CSV or Excel file
// @Summary Import roster
// @Tags enrollments
// @Accept multipart/form-data
// @Produce json
// @Param exam_id path uint true "Exam ID"
// @Param file formData file true "Roster file (.csv, .xlsx)"
// @Success 200 {object} services.RosterImportResult
// @Failure 400 {object} ErrorResponse
// @Router /exams/{exam_id}/roster [post]
func (h *ExamHandler) ImportRoster(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Roster file is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot read roster file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing roster", "exam_id", examID, "filename", fileHeader.Filename)

	result, err := h.enrollmentService.ImportRoster(c.Request.Context(), file, fileHeader.Filename, examID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportResults streams the exam's grading outcome as an Excel workbook
// @Summary Export results
// @Tags exams
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param exam_id path uint true "Exam ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /exams/{exam_id}/results/export [get]
func (h *ExamHandler) ExportResults(c *gin.Context) {
	examID := ParseIDParam(c, "exam_id")
	if examID == 0 {
		return
	}

	data, err := h.enrollmentService.ExportResults(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam_%d_results.xlsx", examID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseUintQuery(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
