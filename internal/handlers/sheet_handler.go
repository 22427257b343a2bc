package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type SheetHandler struct {
	BaseHandler
	sheetService services.SheetService
	markService  services.MarkService
}

func NewSheetHandler(
	sheetService services.SheetService,
	markService services.MarkService,
	logger utils.Logger,
) *SheetHandler {
	return &SheetHandler{
		BaseHandler:  NewBaseHandler(logger),
		sheetService: sheetService,
		markService:  markService,
	}
}

// UploadSheet registers a scanned answer sheet for an enrolled student
// @Summary Upload answer sheet
// @Tags sheets
// @Accept multipart/form-data
// @Produce json
// @Param exam_id formData uint true "Exam ID"
// @Param student_id formData string true "Student ID"
// @Param file formData file true "Scanned sheet (PDF)"
// @Success 201 {object} models.AnswerSheet
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sheets [post]
func (h *SheetHandler) UploadSheet(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	examID, err := strconv.ParseUint(c.PostForm("exam_id"), 10, 32)
	if err != nil || examID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid exam_id",
			Details: "must be a positive integer",
		})
		return
	}

	studentID := c.PostForm("student_id")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "student_id is required",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer sheet file is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot read uploaded file", err)
		return
	}
	defer file.Close()

	utils.GetLoggerFromContext(c).Info("Uploading answer sheet",
		"exam_id", examID,
		"student_id", studentID,
		"file_size", fileHeader.Size)

	req := &services.UploadSheetRequest{
		ExamID:      uint(examID),
		StudentID:   studentID,
		File:        file,
		FileSize:    fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	sheet, err := h.sheetService.RegisterUpload(c.Request.Context(), req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sheet)
}

// GetSheet retrieves a sheet with a presigned file link
// @Summary Get answer sheet
// @Tags sheets
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Success 200 {object} services.SheetResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sheets/{sheet_id} [get]
func (h *SheetHandler) GetSheet(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	sheet, err := h.sheetService.Get(c.Request.Context(), id, userID, h.currentRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// ListSheets lists answer sheets with filters
// @Summary List answer sheets
// @Tags sheets
// @Produce json
// @Param exam_id query uint false "Exam ID"
// @Param student_id query string false "Student ID"
// @Param grading_status query string false "pending|completed"
// @Success 200 {object} ListResponse
// @Router /sheets [get]
func (h *SheetHandler) ListSheets(c *gin.Context) {
	filters := repositories.SheetFilters{
		ExamID: parseUintQuery(c, "exam_id"),
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if status := c.Query("grading_status"); status != "" {
		gs := models.GradingStatus(status)
		filters.GradingStatus = &gs
	}

	// Students only see their own sheets.
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	if h.currentRole(c) == models.RoleStudent {
		filters.StudentID = &userID
	}

	sheets, total, err := h.sheetService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: sheets, Total: total})
}

// GradeSheet records marks for a batch of questions on a sheet
// @Summary Grade answer sheet
// @Description Records marks for several questions atomically and resyncs the sheet totals
// @Tags grading
// @Accept json
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Param grades body services.GradeSheetRequest true "Marks per question"
// @Success 200 {object} models.AnswerSheet
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sheets/{sheet_id}/grade [post]
func (h *SheetHandler) GradeSheet(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	var req services.GradeSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.AnswerSheetID = id

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Grading answer sheet", "sheet_id", id, "entries", len(req.Marks))

	sheet, err := h.sheetService.Grade(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// RecordMark records or overwrites a single ledger entry
// @Summary Record question mark
// @Tags grading
// @Accept json
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Param mark body services.RecordMarkRequest true "Mark data"
// @Success 200 {object} models.QuestionMark
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /sheets/{sheet_id}/marks [post]
func (h *SheetHandler) RecordMark(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	var req services.RecordMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.AnswerSheetID = id

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	mark, err := h.markService.RecordMark(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, mark)
}

// GetLedger lists the per-question mark ledger for a sheet
// @Summary Get mark ledger
// @Tags grading
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Success 200 {array} models.QuestionMark
// @Router /sheets/{sheet_id}/marks [get]
func (h *SheetHandler) GetLedger(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	marks, err := h.markService.Ledger(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, marks)
}

// AddAnnotation attaches an advisory note to a scanned page
// @Summary Add annotation
// @Tags sheets
// @Accept json
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Param annotation body services.AddAnnotationRequest true "Annotation data"
// @Success 201 {object} models.Annotation
// @Failure 400 {object} ErrorResponse
// @Router /sheets/{sheet_id}/annotations [post]
func (h *SheetHandler) AddAnnotation(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	var req services.AddAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.AnswerSheetID = id

	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	annotation, err := h.sheetService.AddAnnotation(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, annotation)
}

// ListAnnotations lists a sheet's annotations
// @Summary List annotations
// @Tags sheets
// @Produce json
// @Param sheet_id path uint true "Sheet ID"
// @Success 200 {array} models.Annotation
// @Router /sheets/{sheet_id}/annotations [get]
func (h *SheetHandler) ListAnnotations(c *gin.Context) {
	id := ParseIDParam(c, "sheet_id")
	if id == 0 {
		return
	}

	annotations, err := h.sheetService.ListAnnotations(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, annotations)
}
