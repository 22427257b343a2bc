package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// PendingPapers lists ungraded sheets on the teacher's assigned exams
// @Summary Pending papers
// @Tags dashboard
// @Produce json
// @Success 200 {object} ListResponse
// @Router /dashboard/teacher/pending [get]
func (h *DashboardHandler) PendingPapers(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	sheets, total, err := h.dashboardService.PendingPapersFor(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: sheets, Total: total})
}

// TeacherGrievances lists grievances addressed to the calling teacher
// @Summary Teacher grievances
// @Tags dashboard
// @Produce json
// @Param status query string false "pending|under_review|resolved|rejected"
// @Success 200 {object} ListResponse
// @Router /dashboard/teacher/grievances [get]
func (h *DashboardHandler) TeacherGrievances(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var status *models.GrievanceStatus
	if raw := c.Query("status"); raw != "" {
		gs := models.GrievanceStatus(raw)
		status = &gs
	}

	grievances, total, err := h.dashboardService.GrievancesFor(c.Request.Context(), userID, status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Items: grievances, Total: total})
}

// StudentSummary lists the calling student's sheets and grievances
// @Summary Student summary
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.StudentSummary
// @Router /dashboard/student [get]
func (h *DashboardHandler) StudentSummary(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	summary, err := h.dashboardService.StudentSummary(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Overview aggregates portal-wide statistics
// @Summary Portal overview
// @Tags dashboard
// @Produce json
// @Success 200 {object} repositories.OverviewStats
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	stats, err := h.dashboardService.Overview(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DepartmentBreakdown counts answer sheets per department
// @Summary Department breakdown
// @Tags dashboard
// @Produce json
// @Success 200 {array} repositories.DepartmentCount
// @Router /dashboard/departments [get]
func (h *DashboardHandler) DepartmentBreakdown(c *gin.Context) {
	counts, err := h.dashboardService.DepartmentBreakdown(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
