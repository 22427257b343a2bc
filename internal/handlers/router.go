package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vidyarthi-portal/exam-service/internal/middleware"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/services"
	"github.com/vidyarthi-portal/exam-service/internal/utils"
)

type HandlerManager struct {
	examHandler       *ExamHandler
	assignmentHandler *AssignmentHandler
	sheetHandler      *SheetHandler
	grievanceHandler  *GrievanceHandler
	dashboardHandler  *DashboardHandler
}

func NewHandlerManager(serviceManager *services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		examHandler:       NewExamHandler(serviceManager.Exam(), serviceManager.Enrollment(), logger),
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), logger),
		sheetHandler:      NewSheetHandler(serviceManager.Sheet(), serviceManager.Mark(), logger),
		grievanceHandler:  NewGrievanceHandler(serviceManager.Grievance(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth *middleware.Authenticator) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	staffOnly := middleware.RequireRoles(models.RoleController)
	teachingStaff := middleware.RequireRoles(models.RoleTeacher, models.RoleController)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware())
	{
		// Catalog routes
		v1.POST("/departments", staffOnly, hm.examHandler.CreateDepartment)
		v1.GET("/departments", hm.examHandler.ListDepartments)
		v1.POST("/subjects", staffOnly, hm.examHandler.CreateSubject)
		v1.GET("/subjects", hm.examHandler.ListSubjects)

		// Exam routes
		exams := v1.Group("/exams")
		{
			exams.POST("", staffOnly, hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:exam_id", hm.examHandler.GetExam)
			exams.PUT("/:exam_id", staffOnly, hm.examHandler.UpdateExam)
			exams.DELETE("/:exam_id", staffOnly, hm.examHandler.DeleteExam)
			exams.GET("/:exam_id/question-paper", hm.examHandler.GetQuestionPaper)

			// Enrollment management
			exams.POST("/:exam_id/enrollments", staffOnly, hm.examHandler.EnrollStudent)
			exams.GET("/:exam_id/enrollments", teachingStaff, hm.examHandler.ListEnrollments)
			exams.DELETE("/:exam_id/enrollments/:student_id", staffOnly, hm.examHandler.WithdrawStudent)
			exams.POST("/:exam_id/roster", staffOnly, hm.examHandler.ImportRoster)
			exams.GET("/:exam_id/results/export", staffOnly, hm.examHandler.ExportResults)

			// Teacher assignments
			exams.PUT("/:exam_id/assignments", staffOnly, hm.assignmentHandler.AssignTeacher)
			exams.GET("/:exam_id/assignments", teachingStaff, hm.assignmentHandler.ListExamAssignments)
			exams.DELETE("/:exam_id/assignments/:teacher_id", staffOnly, hm.assignmentHandler.RemoveAssignment)
		}

		v1.GET("/assignments/me", teachingStaff, hm.assignmentHandler.MyAssignments)

		// Answer sheet routes
		sheets := v1.Group("/sheets")
		{
			sheets.POST("", teachingStaff, hm.sheetHandler.UploadSheet)
			sheets.GET("", hm.sheetHandler.ListSheets)
			sheets.GET("/:sheet_id", hm.sheetHandler.GetSheet)
			sheets.POST("/:sheet_id/grade", teachingStaff, hm.sheetHandler.GradeSheet)
			sheets.POST("/:sheet_id/marks", teachingStaff, hm.sheetHandler.RecordMark)
			sheets.GET("/:sheet_id/marks", hm.sheetHandler.GetLedger)
			sheets.POST("/:sheet_id/annotations", teachingStaff, hm.sheetHandler.AddAnnotation)
			sheets.GET("/:sheet_id/annotations", hm.sheetHandler.ListAnnotations)
		}

		// Grievance routes
		grievances := v1.Group("/grievances")
		{
			grievances.POST("", middleware.RequireRoles(models.RoleStudent), hm.grievanceHandler.SubmitGrievance)
			grievances.GET("", hm.grievanceHandler.ListGrievances)
			grievances.GET("/:grievance_id", hm.grievanceHandler.GetGrievance)
			grievances.POST("/:grievance_id/review", teachingStaff, hm.grievanceHandler.BeginReview)
			grievances.POST("/:grievance_id/resolve", teachingStaff, hm.grievanceHandler.ResolveGrievance)
			grievances.POST("/:grievance_id/reject", teachingStaff, hm.grievanceHandler.RejectGrievance)
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/teacher/pending", teachingStaff, hm.dashboardHandler.PendingPapers)
			dashboard.GET("/teacher/grievances", teachingStaff, hm.dashboardHandler.TeacherGrievances)
			dashboard.GET("/student", middleware.RequireRoles(models.RoleStudent), hm.dashboardHandler.StudentSummary)
			dashboard.GET("/overview", staffOnly, hm.dashboardHandler.Overview)
			dashboard.GET("/departments", staffOnly, hm.dashboardHandler.DepartmentBreakdown)
		}
	}
}
