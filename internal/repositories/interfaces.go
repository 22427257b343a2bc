package repositories

import (
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	SubjectID    *uint      `json:"subject_id"`
	DepartmentID *uint      `json:"department_id"`
	CreatedBy    *string    `json:"created_by"`
	DateFrom     *time.Time `json:"date_from"`
	DateTo       *time.Time `json:"date_to"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
	SortBy       string     `json:"sort_by"`    // "date", "name", "created_at"
	SortOrder    string     `json:"sort_order"` // "asc", "desc"
}

type SheetFilters struct {
	ExamID        *uint                 `json:"exam_id"`
	ExamIDs       []uint                `json:"exam_ids"`
	StudentID     *string               `json:"student_id"`
	GradingStatus *models.GradingStatus `json:"grading_status"`
	GradedBy      *string               `json:"graded_by"`
	DateFrom      *time.Time            `json:"date_from"`
	DateTo        *time.Time            `json:"date_to"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
	SortBy        string                `json:"sort_by"`
	SortOrder     string                `json:"sort_order"`
}

type GrievanceFilters struct {
	StudentID     *string                 `json:"student_id"`
	AnswerSheetID *uint                   `json:"answer_sheet_id"`
	SheetIDs      []uint                  `json:"sheet_ids"`
	ExamIDs       []uint                  `json:"exam_ids"`
	Status        *models.GrievanceStatus `json:"status"`
	TeacherID     *string                 `json:"teacher_id"`
	DateFrom      *time.Time              `json:"date_from"`
	DateTo        *time.Time              `json:"date_to"`
	Limit         int                     `json:"limit"`
	Offset        int                     `json:"offset"`
	SortBy        string                  `json:"sort_by"`
	SortOrder     string                  `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

type SheetStats struct {
	TotalSheets   int64   `json:"total_sheets"`
	PendingSheets int64   `json:"pending_sheets"`
	GradedSheets  int64   `json:"graded_sheets"`
	AverageMarks  float64 `json:"average_marks"`
}

type GrievanceStats struct {
	TotalGrievances int64                            `json:"total_grievances"`
	StatusBreakdown map[models.GrievanceStatus]int64 `json:"status_breakdown"`
	AverageRevision float64                          `json:"average_revision"` // mean of (updated - current) over resolved
}

type OverviewStats struct {
	Exams          int64           `json:"exams"`
	AnswerSheets   int64           `json:"answer_sheets"`
	PendingSheets  int64           `json:"pending_sheets"`
	OpenGrievances int64           `json:"open_grievances"`
	Sheets         SheetStats      `json:"sheets"`
	Grievances     GrievanceStats  `json:"grievances"`
	ByDepartment   []DepartmentCount `json:"by_department"`
}
