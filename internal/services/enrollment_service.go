package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// EnrollmentService manages who sits an exam: single enrollments, bulk roster
// import from CSV or Excel, and the results export for the controller office.
type EnrollmentService interface {
	Enroll(ctx context.Context, examID uint, studentID string, enrolledBy string) (*models.ExamEnrollment, error)
	Withdraw(ctx context.Context, examID uint, studentID string) error
	ListByExam(ctx context.Context, examID uint) ([]*models.ExamEnrollment, error)

	// ImportRoster parses a roster file and enrolls every listed student.
	// Rows that fail validation are reported, not fatal.
	ImportRoster(ctx context.Context, file io.Reader, filename string, examID uint, importedBy string) (*RosterImportResult, error)

	// ExportResults renders the exam's grading outcome as an Excel workbook.
	ExportResults(ctx context.Context, examID uint) ([]byte, error)
}

type RosterImportResult struct {
	TotalRows     int              `json:"total_rows"`
	ImportedCount int              `json:"imported_count"`
	SkippedCount  int              `json:"skipped_count"`
	Errors        []RosterRowError `json:"errors,omitempty"`
}

type RosterRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type enrollmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEnrollmentService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, examID uint, studentID string, enrolledBy string) (*models.ExamEnrollment, error) {
	if _, err := s.repo.Exam().GetByID(ctx, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	exists, err := s.repo.Enrollment().Exists(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}

	enrollment := &models.ExamEnrollment{
		ExamID:     examID,
		StudentID:  studentID,
		EnrolledBy: enrolledBy,
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.logger.Info("Student enrolled", "exam_id", examID, "student_id", studentID)
	return enrollment, nil
}

func (s *enrollmentService) Withdraw(ctx context.Context, examID uint, studentID string) error {
	exists, err := s.repo.Enrollment().Exists(ctx, examID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !exists {
		return ErrStudentNotEnrolled
	}

	if err := s.repo.Enrollment().Delete(ctx, examID, studentID); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	s.logger.Info("Student withdrawn", "exam_id", examID, "student_id", studentID)
	return nil
}

func (s *enrollmentService) ListByExam(ctx context.Context, examID uint) ([]*models.ExamEnrollment, error) {
	enrollments, err := s.repo.Enrollment().GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// ===== ROSTER IMPORT =====

func (s *enrollmentService) ImportRoster(ctx context.Context, file io.Reader, filename string, examID uint, importedBy string) (*RosterImportResult, error) {
	s.logger.Info("Starting roster import", "filename", filename, "exam_id", examID, "imported_by", importedBy)

	if _, err := s.repo.Exam().GetByID(ctx, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	var rows [][]string
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx", ".xls":
		rows, err = readExcelRows(file)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, NewValidationError("file", "roster must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"student_id", "full_name", "email"} {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &RosterImportResult{TotalRows: len(rows) - 1}

	for rowIndex, row := range rows[1:] {
		rowNumber := rowIndex + 2
		if err := s.importRosterRow(ctx, row, headerMap, examID, importedBy); err != nil {
			result.Errors = append(result.Errors, RosterRowError{Row: rowNumber, Message: err.Error()})
			result.SkippedCount++
			continue
		}
		result.ImportedCount++
	}

	event := events.NewEvent(events.EventRosterImported, events.RosterImportedEvent{
		ExamID:        examID,
		ImportedCount: result.ImportedCount,
		SkippedCount:  result.SkippedCount,
		ImportedBy:    importedBy,
		ImportedAt:    time.Now(),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish roster imported event", "exam_id", examID, "error", err)
	}

	s.logger.Info("Roster import completed",
		"exam_id", examID,
		"total_rows", result.TotalRows,
		"imported", result.ImportedCount,
		"skipped", result.SkippedCount)
	return result, nil
}

func (s *enrollmentService) importRosterRow(ctx context.Context, row []string, headerMap map[string]int, examID uint, importedBy string) error {
	cell := func(name string) string {
		idx := headerMap[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	studentID := cell("student_id")
	fullName := cell("full_name")
	email := cell("email")
	if studentID == "" {
		return fmt.Errorf("student_id is empty")
	}
	if fullName == "" {
		return fmt.Errorf("full_name is empty")
	}
	if email == "" {
		return fmt.Errorf("email is empty")
	}

	user := &models.User{
		ID:       studentID,
		FullName: fullName,
		Email:    email,
		Role:     models.RoleStudent,
		IsActive: true,
	}
	if err := s.repo.User().Upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}

	exists, err := s.repo.Enrollment().Exists(ctx, examID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return fmt.Errorf("already enrolled")
	}

	enrollment := &models.ExamEnrollment{
		ExamID:     examID,
		StudentID:  studentID,
		EnrolledBy: importedBy,
	}
	if err := s.repo.Enrollment().Create(ctx, enrollment); err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func readCSVRows(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

func readExcelRows(reader io.Reader) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

// ===== RESULTS EXPORT =====

func (s *enrollmentService) ExportResults(ctx context.Context, examID uint) ([]byte, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	sheets, _, err := s.repo.Sheet().List(ctx, repositories.SheetFilters{ExamID: &examID, Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("failed to list answer sheets: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Student ID", "Student Name", "Grading Status", "Obtained Marks", "Total Marks",
		"Percentage", "Graded By", "Graded At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, answerSheet := range sheets {
		percentage := 0.0
		if answerSheet.TotalMarks > 0 {
			percentage = answerSheet.ObtainedMarks / answerSheet.TotalMarks * 100
		}

		gradedBy := ""
		if answerSheet.GradedBy != nil {
			gradedBy = *answerSheet.GradedBy
		}
		gradedAt := ""
		if answerSheet.GradedAt != nil {
			gradedAt = answerSheet.GradedAt.Format("2006-01-02 15:04:05")
		}

		row := []interface{}{
			answerSheet.StudentID,
			answerSheet.Student.FullName,
			string(answerSheet.GradingStatus),
			answerSheet.ObtainedMarks,
			answerSheet.TotalMarks,
			fmt.Sprintf("%.2f", percentage),
			gradedBy,
			gradedAt,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Results exported", "exam_id", examID, "exam_name", exam.Name, "sheet_count", len(sheets))
	return buf.Bytes(), nil
}
