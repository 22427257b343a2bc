package repositories

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// SheetRepository interface for answer sheet operations
type SheetRepository interface {
	Create(ctx context.Context, sheet *models.AnswerSheet) error
	GetByID(ctx context.Context, id uint) (*models.AnswerSheet, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.AnswerSheet, error) // student, exam, marks
	Update(ctx context.Context, sheet *models.AnswerSheet) error

	List(ctx context.Context, filters SheetFilters) ([]*models.AnswerSheet, int64, error)
	GetByExamAndStudent(ctx context.Context, examID uint, studentID string) (*models.AnswerSheet, error)

	// Statistics
	GetStats(ctx context.Context, filters SheetFilters) (*SheetStats, error)
	CountByDepartment(ctx context.Context, filters SheetFilters) ([]DepartmentCount, error)
}

// MarkRepository interface for the per-question mark ledger
type MarkRepository interface {
	// Upsert overwrites any prior entry for (answer_sheet_id, question_number).
	Upsert(ctx context.Context, mark *models.QuestionMark) error
	Get(ctx context.Context, sheetID uint, questionNumber int) (*models.QuestionMark, error)
	GetBySheet(ctx context.Context, sheetID uint) ([]*models.QuestionMark, error)
	SumForSheet(ctx context.Context, sheetID uint) (float64, error)
	CountForSheet(ctx context.Context, sheetID uint) (int64, error)
	Update(ctx context.Context, mark *models.QuestionMark) error
}

// AnnotationRepository interface for sheet annotations (append-only)
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *models.Annotation) error
	BulkCreate(ctx context.Context, annotations []*models.Annotation) error
	GetBySheet(ctx context.Context, sheetID uint) ([]*models.Annotation, error)
}
