package postgres

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SheetPostgreSQL struct {
	db *gorm.DB
}

func NewSheetPostgreSQL(db *gorm.DB) repositories.SheetRepository {
	return &SheetPostgreSQL{db: db}
}

func (s *SheetPostgreSQL) Create(ctx context.Context, sheet *models.AnswerSheet) error {
	return s.db.WithContext(ctx).Create(sheet).Error
}

func (s *SheetPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AnswerSheet, error) {
	var sheet models.AnswerSheet
	if err := s.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (s *SheetPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.AnswerSheet, error) {
	var sheet models.AnswerSheet
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Exam").
		Preload("Exam.Subject").
		Preload("Exam.Subject.Department").
		Preload("QuestionMarks", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_number ASC")
		}).
		First(&sheet, id).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (s *SheetPostgreSQL) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	return s.db.WithContext(ctx).Save(sheet).Error
}

func (s *SheetPostgreSQL) List(ctx context.Context, filters repositories.SheetFilters) ([]*models.AnswerSheet, int64, error) {
	var sheets []*models.AnswerSheet
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AnswerSheet{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyPaginationAndSort(query, filters)

	if err := query.Preload("Student").Preload("Exam").Preload("Exam.Subject").Find(&sheets).Error; err != nil {
		return nil, 0, err
	}

	return sheets, total, nil
}

func (s *SheetPostgreSQL) GetByExamAndStudent(ctx context.Context, examID uint, studentID string) (*models.AnswerSheet, error) {
	var sheet models.AnswerSheet
	if err := s.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&sheet).Error; err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (s *SheetPostgreSQL) GetStats(ctx context.Context, filters repositories.SheetFilters) (*repositories.SheetStats, error) {
	stats := &repositories.SheetStats{}

	base := s.applyFilters(s.db.WithContext(ctx).Model(&models.AnswerSheet{}), filters)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalSheets).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("grading_status = ?", models.GradingPending).
		Count(&stats.PendingSheets).Error; err != nil {
		return nil, err
	}
	stats.GradedSheets = stats.TotalSheets - stats.PendingSheets

	var avg *float64
	if err := base.Session(&gorm.Session{}).
		Where("grading_status = ?", models.GradingCompleted).
		Select("AVG(obtained_marks)").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageMarks = *avg
	}

	return stats, nil
}

func (s *SheetPostgreSQL) CountByDepartment(ctx context.Context, filters repositories.SheetFilters) ([]repositories.DepartmentCount, error) {
	var counts []repositories.DepartmentCount
	query := s.db.WithContext(ctx).Model(&models.AnswerSheet{}).
		Joins("JOIN exams ON exams.id = answer_sheets.exam_id").
		Joins("JOIN subjects ON subjects.id = exams.subject_id").
		Joins("JOIN departments ON departments.id = subjects.department_id").
		Select("departments.name AS department, COUNT(answer_sheets.id) AS count").
		Group("departments.name")
	query = s.applyFilters(query, filters)
	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *SheetPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SheetFilters) *gorm.DB {
	if filters.ExamID != nil {
		query = query.Where("answer_sheets.exam_id = ?", *filters.ExamID)
	}
	if len(filters.ExamIDs) > 0 {
		query = query.Where("answer_sheets.exam_id IN ?", filters.ExamIDs)
	}
	if filters.StudentID != nil {
		query = query.Where("answer_sheets.student_id = ?", *filters.StudentID)
	}
	if filters.GradingStatus != nil {
		query = query.Where("answer_sheets.grading_status = ?", *filters.GradingStatus)
	}
	if filters.GradedBy != nil {
		query = query.Where("answer_sheets.graded_by = ?", *filters.GradedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("answer_sheets.upload_date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("answer_sheets.upload_date <= ?", *filters.DateTo)
	}
	return query
}

func (s *SheetPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.SheetFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "upload_date", "graded_at", "obtained_marks":
	default:
		sortBy = "upload_date"
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order("answer_sheets." + sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

type MarkPostgreSQL struct {
	db *gorm.DB
}

func NewMarkPostgreSQL(db *gorm.DB) repositories.MarkRepository {
	return &MarkPostgreSQL{db: db}
}

// Upsert relies on the (answer_sheet_id, question_number) unique index so a
// regrade overwrites rather than duplicates.
func (m *MarkPostgreSQL) Upsert(ctx context.Context, mark *models.QuestionMark) error {
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "answer_sheet_id"}, {Name: "question_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"max_marks", "obtained_marks", "comments", "graded_by", "graded_at", "updated_at",
		}),
	}).Create(mark).Error
}

func (m *MarkPostgreSQL) Get(ctx context.Context, sheetID uint, questionNumber int) (*models.QuestionMark, error) {
	var mark models.QuestionMark
	if err := m.db.WithContext(ctx).
		Where("answer_sheet_id = ? AND question_number = ?", sheetID, questionNumber).
		First(&mark).Error; err != nil {
		return nil, err
	}
	return &mark, nil
}

func (m *MarkPostgreSQL) GetBySheet(ctx context.Context, sheetID uint) ([]*models.QuestionMark, error) {
	var marks []*models.QuestionMark
	if err := m.db.WithContext(ctx).
		Where("answer_sheet_id = ?", sheetID).
		Order("question_number ASC").
		Find(&marks).Error; err != nil {
		return nil, err
	}
	return marks, nil
}

func (m *MarkPostgreSQL) SumForSheet(ctx context.Context, sheetID uint) (float64, error) {
	var sum *float64
	if err := m.db.WithContext(ctx).
		Model(&models.QuestionMark{}).
		Where("answer_sheet_id = ?", sheetID).
		Select("SUM(obtained_marks)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (m *MarkPostgreSQL) CountForSheet(ctx context.Context, sheetID uint) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&models.QuestionMark{}).
		Where("answer_sheet_id = ?", sheetID).
		Count(&count).Error
	return count, err
}

func (m *MarkPostgreSQL) Update(ctx context.Context, mark *models.QuestionMark) error {
	result := m.db.WithContext(ctx).
		Model(&models.QuestionMark{}).
		Where("answer_sheet_id = ? AND question_number = ?", mark.AnswerSheetID, mark.QuestionNumber).
		Updates(map[string]interface{}{
			"obtained_marks": mark.ObtainedMarks,
			"comments":       mark.Comments,
			"graded_by":      mark.GradedBy,
			"graded_at":      mark.GradedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type AnnotationPostgreSQL struct {
	db *gorm.DB
}

func NewAnnotationPostgreSQL(db *gorm.DB) repositories.AnnotationRepository {
	return &AnnotationPostgreSQL{db: db}
}

func (a *AnnotationPostgreSQL) Create(ctx context.Context, annotation *models.Annotation) error {
	return a.db.WithContext(ctx).Create(annotation).Error
}

func (a *AnnotationPostgreSQL) BulkCreate(ctx context.Context, annotations []*models.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).CreateInBatches(annotations, 100).Error
}

func (a *AnnotationPostgreSQL) GetBySheet(ctx context.Context, sheetID uint) ([]*models.Annotation, error) {
	var annotations []*models.Annotation
	if err := a.db.WithContext(ctx).
		Where("answer_sheet_id = ?", sheetID).
		Order("page_number ASC, created_at ASC").
		Find(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}
