package postgres

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type DepartmentPostgreSQL struct {
	db *gorm.DB
}

func NewDepartmentPostgreSQL(db *gorm.DB) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{db: db}
}

func (d *DepartmentPostgreSQL) Create(ctx context.Context, department *models.Department) error {
	return d.db.WithContext(ctx).Create(department).Error
}

func (d *DepartmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	if err := d.db.WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) GetByName(ctx context.Context, name string) (*models.Department, error) {
	var department models.Department
	if err := d.db.WithContext(ctx).Where("name = ?", name).First(&department).Error; err != nil {
		return nil, err
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) List(ctx context.Context) ([]*models.Department, error) {
	var departments []*models.Department
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (d *DepartmentPostgreSQL) Update(ctx context.Context, department *models.Department) error {
	return d.db.WithContext(ctx).Save(department).Error
}

func (d *DepartmentPostgreSQL) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Delete(&models.Department{}, id).Error
}

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, subject *models.Subject) error {
	return s.db.WithContext(ctx).Create(subject).Error
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.db.WithContext(ctx).Preload("Department").First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) GetByDepartment(ctx context.Context, departmentID uint) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := s.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("name ASC").
		Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) List(ctx context.Context) ([]*models.Subject, error) {
	var subjects []*models.Subject
	if err := s.db.WithContext(ctx).Preload("Department").Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, subject *models.Subject) error {
	return s.db.WithContext(ctx).Save(subject).Error
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Subject{}, id).Error
}

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := e.db.WithContext(ctx).
		Preload("Subject").
		Preload("Subject.Department").
		Preload("Assignments").
		Preload("Assignments.Teacher").
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Save(exam).Error
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, id uint) error {
	return e.db.WithContext(ctx).Delete(&models.Exam{}, id).Error
}

func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exam{})
	query = e.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = e.applyPaginationAndSort(query, filters)

	if err := query.Preload("Subject").Preload("Subject.Department").Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Exam, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var exams []*models.Exam
	if err := e.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Subject").
		Preload("Subject.Department").
		Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}

func (e *ExamPostgreSQL) ExistsByName(ctx context.Context, name string, subjectID uint, excludeID *uint) (bool, error) {
	var count int64
	query := e.db.WithContext(ctx).Model(&models.Exam{}).
		Where("name = ? AND subject_id = ?", name, subjectID)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *ExamPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	err := e.db.WithContext(ctx).Model(&models.Exam{}).Count(&count).Error
	return count, err
}

// applyFilters applies common filters to an exam query
func (e *ExamPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.DepartmentID != nil {
		query = query.Joins("JOIN subjects ON subjects.id = exams.subject_id").
			Where("subjects.department_id = ?", *filters.DepartmentID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	return query
}

func (e *ExamPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ExamFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "date", "name", "created_at":
	default:
		sortBy = "date"
	}
	sortOrder := "DESC"
	if filters.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, enrollment *models.ExamEnrollment) error {
	return e.db.WithContext(ctx).Create(enrollment).Error
}

func (e *EnrollmentPostgreSQL) BulkCreate(ctx context.Context, enrollments []*models.ExamEnrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	return e.db.WithContext(ctx).CreateInBatches(enrollments, 100).Error
}

func (e *EnrollmentPostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.ExamEnrollment, error) {
	var enrollments []*models.ExamEnrollment
	if err := e.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Preload("Student").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.ExamEnrollment, error) {
	var enrollments []*models.ExamEnrollment
	if err := e.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("Exam").
		Preload("Exam.Subject").
		Preload("Exam.Subject.Department").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, examID uint, studentID string) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.ExamEnrollment{}).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, examID uint, studentID string) error {
	return e.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Delete(&models.ExamEnrollment{}).Error
}
