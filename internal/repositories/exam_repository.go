package repositories

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// DepartmentRepository interface for department catalog operations
type DepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id uint) (*models.Department, error)
	GetByName(ctx context.Context, name string) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id uint) error
}

// SubjectRepository interface for subject catalog operations
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (*models.Subject, error)
	GetByDepartment(ctx context.Context, departmentID uint) ([]*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error
}

// ExamRepository interface for exam operations
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Exam, error) // subject, department, assignments
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error // soft delete

	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Exam, error)

	// Validation helpers
	ExistsByName(ctx context.Context, name string, subjectID uint, excludeID *uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// EnrollmentRepository interface for exam enrollment operations
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.ExamEnrollment) error
	BulkCreate(ctx context.Context, enrollments []*models.ExamEnrollment) error
	GetByExam(ctx context.Context, examID uint) ([]*models.ExamEnrollment, error)
	GetByStudent(ctx context.Context, studentID string) ([]*models.ExamEnrollment, error)
	Exists(ctx context.Context, examID uint, studentID string) (bool, error)
	Delete(ctx context.Context, examID uint, studentID string) error
}
