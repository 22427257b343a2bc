package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all per-entity repositories behind one access point so
// services depend on a single collaborator.
type Repository interface {
	Department() DepartmentRepository
	Subject() SubjectRepository
	Exam() ExamRepository
	Enrollment() EnrollmentRepository
	Assignment() AssignmentRepository
	Sheet() SheetRepository
	Mark() MarkRepository
	Annotation() AnnotationRepository
	Grievance() GrievanceRepository
	User() UserRepository
}

// TransactionRepository is implemented by repositories that can open a
// database transaction. Begin returns a Repository bound to the transaction;
// all operations through it commit or roll back together.
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
