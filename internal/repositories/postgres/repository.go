package postgres

import (
	"context"
	"errors"

	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// GormRepository bundles the per-entity repositories over one *gorm.DB and
// implements repositories.TransactionRepository. Begin returns a new bundle
// bound to the transaction handle.
type GormRepository struct {
	db   *gorm.DB
	inTx bool

	department repositories.DepartmentRepository
	subject    repositories.SubjectRepository
	exam       repositories.ExamRepository
	enrollment repositories.EnrollmentRepository
	assignment repositories.AssignmentRepository
	sheet      repositories.SheetRepository
	mark       repositories.MarkRepository
	annotation repositories.AnnotationRepository
	grievance  repositories.GrievanceRepository
	user       repositories.UserRepository
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return newGormRepository(db, false)
}

func newGormRepository(db *gorm.DB, inTx bool) *GormRepository {
	return &GormRepository{
		db:         db,
		inTx:       inTx,
		department: NewDepartmentPostgreSQL(db),
		subject:    NewSubjectPostgreSQL(db),
		exam:       NewExamPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		assignment: NewAssignmentPostgreSQL(db),
		sheet:      NewSheetPostgreSQL(db),
		mark:       NewMarkPostgreSQL(db),
		annotation: NewAnnotationPostgreSQL(db),
		grievance:  NewGrievancePostgreSQL(db),
		user:       NewUserPostgreSQL(db),
	}
}

func (r *GormRepository) Department() repositories.DepartmentRepository { return r.department }
func (r *GormRepository) Subject() repositories.SubjectRepository       { return r.subject }
func (r *GormRepository) Exam() repositories.ExamRepository             { return r.exam }
func (r *GormRepository) Enrollment() repositories.EnrollmentRepository { return r.enrollment }
func (r *GormRepository) Assignment() repositories.AssignmentRepository { return r.assignment }
func (r *GormRepository) Sheet() repositories.SheetRepository           { return r.sheet }
func (r *GormRepository) Mark() repositories.MarkRepository             { return r.mark }
func (r *GormRepository) Annotation() repositories.AnnotationRepository { return r.annotation }
func (r *GormRepository) Grievance() repositories.GrievanceRepository   { return r.grievance }
func (r *GormRepository) User() repositories.UserRepository             { return r.user }

func (r *GormRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return newGormRepository(tx, true), nil
}

func (r *GormRepository) Commit(ctx context.Context) error {
	if !r.inTx {
		return errors.New("commit outside transaction")
	}
	return r.db.Commit().Error
}

func (r *GormRepository) Rollback(ctx context.Context) error {
	if !r.inTx {
		return errors.New("rollback outside transaction")
	}
	return r.db.Rollback().Error
}
