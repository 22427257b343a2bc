package repositories

import (
	"context"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// AssignmentRepository interface for exam-teacher assignment operations
type AssignmentRepository interface {
	Upsert(ctx context.Context, assignment *models.ExamTeacherAssignment) error
	GetByExamAndTeacher(ctx context.Context, examID uint, teacherID string) (*models.ExamTeacherAssignment, error)
	GetByExam(ctx context.Context, examID uint) ([]*models.ExamTeacherAssignment, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]*models.ExamTeacherAssignment, error)
	Delete(ctx context.Context, examID uint, teacherID string) error

	// ExamIDsForTeacher returns the ids of every exam the teacher holds an
	// assignment on; backs the role-filtered dashboard queries.
	ExamIDsForTeacher(ctx context.Context, teacherID string) ([]uint, error)
}
