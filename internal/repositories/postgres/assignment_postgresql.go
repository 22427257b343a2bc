package postgres

import (
	"context"
	"errors"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

func (a *AssignmentPostgreSQL) Upsert(ctx context.Context, assignment *models.ExamTeacherAssignment) error {
	var existing models.ExamTeacherAssignment
	err := a.db.WithContext(ctx).
		Where("exam_id = ? AND teacher_id = ?", assignment.ExamID, assignment.TeacherID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.db.WithContext(ctx).Create(assignment).Error
		}
		return err
	}

	existing.AssignedQuestions = assignment.AssignedQuestions
	existing.MarksPerQuestion = assignment.MarksPerQuestion
	existing.AssignedBy = assignment.AssignedBy
	if err := a.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	assignment.ID = existing.ID
	return nil
}

func (a *AssignmentPostgreSQL) GetByExamAndTeacher(ctx context.Context, examID uint, teacherID string) (*models.ExamTeacherAssignment, error) {
	var assignment models.ExamTeacherAssignment
	if err := a.db.WithContext(ctx).
		Where("exam_id = ? AND teacher_id = ?", examID, teacherID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) GetByExam(ctx context.Context, examID uint) ([]*models.ExamTeacherAssignment, error) {
	var assignments []*models.ExamTeacherAssignment
	if err := a.db.WithContext(ctx).
		Where("exam_id = ?", examID).
		Preload("Teacher").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) GetByTeacher(ctx context.Context, teacherID string) ([]*models.ExamTeacherAssignment, error) {
	var assignments []*models.ExamTeacherAssignment
	if err := a.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Preload("Exam").
		Preload("Exam.Subject").
		Preload("Exam.Subject.Department").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, examID uint, teacherID string) error {
	return a.db.WithContext(ctx).
		Where("exam_id = ? AND teacher_id = ?", examID, teacherID).
		Delete(&models.ExamTeacherAssignment{}).Error
}

func (a *AssignmentPostgreSQL) ExamIDsForTeacher(ctx context.Context, teacherID string) ([]uint, error) {
	var ids []uint
	if err := a.db.WithContext(ctx).
		Model(&models.ExamTeacherAssignment{}).
		Where("teacher_id = ?", teacherID).
		Pluck("exam_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
