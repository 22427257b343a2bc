package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/storage"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// ExamService manages the exam catalog: departments, subjects and exams.
type ExamService interface {
	// Departments
	CreateDepartment(ctx context.Context, req *CreateDepartmentRequest) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)

	// Subjects
	CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context, departmentID *uint) ([]*models.Subject, error)

	// Exams
	CreateExam(ctx context.Context, req *CreateExamRequest, createdBy string) (*models.Exam, error)
	GetExam(ctx context.Context, id uint) (*models.Exam, error)
	UpdateExam(ctx context.Context, id uint, req *UpdateExamRequest, updatedBy string) (*models.Exam, error)
	DeleteExam(ctx context.Context, id uint) error
	ListExams(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error)

	// QuestionPaperURL returns a time-limited download link for the exam's
	// question paper, or an empty string when none was uploaded.
	QuestionPaperURL(ctx context.Context, examID uint) (string, error)
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Code string `json:"code" validate:"required,min=1,max=20"`
}

type CreateSubjectRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Code         string `json:"code" validate:"required,min=1,max=20"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	Semester     string `json:"semester" validate:"omitempty,max=20"`
	Credits      int    `json:"credits" validate:"min=0,max=10"`
}

type CreateExamRequest struct {
	Name             string    `json:"name" validate:"required,min=1,max=200"`
	SubjectID        uint      `json:"subject_id" validate:"required"`
	Date             time.Time `json:"date" validate:"required"`
	Duration         int       `json:"duration" validate:"required,min=15,max=360"`
	TotalMarks       float64   `json:"total_marks" validate:"required,gt=0"`
	QuestionPaperKey *string   `json:"question_paper_key" validate:"omitempty,max=500"`
}

type UpdateExamRequest struct {
	Name             *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Date             *time.Time `json:"date"`
	Duration         *int       `json:"duration" validate:"omitempty,min=15,max=360"`
	TotalMarks       *float64   `json:"total_marks" validate:"omitempty,gt=0"`
	QuestionPaperKey *string    `json:"question_paper_key" validate:"omitempty,max=500"`
}

const questionPaperURLTTL = 15 * time.Minute

type examService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, store storage.ObjectStore, logger *slog.Logger, v *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: v,
	}
}

// ===== DEPARTMENTS =====

func (s *examService) CreateDepartment(ctx context.Context, req *CreateDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	department := &models.Department{
		Name: req.Name,
		Code: req.Code,
	}
	if err := s.repo.Department().Create(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	s.logger.Info("Department created", "department_id", department.ID, "code", department.Code)
	return department, nil
}

func (s *examService) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.repo.Department().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

// ===== SUBJECTS =====

func (s *examService) CreateSubject(ctx context.Context, req *CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Department().GetByID(ctx, req.DepartmentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	subject := &models.Subject{
		Name:         req.Name,
		Code:         req.Code,
		DepartmentID: req.DepartmentID,
		Semester:     req.Semester,
		Credits:      req.Credits,
	}
	if err := s.repo.Subject().Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("Subject created", "subject_id", subject.ID, "code", subject.Code)
	return subject, nil
}

func (s *examService) ListSubjects(ctx context.Context, departmentID *uint) ([]*models.Subject, error) {
	if departmentID != nil {
		subjects, err := s.repo.Subject().GetByDepartment(ctx, *departmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to list subjects: %w", err)
		}
		return subjects, nil
	}

	subjects, err := s.repo.Subject().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// ===== EXAMS =====

func (s *examService) CreateExam(ctx context.Context, req *CreateExamRequest, createdBy string) (*models.Exam, error) {
	s.logger.Info("Creating exam", "name", req.Name, "subject_id", req.SubjectID, "created_by", createdBy)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Subject().GetByID(ctx, req.SubjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	exists, err := s.repo.Exam().ExistsByName(ctx, req.Name, req.SubjectID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam name: %w", err)
	}
	if exists {
		return nil, ErrExamDuplicateName
	}

	exam := &models.Exam{
		Name:             req.Name,
		SubjectID:        req.SubjectID,
		Date:             req.Date,
		Duration:         req.Duration,
		TotalMarks:       req.TotalMarks,
		QuestionPaperKey: req.QuestionPaperKey,
		CreatedBy:        createdBy,
	}
	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID, "name", exam.Name)
	return exam, nil
}

func (s *examService) GetExam(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) UpdateExam(ctx context.Context, id uint, req *UpdateExamRequest, updatedBy string) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if req.Name != nil && *req.Name != exam.Name {
		exists, err := s.repo.Exam().ExistsByName(ctx, *req.Name, exam.SubjectID, &exam.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check exam name: %w", err)
		}
		if exists {
			return nil, ErrExamDuplicateName
		}
		exam.Name = *req.Name
	}
	if req.Date != nil {
		exam.Date = *req.Date
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}
	if req.QuestionPaperKey != nil {
		exam.QuestionPaperKey = req.QuestionPaperKey
	}

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	s.logger.Info("Exam updated", "exam_id", exam.ID, "updated_by", updatedBy)
	return exam, nil
}

func (s *examService) DeleteExam(ctx context.Context, id uint) error {
	if _, err := s.repo.Exam().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	examID := id
	_, total, err := s.repo.Sheet().List(ctx, repositories.SheetFilters{ExamID: &examID, Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check answer sheets: %w", err)
	}
	if total > 0 {
		return ErrExamNotDeletable
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", "exam_id", id)
	return nil
}

func (s *examService) ListExams(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, total, nil
}

func (s *examService) QuestionPaperURL(ctx context.Context, examID uint) (string, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrExamNotFound
		}
		return "", fmt.Errorf("failed to get exam: %w", err)
	}

	if exam.QuestionPaperKey == nil || *exam.QuestionPaperKey == "" {
		return "", nil
	}
	return s.store.PresignedGetURL(ctx, *exam.QuestionPaperKey, questionPaperURLTTL)
}
