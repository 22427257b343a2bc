package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// AssignmentService maps teachers to the question ranges they grade on an
// exam. A teacher holds at most one assignment per exam; assigning again
// replaces the question set.
type AssignmentService interface {
	Assign(ctx context.Context, req *AssignRequest, assignedBy string) (*models.ExamTeacherAssignment, error)
	AuthorizedQuestions(ctx context.Context, examID uint, teacherID string) ([]int, error)
	GetByExam(ctx context.Context, examID uint) ([]*models.ExamTeacherAssignment, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]*models.ExamTeacherAssignment, error)
	Remove(ctx context.Context, examID uint, teacherID string, removedBy string) error
}

type AssignRequest struct {
	ExamID           uint            `json:"exam_id" validate:"required"`
	TeacherID        string          `json:"teacher_id" validate:"required"`
	Questions        []int           `json:"questions" validate:"required,min=1,dive,gt=0"`
	MarksPerQuestion map[int]float64 `json:"marks_per_question" validate:"required,min=1"`
}

type assignmentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssignmentService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *assignmentService) Assign(ctx context.Context, req *AssignRequest, assignedBy string) (*models.ExamTeacherAssignment, error) {
	s.logger.Info("Assigning questions",
		"exam_id", req.ExamID,
		"teacher_id", req.TeacherID,
		"question_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	for _, q := range req.Questions {
		if _, ok := req.MarksPerQuestion[q]; !ok {
			return nil, NewBusinessRuleError("marks_per_question_complete",
				fmt.Sprintf("question %d has no max marks entry", q),
				map[string]interface{}{"question": q})
		}
	}
	if len(req.MarksPerQuestion) != len(req.Questions) {
		return nil, NewBusinessRuleError("marks_per_question_complete",
			"marks_per_question must cover exactly the assigned questions", nil)
	}

	exam, err := s.repo.Exam().GetByID(ctx, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	teacher, err := s.repo.User().GetByID(ctx, req.TeacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher.Role != models.RoleTeacher {
		return nil, ErrInvalidRole
	}

	var sum float64
	for q, m := range req.MarksPerQuestion {
		if err := s.validator.Mark().ValidateMark(0, m); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidMarks, q, err)
		}
		sum += m
	}
	if err := s.validator.Mark().ValidateLedgerTotal(sum, exam.TotalMarks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarksExceedTotal, err)
	}

	// No question may be graded by two teachers on the same exam
	if err := s.checkOverlap(ctx, req); err != nil {
		return nil, err
	}

	qJSON, mJSON, err := models.EncodeQuestions(req.Questions, req.MarksPerQuestion)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question set: %w", err)
	}

	assignment := &models.ExamTeacherAssignment{
		ExamID:            req.ExamID,
		TeacherID:         req.TeacherID,
		AssignedQuestions: qJSON,
		MarksPerQuestion:  mJSON,
		AssignedBy:        assignedBy,
	}
	if err := s.repo.Assignment().Upsert(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}

	event := events.NewEvent(events.EventAssignmentChanged, events.AssignmentChangedEvent{
		ExamID:            req.ExamID,
		TeacherID:         req.TeacherID,
		AssignedQuestions: req.Questions,
		ChangedBy:         assignedBy,
		ChangedAt:         time.Now(),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish assignment event", "exam_id", req.ExamID, "error", err)
	}

	s.logger.Info("Assignment saved", "assignment_id", assignment.ID, "exam_id", req.ExamID, "teacher_id", req.TeacherID)
	return assignment, nil
}

func (s *assignmentService) checkOverlap(ctx context.Context, req *AssignRequest) error {
	existing, err := s.repo.Assignment().GetByExam(ctx, req.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load exam assignments: %w", err)
	}

	requested := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		requested[q] = true
	}

	for _, other := range existing {
		if other.TeacherID == req.TeacherID {
			continue
		}
		qs, err := other.QuestionSet()
		if err != nil {
			return fmt.Errorf("failed to decode assignment %d: %w", other.ID, err)
		}
		for _, q := range qs {
			if requested[q] {
				return fmt.Errorf("%w: question %d held by teacher %s", ErrAssignmentOverlap, q, other.TeacherID)
			}
		}
	}
	return nil
}

func (s *assignmentService) AuthorizedQuestions(ctx context.Context, examID uint, teacherID string) ([]int, error) {
	assignment, err := s.repo.Assignment().GetByExamAndTeacher(ctx, examID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment.QuestionSet()
}

func (s *assignmentService) GetByExam(ctx context.Context, examID uint) ([]*models.ExamTeacherAssignment, error) {
	assignments, err := s.repo.Assignment().GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) GetByTeacher(ctx context.Context, teacherID string) ([]*models.ExamTeacherAssignment, error) {
	assignments, err := s.repo.Assignment().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) Remove(ctx context.Context, examID uint, teacherID string, removedBy string) error {
	if _, err := s.repo.Assignment().GetByExamAndTeacher(ctx, examID, teacherID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	if err := s.repo.Assignment().Delete(ctx, examID, teacherID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	event := events.NewEvent(events.EventAssignmentChanged, events.AssignmentChangedEvent{
		ExamID:            examID,
		TeacherID:         teacherID,
		AssignedQuestions: []int{},
		ChangedBy:         removedBy,
		ChangedAt:         time.Now(),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish assignment event", "exam_id", examID, "error", err)
	}

	s.logger.Info("Assignment removed", "exam_id", examID, "teacher_id", teacherID, "removed_by", removedBy)
	return nil
}
