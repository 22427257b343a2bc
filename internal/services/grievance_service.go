package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// GrievanceService runs the mark dispute workflow:
// pending -> under_review -> resolved or rejected. Terminal states are
// absorbing; a resolved grievance changes the mark ledger and the grievance
// row in one transaction.
type GrievanceService interface {
	Submit(ctx context.Context, req *SubmitGrievanceRequest, studentID string) (*GrievanceResponse, error)
	Get(ctx context.Context, id uint, requesterID string, requesterRole models.UserRole) (*models.Grievance, error)
	List(ctx context.Context, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error)

	// BeginReview moves a pending grievance to under_review and pins the reviewer.
	BeginReview(ctx context.Context, grievanceID uint, reviewerID string) (*models.Grievance, error)

	// Resolve closes the grievance with a mark correction. The ledger entry,
	// the sheet totals and the grievance row commit together.
	Resolve(ctx context.Context, req *ResolveGrievanceRequest, reviewerID string) (*models.Grievance, error)

	// Reject closes the grievance without touching the ledger. A written
	// response to the student is mandatory.
	Reject(ctx context.Context, req *RejectGrievanceRequest, reviewerID string) (*models.Grievance, error)
}

type SubmitGrievanceRequest struct {
	AnswerSheetID     uint    `json:"answer_sheet_id" validate:"required"`
	QuestionNumber    int     `json:"question_number" validate:"required,gt=0"`
	SubQuestionNumber *string `json:"sub_question_number" validate:"omitempty,max=10"`
	GrievanceText     string  `json:"grievance_text" validate:"required,min=10,max=2000"`

	// ClaimedMarks is what the student believes they were given. The ledger
	// value is authoritative; a mismatch is only flagged in the response.
	ClaimedMarks *float64 `json:"claimed_marks"`
}

type ResolveGrievanceRequest struct {
	GrievanceID  uint    `json:"grievance_id" validate:"required"`
	UpdatedMarks float64 `json:"updated_marks" validate:"min=0"`
	Response     string  `json:"response" validate:"required,min=5,max=2000"`
}

type RejectGrievanceRequest struct {
	GrievanceID uint   `json:"grievance_id" validate:"required"`
	Response    string `json:"response" validate:"required,min=5,max=2000"`
}

// GrievanceResponse reports the stored grievance plus submission-time flags.
type GrievanceResponse struct {
	*models.Grievance
	// MarksMismatch is set when the student's claimed marks differ from the
	// ledger value snapshotted into CurrentMarks.
	MarksMismatch bool `json:"marks_mismatch,omitempty"`
}

type grievanceService struct {
	repo      repositories.Repository
	marks     MarkService
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewGrievanceService(
	repo repositories.Repository,
	marks MarkService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) GrievanceService {
	return &grievanceService{
		repo:      repo,
		marks:     marks,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "exam-service", Component: "grievance"}),
		validator: v,
	}
}

// ===== SUBMISSION =====

func (s *grievanceService) Submit(ctx context.Context, req *SubmitGrievanceRequest, studentID string) (*GrievanceResponse, error) {
	s.logger.Info("Submitting grievance",
		"sheet_id", req.AnswerSheetID,
		"question", req.QuestionNumber,
		"student_id", studentID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.validator.Grievance().ValidateText(req.GrievanceText); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	sheet, err := s.repo.Sheet().GetByID(ctx, req.AnswerSheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}
	if sheet.StudentID != studentID {
		return nil, ErrSheetAccessDenied
	}
	if sheet.GradingStatus != models.GradingCompleted {
		return nil, NewBusinessRuleError("sheet_graded",
			"grievances can only be raised against graded sheets",
			map[string]interface{}{"sheet_id": sheet.ID, "status": sheet.GradingStatus})
	}

	mark, err := s.repo.Mark().Get(ctx, req.AnswerSheetID, req.QuestionNumber)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMarkNotFound
		}
		return nil, fmt.Errorf("failed to get mark: %w", err)
	}

	open, err := s.repo.Grievance().HasOpenGrievance(ctx, req.AnswerSheetID, req.QuestionNumber, req.SubQuestionNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check open grievances: %w", err)
	}
	if open {
		return nil, ErrDuplicateGrievance
	}

	// The ledger value is authoritative; the student's claim is only compared
	mismatch := req.ClaimedMarks != nil && math.Abs(*req.ClaimedMarks-mark.ObtainedMarks) > 1e-9
	if mismatch {
		s.logger.Warn("Claimed marks differ from ledger",
			"sheet_id", req.AnswerSheetID,
			"question", req.QuestionNumber,
			"claimed", *req.ClaimedMarks,
			"ledger", mark.ObtainedMarks)
	}

	teacherID, err := s.responsibleTeacher(ctx, sheet.ExamID, req.QuestionNumber, mark)
	if err != nil {
		return nil, err
	}

	grievance := &models.Grievance{
		StudentID:         studentID,
		AnswerSheetID:     req.AnswerSheetID,
		QuestionNumber:    req.QuestionNumber,
		SubQuestionNumber: req.SubQuestionNumber,
		GrievanceText:     req.GrievanceText,
		CurrentMarks:      mark.ObtainedMarks,
		Status:            models.GrievancePending,
		TeacherID:         teacherID,
		SubmissionDate:    time.Now(),
		Version:           1,
	}
	if err := s.repo.Grievance().Create(ctx, grievance); err != nil {
		return nil, fmt.Errorf("failed to create grievance: %w", err)
	}

	event := events.NewGrievanceSubmittedEvent(grievance.ID, sheet.ID, sheet.ExamID,
		studentID, teacherID, req.QuestionNumber, grievance.CurrentMarks)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish grievance submitted event", "grievance_id", grievance.ID, "error", err)
	}

	s.logger.Info("Grievance submitted",
		"grievance_id", grievance.ID,
		"teacher_id", teacherID,
		"marks_mismatch", mismatch)
	return &GrievanceResponse{Grievance: grievance, MarksMismatch: mismatch}, nil
}

// responsibleTeacher resolves who answers the grievance: the teacher whose
// assignment covers the disputed question, falling back to whoever graded it.
func (s *grievanceService) responsibleTeacher(ctx context.Context, examID uint, questionNumber int, mark *models.QuestionMark) (string, error) {
	assignments, err := s.repo.Assignment().GetByExam(ctx, examID)
	if err != nil {
		return "", fmt.Errorf("failed to load exam assignments: %w", err)
	}
	for _, a := range assignments {
		if a.Covers(questionNumber) {
			return a.TeacherID, nil
		}
	}
	if mark.GradedBy != "" {
		return mark.GradedBy, nil
	}
	return "", ErrAssignmentNotFound
}

// ===== READS =====

func (s *grievanceService) Get(ctx context.Context, id uint, requesterID string, requesterRole models.UserRole) (*models.Grievance, error) {
	grievance, err := s.repo.Grievance().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGrievanceNotFound
		}
		return nil, fmt.Errorf("failed to get grievance: %w", err)
	}

	switch requesterRole {
	case models.RoleStudent:
		if grievance.StudentID != requesterID {
			return nil, ErrGrievanceNotOwned
		}
	case models.RoleTeacher:
		reviewer := grievance.ReviewerID != nil && *grievance.ReviewerID == requesterID
		if grievance.TeacherID != requesterID && !reviewer {
			return nil, NewPermissionError(requesterID, grievance.ID, "grievance", "read",
				"not the responsible teacher or reviewer")
		}
	}
	return grievance, nil
}

func (s *grievanceService) List(ctx context.Context, filters repositories.GrievanceFilters) ([]*models.Grievance, int64, error) {
	grievances, total, err := s.repo.Grievance().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list grievances: %w", err)
	}
	return grievances, total, nil
}

// ===== REVIEW WORKFLOW =====

func (s *grievanceService) BeginReview(ctx context.Context, grievanceID uint, reviewerID string) (*models.Grievance, error) {
	s.logger.Info("Starting grievance review", "grievance_id", grievanceID, "reviewer_id", reviewerID)

	grievance, err := s.loadForReview(ctx, grievanceID, reviewerID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Grievance().ValidateTransition(grievance.Status, models.GrievanceUnderReview); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	expectedVersion := grievance.Version
	now := time.Now()
	grievance.Status = models.GrievanceUnderReview
	grievance.ReviewerID = &reviewerID
	grievance.ReviewedAt = &now

	if err := s.repo.Grievance().UpdateWithVersion(ctx, grievance, expectedVersion); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGrievanceConcurrent
		}
		return nil, fmt.Errorf("failed to update grievance: %w", err)
	}

	event := events.NewEvent(events.EventGrievanceUnderReview, events.GrievanceUnderReviewEvent{
		GrievanceID: grievance.ID,
		StudentID:   grievance.StudentID,
		ReviewerID:  reviewerID,
		StartedAt:   now,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish review started event", "grievance_id", grievance.ID, "error", err)
	}

	return grievance, nil
}

func (s *grievanceService) Resolve(ctx context.Context, req *ResolveGrievanceRequest, reviewerID string) (result *models.Grievance, err error) {
	s.logger.Info("Resolving grievance", "grievance_id", req.GrievanceID, "reviewer_id", reviewerID)

	op := s.ops.WithOperation(ctx, "grievance.resolve", reviewerID)
	defer func() { op.LogResult(req.GrievanceID, "grievance", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	grievance, err := s.loadForReview(ctx, req.GrievanceID, reviewerID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Grievance().ValidateTransition(grievance.Status, models.GrievanceResolved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	mark, err := s.repo.Mark().Get(ctx, grievance.AnswerSheetID, grievance.QuestionNumber)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMarkNotFound
		}
		return nil, fmt.Errorf("failed to get mark: %w", err)
	}
	if err := s.validator.Grievance().ValidateResolution(req.UpdatedMarks, mark.MaxMarks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarks, err)
	}

	previousMarks := mark.ObtainedMarks
	expectedVersion := grievance.Version

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	now := time.Now()
	grievance.Status = models.GrievanceResolved
	grievance.UpdatedMarks = &req.UpdatedMarks
	grievance.TeacherResponse = &req.Response
	grievance.ReviewerID = &reviewerID
	grievance.ReviewedAt = &now

	// The version check runs first so a lost race never reaches the ledger
	if err = txRepo.Grievance().UpdateWithVersion(ctx, grievance, expectedVersion); err != nil {
		if repositories.IsNotFoundError(err) {
			err = ErrGrievanceConcurrent
		} else {
			err = fmt.Errorf("failed to update grievance: %w", err)
		}
		return nil, err
	}

	if err = s.marks.ApplyCorrection(ctx, txRepo, grievance.AnswerSheetID, grievance.QuestionNumber, req.UpdatedMarks, reviewerID); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	event := events.NewEvent(events.EventGrievanceResolved, events.GrievanceResolvedEvent{
		GrievanceID:    grievance.ID,
		AnswerSheetID:  grievance.AnswerSheetID,
		StudentID:      grievance.StudentID,
		ReviewerID:     reviewerID,
		QuestionNumber: grievance.QuestionNumber,
		PreviousMarks:  previousMarks,
		UpdatedMarks:   req.UpdatedMarks,
		ResolvedAt:     now,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish grievance resolved event", "grievance_id", grievance.ID, "error", err)
	}

	s.logger.Info("Grievance resolved",
		"grievance_id", grievance.ID,
		"previous_marks", previousMarks,
		"updated_marks", req.UpdatedMarks)
	return grievance, nil
}

func (s *grievanceService) Reject(ctx context.Context, req *RejectGrievanceRequest, reviewerID string) (*models.Grievance, error) {
	s.logger.Info("Rejecting grievance", "grievance_id", req.GrievanceID, "reviewer_id", reviewerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	grievance, err := s.loadForReview(ctx, req.GrievanceID, reviewerID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Grievance().ValidateTransition(grievance.Status, models.GrievanceRejected); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	expectedVersion := grievance.Version
	now := time.Now()
	grievance.Status = models.GrievanceRejected
	grievance.TeacherResponse = &req.Response
	grievance.ReviewerID = &reviewerID
	grievance.ReviewedAt = &now

	if err := s.repo.Grievance().UpdateWithVersion(ctx, grievance, expectedVersion); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGrievanceConcurrent
		}
		return nil, fmt.Errorf("failed to update grievance: %w", err)
	}

	event := events.NewEvent(events.EventGrievanceRejected, events.GrievanceRejectedEvent{
		GrievanceID:     grievance.ID,
		AnswerSheetID:   grievance.AnswerSheetID,
		StudentID:       grievance.StudentID,
		ReviewerID:      reviewerID,
		QuestionNumber:  grievance.QuestionNumber,
		TeacherResponse: req.Response,
		RejectedAt:      now,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish grievance rejected event", "grievance_id", grievance.ID, "error", err)
	}

	s.logger.Info("Grievance rejected", "grievance_id", grievance.ID)
	return grievance, nil
}

// loadForReview fetches the grievance and checks the reviewer is entitled to
// act on it: their assignment must cover the disputed question. Admin and
// controller roles are checked at the handler layer; reviewers here are
// teachers.
func (s *grievanceService) loadForReview(ctx context.Context, grievanceID uint, reviewerID string) (*models.Grievance, error) {
	grievance, err := s.repo.Grievance().GetByID(ctx, grievanceID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGrievanceNotFound
		}
		return nil, fmt.Errorf("failed to get grievance: %w", err)
	}

	sheet, err := s.repo.Sheet().GetByID(ctx, grievance.AnswerSheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	assignment, err := s.repo.Assignment().GetByExamAndTeacher(ctx, sheet.ExamID, reviewerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorizedReviewer
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if !assignment.Covers(grievance.QuestionNumber) {
		return nil, ErrUnauthorizedReviewer
	}

	return grievance, nil
}
