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

// MarkService owns the per-question mark ledger. Every mark mutation goes
// through here so the sheet's obtained total and grading status always equal
// what the ledger sums to.
type MarkService interface {
	// RecordMark writes one ledger entry. A second call for the same
	// (sheet, question) pair overwrites the first.
	RecordMark(ctx context.Context, req *RecordMarkRequest, graderID string) (*models.QuestionMark, error)

	// TotalFor sums the ledger for a sheet.
	TotalFor(ctx context.Context, sheetID uint) (float64, error)

	// Ledger returns all entries for a sheet ordered by question number.
	Ledger(ctx context.Context, sheetID uint) ([]*models.QuestionMark, error)

	// ApplyCorrection overwrites one ledger entry and resyncs the sheet
	// totals through the given repository, which may be transaction bound.
	// Used by grievance resolution so the mark change and the status change
	// commit together.
	ApplyCorrection(ctx context.Context, repo repositories.Repository, sheetID uint, questionNumber int, updatedMarks float64, reviewerID string) error
}

type RecordMarkRequest struct {
	AnswerSheetID  uint    `json:"answer_sheet_id" validate:"required"`
	QuestionNumber int     `json:"question_number" validate:"required,gt=0"`
	ObtainedMarks  float64 `json:"obtained_marks" validate:"min=0"`
	Comments       *string `json:"comments" validate:"omitempty,max=2000"`
}

type markService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator
}

func NewMarkService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) MarkService {
	return &markService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "exam-service", Component: "marks"}),
		validator: v,
	}
}

// Authorization is per question via the grader's assignment. There is no
// sheet-level lock once grading completes: the assigned teacher may regrade
// their own questions at any time, and teachers assigned to other questions
// on the same sheet stay unaffected.
func (s *markService) RecordMark(ctx context.Context, req *RecordMarkRequest, graderID string) (mark *models.QuestionMark, err error) {
	s.logger.Info("Recording mark",
		"sheet_id", req.AnswerSheetID,
		"question", req.QuestionNumber,
		"grader_id", graderID)

	op := s.ops.WithOperation(ctx, "marks.record", graderID)
	defer func() { op.LogResult(req.AnswerSheetID, "answer_sheet", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sheet, err := s.repo.Sheet().GetByID(ctx, req.AnswerSheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	assignment, err := s.repo.Assignment().GetByExamAndTeacher(ctx, sheet.ExamID, graderID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewPermissionError(graderID, sheet.ID, "answer_sheet", "grade",
				"no assignment on this exam")
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if err := s.validator.Mark().ValidateQuestionNumber(assignment, req.QuestionNumber); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}

	marksMap, err := assignment.MarksMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode assignment marks: %w", err)
	}
	maxMarks := marksMap[req.QuestionNumber]
	if err := s.validator.Mark().ValidateMark(req.ObtainedMarks, maxMarks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarks, err)
	}

	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	mark = &models.QuestionMark{
		AnswerSheetID:  req.AnswerSheetID,
		QuestionNumber: req.QuestionNumber,
		MaxMarks:       maxMarks,
		ObtainedMarks:  req.ObtainedMarks,
		Comments:       req.Comments,
		GradedBy:       graderID,
		GradedAt:       time.Now(),
	}
	if err = txRepo.Mark().Upsert(ctx, mark); err != nil {
		return nil, fmt.Errorf("failed to save mark: %w", err)
	}

	if err = syncSheetWithLedger(ctx, txRepo, sheet); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Mark recorded",
		"sheet_id", req.AnswerSheetID,
		"question", req.QuestionNumber,
		"obtained", req.ObtainedMarks,
		"max", maxMarks)
	return mark, nil
}

func (s *markService) TotalFor(ctx context.Context, sheetID uint) (float64, error) {
	total, err := s.repo.Mark().SumForSheet(ctx, sheetID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return total, nil
}

func (s *markService) Ledger(ctx context.Context, sheetID uint) ([]*models.QuestionMark, error) {
	if _, err := s.repo.Sheet().GetByID(ctx, sheetID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	marks, err := s.repo.Mark().GetBySheet(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return marks, nil
}

func (s *markService) ApplyCorrection(ctx context.Context, repo repositories.Repository, sheetID uint, questionNumber int, updatedMarks float64, reviewerID string) error {
	mark, err := repo.Mark().Get(ctx, sheetID, questionNumber)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMarkNotFound
		}
		return fmt.Errorf("failed to get mark: %w", err)
	}

	if err := s.validator.Mark().ValidateMark(updatedMarks, mark.MaxMarks); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMarks, err)
	}

	mark.ObtainedMarks = updatedMarks
	mark.GradedBy = reviewerID
	mark.GradedAt = time.Now()
	if err := repo.Mark().Update(ctx, mark); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMarkNotFound
		}
		return fmt.Errorf("failed to update mark: %w", err)
	}

	sheet, err := repo.Sheet().GetByID(ctx, sheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSheetNotFound
		}
		return fmt.Errorf("failed to get answer sheet: %w", err)
	}
	return syncSheetWithLedger(ctx, repo, sheet)
}

// syncSheetWithLedger recomputes the sheet's obtained total and grading
// status from the ledger and persists the result.
func syncSheetWithLedger(ctx context.Context, repo repositories.Repository, sheet *models.AnswerSheet) error {
	total, err := repo.Mark().SumForSheet(ctx, sheet.ID)
	if err != nil {
		return fmt.Errorf("failed to sum ledger: %w", err)
	}
	count, err := repo.Mark().CountForSheet(ctx, sheet.ID)
	if err != nil {
		return fmt.Errorf("failed to count ledger: %w", err)
	}

	sheet.ObtainedMarks = total
	sheet.GradingStatus = models.DeriveStatus(int(count))
	if sheet.GradingStatus == models.GradingCompleted && sheet.GradedAt == nil {
		now := time.Now()
		sheet.GradedAt = &now
	}

	if err := repo.Sheet().Update(ctx, sheet); err != nil {
		return fmt.Errorf("failed to update answer sheet: %w", err)
	}
	return nil
}
