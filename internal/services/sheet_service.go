package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/repositories"
	"github.com/vidyarthi-portal/exam-service/internal/storage"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

// SheetService manages scanned answer sheets: upload, grading and
// annotations. Sheet files live in the object store; the database only holds
// the file key.
type SheetService interface {
	RegisterUpload(ctx context.Context, req *UploadSheetRequest, uploadedBy string) (*models.AnswerSheet, error)
	Get(ctx context.Context, id uint, requesterID string, requesterRole models.UserRole) (*SheetResponse, error)
	List(ctx context.Context, filters repositories.SheetFilters) ([]*models.AnswerSheet, int64, error)

	// Grade records marks for several questions at once. All entries commit
	// together; a single invalid entry rejects the whole batch.
	Grade(ctx context.Context, req *GradeSheetRequest, graderID string) (*models.AnswerSheet, error)

	// Annotations are advisory notes on the scanned pages and never change marks.
	AddAnnotation(ctx context.Context, req *AddAnnotationRequest, createdBy string) (*models.Annotation, error)
	ListAnnotations(ctx context.Context, sheetID uint) ([]*models.Annotation, error)
}

type UploadSheetRequest struct {
	ExamID      uint      `json:"exam_id" validate:"required"`
	StudentID   string    `json:"student_id" validate:"required"`
	File        io.Reader `json:"-" validate:"required"`
	FileSize    int64     `json:"-" validate:"required,gt=0"`
	ContentType string    `json:"-"`
}

type GradeSheetRequest struct {
	AnswerSheetID uint             `json:"answer_sheet_id" validate:"required"`
	Marks         []GradeMarkEntry `json:"marks" validate:"required,min=1,dive"`
	Remarks       *string          `json:"remarks" validate:"omitempty,max=2000"`
}

type GradeMarkEntry struct {
	QuestionNumber int     `json:"question_number" validate:"required,gt=0"`
	ObtainedMarks  float64 `json:"obtained_marks" validate:"min=0"`
	Comments       *string `json:"comments" validate:"omitempty,max=2000"`
}

type AddAnnotationRequest struct {
	AnswerSheetID uint                  `json:"answer_sheet_id" validate:"required"`
	PageNumber    int                   `json:"page_number" validate:"required,gt=0"`
	X             float64               `json:"x"`
	Y             float64               `json:"y"`
	Type          models.AnnotationType `json:"type" validate:"required,annotation_type"`
	Content       string                `json:"content" validate:"max=2000"`
	Color         string                `json:"color" validate:"omitempty,max=20"`
}

// SheetResponse augments the stored sheet with a presigned download link.
type SheetResponse struct {
	*models.AnswerSheet
	FileURL string `json:"file_url,omitempty"`
}

const sheetFileURLTTL = 15 * time.Minute

type sheetService struct {
	repo      repositories.Repository
	store     storage.ObjectStore
	marks     MarkService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSheetService(
	repo repositories.Repository,
	store storage.ObjectStore,
	marks MarkService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) SheetService {
	return &sheetService{
		repo:      repo,
		store:     store,
		marks:     marks,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *sheetService) RegisterUpload(ctx context.Context, req *UploadSheetRequest, uploadedBy string) (*models.AnswerSheet, error) {
	s.logger.Info("Registering answer sheet upload",
		"exam_id", req.ExamID,
		"student_id", req.StudentID,
		"uploaded_by", uploadedBy)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exam, err := s.repo.Exam().GetByID(ctx, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	enrolled, err := s.repo.Enrollment().Exists(ctx, req.ExamID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrStudentNotEnrolled
	}

	existing, err := s.repo.Sheet().GetByExamAndStudent(ctx, req.ExamID, req.StudentID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing sheet: %w", err)
	}
	if existing != nil {
		return nil, ErrSheetAlreadyExists
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	fileKey := fmt.Sprintf("sheets/%d/%s/%s.pdf", req.ExamID, req.StudentID, uuid.NewString())
	if err := s.store.Upload(ctx, fileKey, req.File, req.FileSize, contentType); err != nil {
		return nil, fmt.Errorf("failed to store sheet file: %w", err)
	}

	sheet := &models.AnswerSheet{
		StudentID:     req.StudentID,
		ExamID:        req.ExamID,
		FileKey:       fileKey,
		UploadDate:    time.Now(),
		GradingStatus: models.GradingPending,
		TotalMarks:    exam.TotalMarks,
	}
	if err := s.repo.Sheet().Create(ctx, sheet); err != nil {
		// The row is the source of truth; an orphan object is only noise
		if removeErr := s.store.Remove(ctx, fileKey); removeErr != nil {
			s.logger.Warn("Failed to remove orphaned sheet file", "file_key", fileKey, "error", removeErr)
		}
		return nil, fmt.Errorf("failed to create answer sheet: %w", err)
	}

	event := events.NewEvent(events.EventSheetUploaded, events.SheetUploadedEvent{
		AnswerSheetID: sheet.ID,
		ExamID:        sheet.ExamID,
		StudentID:     sheet.StudentID,
		FileKey:       sheet.FileKey,
		UploadedAt:    sheet.UploadDate,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish sheet uploaded event", "sheet_id", sheet.ID, "error", err)
	}

	s.logger.Info("Answer sheet registered", "sheet_id", sheet.ID, "file_key", fileKey)
	return sheet, nil
}

func (s *sheetService) Get(ctx context.Context, id uint, requesterID string, requesterRole models.UserRole) (*SheetResponse, error) {
	sheet, err := s.repo.Sheet().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	// Students may only see their own sheets
	if requesterRole == models.RoleStudent && sheet.StudentID != requesterID {
		return nil, ErrSheetAccessDenied
	}

	fileURL, err := s.store.PresignedGetURL(ctx, sheet.FileKey, sheetFileURLTTL)
	if err != nil {
		s.logger.Warn("Failed to presign sheet file", "sheet_id", id, "error", err)
		fileURL = ""
	}

	return &SheetResponse{AnswerSheet: sheet, FileURL: fileURL}, nil
}

func (s *sheetService) List(ctx context.Context, filters repositories.SheetFilters) ([]*models.AnswerSheet, int64, error) {
	sheets, total, err := s.repo.Sheet().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list answer sheets: %w", err)
	}
	return sheets, total, nil
}

func (s *sheetService) Grade(ctx context.Context, req *GradeSheetRequest, graderID string) (*models.AnswerSheet, error) {
	s.logger.Info("Grading answer sheet",
		"sheet_id", req.AnswerSheetID,
		"entry_count", len(req.Marks),
		"grader_id", graderID)

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
	marksMap, err := assignment.MarksMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode assignment marks: %w", err)
	}

	// Validate the whole batch before touching the ledger
	for _, entry := range req.Marks {
		if err := s.validator.Mark().ValidateQuestionNumber(assignment, entry.QuestionNumber); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
		}
		if err := s.validator.Mark().ValidateMark(entry.ObtainedMarks, marksMap[entry.QuestionNumber]); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidMarks, entry.QuestionNumber, err)
		}
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

	now := time.Now()
	for _, entry := range req.Marks {
		mark := &models.QuestionMark{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: entry.QuestionNumber,
			MaxMarks:       marksMap[entry.QuestionNumber],
			ObtainedMarks:  entry.ObtainedMarks,
			Comments:       entry.Comments,
			GradedBy:       graderID,
			GradedAt:       now,
		}
		if err = txRepo.Mark().Upsert(ctx, mark); err != nil {
			return nil, fmt.Errorf("failed to save mark for question %d: %w", entry.QuestionNumber, err)
		}
	}

	sheet.GradedBy = &graderID
	if req.Remarks != nil {
		sheet.Remarks = req.Remarks
	}
	if err = syncSheetWithLedger(ctx, txRepo, sheet); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if sheet.GradingStatus == models.GradingCompleted {
		event := events.NewSheetGradedEvent(sheet.ID, sheet.ExamID, sheet.StudentID, graderID,
			sheet.ObtainedMarks, sheet.TotalMarks)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish sheet graded event", "sheet_id", sheet.ID, "error", err)
		}
	}

	s.logger.Info("Answer sheet graded",
		"sheet_id", sheet.ID,
		"obtained", sheet.ObtainedMarks,
		"total", sheet.TotalMarks,
		"status", sheet.GradingStatus)
	return sheet, nil
}

func (s *sheetService) AddAnnotation(ctx context.Context, req *AddAnnotationRequest, createdBy string) (*models.Annotation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.Sheet().GetByID(ctx, req.AnswerSheetID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	color := req.Color
	if color == "" {
		color = "#000000"
	}

	annotation := &models.Annotation{
		AnswerSheetID: req.AnswerSheetID,
		PageNumber:    req.PageNumber,
		X:             req.X,
		Y:             req.Y,
		Type:          req.Type,
		Content:       req.Content,
		Color:         color,
		CreatedBy:     createdBy,
	}
	if err := s.repo.Annotation().Create(ctx, annotation); err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}

	s.logger.Info("Annotation added", "sheet_id", req.AnswerSheetID, "page", req.PageNumber, "type", req.Type)
	return annotation, nil
}

func (s *sheetService) ListAnnotations(ctx context.Context, sheetID uint) ([]*models.Annotation, error) {
	if _, err := s.repo.Sheet().GetByID(ctx, sheetID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	annotations, err := s.repo.Annotation().GetBySheet(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	return annotations, nil
}
