package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
	"github.com/vidyarthi-portal/exam-service/internal/validator"
)

type testEnv struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		repo:      newFakeRepo(),
		publisher: events.NewMockEventPublisher(logger),
		logger:    logger,
		validator: validator.New(),
	}
}

func (e *testEnv) marks() MarkService {
	return NewMarkService(e.repo, e.publisher, e.logger, e.validator)
}

func (e *testEnv) grievances() GrievanceService {
	return NewGrievanceService(e.repo, e.marks(), e.publisher, e.logger, e.validator)
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// seedGradedSheet builds a complete grading scenario: an exam with teacher
// "t1" assigned questions 1-3 at 10 marks each, and a completed sheet for
// student "s1" scored 6, 7 and 8.
func (e *testEnv) seedGradedSheet(t *testing.T) (*models.Exam, *models.AnswerSheet) {
	t.Helper()
	ctx := context.Background()

	dep := &models.Department{Name: "Computer Science", Code: "CS"}
	if err := e.repo.Department().Create(ctx, dep); err != nil {
		t.Fatalf("seed department: %v", err)
	}
	sub := &models.Subject{Name: "Algorithms", Code: "CS301", DepartmentID: dep.ID}
	if err := e.repo.Subject().Create(ctx, sub); err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	exam := &models.Exam{
		Name:       "Algorithms Midterm",
		SubjectID:  sub.ID,
		Date:       time.Now().Add(-48 * time.Hour),
		Duration:   180,
		TotalMarks: 30,
		CreatedBy:  "controller-1",
	}
	if err := e.repo.Exam().Create(ctx, exam); err != nil {
		t.Fatalf("seed exam: %v", err)
	}

	e.seedUser(t, "t1", models.RoleTeacher)
	e.seedUser(t, "s1", models.RoleStudent)

	if err := e.repo.Enrollment().Create(ctx, &models.ExamEnrollment{
		ExamID:    exam.ID,
		StudentID: "s1",
	}); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}

	e.seedAssignment(t, exam.ID, "t1", []int{1, 2, 3}, map[int]float64{1: 10, 2: 10, 3: 10})

	sheet := &models.AnswerSheet{
		StudentID:     "s1",
		ExamID:        exam.ID,
		FileKey:       "sheets/test.pdf",
		UploadDate:    time.Now(),
		TotalMarks:    exam.TotalMarks,
		GradingStatus: models.GradingPending,
	}
	if err := e.repo.Sheet().Create(ctx, sheet); err != nil {
		t.Fatalf("seed sheet: %v", err)
	}

	for q, obtained := range map[int]float64{1: 6, 2: 7, 3: 8} {
		if err := e.repo.Mark().Upsert(ctx, &models.QuestionMark{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: q,
			MaxMarks:       10,
			ObtainedMarks:  obtained,
			GradedBy:       "t1",
			GradedAt:       time.Now(),
		}); err != nil {
			t.Fatalf("seed mark q%d: %v", q, err)
		}
	}

	sheet.ObtainedMarks = 21
	sheet.GradingStatus = models.GradingCompleted
	now := time.Now()
	sheet.GradedAt = &now
	sheet.GradedBy = strPtr("t1")
	if err := e.repo.Sheet().Update(ctx, sheet); err != nil {
		t.Fatalf("seed sheet status: %v", err)
	}
	return exam, sheet
}

func (e *testEnv) seedUser(t *testing.T, id string, role models.UserRole) {
	t.Helper()
	if err := e.repo.User().Upsert(context.Background(), &models.User{
		ID:       id,
		FullName: "User " + id,
		Email:    id + "@example.edu",
		Role:     role,
		IsActive: true,
	}); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func (e *testEnv) seedAssignment(t *testing.T, examID uint, teacherID string, questions []int, marks map[int]float64) {
	t.Helper()
	qJSON, mJSON, err := models.EncodeQuestions(questions, marks)
	if err != nil {
		t.Fatalf("encode questions: %v", err)
	}
	if err := e.repo.Assignment().Upsert(context.Background(), &models.ExamTeacherAssignment{
		ExamID:            examID,
		TeacherID:         teacherID,
		AssignedQuestions: qJSON,
		MarksPerQuestion:  mJSON,
		AssignedBy:        "controller-1",
	}); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
}

func (e *testEnv) eventTypes() []events.EventType {
	var out []events.EventType
	for _, ev := range e.publisher.GetPublishedEvents() {
		out = append(out, ev.Type)
	}
	return out
}
