package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyarthi-portal/exam-service/internal/events"
	"github.com/vidyarthi-portal/exam-service/internal/models"
)

// fakeStore is an in-memory object store. uploadErr injects upload failures.
type fakeStore struct {
	objects   map[string][]byte
	uploadErr error
	removed   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("object not found")
	}
	return "https://store.local/" + key, nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

func (e *testEnv) sheetsWithStore(store *fakeStore) SheetService {
	return NewSheetService(e.repo, store, e.marks(), e.publisher, e.logger, e.validator)
}

func TestRegisterUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the file and creates the sheet", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "s2", models.RoleStudent)
		require.NoError(t, env.repo.Enrollment().Create(ctx, &models.ExamEnrollment{
			ExamID: exam.ID, StudentID: "s2",
		}))

		store := newFakeStore()
		svc := env.sheetsWithStore(store)

		sheet, err := svc.RegisterUpload(ctx, &UploadSheetRequest{
			ExamID:    exam.ID,
			StudentID: "s2",
			File:      strings.NewReader("%PDF-1.7 fake"),
			FileSize:  13,
		}, "controller-1")
		require.NoError(t, err)

		assert.Equal(t, models.GradingPending, sheet.GradingStatus)
		assert.Equal(t, exam.TotalMarks, sheet.TotalMarks)
		assert.Contains(t, store.objects, sheet.FileKey)
		assert.Contains(t, env.eventTypes(), events.EventSheetUploaded)
	})

	t.Run("refuses a student who is not enrolled", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		svc := env.sheetsWithStore(newFakeStore())

		_, err := svc.RegisterUpload(ctx, &UploadSheetRequest{
			ExamID:    exam.ID,
			StudentID: "s2",
			File:      strings.NewReader("pdf"),
			FileSize:  3,
		}, "controller-1")
		assert.ErrorIs(t, err, ErrStudentNotEnrolled)
	})

	t.Run("refuses a duplicate upload for the same student", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		svc := env.sheetsWithStore(newFakeStore())

		_, err := svc.RegisterUpload(ctx, &UploadSheetRequest{
			ExamID:    exam.ID,
			StudentID: "s1",
			File:      strings.NewReader("pdf"),
			FileSize:  3,
		}, "controller-1")
		assert.ErrorIs(t, err, ErrSheetAlreadyExists)
	})

	t.Run("removes the orphaned object when the row cannot be written", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "s2", models.RoleStudent)
		require.NoError(t, env.repo.Enrollment().Create(ctx, &models.ExamEnrollment{
			ExamID: exam.ID, StudentID: "s2",
		}))

		env.repo.sheetCreateErr = errors.New("insert failed")
		store := newFakeStore()
		svc := env.sheetsWithStore(store)

		_, err := svc.RegisterUpload(ctx, &UploadSheetRequest{
			ExamID:    exam.ID,
			StudentID: "s2",
			File:      strings.NewReader("%PDF-1.7 fake"),
			FileSize:  13,
		}, "controller-1")
		require.Error(t, err)
		assert.Len(t, store.removed, 1)
		assert.Empty(t, store.objects)
	})
}

func TestGetSheet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, sheet := env.seedGradedSheet(t)
	store := newFakeStore()
	store.objects[sheet.FileKey] = []byte("pdf")
	svc := env.sheetsWithStore(store)

	t.Run("owner receives a presigned link", func(t *testing.T) {
		resp, err := svc.Get(ctx, sheet.ID, "s1", models.RoleStudent)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.FileURL)
		assert.Equal(t, sheet.ID, resp.AnswerSheet.ID)
	})

	t.Run("another student is refused", func(t *testing.T) {
		_, err := svc.Get(ctx, sheet.ID, "s2", models.RoleStudent)
		assert.ErrorIs(t, err, ErrSheetAccessDenied)
	})

	t.Run("teachers read any sheet", func(t *testing.T) {
		_, err := svc.Get(ctx, sheet.ID, "t1", models.RoleTeacher)
		assert.NoError(t, err)
	})
}

func TestGradeSheet(t *testing.T) {
	ctx := context.Background()

	t.Run("commits the whole batch and publishes a graded event", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)

		fresh := &models.AnswerSheet{
			StudentID:     "s1",
			ExamID:        exam.ID,
			FileKey:       "sheets/fresh.pdf",
			TotalMarks:    exam.TotalMarks,
			GradingStatus: models.GradingPending,
		}
		require.NoError(t, env.repo.Sheet().Create(ctx, fresh))

		svc := env.sheetsWithStore(newFakeStore())
		graded, err := svc.Grade(ctx, &GradeSheetRequest{
			AnswerSheetID: fresh.ID,
			Marks: []GradeMarkEntry{
				{QuestionNumber: 1, ObtainedMarks: 8},
				{QuestionNumber: 2, ObtainedMarks: 5},
				{QuestionNumber: 3, ObtainedMarks: 9},
			},
		}, "t1")
		require.NoError(t, err)

		assert.Equal(t, models.GradingCompleted, graded.GradingStatus)
		assert.Equal(t, 22.0, graded.ObtainedMarks)
		require.NotNil(t, graded.GradedBy)
		assert.Equal(t, "t1", *graded.GradedBy)
		assert.Contains(t, env.eventTypes(), events.EventSheetGraded)
	})

	t.Run("one bad entry rejects the whole batch", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)

		fresh := &models.AnswerSheet{
			StudentID:     "s1",
			ExamID:        exam.ID,
			FileKey:       "sheets/fresh.pdf",
			TotalMarks:    exam.TotalMarks,
			GradingStatus: models.GradingPending,
		}
		require.NoError(t, env.repo.Sheet().Create(ctx, fresh))

		svc := env.sheetsWithStore(newFakeStore())
		_, err := svc.Grade(ctx, &GradeSheetRequest{
			AnswerSheetID: fresh.ID,
			Marks: []GradeMarkEntry{
				{QuestionNumber: 1, ObtainedMarks: 8},
				{QuestionNumber: 2, ObtainedMarks: 11}, // above the maximum
			},
		}, "t1")
		assert.ErrorIs(t, err, ErrInvalidMarks)

		count, err2 := env.repo.Mark().CountForSheet(ctx, fresh.ID)
		require.NoError(t, err2)
		assert.Zero(t, count)

		stored, err2 := env.repo.Sheet().GetByID(ctx, fresh.ID)
		require.NoError(t, err2)
		assert.Equal(t, models.GradingPending, stored.GradingStatus)
	})

	t.Run("grader without an assignment is refused", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)
		svc := env.sheetsWithStore(newFakeStore())

		_, err := svc.Grade(ctx, &GradeSheetRequest{
			AnswerSheetID: sheet.ID,
			Marks:         []GradeMarkEntry{{QuestionNumber: 1, ObtainedMarks: 5}},
		}, "t9")

		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestAnnotations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	_, sheet := env.seedGradedSheet(t)
	svc := env.sheetsWithStore(newFakeStore())

	first, err := svc.AddAnnotation(ctx, &AddAnnotationRequest{
		AnswerSheetID: sheet.ID,
		PageNumber:    1,
		X:             10,
		Y:             20,
		Type:          models.AnnotationComment,
		Content:       "check working on the margin",
	}, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", first.CreatedBy)

	_, err = svc.AddAnnotation(ctx, &AddAnnotationRequest{
		AnswerSheetID: sheet.ID,
		PageNumber:    2,
		Type:          models.AnnotationHighlight,
	}, "t1")
	require.NoError(t, err)

	list, err := svc.ListAnnotations(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.AddAnnotation(ctx, &AddAnnotationRequest{
		AnswerSheetID: 999,
		PageNumber:    1,
		Type:          models.AnnotationMark,
	}, "t1")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}
