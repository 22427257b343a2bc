package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

func TestRecordMark(t *testing.T) {
	ctx := context.Background()

	t.Run("records a mark and resyncs the sheet", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		svc := env.marks()

		sheet := &models.AnswerSheet{
			StudentID:     "s1",
			ExamID:        exam.ID,
			FileKey:       "sheets/fresh.pdf",
			TotalMarks:    exam.TotalMarks,
			GradingStatus: models.GradingPending,
		}
		require.NoError(t, env.repo.Sheet().Create(ctx, sheet))

		mark, err := svc.RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 1,
			ObtainedMarks:  9,
		}, "t1")
		require.NoError(t, err)

		assert.Equal(t, 10.0, mark.MaxMarks)
		assert.Equal(t, "t1", mark.GradedBy)

		stored, err := env.repo.Sheet().GetByID(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, 9.0, stored.ObtainedMarks)
		assert.Equal(t, models.GradingCompleted, stored.GradingStatus)
		assert.NotNil(t, stored.GradedAt)
	})

	t.Run("a second mark for the same question overwrites the first", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)
		svc := env.marks()

		_, err := svc.RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 2,
			ObtainedMarks:  4,
		}, "t1")
		require.NoError(t, err)

		ledger, err := svc.Ledger(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Len(t, ledger, 3)

		stored, err := env.repo.Sheet().GetByID(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, 18.0, stored.ObtainedMarks) // 6 + 4 + 8

		total, err := svc.TotalFor(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, stored.ObtainedMarks, total)
	})

	t.Run("grader without an assignment is refused", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)

		_, err := env.marks().RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 1,
			ObtainedMarks:  5,
		}, "t9")

		var pe *PermissionError
		assert.ErrorAs(t, err, &pe)
	})

	t.Run("question outside the assignment is refused", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)

		_, err := env.marks().RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 7,
			ObtainedMarks:  5,
		}, "t1")
		assert.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("marks above the question maximum are refused", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)

		_, err := env.marks().RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 1,
			ObtainedMarks:  10.5,
		}, "t1")
		assert.ErrorIs(t, err, ErrInvalidMarks)
	})

	t.Run("a failed ledger write leaves the sheet untouched", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)
		env.repo.markUpsertErr = errors.New("connection reset")

		_, err := env.marks().RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  sheet.ID,
			QuestionNumber: 1,
			ObtainedMarks:  3,
		}, "t1")
		require.Error(t, err)

		stored, err2 := env.repo.Sheet().GetByID(ctx, sheet.ID)
		require.NoError(t, err2)
		assert.Equal(t, 21.0, stored.ObtainedMarks)

		env.repo.markUpsertErr = nil
		mark, err2 := env.repo.Mark().Get(ctx, sheet.ID, 1)
		require.NoError(t, err2)
		assert.Equal(t, 6.0, mark.ObtainedMarks)
	})

	t.Run("missing sheet is reported as such", func(t *testing.T) {
		env := newTestEnv()
		env.seedGradedSheet(t)

		_, err := env.marks().RecordMark(ctx, &RecordMarkRequest{
			AnswerSheetID:  999,
			QuestionNumber: 1,
			ObtainedMarks:  5,
		}, "t1")
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})
}

func TestApplyCorrection(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites the entry and resyncs totals", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)
		svc := env.marks()

		err := svc.ApplyCorrection(ctx, env.repo, sheet.ID, 3, 10, "t1")
		require.NoError(t, err)

		stored, err := env.repo.Sheet().GetByID(ctx, sheet.ID)
		require.NoError(t, err)
		assert.Equal(t, 23.0, stored.ObtainedMarks) // 6 + 7 + 10
	})

	t.Run("refuses corrections above the stored maximum", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)

		err := env.marks().ApplyCorrection(ctx, env.repo, sheet.ID, 3, 12, "t1")
		assert.ErrorIs(t, err, ErrInvalidMarks)
	})

	t.Run("refuses corrections for a question never graded", func(t *testing.T) {
		env := newTestEnv()
		_, sheet := env.seedGradedSheet(t)

		err := env.marks().ApplyCorrection(ctx, env.repo, sheet.ID, 8, 5, "t1")
		assert.ErrorIs(t, err, ErrMarkNotFound)
	})
}
