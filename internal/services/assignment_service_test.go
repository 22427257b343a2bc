package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyarthi-portal/exam-service/internal/models"
)

func (e *testEnv) assignments() AssignmentService {
	return NewAssignmentService(e.repo, e.publisher, e.logger, e.validator)
}

func TestAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips through the authorized question set", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "t2", models.RoleTeacher)
		svc := env.assignments()

		_, err := svc.Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t2",
			Questions:        []int{5, 4},
			MarksPerQuestion: map[int]float64{4: 5, 5: 5},
		}, "controller-1")
		require.NoError(t, err)

		qs, err := svc.AuthorizedQuestions(ctx, exam.ID, "t2")
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5}, qs) // sorted ascending
	})

	t.Run("re-assigning a teacher replaces the question set", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		svc := env.assignments()

		_, err := svc.Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t1",
			Questions:        []int{1, 2},
			MarksPerQuestion: map[int]float64{1: 10, 2: 10},
		}, "controller-1")
		require.NoError(t, err)

		qs, err := svc.AuthorizedQuestions(ctx, exam.ID, "t1")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, qs)
	})

	t.Run("rejects overlap with another teacher", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "t2", models.RoleTeacher)

		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t2",
			Questions:        []int{3, 4},
			MarksPerQuestion: map[int]float64{3: 10, 4: 10},
		}, "controller-1")
		assert.ErrorIs(t, err, ErrAssignmentOverlap)
	})

	t.Run("rejects an incomplete marks map", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "t2", models.RoleTeacher)

		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t2",
			Questions:        []int{4, 5},
			MarksPerQuestion: map[int]float64{4: 5},
		}, "controller-1")

		var bre *BusinessRuleError
		require.ErrorAs(t, err, &bre)
		assert.Equal(t, "marks_per_question_complete", bre.Rule)
	})

	t.Run("rejects marks that exceed the exam total", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)
		env.seedUser(t, "t2", models.RoleTeacher)

		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "t2",
			Questions:        []int{4},
			MarksPerQuestion: map[int]float64{4: 500},
		}, "controller-1")
		assert.ErrorIs(t, err, ErrMarksExceedTotal)
	})

	t.Run("rejects a non-teacher assignee", func(t *testing.T) {
		env := newTestEnv()
		exam, _ := env.seedGradedSheet(t)

		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           exam.ID,
			TeacherID:        "s1",
			Questions:        []int{4},
			MarksPerQuestion: map[int]float64{4: 5},
		}, "controller-1")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("rejects an unknown exam", func(t *testing.T) {
		env := newTestEnv()
		env.seedGradedSheet(t)

		_, err := env.assignments().Assign(ctx, &AssignRequest{
			ExamID:           999,
			TeacherID:        "t1",
			Questions:        []int{1},
			MarksPerQuestion: map[int]float64{1: 5},
		}, "controller-1")
		assert.ErrorIs(t, err, ErrExamNotFound)
	})
}

func TestRemoveAssignment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	exam, _ := env.seedGradedSheet(t)
	svc := env.assignments()

	require.NoError(t, svc.Remove(ctx, exam.ID, "t1", "controller-1"))

	_, err := svc.AuthorizedQuestions(ctx, exam.ID, "t1")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)

	err = svc.Remove(ctx, exam.ID, "t1", "controller-1")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}
