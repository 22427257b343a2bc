package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeQuestionsRoundTrip(t *testing.T) {
	qJSON, mJSON, err := EncodeQuestions([]int{3, 1, 2}, map[int]float64{1: 10, 2: 7.5, 3: 12})
	require.NoError(t, err)

	a := &ExamTeacherAssignment{
		AssignedQuestions: qJSON,
		MarksPerQuestion:  mJSON,
	}

	qs, err := a.QuestionSet()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, qs)

	marks, err := a.MarksMap()
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{1: 10, 2: 7.5, 3: 12}, marks)
}

func TestAssignmentCovers(t *testing.T) {
	qJSON, mJSON, err := EncodeQuestions([]int{4, 5}, map[int]float64{4: 5, 5: 5})
	require.NoError(t, err)

	a := &ExamTeacherAssignment{AssignedQuestions: qJSON, MarksPerQuestion: mJSON}

	assert.True(t, a.Covers(4))
	assert.True(t, a.Covers(5))
	assert.False(t, a.Covers(1))
	assert.False(t, a.Covers(6))
}

func TestEmptyAssignment(t *testing.T) {
	a := &ExamTeacherAssignment{}

	qs, err := a.QuestionSet()
	require.NoError(t, err)
	assert.Empty(t, qs)

	marks, err := a.MarksMap()
	require.NoError(t, err)
	assert.Empty(t, marks)

	assert.False(t, a.Covers(1))
}
