package models

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// ExamTeacherAssignment maps a teacher to the question range they grade on one
// exam. A teacher holds at most one assignment per exam; re-assigning replaces
// the question set. AssignedQuestions and the keys of MarksPerQuestion are the
// same set.
type ExamTeacherAssignment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_assign_exam_teacher" validate:"required"`
	TeacherID string `json:"teacher_id" gorm:"not null;size:255;uniqueIndex:idx_assign_exam_teacher" validate:"required"`

	AssignedQuestions datatypes.JSON `json:"assigned_questions" gorm:"type:jsonb;not null"` // []int
	MarksPerQuestion  datatypes.JSON `json:"marks_per_question" gorm:"type:jsonb;not null"` // map[question]maxMarks

	AssignedBy string    `json:"assigned_by" gorm:"size:255"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Exam    Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	Teacher User `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

func (ExamTeacherAssignment) TableName() string {
	return "exam_teacher_assignments"
}

// QuestionSet decodes the assigned question numbers, sorted ascending.
func (a *ExamTeacherAssignment) QuestionSet() ([]int, error) {
	var qs []int
	if len(a.AssignedQuestions) > 0 {
		if err := json.Unmarshal(a.AssignedQuestions, &qs); err != nil {
			return nil, err
		}
	}
	sort.Ints(qs)
	return qs, nil
}

// MarksMap decodes the per-question maximum marks. JSON object keys are
// strings, so question numbers are re-parsed into ints.
func (a *ExamTeacherAssignment) MarksMap() (map[int]float64, error) {
	raw := map[string]float64{}
	if len(a.MarksPerQuestion) > 0 {
		if err := json.Unmarshal(a.MarksPerQuestion, &raw); err != nil {
			return nil, err
		}
	}
	marks := make(map[int]float64, len(raw))
	for k, v := range raw {
		q, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		marks[q] = v
	}
	return marks, nil
}

// Covers reports whether questionNumber is part of this assignment.
func (a *ExamTeacherAssignment) Covers(questionNumber int) bool {
	qs, err := a.QuestionSet()
	if err != nil {
		return false
	}
	for _, q := range qs {
		if q == questionNumber {
			return true
		}
	}
	return false
}

// EncodeQuestions builds the jsonb columns from typed values.
func EncodeQuestions(questions []int, marksPerQuestion map[int]float64) (datatypes.JSON, datatypes.JSON, error) {
	sorted := append([]int(nil), questions...)
	sort.Ints(sorted)

	qBytes, err := json.Marshal(sorted)
	if err != nil {
		return nil, nil, err
	}

	raw := make(map[string]float64, len(marksPerQuestion))
	for q, m := range marksPerQuestion {
		raw[strconv.Itoa(q)] = m
	}
	mBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, err
	}

	return qBytes, mBytes, nil
}
