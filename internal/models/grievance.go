package models

import (
	"time"
)

type GrievanceStatus string

const (
	GrievancePending     GrievanceStatus = "pending"
	GrievanceUnderReview GrievanceStatus = "under_review"
	GrievanceResolved    GrievanceStatus = "resolved"
	GrievanceRejected    GrievanceStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s GrievanceStatus) IsTerminal() bool {
	return s == GrievanceResolved || s == GrievanceRejected
}

var grievanceTransitions = map[GrievanceStatus][]GrievanceStatus{
	GrievancePending:     {GrievanceUnderReview, GrievanceResolved, GrievanceRejected},
	GrievanceUnderReview: {GrievanceResolved, GrievanceRejected},
}

// CanTransitionTo implements the grievance state machine:
// pending -> under_review -> {resolved, rejected}; resolve/reject are also
// legal straight from pending; terminal states are absorbing.
func (s GrievanceStatus) CanTransitionTo(next GrievanceStatus) bool {
	for _, allowed := range grievanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Grievance is a student's dispute over the marks for one question on one
// answer sheet. CurrentMarks snapshots the ledger value at submission time and
// is immutable afterwards; it preserves the basis of the dispute even if the
// sheet is later regraded. Version backs the optimistic check that keeps a
// terminal transition from being applied twice.
type Grievance struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	StudentID     string `json:"student_id" gorm:"not null;size:255;index" validate:"required"`
	AnswerSheetID uint   `json:"answer_sheet_id" gorm:"not null;index" validate:"required"`

	QuestionNumber    int     `json:"question_number" gorm:"not null" validate:"required,gt=0"`
	SubQuestionNumber *string `json:"sub_question_number" gorm:"size:10"`
	GrievanceText     string  `json:"grievance_text" gorm:"type:text;not null" validate:"required,min=10,max=2000"`

	CurrentMarks float64  `json:"current_marks" gorm:"not null"`
	UpdatedMarks *float64 `json:"updated_marks"`

	Status     GrievanceStatus `json:"status" gorm:"default:pending;index"`
	TeacherID  string          `json:"teacher_id" gorm:"not null;size:255;index"`
	ReviewerID *string         `json:"reviewer_id" gorm:"size:255"`

	TeacherResponse *string    `json:"teacher_response" gorm:"type:text"`
	SubmissionDate  time.Time  `json:"submission_date"`
	ReviewedAt      *time.Time `json:"reviewed_at"`

	Version int `json:"version" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student     User        `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	AnswerSheet AnswerSheet `json:"answer_sheet,omitempty" gorm:"foreignKey:AnswerSheetID"`
	Reviewer    *User       `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}

func (Grievance) TableName() string {
	return "grievances"
}
