package models

import (
	"time"

	"gorm.io/gorm"
)

type GradingStatus string

const (
	GradingPending   GradingStatus = "pending"
	GradingCompleted GradingStatus = "completed"
)

// AnswerSheet is one student's scanned submission for one exam. The sheet
// never stores PDF bytes, only the object-store key. ObtainedMarks is the sum
// of the sheet's QuestionMark entries and mutates only through grading or a
// resolved grievance.
type AnswerSheet struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;size:255;index" validate:"required"`
	ExamID    uint   `json:"exam_id" gorm:"not null;index" validate:"required"`

	FileKey    string    `json:"file_key" gorm:"not null;size:500" validate:"required"`
	UploadDate time.Time `json:"upload_date"`

	GradingStatus GradingStatus `json:"grading_status" gorm:"default:pending;index"`
	GradedBy      *string       `json:"graded_by" gorm:"size:255"`
	GradedAt      *time.Time    `json:"graded_at"`

	TotalMarks    float64 `json:"total_marks" gorm:"not null"`
	ObtainedMarks float64 `json:"obtained_marks" gorm:"default:0"`
	Remarks       *string `json:"remarks" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Student       User           `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Exam          Exam           `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	QuestionMarks []QuestionMark `json:"question_marks,omitempty" gorm:"foreignKey:AnswerSheetID;constraint:OnDelete:CASCADE"`
	Annotations   []Annotation   `json:"annotations,omitempty" gorm:"foreignKey:AnswerSheetID;constraint:OnDelete:CASCADE"`
}

func (AnswerSheet) TableName() string {
	return "answer_sheets"
}

// DeriveStatus is the pure status rule: a sheet with ledger entries counts as
// completed, one without is pending.
func DeriveStatus(markCount int) GradingStatus {
	if markCount > 0 {
		return GradingCompleted
	}
	return GradingPending
}

// QuestionMark is one ledger entry: the marks awarded for one question on one
// sheet. Keyed by (answer_sheet_id, question_number); regrading overwrites.
type QuestionMark struct {
	ID             uint `json:"id" gorm:"primaryKey"`
	AnswerSheetID  uint `json:"answer_sheet_id" gorm:"not null;uniqueIndex:idx_mark_sheet_question" validate:"required"`
	QuestionNumber int  `json:"question_number" gorm:"not null;uniqueIndex:idx_mark_sheet_question" validate:"required,gt=0"`

	MaxMarks      float64 `json:"max_marks" gorm:"not null" validate:"required,gt=0"`
	ObtainedMarks float64 `json:"obtained_marks" gorm:"not null" validate:"min=0"`
	Comments      *string `json:"comments" gorm:"type:text"`

	GradedBy string    `json:"graded_by" gorm:"not null;size:255"`
	GradedAt time.Time `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuestionMark) TableName() string {
	return "answer_sheet_questions"
}

type AnnotationType string

const (
	AnnotationMark      AnnotationType = "mark"
	AnnotationComment   AnnotationType = "comment"
	AnnotationHighlight AnnotationType = "highlight"
)

// Annotation is an append-only visual note on a sheet page. Annotations are
// advisory and never feed into marks.
type Annotation struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	AnswerSheetID uint `json:"answer_sheet_id" gorm:"not null;index" validate:"required"`
	PageNumber    int  `json:"page_number" gorm:"not null" validate:"required,gt=0"`

	X float64 `json:"x" gorm:"column:x_position;not null"`
	Y float64 `json:"y" gorm:"column:y_position;not null"`

	Type    AnnotationType `json:"type" gorm:"column:annotation_type;not null;size:20" validate:"required,oneof=mark comment highlight"`
	Content string         `json:"content" gorm:"type:text"`
	Color   string         `json:"color" gorm:"size:20;default:#000000"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
}

func (Annotation) TableName() string {
	return "answer_sheet_annotations"
}
