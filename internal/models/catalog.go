package models

import (
	"time"

	"gorm.io/gorm"
)

type Department struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`
	Code string `json:"code" gorm:"uniqueIndex;not null;size:20" validate:"required,min=1,max=20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subjects []Subject `json:"subjects,omitempty" gorm:"foreignKey:DepartmentID"`
}

type Subject struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	Code         string `json:"code" gorm:"not null;size:20;uniqueIndex" validate:"required,min=1,max=20"`
	DepartmentID uint   `json:"department_id" gorm:"not null;index" validate:"required"`
	Semester     string `json:"semester" gorm:"size:20" validate:"omitempty,max=20"`
	Credits      int    `json:"credits" gorm:"default:0" validate:"min=0,max=10"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Department Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
}

type Exam struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	SubjectID uint      `json:"subject_id" gorm:"not null;index" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Duration  int       `json:"duration" gorm:"not null" validate:"required,min=15,max=360"` // minutes

	TotalMarks       float64 `json:"total_marks" gorm:"not null" validate:"required,gt=0"`
	QuestionPaperKey *string `json:"question_paper_key" gorm:"size:500"` // object store reference

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Subject     Subject                `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Assignments []ExamTeacherAssignment `json:"assignments,omitempty" gorm:"foreignKey:ExamID"`
	Enrollments []ExamEnrollment        `json:"enrollments,omitempty" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string {
	return "exams"
}

// ExamEnrollment records that a student sits a given exam. Answer sheets are
// only accepted for enrolled students.
type ExamEnrollment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ExamID    uint   `json:"exam_id" gorm:"not null;uniqueIndex:idx_enroll_exam_student" validate:"required"`
	StudentID string `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_enroll_exam_student" validate:"required"`

	EnrolledBy string    `json:"enrolled_by" gorm:"size:255"`
	CreatedAt  time.Time `json:"created_at"`

	Exam    Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (ExamEnrollment) TableName() string {
	return "exam_enrollments"
}
