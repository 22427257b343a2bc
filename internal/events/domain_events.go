package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of domain events
type EventType string

const (
	// Answer sheet events
	EventSheetUploaded EventType = "sheet.uploaded"
	EventSheetGraded   EventType = "sheet.graded"

	// Grievance workflow events
	EventGrievanceSubmitted   EventType = "grievance.submitted"
	EventGrievanceUnderReview EventType = "grievance.under_review"
	EventGrievanceResolved    EventType = "grievance.resolved"
	EventGrievanceRejected    EventType = "grievance.rejected"

	// Assignment events
	EventAssignmentChanged EventType = "assignment.changed"

	// Enrollment events
	EventRosterImported EventType = "roster.imported"
)

// Event is the base structure for all domain events published to Kafka
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const eventSource = "exam-service"

// Answer sheet event payloads

type SheetUploadedEvent struct {
	AnswerSheetID uint      `json:"answer_sheet_id"`
	ExamID        uint      `json:"exam_id"`
	StudentID     string    `json:"student_id"`
	FileKey       string    `json:"file_key"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

type SheetGradedEvent struct {
	AnswerSheetID uint      `json:"answer_sheet_id"`
	ExamID        uint      `json:"exam_id"`
	StudentID     string    `json:"student_id"`
	GradedBy      string    `json:"graded_by"`
	GradedAt      time.Time `json:"graded_at"`
	ObtainedMarks float64   `json:"obtained_marks"`
	TotalMarks    float64   `json:"total_marks"`
}

// Grievance workflow event payloads

type GrievanceSubmittedEvent struct {
	GrievanceID    uint      `json:"grievance_id"`
	AnswerSheetID  uint      `json:"answer_sheet_id"`
	ExamID         uint      `json:"exam_id"`
	StudentID      string    `json:"student_id"`
	TeacherID      string    `json:"teacher_id"`
	QuestionNumber int       `json:"question_number"`
	CurrentMarks   float64   `json:"current_marks"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type GrievanceUnderReviewEvent struct {
	GrievanceID uint      `json:"grievance_id"`
	StudentID   string    `json:"student_id"`
	ReviewerID  string    `json:"reviewer_id"`
	StartedAt   time.Time `json:"started_at"`
}

type GrievanceResolvedEvent struct {
	GrievanceID    uint      `json:"grievance_id"`
	AnswerSheetID  uint      `json:"answer_sheet_id"`
	StudentID      string    `json:"student_id"`
	ReviewerID     string    `json:"reviewer_id"`
	QuestionNumber int       `json:"question_number"`
	PreviousMarks  float64   `json:"previous_marks"`
	UpdatedMarks   float64   `json:"updated_marks"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

type GrievanceRejectedEvent struct {
	GrievanceID     uint      `json:"grievance_id"`
	AnswerSheetID   uint      `json:"answer_sheet_id"`
	StudentID       string    `json:"student_id"`
	ReviewerID      string    `json:"reviewer_id"`
	QuestionNumber  int       `json:"question_number"`
	TeacherResponse string    `json:"teacher_response"`
	RejectedAt      time.Time `json:"rejected_at"`
}

// Assignment event payload

type AssignmentChangedEvent struct {
	ExamID            uint      `json:"exam_id"`
	TeacherID         string    `json:"teacher_id"`
	AssignedQuestions []int     `json:"assigned_questions"`
	ChangedBy         string    `json:"changed_by"`
	ChangedAt         time.Time `json:"changed_at"`
}

// Enrollment event payload

type RosterImportedEvent struct {
	ExamID        uint      `json:"exam_id"`
	ImportedCount int       `json:"imported_count"`
	SkippedCount  int       `json:"skipped_count"`
	ImportedBy    string    `json:"imported_by"`
	ImportedAt    time.Time `json:"imported_at"`
}

// Event factory functions

func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

func NewSheetGradedEvent(sheetID, examID uint, studentID, gradedBy string, obtained, total float64) *Event {
	return NewEvent(EventSheetGraded, SheetGradedEvent{
		AnswerSheetID: sheetID,
		ExamID:        examID,
		StudentID:     studentID,
		GradedBy:      gradedBy,
		GradedAt:      time.Now(),
		ObtainedMarks: obtained,
		TotalMarks:    total,
	})
}

func NewGrievanceSubmittedEvent(grievanceID, sheetID, examID uint, studentID, teacherID string, questionNumber int, currentMarks float64) *Event {
	return NewEvent(EventGrievanceSubmitted, GrievanceSubmittedEvent{
		GrievanceID:    grievanceID,
		AnswerSheetID:  sheetID,
		ExamID:         examID,
		StudentID:      studentID,
		TeacherID:      teacherID,
		QuestionNumber: questionNumber,
		CurrentMarks:   currentMarks,
		SubmittedAt:    time.Now(),
	})
}

// GenerateEventID returns a unique identifier for an event
func GenerateEventID() string {
	return uuid.NewString()
}
