package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every outbound domain event
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "school-admin-service"
	eventVersion = "1.0"
)

// Event types published by the service
const (
	SchoolCreated      = "school.created"
	SchoolDeleted      = "school.deleted"
	StudentEnrolled    = "student.enrolled"
	StudentRemoved     = "student.removed"
	AttendanceRecorded = "attendance.recorded"
	GradeRecorded      = "grade.recorded"
	UserImpersonated   = "user.impersonated"
)

// NewEvent builds an event envelope with a fresh ID and timestamp
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// SchoolEvent is the payload for school lifecycle events
type SchoolEvent struct {
	SchoolID   uint   `json:"school_id"`
	SchoolName string `json:"school_name"`
	SchoolType string `json:"school_type"`
	ActorID    uint   `json:"actor_id"`
}

// StudentEvent is the payload for roster changes
type StudentEvent struct {
	StudentID uint   `json:"student_id"`
	SchoolID  uint   `json:"school_id"`
	Code      string `json:"code"`
	ActorID   uint   `json:"actor_id"`
}

// AttendanceEvent is the payload for a completed attendance write
type AttendanceEvent struct {
	ClassID   uint   `json:"class_id"`
	SchoolID  uint   `json:"school_id"`
	Date      string `json:"date"`
	Recorded  int    `json:"recorded"`
	Absent    int    `json:"absent"`
	Late      int    `json:"late"`
	TeacherID uint   `json:"teacher_id"`
}

// GradeEvent is the payload for a recorded grade
type GradeEvent struct {
	GradeID   uint `json:"grade_id"`
	StudentID uint `json:"student_id"`
	SubjectID uint `json:"subject_id"`
	ClassID   uint `json:"class_id"`
	TeacherID uint `json:"teacher_id"`
}

// ImpersonationEvent is the payload for acting-as session changes
type ImpersonationEvent struct {
	RealUserID   uint `json:"real_user_id"`
	TargetUserID uint `json:"target_user_id"`
	Started      bool `json:"started"`
}
