package repositories

import (
	"time"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SchoolFilters struct {
	Query  string             `json:"query"` // name substring search
	Type   *models.SchoolType `json:"type"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type UserFilters struct {
	Role     *models.UserRole `json:"role"`
	SchoolID *uint            `json:"school_id"`
	Query    string           `json:"query"` // username or display name
	Active   *bool            `json:"active"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type StudentFilters struct {
	SchoolID uint   `json:"school_id"`
	Grade    string `json:"grade"`
	Query    string `json:"query"` // code or name substring
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

type AuditFilters struct {
	Action   *models.AuditAction `json:"action"`
	SchoolID *uint               `json:"school_id"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// SchoolDependents counts the entities blocking a school deletion.
type SchoolDependents struct {
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Classes  int64 `json:"classes"`
}

func (d SchoolDependents) Any() bool {
	return d.Students > 0 || d.Teachers > 0 || d.Classes > 0
}

// PlatformStats backs the super-admin dashboard.
type PlatformStats struct {
	TotalSchools  int64                     `json:"total_schools"`
	TotalAdmins   int64                     `json:"total_admins"`
	TotalStudents int64                     `json:"total_students"`
	TotalTeachers int64                     `json:"total_teachers"`
	SchoolsByType map[models.SchoolType]int `json:"schools_by_type"`
}

// ClassAttendanceStat summarizes one class's attendance for a date.
type ClassAttendanceStat struct {
	ClassID      uint   `json:"class_id"`
	ClassName    string `json:"class_name"`
	StudentCount int64  `json:"student_count"`
	Recorded     int64  `json:"recorded"`
	Absent       int64  `json:"absent"`
	Late         int64  `json:"late"`
}

// GradeSummaryRow is a per-subject aggregate for a class and date.
type GradeSummaryRow struct {
	SubjectName string             `json:"subject_name"`
	AvgScore    *float64           `json:"avg_score,omitempty"`
	Level       *models.GradeLevel `json:"level,omitempty"`
	Count       int64              `json:"count"`
}

// AttendanceEntry is one student's status within a replace-write set.
type AttendanceEntry struct {
	StudentID uint                    `json:"student_id"`
	Status    models.AttendanceStatus `json:"status"`
}

// Date normalizes a timestamp to its date component; attendance, grade
// and assessment rows key on whole days.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
