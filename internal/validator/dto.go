package validator

import (
	"time"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// ===== IDENTITY =====

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type ResetPasswordRequest struct {
	UserID      uint   `json:"user_id" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

// ===== SCHOOLS =====

// SchoolAdminRequest is the optional admin created together with a school
type SchoolAdminRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     string  `json:"name" validate:"required,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
}

type SchoolCreateRequest struct {
	Name    string              `json:"name" validate:"required,min=2,max=100"`
	Type    models.SchoolType   `json:"type" validate:"required,school_type"`
	Address *string             `json:"address" validate:"omitempty,max=200"`
	Phone   *string             `json:"phone" validate:"omitempty,phone"`
	Admin   *SchoolAdminRequest `json:"admin"`
}

type SchoolUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Address *string `json:"address" validate:"omitempty,max=200"`
	Phone   *string `json:"phone" validate:"omitempty,phone"`
}

// ===== USERS =====

type AdminCreateRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Name     string  `json:"name" validate:"required,max=100"`
	SchoolID uint    `json:"school_id" validate:"required"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
}

type TeacherCreateRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Password string   `json:"password" validate:"required,min=8,max=128"`
	Name     string   `json:"name" validate:"required,max=100"`
	Phone    *string  `json:"phone" validate:"omitempty,phone"`
	Email    *string  `json:"email" validate:"omitempty,email,max=100"`
	Subjects []string `json:"subjects" validate:"omitempty,max=20,dive,max=50"`
}

type UserUpdateRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=100"`
	Phone    *string  `json:"phone" validate:"omitempty,phone"`
	Email    *string  `json:"email" validate:"omitempty,email,max=100"`
	IsActive *bool    `json:"is_active"`
	Subjects []string `json:"subjects" validate:"omitempty,max=20,dive,max=50"`
}

// ===== ROSTER =====

type StudentCreateRequest struct {
	Code        string  `json:"code" validate:"required,max=20"`
	FirstName   string  `json:"first_name" validate:"required,max=50"`
	LastName    string  `json:"last_name" validate:"required,max=50"`
	Grade       string  `json:"grade" validate:"required,max=20"`
	ParentPhone *string `json:"parent_phone" validate:"omitempty,phone"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email,max=100"`
	ClassID     *uint   `json:"class_id"`
}

type StudentUpdateRequest struct {
	Code        *string `json:"code" validate:"omitempty,max=20"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=50"`
	LastName    *string `json:"last_name" validate:"omitempty,max=50"`
	Grade       *string `json:"grade" validate:"omitempty,max=20"`
	ParentPhone *string `json:"parent_phone" validate:"omitempty,phone"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email,max=100"`
}

type ClassCreateRequest struct {
	Name      string  `json:"name" validate:"required,max=50"`
	Grade     string  `json:"grade" validate:"required,max=20"`
	Room      *string `json:"room" validate:"omitempty,max=20"`
	TeacherID *uint   `json:"teacher_id"`
	SubjectID *uint   `json:"subject_id"`
}

type ClassUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=50"`
	Grade     *string `json:"grade" validate:"omitempty,max=20"`
	Room      *string `json:"room" validate:"omitempty,max=20"`
	TeacherID *uint   `json:"teacher_id"`
}

type SubjectCreateRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	Grade     string `json:"grade" validate:"required,max=20"`
	TeacherID *uint  `json:"teacher_id"`
}

// ===== RECORD-KEEPING =====

// AttendanceEntryRequest carries a raw status string; unknown values are
// normalized to present at the service layer
type AttendanceEntryRequest struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

type AttendanceRecordRequest struct {
	ClassID uint                     `json:"class_id" validate:"required"`
	Date    time.Time                `json:"date" validate:"required"`
	Entries []AttendanceEntryRequest `json:"entries" validate:"required,min=1,dive"`
}

// GradeRecordRequest carries both payload shapes; the service enforces
// exactly one based on the school type
type GradeRecordRequest struct {
	StudentID   uint      `json:"student_id" validate:"required"`
	SubjectID   uint      `json:"subject_id" validate:"required"`
	ClassID     uint      `json:"class_id" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Score       *float64  `json:"score" validate:"omitempty,min=0"`
	MaxScore    *float64  `json:"max_score" validate:"omitempty,gt=0"`
	Level       *string   `json:"level" validate:"omitempty,grade_level"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
}

type DisciplineCreateRequest struct {
	StudentID   uint      `json:"student_id" validate:"required"`
	ClassID     *uint     `json:"class_id"`
	Date        time.Time `json:"date" validate:"required"`
	Type        string    `json:"type" validate:"required,discipline_type"`
	Points      int       `json:"points" validate:"min=-10,max=10"`
	Description string    `json:"description" validate:"required,min=5,max=500"`
}

type SkillAssessmentCreateRequest struct {
	StudentID uint      `json:"student_id" validate:"required"`
	SkillID   uint      `json:"skill_id" validate:"required"`
	ClassID   uint      `json:"class_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Level     string    `json:"level" validate:"required,grade_level"`
	Notes     *string   `json:"notes" validate:"omitempty,max=500"`
}

// ===== ENROLLMENT =====

type EnrollmentRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
}
