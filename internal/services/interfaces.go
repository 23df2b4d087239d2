package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

// Origin captures the network source of an administrative action
type Origin struct {
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
}

// ===== AUTH =====

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Principal Principal `json:"principal"`
}

type AuthService interface {
	Login(ctx context.Context, req *validator.LoginRequest, origin Origin) (*LoginResponse, error)
	Logout(ctx context.Context, p Principal, origin Origin) error
	ChangePassword(ctx context.Context, p Principal, req *validator.ChangePasswordRequest) error
	ResetPassword(ctx context.Context, p Principal, req *validator.ResetPasswordRequest, origin Origin) error

	// RequestPasswordReset always reports success so callers cannot
	// probe which usernames exist
	RequestPasswordReset(ctx context.Context, username string) error

	Impersonate(ctx context.Context, p Principal, targetUserID uint, origin Origin) (*LoginResponse, error)
	StopImpersonation(ctx context.Context, p Principal, origin Origin) (*LoginResponse, error)

	ParseToken(token string) (Principal, error)
}

// ===== SCHOOLS =====

type SchoolResponse struct {
	School  *models.School `json:"school"`
	Classes int            `json:"classes,omitempty"`
	Skills  int            `json:"skills,omitempty"`
}

type SchoolListResponse struct {
	Schools []*models.School `json:"schools"`
	Total   int64            `json:"total"`
}

type SchoolService interface {
	Create(ctx context.Context, p Principal, req *validator.SchoolCreateRequest, origin Origin) (*SchoolResponse, error)
	Get(ctx context.Context, p Principal, id uint) (*models.School, error)
	Update(ctx context.Context, p Principal, id uint, req *validator.SchoolUpdateRequest, origin Origin) (*models.School, error)
	Delete(ctx context.Context, p Principal, id uint, origin Origin) error
	List(ctx context.Context, p Principal, filters repositories.SchoolFilters) (*SchoolListResponse, error)
	Stats(ctx context.Context, p Principal) (*repositories.PlatformStats, error)
	Skills(ctx context.Context, p Principal, schoolID uint) ([]*models.Skill, error)
}

// ===== USERS =====

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type UserService interface {
	CreateAdmin(ctx context.Context, p Principal, req *validator.AdminCreateRequest, origin Origin) (*models.User, error)
	CreateTeacher(ctx context.Context, p Principal, schoolID uint, req *validator.TeacherCreateRequest) (*models.User, error)
	Get(ctx context.Context, p Principal, id uint) (*models.User, error)
	Update(ctx context.Context, p Principal, id uint, req *validator.UserUpdateRequest) (*models.User, error)
	List(ctx context.Context, p Principal, filters repositories.UserFilters) (*UserListResponse, error)
	ListTeachers(ctx context.Context, p Principal, schoolID uint) ([]*models.Teacher, error)
}

// ===== STUDENTS =====

type StudentListResponse struct {
	Students []*models.Student `json:"students"`
	Total    int64             `json:"total"`
}

// ImportResult reports the outcome of a bulk student import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type StudentService interface {
	Create(ctx context.Context, p Principal, schoolID uint, req *validator.StudentCreateRequest) (*models.Student, error)
	Get(ctx context.Context, p Principal, id uint) (*models.Student, error)
	Update(ctx context.Context, p Principal, id uint, req *validator.StudentUpdateRequest) (*models.Student, error)
	Delete(ctx context.Context, p Principal, id uint) error
	List(ctx context.Context, p Principal, filters repositories.StudentFilters) (*StudentListResponse, error)

	Enroll(ctx context.Context, p Principal, classID, studentID uint) error
	Unenroll(ctx context.Context, p Principal, classID, studentID uint) error

	BulkImport(ctx context.Context, p Principal, schoolID uint, file io.Reader) (*ImportResult, error)
}

// ===== CLASSES / SUBJECTS =====

type ClassService interface {
	Create(ctx context.Context, p Principal, schoolID uint, req *validator.ClassCreateRequest) (*models.Class, error)
	Get(ctx context.Context, p Principal, id uint) (*models.Class, error)
	GetWithStudents(ctx context.Context, p Principal, id uint) (*models.Class, error)
	Update(ctx context.Context, p Principal, id uint, req *validator.ClassUpdateRequest) (*models.Class, error)
	Delete(ctx context.Context, p Principal, id uint) error
	ListBySchool(ctx context.Context, p Principal, schoolID uint) ([]*models.Class, error)
	ListMine(ctx context.Context, p Principal) ([]*models.Class, error)
}

type SubjectService interface {
	Create(ctx context.Context, p Principal, schoolID uint, req *validator.SubjectCreateRequest) (*models.Subject, error)
	Delete(ctx context.Context, p Principal, id uint) error
	ListBySchool(ctx context.Context, p Principal, schoolID uint, grade string) ([]*models.Subject, error)
}

// ===== RECORD-KEEPING =====

type AttendanceSheet struct {
	ClassID uint                 `json:"class_id"`
	Date    time.Time            `json:"date"`
	Rows    []*models.Attendance `json:"rows"`
}

type AttendanceService interface {
	// Record replaces the full attendance set for (class, date)
	Record(ctx context.Context, p Principal, req *validator.AttendanceRecordRequest) (*AttendanceSheet, error)
	Sheet(ctx context.Context, p Principal, classID uint, date time.Time) (*AttendanceSheet, error)
	SchoolSummary(ctx context.Context, p Principal, schoolID uint, date time.Time) ([]*repositories.ClassAttendanceStat, error)
}

type GradeService interface {
	Record(ctx context.Context, p Principal, req *validator.GradeRecordRequest) (*models.Grade, error)
	ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.Grade, error)
	ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.Grade, error)
	Summary(ctx context.Context, p Principal, classID uint, date time.Time) ([]*repositories.GradeSummaryRow, error)

	// ExportReport renders the class/date grade sheet as an xlsx file
	ExportReport(ctx context.Context, p Principal, classID uint, date time.Time) ([]byte, error)
}

type DisciplineService interface {
	Create(ctx context.Context, p Principal, req *validator.DisciplineCreateRequest) (*models.Discipline, error)
	ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.Discipline, error)
	ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.Discipline, error)
}

type SkillAssessmentService interface {
	Create(ctx context.Context, p Principal, req *validator.SkillAssessmentCreateRequest) (*models.SkillAssessment, error)
	ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.SkillAssessment, error)
	ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.SkillAssessment, error)
}

// ===== AUDIT =====

type AuditListResponse struct {
	Entries []*models.AuditLog `json:"entries"`
	Total   int64              `json:"total"`
}

type AuditService interface {
	// Append never returns an error; it reports whether the entry was
	// written. Invalid actors and storage failures are logged and
	// swallowed so they cannot abort the action being audited.
	Append(ctx context.Context, actorID uint, action models.AuditAction, description string, schoolID, targetUserID *uint, origin Origin) bool

	List(ctx context.Context, p Principal, filters repositories.AuditFilters) (*AuditListResponse, error)
}

// ===== MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	School() SchoolService
	User() UserService
	Student() StudentService
	Class() ClassService
	Subject() SubjectService
	Attendance() AttendanceService
	Grade() GradeService
	Discipline() DisciplineService
	SkillAssessment() SkillAssessmentService
	Audit() AuditService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
