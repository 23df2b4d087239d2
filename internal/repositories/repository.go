package repositories

import "context"

// Repository aggregates all per-entity repositories.
type Repository interface {
	// Tenant domain
	School() SchoolRepository
	Skill() SkillRepository

	// Principal domain
	User() UserRepository
	Teacher() TeacherRepository

	// Roster domain
	Student() StudentRepository
	Class() ClassRepository
	Subject() SubjectRepository

	// Record-keeping domain
	Attendance() AttendanceRepository
	Grade() GradeRepository
	Discipline() DisciplineRepository
	SkillAssessment() SkillAssessmentRepository

	// Audit domain
	Audit() AuditRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
