package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

type AttendanceRepository interface {
	// ReplaceForClassDate atomically swaps the full attendance set for
	// (classID, date): delete-then-insert, run inside the caller's
	// transaction so concurrent readers see either the old or new set.
	ReplaceForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time, rows []*models.Attendance) error

	ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Attendance, error)
	ListRecentByTeacher(ctx context.Context, db *gorm.DB, teacherUserID uint, limit int) ([]*models.Attendance, error)
	SummaryForSchoolDate(ctx context.Context, db *gorm.DB, schoolID uint, date time.Time) ([]*ClassAttendanceStat, error)
}

type GradeRepository interface {
	Create(ctx context.Context, db *gorm.DB, grade *models.Grade) error
	Exists(ctx context.Context, db *gorm.DB, studentID, subjectID, classID uint, date time.Time) (bool, error)
	ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Grade, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.Grade, error)
	SummaryForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time, numeric bool) ([]*GradeSummaryRow, error)
}

type DisciplineRepository interface {
	Create(ctx context.Context, db *gorm.DB, record *models.Discipline) error
	ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Discipline, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.Discipline, error)
}

type SkillAssessmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, assessment *models.SkillAssessment) error
	ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.SkillAssessment, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.SkillAssessment, error)
}
