package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ReplaceForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time, rows []*models.Attendance) error {
	db := getDB(tx, r.db)

	if err := db.WithContext(ctx).
		Where("class_id = ? AND date = ?", classID, repositories.Date(date)).
		Delete(&models.Attendance{}).Error; err != nil {
		return handleDBError(err, "clear attendance for class date")
	}

	if len(rows) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return handleDBError(err, "insert attendance rows")
	}

	return nil
}

func (r *attendanceRepository) ListForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time) ([]*models.Attendance, error) {
	db := getDB(tx, r.db)
	var rows []*models.Attendance
	if err := db.WithContext(ctx).
		Preload("Student").
		Where("class_id = ? AND date = ?", classID, repositories.Date(date)).
		Order("student_id ASC").
		Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list attendance for class date")
	}
	return rows, nil
}

func (r *attendanceRepository) ListRecentByTeacher(ctx context.Context, tx *gorm.DB, teacherUserID uint, limit int) ([]*models.Attendance, error) {
	db := getDB(tx, r.db)
	var rows []*models.Attendance

	query := db.WithContext(ctx).
		Preload("Student").
		Where("teacher_id = ?", teacherUserID).
		Order("date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, handleDBError(err, "list recent attendance by teacher")
	}
	return rows, nil
}

func (r *attendanceRepository) SummaryForSchoolDate(ctx context.Context, tx *gorm.DB, schoolID uint, date time.Time) ([]*repositories.ClassAttendanceStat, error) {
	db := getDB(tx, r.db)
	var stats []*repositories.ClassAttendanceStat

	err := db.WithContext(ctx).
		Table("classes").
		Select(`classes.id AS class_id,
			classes.name AS class_name,
			(SELECT COUNT(*) FROM class_students WHERE class_students.class_id = classes.id) AS student_count,
			COUNT(attendance.id) AS recorded,
			COUNT(attendance.id) FILTER (WHERE attendance.status = ?) AS absent,
			COUNT(attendance.id) FILTER (WHERE attendance.status = ?) AS late`,
			models.AttendanceAbsent, models.AttendanceLate).
		Joins("LEFT JOIN attendance ON attendance.class_id = classes.id AND attendance.date = ?", repositories.Date(date)).
		Where("classes.school_id = ?", schoolID).
		Group("classes.id, classes.name").
		Order("classes.name ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, handleDBError(err, "attendance summary for school date")
	}

	return stats, nil
}

// ===== GRADE REPOSITORY =====

type gradeRepository struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(grade).Error; err != nil {
		return handleDBError(err, "create grade")
	}
	return nil
}

func (r *gradeRepository) Exists(ctx context.Context, tx *gorm.DB, studentID, subjectID, classID uint, date time.Time) (bool, error) {
	db := getDB(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Grade{}).
		Where("student_id = ? AND subject_id = ? AND class_id = ? AND date = ?",
			studentID, subjectID, classID, repositories.Date(date)).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check grade exists")
	}
	return count > 0, nil
}

func (r *gradeRepository) ListForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time) ([]*models.Grade, error) {
	db := getDB(tx, r.db)
	var grades []*models.Grade
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Subject").
		Where("class_id = ? AND date = ?", classID, repositories.Date(date)).
		Order("student_id ASC").
		Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list grades for class date")
	}
	return grades, nil
}

func (r *gradeRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Grade, error) {
	db := getDB(tx, r.db)
	var grades []*models.Grade
	if err := db.WithContext(ctx).
		Preload("Subject").
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&grades).Error; err != nil {
		return nil, handleDBError(err, "list grades by student")
	}
	return grades, nil
}

func (r *gradeRepository) SummaryForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time, numeric bool) ([]*repositories.GradeSummaryRow, error) {
	db := getDB(tx, r.db)
	var rows []*repositories.GradeSummaryRow

	query := db.WithContext(ctx).
		Table("grades").
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("grades.class_id = ? AND grades.date = ?", classID, repositories.Date(date)).
		Group("subjects.name").
		Order("subjects.name ASC")

	var err error
	if numeric {
		err = query.
			Select("subjects.name AS subject_name, AVG(grades.score) AS avg_score, COUNT(*) AS count").
			Scan(&rows).Error
	} else {
		// Modal level per subject; MODE breaks ties alphabetically.
		err = query.
			Select(`subjects.name AS subject_name,
				MODE() WITHIN GROUP (ORDER BY grades.level) AS level,
				COUNT(*) AS count`).
			Scan(&rows).Error
	}
	if err != nil {
		return nil, handleDBError(err, "grade summary for class date")
	}

	return rows, nil
}

// ===== DISCIPLINE REPOSITORY =====

type disciplineRepository struct {
	db *gorm.DB
}

func NewDisciplinePostgreSQL(db *gorm.DB) repositories.DisciplineRepository {
	return &disciplineRepository{db: db}
}

func (r *disciplineRepository) Create(ctx context.Context, tx *gorm.DB, record *models.Discipline) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		return handleDBError(err, "create discipline record")
	}
	return nil
}

func (r *disciplineRepository) ListForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time) ([]*models.Discipline, error) {
	db := getDB(tx, r.db)
	var records []*models.Discipline
	if err := db.WithContext(ctx).
		Preload("Student").
		Where("class_id = ? AND date = ?", classID, repositories.Date(date)).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list discipline for class date")
	}
	return records, nil
}

func (r *disciplineRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Discipline, error) {
	db := getDB(tx, r.db)
	var records []*models.Discipline
	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list discipline by student")
	}
	return records, nil
}

// ===== SKILL ASSESSMENT REPOSITORY =====

type skillAssessmentRepository struct {
	db *gorm.DB
}

func NewSkillAssessmentPostgreSQL(db *gorm.DB) repositories.SkillAssessmentRepository {
	return &skillAssessmentRepository{db: db}
}

func (r *skillAssessmentRepository) Create(ctx context.Context, tx *gorm.DB, assessment *models.SkillAssessment) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(assessment).Error; err != nil {
		return handleDBError(err, "create skill assessment")
	}
	return nil
}

func (r *skillAssessmentRepository) ListForClassDate(ctx context.Context, tx *gorm.DB, classID uint, date time.Time) ([]*models.SkillAssessment, error) {
	db := getDB(tx, r.db)
	var assessments []*models.SkillAssessment
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Skill").
		Where("class_id = ? AND date = ?", classID, repositories.Date(date)).
		Order("student_id ASC").
		Find(&assessments).Error; err != nil {
		return nil, handleDBError(err, "list skill assessments for class date")
	}
	return assessments, nil
}

func (r *skillAssessmentRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.SkillAssessment, error) {
	db := getDB(tx, r.db)
	var assessments []*models.SkillAssessment
	if err := db.WithContext(ctx).
		Preload("Skill").
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&assessments).Error; err != nil {
		return nil, handleDBError(err, "list skill assessments by student")
	}
	return assessments, nil
}
