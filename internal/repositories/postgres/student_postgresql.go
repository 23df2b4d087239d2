package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type studentRepository struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return handleDBError(err, "create student")
	}
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := getDB(tx, r.db)
	var student models.Student
	if err := db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, handleDBError(err, "get student by id")
	}
	return &student, nil
}

func (r *studentRepository) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(student).Error; err != nil {
		return handleDBError(err, "update student")
	}
	return nil
}

func (r *studentRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Delete(&models.Student{}, id).Error; err != nil {
		return handleDBError(err, "delete student")
	}
	return nil
}

func (r *studentRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	db := getDB(tx, r.db)
	var students []*models.Student
	var total int64

	query := db.WithContext(ctx).Model(&models.Student{}).
		Where("school_id = ?", filters.SchoolID)
	if filters.Grade != "" {
		query = query.Where("grade = ?", filters.Grade)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("code ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count students")
	}

	query = applyPagination(query.Order("code ASC"), filters.Limit, filters.Offset)
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, handleDBError(err, "list students")
	}

	return students, total, nil
}

func (r *studentRepository) ExistsByCode(ctx context.Context, tx *gorm.DB, schoolID uint, code string, excludeID uint) (bool, error) {
	db := getDB(tx, r.db)
	query := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("school_id = ? AND code = ?", schoolID, code)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student code exists")
	}
	return count > 0, nil
}

func (r *studentRepository) CountClasses(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	db := getDB(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).
		Table("class_students").
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count student classes")
	}
	return count, nil
}

func (r *studentRepository) DeleteRecords(ctx context.Context, tx *gorm.DB, studentID uint) error {
	db := getDB(tx, r.db)

	// Fixed order so partial failures surface as a rolled-back tx.
	deletions := []interface{}{
		&models.Attendance{},
		&models.Discipline{},
		&models.Grade{},
		&models.SkillAssessment{},
	}
	for _, model := range deletions {
		if err := db.WithContext(ctx).
			Where("student_id = ?", studentID).
			Delete(model).Error; err != nil {
			return handleDBError(err, "delete student records")
		}
	}

	return nil
}

// ===== CLASS REPOSITORY =====

type classRepository struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(class).Error; err != nil {
		return handleDBError(err, "create class")
	}
	return nil
}

func (r *classRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	db := getDB(tx, r.db)
	var class models.Class
	if err := db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, handleDBError(err, "get class by id")
	}
	return &class, nil
}

func (r *classRepository) GetWithStudents(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	db := getDB(tx, r.db)
	var class models.Class
	if err := db.WithContext(ctx).
		Preload("Students", func(db *gorm.DB) *gorm.DB {
			return db.Order("students.code ASC")
		}).
		First(&class, id).Error; err != nil {
		return nil, handleDBError(err, "get class with students")
	}
	return &class, nil
}

func (r *classRepository) Update(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(class).Error; err != nil {
		return handleDBError(err, "update class")
	}
	return nil
}

func (r *classRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Delete(&models.Class{}, id).Error; err != nil {
		return handleDBError(err, "delete class")
	}
	return nil
}

func (r *classRepository) ListBySchool(ctx context.Context, tx *gorm.DB, schoolID uint) ([]*models.Class, error) {
	db := getDB(tx, r.db)
	var classes []*models.Class
	if err := db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("grade ASC, name ASC").
		Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list classes by school")
	}
	return classes, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]*models.Class, error) {
	db := getDB(tx, r.db)
	var classes []*models.Class
	if err := db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("grade ASC, name ASC").
		Find(&classes).Error; err != nil {
		return nil, handleDBError(err, "list classes by teacher")
	}
	return classes, nil
}

func (r *classRepository) AddStudent(ctx context.Context, tx *gorm.DB, classID, studentID uint) error {
	db := getDB(tx, r.db)
	class := models.Class{ID: classID}
	student := models.Student{ID: studentID}
	if err := db.WithContext(ctx).Model(&class).Association("Students").Append(&student); err != nil {
		return handleDBError(err, "add student to class")
	}
	return nil
}

func (r *classRepository) RemoveStudent(ctx context.Context, tx *gorm.DB, classID, studentID uint) error {
	db := getDB(tx, r.db)
	class := models.Class{ID: classID}
	student := models.Student{ID: studentID}
	if err := db.WithContext(ctx).Model(&class).Association("Students").Delete(&student); err != nil {
		return handleDBError(err, "remove student from class")
	}
	return nil
}

func (r *classRepository) HasStudent(ctx context.Context, tx *gorm.DB, classID, studentID uint) (bool, error) {
	db := getDB(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).
		Table("class_students").
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check class membership")
	}
	return count > 0, nil
}

// ===== SUBJECT REPOSITORY =====

type subjectRepository struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(subject).Error; err != nil {
		return handleDBError(err, "create subject")
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	db := getDB(tx, r.db)
	var subject models.Subject
	if err := db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, handleDBError(err, "get subject by id")
	}
	return &subject, nil
}

func (r *subjectRepository) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(subject).Error; err != nil {
		return handleDBError(err, "update subject")
	}
	return nil
}

func (r *subjectRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Delete(&models.Subject{}, id).Error; err != nil {
		return handleDBError(err, "delete subject")
	}
	return nil
}

func (r *subjectRepository) ListBySchool(ctx context.Context, tx *gorm.DB, schoolID uint, grade string) ([]*models.Subject, error) {
	db := getDB(tx, r.db)
	var subjects []*models.Subject

	query := db.WithContext(ctx).Where("school_id = ?", schoolID)
	if grade != "" {
		query = query.Where("grade = ?", grade)
	}
	if err := query.Order("grade ASC, name ASC").Find(&subjects).Error; err != nil {
		return nil, handleDBError(err, "list subjects by school")
	}
	return subjects, nil
}

func (r *subjectRepository) Exists(ctx context.Context, tx *gorm.DB, schoolID uint, name, grade string, excludeID uint) (bool, error) {
	db := getDB(tx, r.db)
	query := db.WithContext(ctx).
		Model(&models.Subject{}).
		Where("school_id = ? AND name = ? AND grade = ?", schoolID, name, grade)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check subject exists")
	}
	return count > 0, nil
}
