package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, db *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Student, error)
	Update(ctx context.Context, db *gorm.DB, student *models.Student) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	List(ctx context.Context, db *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)

	ExistsByCode(ctx context.Context, db *gorm.DB, schoolID uint, code string, excludeID uint) (bool, error)
	CountClasses(ctx context.Context, db *gorm.DB, studentID uint) (int64, error)

	// DeleteRecords removes all attendance, discipline, grade and skill
	// assessment rows for the student; callers run it inside the same
	// transaction as the student row deletion.
	DeleteRecords(ctx context.Context, db *gorm.DB, studentID uint) error
}

type ClassRepository interface {
	Create(ctx context.Context, db *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Class, error)
	GetWithStudents(ctx context.Context, db *gorm.DB, id uint) (*models.Class, error)
	Update(ctx context.Context, db *gorm.DB, class *models.Class) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Class, error)
	ListByTeacher(ctx context.Context, db *gorm.DB, teacherID uint) ([]*models.Class, error)

	AddStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) error
	RemoveStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) error
	HasStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) (bool, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, db *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Subject, error)
	Update(ctx context.Context, db *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint, grade string) ([]*models.Subject, error)

	Exists(ctx context.Context, db *gorm.DB, schoolID uint, name, grade string, excludeID uint) (bool, error)
}
