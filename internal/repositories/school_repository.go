package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// SchoolRepository covers the tenant root entity.
type SchoolRepository interface {
	Create(ctx context.Context, db *gorm.DB, school *models.School) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.School, error)
	GetByName(ctx context.Context, db *gorm.DB, name string) (*models.School, error)
	Update(ctx context.Context, db *gorm.DB, school *models.School) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	List(ctx context.Context, db *gorm.DB, filters SchoolFilters) ([]*models.School, int64, error)

	// Dependents guards deletion; counts live students, teachers, classes.
	Dependents(ctx context.Context, db *gorm.DB, schoolID uint) (SchoolDependents, error)
	Stats(ctx context.Context, db *gorm.DB) (*PlatformStats, error)
}

type SkillRepository interface {
	CreateBatch(ctx context.Context, db *gorm.DB, skills []models.Skill) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Skill, error)
	ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Skill, error)
}
