package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error)
	Update(ctx context.Context, db *gorm.DB, user *models.User) error
	List(ctx context.Context, db *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, db *gorm.DB, id uint) (bool, error)
	ExistsByUsername(ctx context.Context, db *gorm.DB, username string) (bool, error)
}

type TeacherRepository interface {
	Create(ctx context.Context, db *gorm.DB, teacher *models.Teacher) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Teacher, error)
	GetByUserID(ctx context.Context, db *gorm.DB, userID uint) (*models.Teacher, error)
	Update(ctx context.Context, db *gorm.DB, teacher *models.Teacher) error
	ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Teacher, error)
}
