package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := getDB(tx, r.db)
	var user models.User
	if err := db.WithContext(ctx).
		Preload("TeacherProfile").
		First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	db := getDB(tx, r.db)
	var user models.User
	if err := db.WithContext(ctx).
		Preload("TeacherProfile").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by username")
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return handleDBError(err, "update user")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := getDB(tx, r.db)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPagination(query.Order("username ASC"), filters.Limit, filters.Offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userRepository) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := getDB(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check user exists")
	}
	return count > 0, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	db := getDB(tx, r.db)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check username exists")
	}
	return count > 0, nil
}

func (r *userRepository) applyFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.SchoolID != nil {
		query = query.Where("school_id = ?", *filters.SchoolID)
	}
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("username ILIKE ? OR name ILIKE ?", like, like)
	}
	return query
}

// ===== TEACHER REPOSITORY =====

type teacherRepository struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(teacher).Error; err != nil {
		return handleDBError(err, "create teacher")
	}
	return nil
}

func (r *teacherRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	db := getDB(tx, r.db)
	var teacher models.Teacher
	if err := db.WithContext(ctx).
		Preload("User").
		First(&teacher, id).Error; err != nil {
		return nil, handleDBError(err, "get teacher by id")
	}
	return &teacher, nil
}

func (r *teacherRepository) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Teacher, error) {
	db := getDB(tx, r.db)
	var teacher models.Teacher
	if err := db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&teacher).Error; err != nil {
		return nil, handleDBError(err, "get teacher by user id")
	}
	return &teacher, nil
}

func (r *teacherRepository) Update(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(teacher).Error; err != nil {
		return handleDBError(err, "update teacher")
	}
	return nil
}

func (r *teacherRepository) ListBySchool(ctx context.Context, tx *gorm.DB, schoolID uint) ([]*models.Teacher, error) {
	db := getDB(tx, r.db)
	var teachers []*models.Teacher
	if err := db.WithContext(ctx).
		Preload("User").
		Where("school_id = ?", schoolID).
		Find(&teachers).Error; err != nil {
		return nil, handleDBError(err, "list teachers by school")
	}
	return teachers, nil
}
