package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/cache"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type schoolRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSchoolPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SchoolRepository {
	return &schoolRepository{db: db, cacheManager: cacheManager}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *schoolRepository) Create(ctx context.Context, tx *gorm.DB, school *models.School) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(school).Error; err != nil {
		return handleDBError(err, "create school")
	}

	r.invalidate(ctx, school.ID)
	return nil
}

func (r *schoolRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.School, error) {
	// Cache read-through only when not inside a transaction
	cacheKey := fmt.Sprintf("id:%d", id)
	if tx == nil && r.cacheManager != nil {
		var cached models.School
		if err := r.cacheManager.School.GetWithConfig(ctx, cacheKey, &cached, cache.SchoolCacheConfig); err == nil {
			return &cached, nil
		}
	}

	db := getDB(tx, r.db)
	var school models.School
	if err := db.WithContext(ctx).First(&school, id).Error; err != nil {
		return nil, handleDBError(err, "get school by id")
	}

	if tx == nil && r.cacheManager != nil {
		_ = r.cacheManager.School.SetWithConfig(ctx, cacheKey, &school, cache.SchoolCacheConfig)
	}

	return &school, nil
}

func (r *schoolRepository) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.School, error) {
	db := getDB(tx, r.db)
	var school models.School
	if err := db.WithContext(ctx).Where("name = ?", name).First(&school).Error; err != nil {
		return nil, handleDBError(err, "get school by name")
	}
	return &school, nil
}

func (r *schoolRepository) Update(ctx context.Context, tx *gorm.DB, school *models.School) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Save(school).Error; err != nil {
		return handleDBError(err, "update school")
	}

	r.invalidate(ctx, school.ID)
	return nil
}

func (r *schoolRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Delete(&models.School{}, id).Error; err != nil {
		return handleDBError(err, "delete school")
	}

	r.invalidate(ctx, id)
	return nil
}

// ===== QUERY OPERATIONS =====

func (r *schoolRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.SchoolFilters) ([]*models.School, int64, error) {
	db := getDB(tx, r.db)
	var schools []*models.School
	var total int64

	query := db.WithContext(ctx).Model(&models.School{})
	if filters.Query != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Query+"%")
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count schools")
	}

	query = applyPagination(query.Order("name ASC"), filters.Limit, filters.Offset)
	if err := query.Find(&schools).Error; err != nil {
		return nil, 0, handleDBError(err, "list schools")
	}

	return schools, total, nil
}

func (r *schoolRepository) Dependents(ctx context.Context, tx *gorm.DB, schoolID uint) (repositories.SchoolDependents, error) {
	db := getDB(tx, r.db)
	var deps repositories.SchoolDependents

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("school_id = ?", schoolID).
		Count(&deps.Students).Error; err != nil {
		return deps, handleDBError(err, "count school students")
	}

	if err := db.WithContext(ctx).
		Model(&models.Teacher{}).
		Where("school_id = ?", schoolID).
		Count(&deps.Teachers).Error; err != nil {
		return deps, handleDBError(err, "count school teachers")
	}

	if err := db.WithContext(ctx).
		Model(&models.Class{}).
		Where("school_id = ?", schoolID).
		Count(&deps.Classes).Error; err != nil {
		return deps, handleDBError(err, "count school classes")
	}

	return deps, nil
}

func (r *schoolRepository) Stats(ctx context.Context, tx *gorm.DB) (*repositories.PlatformStats, error) {
	const cacheKey = "platform"
	if tx == nil && r.cacheManager != nil {
		var cached repositories.PlatformStats
		if err := r.cacheManager.Stats.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	db := getDB(tx, r.db)
	stats := &repositories.PlatformStats{
		SchoolsByType: make(map[models.SchoolType]int),
	}

	if err := db.WithContext(ctx).Model(&models.School{}).Count(&stats.TotalSchools).Error; err != nil {
		return nil, handleDBError(err, "count schools")
	}
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleSchoolAdmin).
		Count(&stats.TotalAdmins).Error; err != nil {
		return nil, handleDBError(err, "count school admins")
	}
	if err := db.WithContext(ctx).Model(&models.Student{}).Count(&stats.TotalStudents).Error; err != nil {
		return nil, handleDBError(err, "count students")
	}
	if err := db.WithContext(ctx).Model(&models.Teacher{}).Count(&stats.TotalTeachers).Error; err != nil {
		return nil, handleDBError(err, "count teachers")
	}

	var rows []struct {
		Type  models.SchoolType
		Count int
	}
	if err := db.WithContext(ctx).
		Model(&models.School{}).
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, handleDBError(err, "count schools by type")
	}
	for _, row := range rows {
		stats.SchoolsByType[row.Type] = row.Count
	}

	if tx == nil && r.cacheManager != nil {
		_ = r.cacheManager.Stats.SetWithConfig(ctx, cacheKey, stats, cache.StatsCacheConfig)
	}

	return stats, nil
}

func (r *schoolRepository) invalidate(ctx context.Context, schoolID uint) {
	if r.cacheManager == nil {
		return
	}
	_ = r.cacheManager.InvalidateSchool(ctx, schoolID)
}

// ===== SKILL REPOSITORY =====

type skillRepository struct {
	db *gorm.DB
}

func NewSkillPostgreSQL(db *gorm.DB) repositories.SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) CreateBatch(ctx context.Context, tx *gorm.DB, skills []models.Skill) error {
	if len(skills) == 0 {
		return nil
	}

	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(&skills).Error; err != nil {
		return handleDBError(err, "create skills")
	}
	return nil
}

func (r *skillRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Skill, error) {
	db := getDB(tx, r.db)
	var skill models.Skill
	if err := db.WithContext(ctx).First(&skill, id).Error; err != nil {
		return nil, handleDBError(err, "get skill by id")
	}
	return &skill, nil
}

func (r *skillRepository) ListBySchool(ctx context.Context, tx *gorm.DB, schoolID uint) ([]*models.Skill, error) {
	db := getDB(tx, r.db)
	var skills []*models.Skill
	if err := db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("name ASC").
		Find(&skills).Error; err != nil {
		return nil, handleDBError(err, "list skills by school")
	}
	return skills, nil
}
