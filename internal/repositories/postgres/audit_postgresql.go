package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type auditRepository struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	db := getDB(tx, r.db)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create audit entry")
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	db := getDB(tx, r.db)
	var entries []*models.AuditLog
	var total int64

	query := db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.SchoolID != nil {
		query = query.Where("school_id = ?", *filters.SchoolID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count audit entries")
	}

	query = applyPagination(query.Order("timestamp DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, handleDBError(err, "list audit entries")
	}

	return entries, total, nil
}
