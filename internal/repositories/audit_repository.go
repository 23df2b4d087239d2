package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// AuditRepository is append-only: no update or delete is exposed.
type AuditRepository interface {
	Create(ctx context.Context, db *gorm.DB, entry *models.AuditLog) error

	// List returns entries in reverse-chronological order.
	List(ctx context.Context, db *gorm.DB, filters AuditFilters) ([]*models.AuditLog, int64, error)
}
