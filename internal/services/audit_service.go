package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

type auditService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Append writes one audit entry. Every failure path logs and returns
// false; audit problems must never abort the action being recorded.
func (s *auditService) Append(ctx context.Context, actorID uint, action models.AuditAction, description string, schoolID, targetUserID *uint, origin Origin) bool {
	if actorID == 0 {
		s.logger.Warn("audit entry skipped, zero actor id", "action", action)
		return false
	}

	exists, err := s.repo.User().ExistsByID(ctx, nil, actorID)
	if err != nil {
		s.logger.Error("audit actor lookup failed", "error", err, "actor_id", actorID, "action", action)
		return false
	}
	if !exists {
		s.logger.Warn("audit entry skipped, unknown actor", "actor_id", actorID, "action", action)
		return false
	}

	entry := &models.AuditLog{
		UserID:       actorID,
		Action:       action,
		Description:  description,
		SchoolID:     schoolID,
		TargetUserID: targetUserID,
	}
	if origin.IP != "" {
		entry.IPAddress = &origin.IP
	}
	if origin.UserAgent != "" {
		entry.UserAgent = &origin.UserAgent
	}

	if err := s.repo.Audit().Create(ctx, nil, entry); err != nil {
		s.logger.Error("audit entry write failed", "error", err, "actor_id", actorID, "action", action)
		return false
	}

	return true
}

func (s *auditService) List(ctx context.Context, p Principal, filters repositories.AuditFilters) (*AuditListResponse, error) {
	if p.Role != models.RoleSuperAdmin {
		// School admins only see their own school's trail
		if p.Role != models.RoleSchoolAdmin || p.SchoolID == nil {
			return nil, NewPermissionError(p.UserID, 0, "audit_log", "list", "insufficient role")
		}
		filters.SchoolID = p.SchoolID
	}

	entries, total, err := s.repo.Audit().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	return &AuditListResponse{Entries: entries, Total: total}, nil
}
