package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type subjectService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) SubjectService {
	return &subjectService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *subjectService) Create(ctx context.Context, p Principal, schoolID uint, req *validator.SubjectCreateRequest) (*models.Subject, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.canManage(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "subject", "create", "school outside caller's scope")
	}

	taken, err := s.repo.Subject().Exists(ctx, nil, schoolID, req.Name, req.Grade, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject: %w", err)
	}
	if taken {
		return nil, ErrDuplicateSubject
	}

	subject := &models.Subject{
		Name:      req.Name,
		Grade:     req.Grade,
		TeacherID: req.TeacherID,
		SchoolID:  schoolID,
	}
	if err := s.repo.Subject().Create(ctx, nil, subject); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateSubject
		}
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	s.logger.Info("subject created", "subject_id", subject.ID, "school_id", schoolID)
	return subject, nil
}

func (s *subjectService) Delete(ctx context.Context, p Principal, id uint) error {
	subject, err := s.repo.Subject().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return maskNotFound(p, ErrSubjectNotFound, "subject", id)
		}
		return err
	}
	if !s.canManage(p, subject.SchoolID) {
		return NewPermissionError(p.UserID, id, "subject", "delete", "subject outside caller's scope")
	}

	return s.repo.Subject().Delete(ctx, nil, id)
}

func (s *subjectService) ListBySchool(ctx context.Context, p Principal, schoolID uint, grade string) ([]*models.Subject, error) {
	if !CanAccessSchool(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "subject", "list", "school outside caller's scope")
	}
	return s.repo.Subject().ListBySchool(ctx, nil, schoolID, grade)
}

func (s *subjectService) canManage(p Principal, schoolID uint) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	return p.Role == models.RoleSchoolAdmin && CanAccessSchool(p, schoolID)
}
