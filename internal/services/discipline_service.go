package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type disciplineService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDisciplineService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) DisciplineService {
	return &disciplineService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *disciplineService) Create(ctx context.Context, p Principal, req *validator.DisciplineCreateRequest) (*models.Discipline, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, nil, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", req.StudentID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, req.StudentID, "discipline", "create", "student outside caller's scope")
	}

	if req.ClassID != nil {
		class, err := s.repo.Class().GetByID(ctx, nil, *req.ClassID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, maskNotFound(p, ErrClassNotFound, "class", *req.ClassID)
			}
			return nil, err
		}
		if !CanManageClass(p, class) {
			return nil, NewPermissionError(p.UserID, *req.ClassID, "discipline", "create", "class outside caller's scope")
		}
	}

	record := &models.Discipline{
		Date:        repositories.Date(req.Date),
		Type:        models.DisciplineType(req.Type),
		Points:      req.Points,
		Description: req.Description,
		StudentID:   req.StudentID,
		TeacherID:   p.UserID,
		ClassID:     req.ClassID,
	}
	if err := s.repo.Discipline().Create(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("failed to create discipline record: %w", err)
	}

	s.logger.Info("discipline record created", "record_id", record.ID,
		"student_id", record.StudentID, "type", record.Type)
	return record, nil
}

func (s *disciplineService) ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.Discipline, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", classID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, classID, "discipline", "read", "class outside caller's scope")
	}
	return s.repo.Discipline().ListForClassDate(ctx, nil, classID, repositories.Date(date))
}

func (s *disciplineService) ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.Discipline, error) {
	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", studentID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, studentID, "discipline", "read", "student outside caller's scope")
	}
	return s.repo.Discipline().ListByStudent(ctx, nil, studentID)
}
