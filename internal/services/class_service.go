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

type classService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ClassService {
	return &classService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *classService) Create(ctx context.Context, p Principal, schoolID uint, req *validator.ClassCreateRequest) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.canManageRoster(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "class", "create", "school outside caller's scope")
	}

	if req.TeacherID != nil {
		if err := s.checkTeacher(ctx, p, *req.TeacherID, schoolID); err != nil {
			return nil, err
		}
	}

	class := &models.Class{
		Name:      req.Name,
		Grade:     req.Grade,
		Room:      req.Room,
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		SchoolID:  schoolID,
	}
	if err := s.repo.Class().Create(ctx, nil, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	s.logger.Info("class created", "class_id", class.ID, "school_id", schoolID)
	return class, nil
}

func (s *classService) Get(ctx context.Context, p Principal, id uint) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", id)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, id, "class", "read", "class outside caller's scope")
	}
	return class, nil
}

func (s *classService) GetWithStudents(ctx context.Context, p Principal, id uint) (*models.Class, error) {
	class, err := s.repo.Class().GetWithStudents(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", id)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, id, "class", "read", "class outside caller's scope")
	}
	return class, nil
}

func (s *classService) Update(ctx context.Context, p Principal, id uint, req *validator.ClassUpdateRequest) (*models.Class, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", id)
		}
		return nil, err
	}
	if !s.canManageRoster(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, id, "class", "update", "class outside caller's scope")
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Grade != nil {
		class.Grade = *req.Grade
	}
	if req.Room != nil {
		class.Room = req.Room
	}
	if req.TeacherID != nil {
		if err := s.checkTeacher(ctx, p, *req.TeacherID, class.SchoolID); err != nil {
			return nil, err
		}
		class.TeacherID = req.TeacherID
	}

	if err := s.repo.Class().Update(ctx, nil, class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *classService) Delete(ctx context.Context, p Principal, id uint) error {
	class, err := s.repo.Class().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return maskNotFound(p, ErrClassNotFound, "class", id)
		}
		return err
	}
	if !s.canManageRoster(p, class.SchoolID) {
		return NewPermissionError(p.UserID, id, "class", "delete", "class outside caller's scope")
	}

	if err := s.repo.Class().Delete(ctx, nil, id); err != nil {
		return err
	}
	s.logger.Info("class deleted", "class_id", id, "school_id", class.SchoolID)
	return nil
}

func (s *classService) ListBySchool(ctx context.Context, p Principal, schoolID uint) ([]*models.Class, error) {
	if !CanAccessSchool(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "class", "list", "school outside caller's scope")
	}
	return s.repo.Class().ListBySchool(ctx, nil, schoolID)
}

func (s *classService) ListMine(ctx context.Context, p Principal) ([]*models.Class, error) {
	if p.TeacherID == nil {
		return nil, NewPermissionError(p.UserID, 0, "class", "list_mine", "caller has no teacher profile")
	}
	return s.repo.Class().ListByTeacher(ctx, nil, *p.TeacherID)
}

// checkTeacher verifies the teacher profile exists and belongs to the
// class's school
func (s *classService) checkTeacher(ctx context.Context, p Principal, teacherID, schoolID uint) error {
	teacher, err := s.repo.Teacher().GetByID(ctx, nil, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return maskNotFound(p, ErrTeacherNotFound, "teacher", teacherID)
		}
		return err
	}
	if teacher.SchoolID != schoolID {
		if p.Role != models.RoleSuperAdmin {
			return NewPermissionError(p.UserID, teacherID, "teacher", "assign", "teacher outside caller's scope")
		}
		return NewBusinessRuleError("cross_school_teacher",
			"teacher belongs to another school", map[string]interface{}{
				"teacher_school_id": teacher.SchoolID,
				"class_school_id":   schoolID,
			})
	}
	return nil
}

func (s *classService) canManageRoster(p Principal, schoolID uint) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	return p.Role == models.RoleSchoolAdmin && CanAccessSchool(p, schoolID)
}
