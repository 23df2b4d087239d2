package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/notifier"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type userService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	audit      AuditService
	dispatcher *notifier.Dispatcher
}

func NewUserService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	audit AuditService,
	dispatcher *notifier.Dispatcher,
) UserService {
	return &userService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		audit:      audit,
		dispatcher: dispatcher,
	}
}

func (s *userService) CreateAdmin(ctx context.Context, p Principal, req *validator.AdminCreateRequest, origin Origin) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if p.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(p.UserID, 0, "user", "create_admin", "only super admins create school admins")
	}

	if _, err := s.repo.School().GetByID(ctx, nil, req.SchoolID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}

	taken, err := s.repo.User().ExistsByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         models.RoleSchoolAdmin,
		Phone:        req.Phone,
		Email:        req.Email,
		IsActive:     true,
		SchoolID:     &req.SchoolID,
	}
	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditCreateAdmin,
		fmt.Sprintf("school admin %s created", admin.Username), admin.SchoolID, &admin.ID, origin)

	s.sendWelcome(ctx, admin)

	s.logger.Info("school admin created", "user_id", admin.ID, "school_id", req.SchoolID)
	return admin, nil
}

// CreateTeacher creates the user account and the teacher profile in one
// transaction so a failed profile write never leaves an orphan account.
func (s *userService) CreateTeacher(ctx context.Context, p Principal, schoolID uint, req *validator.TeacherCreateRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.canManageSchoolUsers(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "user", "create_teacher", "school outside caller's scope")
	}

	taken, err := s.repo.User().ExistsByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	subjects, err := json.Marshal(req.Subjects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subjects: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         models.RoleTeacher,
		Phone:        req.Phone,
		Email:        req.Email,
		IsActive:     true,
		SchoolID:     &schoolID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, nil, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateUsername
			}
			return fmt.Errorf("failed to create teacher account: %w", err)
		}

		profile := &models.Teacher{
			UserID:   user.ID,
			SchoolID: schoolID,
			Subjects: datatypes.JSON(subjects),
			Phone:    req.Phone,
		}
		if err := txRepo.Teacher().Create(ctx, nil, profile); err != nil {
			return fmt.Errorf("failed to create teacher profile: %w", err)
		}
		user.TeacherProfile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, user)

	s.logger.Info("teacher created", "user_id", user.ID, "school_id", schoolID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, p Principal, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrUserNotFound, "user", id)
		}
		return nil, err
	}

	if !s.canSeeUser(p, user) {
		return nil, NewPermissionError(p.UserID, id, "user", "read", "user outside caller's scope")
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, p Principal, id uint, req *validator.UserUpdateRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrUserNotFound, "user", id)
		}
		return nil, err
	}

	if !s.canManageUser(p, user) {
		return nil, NewPermissionError(p.UserID, id, "user", "update", "user outside caller's scope")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.IsActive != nil {
		if !*req.IsActive && user.ID == p.RealUserID {
			return nil, NewBusinessRuleError("self_deactivation", "cannot deactivate your own account", nil)
		}
		user.IsActive = *req.IsActive
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Update(ctx, nil, user); err != nil {
			return err
		}
		if req.Subjects != nil && user.Role == models.RoleTeacher {
			profile, err := txRepo.Teacher().GetByUserID(ctx, nil, user.ID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrTeacherNotFound
				}
				return err
			}
			subjects, err := json.Marshal(req.Subjects)
			if err != nil {
				return fmt.Errorf("failed to encode subjects: %w", err)
			}
			profile.Subjects = datatypes.JSON(subjects)
			if req.Phone != nil {
				profile.Phone = req.Phone
			}
			if err := txRepo.Teacher().Update(ctx, nil, profile); err != nil {
				return err
			}
			user.TeacherProfile = profile
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, p Principal, filters repositories.UserFilters) (*UserListResponse, error) {
	if p.Role != models.RoleSuperAdmin {
		if p.Role != models.RoleSchoolAdmin || p.SchoolID == nil {
			return nil, NewPermissionError(p.UserID, 0, "user", "list", "insufficient role")
		}
		// Forced onto the caller's tenant regardless of the request
		filters.SchoolID = p.SchoolID
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) ListTeachers(ctx context.Context, p Principal, schoolID uint) ([]*models.Teacher, error) {
	if !CanAccessSchool(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "user", "list_teachers", "school outside caller's scope")
	}
	return s.repo.Teacher().ListBySchool(ctx, nil, schoolID)
}

func (s *userService) canManageSchoolUsers(p Principal, schoolID uint) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	return p.Role == models.RoleSchoolAdmin && CanAccessSchool(p, schoolID)
}

func (s *userService) canSeeUser(p Principal, target *models.User) bool {
	if p.Role == models.RoleSuperAdmin || target.ID == p.UserID {
		return true
	}
	return target.SchoolID != nil && CanAccessSchool(p, *target.SchoolID)
}

func (s *userService) canManageUser(p Principal, target *models.User) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	if target.ID == p.UserID {
		return true
	}
	if p.Role != models.RoleSchoolAdmin || target.SchoolID == nil {
		return false
	}
	// School admins manage teachers only, never other admins
	return target.Role == models.RoleTeacher && CanAccessSchool(p, *target.SchoolID)
}

func (s *userService) sendWelcome(ctx context.Context, user *models.User) {
	if s.dispatcher == nil || user.Phone == nil || user.SchoolID == nil {
		return
	}
	school, err := s.repo.School().GetByID(ctx, nil, *user.SchoolID)
	if err != nil {
		s.logger.Warn("welcome message skipped, school lookup failed", "error", err, "user_id", user.ID)
		return
	}
	s.dispatcher.Enqueue(*user.Phone, notifier.WelcomeMessage(user.Name, school.Name, user.Username))
}
