package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/notifier"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type schoolService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	audit      AuditService
	dispatcher *notifier.Dispatcher
	publisher  events.Publisher
}

func NewSchoolService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	audit AuditService,
	dispatcher *notifier.Dispatcher,
	publisher events.Publisher,
) SchoolService {
	return &schoolService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		audit:      audit,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

// Create provisions a school plus its default classes and skill set in
// one transaction. When req.Admin is present the first school admin is
// created in the same transaction.
func (s *schoolService) Create(ctx context.Context, p Principal, req *validator.SchoolCreateRequest, origin Origin) (*SchoolResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if p.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(p.UserID, 0, "school", "create", "only super admins create schools")
	}

	_, err := s.repo.School().GetByName(ctx, nil, req.Name)
	if err == nil {
		return nil, ErrDuplicateSchoolName
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check school name: %w", err)
	}

	school := &models.School{
		Name:    req.Name,
		Type:    req.Type,
		Address: req.Address,
		Phone:   req.Phone,
	}

	var admin *models.User
	var classCount, skillCount int

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.School().Create(ctx, nil, school); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateSchoolName
			}
			return fmt.Errorf("failed to create school: %w", err)
		}

		for _, label := range school.Type.DefaultGradeLabels() {
			class := &models.Class{
				Name:     fmt.Sprintf("%s Grade", label),
				Grade:    label,
				SchoolID: school.ID,
			}
			if err := txRepo.Class().Create(ctx, nil, class); err != nil {
				return fmt.Errorf("failed to seed class %q: %w", label, err)
			}
			classCount++
		}

		skills := make([]models.Skill, len(models.DefaultSkills))
		copy(skills, models.DefaultSkills)
		for i := range skills {
			skills[i].SchoolID = school.ID
		}
		if err := txRepo.Skill().CreateBatch(ctx, nil, skills); err != nil {
			return fmt.Errorf("failed to seed skills: %w", err)
		}
		skillCount = len(skills)

		if req.Admin != nil {
			hash, err := hashPassword(req.Admin.Password)
			if err != nil {
				return err
			}
			admin = &models.User{
				Username:     req.Admin.Username,
				PasswordHash: hash,
				Name:         req.Admin.Name,
				Role:         models.RoleSchoolAdmin,
				Phone:        req.Admin.Phone,
				Email:        req.Admin.Email,
				IsActive:     true,
				SchoolID:     &school.ID,
			}
			if err := txRepo.User().Create(ctx, nil, admin); err != nil {
				if repositories.IsDuplicateError(err) {
					return ErrDuplicateUsername
				}
				return fmt.Errorf("failed to create school admin: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditCreateSchool,
		fmt.Sprintf("school %q (%s) created", school.Name, school.Type), &school.ID, nil, origin)

	s.publishEvent(ctx, events.NewEvent(events.SchoolCreated, events.SchoolEvent{
		SchoolID:   school.ID,
		SchoolName: school.Name,
		SchoolType: string(school.Type),
		ActorID:    p.RealUserID,
	}))

	if admin != nil && admin.Phone != nil {
		s.dispatcher.Enqueue(*admin.Phone, notifier.WelcomeMessage(admin.Name, school.Name, admin.Username))
	}

	s.logger.Info("school created", "school_id", school.ID, "type", school.Type,
		"classes", classCount, "skills", skillCount)

	return &SchoolResponse{School: school, Classes: classCount, Skills: skillCount}, nil
}

func (s *schoolService) Get(ctx context.Context, p Principal, id uint) (*models.School, error) {
	// Deny before lookup; cross-tenant callers must not learn whether
	// the school exists
	if !CanAccessSchool(p, id) {
		return nil, NewPermissionError(p.UserID, id, "school", "read", "school outside caller's scope")
	}

	school, err := s.repo.School().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}
	return school, nil
}

func (s *schoolService) Update(ctx context.Context, p Principal, id uint, req *validator.SchoolUpdateRequest, origin Origin) (*models.School, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if p.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(p.UserID, id, "school", "update", "only super admins update schools")
	}

	school, err := s.repo.School().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != school.Name {
		existing, err := s.repo.School().GetByName(ctx, nil, *req.Name)
		if err == nil && existing.ID != id {
			return nil, ErrDuplicateSchoolName
		}
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check school name: %w", err)
		}
		school.Name = *req.Name
	}
	if req.Address != nil {
		school.Address = req.Address
	}
	if req.Phone != nil {
		school.Phone = req.Phone
	}

	if err := s.repo.School().Update(ctx, nil, school); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateSchoolName
		}
		return nil, err
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditEditSchool,
		fmt.Sprintf("school %q updated", school.Name), &school.ID, nil, origin)

	return school, nil
}

func (s *schoolService) Delete(ctx context.Context, p Principal, id uint, origin Origin) error {
	if p.Role != models.RoleSuperAdmin {
		return NewPermissionError(p.UserID, id, "school", "delete", "only super admins delete schools")
	}

	school, err := s.repo.School().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSchoolNotFound
		}
		return err
	}

	dependents, err := s.repo.School().Dependents(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count dependents: %w", err)
	}
	if dependents.Any() {
		return fmt.Errorf("%w: %d students, %d teachers, %d classes",
			ErrSchoolHasDependents, dependents.Students, dependents.Teachers, dependents.Classes)
	}

	if err := s.repo.School().Delete(ctx, nil, id); err != nil {
		return err
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditDeleteSchool,
		fmt.Sprintf("school %q deleted", school.Name), &id, nil, origin)

	s.publishEvent(ctx, events.NewEvent(events.SchoolDeleted, events.SchoolEvent{
		SchoolID:   school.ID,
		SchoolName: school.Name,
		SchoolType: string(school.Type),
		ActorID:    p.RealUserID,
	}))

	s.logger.Info("school deleted", "school_id", id)
	return nil
}

func (s *schoolService) List(ctx context.Context, p Principal, filters repositories.SchoolFilters) (*SchoolListResponse, error) {
	if p.Role != models.RoleSuperAdmin {
		// Non-super callers see exactly their own school
		if p.SchoolID == nil {
			return &SchoolListResponse{Schools: nil, Total: 0}, nil
		}
		school, err := s.repo.School().GetByID(ctx, nil, *p.SchoolID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return &SchoolListResponse{Schools: nil, Total: 0}, nil
			}
			return nil, err
		}
		return &SchoolListResponse{Schools: []*models.School{school}, Total: 1}, nil
	}

	schools, total, err := s.repo.School().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &SchoolListResponse{Schools: schools, Total: total}, nil
}

func (s *schoolService) Stats(ctx context.Context, p Principal) (*repositories.PlatformStats, error) {
	if p.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(p.UserID, 0, "school", "stats", "platform stats are super admin only")
	}
	return s.repo.School().Stats(ctx, nil)
}

func (s *schoolService) Skills(ctx context.Context, p Principal, schoolID uint) ([]*models.Skill, error) {
	if !CanAccessSchool(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "school", "read", "school outside caller's scope")
	}
	return s.repo.Skill().ListBySchool(ctx, nil, schoolID)
}

// publishEvent fires and forgets; event delivery problems never fail
// the originating operation
func (s *schoolService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "error", err, "event_type", event.Type)
	}
}
