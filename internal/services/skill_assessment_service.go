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

type skillAssessmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSkillAssessmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) SkillAssessmentService {
	return &skillAssessmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *skillAssessmentService) Create(ctx context.Context, p Principal, req *validator.SkillAssessmentCreateRequest) (*models.SkillAssessment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	class, err := s.repo.Class().GetByID(ctx, nil, req.ClassID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", req.ClassID)
		}
		return nil, err
	}
	if !CanManageClass(p, class) {
		return nil, NewPermissionError(p.UserID, req.ClassID, "skill_assessment", "create", "class outside caller's scope")
	}

	student, err := s.repo.Student().GetByID(ctx, nil, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", req.StudentID)
		}
		return nil, err
	}
	if student.SchoolID != class.SchoolID {
		return nil, NewPermissionError(p.UserID, req.StudentID, "skill_assessment", "create", "student belongs to another school")
	}

	skill, err := s.repo.Skill().GetByID(ctx, nil, req.SkillID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrSkillNotFound, "skill", req.SkillID)
		}
		return nil, err
	}
	if skill.SchoolID != class.SchoolID {
		return nil, NewPermissionError(p.UserID, req.SkillID, "skill_assessment", "create", "skill belongs to another school")
	}

	assessment := &models.SkillAssessment{
		Date:      repositories.Date(req.Date),
		Level:     models.GradeLevel(req.Level),
		Notes:     req.Notes,
		StudentID: req.StudentID,
		SkillID:   req.SkillID,
		ClassID:   req.ClassID,
		TeacherID: p.UserID,
	}
	if err := s.repo.SkillAssessment().Create(ctx, nil, assessment); err != nil {
		return nil, fmt.Errorf("failed to create skill assessment: %w", err)
	}

	s.logger.Info("skill assessment created", "assessment_id", assessment.ID,
		"student_id", assessment.StudentID, "skill_id", assessment.SkillID)
	return assessment, nil
}

func (s *skillAssessmentService) ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.SkillAssessment, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", classID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, classID, "skill_assessment", "read", "class outside caller's scope")
	}
	return s.repo.SkillAssessment().ListForClassDate(ctx, nil, classID, repositories.Date(date))
}

func (s *skillAssessmentService) ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.SkillAssessment, error) {
	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", studentID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, studentID, "skill_assessment", "read", "student outside caller's scope")
	}
	return s.repo.SkillAssessment().ListByStudent(ctx, nil, studentID)
}
