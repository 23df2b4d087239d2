package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

func TestSkillAssessmentService_Create(t *testing.T) {
	ctx := context.Background()
	teacher := Principal{UserID: 3, RealUserID: 3, Role: models.RoleTeacher, SchoolID: uintPtr(7), TeacherID: uintPtr(11)}
	class := &models.Class{ID: 5, SchoolID: 7, TeacherID: uintPtr(11)}
	student := &models.Student{ID: 21, SchoolID: 7, Code: "S21"}

	baseRequest := func() *validator.SkillAssessmentCreateRequest {
		return &validator.SkillAssessmentCreateRequest{
			StudentID: 21,
			SkillID:   41,
			ClassID:   5,
			Date:      time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
			Level:     "good",
		}
	}

	newService := func(skills *mockSkillRepo, assessments *mockSkillAssessmentRepo) *skillAssessmentService {
		if skills == nil {
			skills = &mockSkillRepo{getByIDFn: func(id uint) (*models.Skill, error) {
				return &models.Skill{ID: id, Name: "Teamwork", SchoolID: 7}, nil
			}}
		}
		if assessments == nil {
			assessments = &mockSkillAssessmentRepo{}
		}
		repo := &mockRepository{
			class:           &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) { return class, nil }},
			student:         &mockStudentRepo{getByIDFn: func(id uint) (*models.Student, error) { return student, nil }},
			skill:           skills,
			skillAssessment: assessments,
		}
		return &skillAssessmentService{repo: repo, logger: testLogger(), validator: validator.New()}
	}

	t.Run("stores the level with a normalized date", func(t *testing.T) {
		var saved *models.SkillAssessment
		service := newService(nil, &mockSkillAssessmentRepo{createFn: func(assessment *models.SkillAssessment) error {
			assessment.ID = 401
			saved = assessment
			return nil
		}})

		assessment, err := service.Create(ctx, teacher, baseRequest())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if saved == nil || saved.Level != models.LevelGood {
			t.Errorf("level not stored, got %+v", saved)
		}
		if !assessment.Date.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date not normalized: %v", assessment.Date)
		}
		if assessment.TeacherID != teacher.UserID {
			t.Errorf("recording teacher not stamped: %+v", assessment)
		}
	})

	t.Run("unknown level rejected", func(t *testing.T) {
		service := newService(nil, nil)

		req := baseRequest()
		req.Level = "stellar"

		_, err := service.Create(ctx, teacher, req)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})

	t.Run("skill of another school forbidden", func(t *testing.T) {
		service := newService(&mockSkillRepo{getByIDFn: func(id uint) (*models.Skill, error) {
			return &models.Skill{ID: id, Name: "Teamwork", SchoolID: 9}, nil
		}}, nil)

		if _, err := service.Create(ctx, teacher, baseRequest()); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("missing skill looks forbidden to scoped callers", func(t *testing.T) {
		service := newService(&mockSkillRepo{}, nil)

		if _, err := service.Create(ctx, teacher, baseRequest()); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("student of another school forbidden", func(t *testing.T) {
		repo := &mockRepository{
			class: &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) { return class, nil }},
			student: &mockStudentRepo{getByIDFn: func(id uint) (*models.Student, error) {
				return &models.Student{ID: id, SchoolID: 9}, nil
			}},
		}
		service := &skillAssessmentService{repo: repo, logger: testLogger(), validator: validator.New()}

		if _, err := service.Create(ctx, teacher, baseRequest()); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestSkillAssessmentService_ListForClass(t *testing.T) {
	ctx := context.Background()
	class := &models.Class{ID: 5, SchoolID: 7, TeacherID: uintPtr(11)}

	repo := &mockRepository{
		class: &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) { return class, nil }},
		skillAssessment: &mockSkillAssessmentRepo{listForClassFn: func(classID uint, date time.Time) ([]*models.SkillAssessment, error) {
			return []*models.SkillAssessment{{ID: 1, ClassID: classID, Level: models.LevelExcellent}}, nil
		}},
	}
	service := &skillAssessmentService{repo: repo, logger: testLogger(), validator: validator.New()}

	t.Run("cross-tenant admin rejected", func(t *testing.T) {
		admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(9)}
		if _, err := service.ListForClass(ctx, admin, 5, time.Now()); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("own school admin ok", func(t *testing.T) {
		admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
		assessments, err := service.ListForClass(ctx, admin, 5, time.Now())
		if err != nil {
			t.Fatalf("ListForClass() error = %v", err)
		}
		if len(assessments) != 1 {
			t.Errorf("unexpected assessments %+v", assessments)
		}
	})
}
