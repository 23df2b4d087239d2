package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

func TestSchoolService_Create(t *testing.T) {
	ctx := context.Background()
	superAdmin := Principal{UserID: 1, RealUserID: 1, Role: models.RoleSuperAdmin}

	t.Run("seeds default classes and skills", func(t *testing.T) {
		var classes []*models.Class
		var seededSkills []models.Skill
		audit := &mockAuditService{}
		publisher := events.NewMockEventPublisher(testLogger())

		repo := &mockRepository{
			school: &mockSchoolRepo{
				createFn: func(school *models.School) error {
					school.ID = 7
					return nil
				},
			},
			class: &mockClassRepo{
				createFn: func(class *models.Class) error {
					classes = append(classes, class)
					return nil
				},
			},
			skill: &mockSkillRepo{
				createBatchFn: func(skills []models.Skill) error {
					seededSkills = skills
					return nil
				},
			},
		}
		service := &schoolService{
			repo:      repo,
			logger:    testLogger(),
			validator: validator.New(),
			audit:     audit,
			publisher: publisher,
		}

		resp, err := service.Create(ctx, superAdmin, &validator.SchoolCreateRequest{
			Name: "Sunrise Elementary",
			Type: models.SchoolElementary,
		}, Origin{})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		wantClasses := len(models.SchoolElementary.DefaultGradeLabels())
		if len(classes) != wantClasses || resp.Classes != wantClasses {
			t.Errorf("expected %d seeded classes, got %d (response %d)", wantClasses, len(classes), resp.Classes)
		}
		for _, class := range classes {
			if class.SchoolID != 7 {
				t.Errorf("class not bound to the new school: %+v", class)
			}
		}

		if len(seededSkills) != len(models.DefaultSkills) || resp.Skills != len(models.DefaultSkills) {
			t.Errorf("expected %d seeded skills, got %d", len(models.DefaultSkills), len(seededSkills))
		}
		for _, skill := range seededSkills {
			if skill.SchoolID != 7 {
				t.Errorf("skill not bound to the new school: %+v", skill)
			}
		}

		entries := audit.Entries()
		if len(entries) != 1 || entries[0].Action != models.AuditCreateSchool {
			t.Errorf("expected one create-school audit entry, got %+v", entries)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.SchoolCreated {
			t.Errorf("expected one %s event, got %+v", events.SchoolCreated, published)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := &mockRepository{
			school: &mockSchoolRepo{
				getByNameFn: func(name string) (*models.School, error) {
					return &models.School{ID: 3, Name: name}, nil
				},
			},
		}
		service := &schoolService{repo: repo, logger: testLogger(), validator: validator.New(), audit: &mockAuditService{}}

		_, err := service.Create(ctx, superAdmin, &validator.SchoolCreateRequest{
			Name: "Sunrise Elementary",
			Type: models.SchoolElementary,
		}, Origin{})
		if !errors.Is(err, ErrDuplicateSchoolName) {
			t.Fatalf("expected ErrDuplicateSchoolName, got %v", err)
		}
	})

	t.Run("school admin forbidden", func(t *testing.T) {
		service := &schoolService{repo: &mockRepository{}, logger: testLogger(), validator: validator.New(), audit: &mockAuditService{}}
		admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

		_, err := service.Create(ctx, admin, &validator.SchoolCreateRequest{
			Name: "Sunrise Elementary",
			Type: models.SchoolElementary,
		}, Origin{})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestSchoolService_Get_DeniesBeforeLookup(t *testing.T) {
	lookedUp := false
	repo := &mockRepository{
		school: &mockSchoolRepo{
			getByIDFn: func(id uint) (*models.School, error) {
				lookedUp = true
				return &models.School{ID: id}, nil
			},
		},
	}
	service := &schoolService{repo: repo, logger: testLogger(), validator: validator.New(), audit: &mockAuditService{}}

	admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
	_, err := service.Get(context.Background(), admin, 8)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if lookedUp {
		t.Error("cross-tenant callers must not trigger the lookup")
	}
}

func TestSchoolService_Delete(t *testing.T) {
	ctx := context.Background()
	superAdmin := Principal{UserID: 1, RealUserID: 1, Role: models.RoleSuperAdmin}

	t.Run("blocked while dependents exist", func(t *testing.T) {
		deleted := false
		repo := &mockRepository{
			school: &mockSchoolRepo{
				getByIDFn: func(id uint) (*models.School, error) {
					return &models.School{ID: id, Name: "Sunrise"}, nil
				},
				dependentsFn: func(schoolID uint) (repositories.SchoolDependents, error) {
					return repositories.SchoolDependents{Students: 12, Classes: 3}, nil
				},
				deleteFn: func(id uint) error {
					deleted = true
					return nil
				},
			},
		}
		service := &schoolService{repo: repo, logger: testLogger(), validator: validator.New(), audit: &mockAuditService{}}

		err := service.Delete(ctx, superAdmin, 7, Origin{})
		if !errors.Is(err, ErrSchoolHasDependents) {
			t.Fatalf("expected ErrSchoolHasDependents, got %v", err)
		}
		if deleted {
			t.Error("school must not be deleted while dependents exist")
		}
	})

	t.Run("empty school deleted with audit and event", func(t *testing.T) {
		audit := &mockAuditService{}
		publisher := events.NewMockEventPublisher(testLogger())
		repo := &mockRepository{
			school: &mockSchoolRepo{
				getByIDFn: func(id uint) (*models.School, error) {
					return &models.School{ID: id, Name: "Sunrise", Type: models.SchoolElementary}, nil
				},
			},
		}
		service := &schoolService{repo: repo, logger: testLogger(), validator: validator.New(), audit: audit, publisher: publisher}

		if err := service.Delete(ctx, superAdmin, 7, Origin{}); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		entries := audit.Entries()
		if len(entries) != 1 || entries[0].Action != models.AuditDeleteSchool {
			t.Errorf("expected one delete-school audit entry, got %+v", entries)
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.SchoolDeleted {
			t.Errorf("expected one %s event, got %+v", events.SchoolDeleted, published)
		}
	})
}

func TestSchoolService_List_ScopesToOwnSchool(t *testing.T) {
	repo := &mockRepository{
		school: &mockSchoolRepo{
			getByIDFn: func(id uint) (*models.School, error) {
				return &models.School{ID: id, Name: "Sunrise"}, nil
			},
			listFn: func(filters repositories.SchoolFilters) ([]*models.School, int64, error) {
				t.Fatal("non-super callers must not hit the unrestricted list")
				return nil, 0, nil
			},
		},
	}
	service := &schoolService{repo: repo, logger: testLogger(), validator: validator.New(), audit: &mockAuditService{}}

	admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
	resp, err := service.List(context.Background(), admin, repositories.SchoolFilters{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if resp.Total != 1 || len(resp.Schools) != 1 || resp.Schools[0].ID != 7 {
		t.Errorf("expected exactly the caller's school, got %+v", resp)
	}
}
