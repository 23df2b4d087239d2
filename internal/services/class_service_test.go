package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

func TestClassService_Create(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: 2, RealUserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

	baseRequest := func() *validator.ClassCreateRequest {
		return &validator.ClassCreateRequest{Name: "7A", Grade: "7th"}
	}

	t.Run("school admin creates in own school", func(t *testing.T) {
		var saved *models.Class
		repo := &mockRepository{
			class: &mockClassRepo{createFn: func(class *models.Class) error {
				class.ID = 5
				saved = class
				return nil
			}},
		}
		service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

		class, err := service.Create(ctx, admin, 7, baseRequest())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if saved == nil || saved.SchoolID != 7 {
			t.Errorf("class must carry the school, got %+v", saved)
		}
		if class.Name != "7A" || class.Grade != "7th" {
			t.Errorf("unexpected class %+v", class)
		}
	})

	t.Run("teacher cannot create classes", func(t *testing.T) {
		service := &classService{repo: &mockRepository{}, logger: testLogger(), validator: validator.New()}
		teacher := Principal{UserID: 3, Role: models.RoleTeacher, SchoolID: uintPtr(7), TeacherID: uintPtr(11)}

		if _, err := service.Create(ctx, teacher, 7, baseRequest()); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("teacher of another school not assignable", func(t *testing.T) {
		repo := &mockRepository{
			teacher: &mockTeacherRepo{getByIDFn: func(id uint) (*models.Teacher, error) {
				return &models.Teacher{ID: id, SchoolID: 9}, nil
			}},
		}
		service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

		req := baseRequest()
		req.TeacherID = uintPtr(11)

		// A scoped admin gets the same Forbidden as for a missing id
		if _, err := service.Create(ctx, admin, 7, req); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden for a scoped admin, got %v", err)
		}

		// A super admin gets the diagnostic rule error
		superAdmin := Principal{UserID: 1, RealUserID: 1, Role: models.RoleSuperAdmin}
		_, err := service.Create(ctx, superAdmin, 7, req)
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) || ruleErr.Rule != "cross_school_teacher" {
			t.Fatalf("expected cross_school_teacher rule error, got %v", err)
		}
	})

	t.Run("missing teacher looks forbidden to scoped callers", func(t *testing.T) {
		service := &classService{repo: &mockRepository{teacher: &mockTeacherRepo{}}, logger: testLogger(), validator: validator.New()}

		req := baseRequest()
		req.TeacherID = uintPtr(404)

		if _, err := service.Create(ctx, admin, 7, req); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestClassService_Get_HidesMissingFromScopedCallers(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: 2, RealUserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(1)}

	repo := &mockRepository{
		class: &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) {
			if id == 42 {
				return &models.Class{ID: 42, SchoolID: 2}, nil
			}
			return nil, errNotFoundForTest()
		}},
	}
	service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

	if _, err := service.Get(ctx, admin, 999); !errors.Is(err, ErrForbidden) || errors.Is(err, ErrClassNotFound) {
		t.Fatalf("missing id must look Forbidden to a scoped caller, got %v", err)
	}
	if _, err := service.Get(ctx, admin, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cross-tenant id must look Forbidden, got %v", err)
	}

	superAdmin := Principal{UserID: 1, RealUserID: 1, Role: models.RoleSuperAdmin}
	if _, err := service.Get(ctx, superAdmin, 999); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound for a super admin, got %v", err)
	}
}

func TestClassService_Delete(t *testing.T) {
	ctx := context.Background()
	class := &models.Class{ID: 5, SchoolID: 7}

	t.Run("cross-tenant admin rejected", func(t *testing.T) {
		repo := &mockRepository{
			class: &mockClassRepo{
				getByIDFn: func(id uint) (*models.Class, error) { return class, nil },
				deleteFn: func(id uint) error {
					t.Fatal("class of another school must not be deleted")
					return nil
				},
			},
		}
		service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

		other := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(9)}
		if err := service.Delete(ctx, other, 5); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("own school admin ok", func(t *testing.T) {
		var deleted bool
		repo := &mockRepository{
			class: &mockClassRepo{
				getByIDFn: func(id uint) (*models.Class, error) { return class, nil },
				deleteFn: func(id uint) error {
					deleted = true
					return nil
				},
			},
		}
		service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

		admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
		if err := service.Delete(ctx, admin, 5); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if !deleted {
			t.Error("expected the class row to be deleted")
		}
	})
}

func TestClassService_ListMine(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{
		class: &mockClassRepo{listByTeacherFn: func(teacherID uint) ([]*models.Class, error) {
			return []*models.Class{{ID: 5, TeacherID: uintPtr(teacherID)}}, nil
		}},
	}
	service := &classService{repo: repo, logger: testLogger(), validator: validator.New()}

	t.Run("requires a teacher profile", func(t *testing.T) {
		admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
		if _, err := service.ListMine(ctx, admin); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("lists the caller's classes", func(t *testing.T) {
		teacher := Principal{UserID: 3, Role: models.RoleTeacher, SchoolID: uintPtr(7), TeacherID: uintPtr(11)}
		classes, err := service.ListMine(ctx, teacher)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		if len(classes) != 1 || classes[0].TeacherID == nil || *classes[0].TeacherID != 11 {
			t.Errorf("unexpected classes %+v", classes)
		}
	})
}
