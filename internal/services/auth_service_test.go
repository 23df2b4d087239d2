package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func newAuthServiceForTest(repo *mockRepository, audit *mockAuditService, publisher events.Publisher) *authService {
	return &authService{
		repo:      repo,
		logger:    testLogger(),
		validator: validator.New(),
		tracker:   NewLoginAttemptTracker(),
		audit:     audit,
		publisher: publisher,
		config:    AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	alice := &models.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: "",
		Name:         "Alice",
		Role:         models.RoleSchoolAdmin,
		IsActive:     true,
		SchoolID:     uintPtr(7),
	}

	newService := func(t *testing.T) (*authService, *mockAuditService) {
		alice.PasswordHash = mustHash(t, "correct-horse")
		audit := &mockAuditService{}
		repo := &mockRepository{
			user: &mockUserRepo{
				getByUsernameFn: func(username string) (*models.User, error) {
					if username == "alice" {
						copy := *alice
						return &copy, nil
					}
					return nil, errNotFoundForTest()
				},
			},
		}
		return newAuthServiceForTest(repo, audit, nil), audit
	}

	t.Run("success issues a parseable token", func(t *testing.T) {
		service, audit := newService(t)

		resp, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "correct-horse"}, Origin{IP: "10.0.0.1"})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.Token == "" {
			t.Fatal("expected a token")
		}

		p, err := service.ParseToken(resp.Token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if p.UserID != 1 || p.RealUserID != 1 || p.Role != models.RoleSchoolAdmin {
			t.Errorf("unexpected principal: %+v", p)
		}
		if p.SchoolID == nil || *p.SchoolID != 7 {
			t.Errorf("school ID not carried in claims: %+v", p.SchoolID)
		}

		entries := audit.Entries()
		if len(entries) != 1 || entries[0].Action != models.AuditLogin {
			t.Errorf("expected one login audit entry, got %+v", entries)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		service, _ := newService(t)

		_, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "nope-nope"}, Origin{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username reports the same error", func(t *testing.T) {
		service, _ := newService(t)

		_, err := service.Login(ctx, &validator.LoginRequest{Username: "nobody", Password: "whatever"}, Origin{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("inactive account rejected like a bad password", func(t *testing.T) {
		service, _ := newService(t)
		alice.IsActive = false
		defer func() { alice.IsActive = true }()

		_, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "correct-horse"}, Origin{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		service, _ := newService(t)

		for i := 0; i < maxLoginFailures; i++ {
			_, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "nope-nope"}, Origin{})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
			}
		}

		// Even the right password is refused while locked
		_, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "correct-horse"}, Origin{})
		if !errors.Is(err, ErrAccountLocked) {
			t.Fatalf("expected ErrAccountLocked, got %v", err)
		}
	})

	t.Run("success clears the failure streak", func(t *testing.T) {
		service, _ := newService(t)

		for i := 0; i < maxLoginFailures-1; i++ {
			service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "nope-nope"}, Origin{})
		}
		if _, err := service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "correct-horse"}, Origin{}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		// The next failure starts from zero, not from the old streak
		service.Login(ctx, &validator.LoginRequest{Username: "alice", Password: "nope-nope"}, Origin{})
		if service.tracker.Locked("alice") {
			t.Fatal("streak should have been cleared by the successful login")
		}
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	service := newAuthServiceForTest(&mockRepository{}, &mockAuditService{}, nil)

	t.Run("garbage token", func(t *testing.T) {
		if _, err := service.ParseToken("not-a-token"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newAuthServiceForTest(&mockRepository{}, &mockAuditService{}, nil)
		other.config.JWTSecret = "different-secret"

		resp, err := other.issueToken(Principal{UserID: 1, RealUserID: 1, Username: "x", Role: models.RoleSuperAdmin})
		if err != nil {
			t.Fatalf("issueToken() error = %v", err)
		}
		if _, err := service.ParseToken(resp.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		short := newAuthServiceForTest(&mockRepository{}, &mockAuditService{}, nil)
		short.config.TokenTTL = -time.Minute

		resp, err := short.issueToken(Principal{UserID: 1, RealUserID: 1, Username: "x", Role: models.RoleSuperAdmin})
		if err != nil {
			t.Fatalf("issueToken() error = %v", err)
		}
		if _, err := short.ParseToken(resp.Token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_Impersonate(t *testing.T) {
	ctx := context.Background()

	target := &models.User{
		ID:       9,
		Username: "principal-jones",
		Name:     "Jones",
		Role:     models.RoleSchoolAdmin,
		IsActive: true,
		SchoolID: uintPtr(7),
	}
	superAdmin := Principal{UserID: 1, RealUserID: 1, Username: "root", Role: models.RoleSuperAdmin}

	newService := func() (*authService, *mockAuditService, *events.MockEventPublisher) {
		audit := &mockAuditService{}
		publisher := events.NewMockEventPublisher(testLogger())
		repo := &mockRepository{
			user: &mockUserRepo{
				getByIDFn: func(id uint) (*models.User, error) {
					if id == 9 {
						copy := *target
						return &copy, nil
					}
					if id == 1 {
						return &models.User{ID: 1, Username: "root", Role: models.RoleSuperAdmin, IsActive: true}, nil
					}
					return nil, errNotFoundForTest()
				},
			},
		}
		return newAuthServiceForTest(repo, audit, publisher), audit, publisher
	}

	t.Run("super admin impersonates a school admin", func(t *testing.T) {
		service, audit, publisher := newService()

		resp, err := service.Impersonate(ctx, superAdmin, 9, Origin{})
		if err != nil {
			t.Fatalf("Impersonate() error = %v", err)
		}

		p, err := service.ParseToken(resp.Token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if p.UserID != 9 || p.RealUserID != 1 {
			t.Errorf("expected effective user 9 acting for 1, got %+v", p)
		}
		if !p.ActingAs() {
			t.Error("token should mark an impersonation session")
		}

		// Audit attributes to the operator, not the target
		entries := audit.Entries()
		if len(entries) != 1 {
			t.Fatalf("expected one audit entry, got %d", len(entries))
		}
		if entries[0].ActorID != 1 || entries[0].Action != models.AuditImpersonate {
			t.Errorf("unexpected audit entry: %+v", entries[0])
		}
		if entries[0].TargetUserID == nil || *entries[0].TargetUserID != 9 {
			t.Errorf("audit entry should name the target: %+v", entries[0])
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.UserImpersonated {
			t.Errorf("expected one %s event, got %+v", events.UserImpersonated, published)
		}
	})

	t.Run("non super admin forbidden", func(t *testing.T) {
		service, _, _ := newService()
		admin := Principal{UserID: 2, RealUserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

		_, err := service.Impersonate(ctx, admin, 9, Origin{})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("nested impersonation rejected", func(t *testing.T) {
		service, _, _ := newService()
		acting := Principal{UserID: 9, RealUserID: 1, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

		_, err := service.Impersonate(ctx, acting, 9, Origin{})
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) || ruleErr.Rule != "nested_impersonation" {
			t.Fatalf("expected nested_impersonation rule error, got %v", err)
		}
	})

	t.Run("only school admins can be impersonated", func(t *testing.T) {
		service, _, _ := newService()
		target.Role = models.RoleTeacher
		defer func() { target.Role = models.RoleSchoolAdmin }()

		_, err := service.Impersonate(ctx, superAdmin, 9, Origin{})
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) || ruleErr.Rule != "impersonation_target" {
			t.Fatalf("expected impersonation_target rule error, got %v", err)
		}
	})

	t.Run("stop restores the real principal", func(t *testing.T) {
		service, audit, _ := newService()
		acting := Principal{UserID: 9, RealUserID: 1, Username: "principal-jones", Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

		resp, err := service.StopImpersonation(ctx, acting, Origin{})
		if err != nil {
			t.Fatalf("StopImpersonation() error = %v", err)
		}

		p, err := service.ParseToken(resp.Token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if p.UserID != 1 || p.ActingAs() {
			t.Errorf("expected the real principal back, got %+v", p)
		}

		entries := audit.Entries()
		if len(entries) != 1 || entries[0].Action != models.AuditStopImpersonation || entries[0].ActorID != 1 {
			t.Errorf("unexpected audit entries: %+v", entries)
		}
	})

	t.Run("stop without a session", func(t *testing.T) {
		service, _, _ := newService()

		_, err := service.StopImpersonation(ctx, superAdmin, Origin{})
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) || ruleErr.Rule != "no_impersonation" {
			t.Fatalf("expected no_impersonation rule error, got %v", err)
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	var updated *models.User
	user := &models.User{ID: 1, Username: "alice", Role: models.RoleTeacher, IsActive: true}

	newService := func(t *testing.T) *authService {
		user.PasswordHash = mustHash(t, "old-password")
		updated = nil
		repo := &mockRepository{
			user: &mockUserRepo{
				getByIDFn: func(id uint) (*models.User, error) {
					copy := *user
					return &copy, nil
				},
				updateFn: func(u *models.User) error {
					updated = u
					return nil
				},
			},
		}
		return newAuthServiceForTest(repo, &mockAuditService{}, nil)
	}

	p := Principal{UserID: 1, RealUserID: 1, Role: models.RoleTeacher}

	t.Run("ok", func(t *testing.T) {
		service := newService(t)
		err := service.ChangePassword(ctx, p, &validator.ChangePasswordRequest{
			CurrentPassword: "old-password",
			NewPassword:     "brand-new-password",
		})
		if err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		if updated == nil {
			t.Fatal("expected the user row to be updated")
		}
		if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("brand-new-password")) != nil {
			t.Error("stored hash does not match the new password")
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		service := newService(t)
		err := service.ChangePassword(ctx, p, &validator.ChangePasswordRequest{
			CurrentPassword: "guessing",
			NewPassword:     "brand-new-password",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RequestPasswordReset_NeverLeaks(t *testing.T) {
	service := newAuthServiceForTest(&mockRepository{user: &mockUserRepo{}}, &mockAuditService{}, nil)

	// Unknown usernames must come back clean
	if err := service.RequestPasswordReset(context.Background(), "does-not-exist"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
}

// errNotFoundForTest mirrors what the postgres layer surfaces for a
// missing row
func errNotFoundForTest() error {
	return gorm.ErrRecordNotFound
}
