package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/notifier"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

const minPasswordLength = 8

// AuthConfig carries the token signing parameters
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type authService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	tracker    LoginAttemptTracker
	audit      AuditService
	dispatcher *notifier.Dispatcher
	publisher  events.Publisher
	config     AuthConfig
}

func NewAuthService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	tracker LoginAttemptTracker,
	audit AuditService,
	dispatcher *notifier.Dispatcher,
	publisher events.Publisher,
	config AuthConfig,
) AuthService {
	return &authService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		tracker:    tracker,
		audit:      audit,
		dispatcher: dispatcher,
		publisher:  publisher,
		config:     config,
	}
}

// principalClaims is the JWT payload. During impersonation the claims
// carry both the real and the effective user.
type principalClaims struct {
	jwt.RegisteredClaims
	UserID     uint            `json:"uid"`
	RealUserID uint            `json:"real_uid"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
	SchoolID   *uint           `json:"school_id,omitempty"`
	TeacherID  *uint           `json:"teacher_id,omitempty"`
}

func (s *authService) Login(ctx context.Context, req *validator.LoginRequest, origin Origin) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.tracker.Locked(req.Username) {
		s.logger.Warn("login rejected, account locked", "username", req.Username)
		return nil, ErrAccountLocked
	}

	user, err := s.repo.User().GetByUsername(ctx, nil, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same failure path as a wrong password so usernames
			// cannot be probed
			s.tracker.RecordFailure(req.Username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		s.tracker.RecordFailure(req.Username)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.tracker.RecordFailure(req.Username)
		return nil, ErrInvalidCredentials
	}

	s.tracker.Clear(req.Username)

	principal := s.principalFor(user)
	response, err := s.issueToken(principal)
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, user.ID, models.AuditLogin, fmt.Sprintf("user %s logged in", user.Username), user.SchoolID, nil, origin)
	s.logger.Info("login succeeded", "user_id", user.ID, "role", user.Role)

	return response, nil
}

func (s *authService) Logout(ctx context.Context, p Principal, origin Origin) error {
	// Tokens are stateless; logout is an audit event only and never
	// touches the failure counter
	s.audit.Append(ctx, p.RealUserID, models.AuditLogout, fmt.Sprintf("user %s logged out", p.Username), p.SchoolID, nil, origin)
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, p Principal, req *validator.ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.repo.User().GetByID(ctx, nil, p.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, p Principal, req *validator.ResetPasswordRequest, origin Origin) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if len(req.NewPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	target, err := s.repo.User().GetByID(ctx, nil, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.canManageUser(p, target) {
		return NewPermissionError(p.UserID, target.ID, "user", "reset_password", "target outside caller's scope")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	target.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, target); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info("password reset", "user_id", target.ID, "actor_id", p.RealUserID)
	return nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, username string) error {
	user, err := s.repo.User().GetByUsername(ctx, nil, username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Report success either way; existence must not leak
			return nil
		}
		s.logger.Error("password reset lookup failed", "error", err)
		return nil
	}

	if user.Phone == nil || *user.Phone == "" {
		s.logger.Warn("password reset requested for user without phone", "user_id", user.ID)
		return nil
	}

	code, err := resetCode()
	if err != nil {
		s.logger.Error("failed to generate reset code", "error", err)
		return nil
	}

	s.dispatcher.Enqueue(*user.Phone, notifier.PasswordResetMessage(code))
	s.logger.Info("password reset code dispatched", "user_id", user.ID)
	return nil
}

func (s *authService) Impersonate(ctx context.Context, p Principal, targetUserID uint, origin Origin) (*LoginResponse, error) {
	// The nested check runs first: during impersonation the effective
	// role is school_admin, so the role check alone would misreport a
	// nested attempt as a plain permission failure
	if p.ActingAs() {
		return nil, NewBusinessRuleError("nested_impersonation", "already impersonating another user", map[string]interface{}{
			"real_user_id": p.RealUserID,
		})
	}
	if p.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(p.UserID, targetUserID, "user", "impersonate", "only super admins may impersonate")
	}

	target, err := s.repo.User().GetByID(ctx, nil, targetUserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if target.Role != models.RoleSchoolAdmin {
		return nil, NewBusinessRuleError("impersonation_target", "only school admins can be impersonated", map[string]interface{}{
			"target_role": target.Role,
		})
	}

	effective := s.principalFor(target)
	effective.RealUserID = p.RealUserID

	response, err := s.issueToken(effective)
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditImpersonate,
		fmt.Sprintf("impersonation of %s started", target.Username),
		target.SchoolID, &target.ID, origin)

	if s.publisher != nil {
		event := events.NewEvent(events.UserImpersonated, events.ImpersonationEvent{
			RealUserID:   p.RealUserID,
			TargetUserID: target.ID,
			Started:      true,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("event publish failed", "error", err, "event_type", event.Type)
		}
	}
	s.logger.Info("impersonation started", "real_user_id", p.RealUserID, "target_user_id", target.ID)

	return response, nil
}

func (s *authService) StopImpersonation(ctx context.Context, p Principal, origin Origin) (*LoginResponse, error) {
	if !p.ActingAs() {
		return nil, NewBusinessRuleError("no_impersonation", "no impersonation session active", nil)
	}

	real, err := s.repo.User().GetByID(ctx, nil, p.RealUserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	response, err := s.issueToken(s.principalFor(real))
	if err != nil {
		return nil, err
	}

	s.audit.Append(ctx, p.RealUserID, models.AuditStopImpersonation,
		fmt.Sprintf("impersonation of user %d stopped", p.UserID),
		p.SchoolID, &p.UserID, origin)
	s.logger.Info("impersonation stopped", "real_user_id", p.RealUserID)

	return response, nil
}

func (s *authService) ParseToken(token string) (Principal, error) {
	claims := &principalClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrUnauthorized
	}

	return Principal{
		UserID:     claims.UserID,
		RealUserID: claims.RealUserID,
		Username:   claims.Username,
		Role:       claims.Role,
		SchoolID:   claims.SchoolID,
		TeacherID:  claims.TeacherID,
	}, nil
}

func (s *authService) issueToken(p Principal) (*LoginResponse, error) {
	expiresAt := time.Now().Add(s.config.TokenTTL)
	claims := &principalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "school-admin-service",
		},
		UserID:     p.UserID,
		RealUserID: p.RealUserID,
		Username:   p.Username,
		Role:       p.Role,
		SchoolID:   p.SchoolID,
		TeacherID:  p.TeacherID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Principal: p}, nil
}

func (s *authService) principalFor(user *models.User) Principal {
	p := Principal{
		UserID:     user.ID,
		RealUserID: user.ID,
		Username:   user.Username,
		Role:       user.Role,
		SchoolID:   user.SchoolID,
	}
	if user.TeacherProfile != nil {
		p.TeacherID = &user.TeacherProfile.ID
	}
	return p
}

// canManageUser allows super admins everywhere and school admins within
// their own school
func (s *authService) canManageUser(p Principal, target *models.User) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	if p.Role != models.RoleSchoolAdmin || target.SchoolID == nil {
		return false
	}
	return CanAccessSchool(p, *target.SchoolID)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// resetCode produces a 6-digit numeric code
func resetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
