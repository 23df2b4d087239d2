package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/notifier"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Auth AuthConfig

	// Global settings
	DefaultTimeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db         *gorm.DB
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	tracker    LoginAttemptTracker
	dispatcher *notifier.Dispatcher
	publisher  events.Publisher
	config     ServiceManagerConfig

	// Service instances
	authService            AuthService
	schoolService          SchoolService
	userService            UserService
	studentService         StudentService
	classService           ClassService
	subjectService         SubjectService
	attendanceService      AttendanceService
	gradeService           GradeService
	disciplineService      DisciplineService
	skillAssessmentService SkillAssessmentService
	auditService           AuditService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	dispatcher *notifier.Dispatcher,
	publisher events.Publisher,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		db:         db,
		repo:       repo,
		logger:     logger,
		validator:  validator,
		tracker:    NewLoginAttemptTracker(),
		dispatcher: dispatcher,
		publisher:  publisher,
		config:     config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(
	db *gorm.DB,
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	dispatcher *notifier.Dispatcher,
	publisher events.Publisher,
	auth AuthConfig,
) ServiceManager {
	config := ServiceManagerConfig{
		Auth:           auth,
		DefaultTimeout: 30 * time.Second,
	}
	return NewServiceManager(db, repo, logger, validator, dispatcher, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.initializeServices()

	if err := sm.validateServicesHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	// Audit first; it backs auth, school and user services
	sm.auditService = NewAuditService(sm.repo, sm.db, sm.logger)

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator,
		sm.tracker, sm.auditService, sm.dispatcher, sm.publisher, sm.config.Auth)
	sm.schoolService = NewSchoolService(sm.repo, sm.db, sm.logger, sm.validator,
		sm.auditService, sm.dispatcher, sm.publisher)
	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator,
		sm.auditService, sm.dispatcher)
	sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.classService = NewClassService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.subjectService = NewSubjectService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.attendanceService = NewAttendanceService(sm.repo, sm.db, sm.logger, sm.validator,
		sm.dispatcher, sm.publisher)
	sm.gradeService = NewGradeService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.disciplineService = NewDisciplineService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.skillAssessmentService = NewSkillAssessmentService(sm.repo, sm.db, sm.logger, sm.validator)

	sm.logger.Info("All services initialized")
}

func (sm *serviceManager) validateServicesHealth(ctx context.Context) error {
	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository ping failed: %w", err)
	}
	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) School() SchoolService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.schoolService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.studentService
}

func (sm *serviceManager) Class() ClassService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.classService
}

func (sm *serviceManager) Subject() SubjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.subjectService
}

func (sm *serviceManager) Attendance() AttendanceService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.attendanceService
}

func (sm *serviceManager) Grade() GradeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.gradeService
}

func (sm *serviceManager) Discipline() DisciplineService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.disciplineService
}

func (sm *serviceManager) SkillAssessment() SkillAssessmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.skillAssessmentService
}

func (sm *serviceManager) Audit() AuditService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.auditService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	// Drain queued SMS before closing the event publisher
	if sm.dispatcher != nil {
		if err := sm.dispatcher.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to drain SMS dispatcher", "error", err)
		}
	}

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
