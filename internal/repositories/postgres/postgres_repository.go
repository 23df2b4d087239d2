package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/cache"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	school          repositories.SchoolRepository
	skill           repositories.SkillRepository
	user            repositories.UserRepository
	teacher         repositories.TeacherRepository
	student         repositories.StudentRepository
	class           repositories.ClassRepository
	subject         repositories.SubjectRepository
	attendance      repositories.AttendanceRepository
	grade           repositories.GradeRepository
	discipline      repositories.DisciplineRepository
	skillAssessment repositories.SkillAssessmentRepository
	audit           repositories.AuditRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}
	repo.bind(config.DB, cacheManager)

	return repo
}

// bind wires every sub-repository to the given database handle. Called
// once at construction and again per transaction.
func (r *PostgreSQLRepository) bind(db *gorm.DB, cacheManager *cache.CacheManager) {
	r.school = NewSchoolPostgreSQL(db, cacheManager)
	r.skill = NewSkillPostgreSQL(db)
	r.user = NewUserPostgreSQL(db)
	r.teacher = NewTeacherPostgreSQL(db)
	r.student = NewStudentPostgreSQL(db)
	r.class = NewClassPostgreSQL(db)
	r.subject = NewSubjectPostgreSQL(db)
	r.attendance = NewAttendancePostgreSQL(db)
	r.grade = NewGradePostgreSQL(db)
	r.discipline = NewDisciplinePostgreSQL(db)
	r.skillAssessment = NewSkillAssessmentPostgreSQL(db)
	r.audit = NewAuditPostgreSQL(db)
}

func (r *PostgreSQLRepository) School() repositories.SchoolRepository   { return r.school }
func (r *PostgreSQLRepository) Skill() repositories.SkillRepository    { return r.skill }
func (r *PostgreSQLRepository) User() repositories.UserRepository      { return r.user }
func (r *PostgreSQLRepository) Teacher() repositories.TeacherRepository { return r.teacher }
func (r *PostgreSQLRepository) Student() repositories.StudentRepository { return r.student }
func (r *PostgreSQLRepository) Class() repositories.ClassRepository    { return r.class }
func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository { return r.subject }

func (r *PostgreSQLRepository) Attendance() repositories.AttendanceRepository {
	return r.attendance
}

func (r *PostgreSQLRepository) Grade() repositories.GradeRepository { return r.grade }

func (r *PostgreSQLRepository) Discipline() repositories.DisciplineRepository {
	return r.discipline
}

func (r *PostgreSQLRepository) SkillAssessment() repositories.SkillAssessmentRepository {
	return r.skillAssessment
}

func (r *PostgreSQLRepository) Audit() repositories.AuditRepository { return r.audit }

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}
		txRepo.bind(tx, r.cacheManager)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("Redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
