package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
)

// mockRepository wires per-entity mocks into the Repository interface.
// Sub-repositories a test does not set stay nil and panic on use, which
// is the point: the test then names an access it did not expect.
type mockRepository struct {
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

func (m *mockRepository) School() repositories.SchoolRepository   { return m.school }
func (m *mockRepository) Skill() repositories.SkillRepository     { return m.skill }
func (m *mockRepository) User() repositories.UserRepository       { return m.user }
func (m *mockRepository) Teacher() repositories.TeacherRepository { return m.teacher }
func (m *mockRepository) Student() repositories.StudentRepository { return m.student }
func (m *mockRepository) Class() repositories.ClassRepository     { return m.class }
func (m *mockRepository) Subject() repositories.SubjectRepository { return m.subject }
func (m *mockRepository) Attendance() repositories.AttendanceRepository {
	return m.attendance
}
func (m *mockRepository) Grade() repositories.GradeRepository { return m.grade }
func (m *mockRepository) Discipline() repositories.DisciplineRepository {
	return m.discipline
}
func (m *mockRepository) SkillAssessment() repositories.SkillAssessmentRepository {
	return m.skillAssessment
}
func (m *mockRepository) Audit() repositories.AuditRepository { return m.audit }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== per-entity mocks: unset funcs fall back to not-found / no-op =====

type mockUserRepo struct {
	createFn           func(user *models.User) error
	getByIDFn          func(id uint) (*models.User, error)
	getByUsernameFn    func(username string) (*models.User, error)
	updateFn           func(user *models.User) error
	listFn             func(filters repositories.UserFilters) ([]*models.User, int64, error)
	existsByIDFn       func(id uint) (bool, error)
	existsByUsernameFn func(username string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, db *gorm.DB, user *models.User) error {
	if m.createFn != nil {
		return m.createFn(user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(username)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, db *gorm.DB, user *models.User) error {
	if m.updateFn != nil {
		return m.updateFn(user)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, db *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if m.listFn != nil {
		return m.listFn(filters)
	}
	return nil, 0, nil
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	if m.existsByIDFn != nil {
		return m.existsByIDFn(id)
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(username)
	}
	return false, nil
}

type mockSchoolRepo struct {
	createFn     func(school *models.School) error
	getByIDFn    func(id uint) (*models.School, error)
	getByNameFn  func(name string) (*models.School, error)
	updateFn     func(school *models.School) error
	deleteFn     func(id uint) error
	listFn       func(filters repositories.SchoolFilters) ([]*models.School, int64, error)
	dependentsFn func(schoolID uint) (repositories.SchoolDependents, error)
	statsFn      func() (*repositories.PlatformStats, error)
}

func (m *mockSchoolRepo) Create(ctx context.Context, db *gorm.DB, school *models.School) error {
	if m.createFn != nil {
		return m.createFn(school)
	}
	return nil
}

func (m *mockSchoolRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.School, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolRepo) GetByName(ctx context.Context, db *gorm.DB, name string) (*models.School, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(name)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSchoolRepo) Update(ctx context.Context, db *gorm.DB, school *models.School) error {
	if m.updateFn != nil {
		return m.updateFn(school)
	}
	return nil
}

func (m *mockSchoolRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockSchoolRepo) List(ctx context.Context, db *gorm.DB, filters repositories.SchoolFilters) ([]*models.School, int64, error) {
	if m.listFn != nil {
		return m.listFn(filters)
	}
	return nil, 0, nil
}

func (m *mockSchoolRepo) Dependents(ctx context.Context, db *gorm.DB, schoolID uint) (repositories.SchoolDependents, error) {
	if m.dependentsFn != nil {
		return m.dependentsFn(schoolID)
	}
	return repositories.SchoolDependents{}, nil
}

func (m *mockSchoolRepo) Stats(ctx context.Context, db *gorm.DB) (*repositories.PlatformStats, error) {
	if m.statsFn != nil {
		return m.statsFn()
	}
	return &repositories.PlatformStats{}, nil
}

type mockSkillRepo struct {
	createBatchFn  func(skills []models.Skill) error
	getByIDFn      func(id uint) (*models.Skill, error)
	listBySchoolFn func(schoolID uint) ([]*models.Skill, error)
}

func (m *mockSkillRepo) CreateBatch(ctx context.Context, db *gorm.DB, skills []models.Skill) error {
	if m.createBatchFn != nil {
		return m.createBatchFn(skills)
	}
	return nil
}

func (m *mockSkillRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Skill, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillRepo) ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Skill, error) {
	if m.listBySchoolFn != nil {
		return m.listBySchoolFn(schoolID)
	}
	return nil, nil
}

type mockTeacherRepo struct {
	createFn       func(teacher *models.Teacher) error
	getByIDFn      func(id uint) (*models.Teacher, error)
	getByUserIDFn  func(userID uint) (*models.Teacher, error)
	updateFn       func(teacher *models.Teacher) error
	listBySchoolFn func(schoolID uint) ([]*models.Teacher, error)
}

func (m *mockTeacherRepo) Create(ctx context.Context, db *gorm.DB, teacher *models.Teacher) error {
	if m.createFn != nil {
		return m.createFn(teacher)
	}
	return nil
}

func (m *mockTeacherRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Teacher, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByUserID(ctx context.Context, db *gorm.DB, userID uint) (*models.Teacher, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) Update(ctx context.Context, db *gorm.DB, teacher *models.Teacher) error {
	if m.updateFn != nil {
		return m.updateFn(teacher)
	}
	return nil
}

func (m *mockTeacherRepo) ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Teacher, error) {
	if m.listBySchoolFn != nil {
		return m.listBySchoolFn(schoolID)
	}
	return nil, nil
}

type mockStudentRepo struct {
	createFn        func(student *models.Student) error
	getByIDFn       func(id uint) (*models.Student, error)
	updateFn        func(student *models.Student) error
	deleteFn        func(id uint) error
	listFn          func(filters repositories.StudentFilters) ([]*models.Student, int64, error)
	existsByCodeFn  func(schoolID uint, code string, excludeID uint) (bool, error)
	countClassesFn  func(studentID uint) (int64, error)
	deleteRecordsFn func(studentID uint) error
}

func (m *mockStudentRepo) Create(ctx context.Context, db *gorm.DB, student *models.Student) error {
	if m.createFn != nil {
		return m.createFn(student)
	}
	return nil
}

func (m *mockStudentRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Student, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(ctx context.Context, db *gorm.DB, student *models.Student) error {
	if m.updateFn != nil {
		return m.updateFn(student)
	}
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockStudentRepo) List(ctx context.Context, db *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	if m.listFn != nil {
		return m.listFn(filters)
	}
	return nil, 0, nil
}

func (m *mockStudentRepo) ExistsByCode(ctx context.Context, db *gorm.DB, schoolID uint, code string, excludeID uint) (bool, error) {
	if m.existsByCodeFn != nil {
		return m.existsByCodeFn(schoolID, code, excludeID)
	}
	return false, nil
}

func (m *mockStudentRepo) CountClasses(ctx context.Context, db *gorm.DB, studentID uint) (int64, error) {
	if m.countClassesFn != nil {
		return m.countClassesFn(studentID)
	}
	return 0, nil
}

func (m *mockStudentRepo) DeleteRecords(ctx context.Context, db *gorm.DB, studentID uint) error {
	if m.deleteRecordsFn != nil {
		return m.deleteRecordsFn(studentID)
	}
	return nil
}

type mockClassRepo struct {
	createFn          func(class *models.Class) error
	getByIDFn         func(id uint) (*models.Class, error)
	getWithStudentsFn func(id uint) (*models.Class, error)
	updateFn          func(class *models.Class) error
	deleteFn          func(id uint) error
	listBySchoolFn    func(schoolID uint) ([]*models.Class, error)
	listByTeacherFn   func(teacherID uint) ([]*models.Class, error)
	addStudentFn      func(classID, studentID uint) error
	removeStudentFn   func(classID, studentID uint) error
	hasStudentFn      func(classID, studentID uint) (bool, error)
}

func (m *mockClassRepo) Create(ctx context.Context, db *gorm.DB, class *models.Class) error {
	if m.createFn != nil {
		return m.createFn(class)
	}
	return nil
}

func (m *mockClassRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Class, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) GetWithStudents(ctx context.Context, db *gorm.DB, id uint) (*models.Class, error) {
	if m.getWithStudentsFn != nil {
		return m.getWithStudentsFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) Update(ctx context.Context, db *gorm.DB, class *models.Class) error {
	if m.updateFn != nil {
		return m.updateFn(class)
	}
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockClassRepo) ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint) ([]*models.Class, error) {
	if m.listBySchoolFn != nil {
		return m.listBySchoolFn(schoolID)
	}
	return nil, nil
}

func (m *mockClassRepo) ListByTeacher(ctx context.Context, db *gorm.DB, teacherID uint) ([]*models.Class, error) {
	if m.listByTeacherFn != nil {
		return m.listByTeacherFn(teacherID)
	}
	return nil, nil
}

func (m *mockClassRepo) AddStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) error {
	if m.addStudentFn != nil {
		return m.addStudentFn(classID, studentID)
	}
	return nil
}

func (m *mockClassRepo) RemoveStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) error {
	if m.removeStudentFn != nil {
		return m.removeStudentFn(classID, studentID)
	}
	return nil
}

func (m *mockClassRepo) HasStudent(ctx context.Context, db *gorm.DB, classID, studentID uint) (bool, error) {
	if m.hasStudentFn != nil {
		return m.hasStudentFn(classID, studentID)
	}
	return false, nil
}

type mockSubjectRepo struct {
	createFn       func(subject *models.Subject) error
	getByIDFn      func(id uint) (*models.Subject, error)
	updateFn       func(subject *models.Subject) error
	deleteFn       func(id uint) error
	listBySchoolFn func(schoolID uint, grade string) ([]*models.Subject, error)
	existsFn       func(schoolID uint, name, grade string, excludeID uint) (bool, error)
}

func (m *mockSubjectRepo) Create(ctx context.Context, db *gorm.DB, subject *models.Subject) error {
	if m.createFn != nil {
		return m.createFn(subject)
	}
	return nil
}

func (m *mockSubjectRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Subject, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Update(ctx context.Context, db *gorm.DB, subject *models.Subject) error {
	if m.updateFn != nil {
		return m.updateFn(subject)
	}
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func (m *mockSubjectRepo) ListBySchool(ctx context.Context, db *gorm.DB, schoolID uint, grade string) ([]*models.Subject, error) {
	if m.listBySchoolFn != nil {
		return m.listBySchoolFn(schoolID, grade)
	}
	return nil, nil
}

func (m *mockSubjectRepo) Exists(ctx context.Context, db *gorm.DB, schoolID uint, name, grade string, excludeID uint) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(schoolID, name, grade, excludeID)
	}
	return false, nil
}

type mockAttendanceRepo struct {
	replaceFn       func(classID uint, date time.Time, rows []*models.Attendance) error
	listForClassFn  func(classID uint, date time.Time) ([]*models.Attendance, error)
	listByTeacherFn func(teacherUserID uint, limit int) ([]*models.Attendance, error)
	summaryFn       func(schoolID uint, date time.Time) ([]*repositories.ClassAttendanceStat, error)
}

func (m *mockAttendanceRepo) ReplaceForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time, rows []*models.Attendance) error {
	if m.replaceFn != nil {
		return m.replaceFn(classID, date, rows)
	}
	return nil
}

func (m *mockAttendanceRepo) ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Attendance, error) {
	if m.listForClassFn != nil {
		return m.listForClassFn(classID, date)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) ListRecentByTeacher(ctx context.Context, db *gorm.DB, teacherUserID uint, limit int) ([]*models.Attendance, error) {
	if m.listByTeacherFn != nil {
		return m.listByTeacherFn(teacherUserID, limit)
	}
	return nil, nil
}

func (m *mockAttendanceRepo) SummaryForSchoolDate(ctx context.Context, db *gorm.DB, schoolID uint, date time.Time) ([]*repositories.ClassAttendanceStat, error) {
	if m.summaryFn != nil {
		return m.summaryFn(schoolID, date)
	}
	return nil, nil
}

type mockGradeRepo struct {
	createFn       func(grade *models.Grade) error
	existsFn       func(studentID, subjectID, classID uint, date time.Time) (bool, error)
	listForClassFn func(classID uint, date time.Time) ([]*models.Grade, error)
	listByStudent  func(studentID uint) ([]*models.Grade, error)
	summaryFn      func(classID uint, date time.Time, numeric bool) ([]*repositories.GradeSummaryRow, error)
}

func (m *mockGradeRepo) Create(ctx context.Context, db *gorm.DB, grade *models.Grade) error {
	if m.createFn != nil {
		return m.createFn(grade)
	}
	return nil
}

func (m *mockGradeRepo) Exists(ctx context.Context, db *gorm.DB, studentID, subjectID, classID uint, date time.Time) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(studentID, subjectID, classID, date)
	}
	return false, nil
}

func (m *mockGradeRepo) ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Grade, error) {
	if m.listForClassFn != nil {
		return m.listForClassFn(classID, date)
	}
	return nil, nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.Grade, error) {
	if m.listByStudent != nil {
		return m.listByStudent(studentID)
	}
	return nil, nil
}

func (m *mockGradeRepo) SummaryForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time, numeric bool) ([]*repositories.GradeSummaryRow, error) {
	if m.summaryFn != nil {
		return m.summaryFn(classID, date, numeric)
	}
	return nil, nil
}

type mockDisciplineRepo struct {
	createFn       func(record *models.Discipline) error
	listForClassFn func(classID uint, date time.Time) ([]*models.Discipline, error)
	listByStudent  func(studentID uint) ([]*models.Discipline, error)
}

func (m *mockDisciplineRepo) Create(ctx context.Context, db *gorm.DB, record *models.Discipline) error {
	if m.createFn != nil {
		return m.createFn(record)
	}
	return nil
}

func (m *mockDisciplineRepo) ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.Discipline, error) {
	if m.listForClassFn != nil {
		return m.listForClassFn(classID, date)
	}
	return nil, nil
}

func (m *mockDisciplineRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.Discipline, error) {
	if m.listByStudent != nil {
		return m.listByStudent(studentID)
	}
	return nil, nil
}

type mockSkillAssessmentRepo struct {
	createFn       func(assessment *models.SkillAssessment) error
	listForClassFn func(classID uint, date time.Time) ([]*models.SkillAssessment, error)
	listByStudent  func(studentID uint) ([]*models.SkillAssessment, error)
}

func (m *mockSkillAssessmentRepo) Create(ctx context.Context, db *gorm.DB, assessment *models.SkillAssessment) error {
	if m.createFn != nil {
		return m.createFn(assessment)
	}
	return nil
}

func (m *mockSkillAssessmentRepo) ListForClassDate(ctx context.Context, db *gorm.DB, classID uint, date time.Time) ([]*models.SkillAssessment, error) {
	if m.listForClassFn != nil {
		return m.listForClassFn(classID, date)
	}
	return nil, nil
}

func (m *mockSkillAssessmentRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID uint) ([]*models.SkillAssessment, error) {
	if m.listByStudent != nil {
		return m.listByStudent(studentID)
	}
	return nil, nil
}

// ===== audit service mock =====

type auditEntry struct {
	ActorID      uint
	Action       models.AuditAction
	Description  string
	SchoolID     *uint
	TargetUserID *uint
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Append(ctx context.Context, actorID uint, action models.AuditAction, description string, schoolID, targetUserID *uint, origin Origin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{
		ActorID:      actorID,
		Action:       action,
		Description:  description,
		SchoolID:     schoolID,
		TargetUserID: targetUserID,
	})
	return true
}

func (m *mockAuditService) List(ctx context.Context, p Principal, filters repositories.AuditFilters) (*AuditListResponse, error) {
	return &AuditListResponse{}, nil
}

func (m *mockAuditService) Entries() []auditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
