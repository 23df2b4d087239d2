package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewStudentService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.Publisher,
) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *studentService) Create(ctx context.Context, p Principal, schoolID uint, req *validator.StudentCreateRequest) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !s.canManageRoster(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "student", "create", "school outside caller's scope")
	}

	taken, err := s.repo.Student().ExistsByCode(ctx, nil, schoolID, req.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check student code: %w", err)
	}
	if taken {
		return nil, ErrDuplicateStudentCode
	}

	student := &models.Student{
		Code:        req.Code,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Grade:       req.Grade,
		ParentPhone: req.ParentPhone,
		ParentEmail: req.ParentEmail,
		SchoolID:    schoolID,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Student().Create(ctx, nil, student); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrDuplicateStudentCode
			}
			return fmt.Errorf("failed to create student: %w", err)
		}

		if req.ClassID != nil {
			class, err := txRepo.Class().GetByID(ctx, nil, *req.ClassID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return maskNotFound(p, ErrClassNotFound, "class", *req.ClassID)
				}
				return err
			}
			if class.SchoolID != schoolID {
				return NewPermissionError(p.UserID, class.ID, "class", "enroll", "class belongs to another school")
			}
			if err := txRepo.Class().AddStudent(ctx, nil, class.ID, student.ID); err != nil {
				return fmt.Errorf("failed to enroll student: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student created", "student_id", student.ID, "school_id", schoolID)
	return student, nil
}

func (s *studentService) Get(ctx context.Context, p Principal, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", id)
		}
		return nil, err
	}
	if !CanAccessSchool(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, id, "student", "read", "student outside caller's scope")
	}
	return student, nil
}

func (s *studentService) Update(ctx context.Context, p Principal, id uint, req *validator.StudentUpdateRequest) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", id)
		}
		return nil, err
	}
	if !s.canManageRoster(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, id, "student", "update", "student outside caller's scope")
	}

	if req.Code != nil && *req.Code != student.Code {
		taken, err := s.repo.Student().ExistsByCode(ctx, nil, student.SchoolID, *req.Code, student.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check student code: %w", err)
		}
		if taken {
			return nil, ErrDuplicateStudentCode
		}
		student.Code = *req.Code
	}
	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.ParentPhone != nil {
		student.ParentPhone = req.ParentPhone
	}
	if req.ParentEmail != nil {
		student.ParentEmail = req.ParentEmail
	}

	if err := s.repo.Student().Update(ctx, nil, student); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateStudentCode
		}
		return nil, err
	}
	return student, nil
}

// Delete refuses while the student is still assigned to a class; the
// caller unenrolls first. Record rows go in the same transaction as the
// student row.
func (s *studentService) Delete(ctx context.Context, p Principal, id uint) error {
	student, err := s.repo.Student().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return maskNotFound(p, ErrStudentNotFound, "student", id)
		}
		return err
	}
	if !s.canManageRoster(p, student.SchoolID) {
		return NewPermissionError(p.UserID, id, "student", "delete", "student outside caller's scope")
	}

	classes, err := s.repo.Student().CountClasses(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count class memberships: %w", err)
	}
	if classes > 0 {
		return fmt.Errorf("%w: %d classes", ErrStudentInClass, classes)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Student().DeleteRecords(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete student records: %w", err)
		}
		return txRepo.Student().Delete(ctx, nil, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("student deleted", "student_id", id, "school_id", student.SchoolID)
	return nil
}

func (s *studentService) List(ctx context.Context, p Principal, filters repositories.StudentFilters) (*StudentListResponse, error) {
	if !CanAccessSchool(p, filters.SchoolID) {
		return nil, NewPermissionError(p.UserID, filters.SchoolID, "student", "list", "school outside caller's scope")
	}

	students, total, err := s.repo.Student().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}
	return &StudentListResponse{Students: students, Total: total}, nil
}

func (s *studentService) Enroll(ctx context.Context, p Principal, classID, studentID uint) error {
	class, student, err := s.loadPair(ctx, p, classID, studentID)
	if err != nil {
		return err
	}

	enrolled, err := s.repo.Class().HasStudent(ctx, nil, classID, studentID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}

	if err := s.repo.Class().AddStudent(ctx, nil, classID, studentID); err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.StudentEnrolled, events.StudentEvent{
		StudentID: student.ID,
		SchoolID:  class.SchoolID,
		Code:      student.Code,
		ActorID:   p.RealUserID,
	}))
	return nil
}

func (s *studentService) Unenroll(ctx context.Context, p Principal, classID, studentID uint) error {
	class, student, err := s.loadPair(ctx, p, classID, studentID)
	if err != nil {
		return err
	}

	enrolled, err := s.repo.Class().HasStudent(ctx, nil, classID, studentID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	if err := s.repo.Class().RemoveStudent(ctx, nil, classID, studentID); err != nil {
		return fmt.Errorf("failed to unenroll student: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.StudentRemoved, events.StudentEvent{
		StudentID: student.ID,
		SchoolID:  class.SchoolID,
		Code:      student.Code,
		ActorID:   p.RealUserID,
	}))
	return nil
}

// importColumns maps required header names to their index in the sheet
var importColumns = []string{"code", "first_name", "last_name", "grade"}

// BulkImport reads an xlsx roster. Row 1 is the header; bad rows are
// skipped and reported, valid rows commit independently.
func (s *studentService) BulkImport(ctx context.Context, p Principal, schoolID uint, file io.Reader) (*ImportResult, error) {
	if !s.canManageRoster(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "student", "import", "school outside caller's scope")
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read import sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyImport
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrUnsupportedImportRow, col)
		}
	}

	result := &ImportResult{}
	for n, row := range rows[1:] {
		rowNum := n + 2 // 1-based, after the header

		req := &validator.StudentCreateRequest{
			Code:      cell(row, index["code"]),
			FirstName: cell(row, index["first_name"]),
			LastName:  cell(row, index["last_name"]),
			Grade:     cell(row, index["grade"]),
		}
		if phoneIdx, ok := index["parent_phone"]; ok {
			if v := cell(row, phoneIdx); v != "" {
				req.ParentPhone = &v
			}
		}
		if emailIdx, ok := index["parent_email"]; ok {
			if v := cell(row, emailIdx); v != "" {
				req.ParentEmail = &v
			}
		}

		if req.Code == "" && req.FirstName == "" && req.LastName == "" {
			continue // blank row, not an error
		}

		if _, err := s.Create(ctx, p, schoolID, req); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.Imported++
	}

	s.logger.Info("student import finished", "school_id", schoolID,
		"imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// loadPair fetches the class and student and checks they share the
// caller's accessible school
func (s *studentService) loadPair(ctx context.Context, p Principal, classID, studentID uint) (*models.Class, *models.Student, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, maskNotFound(p, ErrClassNotFound, "class", classID)
		}
		return nil, nil, err
	}
	if !CanManageClass(p, class) {
		return nil, nil, NewPermissionError(p.UserID, classID, "class", "enrollment", "class outside caller's scope")
	}

	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, maskNotFound(p, ErrStudentNotFound, "student", studentID)
		}
		return nil, nil, err
	}
	if student.SchoolID != class.SchoolID {
		// Scoped callers must not learn the other school; only super
		// admins get the diagnostic rule error
		if p.Role != models.RoleSuperAdmin {
			return nil, nil, NewPermissionError(p.UserID, studentID, "student", "enrollment", "student outside caller's scope")
		}
		return nil, nil, NewBusinessRuleError("cross_school_enrollment",
			"student and class belong to different schools", map[string]interface{}{
				"student_school_id": student.SchoolID,
				"class_school_id":   class.SchoolID,
			})
	}

	return class, student, nil
}

func (s *studentService) canManageRoster(p Principal, schoolID uint) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	return p.Role == models.RoleSchoolAdmin && CanAccessSchool(p, schoolID)
}

func (s *studentService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "error", err, "event_type", event.Type)
	}
}
