package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type gradeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewGradeService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.Publisher,
) GradeService {
	return &gradeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Record writes one grade. The payload shape is dictated by the school
// type: numeric score for middle and high schools, qualitative level
// for elementary. The school type is stamped onto the row so historical
// grades survive a school type change.
func (s *gradeService) Record(ctx context.Context, p Principal, req *validator.GradeRecordRequest) (*models.Grade, error) {
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
		return nil, NewPermissionError(p.UserID, req.ClassID, "grade", "record", "class outside caller's scope")
	}

	school, err := s.repo.School().GetByID(ctx, nil, class.SchoolID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSchoolNotFound
		}
		return nil, err
	}

	student, err := s.repo.Student().GetByID(ctx, nil, req.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", req.StudentID)
		}
		return nil, err
	}
	if student.SchoolID != class.SchoolID {
		return nil, NewPermissionError(p.UserID, req.StudentID, "grade", "record", "student belongs to another school")
	}

	subject, err := s.repo.Subject().GetByID(ctx, nil, req.SubjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrSubjectNotFound, "subject", req.SubjectID)
		}
		return nil, err
	}
	if subject.SchoolID != class.SchoolID {
		return nil, NewPermissionError(p.UserID, req.SubjectID, "grade", "record", "subject belongs to another school")
	}

	grade := &models.Grade{
		Date:        repositories.Date(req.Date),
		Description: req.Description,
		StudentID:   req.StudentID,
		SubjectID:   req.SubjectID,
		ClassID:     req.ClassID,
		TeacherID:   p.UserID,
		SchoolType:  school.Type,
	}

	if school.Type.UsesNumericGrades() {
		if req.Score == nil || req.Level != nil {
			return nil, fmt.Errorf("%w: %s schools take a numeric score", ErrGradeSchemaMismatch, school.Type)
		}
		maxScore := models.DefaultMaxScore
		if req.MaxScore != nil {
			maxScore = *req.MaxScore
		}
		if *req.Score > maxScore {
			return nil, NewBusinessRuleError("score_above_max",
				"score exceeds the maximum", map[string]interface{}{
					"score":     *req.Score,
					"max_score": maxScore,
				})
		}
		grade.Score = req.Score
		grade.MaxScore = &maxScore
	} else {
		if req.Level == nil || req.Score != nil || req.MaxScore != nil {
			return nil, fmt.Errorf("%w: elementary schools take a qualitative level", ErrGradeSchemaMismatch)
		}
		level := models.GradeLevel(*req.Level)
		grade.Level = &level
	}

	exists, err := s.repo.Grade().Exists(ctx, nil, req.StudentID, req.SubjectID, req.ClassID, grade.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing grade: %w", err)
	}
	if exists {
		return nil, ErrDuplicateGrade
	}

	if err := s.repo.Grade().Create(ctx, nil, grade); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateGrade
		}
		return nil, fmt.Errorf("failed to record grade: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.GradeRecorded, events.GradeEvent{
		GradeID:   grade.ID,
		StudentID: grade.StudentID,
		SubjectID: grade.SubjectID,
		ClassID:   grade.ClassID,
		TeacherID: grade.TeacherID,
	}))

	s.logger.Info("grade recorded", "grade_id", grade.ID, "class_id", grade.ClassID, "student_id", grade.StudentID)
	return grade, nil
}

func (s *gradeService) ListForClass(ctx context.Context, p Principal, classID uint, date time.Time) ([]*models.Grade, error) {
	if _, err := s.accessClass(ctx, p, classID); err != nil {
		return nil, err
	}
	return s.repo.Grade().ListForClassDate(ctx, nil, classID, repositories.Date(date))
}

func (s *gradeService) ListByStudent(ctx context.Context, p Principal, studentID uint) ([]*models.Grade, error) {
	student, err := s.repo.Student().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrStudentNotFound, "student", studentID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, student.SchoolID) {
		return nil, NewPermissionError(p.UserID, studentID, "grade", "read", "student outside caller's scope")
	}
	return s.repo.Grade().ListByStudent(ctx, nil, studentID)
}

func (s *gradeService) Summary(ctx context.Context, p Principal, classID uint, date time.Time) ([]*repositories.GradeSummaryRow, error) {
	class, err := s.accessClass(ctx, p, classID)
	if err != nil {
		return nil, err
	}

	school, err := s.repo.School().GetByID(ctx, nil, class.SchoolID)
	if err != nil {
		return nil, err
	}

	return s.repo.Grade().SummaryForClassDate(ctx, nil, classID, repositories.Date(date), school.Type.UsesNumericGrades())
}

// ExportReport renders the class/date grade sheet as a spreadsheet with
// one row per grade.
func (s *gradeService) ExportReport(ctx context.Context, p Principal, classID uint, date time.Time) ([]byte, error) {
	class, err := s.accessClass(ctx, p, classID)
	if err != nil {
		return nil, err
	}

	day := repositories.Date(date)
	grades, err := s.repo.Grade().ListForClassDate(ctx, nil, classID, day)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Student Code", "Student", "Subject", "Score", "Max Score", "Level", "Description"}
	for i, header := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"1", header)
	}

	for i, grade := range grades {
		row := fmt.Sprintf("%d", i+2)
		if grade.Student != nil {
			f.SetCellValue(sheet, "A"+row, grade.Student.Code)
			f.SetCellValue(sheet, "B"+row, grade.Student.FullName())
		}
		if grade.Subject != nil {
			f.SetCellValue(sheet, "C"+row, grade.Subject.Name)
		}
		if grade.Score != nil {
			f.SetCellValue(sheet, "D"+row, *grade.Score)
		}
		if grade.MaxScore != nil {
			f.SetCellValue(sheet, "E"+row, *grade.MaxScore)
		}
		if grade.Level != nil {
			f.SetCellValue(sheet, "F"+row, string(*grade.Level))
		}
		if grade.Description != nil {
			f.SetCellValue(sheet, "G"+row, *grade.Description)
		}
	}

	f.SetCellValue(sheet, "I1", "Class")
	f.SetCellValue(sheet, "J1", class.Name)
	f.SetCellValue(sheet, "I2", "Date")
	f.SetCellValue(sheet, "J2", day.Format("2006-01-02"))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// accessClass loads the class and enforces read visibility
func (s *gradeService) accessClass(ctx context.Context, p Principal, classID uint) (*models.Class, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", classID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, classID, "grade", "read", "class outside caller's scope")
	}
	return class, nil
}

func (s *gradeService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "error", err, "event_type", event.Type)
	}
}
