package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestGradeService_Record(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: 2, RealUserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}

	class := &models.Class{ID: 5, SchoolID: 7}
	student := &models.Student{ID: 21, SchoolID: 7, Code: "S21"}
	subject := &models.Subject{ID: 31, SchoolID: 7, Name: "Math"}

	newService := func(schoolType models.SchoolType, grades *mockGradeRepo) (*gradeService, *events.MockEventPublisher) {
		publisher := events.NewMockEventPublisher(testLogger())
		repo := &mockRepository{
			class:   &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) { return class, nil }},
			school:  &mockSchoolRepo{getByIDFn: func(id uint) (*models.School, error) { return &models.School{ID: 7, Type: schoolType}, nil }},
			student: &mockStudentRepo{getByIDFn: func(id uint) (*models.Student, error) { return student, nil }},
			subject: &mockSubjectRepo{getByIDFn: func(id uint) (*models.Subject, error) { return subject, nil }},
			grade:   grades,
		}
		service := &gradeService{
			repo:      repo,
			logger:    testLogger(),
			validator: validator.New(),
			publisher: publisher,
		}
		return service, publisher
	}

	baseRequest := func() *validator.GradeRecordRequest {
		return &validator.GradeRecordRequest{
			StudentID: 21,
			SubjectID: 31,
			ClassID:   5,
			Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("numeric school defaults the max score", func(t *testing.T) {
		var saved *models.Grade
		service, publisher := newService(models.SchoolMiddle, &mockGradeRepo{
			createFn: func(grade *models.Grade) error {
				grade.ID = 101
				saved = grade
				return nil
			},
		})

		req := baseRequest()
		req.Score = floatPtr(17.5)

		grade, err := service.Record(ctx, admin, req)
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if saved == nil {
			t.Fatal("expected the grade to be written")
		}
		if grade.MaxScore == nil || *grade.MaxScore != models.DefaultMaxScore {
			t.Errorf("expected default max score %v, got %v", models.DefaultMaxScore, grade.MaxScore)
		}
		if grade.SchoolType != models.SchoolMiddle {
			t.Errorf("school type not stamped: %v", grade.SchoolType)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.GradeRecorded {
			t.Errorf("expected one %s event, got %+v", events.GradeRecorded, published)
		}
	})

	t.Run("numeric school rejects a level", func(t *testing.T) {
		service, _ := newService(models.SchoolHigh, &mockGradeRepo{})

		req := baseRequest()
		req.Level = strPtr("excellent")

		_, err := service.Record(ctx, admin, req)
		if !errors.Is(err, ErrGradeSchemaMismatch) {
			t.Fatalf("expected ErrGradeSchemaMismatch, got %v", err)
		}
	})

	t.Run("numeric school requires a score", func(t *testing.T) {
		service, _ := newService(models.SchoolMiddle, &mockGradeRepo{})

		_, err := service.Record(ctx, admin, baseRequest())
		if !errors.Is(err, ErrGradeSchemaMismatch) {
			t.Fatalf("expected ErrGradeSchemaMismatch, got %v", err)
		}
	})

	t.Run("elementary school rejects a score", func(t *testing.T) {
		service, _ := newService(models.SchoolElementary, &mockGradeRepo{})

		req := baseRequest()
		req.Score = floatPtr(15)

		_, err := service.Record(ctx, admin, req)
		if !errors.Is(err, ErrGradeSchemaMismatch) {
			t.Fatalf("expected ErrGradeSchemaMismatch, got %v", err)
		}
	})

	t.Run("elementary school stores the level", func(t *testing.T) {
		var saved *models.Grade
		service, _ := newService(models.SchoolElementary, &mockGradeRepo{
			createFn: func(grade *models.Grade) error {
				saved = grade
				return nil
			},
		})

		req := baseRequest()
		req.Level = strPtr("very_good")

		if _, err := service.Record(ctx, admin, req); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if saved == nil || saved.Level == nil || *saved.Level != models.GradeLevel("very_good") {
			t.Errorf("level not stored: %+v", saved)
		}
		if saved.Score != nil || saved.MaxScore != nil {
			t.Errorf("elementary grades must not carry scores: %+v", saved)
		}
	})

	t.Run("score above max", func(t *testing.T) {
		service, _ := newService(models.SchoolMiddle, &mockGradeRepo{})

		req := baseRequest()
		req.Score = floatPtr(18)
		req.MaxScore = floatPtr(10)

		_, err := service.Record(ctx, admin, req)
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) || ruleErr.Rule != "score_above_max" {
			t.Fatalf("expected score_above_max rule error, got %v", err)
		}
	})

	t.Run("duplicate grade", func(t *testing.T) {
		service, _ := newService(models.SchoolMiddle, &mockGradeRepo{
			existsFn: func(studentID, subjectID, classID uint, date time.Time) (bool, error) {
				return true, nil
			},
		})

		req := baseRequest()
		req.Score = floatPtr(12)

		_, err := service.Record(ctx, admin, req)
		if !errors.Is(err, ErrDuplicateGrade) {
			t.Fatalf("expected ErrDuplicateGrade, got %v", err)
		}
	})

	t.Run("student from another school", func(t *testing.T) {
		service, _ := newService(models.SchoolMiddle, &mockGradeRepo{})
		student.SchoolID = 8
		defer func() { student.SchoolID = 7 }()

		req := baseRequest()
		req.Score = floatPtr(12)

		_, err := service.Record(ctx, admin, req)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestGradeService_ExportReport(t *testing.T) {
	ctx := context.Background()
	admin := Principal{UserID: 2, Role: models.RoleSchoolAdmin, SchoolID: uintPtr(7)}
	class := &models.Class{ID: 5, Name: "7th Grade", SchoolID: 7}

	score := 17.5
	maxScore := 20.0
	grades := []*models.Grade{
		{
			ID: 1, StudentID: 21, SubjectID: 31, ClassID: 5,
			Score: &score, MaxScore: &maxScore,
			Student: &models.Student{ID: 21, Code: "S21", FirstName: "Mina", LastName: "K"},
			Subject: &models.Subject{ID: 31, Name: "Math"},
		},
	}

	repo := &mockRepository{
		class: &mockClassRepo{getByIDFn: func(id uint) (*models.Class, error) { return class, nil }},
		grade: &mockGradeRepo{listForClassFn: func(classID uint, date time.Time) ([]*models.Grade, error) {
			return grades, nil
		}},
	}
	service := &gradeService{repo: repo, logger: testLogger(), validator: validator.New()}

	data, err := service.ExportReport(ctx, admin, 5, time.Now())
	if err != nil {
		t.Fatalf("ExportReport() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected spreadsheet bytes")
	}
	// xlsx files are zip archives
	if data[0] != 'P' || data[1] != 'K' {
		t.Errorf("output does not look like an xlsx file: % x", data[:4])
	}
}
