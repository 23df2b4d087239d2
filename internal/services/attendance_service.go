package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/school-admin-service/internal/events"
	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/notifier"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

type attendanceService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	dispatcher *notifier.Dispatcher
	publisher  events.Publisher
}

func NewAttendanceService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	dispatcher *notifier.Dispatcher,
	publisher events.Publisher,
) AttendanceService {
	return &attendanceService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

// Record replaces the whole attendance set for (class, date). Unknown
// status strings are coerced to present rather than rejected; the client
// sends free-form values from older app versions.
func (s *attendanceService) Record(ctx context.Context, p Principal, req *validator.AttendanceRecordRequest) (*AttendanceSheet, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	class, err := s.repo.Class().GetWithStudents(ctx, nil, req.ClassID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", req.ClassID)
		}
		return nil, err
	}
	if !CanManageClass(p, class) {
		return nil, NewPermissionError(p.UserID, req.ClassID, "attendance", "record", "class outside caller's scope")
	}

	// Only current roster members can appear on the sheet; an entry for
	// any other student id is rejected before anything is written
	roster := make(map[uint]bool, len(class.Students))
	for _, student := range class.Students {
		roster[student.ID] = true
	}

	date := repositories.Date(req.Date)
	rows := make([]*models.Attendance, 0, len(req.Entries))
	seen := make(map[uint]bool, len(req.Entries))
	var absent, late int

	for _, entry := range req.Entries {
		if !roster[entry.StudentID] {
			return nil, NewBusinessRuleError("student_not_in_class",
				"student is not enrolled in this class", map[string]interface{}{
					"student_id": entry.StudentID,
					"class_id":   class.ID,
				})
		}
		if seen[entry.StudentID] {
			return nil, NewBusinessRuleError("duplicate_attendance_entry",
				"student appears more than once", map[string]interface{}{
					"student_id": entry.StudentID,
				})
		}
		seen[entry.StudentID] = true

		status := models.AttendanceStatus(entry.Status)
		if !status.Valid() {
			status = models.AttendancePresent
		}
		switch status {
		case models.AttendanceAbsent:
			absent++
		case models.AttendanceLate:
			late++
		}

		rows = append(rows, &models.Attendance{
			Date:      date,
			Status:    status,
			ClassID:   class.ID,
			StudentID: entry.StudentID,
			TeacherID: p.UserID,
		})
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.Attendance().ReplaceForClassDate(ctx, nil, class.ID, date, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	// Guardian messages and the event go out after the commit; their
	// failures are logged and swallowed
	s.notifyGuardians(ctx, rows)

	s.publishEvent(ctx, events.NewEvent(events.AttendanceRecorded, events.AttendanceEvent{
		ClassID:   class.ID,
		SchoolID:  class.SchoolID,
		Date:      date.Format("2006-01-02"),
		Recorded:  len(rows),
		Absent:    absent,
		Late:      late,
		TeacherID: p.UserID,
	}))

	s.logger.Info("attendance recorded", "class_id", class.ID, "date", date.Format("2006-01-02"),
		"recorded", len(rows), "absent", absent, "late", late)

	return &AttendanceSheet{ClassID: class.ID, Date: date, Rows: rows}, nil
}

func (s *attendanceService) Sheet(ctx context.Context, p Principal, classID uint, date time.Time) (*AttendanceSheet, error) {
	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, maskNotFound(p, ErrClassNotFound, "class", classID)
		}
		return nil, err
	}
	if !CanAccessSchool(p, class.SchoolID) {
		return nil, NewPermissionError(p.UserID, classID, "attendance", "read", "class outside caller's scope")
	}

	day := repositories.Date(date)
	rows, err := s.repo.Attendance().ListForClassDate(ctx, nil, classID, day)
	if err != nil {
		return nil, err
	}
	return &AttendanceSheet{ClassID: classID, Date: day, Rows: rows}, nil
}

func (s *attendanceService) SchoolSummary(ctx context.Context, p Principal, schoolID uint, date time.Time) ([]*repositories.ClassAttendanceStat, error) {
	if !CanAccessSchool(p, schoolID) {
		return nil, NewPermissionError(p.UserID, schoolID, "attendance", "summary", "school outside caller's scope")
	}
	if p.Role == models.RoleTeacher {
		return nil, NewPermissionError(p.UserID, schoolID, "attendance", "summary", "summaries are admin only")
	}
	return s.repo.Attendance().SummaryForSchoolDate(ctx, nil, schoolID, repositories.Date(date))
}

// notifyGuardians queues an SMS for every absent or late row whose
// student has a parent phone on file
func (s *attendanceService) notifyGuardians(ctx context.Context, rows []*models.Attendance) {
	if s.dispatcher == nil {
		return
	}

	for _, row := range rows {
		if !row.Status.NeedsNotification() {
			continue
		}

		student, err := s.repo.Student().GetByID(ctx, nil, row.StudentID)
		if err != nil {
			s.logger.Warn("guardian notification skipped, student lookup failed",
				"error", err, "student_id", row.StudentID)
			continue
		}
		if student.ParentPhone == nil || *student.ParentPhone == "" {
			continue
		}

		var body string
		if row.Status == models.AttendanceAbsent {
			body = notifier.AbsentMessage(student.FullName(), row.Date)
		} else {
			body = notifier.LateMessage(student.FullName(), row.Date)
		}
		s.dispatcher.Enqueue(*student.ParentPhone, body)
	}
}

func (s *attendanceService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "error", err, "event_type", event.Type)
	}
}
