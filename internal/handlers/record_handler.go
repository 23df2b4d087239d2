package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-admin-service/internal/services"
	"github.com/SAP-F-2025/school-admin-service/internal/utils"
	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

// RecordHandler serves the daily record-keeping endpoints: attendance,
// grades, discipline and skill assessments
type RecordHandler struct {
	BaseHandler
	attendance      services.AttendanceService
	grades          services.GradeService
	discipline      services.DisciplineService
	skillAssessment services.SkillAssessmentService
}

func NewRecordHandler(
	attendance services.AttendanceService,
	grades services.GradeService,
	discipline services.DisciplineService,
	skillAssessment services.SkillAssessmentService,
	logger utils.Logger,
) *RecordHandler {
	return &RecordHandler{
		BaseHandler:     NewBaseHandler(logger),
		attendance:      attendance,
		grades:          grades,
		discipline:      discipline,
		skillAssessment: skillAssessment,
	}
}

// ===== ATTENDANCE =====

// RecordAttendance replaces the full attendance set for a class and date
func (h *RecordHandler) RecordAttendance(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.AttendanceRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	sheet, err := h.attendance.Record(c.Request.Context(), p, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// GetAttendanceSheet returns the attendance set for a class and date
func (h *RecordHandler) GetAttendanceSheet(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	sheet, err := h.attendance.Sheet(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sheet)
}

// GetAttendanceSummary returns per-class attendance stats for a school
func (h *RecordHandler) GetAttendanceSummary(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	schoolID := h.parseIDParam(c, "school_id")
	if schoolID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	summary, err := h.attendance.SchoolSummary(c.Request.Context(), p, schoolID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ===== GRADES =====

// RecordGrade writes one grade in the school's grading scheme
func (h *RecordHandler) RecordGrade(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.GradeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	grade, err := h.grades.Record(c.Request.Context(), p, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

// ListClassGrades returns the grades of a class for a date
func (h *RecordHandler) ListClassGrades(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	grades, err := h.grades.ListForClass(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

// ListStudentGrades returns one student's grade history
func (h *RecordHandler) ListStudentGrades(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	grades, err := h.grades.ListByStudent(c.Request.Context(), p, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grades)
}

// GetGradeSummary returns per-subject aggregates for a class and date
func (h *RecordHandler) GetGradeSummary(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	summary, err := h.grades.Summary(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportGradeReport streams the class/date grade sheet as xlsx
func (h *RecordHandler) ExportGradeReport(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	report, err := h.grades.ExportReport(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grades-%d-%s.xlsx", classID, date.Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", report)
}

// ===== DISCIPLINE =====

// CreateDisciplineRecord writes a positive or negative behavior record
func (h *RecordHandler) CreateDisciplineRecord(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.DisciplineCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	record, err := h.discipline.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListClassDiscipline returns a class's discipline records for a date
func (h *RecordHandler) ListClassDiscipline(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	records, err := h.discipline.ListForClass(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ListStudentDiscipline returns one student's discipline history
func (h *RecordHandler) ListStudentDiscipline(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	records, err := h.discipline.ListByStudent(c.Request.Context(), p, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// ===== SKILL ASSESSMENTS =====

// CreateSkillAssessment writes one skill assessment
func (h *RecordHandler) CreateSkillAssessment(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req validator.SkillAssessmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	assessment, err := h.skillAssessment.Create(c.Request.Context(), p, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assessment)
}

// ListClassSkillAssessments returns a class's assessments for a date
func (h *RecordHandler) ListClassSkillAssessments(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	classID := h.parseIDParam(c, "class_id")
	if classID == 0 {
		return
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	assessments, err := h.skillAssessment.ListForClass(c.Request.Context(), p, classID, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

// ListStudentSkillAssessments returns one student's assessment history
func (h *RecordHandler) ListStudentSkillAssessments(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	assessments, err := h.skillAssessment.ListByStudent(c.Request.Context(), p, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessments)
}

func (h *RecordHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrClassNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Class not found",
		})
	case errors.Is(err, services.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Student not found",
		})
	case errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Subject not found",
		})
	case errors.Is(err, services.ErrSkillNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Skill not found",
		})
	case errors.Is(err, services.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "School not found",
		})
	case errors.Is(err, services.ErrDuplicateGrade):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Grade already recorded for this student, subject, class and date",
		})
	case errors.Is(err, services.ErrGradeSchemaMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Grade payload does not match the school's grading scheme",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
