package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/school-admin-service/internal/validator"
)

// ValidationErrors re-exports the validator's error list so handlers can
// map it without importing two packages
type ValidationErrors = validator.ValidationErrors

// Sentinel errors shared across services
var (
	// Identity
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Tenant entities
	ErrSchoolNotFound       = errors.New("school not found")
	ErrDuplicateSchoolName  = errors.New("school name already exists")
	ErrSchoolHasDependents  = errors.New("school still has students, teachers or classes")
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrTeacherNotFound      = errors.New("teacher not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrDuplicateStudentCode = errors.New("student code already exists in this school")
	ErrStudentInClass       = errors.New("student is still assigned to one or more classes")
	ErrClassNotFound        = errors.New("class not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrDuplicateSubject     = errors.New("subject already exists for this grade")
	ErrSkillNotFound        = errors.New("skill not found")
	ErrNotEnrolled          = errors.New("student is not enrolled in this class")
	ErrAlreadyEnrolled      = errors.New("student is already enrolled in this class")

	// Record-keeping
	ErrDuplicateGrade       = errors.New("grade already recorded for this student, subject, class and date")
	ErrGradeSchemaMismatch  = errors.New("grade payload does not match the school's grading scheme")
	ErrValidationFailed     = errors.New("validation failed")
	ErrEmptyImport          = errors.New("import file contains no data rows")
	ErrUnsupportedImportRow = errors.New("import row is missing required columns")
)

// PermissionError carries context about a denied action
type PermissionError struct {
	UserID   uint
	Target   uint
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.Target, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionError(userID, target uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Target:   target,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// BusinessRuleError carries a violated rule code and context
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}
