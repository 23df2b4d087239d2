package services

import (
	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// Principal is the authenticated caller. During impersonation UserID is
// the effective user and RealUserID stays on the operator who logged
// in; audit entries always attribute to RealUserID.
type Principal struct {
	UserID     uint            `json:"user_id"`
	RealUserID uint            `json:"real_user_id"`
	Username   string          `json:"username"`
	Role       models.UserRole `json:"role"`
	SchoolID   *uint           `json:"school_id,omitempty"`

	// TeacherID is the teacher profile ID, set only for teacher roles
	TeacherID *uint `json:"teacher_id,omitempty"`
}

// ActingAs reports whether this principal is an impersonation session
func (p Principal) ActingAs() bool {
	return p.RealUserID != 0 && p.RealUserID != p.UserID
}

// CanAccessSchool decides tenant visibility. Cross-tenant access is
// denied even when the target exists; callers must translate a false
// result to a Forbidden error, never NotFound.
func CanAccessSchool(p Principal, schoolID uint) bool {
	if p.Role == models.RoleSuperAdmin {
		return true
	}
	return p.SchoolID != nil && *p.SchoolID == schoolID
}

// maskNotFound hides a missing tenant-scoped row from scoped callers.
// A super admin learns the id does not exist; everyone else gets the
// same Forbidden outcome as a cross-tenant reference, so existence
// never leaks across schools.
func maskNotFound(p Principal, notFound error, resource string, id uint) error {
	if p.Role == models.RoleSuperAdmin {
		return notFound
	}
	return NewPermissionError(p.UserID, id, resource, "access", resource+" outside caller's scope")
}

// CanManageClass decides write access to a class's records
func CanManageClass(p Principal, class *models.Class) bool {
	if class == nil {
		return false
	}

	switch p.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleSchoolAdmin:
		return p.SchoolID != nil && *p.SchoolID == class.SchoolID
	case models.RoleTeacher:
		if !CanAccessSchool(p, class.SchoolID) {
			return false
		}
		return p.TeacherID != nil && class.TeacherID != nil && *p.TeacherID == *class.TeacherID
	}
	return false
}
