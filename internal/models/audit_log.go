package models

import "time"

type AuditAction string

const (
	AuditLogin             AuditAction = "login"
	AuditLogout            AuditAction = "logout"
	AuditCreateSchool      AuditAction = "create_school"
	AuditEditSchool        AuditAction = "edit_school"
	AuditDeleteSchool      AuditAction = "delete_school"
	AuditCreateAdmin       AuditAction = "create_admin"
	AuditImpersonate       AuditAction = "impersonate"
	AuditStopImpersonation AuditAction = "stop_impersonation"
)

// AuditLog is append-only: rows are never updated or deleted. UserID is
// always the real actor, even when the action was performed while
// impersonating another principal.
type AuditLog struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UserID      uint        `json:"user_id" gorm:"not null"`
	Action      AuditAction `json:"action" gorm:"not null;index;size:50"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Timestamp   time.Time   `json:"timestamp" gorm:"not null;index;autoCreateTime"`

	SchoolID     *uint `json:"school_id"`
	TargetUserID *uint `json:"target_user_id"`

	IPAddress *string `json:"ip_address" gorm:"size:45"`
	UserAgent *string `json:"user_agent" gorm:"type:text"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
