package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleSuperAdmin  UserRole = "super_admin"
	RoleSchoolAdmin UserRole = "school_admin"
	RoleTeacher     UserRole = "teacher"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher:
		return true
	}
	return false
}

// User is an authenticatable principal. SchoolID is nil only for super
// admins; every other role belongs to exactly one school.
type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Username     string   `json:"username" gorm:"uniqueIndex;not null;size:50" validate:"required,min=3,max=50"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Name         string   `json:"name" gorm:"not null;size:100" validate:"required,min=3,max=100"`
	Role         UserRole `json:"role" gorm:"not null;index;size:20" validate:"required,user_role"`
	Phone        *string  `json:"phone" gorm:"size:20" validate:"omitempty,max=20"`
	Email        *string  `json:"email" gorm:"size:100" validate:"omitempty,email,max=100"`
	IsActive     bool     `json:"is_active" gorm:"not null;default:true"`

	SchoolID *uint `json:"school_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	TeacherProfile *Teacher `json:"teacher_profile,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsSuperAdmin() bool  { return u.Role == RoleSuperAdmin }
func (u *User) IsSchoolAdmin() bool { return u.Role == RoleSchoolAdmin }
func (u *User) IsTeacher() bool     { return u.Role == RoleTeacher }

// Teacher is the one-to-one extension of a User with role=teacher.
// Subjects holds the set of subject names taught, stored as JSONB.
type Teacher struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	UserID   uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	SchoolID uint           `json:"school_id" gorm:"not null;index"`
	Subjects datatypes.JSON `json:"subjects"`
	Phone    *string        `json:"phone" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User    *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Classes []Class `json:"classes,omitempty" gorm:"foreignKey:TeacherID"`
}

func (Teacher) TableName() string {
	return "teachers"
}
