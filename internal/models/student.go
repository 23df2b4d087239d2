package models

import "time"

// Student code is unique within its school, not globally.
type Student struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"not null;size:20;uniqueIndex:uix_students_code_school" validate:"required,max=20"`
	FirstName   string  `json:"first_name" gorm:"not null;size:50" validate:"required,max=50"`
	LastName    string  `json:"last_name" gorm:"not null;size:50" validate:"required,max=50"`
	Grade       string  `json:"grade" gorm:"not null;index;size:20" validate:"required,max=20"`
	ParentPhone *string `json:"parent_phone" gorm:"size:20" validate:"omitempty,max=20"`
	ParentEmail *string `json:"parent_email" gorm:"size:100" validate:"omitempty,email,max=100"`

	SchoolID uint `json:"school_id" gorm:"not null;index;uniqueIndex:uix_students_code_school"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Classes []Class `json:"classes,omitempty" gorm:"many2many:class_students"`
}

func (Student) TableName() string {
	return "students"
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Class membership is a set: a student joins a class at most once.
type Class struct {
	ID    uint    `json:"id" gorm:"primaryKey"`
	Name  string  `json:"name" gorm:"not null;size:50" validate:"required,max=50"`
	Grade string  `json:"grade" gorm:"not null;index;size:20" validate:"required,max=20"`
	Room  *string `json:"room" gorm:"size:20" validate:"omitempty,max=20"`

	TeacherID *uint `json:"teacher_id" gorm:"index"`
	SchoolID  uint  `json:"school_id" gorm:"not null;index"`
	SubjectID *uint `json:"subject_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher  *Teacher  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Students []Student `json:"students,omitempty" gorm:"many2many:class_students"`
}

func (Class) TableName() string {
	return "classes"
}

// Subject is unique per (name, grade, school).
type Subject struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;size:50;uniqueIndex:uix_subjects_name_grade_school" validate:"required,max=50"`
	Grade    string `json:"grade" gorm:"not null;index;size:20;uniqueIndex:uix_subjects_name_grade_school" validate:"required,max=20"`
	SchoolID uint   `json:"school_id" gorm:"not null;index;uniqueIndex:uix_subjects_name_grade_school"`

	TeacherID *uint `json:"teacher_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subject) TableName() string {
	return "subjects"
}
