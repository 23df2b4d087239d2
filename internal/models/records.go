package models

import "time"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// NeedsNotification reports whether this status triggers a guardian SMS.
func (s AttendanceStatus) NeedsNotification() bool {
	return s == AttendanceAbsent || s == AttendanceLate
}

// Attendance holds one row per (class, student, date). Re-submission for
// a (class, date) replaces the whole day's set, never a per-row upsert.
type Attendance struct {
	ID     uint             `json:"id" gorm:"primaryKey"`
	Date   time.Time        `json:"date" gorm:"type:date;not null;index;uniqueIndex:uix_attendance_class_student_date"`
	Status AttendanceStatus `json:"status" gorm:"not null;index;size:20"`

	ClassID   uint `json:"class_id" gorm:"not null;uniqueIndex:uix_attendance_class_student_date"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:uix_attendance_class_student_date"`
	TeacherID uint `json:"teacher_id" gorm:"not null"` // recording user, kept for attribution

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Attendance) TableName() string {
	return "attendance"
}

type DisciplineType string

const (
	DisciplinePositive DisciplineType = "positive"
	DisciplineNegative DisciplineType = "negative"
)

func (t DisciplineType) Valid() bool {
	return t == DisciplinePositive || t == DisciplineNegative
}

type Discipline struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Date        time.Time      `json:"date" gorm:"type:date;not null;index"`
	Type        DisciplineType `json:"type" gorm:"not null;index;size:20" validate:"required,discipline_type"`
	Points      int            `json:"points" gorm:"not null;default:0" validate:"min=-10,max=10"`
	Description string         `json:"description" gorm:"type:text;not null" validate:"required,min=5,max=500"`

	StudentID uint  `json:"student_id" gorm:"not null;index"`
	TeacherID uint  `json:"teacher_id" gorm:"not null"`
	ClassID   *uint `json:"class_id"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Discipline) TableName() string {
	return "discipline"
}

type GradeLevel string

const (
	LevelExcellent   GradeLevel = "excellent"
	LevelVeryGood    GradeLevel = "very_good"
	LevelGood        GradeLevel = "good"
	LevelNeedsEffort GradeLevel = "needs_effort"
)

func (l GradeLevel) Valid() bool {
	switch l {
	case LevelExcellent, LevelVeryGood, LevelGood, LevelNeedsEffort:
		return true
	}
	return false
}

// DefaultMaxScore is the numeric grading ceiling for middle/high schools.
const DefaultMaxScore = 20.0

// Grade carries exactly one of the two payload shapes, chosen by the
// owning school's type at write time: Score/MaxScore for middle and high
// schools, Level for elementary. At most one grade per
// (student, subject, class, date).
type Grade struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        time.Time `json:"date" gorm:"type:date;not null;index;uniqueIndex:uix_grades_student_subject_class_date"`
	Description *string   `json:"description" gorm:"type:text" validate:"omitempty,max=500"`

	StudentID uint `json:"student_id" gorm:"not null;index;uniqueIndex:uix_grades_student_subject_class_date"`
	SubjectID uint `json:"subject_id" gorm:"not null;uniqueIndex:uix_grades_student_subject_class_date"`
	ClassID   uint `json:"class_id" gorm:"not null;index;uniqueIndex:uix_grades_student_subject_class_date"`
	TeacherID uint `json:"teacher_id" gorm:"not null"`

	Score    *float64    `json:"score,omitempty"`
	MaxScore *float64    `json:"max_score,omitempty"`
	Level    *GradeLevel `json:"level,omitempty" gorm:"size:20"`

	SchoolType SchoolType `json:"school_type" gorm:"not null;size:20"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Grade) TableName() string {
	return "grades"
}

// SkillAssessment uses the same four-point scale as elementary grades.
// A student can be assessed on several skills in one day.
type SkillAssessment struct {
	ID    uint       `json:"id" gorm:"primaryKey"`
	Date  time.Time  `json:"date" gorm:"type:date;not null;index"`
	Level GradeLevel `json:"level" gorm:"not null;size:20" validate:"required,grade_level"`
	Notes *string    `json:"notes" gorm:"type:text" validate:"omitempty,max=500"`

	StudentID uint `json:"student_id" gorm:"not null;index"`
	SkillID   uint `json:"skill_id" gorm:"not null"`
	ClassID   uint `json:"class_id" gorm:"not null"`
	TeacherID uint `json:"teacher_id" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Student *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Skill   *Skill   `json:"skill,omitempty" gorm:"foreignKey:SkillID"`
}

func (SkillAssessment) TableName() string {
	return "skill_assessments"
}
