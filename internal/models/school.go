package models

import "time"

type SchoolType string

const (
	SchoolElementary SchoolType = "elementary"
	SchoolMiddle     SchoolType = "middle"
	SchoolHigh       SchoolType = "high"
	SchoolCombined   SchoolType = "combined"
)

func (t SchoolType) Valid() bool {
	switch t {
	case SchoolElementary, SchoolMiddle, SchoolHigh, SchoolCombined:
		return true
	}
	return false
}

// UsesNumericGrades reports whether grades for this school type are
// numeric scores rather than qualitative levels.
func (t SchoolType) UsesNumericGrades() bool {
	return t == SchoolMiddle || t == SchoolHigh
}

// DefaultGradeLabels returns the grade-level labels seeded as default
// classes when a school of this type is created.
func (t SchoolType) DefaultGradeLabels() []string {
	switch t {
	case SchoolMiddle:
		return []string{"7th", "8th", "9th"}
	case SchoolHigh:
		return []string{"10th", "11th", "12th"}
	default: // elementary and combined
		return []string{"1st", "2nd", "3rd", "4th", "5th", "6th"}
	}
}

// School is the tenant: every scoped entity belongs to exactly one school.
type School struct {
	ID      uint       `json:"id" gorm:"primaryKey"`
	Name    string     `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	Type    SchoolType `json:"type" gorm:"not null;index;size:20" validate:"required,school_type"`
	Address *string    `json:"address" gorm:"size:200" validate:"omitempty,max=200"`
	Phone   *string    `json:"phone" gorm:"size:20" validate:"omitempty,max=20"`
	Email   *string    `json:"email" gorm:"size:100" validate:"omitempty,email,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (School) TableName() string {
	return "schools"
}

// SkillCategory groups the default skill set seeded for each school.
type SkillCategory string

const (
	SkillAcademic      SkillCategory = "academic"
	SkillCommunication SkillCategory = "communication"
	SkillTechnical     SkillCategory = "technical"
	SkillSocial        SkillCategory = "social"
)

// Skill name is unique within a school, not globally.
type Skill struct {
	ID       uint          `json:"id" gorm:"primaryKey"`
	Name     string        `json:"name" gorm:"not null;size:50;uniqueIndex:uix_skills_name_school" validate:"required,max=50"`
	Category SkillCategory `json:"category" gorm:"size:20"`
	SchoolID uint          `json:"school_id" gorm:"not null;index;uniqueIndex:uix_skills_name_school"`

	CreatedAt time.Time `json:"created_at"`
}

func (Skill) TableName() string {
	return "skills"
}

// DefaultSkills is the fixed set seeded for every new school.
var DefaultSkills = []Skill{
	{Name: "Listening", Category: SkillAcademic},
	{Name: "Writing", Category: SkillAcademic},
	{Name: "Problem Solving", Category: SkillAcademic},
	{Name: "Speaking", Category: SkillCommunication},
	{Name: "Collaboration", Category: SkillCommunication},
	{Name: "Technical", Category: SkillTechnical},
	{Name: "Creativity", Category: SkillSocial},
	{Name: "Teamwork", Category: SkillSocial},
}
