package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
)

// Validator wraps go-playground validation with domain rules
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents one field failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// New creates a validator with all domain rules registered
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerDomainRules()

	return v
}

// Validate checks a struct; returns nil when everything passes
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors ValidationErrors
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   fieldErr.Field(),
			Message: v.getErrorMessage(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return errors
}

func (v *Validator) registerDomainRules() {
	v.validate.RegisterValidation("school_type", func(fl validator.FieldLevel) bool {
		return models.SchoolType(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("discipline_type", func(fl validator.FieldLevel) bool {
		return models.DisciplineType(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("grade_level", func(fl validator.FieldLevel) bool {
		return models.GradeLevel(fl.Field().String()).Valid()
	})

	// Any status string is accepted on the wire; unknown values are
	// coerced to present at the service layer. The rule only rejects
	// empty values.
	v.validate.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Loose phone shape check; canonical normalization happens in the
	// notifier right before delivery
	v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		if phone == "" {
			return true
		}
		digits := 0
		for _, r := range phone {
			switch {
			case unicode.IsDigit(r):
				digits++
			case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
			default:
				return false
			}
		}
		return digits >= 9 && digits <= 15
	})
}

func (v *Validator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "school_type":
		return "must be elementary, middle, high or combined"
	case "user_role":
		return "must be a valid user role"
	case "discipline_type":
		return "must be positive or negative"
	case "grade_level":
		return "must be excellent, very_good, good or needs_effort"
	case "attendance_status":
		return "must not be empty"
	case "phone":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
