package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	personNamePattern  = regexp.MustCompile(`^[a-zA-Z\s\-.']+$`)
	facultyNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-.',&()]+$`)
)

// NewValidator returns a validator with the case intake rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("facultyname", func(fl validator.FieldLevel) bool {
		return facultyNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldError is a client facing description of one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationDetails flattens validator errors for API responses.
func ValidationDetails(err error) []FieldError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	details := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		details = append(details, FieldError{
			Field:   fe.Namespace(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date formatted as YYYY-MM-DD"
	default:
		return fe.Field() + " validation failed: " + fe.Tag()
	}
}
