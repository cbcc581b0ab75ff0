package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// shared backs the Email primitive. validator.Validate caches struct
// metadata and is safe for concurrent use.
var shared = NewBusinessValidator()

// BusinessValidator checks tagged structs such as the service configuration.
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents one failed struct field.
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
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = e.Field + " " + e.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// NewBusinessValidator creates a validator with the service's custom tags.
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates a struct and returns nil when it passes.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err == nil {
		return nil
	}
	return ToValidationErrors(err)
}

// Var validates a single value against a tag expression.
func (bv *BusinessValidator) Var(field interface{}, tag string) error {
	return bv.validate.Var(field, tag)
}

// ToValidationErrors converts go-playground errors to ValidationErrors.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Namespace(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Record ids double as the first half of "@id:hash" tokens.
	bv.validate.RegisterValidation("user_id", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return id != "" && len([]rune(id)) <= 16 && !strings.ContainsAny(id, ":@ ")
	})

	// Locale names are the basenames of the embedded locale files.
	bv.validate.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		locale := fl.Field().String()
		if len(locale) < 2 || len(locale) > 8 {
			return false
		}
		for _, r := range locale {
			if r < 'a' || r > 'z' {
				return false
			}
		}
		return true
	})
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "user_id":
		return "must be 1-16 characters without ':', '@' or spaces"
	case "locale":
		return "must be a lowercase locale name"
	}
	return "failed on " + fe.Tag()
}
