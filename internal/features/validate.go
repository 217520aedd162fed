package features

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/loanlens/loanlens/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the applicant fields that failed range or enum checks.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is one failed field check.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Param != "" {
			parts[i] = fmt.Sprintf("%s: %s %s", f.Field, f.Rule, f.Param)
		} else {
			parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Rule)
		}
	}
	return "invalid applicant: " + strings.Join(parts, "; ")
}

// Validate checks applicant fields against the form's ranges and choices.
func Validate(a model.Applicant) error {
	return fieldErrors(validate.Struct(a))
}

// ValidateField checks a single named field of a, for per-input validation
// in interactive forms.
func ValidateField(a model.Applicant, field string) error {
	return fieldErrors(validate.StructPartial(a, field))
}

func fieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating applicant: %w", err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
