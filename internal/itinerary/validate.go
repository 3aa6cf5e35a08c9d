package itinerary

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// hhmmPattern matches a 24-hour wall-clock time, 00:00 through 23:59.
var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// FieldViolation describes one failed rule on one item field.
// Field uses the JSON name of the field (e.g. "duration_minutes").
type FieldViolation struct {
	Field   string
	Rule    string
	Message string
}

// ValidationResult is the outcome of validating one timeline item.
// Violations are listed in struct field order, so the same item always
// produces the same result.
type ValidationResult struct {
	Violations []FieldViolation
}

// Valid reports whether no rule failed.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// Err returns nil for a valid result, otherwise a *domain.ValidationError
// naming the first offending field.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	v := r.Violations[0]
	return &domain.ValidationError{Field: v.Field, Message: v.Message}
}

// Validator checks timeline items and structural rules.
// The struct tags on domain.TimelineItem carry the field rules; Validator
// adds the custom "hhmm" tag and maps failures to FieldViolations.
// A Validator is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the item rules registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	// RegisterValidation only fails on an empty tag or nil func.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ValidateItem applies the field rules to item:
//   - time is a 24-hour HH:MM string
//   - 0 <= cost <= domain.MaxItemCost
//   - 0 < duration_minutes <= domain.MaxItemDurationMinutes
//   - activity is at most 200 characters
func (v *Validator) ValidateItem(item domain.TimelineItem) ValidationResult {
	err := v.validate.Struct(item)
	if err == nil {
		return ValidationResult{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationResult{Violations: []FieldViolation{{Field: "item", Rule: "struct", Message: err.Error()}}}
	}

	out := ValidationResult{Violations: make([]FieldViolation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return out
}

// ValidateDelete enforces that a day keeps at least one timeline item.
// Returns an error wrapping domain.ErrInvariant when day has one item or none.
func (v *Validator) ValidateDelete(day domain.Day) error {
	if len(day.Timeline) <= 1 {
		return fmt.Errorf("%w: day %d must keep at least one timeline item", domain.ErrInvariant, day.DayIndex)
	}
	return nil
}

// violationMessage renders a human-readable message for a failed tag.
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "hhmm":
		return fmt.Sprintf("must be a 24-hour HH:MM time (got %q)", fe.Value())
	case "min":
		return fmt.Sprintf("must be at least %s (got %v)", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be greater than %s (got %v)", fe.Param(), fe.Value())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s (got %v)", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}

// jsonFieldName reports struct fields by their JSON name so violations use
// the same vocabulary as the API.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
