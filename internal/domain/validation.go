package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ViolationKind is a machine-readable classification of a field violation.
type ViolationKind string

// Violation kinds reported in FieldError.Kind.
const (
	KindRequired      ViolationKind = "required"
	KindBlank         ViolationKind = "blank"
	KindNull          ViolationKind = "null"
	KindTooLong       ViolationKind = "too_long"
	KindInvalidChoice ViolationKind = "invalid_choice"
	KindEmptyUpdate   ViolationKind = "empty_update"
)

// Field paths used in FieldError.Field.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldBody        = "body"
)

// fieldOrder keeps reported violations in a stable, document-like order.
var fieldOrder = map[string]int{
	FieldBody:        0,
	FieldTitle:       1,
	FieldDescription: 2,
	FieldStatus:      3,
}

// FieldError describes one violated rule on one input field.
type FieldError struct {
	Field   string        `json:"field"`
	Message string        `json:"message"`
	Kind    ViolationKind `json:"type"`
}

// ValidationError carries every violation found in a single input.
// It wraps ErrValidation so callers can test with errors.Is.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// HasField reports whether any violation was recorded for field.
func (e *ValidationError) HasField(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// NewValidationError creates a ValidationError with a single violation.
func NewValidationError(field, message string, kind ViolationKind) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message, Kind: kind}}}
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// TaskInput is the raw, client-supplied shape of a create or update request.
// Every field records presence so updates can merge only what was sent.
type TaskInput struct {
	Title       Optional[string] `json:"title,omitzero"`
	Description Optional[string] `json:"description,omitzero"`
	Status      Optional[string] `json:"status,omitzero"`
}

// taskFields is the normalized shape checked by the struct validator.
// A nil pointer means the field was not supplied and is skipped.
type taskFields struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=100"`
	Description *string `json:"description" validate:"omitnil,description_max"`
	Status      *string `json:"status"      validate:"omitnil,oneof=pending done"`
}

// Validator applies the task validation rules. The description bound is
// configurable; everything else is fixed.
type Validator struct {
	validate       *validator.Validate
	descriptionMax int
}

// NewValidator creates a Validator that accepts descriptions of at most
// descriptionMax characters.
func NewValidator(descriptionMax int) (*Validator, error) {
	if descriptionMax <= 0 {
		return nil, fmt.Errorf("description max length must be positive, got %d", descriptionMax)
	}

	v := &Validator{
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		descriptionMax: descriptionMax,
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.validate.RegisterValidation("description_max", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) <= v.descriptionMax
	}); err != nil {
		return nil, fmt.Errorf("failed to register description validation: %w", err)
	}

	return v, nil
}

// MustNewValidator is like NewValidator but panics on error.
// Intended for tests and package-level defaults.
func MustNewValidator(descriptionMax int) *Validator {
	v, err := NewValidator(descriptionMax)
	if err != nil {
		// ALLOW-PANIC: invalid static configuration
		panic(err)
	}
	return v
}

// DescriptionMaxLength returns the configured description bound.
func (v *Validator) DescriptionMaxLength() int {
	return v.descriptionMax
}

// ValidateCreate checks a create request. The title is trimmed, a missing
// status defaults to pending, and every violation is reported together.
func (v *Validator) ValidateCreate(in TaskInput) (TaskDraft, error) {
	var violations []FieldError

	fields := v.normalize(in, &violations)
	if !in.Title.Set {
		violations = append(violations, FieldError{
			Field:   FieldTitle,
			Message: "title is required",
			Kind:    KindRequired,
		})
	}

	violations = append(violations, v.check(fields)...)
	if len(violations) > 0 {
		return TaskDraft{}, newSortedValidationError(violations)
	}

	draft := TaskDraft{
		Description: fields.Description,
		Status:      TaskStatusPending,
	}
	if fields.Title != nil {
		draft.Title = *fields.Title
	}
	if fields.Status != nil {
		draft.Status = TaskStatus(*fields.Status)
	}
	return draft, nil
}

// ValidateUpdate checks a partial update. Fields that are present obey the
// same rules as on create; an update naming no known field is rejected.
func (v *Validator) ValidateUpdate(in TaskInput) (TaskPatch, error) {
	if !in.Title.Set && !in.Description.Set && !in.Status.Set {
		return TaskPatch{}, NewValidationError(
			FieldBody,
			"at least one of title, description or status must be provided",
			KindEmptyUpdate,
		)
	}

	var violations []FieldError
	fields := v.normalize(in, &violations)
	violations = append(violations, v.check(fields)...)
	if len(violations) > 0 {
		return TaskPatch{}, newSortedValidationError(violations)
	}

	patch := TaskPatch{
		Title:       fields.Title,
		Description: in.Description,
	}
	if fields.Status != nil {
		status := TaskStatus(*fields.Status)
		patch.Status = &status
	}
	return patch, nil
}

// normalize trims the title and records null violations for fields that
// cannot be cleared. Fields reported here are left nil so the struct
// validator does not report them twice.
func (v *Validator) normalize(in TaskInput, violations *[]FieldError) taskFields {
	var fields taskFields

	switch {
	case in.Title.Null:
		*violations = append(*violations, FieldError{
			Field:   FieldTitle,
			Message: "title cannot be null",
			Kind:    KindNull,
		})
	case in.Title.Set:
		trimmed := strings.TrimSpace(in.Title.Value)
		fields.Title = &trimmed
	}

	fields.Description = in.Description.Ptr()

	switch {
	case in.Status.Null:
		*violations = append(*violations, FieldError{
			Field:   FieldStatus,
			Message: "status cannot be null",
			Kind:    KindNull,
		})
	case in.Status.Set:
		status := in.Status.Value
		fields.Status = &status
	}

	return fields
}

// check runs the struct validator and translates its errors.
func (v *Validator) check(fields taskFields) []FieldError {
	err := v.validate.Struct(fields)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: FieldBody, Message: err.Error(), Kind: KindInvalidChoice}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, v.translate(fe))
	}
	return out
}

// translate maps a validator tag failure onto a FieldError.
func (v *Validator) translate(fe validator.FieldError) FieldError {
	field := fe.Field()
	switch fe.Tag() {
	case "min":
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s cannot be empty or blank", field),
			Kind:    KindBlank,
		}
	case "max":
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %s characters", field, fe.Param()),
			Kind:    KindTooLong,
		}
	case "description_max":
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, v.descriptionMax),
			Kind:    KindTooLong,
		}
	case "oneof":
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")),
			Kind:    KindInvalidChoice,
		}
	default:
		return FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s is invalid", field),
			Kind:    ViolationKind(fe.Tag()),
		}
	}
}

func newSortedValidationError(violations []FieldError) *ValidationError {
	sort.SliceStable(violations, func(i, j int) bool {
		return fieldOrder[violations[i].Field] < fieldOrder[violations[j].Field]
	})
	return &ValidationError{Errors: violations}
}
