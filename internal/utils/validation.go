package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs the validators in order and stops at the first error
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// Problems collects validation failures across independent fields
type Problems struct {
	errs []error
}

// Check records err when it is not nil
func (p *Problems) Check(err error) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

// Err joins the recorded failures under prefix, or returns nil
func (p *Problems) Err(prefix string) error {
	if len(p.errs) == 0 {
		return nil
	}
	messages := make([]string, len(p.errs))
	for i, err := range p.errs {
		messages[i] = err.Error()
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(messages, "; "))
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		return nil
	}
}

// AtLeast validates that an integer is not below min
func AtLeast(field string, min int) Validator[int] {
	return func(value int) error {
		if value < min {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must be at least %d, got %d", min, value),
			}
		}
		return nil
	}
}

var qualifiedName = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*(\.[\p{L}_$][\p{L}\p{N}_$]*)*$`)

// IsQualifiedName validates a dotted class or package name such as
// jakarta.ejb.EJBHome
func IsQualifiedName(field string) Validator[string] {
	return func(value string) error {
		if !qualifiedName.MatchString(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("%q is not a qualified name", value),
			}
		}
		return nil
	}
}

// Optional skips the validator for the zero value
func Optional[T comparable](validator Validator[T]) Validator[T] {
	return func(value T) error {
		var zero T
		if value == zero {
			return nil
		}
		return validator(value)
	}
}

// ValidateEach validates each item in a slice
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, value := range values {
			if err := itemValidator(value); err != nil {
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   value,
					Message: err.Error(),
				}
			}
		}
		return nil
	}
}
