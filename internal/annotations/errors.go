package annotations

import (
	"fmt"
	"strings"
)

// MarkerError defines the interface for marker-literal errors
type MarkerError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of marker errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents an attribute validation error
type ValidationError struct {
	Marker    MarkerType     // Marker the attribute belongs to
	Attribute string         // Attribute name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: @%s attribute '%s' validation failed: expected %s, got %s. %s",
		e.Loc, e.Marker, e.Attribute, e.Expected, e.Actual, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a marker literal that does not parse
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s. %s", e.Loc, e.Msg, e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a schema-related error
type SchemaError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema error: %s. %s", e.Loc, e.Msg, e.Hint)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError represents an error during schema registration
type RegistrationError struct {
	Msg  string // Error message
	Hint string // Suggested fix
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration error: %s. %s", e.Msg, e.Hint)
}

func (e *RegistrationError) Location() SourceLocation { return SourceLocation{} }
func (e *RegistrationError) Suggestion() string       { return e.Hint }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleMarkerErrors collects marker errors in discovery order
type MultipleMarkerErrors struct {
	Errors []MarkerError
}

func (e *MultipleMarkerErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple marker errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for errors.Is / errors.As
func (e *MultipleMarkerErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// HasType returns true if any error of the specified code exists
func (e *MultipleMarkerErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

func newValidationError(m *Marker, attr, expected, actual string) *ValidationError {
	return &ValidationError{
		Marker:    m.Type,
		Attribute: attr,
		Expected:  expected,
		Actual:    actual,
		Loc:       m.Location,
		Hint:      validationHint(m.Type, attr),
	}
}

// validationHint provides marker-specific suggestions for validation errors
func validationHint(t MarkerType, attr string) string {
	switch t {
	case AccessTimeoutMarker:
		return "Example: @AccessTimeout(value=5, unit=SECONDS)"
	case LockMarker:
		return "Lock type must be READ or WRITE. Example: @Lock(READ)"
	case TransactionAttributeMarker:
		return "Use one of MANDATORY, REQUIRED, REQUIRES_NEW, SUPPORTS, NOT_SUPPORTED, NEVER"
	case ConcurrencyManagementMarker:
		return "Concurrency management must be CONTAINER or BEAN"
	case RemoteMarker, LocalMarker:
		return fmt.Sprintf("List interfaces as class references. Example: @%s({pkg.Api, pkg.Admin})", t)
	case RemoteHomeMarker, LocalHomeMarker:
		return fmt.Sprintf("@%s takes the home interface. Example: @%s(pkg.FooHome)", t, t)
	default:
		return fmt.Sprintf("Check the attributes supported by @%s (attribute '%s')", t, attr)
	}
}
