package errors

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Severity decides whether a finding aborts its occurrence
type Severity int

const (
	// Warning degrades the occurrence to a no-op
	Warning Severity = iota
	// Fatal aborts processing of the occurrence
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "warning"
}

// Code represents the type of finding
type Code int

const (
	UnknownCode Code = iota

	// Fatal/structural
	InterfaceConflictCode
	ClassMismatchCode
	KindMismatchCode
	SessionTypeConflictCode
	UnsupportedKindCode
	InvalidHomeCode
	TooManyErrorsCode

	// Validation/advisory
	IncompatibleSuperclassMarkerCode
	InapplicableMarkerCode
	InvalidMarkerCode
	MissingClassCode
)

var codeNames = map[Code]string{
	UnknownCode:                      "Unknown",
	InterfaceConflictCode:            "InterfaceConflict",
	ClassMismatchCode:                "ClassMismatch",
	KindMismatchCode:                 "KindMismatch",
	SessionTypeConflictCode:          "SessionTypeConflict",
	UnsupportedKindCode:              "UnsupportedKind",
	InvalidHomeCode:                  "InvalidHome",
	TooManyErrorsCode:                "TooManyErrors",
	IncompatibleSuperclassMarkerCode: "IncompatibleSuperclassMarker",
	InapplicableMarkerCode:           "InapplicableMarker",
	InvalidMarkerCode:                "InvalidMarker",
	MissingClassCode:                 "MissingClass",
}

// String returns the string representation of the code
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// DefaultSeverity returns the severity findings of this code carry unless
// the caller overrides it
func (c Code) DefaultSeverity() Severity {
	switch c {
	case InterfaceConflictCode, ClassMismatchCode, KindMismatchCode,
		SessionTypeConflictCode, UnsupportedKindCode, InvalidHomeCode, TooManyErrorsCode:
		return Fatal
	default:
		return Warning
	}
}

// Finding is a fatal or advisory condition attached to the element that
// produced it. It carries enough context to be acted on alone.
type Finding struct {
	Severity  Severity
	Code      Code
	Key       string        // localizable message key
	Args      []interface{} // message arguments
	Element   string        // originating element
	Marker    string        // marker type being processed
	Component string        // descriptor name, when known
	Cause     error         // underlying error cause
	Hints     []string      // helpful suggestions for fixing the finding
}

// New creates a finding with the code's default severity and message key
func New(code Code, args ...interface{}) *Finding {
	return &Finding{
		Severity: code.DefaultSeverity(),
		Code:     code,
		Key:      code.Key(),
		Args:     args,
	}
}

// Wrap creates a finding caused by another error
func Wrap(code Code, cause error, args ...interface{}) *Finding {
	return New(code, args...).WithCause(cause)
}

// WithElement sets the originating element
func (f *Finding) WithElement(element fmt.Stringer) *Finding {
	f.Element = element.String()
	return f
}

// WithMarker sets the marker type being processed
func (f *Finding) WithMarker(marker fmt.Stringer) *Finding {
	f.Marker = marker.String()
	return f
}

// WithComponent sets the descriptor name
func (f *Finding) WithComponent(name string) *Finding {
	f.Component = name
	return f
}

// WithCause adds an underlying error cause
func (f *Finding) WithCause(cause error) *Finding {
	f.Cause = cause
	return f
}

// WithSuggestion adds a helpful suggestion
func (f *Finding) WithSuggestion(suggestion string) *Finding {
	f.Hints = append(f.Hints, suggestion)
	return f
}

// WithSeverity overrides the default severity
func (f *Finding) WithSeverity(s Severity) *Finding {
	f.Severity = s
	return f
}

// IsFatal reports whether the finding aborts its occurrence
func (f *Finding) IsFatal() bool {
	return f.Severity == Fatal
}

// Message renders the message in the default language
func (f *Finding) Message() string {
	return f.Localize(language.English)
}

// Localize renders the message for a language, falling back to English
func (f *Finding) Localize(tag language.Tag) string {
	return Printer(tag).Sprintf(f.Key, f.Args...)
}

// Error implements the error interface
func (f *Finding) Error() string {
	if f.Element == "" {
		return f.Message()
	}
	return fmt.Sprintf("%s: %s", f.Element, f.Message())
}

// Unwrap returns the underlying error cause for error chain inspection
func (f *Finding) Unwrap() error {
	return f.Cause
}

// Findings collects the findings of a pass in discovery order
type Findings struct {
	list []*Finding
}

// NewFindings creates an empty collection
func NewFindings() *Findings {
	return &Findings{}
}

// Add adds findings to the collection
func (f *Findings) Add(findings ...*Finding) {
	for _, finding := range findings {
		if finding != nil {
			f.list = append(f.list, finding)
		}
	}
}

// All returns every finding in discovery order
func (f *Findings) All() []*Finding {
	return f.list
}

// Count returns the number of findings
func (f *Findings) Count() int {
	return len(f.list)
}

// IsEmpty returns true if there are no findings
func (f *Findings) IsEmpty() bool {
	return len(f.list) == 0
}

// Fatal returns the fatal findings
func (f *Findings) Fatal() []*Finding {
	return f.filter(func(x *Finding) bool { return x.IsFatal() })
}

// Warnings returns the advisory findings
func (f *Findings) Warnings() []*Finding {
	return f.filter(func(x *Finding) bool { return !x.IsFatal() })
}

// HasFatal returns true if any finding is fatal
func (f *Findings) HasFatal() bool {
	return len(f.Fatal()) > 0
}

// GetByCode returns all findings of a specific code
func (f *Findings) GetByCode(code Code) []*Finding {
	return f.filter(func(x *Finding) bool { return x.Code == code })
}

// HasCode returns true if any finding of the specified code exists
func (f *Findings) HasCode(code Code) bool {
	return len(f.GetByCode(code)) > 0
}

// Error implements the error interface
func (f *Findings) Error() string {
	if len(f.list) == 0 {
		return "no findings"
	}
	if len(f.list) == 1 {
		return f.list[0].Error()
	}

	var messages []string
	for i, finding := range f.list {
		messages = append(messages, fmt.Sprintf("  %d. [%s] %s", i+1, finding.Severity, finding.Error()))
	}
	return fmt.Sprintf("multiple findings (%d total):\n%s", len(f.list), strings.Join(messages, "\n"))
}

// Unwrap returns the findings for errors.Is / errors.As
func (f *Findings) Unwrap() []error {
	errs := make([]error, len(f.list))
	for i, finding := range f.list {
		errs[i] = finding
	}
	return errs
}

func (f *Findings) filter(keep func(*Finding) bool) []*Finding {
	var result []*Finding
	for _, finding := range f.list {
		if keep(finding) {
			result = append(result, finding)
		}
	}
	return result
}
