package annotations

import (
	"fmt"
	"strings"
)

// MarkerType is the tag of a declarative marker variant
type MarkerType int

const (
	// ForeignMarker is any marker without a registered schema. It is carried
	// on the element but never dispatched.
	ForeignMarker MarkerType = iota

	// Component-defining markers
	StatelessMarker
	StatefulMarker
	SingletonMarker
	MessageDrivenMarker

	// Client view markers, read by interface classification
	RemoteMarker
	LocalMarker
	LocalBeanMarker
	RemoteHomeMarker
	LocalHomeMarker
	WebServiceMarker

	// Attribute markers
	AccessTimeoutMarker
	LockMarker
	AsynchronousMarker
	TransactionAttributeMarker
	ConcurrencyManagementMarker
	StartupMarker
	DependsOnMarker
	InterceptorsMarker
	ExcludeDefaultInterceptorsMarker
	TimeoutMarker

	// Lifecycle callback markers
	PostConstructMarker
	PreDestroyMarker
	PostActivateMarker
	PrePassivateMarker
	AroundInvokeMarker
	AroundTimeoutMarker
	AroundConstructMarker
)

var markerNames = map[MarkerType]string{
	ForeignMarker:                    "foreign",
	StatelessMarker:                  "Stateless",
	StatefulMarker:                   "Stateful",
	SingletonMarker:                  "Singleton",
	MessageDrivenMarker:              "MessageDriven",
	RemoteMarker:                     "Remote",
	LocalMarker:                      "Local",
	LocalBeanMarker:                  "LocalBean",
	RemoteHomeMarker:                 "RemoteHome",
	LocalHomeMarker:                  "LocalHome",
	WebServiceMarker:                 "WebService",
	AccessTimeoutMarker:              "AccessTimeout",
	LockMarker:                       "Lock",
	AsynchronousMarker:               "Asynchronous",
	TransactionAttributeMarker:       "TransactionAttribute",
	ConcurrencyManagementMarker:      "ConcurrencyManagement",
	StartupMarker:                    "Startup",
	DependsOnMarker:                  "DependsOn",
	InterceptorsMarker:               "Interceptors",
	ExcludeDefaultInterceptorsMarker: "ExcludeDefaultInterceptors",
	TimeoutMarker:                    "Timeout",
	PostConstructMarker:              "PostConstruct",
	PreDestroyMarker:                 "PreDestroy",
	PostActivateMarker:               "PostActivate",
	PrePassivateMarker:               "PrePassivate",
	AroundInvokeMarker:               "AroundInvoke",
	AroundTimeoutMarker:              "AroundTimeout",
	AroundConstructMarker:            "AroundConstruct",
}

// String returns the marker name as written in marker literals
func (m MarkerType) String() string {
	if name, ok := markerNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMarkerType converts a marker name to its MarkerType.
// Names are matched case-sensitively, the way marker literals are written.
func ParseMarkerType(s string) (MarkerType, error) {
	for t, name := range markerNames {
		if t != ForeignMarker && name == s {
			return t, nil
		}
	}
	return ForeignMarker, fmt.Errorf("unknown marker type: %s", s)
}

// AllMarkerTypes returns every dispatchable marker type in declaration order
func AllMarkerTypes() []MarkerType {
	types := make([]MarkerType, 0, len(markerNames)-1)
	for t := StatelessMarker; t <= AroundConstructMarker; t++ {
		types = append(types, t)
	}
	return types
}

// IsComponentDefining reports whether markers of this type create or augment
// a top-level component descriptor.
func (m MarkerType) IsComponentDefining() bool {
	switch m {
	case StatelessMarker, StatefulMarker, SingletonMarker, MessageDrivenMarker:
		return true
	}
	return false
}

// ComponentDefiningTypes lists the component-defining marker types
func ComponentDefiningTypes() []MarkerType {
	return []MarkerType{StatelessMarker, StatefulMarker, SingletonMarker, MessageDrivenMarker}
}

// SourceLocation represents where a marker was declared
type SourceLocation struct {
	File   string // snapshot file or class name
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns file:line:column, omitting zero parts
func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Marker is one marker instance with its declared attribute values
type Marker struct {
	Type       MarkerType             // Marker type tag
	Name       string                 // Name as written (kept for foreign markers)
	Attributes map[string]interface{} // Typed attribute values
	Explicit   map[string]bool        // Attributes present in the literal (not defaulted)
	Location   SourceLocation         // Source location
	Raw        string                 // Original marker text
}

// String returns the raw marker text, or @Name when it was built in code
func (m *Marker) String() string {
	if m.Raw != "" {
		return m.Raw
	}
	return "@" + m.Name
}

// GetString returns a string attribute value with optional default
func (m *Marker) GetString(attr string, defaultValue ...string) string {
	if value, exists := m.Attributes[attr]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean attribute value with optional default
func (m *Marker) GetBool(attr string, defaultValue ...bool) bool {
	if value, exists := m.Attributes[attr]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetInt returns an integer attribute value with optional default
func (m *Marker) GetInt(attr string, defaultValue ...int) int {
	if value, exists := m.Attributes[attr]; exists {
		if intValue, ok := value.(int); ok {
			return intValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return 0
}

// GetStringSlice returns a string slice attribute value with optional default
func (m *Marker) GetStringSlice(attr string, defaultValue ...[]string) []string {
	if value, exists := m.Attributes[attr]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// HasAttribute checks if an attribute has a value (explicit or defaulted)
func (m *Marker) HasAttribute(attr string) bool {
	_, exists := m.Attributes[attr]
	return exists
}

// IsExplicit reports whether the attribute was written in the marker literal
func (m *Marker) IsExplicit(attr string) bool {
	return m.Explicit[attr]
}

// NewMarker builds a marker in code. Attributes are stored as given and
// recorded as explicit.
func NewMarker(t MarkerType, attrs map[string]interface{}) *Marker {
	m := &Marker{
		Type:       t,
		Name:       t.String(),
		Attributes: make(map[string]interface{}, len(attrs)),
		Explicit:   make(map[string]bool, len(attrs)),
	}
	for k, v := range attrs {
		m.Attributes[k] = v
		m.Explicit[k] = true
	}
	return m
}

// AttributeType represents the type of a marker attribute
type AttributeType int

const (
	StringType AttributeType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the attribute type
func (p AttributeType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// AttributeSpec defines the specification for a marker attribute
type AttributeSpec struct {
	Type         AttributeType           // Attribute type
	Required     bool                    // Whether attribute is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Attribute description
	Validator    func(interface{}) error // Custom validator function
}

// CustomValidator represents a whole-marker validation function
type CustomValidator func(*Marker) error

// Target is the element granularity a marker may be attached to
type Target int

const (
	TypeTarget Target = 1 << iota
	MethodTarget
	ConstructorTarget
)

// String returns a readable list of targets
func (t Target) String() string {
	var parts []string
	if t&TypeTarget != 0 {
		parts = append(parts, "type")
	}
	if t&MethodTarget != 0 {
		parts = append(parts, "method")
	}
	if t&ConstructorTarget != 0 {
		parts = append(parts, "constructor")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// MarkerSchema defines the schema for a marker type
type MarkerSchema struct {
	Type        MarkerType               // Marker type tag
	Description string                   // Human-readable description
	Targets     Target                   // Allowed element granularities
	Attributes  map[string]AttributeSpec // Attribute specifications
	Validators  []CustomValidator        // Whole-marker validation functions
	Examples    []string                 // Usage examples
}

// ConvertToString converts any value to a string
func ConvertToString(value interface{}) (string, error) {
	if strValue, ok := value.(string); ok {
		return strValue, nil
	}
	return fmt.Sprintf("%v", value), nil
}

// ConvertToBool converts various types to boolean
func ConvertToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("invalid boolean string: %s", v)
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// ConvertToInt converts various types to integer
func ConvertToInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		var result int
		if _, err := fmt.Sscanf(v, "%d", &result); err != nil {
			return 0, fmt.Errorf("invalid integer string: %s", v)
		}
		return result, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int", value)
	}
}

// ConvertToStringSlice converts a scalar or list to a string slice
func ConvertToStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result, nil
	case string:
		if v == "" {
			return []string{}, nil
		}
		return []string{v}, nil
	default:
		return []string{fmt.Sprintf("%v", value)}, nil
	}
}
