package models

import (
	"fmt"
	"strings"
)

// ComponentKind is the top-level kind of a component descriptor
type ComponentKind int

const (
	// UnknownKind is the kind of a placeholder that only records sparse
	// external data
	UnknownKind ComponentKind = iota
	SessionKind
	MessageDrivenKind
	// UnsupportedKind is a kind the external document names but the
	// resolver does not handle
	UnsupportedKind
)

// String returns the string representation of the component kind
func (k ComponentKind) String() string {
	switch k {
	case SessionKind:
		return "Session"
	case MessageDrivenKind:
		return "MessageDriven"
	case UnsupportedKind:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// ParseComponentKind converts a kind name; the empty string is UnknownKind.
// Other names give UnsupportedKind with an error.
func ParseComponentKind(s string) (ComponentKind, error) {
	switch strings.ToLower(s) {
	case "", "unknown":
		return UnknownKind, nil
	case "session":
		return SessionKind, nil
	case "messagedriven", "message-driven":
		return MessageDrivenKind, nil
	}
	return UnsupportedKind, fmt.Errorf("unsupported component kind: %s", s)
}

// SessionType is the subtype of a session component
type SessionType int

const (
	NoSessionType SessionType = iota
	Stateless
	Stateful
	Singleton
)

// String returns the string representation of the session type
func (t SessionType) String() string {
	switch t {
	case Stateless:
		return "Stateless"
	case Stateful:
		return "Stateful"
	case Singleton:
		return "Singleton"
	default:
		return ""
	}
}

// ParseSessionType converts a session type name; the empty string is NoSessionType
func ParseSessionType(s string) (SessionType, error) {
	switch strings.ToLower(s) {
	case "":
		return NoSessionType, nil
	case "stateless":
		return Stateless, nil
	case "stateful":
		return Stateful, nil
	case "singleton":
		return Singleton, nil
	}
	return NoSessionType, fmt.Errorf("unsupported session type: %s", s)
}

// ConcurrencyMode is the concurrency management mode of a singleton
type ConcurrencyMode string

const (
	ContainerConcurrency ConcurrencyMode = "CONTAINER"
	BeanConcurrency      ConcurrencyMode = "BEAN"
)

// LockType is the container-managed lock applied to a method
type LockType string

const (
	ReadLock  LockType = "READ"
	WriteLock LockType = "WRITE"
)

// AccessTimeout bounds how long a concurrent call may block
type AccessTimeout struct {
	Value int    `yaml:"value" json:"value"`
	Unit  string `yaml:"unit" json:"unit"`
}

// String returns value unit
func (a AccessTimeout) String() string {
	return fmt.Sprintf("%d %s", a.Value, a.Unit)
}

// Source records where a piece of descriptor data came from
type Source int

const (
	// External data comes from the external configuration document
	External Source = iota
	// Inline data comes from markers on program elements
	Inline
)

// String returns the string representation of the source
func (s Source) String() string {
	if s == Inline {
		return "inline"
	}
	return "external"
}

// MethodRef names a method by declaring class and signature. Two methods
// with the same signature on different classes of one hierarchy are
// distinct references.
type MethodRef struct {
	Class  string   `yaml:"class,omitempty" json:"class,omitempty"`
	Name   string   `yaml:"name" json:"name"`
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`
}

// NewMethodRef creates a method reference
func NewMethodRef(class, name string, params ...string) MethodRef {
	return MethodRef{Class: class, Name: name, Params: params}
}

// Signature returns name(param,param)
func (r MethodRef) Signature() string {
	return r.Name + "(" + strings.Join(r.Params, ",") + ")"
}

// Key returns the identity of the reference: declaring class plus signature
func (r MethodRef) Key() string {
	return r.Class + "#" + r.Signature()
}

// String returns Class.name(params)
func (r MethodRef) String() string {
	if r.Class == "" {
		return r.Signature()
	}
	return r.Class + "." + r.Signature()
}

// Field names a settable descriptor field for provenance tracking
type Field string

const (
	ClassField                    Field = "class"
	SessionTypeField              Field = "sessionType"
	MappedNameField               Field = "mappedName"
	DescriptionField              Field = "description"
	ConcurrencyField              Field = "concurrencyManagement"
	LocalBeanField                Field = "localBean"
	RemoteHomeField               Field = "remoteHome"
	LocalHomeField                Field = "localHome"
	TimeoutMethodField            Field = "timeoutMethod"
	InitOnStartupField            Field = "initOnStartup"
	DependsOnField                Field = "dependsOn"
	MessageListenerInterfaceField Field = "messageListenerInterface"
)
