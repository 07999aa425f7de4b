package classindex

import (
	"fmt"
	"strings"

	"github.com/toyz/descres/internal/annotations"
)

// ElementKind is the granularity of a program element
type ElementKind int

const (
	TypeElement ElementKind = iota
	MethodElement
	ConstructorElement
)

// String returns the string representation of the element kind
func (k ElementKind) String() string {
	switch k {
	case TypeElement:
		return "type"
	case MethodElement:
		return "method"
	case ConstructorElement:
		return "constructor"
	default:
		return "unknown"
	}
}

// Target returns the marker target matching this element kind
func (k ElementKind) Target() annotations.Target {
	switch k {
	case MethodElement:
		return annotations.MethodTarget
	case ConstructorElement:
		return annotations.ConstructorTarget
	default:
		return annotations.TypeTarget
	}
}

// Method is a declared method or constructor
type Method struct {
	Name      string
	Params    []string
	Returns   string
	Declaring string // set by Index.Add
	Public    bool
	Static    bool
	Markers   []*annotations.Marker
}

// Signature returns name(param,param), the per-class identity of a method
func (m *Method) Signature() string {
	return Signature(m.Name, m.Params)
}

// Marker returns the marker of the given type declared on the method
func (m *Method) Marker(t annotations.MarkerType) (*annotations.Marker, bool) {
	return findMarker(m.Markers, t)
}

// String returns Declaring.name(params)
func (m *Method) String() string {
	if m.Declaring == "" {
		return m.Signature()
	}
	return m.Declaring + "." + m.Signature()
}

// Class is one type of the deployment unit: a class or an interface
type Class struct {
	Name         string
	Super        string
	Interfaces   []string
	Interface    bool
	Methods      []*Method
	Constructors []*Method
	Markers      []*annotations.Marker
}

// SimpleName returns the unqualified class name
func (c *Class) SimpleName() string {
	return SimpleName(c.Name)
}

// Marker returns the type-level marker of the given type
func (c *Class) Marker(t annotations.MarkerType) (*annotations.Marker, bool) {
	return findMarker(c.Markers, t)
}

// HasMarker reports whether the class carries a type-level marker of type t
func (c *Class) HasMarker(t annotations.MarkerType) bool {
	_, ok := c.Marker(t)
	return ok
}

// Method returns the method declared on this class with the given signature
func (c *Class) Method(signature string) (*Method, bool) {
	for _, m := range c.Methods {
		if m.Signature() == signature {
			return m, true
		}
	}
	return nil, false
}

// Element identifies a class, one of its methods or one of its constructors
type Element struct {
	Kind   ElementKind
	Class  string
	Method *Method
}

// TypeOf returns the type element for a class
func TypeOf(class string) Element {
	return Element{Kind: TypeElement, Class: class}
}

// MethodOf returns the method element for a declared method
func MethodOf(m *Method) Element {
	return Element{Kind: MethodElement, Class: m.Declaring, Method: m}
}

// ConstructorOf returns the constructor element for a declared constructor
func ConstructorOf(m *Method) Element {
	return Element{Kind: ConstructorElement, Class: m.Declaring, Method: m}
}

// String returns a readable element reference
func (e Element) String() string {
	switch e.Kind {
	case MethodElement, ConstructorElement:
		if e.Method != nil {
			return fmt.Sprintf("%s %s.%s", e.Kind, e.Class, e.Method.Signature())
		}
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Class)
}

// Signature formats a method signature
func Signature(name string, params []string) string {
	return name + "(" + strings.Join(params, ",") + ")"
}

// SimpleName returns the part of a qualified name after the last dot
func SimpleName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Package returns the part of a qualified name before the last dot
func Package(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

func findMarker(markers []*annotations.Marker, t annotations.MarkerType) (*annotations.Marker, bool) {
	for _, m := range markers {
		if m.Type == t {
			return m, true
		}
	}
	return nil, false
}
