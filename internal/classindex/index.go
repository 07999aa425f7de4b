package classindex

import (
	"fmt"

	"github.com/toyz/descres/internal/annotations"
)

// DefaultRootClass is the framework base class every hierarchy walk stops at
const DefaultRootClass = "java.lang.Object"

// Index is the pre-computed class-hierarchy view of one deployment unit.
// It is built once and read by every handler of a pass; all "walk up
// until found" logic is a linear scan over Hierarchy.
type Index struct {
	root    string
	classes map[string]*Class
	order   []string
}

// New creates an empty index. An empty rootClass selects DefaultRootClass.
func New(rootClass string) *Index {
	if rootClass == "" {
		rootClass = DefaultRootClass
	}
	return &Index{
		root:    rootClass,
		classes: make(map[string]*Class),
	}
}

// Root returns the root class name excluded from hierarchy walks
func (idx *Index) Root() string {
	return idx.root
}

// Add registers a class and stamps its members with their declaring class
func (idx *Index) Add(c *Class) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("class name cannot be empty")
	}
	if _, exists := idx.classes[c.Name]; exists {
		return fmt.Errorf("class %s is already indexed", c.Name)
	}

	seen := make(map[string]bool, len(c.Methods))
	for _, m := range c.Methods {
		sig := m.Signature()
		if seen[sig] {
			return fmt.Errorf("class %s declares method %s twice", c.Name, sig)
		}
		seen[sig] = true
		m.Declaring = c.Name
	}
	for _, ctor := range c.Constructors {
		ctor.Declaring = c.Name
	}

	idx.classes[c.Name] = c
	idx.order = append(idx.order, c.Name)
	return nil
}

// Class returns an indexed class by qualified name
func (idx *Index) Class(name string) (*Class, bool) {
	c, ok := idx.classes[name]
	return c, ok
}

// Classes returns all indexed classes in insertion order
func (idx *Index) Classes() []*Class {
	classes := make([]*Class, 0, len(idx.order))
	for _, name := range idx.order {
		classes = append(classes, idx.classes[name])
	}
	return classes
}

// Len returns the number of indexed classes
func (idx *Index) Len() int {
	return len(idx.order)
}

// Hierarchy returns the class followed by its superclasses, most-derived
// first. The root class and classes missing from the index end the walk.
func (idx *Index) Hierarchy(name string) []*Class {
	var chain []*Class
	visited := make(map[string]bool)
	for next := name; next != "" && next != idx.root && !visited[next]; {
		visited[next] = true
		c, ok := idx.classes[next]
		if !ok {
			break
		}
		chain = append(chain, c)
		next = c.Super
	}
	return chain
}

// Superclasses returns Hierarchy without the class itself
func (idx *Index) Superclasses(name string) []*Class {
	chain := idx.Hierarchy(name)
	if len(chain) == 0 {
		return nil
	}
	return chain[1:]
}

// IsAssignable reports whether a value of type from can be assigned to type
// to: from is to, extends it, or implements it directly or transitively.
func (idx *Index) IsAssignable(from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	if from == to || to == idx.root {
		return true
	}

	visited := make(map[string]bool)
	queue := []string{from}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		if next == to {
			return true
		}
		c, ok := idx.classes[next]
		if !ok {
			continue
		}
		if c.Super != "" {
			queue = append(queue, c.Super)
		}
		queue = append(queue, c.Interfaces...)
	}
	return false
}

// AllInterfaces returns every interface the class implements through its
// hierarchy and superinterfaces, in discovery order without duplicates
func (idx *Index) AllInterfaces(name string) []string {
	var result []string
	seen := make(map[string]bool)

	var visit func(intf string)
	visit = func(intf string) {
		if seen[intf] {
			return
		}
		seen[intf] = true
		result = append(result, intf)
		if c, ok := idx.classes[intf]; ok {
			for _, parent := range c.Interfaces {
				visit(parent)
			}
		}
	}

	for _, c := range idx.Hierarchy(name) {
		for _, intf := range c.Interfaces {
			visit(intf)
		}
	}
	return result
}

// InterfaceMethods returns the methods of an interface and its
// superinterfaces. A signature redeclared by a subinterface is listed once.
func (idx *Index) InterfaceMethods(name string) []*Method {
	var methods []*Method
	seenSig := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(intf string)
	visit = func(intf string) {
		if visited[intf] {
			return
		}
		visited[intf] = true
		c, ok := idx.classes[intf]
		if !ok {
			return
		}
		for _, m := range c.Methods {
			if !seenSig[m.Signature()] {
				seenSig[m.Signature()] = true
				methods = append(methods, m)
			}
		}
		for _, parent := range c.Interfaces {
			visit(parent)
		}
	}

	visit(name)
	return methods
}

// Members returns the most-derived method for every signature declared in
// the hierarchy of name: the class's own methods in declaration order, then
// inherited methods not overridden further down.
func (idx *Index) Members(name string) []*Method {
	var members []*Method
	seen := make(map[string]bool)
	for _, c := range idx.Hierarchy(name) {
		for _, m := range c.Methods {
			sig := m.Signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			members = append(members, m)
		}
	}
	return members
}

// MostDerived returns the method a call to signature on class name resolves to
func (idx *Index) MostDerived(name, signature string) (*Method, bool) {
	for _, c := range idx.Hierarchy(name) {
		if m, ok := c.Method(signature); ok {
			return m, true
		}
	}
	return nil, false
}

// Marker implements the marker reader: it returns the marker of type t
// attached to the element, if any
func (idx *Index) Marker(el Element, t annotations.MarkerType) (*annotations.Marker, bool) {
	for _, m := range idx.Markers(el) {
		if m.Type == t {
			return m, true
		}
	}
	return nil, false
}

// Markers returns every marker attached to the element in declaration order
func (idx *Index) Markers(el Element) []*annotations.Marker {
	switch el.Kind {
	case MethodElement, ConstructorElement:
		if el.Method == nil {
			return nil
		}
		return el.Method.Markers
	default:
		if c, ok := idx.classes[el.Class]; ok {
			return c.Markers
		}
		return nil
	}
}
