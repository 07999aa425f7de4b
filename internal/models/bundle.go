package models

import (
	"fmt"
	"strings"
)

// InterceptorDescriptor is a cross-cutting behaviour class owned by a bundle
type InterceptorDescriptor struct {
	CallbackTrait

	Class string
}

// NewInterceptor creates an interceptor descriptor
func NewInterceptor(class string) *InterceptorDescriptor {
	return &InterceptorDescriptor{Class: class}
}

// InterceptorBinding associates a component with an ordered interceptor
// list, optionally narrowed to one method or constructor
type InterceptorBinding struct {
	Component      string
	Interceptors   []string
	Method         *MethodRef // nil binds the whole component
	Constructor    bool
	ExcludeDefault bool
	Source         Source
}

// Key identifies a binding for deduplication
func (b *InterceptorBinding) Key() string {
	var sb strings.Builder
	sb.WriteString(b.Component)
	sb.WriteString("|")
	if b.Method != nil {
		sb.WriteString(b.Method.Key())
	}
	if b.Constructor {
		sb.WriteString("<init>")
	}
	fmt.Fprintf(&sb, "|%t|", b.ExcludeDefault)
	sb.WriteString(strings.Join(b.Interceptors, ","))
	return sb.String()
}

// String returns a readable binding summary
func (b *InterceptorBinding) String() string {
	target := b.Component
	switch {
	case b.Method != nil:
		target = b.Component + " " + b.Method.String()
	case b.Constructor:
		target = b.Component + " <init>"
	}
	if b.ExcludeDefault && len(b.Interceptors) == 0 {
		return fmt.Sprintf("%s: exclude default interceptors", target)
	}
	return fmt.Sprintf("%s: [%s]", target, strings.Join(b.Interceptors, ", "))
}

// Bundle is the descriptor store of one deployment unit. It is mutated by
// a single resolution pass and needs no locking.
type Bundle struct {
	Name string

	components   []*ComponentDescriptor
	interceptors []*InterceptorDescriptor
	inline       []*InterceptorBinding
	external     []*InterceptorBinding
}

// NewBundle creates an empty bundle
func NewBundle(name string) *Bundle {
	return &Bundle{Name: name}
}

// Components returns all descriptors in insertion order
func (b *Bundle) Components() []*ComponentDescriptor {
	return b.components
}

// ComponentByName looks up a descriptor by logical name
func (b *Bundle) ComponentByName(name string) (*ComponentDescriptor, bool) {
	for _, d := range b.components {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// ComponentsByClass returns every descriptor bound to an implementation
// class. Several logical components may share one class.
func (b *Bundle) ComponentsByClass(class string) []*ComponentDescriptor {
	var result []*ComponentDescriptor
	for _, d := range b.components {
		if d.Class == class && !d.Placeholder {
			result = append(result, d)
		}
	}
	return result
}

// AddComponent adds a descriptor; names are unique within a bundle
func (b *Bundle) AddComponent(d *ComponentDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("component name cannot be empty")
	}
	if _, exists := b.ComponentByName(d.Name); exists {
		return fmt.Errorf("component %s is already defined in bundle %s", d.Name, b.Name)
	}
	b.components = append(b.components, d)
	return nil
}

// RemoveComponent removes a descriptor and reports whether it was present
func (b *Bundle) RemoveComponent(d *ComponentDescriptor) bool {
	for i, existing := range b.components {
		if existing == d {
			b.components = append(b.components[:i], b.components[i+1:]...)
			return true
		}
	}
	return false
}

// Interceptors returns the interceptor descriptors in insertion order
func (b *Bundle) Interceptors() []*InterceptorDescriptor {
	return b.interceptors
}

// InterceptorByClass looks up an interceptor descriptor
func (b *Bundle) InterceptorByClass(class string) (*InterceptorDescriptor, bool) {
	for _, i := range b.interceptors {
		if i.Class == class {
			return i, true
		}
	}
	return nil, false
}

// AddInterceptor adds an interceptor descriptor or merges it into the one
// already registered for the same class, and returns the stored descriptor
func (b *Bundle) AddInterceptor(i *InterceptorDescriptor) *InterceptorDescriptor {
	if existing, ok := b.InterceptorByClass(i.Class); ok {
		if existing != i {
			existing.mergeCallbacks(&i.CallbackTrait)
		}
		return existing
	}
	b.interceptors = append(b.interceptors, i)
	return i
}

// AddInlineInterceptorBinding records a marker-sourced binding. Inline
// bindings keep discovery order and precede every external binding.
func (b *Bundle) AddInlineInterceptorBinding(binding *InterceptorBinding) bool {
	binding.Source = Inline
	return b.addBinding(&b.inline, binding)
}

// AddExternalInterceptorBinding records a binding from the external document
func (b *Bundle) AddExternalInterceptorBinding(binding *InterceptorBinding) bool {
	binding.Source = External
	return b.addBinding(&b.external, binding)
}

// InterceptorBindings returns inline bindings followed by external ones
func (b *Bundle) InterceptorBindings() []*InterceptorBinding {
	result := make([]*InterceptorBinding, 0, len(b.inline)+len(b.external))
	result = append(result, b.inline...)
	return append(result, b.external...)
}

func (b *Bundle) addBinding(list *[]*InterceptorBinding, binding *InterceptorBinding) bool {
	key := binding.Key()
	for _, existing := range *list {
		if existing.Key() == key {
			return false
		}
	}
	*list = append(*list, binding)
	return true
}
