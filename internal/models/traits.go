package models

// Composable traits embedded by the descriptor types

// LifecycleKind names a lifecycle callback or interposition point
type LifecycleKind int

const (
	PostConstruct LifecycleKind = iota
	PreDestroy
	PostActivate
	PrePassivate
	AroundInvoke
	AroundTimeout
	AroundConstruct
)

var lifecycleNames = map[LifecycleKind]string{
	PostConstruct:   "PostConstruct",
	PreDestroy:      "PreDestroy",
	PostActivate:    "PostActivate",
	PrePassivate:    "PrePassivate",
	AroundInvoke:    "AroundInvoke",
	AroundTimeout:   "AroundTimeout",
	AroundConstruct: "AroundConstruct",
}

// String returns the string representation of the lifecycle kind
func (k LifecycleKind) String() string {
	if name, ok := lifecycleNames[k]; ok {
		return name
	}
	return "Unknown"
}

// LifecycleKinds returns every lifecycle kind in declaration order
func LifecycleKinds() []LifecycleKind {
	return []LifecycleKind{PostConstruct, PreDestroy, PostActivate, PrePassivate, AroundInvoke, AroundTimeout, AroundConstruct}
}

// ParseLifecycleKind converts a lifecycle kind name
func ParseLifecycleKind(s string) (LifecycleKind, bool) {
	for k, name := range lifecycleNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Callback is a lifecycle method; Class may be empty for external entries
// that rely on the component class
type Callback struct {
	Class  string `yaml:"class,omitempty" json:"class,omitempty"`
	Method string `yaml:"method" json:"method"`
	Source Source `yaml:"-" json:"-"`
}

// CallbackTrait holds lifecycle callbacks, at most one per class per kind
type CallbackTrait struct {
	callbacks map[LifecycleKind][]Callback
}

// AddCallback records a callback. A class already holding a callback of
// that kind keeps it and false is returned.
func (c *CallbackTrait) AddCallback(kind LifecycleKind, cb Callback) bool {
	if c.callbacks == nil {
		c.callbacks = make(map[LifecycleKind][]Callback)
	}
	for _, existing := range c.callbacks[kind] {
		if existing.Class == cb.Class {
			return false
		}
	}
	c.callbacks[kind] = append(c.callbacks[kind], cb)
	return true
}

// HasCallback reports whether class already declares a callback of kind
func (c *CallbackTrait) HasCallback(kind LifecycleKind, class string) bool {
	for _, existing := range c.callbacks[kind] {
		if existing.Class == class {
			return true
		}
	}
	return false
}

// Callbacks returns the callbacks of one kind in registration order
func (c *CallbackTrait) Callbacks(kind LifecycleKind) []Callback {
	return c.callbacks[kind]
}

// applyDefaultClass binds class-less callbacks to class
func (c *CallbackTrait) applyDefaultClass(class string) {
	for kind, cbs := range c.callbacks {
		for i := range cbs {
			if cbs[i].Class == "" {
				cbs[i].Class = class
			}
		}
		c.callbacks[kind] = cbs
	}
}

func (c *CallbackTrait) mergeCallbacks(other *CallbackTrait) {
	for _, kind := range LifecycleKinds() {
		for _, cb := range other.callbacks[kind] {
			c.AddCallback(kind, cb)
		}
	}
}

// ProvenanceTrait records which fields the external document fixed
type ProvenanceTrait struct {
	fixed map[Field]bool
}

// Fix marks a field as set by the external document
func (p *ProvenanceTrait) Fix(fields ...Field) {
	if p.fixed == nil {
		p.fixed = make(map[Field]bool)
	}
	for _, f := range fields {
		p.fixed[f] = true
	}
}

// IsFixed reports whether the external document set the field
func (p *ProvenanceTrait) IsFixed(f Field) bool {
	return p.fixed[f]
}

// FixedFields returns the fixed fields
func (p *ProvenanceTrait) FixedFields() []Field {
	fields := make([]Field, 0, len(p.fixed))
	for f := range p.fixed {
		fields = append(fields, f)
	}
	return fields
}
