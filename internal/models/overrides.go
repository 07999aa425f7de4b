package models

// AttributeKind names a method-level attribute that can be overridden
type AttributeKind int

const (
	AccessTimeoutAttribute AttributeKind = iota
	LockAttribute
	AsynchronousAttribute
	TransactionAttribute
)

// String returns the string representation of the attribute kind
func (k AttributeKind) String() string {
	switch k {
	case AccessTimeoutAttribute:
		return "AccessTimeout"
	case LockAttribute:
		return "Lock"
	case AsynchronousAttribute:
		return "Asynchronous"
	case TransactionAttribute:
		return "TransactionAttribute"
	default:
		return "Unknown"
	}
}

// AttributeKinds returns every attribute kind in declaration order
func AttributeKinds() []AttributeKind {
	return []AttributeKind{AccessTimeoutAttribute, LockAttribute, AsynchronousAttribute, TransactionAttribute}
}

// Override is one (method, value) pair. Value is an AccessTimeout, a
// LockType, a bool or a transaction attribute name depending on the kind.
type Override struct {
	Method MethodRef
	Value  interface{}
	Source Source
}

// OverrideSet holds the overrides of one attribute kind, keyed by declaring
// class plus signature, in registration order
type OverrideSet struct {
	entries []*Override
	index   map[string]int
}

// NewOverrideSet creates an empty override set
func NewOverrideSet() *OverrideSet {
	return &OverrideSet{index: make(map[string]int)}
}

// Add registers an override unless one exists for the same method.
// It returns false when the method was already covered.
func (s *OverrideSet) Add(o *Override) bool {
	key := o.Method.Key()
	if _, exists := s.index[key]; exists {
		return false
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, o)
	return true
}

// Get returns the override for a method
func (s *OverrideSet) Get(ref MethodRef) (*Override, bool) {
	i, ok := s.index[ref.Key()]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

// Has reports whether a method already has an override
func (s *OverrideSet) Has(ref MethodRef) bool {
	_, ok := s.index[ref.Key()]
	return ok
}

// All returns the overrides in registration order
func (s *OverrideSet) All() []*Override {
	return s.entries
}

// Len returns the number of overrides
func (s *OverrideSet) Len() int {
	return len(s.entries)
}
