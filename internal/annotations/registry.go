package annotations

import (
	"fmt"
	"sort"
	"sync"
)

// SchemaRegistry manages marker schemas
type SchemaRegistry interface {
	// Register a new marker type with its schema
	Register(markerType MarkerType, schema MarkerSchema) error

	// GetSchema retrieves the schema for a marker type
	GetSchema(markerType MarkerType) (MarkerSchema, error)

	// ListTypes returns all registered marker types in tag order
	ListTypes() []MarkerType

	// IsRegistered checks if a marker type is registered
	IsRegistered(markerType MarkerType) bool
}

// registry is the concrete implementation of SchemaRegistry
type registry struct {
	mu      sync.RWMutex
	schemas map[MarkerType]MarkerSchema
}

// NewRegistry creates an empty schema registry
func NewRegistry() SchemaRegistry {
	return &registry{
		schemas: make(map[MarkerType]MarkerSchema),
	}
}

var (
	defaultRegistry     SchemaRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding the built-in schemas
func DefaultRegistry() SchemaRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("built-in marker schemas: %v", err))
		}
	})
	return defaultRegistry
}

// Register adds a new marker type with its schema to the registry
func (r *registry) Register(markerType MarkerType, schema MarkerSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if markerType == ForeignMarker {
		return &RegistrationError{
			Msg:  "foreign markers cannot carry a schema",
			Hint: "Register one of the dispatchable marker types",
		}
	}

	if schema.Type != markerType {
		return &RegistrationError{
			Msg:  fmt.Sprintf("schema type %s does not match marker type %s", schema.Type, markerType),
			Hint: "Set MarkerSchema.Type to the registered type",
		}
	}

	if _, exists := r.schemas[markerType]; exists {
		return &RegistrationError{
			Msg:  fmt.Sprintf("marker type %s is already registered", markerType),
			Hint: "Each marker type has exactly one schema",
		}
	}

	if err := r.validateSchema(schema); err != nil {
		return fmt.Errorf("invalid schema for %s: %w", markerType, err)
	}

	r.schemas[markerType] = schema
	return nil
}

// GetSchema retrieves the schema for a marker type
func (r *registry) GetSchema(markerType MarkerType) (MarkerSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, exists := r.schemas[markerType]
	if !exists {
		return MarkerSchema{}, fmt.Errorf("marker type %s is not registered", markerType)
	}
	return schema, nil
}

// ListTypes returns all registered marker types in tag order
func (r *registry) ListTypes() []MarkerType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]MarkerType, 0, len(r.schemas))
	for markerType := range r.schemas {
		types = append(types, markerType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// IsRegistered checks if a marker type is registered
func (r *registry) IsRegistered(markerType MarkerType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.schemas[markerType]
	return exists
}

func (r *registry) validateSchema(schema MarkerSchema) error {
	if schema.Targets == 0 {
		return fmt.Errorf("schema must allow at least one target")
	}
	for name, spec := range schema.Attributes {
		if name == "" {
			return fmt.Errorf("attribute name cannot be empty")
		}
		if spec.Type < StringType || spec.Type > StringSliceType {
			return fmt.Errorf("invalid attribute type for %s: %d", name, spec.Type)
		}
		if spec.DefaultValue != nil {
			if err := validateDefaultValue(name, spec.Type, spec.DefaultValue); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateDefaultValue(name string, attrType AttributeType, defaultValue interface{}) error {
	ok := false
	switch attrType {
	case StringType:
		_, ok = defaultValue.(string)
	case BoolType:
		_, ok = defaultValue.(bool)
	case IntType:
		_, ok = defaultValue.(int)
	case StringSliceType:
		_, ok = defaultValue.([]string)
	}
	if !ok {
		return fmt.Errorf("default value for %s attribute %s must be %s, got %T", attrType, name, attrType, defaultValue)
	}
	return nil
}
