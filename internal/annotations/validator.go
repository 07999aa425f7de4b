package annotations

import (
	"fmt"
	"sort"
)

// SchemaValidator validates markers against their schemas
type SchemaValidator interface {
	// Validate checks required attributes, attribute types and custom rules
	Validate(marker *Marker, schema MarkerSchema) error

	// ApplyDefaults fills in defaults for missing optional attributes
	ApplyDefaults(marker *Marker, schema MarkerSchema) error

	// TransformAttributes converts attribute values to their schema types
	TransformAttributes(marker *Marker, schema MarkerSchema) error
}

type validator struct{}

// NewValidator creates a new schema validator
func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate validates a marker against its schema
func (v *validator) Validate(marker *Marker, schema MarkerSchema) error {
	var errs []MarkerError

	for _, name := range sortedAttributeNames(schema.Attributes) {
		spec := schema.Attributes[name]
		if spec.Required && !marker.HasAttribute(name) {
			err := newValidationError(marker, name, fmt.Sprintf("required attribute of type %s", spec.Type), "missing")
			errs = append(errs, err)
		}
	}

	names := make([]string, 0, len(marker.Attributes))
	for name := range marker.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := marker.Attributes[name]
		spec, exists := schema.Attributes[name]
		if !exists {
			errs = append(errs, newValidationError(marker, name, "known attribute", fmt.Sprintf("unknown attribute '%s'", name)))
			continue
		}

		if !hasType(spec.Type, value) {
			errs = append(errs, newValidationError(marker, name, spec.Type.String(), fmt.Sprintf("%T", value)))
			continue
		}

		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				verr := newValidationError(marker, name, "valid value", fmt.Sprintf("%v", value))
				verr.Hint = err.Error()
				errs = append(errs, verr)
			}
		}
	}

	for _, custom := range schema.Validators {
		if err := custom(marker); err != nil {
			errs = append(errs, &SchemaError{
				Msg:  err.Error(),
				Loc:  marker.Location,
				Hint: "Check marker attributes and their combinations",
			})
		}
	}

	if len(errs) > 0 {
		return &MultipleMarkerErrors{Errors: errs}
	}
	return nil
}

// ApplyDefaults applies default values for missing optional attributes
func (v *validator) ApplyDefaults(marker *Marker, schema MarkerSchema) error {
	if marker.Attributes == nil {
		marker.Attributes = make(map[string]interface{})
	}
	for name, spec := range schema.Attributes {
		if _, exists := marker.Attributes[name]; !exists && spec.DefaultValue != nil {
			marker.Attributes[name] = spec.DefaultValue
		}
	}
	return nil
}

// TransformAttributes converts attribute values to the types their schema declares
func (v *validator) TransformAttributes(marker *Marker, schema MarkerSchema) error {
	for name, value := range marker.Attributes {
		spec, exists := schema.Attributes[name]
		if !exists {
			continue // reported by Validate
		}

		var (
			converted interface{}
			err       error
		)
		switch spec.Type {
		case StringType:
			converted, err = ConvertToString(value)
		case BoolType:
			converted, err = ConvertToBool(value)
		case IntType:
			converted, err = ConvertToInt(value)
		case StringSliceType:
			converted, err = ConvertToStringSlice(value)
		}
		if err != nil {
			return newValidationError(marker, name, spec.Type.String(), fmt.Sprintf("%v", value))
		}
		marker.Attributes[name] = converted
	}
	return nil
}

func hasType(t AttributeType, value interface{}) bool {
	switch t {
	case StringType:
		_, ok := value.(string)
		return ok
	case BoolType:
		_, ok := value.(bool)
		return ok
	case IntType:
		_, ok := value.(int)
		return ok
	case StringSliceType:
		_, ok := value.([]string)
		return ok
	}
	return false
}

func sortedAttributeNames(specs map[string]AttributeSpec) []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
