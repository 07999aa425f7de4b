package annotations

import (
	"fmt"
	"strings"
)

// Built-in marker schemas

var componentAttributes = map[string]AttributeSpec{
	"name": {
		Type:        StringType,
		Description: "Logical component name; defaults to the simple class name",
	},
	"mappedName": {
		Type:        StringType,
		Description: "Product-specific global name",
	},
	"description": {
		Type:        StringType,
		Description: "Human-readable description",
	},
}

func componentSchema(t MarkerType, description string) MarkerSchema {
	return MarkerSchema{
		Type:        t,
		Description: description,
		Targets:     TypeTarget,
		Attributes:  componentAttributes,
		Examples: []string{
			fmt.Sprintf("@%s", t),
			fmt.Sprintf(`@%s(name="Orders", mappedName="ejb/Orders")`, t),
		},
	}
}

// StatelessSchema defines the schema for @Stateless
var StatelessSchema = componentSchema(StatelessMarker, "Declares a stateless session component")

// StatefulSchema defines the schema for @Stateful
var StatefulSchema = componentSchema(StatefulMarker, "Declares a stateful session component")

// SingletonSchema defines the schema for @Singleton
var SingletonSchema = componentSchema(SingletonMarker, "Declares a singleton session component")

// MessageDrivenSchema defines the schema for @MessageDriven
var MessageDrivenSchema = MarkerSchema{
	Type:        MessageDrivenMarker,
	Description: "Declares a message-driven component",
	Targets:     TypeTarget,
	Attributes: map[string]AttributeSpec{
		"name":                     componentAttributes["name"],
		"mappedName":               componentAttributes["mappedName"],
		"description":              componentAttributes["description"],
		"messageListenerInterface": {Type: StringType, Description: "Message listener interface"},
	},
	Examples: []string{`@MessageDriven(name="Audit")`},
}

func interfaceListSchema(t MarkerType, description string) MarkerSchema {
	return MarkerSchema{
		Type:        t,
		Description: description,
		Targets:     TypeTarget,
		Attributes: map[string]AttributeSpec{
			"value": {
				Type:         StringSliceType,
				DefaultValue: []string{},
				Description:  "Business interfaces; empty designates the implements clause",
			},
		},
		Examples: []string{fmt.Sprintf("@%s", t), fmt.Sprintf("@%s({pkg.Api})", t)},
	}
}

// RemoteSchema defines the schema for @Remote
var RemoteSchema = interfaceListSchema(RemoteMarker, "Designates remote business interfaces")

// LocalSchema defines the schema for @Local
var LocalSchema = interfaceListSchema(LocalMarker, "Designates local business interfaces")

// LocalBeanSchema defines the schema for @LocalBean
var LocalBeanSchema = MarkerSchema{
	Type:        LocalBeanMarker,
	Description: "Exposes a no-interface view",
	Targets:     TypeTarget,
	Examples:    []string{"@LocalBean"},
}

func homeSchema(t MarkerType, description string) MarkerSchema {
	return MarkerSchema{
		Type:        t,
		Description: description,
		Targets:     TypeTarget,
		Attributes: map[string]AttributeSpec{
			"value": {
				Type:        StringType,
				Required:    true,
				Description: "Home interface",
			},
		},
		Examples: []string{fmt.Sprintf("@%s(pkg.FooHome)", t)},
	}
}

// RemoteHomeSchema defines the schema for @RemoteHome
var RemoteHomeSchema = homeSchema(RemoteHomeMarker, "Adapts a remote home interface")

// LocalHomeSchema defines the schema for @LocalHome
var LocalHomeSchema = homeSchema(LocalHomeMarker, "Adapts a local home interface")

// WebServiceSchema defines the schema for @WebService
var WebServiceSchema = MarkerSchema{
	Type:        WebServiceMarker,
	Description: "Publishes the component as a web service endpoint",
	Targets:     TypeTarget,
	Attributes: map[string]AttributeSpec{
		"name":              {Type: StringType},
		"serviceName":       {Type: StringType},
		"endpointInterface": {Type: StringType},
	},
}

// TimeUnits lists the accepted time unit names
var TimeUnits = []string{"NANOSECONDS", "MICROSECONDS", "MILLISECONDS", "SECONDS", "MINUTES", "HOURS", "DAYS"}

// LockTypes lists the accepted lock types
var LockTypes = []string{"READ", "WRITE"}

// TransactionAttributes lists the accepted transaction attribute types
var TransactionAttributes = []string{"MANDATORY", "REQUIRED", "REQUIRES_NEW", "SUPPORTS", "NOT_SUPPORTED", "NEVER"}

// ConcurrencyManagementTypes lists the accepted concurrency management types
var ConcurrencyManagementTypes = []string{"CONTAINER", "BEAN"}

// EnumValue strips a qualifier from an enum reference: TimeUnit.SECONDS becomes SECONDS
func EnumValue(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

func oneOf(allowed []string) func(interface{}) error {
	return func(v interface{}) error {
		value := EnumValue(v.(string))
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of: %s, got '%s'", strings.Join(allowed, ", "), value)
	}
}

// AccessTimeoutSchema defines the schema for @AccessTimeout
var AccessTimeoutSchema = MarkerSchema{
	Type:        AccessTimeoutMarker,
	Description: "Bounds how long a concurrent access may block",
	Targets:     TypeTarget | MethodTarget,
	Attributes: map[string]AttributeSpec{
		"value": {
			Type:        IntType,
			Required:    true,
			Description: "Timeout; -1 waits indefinitely, 0 forbids concurrent access",
			Validator: func(v interface{}) error {
				if v.(int) < -1 {
					return fmt.Errorf("must be -1 or greater, got %d", v.(int))
				}
				return nil
			},
		},
		"unit": {
			Type:         StringType,
			DefaultValue: "MILLISECONDS",
			Description:  "Time unit of value",
			Validator:    oneOf(TimeUnits),
		},
	},
	Examples: []string{"@AccessTimeout(5)", "@AccessTimeout(value=5, unit=SECONDS)"},
}

// LockSchema defines the schema for @Lock
var LockSchema = MarkerSchema{
	Type:        LockMarker,
	Description: "Container-managed concurrency lock type",
	Targets:     TypeTarget | MethodTarget,
	Attributes: map[string]AttributeSpec{
		"value": {Type: StringType, DefaultValue: "WRITE", Validator: oneOf(LockTypes)},
	},
	Examples: []string{"@Lock(READ)", "@Lock(LockType.WRITE)"},
}

// AsynchronousSchema defines the schema for @Asynchronous
var AsynchronousSchema = MarkerSchema{
	Type:        AsynchronousMarker,
	Description: "Business methods return to the caller before completion",
	Targets:     TypeTarget | MethodTarget,
}

// TransactionAttributeSchema defines the schema for @TransactionAttribute
var TransactionAttributeSchema = MarkerSchema{
	Type:        TransactionAttributeMarker,
	Description: "Container-managed transaction attribute",
	Targets:     TypeTarget | MethodTarget,
	Attributes: map[string]AttributeSpec{
		"value": {Type: StringType, DefaultValue: "REQUIRED", Validator: oneOf(TransactionAttributes)},
	},
	Examples: []string{"@TransactionAttribute(REQUIRES_NEW)"},
}

// ConcurrencyManagementSchema defines the schema for @ConcurrencyManagement
var ConcurrencyManagementSchema = MarkerSchema{
	Type:        ConcurrencyManagementMarker,
	Description: "Singleton concurrency management mode",
	Targets:     TypeTarget,
	Attributes: map[string]AttributeSpec{
		"value": {Type: StringType, DefaultValue: "CONTAINER", Validator: oneOf(ConcurrencyManagementTypes)},
	},
}

// StartupSchema defines the schema for @Startup
var StartupSchema = MarkerSchema{
	Type:        StartupMarker,
	Description: "Eagerly initialises a singleton",
	Targets:     TypeTarget,
}

// DependsOnSchema defines the schema for @DependsOn
var DependsOnSchema = MarkerSchema{
	Type:        DependsOnMarker,
	Description: "Singletons that must be initialised first",
	Targets:     TypeTarget,
	Attributes: map[string]AttributeSpec{
		"value": {Type: StringSliceType, Required: true},
	},
	Examples: []string{`@DependsOn({"Config", "Cache"})`},
}

// InterceptorsSchema defines the schema for @Interceptors
var InterceptorsSchema = MarkerSchema{
	Type:        InterceptorsMarker,
	Description: "Binds interceptor classes to a component, method or constructor",
	Targets:     TypeTarget | MethodTarget | ConstructorTarget,
	Attributes: map[string]AttributeSpec{
		"value": {Type: StringSliceType, Required: true},
	},
	Validators: []CustomValidator{
		func(m *Marker) error {
			if len(m.GetStringSlice("value")) == 0 {
				return fmt.Errorf("@Interceptors requires at least one interceptor class")
			}
			return nil
		},
	},
	Examples: []string{"@Interceptors({pkg.Audit, pkg.Timing})"},
}

// ExcludeDefaultInterceptorsSchema defines the schema for @ExcludeDefaultInterceptors
var ExcludeDefaultInterceptorsSchema = MarkerSchema{
	Type:        ExcludeDefaultInterceptorsMarker,
	Description: "Disables default interceptors",
	Targets:     TypeTarget | MethodTarget | ConstructorTarget,
}

// TimeoutSchema defines the schema for @Timeout
var TimeoutSchema = MarkerSchema{
	Type:        TimeoutMarker,
	Description: "Timer callback method",
	Targets:     MethodTarget,
}

func callbackSchema(t MarkerType, description string) MarkerSchema {
	return MarkerSchema{Type: t, Description: description, Targets: MethodTarget}
}

// BuiltinSchemas returns every built-in schema
func BuiltinSchemas() []MarkerSchema {
	return []MarkerSchema{
		StatelessSchema,
		StatefulSchema,
		SingletonSchema,
		MessageDrivenSchema,
		RemoteSchema,
		LocalSchema,
		LocalBeanSchema,
		RemoteHomeSchema,
		LocalHomeSchema,
		WebServiceSchema,
		AccessTimeoutSchema,
		LockSchema,
		AsynchronousSchema,
		TransactionAttributeSchema,
		ConcurrencyManagementSchema,
		StartupSchema,
		DependsOnSchema,
		InterceptorsSchema,
		ExcludeDefaultInterceptorsSchema,
		TimeoutSchema,
		callbackSchema(PostConstructMarker, "Called after dependency injection"),
		callbackSchema(PreDestroyMarker, "Called before the instance is discarded"),
		callbackSchema(PostActivateMarker, "Called after a stateful instance is activated"),
		callbackSchema(PrePassivateMarker, "Called before a stateful instance is passivated"),
		callbackSchema(AroundInvokeMarker, "Interposes on business method invocations"),
		callbackSchema(AroundTimeoutMarker, "Interposes on timer callbacks"),
		callbackSchema(AroundConstructMarker, "Interposes on instance construction"),
	}
}

// RegisterBuiltinSchemas registers all built-in schemas with a registry
func RegisterBuiltinSchemas(registry SchemaRegistry) error {
	for _, schema := range BuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return err
		}
	}
	return nil
}
