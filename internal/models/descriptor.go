package models

import (
	"fmt"
)

// InterfaceConflictError is returned when an interface would be both a
// remote and a local business interface
type InterfaceConflictError struct {
	Component string
	Interface string
}

func (e *InterfaceConflictError) Error() string {
	return fmt.Sprintf("interface %s of component %s cannot be both a local and a remote business interface", e.Interface, e.Component)
}

// SessionTypeConflictError is returned when a fixed session type would change
type SessionTypeConflictError struct {
	Component string
	Current   SessionType
	Requested SessionType
}

func (e *SessionTypeConflictError) Error() string {
	return fmt.Sprintf("component %s is %s and cannot become %s", e.Component, e.Current, e.Requested)
}

// ComponentDescriptor is the resolved record of one deployable component
type ComponentDescriptor struct {
	CallbackTrait
	ProvenanceTrait

	Name        string
	Class       string
	Kind        ComponentKind
	KindName    string // external kind name of an UnsupportedKind descriptor
	Placeholder bool   // holds sparse external data, not yet bound to a class

	MappedName               string
	Description              string
	MessageListenerInterface string
	Concurrency              ConcurrencyMode

	LocalBean          bool
	NoInterfaceClasses []string
	RemoteHome         string
	RemoteComponent    string
	LocalHome          string
	LocalComponent     string
	WebServiceEndpoint string

	TimeoutMethod *MethodRef
	InitOnStartup bool
	DependsOn     []string

	sessionType SessionType
	remote      []string
	local       []string
	overrides   map[AttributeKind]*OverrideSet
}

// NewComponent creates a descriptor of the given kind
func NewComponent(name, class string, kind ComponentKind) *ComponentDescriptor {
	return &ComponentDescriptor{
		Name:  name,
		Class: class,
		Kind:  kind,
	}
}

// NewPlaceholder creates a descriptor that only records external data
func NewPlaceholder(name string) *ComponentDescriptor {
	return &ComponentDescriptor{Name: name, Placeholder: true}
}

// SessionType returns the session subtype, NoSessionType if unset
func (d *ComponentDescriptor) SessionType() SessionType {
	return d.sessionType
}

// SetSessionType sets the session subtype once. Setting the current value
// again is a no-op; changing a set value is an error.
func (d *ComponentDescriptor) SetSessionType(t SessionType) error {
	if d.sessionType == NoSessionType || d.sessionType == t {
		d.sessionType = t
		return nil
	}
	return &SessionTypeConflictError{Component: d.Name, Current: d.sessionType, Requested: t}
}

// IsSession reports whether the descriptor is a session component
func (d *ComponentDescriptor) IsSession() bool {
	return d.Kind == SessionKind
}

// TypeName returns the kind with the session subtype, e.g. Stateless or MessageDriven
func (d *ComponentDescriptor) TypeName() string {
	if d.Kind == UnsupportedKind && d.KindName != "" {
		return d.KindName
	}
	if d.Kind == SessionKind && d.sessionType != NoSessionType {
		return d.sessionType.String()
	}
	return d.Kind.String()
}

// Supported reports whether marker handlers may work on the descriptor
func (d *ComponentDescriptor) Supported() bool {
	return d.Kind != UnsupportedKind
}

// RemoteInterfaces returns the remote business interfaces in insertion order
func (d *ComponentDescriptor) RemoteInterfaces() []string {
	return d.remote
}

// LocalInterfaces returns the local business interfaces in insertion order
func (d *ComponentDescriptor) LocalInterfaces() []string {
	return d.local
}

// HasRemoteInterface reports whether name is a remote business interface
func (d *ComponentDescriptor) HasRemoteInterface(name string) bool {
	return contains(d.remote, name)
}

// HasLocalInterface reports whether name is a local business interface
func (d *ComponentDescriptor) HasLocalInterface(name string) bool {
	return contains(d.local, name)
}

// AddRemoteInterface adds a remote business interface
func (d *ComponentDescriptor) AddRemoteInterface(name string) error {
	if contains(d.local, name) {
		return &InterfaceConflictError{Component: d.Name, Interface: name}
	}
	d.remote = appendUnique(d.remote, name)
	return nil
}

// AddLocalInterface adds a local business interface
func (d *ComponentDescriptor) AddLocalInterface(name string) error {
	if contains(d.remote, name) {
		return &InterfaceConflictError{Component: d.Name, Interface: name}
	}
	d.local = appendUnique(d.local, name)
	return nil
}

// HasClientInterfaces reports whether any business or home interface is set
func (d *ComponentDescriptor) HasClientInterfaces() bool {
	return len(d.remote) > 0 || len(d.local) > 0 || d.RemoteHome != "" || d.LocalHome != ""
}

// AddNoInterfaceClass makes class eligible for the no-interface view
func (d *ComponentDescriptor) AddNoInterfaceClass(class string) {
	d.NoInterfaceClasses = appendUnique(d.NoInterfaceClasses, class)
}

// Overrides returns the override set of one attribute kind
func (d *ComponentDescriptor) Overrides(kind AttributeKind) *OverrideSet {
	if d.overrides == nil {
		d.overrides = make(map[AttributeKind]*OverrideSet)
	}
	set, ok := d.overrides[kind]
	if !ok {
		set = NewOverrideSet()
		d.overrides[kind] = set
	}
	return set
}

// OverrideList returns the overrides of one attribute kind without
// creating an empty set
func (d *ComponentDescriptor) OverrideList(kind AttributeKind) []*Override {
	if set, ok := d.overrides[kind]; ok {
		return set.All()
	}
	return nil
}

// AddOverride registers a method-level value unless the method already has one
func (d *ComponentDescriptor) AddOverride(kind AttributeKind, ref MethodRef, value interface{}, source Source) bool {
	return d.Overrides(kind).Add(&Override{Method: ref, Value: value, Source: source})
}

// BindClass binds the implementation class and gives class-less callbacks
// that class
func (d *ComponentDescriptor) BindClass(class string) {
	d.Class = class
	d.applyDefaultClass(class)
}

// CopyFrom copies the data a placeholder recorded onto this descriptor.
// Kind and session type stay with the receiver; the placeholder's class is
// copied and must be re-bound by the caller.
func (d *ComponentDescriptor) CopyFrom(p *ComponentDescriptor) {
	d.Name = p.Name
	d.Class = p.Class

	if p.IsFixed(MappedNameField) {
		d.MappedName = p.MappedName
	}
	if p.IsFixed(DescriptionField) {
		d.Description = p.Description
	}
	if p.IsFixed(MessageListenerInterfaceField) {
		d.MessageListenerInterface = p.MessageListenerInterface
	}
	if p.IsFixed(ConcurrencyField) {
		d.Concurrency = p.Concurrency
	}
	if p.IsFixed(LocalBeanField) {
		d.LocalBean = p.LocalBean
	}
	if p.IsFixed(RemoteHomeField) {
		d.RemoteHome = p.RemoteHome
		d.RemoteComponent = p.RemoteComponent
	}
	if p.IsFixed(LocalHomeField) {
		d.LocalHome = p.LocalHome
		d.LocalComponent = p.LocalComponent
	}
	if p.IsFixed(TimeoutMethodField) && p.TimeoutMethod != nil {
		ref := *p.TimeoutMethod
		d.TimeoutMethod = &ref
	}
	if p.IsFixed(InitOnStartupField) {
		d.InitOnStartup = p.InitOnStartup
	}
	if p.IsFixed(DependsOnField) {
		d.DependsOn = append([]string(nil), p.DependsOn...)
	}
	d.WebServiceEndpoint = p.WebServiceEndpoint

	for _, name := range p.remote {
		d.remote = appendUnique(d.remote, name)
	}
	for _, name := range p.local {
		d.local = appendUnique(d.local, name)
	}
	for _, class := range p.NoInterfaceClasses {
		d.AddNoInterfaceClass(class)
	}
	for _, kind := range AttributeKinds() {
		if set, ok := p.overrides[kind]; ok {
			for _, o := range set.All() {
				d.Overrides(kind).Add(o)
			}
		}
	}
	d.mergeCallbacks(&p.CallbackTrait)

	for _, f := range p.FixedFields() {
		if f != SessionTypeField {
			d.Fix(f)
		}
	}
}

// String returns a short descriptor summary
func (d *ComponentDescriptor) String() string {
	if d.Placeholder {
		return fmt.Sprintf("placeholder %s", d.Name)
	}
	return fmt.Sprintf("%s component %s (%s)", d.TypeName(), d.Name, d.Class)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if contains(list, s) {
		return list
	}
	return append(list, s)
}
