// Package snapshot reads and writes deployment-unit snapshots: the already
// parsed external document of a bundle together with the class view the
// resolver scans.
package snapshot

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/models"
)

// SchemaVersion is the snapshot format written by Dump. Documents of the
// same major version are accepted.
const SchemaVersion = "v1.0.0"

// Snapshot is a decoded deployment-unit document
type Snapshot struct {
	Version      string           `yaml:"version"`
	Bundle       string           `yaml:"bundle"`
	Classes      []ClassDoc       `yaml:"classes,omitempty"`
	Components   []ComponentDoc   `yaml:"components,omitempty"`
	Interceptors []InterceptorDoc `yaml:"interceptors,omitempty"`
	Bindings     []BindingDoc     `yaml:"bindings,omitempty"`

	// Source names the file the snapshot came from, for marker locations
	Source string `yaml:"-"`
}

// ClassDoc is one class or interface of the unit
type ClassDoc struct {
	Name         string      `yaml:"name"`
	Super        string      `yaml:"super,omitempty"`
	Interfaces   []string    `yaml:"interfaces,omitempty"`
	Interface    bool        `yaml:"interface,omitempty"`
	Markers      []MarkerDoc `yaml:"markers,omitempty"`
	Constructors []MethodDoc `yaml:"constructors,omitempty"`
	Methods      []MethodDoc `yaml:"methods,omitempty"`
}

// MethodDoc is a method or constructor. Methods are public unless stated.
type MethodDoc struct {
	Name    string      `yaml:"name,omitempty"`
	Params  []string    `yaml:"params,omitempty"`
	Returns string      `yaml:"returns,omitempty"`
	Public  *bool       `yaml:"public,omitempty"`
	Static  bool        `yaml:"static,omitempty"`
	Markers []MarkerDoc `yaml:"markers,omitempty"`
}

// MarkerDoc is a marker literal with the position it was written at
type MarkerDoc struct {
	Text   string
	Line   int
	Column int
}

// UnmarshalYAML keeps the node position for marker locations
func (m *MarkerDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: marker must be a string", node.Line)
	}
	m.Text = node.Value
	m.Line = node.Line
	m.Column = node.Column
	return nil
}

// MarshalYAML writes the literal back as a plain string
func (m MarkerDoc) MarshalYAML() (interface{}, error) {
	return m.Text, nil
}

// ComponentDoc is one component as the external document declares it.
// Every field that is present is fixed against inline markers.
type ComponentDoc struct {
	Name        string `yaml:"name"`
	Class       string `yaml:"class,omitempty"`
	Kind        string `yaml:"kind,omitempty"`
	SessionType string `yaml:"sessionType,omitempty"`
	Placeholder bool   `yaml:"placeholder,omitempty"`

	MappedName               string `yaml:"mappedName,omitempty"`
	Description              string `yaml:"description,omitempty"`
	MessageListenerInterface string `yaml:"messageListenerInterface,omitempty"`
	Concurrency              string `yaml:"concurrencyManagement,omitempty"`

	LocalBean          *bool    `yaml:"localBean,omitempty"`
	NoInterfaceClasses []string `yaml:"noInterfaceClasses,omitempty"`
	Remote             []string `yaml:"remote,omitempty"`
	Local              []string `yaml:"local,omitempty"`
	RemoteHome         string   `yaml:"remoteHome,omitempty"`
	RemoteComponent    string   `yaml:"remoteComponent,omitempty"`
	LocalHome          string   `yaml:"localHome,omitempty"`
	LocalComponent     string   `yaml:"localComponent,omitempty"`
	WebServiceEndpoint string   `yaml:"webServiceEndpoint,omitempty"`

	TimeoutMethod *models.MethodRef `yaml:"timeoutMethod,omitempty"`
	InitOnStartup *bool             `yaml:"initOnStartup,omitempty"`
	DependsOn     []string          `yaml:"dependsOn,omitempty"`

	Callbacks map[string][]models.Callback `yaml:"callbacks,omitempty"`
	Overrides []OverrideDoc                `yaml:"overrides,omitempty"`
}

// OverrideDoc is one method-level attribute value
type OverrideDoc struct {
	Attribute string           `yaml:"attribute"`
	Method    models.MethodRef `yaml:"method"`
	Value     yaml.Node        `yaml:"value"`
	Source    string           `yaml:"source,omitempty"`
}

// InterceptorDoc is an interceptor class and its callbacks
type InterceptorDoc struct {
	Class     string                       `yaml:"class"`
	Callbacks map[string][]models.Callback `yaml:"callbacks,omitempty"`
}

// BindingDoc is an interceptor binding
type BindingDoc struct {
	Component      string            `yaml:"component"`
	Interceptors   []string          `yaml:"interceptors,omitempty"`
	Method         *models.MethodRef `yaml:"method,omitempty"`
	Constructor    bool              `yaml:"constructor,omitempty"`
	ExcludeDefault bool              `yaml:"excludeDefault,omitempty"`
	Source         string            `yaml:"source,omitempty"`
}

// Load decodes a snapshot document and checks its version
func Load(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("snapshot is empty")
		}
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := checkVersion(s.Version); err != nil {
		return nil, err
	}
	if s.Bundle == "" {
		return nil, fmt.Errorf("snapshot must name its bundle")
	}
	return &s, nil
}

// LoadFile decodes a snapshot file
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot '%s': %w", path, err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot '%s': %w", path, err)
	}
	s.Source = path
	return s, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("snapshot version is missing, expected %s", semver.Major(SchemaVersion))
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("snapshot version %q is not a semantic version", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("snapshot version %s is not supported, expected %s", v, semver.Major(SchemaVersion))
	}
	if semver.Compare(v, SchemaVersion) > 0 {
		return fmt.Errorf("snapshot version %s is newer than supported %s", v, SchemaVersion)
	}
	return nil
}

// Build creates the external-only bundle and the class index of the
// snapshot. Marker literals are parsed against the built-in schemas.
func (s *Snapshot) Build(opts config.Options) (*models.Bundle, *classindex.Index, error) {
	idx, err := s.buildIndex(opts, annotations.NewParser(annotations.DefaultRegistry()))
	if err != nil {
		return nil, nil, err
	}

	bundle := models.NewBundle(s.Bundle)
	for i := range s.Components {
		d, err := s.Components[i].descriptor()
		if err != nil {
			return nil, nil, err
		}
		if err := bundle.AddComponent(d); err != nil {
			return nil, nil, err
		}
	}
	for _, doc := range s.Interceptors {
		i := models.NewInterceptor(doc.Class)
		if err := addCallbacks(&i.CallbackTrait, doc.Callbacks, models.External); err != nil {
			return nil, nil, fmt.Errorf("interceptor %s: %w", doc.Class, err)
		}
		bundle.AddInterceptor(i)
	}
	for _, doc := range s.Bindings {
		if doc.Component == "" {
			return nil, nil, fmt.Errorf("interceptor binding must name a component")
		}
		binding := &models.InterceptorBinding{
			Component:      doc.Component,
			Interceptors:   append([]string(nil), doc.Interceptors...),
			Method:         doc.Method,
			Constructor:    doc.Constructor,
			ExcludeDefault: doc.ExcludeDefault,
		}
		bundle.AddExternalInterceptorBinding(binding)
	}
	return bundle, idx, nil
}

func (s *Snapshot) buildIndex(opts config.Options, parser *annotations.Parser) (*classindex.Index, error) {
	file := s.Source
	if file == "" {
		file = s.Bundle
	}
	parse := func(docs []MarkerDoc) ([]*annotations.Marker, error) {
		markers := make([]*annotations.Marker, 0, len(docs))
		for _, doc := range docs {
			m, err := parser.Parse(doc.Text, annotations.SourceLocation{File: file, Line: doc.Line, Column: doc.Column})
			if err != nil {
				return nil, err
			}
			markers = append(markers, m)
		}
		return markers, nil
	}
	method := func(doc MethodDoc) (*classindex.Method, error) {
		markers, err := parse(doc.Markers)
		if err != nil {
			return nil, err
		}
		public := doc.Public == nil || *doc.Public
		return &classindex.Method{
			Name:    doc.Name,
			Params:  append([]string(nil), doc.Params...),
			Returns: doc.Returns,
			Public:  public,
			Static:  doc.Static,
			Markers: markers,
		}, nil
	}

	idx := classindex.New(opts.RootClass)
	for _, doc := range s.Classes {
		markers, err := parse(doc.Markers)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", doc.Name, err)
		}
		c := &classindex.Class{
			Name:       doc.Name,
			Super:      doc.Super,
			Interfaces: append([]string(nil), doc.Interfaces...),
			Interface:  doc.Interface,
			Markers:    markers,
		}
		for _, ctor := range doc.Constructors {
			m, err := method(ctor)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", doc.Name, err)
			}
			m.Name = "<init>"
			c.Constructors = append(c.Constructors, m)
		}
		for _, md := range doc.Methods {
			if md.Name == "" {
				return nil, fmt.Errorf("class %s: method name cannot be empty", doc.Name)
			}
			m, err := method(md)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", doc.Name, err)
			}
			c.Methods = append(c.Methods, m)
		}
		if err := idx.Add(c); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// descriptor converts the document entry; present fields become fixed
func (doc *ComponentDoc) descriptor() (*models.ComponentDescriptor, error) {
	if doc.Name == "" {
		return nil, fmt.Errorf("component name cannot be empty")
	}
	// an unknown kind stays in the store; the resolver reports it
	kind, err := models.ParseComponentKind(doc.Kind)
	unsupported := err != nil
	session, err := models.ParseSessionType(doc.SessionType)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", doc.Name, err)
	}
	if session != models.NoSessionType {
		switch {
		case kind == models.MessageDrivenKind:
			return nil, fmt.Errorf("component %s: a message-driven component has no session type", doc.Name)
		case unsupported:
			return nil, fmt.Errorf("component %s: a component of kind %s has no session type", doc.Name, doc.Kind)
		}
		kind = models.SessionKind
	}

	var d *models.ComponentDescriptor
	if doc.Placeholder || kind == models.UnknownKind {
		d = models.NewPlaceholder(doc.Name)
		d.Kind = kind
		d.Class = doc.Class
	} else {
		d = models.NewComponent(doc.Name, doc.Class, kind)
	}
	if unsupported {
		d.KindName = doc.Kind
	}
	if session != models.NoSessionType {
		if err := d.SetSessionType(session); err != nil {
			return nil, err
		}
		d.Fix(models.SessionTypeField)
	}
	if doc.Class != "" {
		d.Fix(models.ClassField)
	}

	setString := func(dst *string, value string, f models.Field) {
		if value != "" {
			*dst = value
			d.Fix(f)
		}
	}
	setString(&d.MappedName, doc.MappedName, models.MappedNameField)
	setString(&d.Description, doc.Description, models.DescriptionField)
	setString(&d.MessageListenerInterface, doc.MessageListenerInterface, models.MessageListenerInterfaceField)
	if doc.Concurrency != "" {
		d.Concurrency = models.ConcurrencyMode(doc.Concurrency)
		d.Fix(models.ConcurrencyField)
	}
	if doc.LocalBean != nil {
		d.LocalBean = *doc.LocalBean
		d.Fix(models.LocalBeanField)
	}
	if doc.RemoteHome != "" {
		d.RemoteHome, d.RemoteComponent = doc.RemoteHome, doc.RemoteComponent
		d.Fix(models.RemoteHomeField)
	}
	if doc.LocalHome != "" {
		d.LocalHome, d.LocalComponent = doc.LocalHome, doc.LocalComponent
		d.Fix(models.LocalHomeField)
	}
	d.WebServiceEndpoint = doc.WebServiceEndpoint
	for _, class := range doc.NoInterfaceClasses {
		d.AddNoInterfaceClass(class)
	}
	for _, name := range doc.Remote {
		if err := d.AddRemoteInterface(name); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Local {
		if err := d.AddLocalInterface(name); err != nil {
			return nil, err
		}
	}
	if doc.TimeoutMethod != nil {
		ref := *doc.TimeoutMethod
		d.TimeoutMethod = &ref
		d.Fix(models.TimeoutMethodField)
	}
	if doc.InitOnStartup != nil {
		d.InitOnStartup = *doc.InitOnStartup
		d.Fix(models.InitOnStartupField)
	}
	if doc.DependsOn != nil {
		d.DependsOn = append([]string(nil), doc.DependsOn...)
		d.Fix(models.DependsOnField)
	}

	if err := addCallbacks(&d.CallbackTrait, doc.Callbacks, models.External); err != nil {
		return nil, fmt.Errorf("component %s: %w", doc.Name, err)
	}
	for _, o := range doc.Overrides {
		kind, ok := parseAttributeKind(o.Attribute)
		if !ok {
			return nil, fmt.Errorf("component %s: unknown attribute %q", doc.Name, o.Attribute)
		}
		value, err := decodeValue(kind, &o.Value)
		if err != nil {
			return nil, fmt.Errorf("component %s: %s override of %s: %w", doc.Name, kind, o.Method, err)
		}
		d.AddOverride(kind, o.Method, value, models.External)
	}
	return d, nil
}

func addCallbacks(trait *models.CallbackTrait, docs map[string][]models.Callback, source models.Source) error {
	for _, kind := range models.LifecycleKinds() {
		for _, cb := range docs[kind.String()] {
			cb.Source = source
			trait.AddCallback(kind, cb)
		}
	}
	for name := range docs {
		if _, ok := models.ParseLifecycleKind(name); !ok {
			return fmt.Errorf("unknown lifecycle callback %q", name)
		}
	}
	return nil
}

func parseAttributeKind(s string) (models.AttributeKind, bool) {
	for _, kind := range models.AttributeKinds() {
		if kind.String() == s {
			return kind, true
		}
	}
	return 0, false
}

// decodeValue reads an override value in the shape its attribute uses
func decodeValue(kind models.AttributeKind, node *yaml.Node) (interface{}, error) {
	if node.Kind == 0 {
		if kind == models.AsynchronousAttribute {
			return true, nil
		}
		return nil, fmt.Errorf("value is required")
	}
	switch kind {
	case models.AccessTimeoutAttribute:
		var v models.AccessTimeout
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		if v.Unit == "" {
			v.Unit = "MILLISECONDS"
		}
		return v, nil
	case models.LockAttribute:
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return models.LockType(annotations.EnumValue(v)), nil
	case models.AsynchronousAttribute:
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		var v string
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return annotations.EnumValue(v), nil
	}
}
