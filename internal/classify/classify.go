// Package classify infers the client-facing contract of a session component:
// which interfaces are remote business interfaces, which are local, and
// whether the component exposes a no-interface view.
package classify

import (
	"strings"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
)

// Input is what classification knows about one component
type Input struct {
	Component string // descriptor name, for findings
	Class     string // implementation class

	// State already recorded on the descriptor by the external document
	ExistingRemote        []string
	ExistingLocal         []string
	ExistingHomes         bool
	LocalBean             bool
	HasWebServiceEndpoint bool
}

// InputFor builds the classification input from a descriptor
func InputFor(d *models.ComponentDescriptor) Input {
	return Input{
		Component:             d.Name,
		Class:                 d.Class,
		ExistingRemote:        d.RemoteInterfaces(),
		ExistingLocal:         d.LocalInterfaces(),
		ExistingHomes:         d.RemoteHome != "" || d.LocalHome != "",
		LocalBean:             d.LocalBean,
		HasWebServiceEndpoint: d.WebServiceEndpoint != "",
	}
}

// Result is the outcome of classification. Nothing is applied to a
// descriptor until Apply is called.
type Result struct {
	Remote             []string
	Local              []string
	NoInterface        bool
	NoInterfaceClasses []string

	RemoteHome      string
	RemoteComponent string
	LocalHome       string
	LocalComponent  string
}

// Classify partitions the interfaces of in.Class. The steps run in a fixed
// order: explicit class-level markers, the implements clause with its
// defaulting rule, home adapters, then the no-interface fallback. A fatal
// finding is returned before anything is recorded.
func Classify(idx *classindex.Index, in Input, opts config.Options) (*Result, error) {
	class, ok := idx.Class(in.Class)
	if !ok {
		return nil, errors.New(errors.MissingClassCode, in.Class, in.Component).
			WithElement(classindex.TypeOf(in.Class)).
			WithComponent(in.Component).
			WithSeverity(errors.Fatal)
	}
	el := classindex.TypeOf(class.Name)

	remote := newOrderedSet()
	local := newOrderedSet()
	client := newOrderedSet()

	conflict := func(intf string) error {
		return errors.New(errors.InterfaceConflictCode, intf).
			WithElement(el).
			WithComponent(in.Component)
	}

	// Step 1: explicit markers on the class
	emptyRemote, emptyLocal := false, false
	if m, ok := class.Marker(annotations.RemoteMarker); ok {
		for _, intf := range m.GetStringSlice("value") {
			if hasInterfaceMarker(idx, intf, annotations.LocalMarker) {
				return nil, conflict(intf)
			}
			client.add(intf)
			remote.add(intf)
		}
		emptyRemote = remote.size() == 0
	}
	if m, ok := class.Marker(annotations.LocalMarker); ok {
		for _, intf := range m.GetStringSlice("value") {
			if hasInterfaceMarker(idx, intf, annotations.RemoteMarker) {
				return nil, conflict(intf)
			}
			client.add(intf)
			local.add(intf)
		}
		emptyLocal = local.size() == 0
	}

	// Step 2: the implements clause
	var implementing []string
	designated := 0
	for _, intf := range class.Interfaces {
		if opts.IsExcludedInterface(intf) {
			continue
		}
		if hasInterfaceMarker(idx, intf, annotations.LocalMarker) || hasInterfaceMarker(idx, intf, annotations.RemoteMarker) {
			designated++
		}
		implementing = append(implementing, intf)
	}

	localBean := in.LocalBean || class.HasMarker(annotations.LocalBeanMarker)

	// Counted once so every undesignated interface sees the same total
	designatedCount := remote.size() + local.size() + len(in.ExistingRemote) + len(in.ExistingLocal) + designated

	for _, intf := range implementing {
		if remote.has(intf) || local.has(intf) || contains(in.ExistingRemote, intf) || contains(in.ExistingLocal, intf) {
			continue
		}

		isLocal := hasInterfaceMarker(idx, intf, annotations.LocalMarker)
		isRemote := hasInterfaceMarker(idx, intf, annotations.RemoteMarker)
		if isLocal || isRemote {
			if isLocal {
				local.add(intf)
			}
			if isRemote {
				remote.add(intf)
			}
			client.add(intf)
			continue
		}

		if designatedCount == 0 && !localBean {
			switch {
			case emptyRemote || emptyLocal:
				if emptyRemote {
					remote.add(intf)
				}
				if emptyLocal {
					local.add(intf)
				}
			default:
				local.add(intf)
			}
			client.add(intf)
		}
	}

	for _, intf := range client.items {
		if remote.has(intf) && local.has(intf) {
			return nil, conflict(intf)
		}
	}
	for _, intf := range remote.items {
		if contains(in.ExistingLocal, intf) {
			return nil, conflict(intf)
		}
	}
	for _, intf := range local.items {
		if contains(in.ExistingRemote, intf) {
			return nil, conflict(intf)
		}
	}

	result := &Result{Remote: remote.items, Local: local.items}

	// Step 3: adapted home interfaces
	if m, ok := class.Marker(annotations.RemoteHomeMarker); ok {
		home := m.GetString("value")
		component, valid := validateHome(idx, home, opts.RemoteHomeInterface, opts.RemoteComponentInterface)
		if !valid {
			return nil, invalidHome(el, in.Component, annotations.RemoteHomeMarker, home)
		}
		client.add(home)
		result.RemoteHome, result.RemoteComponent = home, component
	}
	if m, ok := class.Marker(annotations.LocalHomeMarker); ok {
		home := m.GetString("value")
		component, valid := validateHome(idx, home, opts.LocalHomeInterface, opts.LocalComponentInterface)
		if !valid {
			return nil, invalidHome(el, in.Component, annotations.LocalHomeMarker, home)
		}
		client.add(home)
		result.LocalHome, result.LocalComponent = home, component
	}

	// Step 4: the no-interface fallback. Interfaces and homes the external
	// document declared count as client views, so a descriptor that already
	// has any of them gets no implicit no-interface view.
	hasClients := client.size() > 0 || len(in.ExistingRemote) > 0 || len(in.ExistingLocal) > 0 || in.ExistingHomes
	_, webService := class.Marker(annotations.WebServiceMarker)
	if !localBean && !hasClients && !in.HasWebServiceEndpoint && (!opts.Capabilities.WebServices || !webService) {
		localBean = true
	}

	if localBean {
		result.NoInterface = true
		for _, c := range idx.Hierarchy(class.Name) {
			result.NoInterfaceClasses = append(result.NoInterfaceClasses, c.Name)
		}
	}
	return result, nil
}

// Apply records the result on a descriptor. Homes and the no-interface flag
// fixed by the external document are kept.
func (r *Result) Apply(d *models.ComponentDescriptor) error {
	for _, intf := range r.Local {
		if err := d.AddLocalInterface(intf); err != nil {
			return err
		}
	}
	for _, intf := range r.Remote {
		if err := d.AddRemoteInterface(intf); err != nil {
			return err
		}
	}
	if r.RemoteHome != "" && !d.IsFixed(models.RemoteHomeField) {
		d.RemoteHome, d.RemoteComponent = r.RemoteHome, r.RemoteComponent
	}
	if r.LocalHome != "" && !d.IsFixed(models.LocalHomeField) {
		d.LocalHome, d.LocalComponent = r.LocalHome, r.LocalComponent
	}
	if r.NoInterface && !d.IsFixed(models.LocalBeanField) {
		d.LocalBean = true
	}
	if d.LocalBean {
		for _, class := range r.NoInterfaceClasses {
			d.AddNoInterfaceClass(class)
		}
	}
	return nil
}

// validateHome checks a home interface and infers its component interface
// from the return type of the first create method
func validateHome(idx *classindex.Index, home, homeBase, componentBase string) (string, bool) {
	if home == "" || !idx.IsAssignable(home, homeBase) {
		return "", false
	}
	var component string
	for _, m := range idx.InterfaceMethods(home) {
		if strings.HasPrefix(m.Name, "create") {
			component = m.Returns
			break
		}
	}
	if component == "" || !idx.IsAssignable(component, componentBase) {
		return component, false
	}
	return component, true
}

func invalidHome(el classindex.Element, component string, t annotations.MarkerType, home string) error {
	return errors.New(errors.InvalidHomeCode, t, home).
		WithElement(el).
		WithMarker(t).
		WithComponent(component)
}

func hasInterfaceMarker(idx *classindex.Index, intf string, t annotations.MarkerType) bool {
	c, ok := idx.Class(intf)
	return ok && c.HasMarker(t)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) add(item string) {
	if !s.seen[item] {
		s.seen[item] = true
		s.items = append(s.items, item)
	}
}

func (s *orderedSet) has(item string) bool { return s.seen[item] }

func (s *orderedSet) size() int { return len(s.items) }
