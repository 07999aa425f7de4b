package resolver

import (
	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// attribute describes one method-level attribute marker
type attribute struct {
	marker   annotations.MarkerType
	kind     models.AttributeKind
	requires string // component types the marker applies to, for findings
	applies  func(d *models.ComponentDescriptor) bool
	value    func(m *annotations.Marker) interface{}
}

var accessTimeoutAttribute = attribute{
	marker:   annotations.AccessTimeoutMarker,
	kind:     models.AccessTimeoutAttribute,
	requires: "Singleton or Stateful",
	applies: func(d *models.ComponentDescriptor) bool {
		return d.SessionType() == models.Singleton || d.SessionType() == models.Stateful
	},
	value: func(m *annotations.Marker) interface{} {
		return models.AccessTimeout{
			Value: m.GetInt("value"),
			Unit:  annotations.EnumValue(m.GetString("unit", "MILLISECONDS")),
		}
	},
}

var lockAttribute = attribute{
	marker:   annotations.LockMarker,
	kind:     models.LockAttribute,
	requires: "Singleton",
	applies:  isSingleton,
	value: func(m *annotations.Marker) interface{} {
		return models.LockType(annotations.EnumValue(m.GetString("value", string(models.WriteLock))))
	},
}

var asynchronousAttribute = attribute{
	marker:   annotations.AsynchronousMarker,
	kind:     models.AsynchronousAttribute,
	requires: "Session",
	applies:  func(d *models.ComponentDescriptor) bool { return d.IsSession() },
	value:    func(*annotations.Marker) interface{} { return true },
}

var transactionAttribute = attribute{
	marker:   annotations.TransactionAttributeMarker,
	kind:     models.TransactionAttribute,
	requires: "Session or MessageDriven",
	applies:  func(d *models.ComponentDescriptor) bool { return d.Kind != models.UnknownKind && d.Supported() },
	value: func(m *annotations.Marker) interface{} {
		return annotations.EnumValue(m.GetString("value", "REQUIRED"))
	},
}

func isSingleton(d *models.ComponentDescriptor) bool {
	return d.SessionType() == models.Singleton
}

// attributeHandler builds the handler of one attribute marker. Method-level
// markers register an override unless the method already has one;
// type-level markers are deferred and fill the remaining gaps once every
// method-level marker of the scan has been applied.
func (r *resolver) attributeHandler(a attribute) *processor.Handler {
	h := &processor.Handler{
		Marker:                  a.marker,
		Dependencies:            componentDependencies,
		SupportsTypeInheritance: true,
	}
	h.Process = func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
		components := occ.Components()
		if len(components) == 0 {
			return processor.NotApplicableOutcome()
		}
		if f := inapplicable(occ, components, a.applies, a.requires); f != nil {
			return processor.Skip(f)
		}

		if occ.Element.Kind == classindex.TypeElement {
			ctx.Enqueue(occ, h)
			return processor.Done()
		}

		m := occ.Element.Method
		ref := models.NewMethodRef(m.Declaring, m.Name, m.Params...)
		value := a.value(occ.Marker)
		for _, d := range components {
			if !d.AddOverride(a.kind, ref, value, models.Inline) {
				ctx.Log.Debug("%s of %s already set for %s", a.kind, ref, d.Name)
			}
		}
		return processor.Done()
	}
	h.PostProcess = func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
		value := a.value(occ.Marker)
		for _, d := range occ.Components() {
			for _, m := range businessMethods(ctx, d, occ.Target, occ.Element.Class) {
				d.AddOverride(a.kind, models.NewMethodRef(m.Declaring, m.Name, m.Params...), value, models.Inline)
			}
		}
		return processor.Done()
	}
	return h
}

// businessMethods returns the most-derived methods of target that are
// declared on the annotated class and are business methods of d. Methods
// overridden below the annotated class belong to the overriding class.
func businessMethods(ctx *processor.Context, d *models.ComponentDescriptor, target, annotated string) []*classindex.Method {
	// A session component without a no-interface view exposes only the
	// methods of its business interfaces
	var restrict map[string]bool
	interfaces := append(append([]string(nil), d.RemoteInterfaces()...), d.LocalInterfaces()...)
	if d.IsSession() && !d.LocalBean && len(interfaces) > 0 {
		restrict = make(map[string]bool)
		for _, intf := range interfaces {
			for _, m := range ctx.Index.InterfaceMethods(intf) {
				restrict[m.Signature()] = true
			}
		}
	}

	var methods []*classindex.Method
	for _, m := range ctx.Index.Members(target) {
		if m.Declaring != annotated || !m.Public || m.Static {
			continue
		}
		if restrict != nil && !restrict[m.Signature()] {
			continue
		}
		methods = append(methods, m)
	}
	return methods
}

// inapplicable returns a warning when a marker lands on a component type
// it does not support
func inapplicable(occ *processor.Occurrence, components []*models.ComponentDescriptor, applies func(*models.ComponentDescriptor) bool, requires string) *errors.Finding {
	for _, d := range components {
		if !applies(d) {
			return errors.New(errors.InapplicableMarkerCode, occ.Marker.Type, requires, d.TypeName(), d.Name).
				WithComponent(d.Name)
		}
	}
	return nil
}
