package resolver

import (
	stderrors "errors"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classify"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// componentHandler handles one component-defining marker type
func (r *resolver) componentHandler(t annotations.MarkerType, kind models.ComponentKind, session models.SessionType) *processor.Handler {
	h := &processor.Handler{
		Marker:                  t,
		SupportsTypeInheritance: true,
	}
	h.Process = func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
		if occ.Frame != nil && occ.Frame.Kind == processor.ComponentFrame {
			return r.checkActiveComponent(occ, kind, session)
		}
		if occ.Inherited {
			// a superclass marker does not make the subclass a component
			return processor.NotApplicableOutcome()
		}
		return r.defineComponent(ctx, occ, kind, session)
	}
	return h
}

// checkActiveComponent validates a component-defining marker seen while a
// component context is already established, typically one inherited from a
// superclass
func (r *resolver) checkActiveComponent(occ *processor.Occurrence, kind models.ComponentKind, session models.SessionType) processor.Outcome {
	components := occ.Components()
	if len(components) != 1 {
		return processor.NotApplicableOutcome()
	}
	d := components[0]
	if !compatible(d, kind, session) {
		return processor.Skip(errors.New(errors.IncompatibleSuperclassMarkerCode, occ.Marker.Type, d.TypeName(), d.Name).
			WithComponent(d.Name))
	}
	return processor.Done()
}

func (r *resolver) defineComponent(ctx *processor.Context, occ *processor.Occurrence, kind models.ComponentKind, session models.SessionType) processor.Outcome {
	class := occ.Target
	name := occ.Marker.GetString("name")
	if name == "" {
		name = classindex.SimpleName(class)
	}
	bundle := ctx.Bundle

	d, found := bundle.ComponentByName(name)
	if found && !d.Supported() {
		// reported once when the pass starts
		return processor.NotApplicableOutcome()
	}
	existing := found && !d.Placeholder
	var placeholder *models.ComponentDescriptor
	if found && d.Placeholder {
		placeholder = d
	}

	if existing {
		ctx.Log.Debug("overriding rules apply for %s", class)
		if !compatible(d, kind, session) {
			return processor.Fail(errors.New(errors.KindMismatchCode, occ.Marker.Type, d.TypeName(), d.Name).
				WithComponent(d.Name))
		}
		if d.Class != "" && d.Class != class {
			return processor.Fail(errors.New(errors.ClassMismatchCode, d.Class, name, class).
				WithComponent(name))
		}
	} else if placeholder != nil && !placeholderAccepts(placeholder, kind, session) {
		return processor.Fail(errors.New(errors.KindMismatchCode, occ.Marker.Type, placeholderType(placeholder), name).
			WithComponent(name))
	}

	// Every descriptor sharing the class takes part, so all of them must
	// accept the marker before the store changes
	for _, sibling := range bundle.ComponentsByClass(class) {
		if sibling == placeholder || !sibling.Supported() {
			continue
		}
		if !compatible(sibling, kind, session) {
			return processor.Fail(errors.New(errors.KindMismatchCode, occ.Marker.Type, sibling.TypeName(), sibling.Name).
				WithComponent(sibling.Name))
		}
	}

	if existing {
		if d.Class == "" {
			d.BindClass(class)
		}
	} else {
		ctx.Log.Debug("creating a new descriptor for %s", class)
		d = models.NewComponent(name, class, kind)
		if placeholder != nil {
			bundle.RemoveComponent(placeholder)
			d.CopyFrom(placeholder)
			d.BindClass(class)
		}
		if err := bundle.AddComponent(d); err != nil {
			if placeholder != nil {
				_ = bundle.AddComponent(placeholder)
			}
			return processor.Fail(errors.Wrap(errors.UnknownCode, err, err).WithSeverity(errors.Fatal))
		}
		ctx.Log.Debug("new @%s component %s", occ.Marker.Type, name)
	}

	var siblings []*models.ComponentDescriptor
	for _, sibling := range bundle.ComponentsByClass(class) {
		if sibling.Supported() {
			siblings = append(siblings, sibling)
		}
	}
	for _, sibling := range siblings {
		if f := r.setDescriptorInfo(ctx, occ, sibling, session); f != nil {
			return processor.Fail(f)
		}
		r.processTimedObject(ctx, sibling)
	}

	return processor.DoneAndPush(processor.NewComponentFrame(class, siblings))
}

// setDescriptorInfo records the marker's attributes on one descriptor and
// classifies its client views. Fields the external document fixed are kept.
func (r *resolver) setDescriptorInfo(ctx *processor.Context, occ *processor.Occurrence, d *models.ComponentDescriptor, session models.SessionType) *errors.Finding {
	m := occ.Marker

	if session != models.NoSessionType {
		if err := d.SetSessionType(session); err != nil {
			return errors.Wrap(errors.SessionTypeConflictCode, err, d.Name, d.SessionType(), session).
				WithComponent(d.Name)
		}
	}

	if mapped := m.GetString("mappedName"); mapped != "" && d.MappedName == "" && !d.IsFixed(models.MappedNameField) {
		d.MappedName = mapped
	}
	if description := m.GetString("description"); description != "" && !d.IsFixed(models.DescriptionField) {
		d.Description = description
	}

	if d.Kind == models.MessageDrivenKind {
		if listener := m.GetString("messageListenerInterface"); listener != "" && !d.IsFixed(models.MessageListenerInterfaceField) {
			d.MessageListenerInterface = listener
		}
		return nil
	}

	if session == models.Singleton && d.Concurrency == "" && !d.IsFixed(models.ConcurrencyField) {
		d.Concurrency = models.ContainerConcurrency
	}

	result, err := classify.Classify(ctx.Index, classify.InputFor(d), ctx.Config)
	if err != nil {
		return asFinding(err, d)
	}
	if err := result.Apply(d); err != nil {
		var conflict *models.InterfaceConflictError
		if stderrors.As(err, &conflict) {
			return errors.Wrap(errors.InterfaceConflictCode, err, conflict.Interface).WithComponent(d.Name)
		}
		return asFinding(err, d)
	}
	return nil
}

// processTimedObject records the timeout callback: the first @Timeout
// method walking up from the class, else ejbTimeout when the class is a
// timed object
func (r *resolver) processTimedObject(ctx *processor.Context, d *models.ComponentDescriptor) {
	if d.TimeoutMethod != nil || d.IsFixed(models.TimeoutMethodField) {
		return
	}
	for _, c := range ctx.Index.Hierarchy(d.Class) {
		for _, m := range c.Methods {
			if _, ok := m.Marker(annotations.TimeoutMarker); ok {
				ref := models.NewMethodRef(m.Declaring, m.Name, m.Params...)
				d.TimeoutMethod = &ref
				return
			}
		}
	}
	if r.cfg.TimedObjectInterface != "" && ctx.Index.IsAssignable(d.Class, r.cfg.TimedObjectInterface) {
		ref := models.NewMethodRef(d.Class, "ejbTimeout", r.cfg.TimerType)
		if m, ok := ctx.Index.MostDerived(d.Class, ref.Signature()); ok {
			ref.Class = m.Declaring
		}
		d.TimeoutMethod = &ref
	}
}

// compatible reports whether a descriptor can take a marker of the given
// kind and session type
func compatible(d *models.ComponentDescriptor, kind models.ComponentKind, session models.SessionType) bool {
	if d.Kind != kind {
		return false
	}
	return d.SessionType() == models.NoSessionType || d.SessionType() == session
}

// placeholderAccepts checks the kind data a placeholder may already carry
func placeholderAccepts(p *models.ComponentDescriptor, kind models.ComponentKind, session models.SessionType) bool {
	if p.Kind != models.UnknownKind && p.Kind != kind {
		return false
	}
	return p.SessionType() == models.NoSessionType || p.SessionType() == session
}

func placeholderType(p *models.ComponentDescriptor) string {
	if p.SessionType() != models.NoSessionType {
		return p.SessionType().String()
	}
	return p.Kind.String()
}

// asFinding keeps findings as they are and wraps anything else
func asFinding(err error, d *models.ComponentDescriptor) *errors.Finding {
	var f *errors.Finding
	if stderrors.As(err, &f) {
		return f
	}
	return errors.Wrap(errors.UnknownCode, err, err).
		WithComponent(d.Name).
		WithSeverity(errors.Fatal)
}
