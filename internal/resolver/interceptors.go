package resolver

import (
	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// interceptorsHandler binds interceptor classes to the components of the
// context and scans each interceptor class for its callbacks
func (r *resolver) interceptorsHandler() *processor.Handler {
	return &processor.Handler{
		Marker:       annotations.InterceptorsMarker,
		Dependencies: componentDependencies,
		Process: func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
			components := occ.Components()
			if len(components) == 0 {
				return processor.NotApplicableOutcome()
			}

			classes := occ.Marker.GetStringSlice("value")
			var scanned []*models.InterceptorDescriptor
			for _, class := range classes {
				scanned = append(scanned, ctx.Bundle.AddInterceptor(models.NewInterceptor(class)))
			}
			for _, d := range components {
				binding := newBinding(d, occ)
				binding.Interceptors = append([]string(nil), classes...)
				if !ctx.Bundle.AddInlineInterceptorBinding(binding) {
					ctx.Log.Debug("interceptor binding %s already recorded", binding)
				}
			}
			for _, i := range scanned {
				ctx.ScanInterceptor(i)
			}
			return processor.Done()
		},
	}
}

func (r *resolver) excludeDefaultInterceptorsHandler() *processor.Handler {
	return &processor.Handler{
		Marker:       annotations.ExcludeDefaultInterceptorsMarker,
		Dependencies: componentDependencies,
		Process: func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
			components := occ.Components()
			if len(components) == 0 {
				return processor.NotApplicableOutcome()
			}
			for _, d := range components {
				binding := newBinding(d, occ)
				binding.ExcludeDefault = true
				ctx.Bundle.AddInlineInterceptorBinding(binding)
			}
			return processor.Done()
		},
	}
}

// newBinding narrows a binding to the occurrence's method or constructor
func newBinding(d *models.ComponentDescriptor, occ *processor.Occurrence) *models.InterceptorBinding {
	binding := &models.InterceptorBinding{Component: d.Name}
	switch occ.Element.Kind {
	case classindex.MethodElement:
		m := occ.Element.Method
		ref := models.NewMethodRef(m.Declaring, m.Name, m.Params...)
		binding.Method = &ref
	case classindex.ConstructorElement:
		binding.Constructor = true
	}
	return binding
}

// lifecycleHandler records a lifecycle callback on the components of the
// context, or on the interceptor being scanned
func (r *resolver) lifecycleHandler(kind models.LifecycleKind) *processor.Handler {
	return &processor.Handler{
		Marker:       lifecycleMarkers[kind],
		Dependencies: componentDependencies,
		Delegatee:    true,
		Process: func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
			m := occ.Element.Method
			if m == nil {
				return processor.Skip(errors.New(errors.InvalidMarkerCode, occ.Marker, "only methods take lifecycle callbacks"))
			}
			cb := models.Callback{Class: m.Declaring, Method: m.Name, Source: models.Inline}

			if occ.Frame != nil && occ.Frame.Kind == processor.InterceptorFrame {
				occ.Frame.Interceptor.AddCallback(kind, cb)
				return processor.Done()
			}

			components := occ.Components()
			if len(components) == 0 {
				return processor.NotApplicableOutcome()
			}
			if kind == models.AroundConstruct {
				d := components[0]
				return processor.Skip(errors.New(errors.InapplicableMarkerCode, occ.Marker.Type, "interceptor", d.TypeName(), d.Name).
					WithComponent(d.Name))
			}
			for _, d := range components {
				if !d.AddCallback(kind, cb) {
					ctx.Log.Debug("%s callback of %s already declared for %s", kind, m.Declaring, d.Name)
				}
			}
			return processor.Done()
		},
	}
}

// timeoutHandler records a @Timeout method that timed-object processing
// did not already settle
func (r *resolver) timeoutHandler() *processor.Handler {
	return &processor.Handler{
		Marker:       annotations.TimeoutMarker,
		Dependencies: componentDependencies,
		Process: func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
			components := occ.Components()
			if len(components) == 0 {
				return processor.NotApplicableOutcome()
			}
			m := occ.Element.Method
			for _, d := range components {
				if d.TimeoutMethod == nil && !d.IsFixed(models.TimeoutMethodField) {
					ref := models.NewMethodRef(m.Declaring, m.Name, m.Params...)
					d.TimeoutMethod = &ref
				}
			}
			return processor.Done()
		},
	}
}
