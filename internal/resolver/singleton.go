package resolver

import (
	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/models"
	"github.com/toyz/descres/internal/processor"
)

// singletonHandler builds a type-level handler for singleton-only markers.
// apply runs for every descriptor of the context; fields the external
// document fixed are left alone by apply itself.
func (r *resolver) singletonHandler(t annotations.MarkerType, apply func(d *models.ComponentDescriptor, m *annotations.Marker)) *processor.Handler {
	return &processor.Handler{
		Marker:       t,
		Dependencies: componentDependencies,
		Process: func(ctx *processor.Context, occ *processor.Occurrence) processor.Outcome {
			components := occ.Components()
			if len(components) == 0 {
				return processor.NotApplicableOutcome()
			}
			if f := inapplicable(occ, components, isSingleton, "Singleton"); f != nil {
				return processor.Skip(f)
			}
			for _, d := range components {
				apply(d, occ.Marker)
			}
			return processor.Done()
		},
	}
}

func (r *resolver) concurrencyManagementHandler() *processor.Handler {
	return r.singletonHandler(annotations.ConcurrencyManagementMarker, func(d *models.ComponentDescriptor, m *annotations.Marker) {
		if !d.IsFixed(models.ConcurrencyField) {
			d.Concurrency = models.ConcurrencyMode(annotations.EnumValue(m.GetString("value", string(models.ContainerConcurrency))))
		}
	})
}

func (r *resolver) startupHandler() *processor.Handler {
	return r.singletonHandler(annotations.StartupMarker, func(d *models.ComponentDescriptor, _ *annotations.Marker) {
		if !d.IsFixed(models.InitOnStartupField) {
			d.InitOnStartup = true
		}
	})
}

func (r *resolver) dependsOnHandler() *processor.Handler {
	return r.singletonHandler(annotations.DependsOnMarker, func(d *models.ComponentDescriptor, m *annotations.Marker) {
		if !d.IsFixed(models.DependsOnField) {
			d.DependsOn = append([]string(nil), m.GetStringSlice("value")...)
		}
	})
}
