package processor

import (
	"fmt"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/errors"
)

// ResultType is the result of processing one marker occurrence
type ResultType int

const (
	// Processed means the occurrence was applied
	Processed ResultType = iota
	// Failed means a fatal finding aborted the occurrence
	Failed
	// Skipped means the occurrence degraded to a no-op with a warning
	Skipped
	// NotApplicable means the handler does not address this context; no message
	NotApplicable
)

// String returns the string representation of the result type
func (r ResultType) String() string {
	switch r {
	case Processed:
		return "processed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case NotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// Outcome is what a handler reports for one occurrence
type Outcome struct {
	Type    ResultType
	Finding *errors.Finding
	Push    *Frame // context pushed for the rest of the element scan
}

// Done reports a processed occurrence
func Done() Outcome {
	return Outcome{Type: Processed}
}

// DoneAndPush reports a processed occurrence that establishes a new context
func DoneAndPush(frame *Frame) Outcome {
	return Outcome{Type: Processed, Push: frame}
}

// Fail reports a fatal finding. A warning finding degrades to Skip.
func Fail(f *errors.Finding) Outcome {
	if !f.IsFatal() {
		return Skip(f)
	}
	return Outcome{Type: Failed, Finding: f}
}

// Skip reports a no-op with a warning
func Skip(f *errors.Finding) Outcome {
	return Outcome{Type: Skipped, Finding: f.WithSeverity(errors.Warning)}
}

// NotApplicableOutcome reports a silently ignored occurrence
func NotApplicableOutcome() Outcome {
	return Outcome{Type: NotApplicable}
}

// Handler is the variant record of one marker type. The hook fields replace
// overridable behaviour: Dependencies lists marker types that must be
// processed first on the same element, SupportsTypeInheritance admits
// type-level markers found on superclasses, and Delegatee admits the
// handler inside interceptor contexts.
type Handler struct {
	Marker                  annotations.MarkerType
	Dependencies            []annotations.MarkerType
	SupportsTypeInheritance bool
	Delegatee               bool

	// Process resolves one occurrence
	Process func(ctx *Context, occ *Occurrence) Outcome

	// PostProcess applies a deferred class-level occurrence after the
	// element scan. Only handlers that enqueue need it.
	PostProcess func(ctx *Context, occ *Occurrence) Outcome
}

// Table is the dispatch table keyed by marker type
type Table map[annotations.MarkerType]*Handler

// NewTable builds a dispatch table; each marker type has one handler
func NewTable(handlers []*Handler) (Table, error) {
	table := make(Table, len(handlers))
	for _, h := range handlers {
		if h == nil || h.Process == nil {
			return nil, fmt.Errorf("handler for @%v has no Process function", markerOf(h))
		}
		if h.Marker == annotations.ForeignMarker {
			return nil, fmt.Errorf("foreign markers cannot have a handler")
		}
		if _, exists := table[h.Marker]; exists {
			return nil, fmt.Errorf("marker type %s already has a handler", h.Marker)
		}
		table[h.Marker] = h
	}
	return table, nil
}

// Order returns the markers of one element in processing order. Each
// marker is preceded by the markers of its handler's dependency types that
// are present on the element; ties keep discovery order. Dependencies that
// are absent are skipped and cycles are cut at the marker being ordered.
func Order(markers []*annotations.Marker, table Table) []*annotations.Marker {
	byType := make(map[annotations.MarkerType]*annotations.Marker, len(markers))
	for _, m := range markers {
		if _, exists := byType[m.Type]; !exists {
			byType[m.Type] = m
		}
	}

	ordered := make([]*annotations.Marker, 0, len(markers))
	done := make(map[*annotations.Marker]bool, len(markers))
	visiting := make(map[*annotations.Marker]bool)

	var visit func(m *annotations.Marker)
	visit = func(m *annotations.Marker) {
		if done[m] || visiting[m] {
			return
		}
		visiting[m] = true
		if h, ok := table[m.Type]; ok {
			for _, dep := range h.Dependencies {
				if depMarker, present := byType[dep]; present {
					visit(depMarker)
				}
			}
		}
		visiting[m] = false
		done[m] = true
		ordered = append(ordered, m)
	}

	for _, m := range markers {
		visit(m)
	}
	return ordered
}

func markerOf(h *Handler) interface{} {
	if h == nil {
		return "nil"
	}
	return h.Marker
}
