package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
)

func marker(t annotations.MarkerType) *annotations.Marker {
	return annotations.NewMarker(t, nil)
}

// trace records every occurrence a handler sees, in dispatch order
type trace struct {
	seen []string
}

func (tr *trace) handler(t annotations.MarkerType, deps ...annotations.MarkerType) *Handler {
	return &Handler{
		Marker:       t,
		Dependencies: deps,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			tr.seen = append(tr.seen, occ.Marker.Type.String()+"@"+occ.Element.String())
			return Done()
		},
	}
}

type countingRecorder struct {
	occurrences map[string]int
	findings    map[string]int
	passes      int
	abandoned   bool
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{occurrences: map[string]int{}, findings: map[string]int{}}
}

func (r *countingRecorder) ObserveOccurrence(marker, result string) { r.occurrences[result]++ }
func (r *countingRecorder) ObserveFinding(code, severity string)   { r.findings[code]++ }
func (r *countingRecorder) ObservePass(_ string, _ float64, _ int, abandoned bool) {
	r.passes++
	r.abandoned = abandoned
}

func mustIndex(t *testing.T, classes ...*classindex.Class) *classindex.Index {
	t.Helper()
	idx := classindex.New("")
	for _, c := range classes {
		require.NoError(t, idx.Add(c))
	}
	return idx
}

func TestNewTable(t *testing.T) {
	tr := &trace{}

	table, err := NewTable([]*Handler{tr.handler(annotations.StatelessMarker), tr.handler(annotations.LockMarker)})
	require.NoError(t, err)
	assert.Len(t, table, 2)

	_, err = NewTable([]*Handler{tr.handler(annotations.LockMarker), tr.handler(annotations.LockMarker)})
	assert.Error(t, err)

	_, err = NewTable([]*Handler{{Marker: annotations.LockMarker}})
	assert.Error(t, err)

	_, err = NewTable([]*Handler{tr.handler(annotations.ForeignMarker)})
	assert.Error(t, err)
}

func TestOrder(t *testing.T) {
	tr := &trace{}
	table, err := NewTable([]*Handler{
		tr.handler(annotations.StatelessMarker),
		tr.handler(annotations.LockMarker, annotations.StatelessMarker, annotations.SingletonMarker),
		tr.handler(annotations.AccessTimeoutMarker, annotations.LockMarker),
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		markers  []annotations.MarkerType
		expected []annotations.MarkerType
	}{
		{
			name:     "dependency moves ahead",
			markers:  []annotations.MarkerType{annotations.LockMarker, annotations.StatelessMarker},
			expected: []annotations.MarkerType{annotations.StatelessMarker, annotations.LockMarker},
		},
		{
			name:     "transitive dependencies",
			markers:  []annotations.MarkerType{annotations.AccessTimeoutMarker, annotations.LockMarker, annotations.StatelessMarker},
			expected: []annotations.MarkerType{annotations.StatelessMarker, annotations.LockMarker, annotations.AccessTimeoutMarker},
		},
		{
			name:     "absent dependency is skipped",
			markers:  []annotations.MarkerType{annotations.AccessTimeoutMarker, annotations.LockMarker},
			expected: []annotations.MarkerType{annotations.LockMarker, annotations.AccessTimeoutMarker},
		},
		{
			name:     "unhandled markers keep discovery order",
			markers:  []annotations.MarkerType{annotations.RemoteMarker, annotations.LocalMarker},
			expected: []annotations.MarkerType{annotations.RemoteMarker, annotations.LocalMarker},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var markers []*annotations.Marker
			for _, mt := range tt.markers {
				markers = append(markers, marker(mt))
			}
			var got []annotations.MarkerType
			for _, m := range Order(markers, table) {
				got = append(got, m.Type)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrderCycle(t *testing.T) {
	tr := &trace{}
	table, err := NewTable([]*Handler{
		tr.handler(annotations.LockMarker, annotations.AccessTimeoutMarker),
		tr.handler(annotations.AccessTimeoutMarker, annotations.LockMarker),
	})
	require.NoError(t, err)

	ordered := Order([]*annotations.Marker{marker(annotations.LockMarker), marker(annotations.AccessTimeoutMarker)}, table)
	require.Len(t, ordered, 2)
	assert.Equal(t, annotations.AccessTimeoutMarker, ordered[0].Type)
	assert.Equal(t, annotations.LockMarker, ordered[1].Type)
}

func TestPostQueueDrain(t *testing.T) {
	var ran []string
	q := NewPostQueue()

	var second *Handler
	first := &Handler{
		Marker: annotations.LockMarker,
		PostProcess: func(ctx *Context, occ *Occurrence) Outcome {
			ran = append(ran, "first")
			q.Enqueue(occ, second)
			return Done()
		},
	}
	second = &Handler{
		Marker: annotations.AccessTimeoutMarker,
		PostProcess: func(ctx *Context, occ *Occurrence) Outcome {
			ran = append(ran, "second")
			return Done()
		},
	}
	noPost := &Handler{Marker: annotations.AsynchronousMarker}

	occ := &Occurrence{Marker: marker(annotations.LockMarker), Element: classindex.TypeOf("pkg.A")}
	q.Enqueue(occ, first)
	q.Enqueue(occ, noPost)
	assert.Equal(t, 2, q.Len())

	visits := 0
	q.Drain(nil, func(*Occurrence, Outcome) bool {
		visits++
		return true
	})
	assert.Equal(t, []string{"first", "second"}, ran)
	assert.Equal(t, 2, visits)
	assert.Equal(t, 0, q.Len())
}

func TestPostQueueDrainStops(t *testing.T) {
	q := NewPostQueue()
	calls := 0
	h := &Handler{PostProcess: func(*Context, *Occurrence) Outcome {
		calls++
		return Done()
	}}
	for i := 0; i < 3; i++ {
		q.Enqueue(&Occurrence{}, h)
	}

	q.Drain(nil, func(*Occurrence, Outcome) bool { return false })
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, q.Len())
}

func TestProcessScanOrder(t *testing.T) {
	tr := &trace{}
	inherited := tr.handler(annotations.StatelessMarker)
	inherited.SupportsTypeInheritance = true

	p, err := New([]*Handler{
		inherited,
		tr.handler(annotations.LockMarker, annotations.StatelessMarker),
		tr.handler(annotations.AsynchronousMarker),
		tr.handler(annotations.PostConstructMarker),
		tr.handler(annotations.InterceptorsMarker),
	})
	require.NoError(t, err)

	idx := mustIndex(t,
		&classindex.Class{
			Name:    "pkg.Base",
			Markers: []*annotations.Marker{marker(annotations.StatelessMarker), marker(annotations.AsynchronousMarker)},
			Methods: []*classindex.Method{
				{Name: "shared", Public: true},
				{Name: "init", Markers: []*annotations.Marker{marker(annotations.PostConstructMarker)}},
			},
		},
		&classindex.Class{
			Name:    "pkg.Impl",
			Super:   "pkg.Base",
			Markers: []*annotations.Marker{marker(annotations.LockMarker), marker(annotations.StatelessMarker)},
			Constructors: []*classindex.Method{
				{Name: "<init>", Markers: []*annotations.Marker{marker(annotations.InterceptorsMarker)}},
			},
			Methods: []*classindex.Method{
				{Name: "shared", Public: true, Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}},
			},
		},
		&classindex.Class{Name: "pkg.Api", Interface: true, Markers: []*annotations.Marker{marker(annotations.StatelessMarker)}},
	)

	res := p.Process(models.NewBundle("app"), idx)

	assert.Equal(t, []string{
		// pkg.Base scanned on its own
		"Stateless@type pkg.Base",
		"Asynchronous@type pkg.Base",
		"PostConstruct@method pkg.Base.init()",
		// pkg.Impl: own type markers in dependency order, then inherited
		// type markers of handlers that accept them
		"Stateless@type pkg.Impl",
		"Lock@type pkg.Impl",
		"Stateless@type pkg.Base",
		"Interceptors@constructor pkg.Impl.<init>()",
		"Asynchronous@method pkg.Impl.shared()",
		"PostConstruct@method pkg.Base.init()",
	}, tr.seen)
	assert.Equal(t, len(tr.seen), res.Processed)
	assert.NotEmpty(t, res.PassID)
	assert.Equal(t, "app", res.Bundle)
	assert.NoError(t, res.Err())
}

func TestProcessInvalidTarget(t *testing.T) {
	tr := &trace{}
	p, err := New([]*Handler{tr.handler(annotations.TimeoutMarker)})
	require.NoError(t, err)

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Markers: []*annotations.Marker{marker(annotations.TimeoutMarker)},
	})

	res := p.Process(models.NewBundle("app"), idx)
	assert.Empty(t, tr.seen)
	assert.Equal(t, 1, res.Skipped)
	require.True(t, res.Findings.HasCode(errors.InvalidMarkerCode))
	f := res.Findings.GetByCode(errors.InvalidMarkerCode)[0]
	assert.False(t, f.IsFatal())
	assert.Equal(t, "type pkg.Impl", f.Element)
	assert.Equal(t, "Timeout", f.Marker)
}

func TestProcessNilRegistryKeepsTargetChecks(t *testing.T) {
	tr := &trace{}
	p, err := New([]*Handler{tr.handler(annotations.PostConstructMarker)}, WithRegistry(nil))
	require.NoError(t, err)

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Markers: []*annotations.Marker{marker(annotations.PostConstructMarker)},
	})

	res := p.Process(models.NewBundle("app"), idx)
	assert.Empty(t, tr.seen)
	assert.True(t, res.Findings.HasCode(errors.InvalidMarkerCode))
}

func TestProcessPushedFrameReachesMembers(t *testing.T) {
	var frames []FrameKind
	component := &Handler{
		Marker: annotations.StatelessMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			d := models.NewComponent("Impl", occ.Target, models.SessionKind)
			require.NoError(t, ctx.Bundle.AddComponent(d))
			return DoneAndPush(NewComponentFrame(occ.Target, ctx.Bundle.ComponentsByClass(occ.Target)))
		},
	}
	attribute := &Handler{
		Marker: annotations.AsynchronousMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			frames = append(frames, occ.Frame.Kind)
			assert.Len(t, occ.Components(), 1)
			return Done()
		},
	}
	p, err := New([]*Handler{component, attribute})
	require.NoError(t, err)

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Markers: []*annotations.Marker{marker(annotations.StatelessMarker)},
		Methods: []*classindex.Method{{Name: "run", Public: true, Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}}},
	})

	p.Process(models.NewBundle("app"), idx)
	assert.Equal(t, []FrameKind{ComponentFrame}, frames)
}

func TestProcessExternalComponentFrame(t *testing.T) {
	var components []*models.ComponentDescriptor
	p, err := New([]*Handler{{
		Marker: annotations.AsynchronousMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			components = occ.Components()
			return Done()
		},
	}})
	require.NoError(t, err)

	bundle := models.NewBundle("app")
	require.NoError(t, bundle.AddComponent(models.NewComponent("Ext", "pkg.Impl", models.SessionKind)))

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Methods: []*classindex.Method{{Name: "run", Public: true, Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}}},
	})

	p.Process(bundle, idx)
	require.Len(t, components, 1)
	assert.Equal(t, "Ext", components[0].Name)
}

func TestProcessSkipsUnsupportedComponents(t *testing.T) {
	var frames int
	rec := newCountingRecorder()
	p, err := New([]*Handler{{
		Marker: annotations.AsynchronousMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			if occ.Frame != nil && occ.Frame.Kind == ComponentFrame {
				frames++
			}
			return NotApplicableOutcome()
		},
	}}, WithRecorder(rec))
	require.NoError(t, err)

	bundle := models.NewBundle("app")
	order := models.NewComponent("Order", "pkg.Impl", models.UnsupportedKind)
	order.KindName = "Entity"
	require.NoError(t, bundle.AddComponent(order))

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Methods: []*classindex.Method{{Name: "run", Public: true, Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}}},
	})

	res := p.Process(bundle, idx)
	assert.Zero(t, frames)
	found := res.Findings.GetByCode(errors.UnsupportedKindCode)
	require.Len(t, found, 1)
	assert.True(t, found[0].IsFatal())
	assert.Equal(t, "type pkg.Impl", found[0].Element)
	assert.Equal(t, 1, rec.findings["UnsupportedKind"])
}

func TestProcessPostQueue(t *testing.T) {
	var order []string
	h := &Handler{Marker: annotations.LockMarker}
	h.Process = func(ctx *Context, occ *Occurrence) Outcome {
		if occ.Element.Kind == classindex.TypeElement {
			ctx.Enqueue(occ, h)
			return Done()
		}
		order = append(order, "method")
		return Done()
	}
	h.PostProcess = func(ctx *Context, occ *Occurrence) Outcome {
		order = append(order, "class")
		return Done()
	}
	p, err := New([]*Handler{h})
	require.NoError(t, err)

	idx := mustIndex(t, &classindex.Class{
		Name:    "pkg.Impl",
		Markers: []*annotations.Marker{marker(annotations.LockMarker)},
		Methods: []*classindex.Method{{Name: "run", Public: true, Markers: []*annotations.Marker{marker(annotations.LockMarker)}}},
	})

	res := p.Process(models.NewBundle("app"), idx)
	assert.Equal(t, []string{"method", "class"}, order)
	assert.Equal(t, 3, res.Processed)
}

func TestProcessInterceptorScannedOnce(t *testing.T) {
	var callbacks []string
	interceptors := &Handler{
		Marker: annotations.InterceptorsMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			for _, class := range occ.Marker.GetStringSlice("value") {
				ctx.ScanInterceptor(ctx.Bundle.AddInterceptor(models.NewInterceptor(class)))
			}
			return Done()
		},
	}
	aroundInvoke := &Handler{
		Marker:    annotations.AroundInvokeMarker,
		Delegatee: true,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			if occ.Frame.Kind != InterceptorFrame {
				return NotApplicableOutcome()
			}
			callbacks = append(callbacks, occ.Element.String())
			return Done()
		},
	}
	lock := &Handler{
		Marker: annotations.LockMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			assert.NotEqual(t, InterceptorFrame, occ.Frame.Kind, "non-delegatee handler ran in an interceptor context")
			return Done()
		},
	}
	p, err := New([]*Handler{interceptors, aroundInvoke, lock})
	require.NoError(t, err)

	using := func(name string) *classindex.Class {
		return &classindex.Class{
			Name: name,
			Markers: []*annotations.Marker{annotations.NewMarker(annotations.InterceptorsMarker,
				map[string]interface{}{"value": []string{"pkg.Audit"}})},
		}
	}
	idx := mustIndex(t,
		using("pkg.A"),
		using("pkg.B"),
		&classindex.Class{
			Name: "pkg.Audit",
			Methods: []*classindex.Method{{
				Name:    "around",
				Params:  []string{"InvocationContext"},
				Markers: []*annotations.Marker{marker(annotations.AroundInvokeMarker), marker(annotations.LockMarker)},
			}},
		},
	)

	bundle := models.NewBundle("app")
	res := p.Process(bundle, idx)

	// pkg.A and pkg.B share one interceptor scan
	assert.Equal(t, []string{"method pkg.Audit.around(InvocationContext)"}, callbacks)
	assert.Len(t, bundle.Interceptors(), 1)
	assert.NoError(t, res.Err())
}

func TestProcessMaxErrors(t *testing.T) {
	failing := &Handler{
		Marker: annotations.AsynchronousMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			return Fail(errors.New(errors.ClassMismatchCode, "A", "B", "C"))
		},
	}
	cfg := config.Default()
	cfg.MaxErrors = 2

	rec := newCountingRecorder()
	p, err := New([]*Handler{failing}, WithConfig(cfg), WithRecorder(rec))
	require.NoError(t, err)

	var methods []*classindex.Method
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		methods = append(methods, &classindex.Method{Name: name, Public: true,
			Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}})
	}
	idx := mustIndex(t, &classindex.Class{Name: "pkg.Impl", Methods: methods})

	res := p.Process(models.NewBundle("app"), idx)
	assert.True(t, res.Abandoned)
	assert.Equal(t, 3, res.Failed)
	assert.True(t, res.Findings.HasCode(errors.TooManyErrorsCode))
	assert.Error(t, res.Err())
	assert.True(t, rec.abandoned)
	assert.Equal(t, 1, rec.passes)
	assert.Equal(t, 3, rec.occurrences["failed"])
	assert.Equal(t, 1, rec.findings["TooManyErrors"])
}

func TestProcessAbortOnFatal(t *testing.T) {
	calls := 0
	failing := &Handler{
		Marker: annotations.AsynchronousMarker,
		Process: func(ctx *Context, occ *Occurrence) Outcome {
			calls++
			return Fail(errors.New(errors.ClassMismatchCode, "A", "B", "C"))
		},
	}

	methods := []*classindex.Method{
		{Name: "a", Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}},
		{Name: "b", Markers: []*annotations.Marker{marker(annotations.AsynchronousMarker)}},
	}

	t.Run("continues by default", func(t *testing.T) {
		calls = 0
		p, err := New([]*Handler{failing})
		require.NoError(t, err)
		res := p.Process(models.NewBundle("app"), mustIndex(t, &classindex.Class{Name: "pkg.Impl", Methods: methods}))
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, res.Failed)
		assert.False(t, res.Abandoned)
	})

	t.Run("stops at first fatal", func(t *testing.T) {
		calls = 0
		cfg := config.Default()
		cfg.AbortOnFatal = true
		p, err := New([]*Handler{failing}, WithConfig(cfg))
		require.NoError(t, err)
		res := p.Process(models.NewBundle("app"), mustIndex(t, &classindex.Class{Name: "pkg.Impl", Methods: methods}))
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, res.Failed)
	})
}

func TestFailDegradesWarnings(t *testing.T) {
	outcome := Fail(errors.New(errors.InapplicableMarkerCode, "Lock", "singleton", "stateless", "Foo"))
	assert.Equal(t, Skipped, outcome.Type)
	assert.False(t, outcome.Finding.IsFatal())

	outcome = Skip(errors.New(errors.InterfaceConflictCode, "pkg.Z"))
	assert.Equal(t, Skipped, outcome.Type)
	assert.Equal(t, errors.Warning, outcome.Finding.Severity)
}
