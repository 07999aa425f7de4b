package processor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/models"
)

// Processor runs resolution passes over deployment units. One pass is
// single-threaded; a Processor holds no per-pass state and may be reused.
type Processor struct {
	table    Table
	config   config.Options
	logger   Logger
	recorder Recorder
	registry annotations.SchemaRegistry
}

// Option configures a Processor
type Option func(*Processor)

// WithConfig sets the engine options
func WithConfig(cfg config.Options) Option {
	return func(p *Processor) { p.config = cfg }
}

// WithLogger sets the logger
func WithLogger(l Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithRegistry sets the schema registry used for target checks. A nil
// registry keeps the default one.
func WithRegistry(reg annotations.SchemaRegistry) Option {
	return func(p *Processor) {
		if reg != nil {
			p.registry = reg
		}
	}
}

// New creates a processor over a set of handlers
func New(handlers []*Handler, opts ...Option) (*Processor, error) {
	table, err := NewTable(handlers)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		table:    table,
		config:   config.Default(),
		logger:   nopLogger{},
		recorder: nopRecorder{},
		registry: annotations.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Table returns the dispatch table
func (p *Processor) Table() Table {
	return p.table
}

// Result summarises one pass
type Result struct {
	PassID        string
	Bundle        string
	Findings      *errors.Findings
	Processed     int
	Failed        int
	Skipped       int
	NotApplicable int
	Abandoned     bool
	Duration      time.Duration
}

// Err returns the findings when any of them is fatal. Whether a fatal
// finding fails the deployment unit is the caller's decision.
func (r *Result) Err() error {
	if r.Findings.HasFatal() {
		return r.Findings
	}
	return nil
}

// Process runs one resolution pass over every class of the index,
// mutating the bundle in place
func (p *Processor) Process(bundle *models.Bundle, idx *classindex.Index) *Result {
	start := time.Now()
	ps := &pass{
		p:            p,
		bundle:       bundle,
		idx:          idx,
		processed:    make(map[string]bool),
		interceptors: make(map[string]bool),
		result: &Result{
			PassID:   uuid.NewString(),
			Bundle:   bundle.Name,
			Findings: errors.NewFindings(),
		},
	}

	p.logger.Verbose("pass %s: resolving bundle %s (%d classes)", ps.result.PassID, bundle.Name, idx.Len())

	for _, d := range bundle.Components() {
		if d.Supported() || ps.stopped {
			continue
		}
		f := errors.New(errors.UnsupportedKindCode, d.KindName, d.Name).WithComponent(d.Name)
		if d.Class != "" {
			f.WithElement(classindex.TypeOf(d.Class))
		}
		ps.report(f)
	}

	for _, c := range idx.Classes() {
		if ps.stopped {
			break
		}
		if c.Interface {
			continue
		}
		ps.scanClass(c)
	}

	ps.result.Duration = time.Since(start)
	p.recorder.ObservePass(bundle.Name, ps.result.Duration.Seconds(), len(bundle.Components()), ps.result.Abandoned)
	p.logger.Verbose("pass %s: %d processed, %d failed, %d skipped in %s",
		ps.result.PassID, ps.result.Processed, ps.result.Failed, ps.result.Skipped, ps.result.Duration)
	return ps.result
}

// pass is the state of one Process call
type pass struct {
	p            *Processor
	bundle       *models.Bundle
	idx          *classindex.Index
	result       *Result
	processed    map[string]bool
	interceptors map[string]bool
	stopped      bool
}

func (ps *pass) newContext(scope FrameKind, class string) *Context {
	return &Context{
		Bundle: ps.bundle,
		Index:  ps.idx,
		Config: ps.p.config,
		Log:    ps.p.logger,
		frames: []*Frame{{Kind: BundleFrame, Class: class}},
		queue:  NewPostQueue(),
		scope:  scope,
		pass:   ps,
	}
}

// scanClass processes one class: its type-level markers, the type-level
// markers of its superclasses, its constructors and its most-derived
// methods, then drains the post-processing queue
func (ps *pass) scanClass(c *classindex.Class) {
	ctx := ps.newContext(BundleFrame, c.Name)

	// Externally declared components still get inline overlays when the
	// class carries no component-defining marker of its own
	if !hasComponentDefiningMarker(c) {
		if components := supported(ps.bundle.ComponentsByClass(c.Name)); len(components) > 0 {
			ctx.Push(NewComponentFrame(c.Name, components))
		}
	}

	ps.scanMembers(ctx, c)
}

func (ps *pass) scanMembers(ctx *Context, c *classindex.Class) {
	ps.dispatchAll(ctx, classindex.TypeOf(c.Name), c.Markers, c.Name, false)
	for _, super := range ps.idx.Superclasses(c.Name) {
		ps.dispatchAll(ctx, classindex.TypeOf(super.Name), super.Markers, c.Name, true)
	}
	for _, ctor := range c.Constructors {
		ps.dispatchAll(ctx, classindex.ConstructorOf(ctor), ctor.Markers, c.Name, false)
	}
	for _, m := range ps.idx.Members(c.Name) {
		ps.dispatchAll(ctx, classindex.MethodOf(m), m.Markers, c.Name, false)
	}

	if ps.stopped {
		return
	}
	ctx.queue.Drain(ctx, func(occ *Occurrence, outcome Outcome) bool {
		ps.record(occ, outcome)
		return !ps.stopped
	})
}

// scanInterceptor scans an interceptor class once per pass
func (ps *pass) scanInterceptor(i *models.InterceptorDescriptor) {
	if ps.interceptors[i.Class] || ps.stopped {
		return
	}
	ps.interceptors[i.Class] = true

	c, ok := ps.idx.Class(i.Class)
	if !ok {
		ps.p.logger.Debug("interceptor class %s is not part of the deployment unit", i.Class)
		return
	}

	ctx := ps.newContext(InterceptorFrame, c.Name)
	ctx.Push(NewInterceptorFrame(i))
	ps.scanMembers(ctx, c)
}

func (ps *pass) dispatchAll(ctx *Context, el classindex.Element, markers []*annotations.Marker, target string, inherited bool) {
	for _, m := range Order(markers, ps.p.table) {
		if ps.stopped {
			return
		}
		ps.dispatch(ctx, &Occurrence{
			Marker:    m,
			Element:   el,
			Target:    target,
			Inherited: inherited,
			Frame:     ctx.Top(),
		})
	}
}

func (ps *pass) dispatch(ctx *Context, occ *Occurrence) {
	logger := ps.p.logger
	h, ok := ps.p.table[occ.Marker.Type]
	if !ok {
		logger.Debug("no handler defined for %s", occ.Marker)
		return
	}
	if occ.Inherited && !h.SupportsTypeInheritance {
		return
	}
	if occ.Frame != nil && occ.Frame.Kind == InterceptorFrame && !h.Delegatee {
		return
	}

	key := fmt.Sprintf("%s|%s|%s|%s", ctx.scope, occ.Target, occ.Element, occ.Marker.Type)
	if ps.processed[key] {
		return
	}
	ps.processed[key] = true

	if err := ps.checkTarget(occ); err != nil {
		ps.record(occ, Skip(errors.Wrap(errors.InvalidMarkerCode, err, occ.Marker, err)))
		return
	}

	logger.Debug("processing %s", occ)
	outcome := h.Process(ctx, occ)
	ps.record(occ, outcome)
	if outcome.Push != nil && outcome.Type == Processed {
		ctx.Push(outcome.Push)
	}
}

func (ps *pass) checkTarget(occ *Occurrence) error {
	schema, err := ps.p.registry.GetSchema(occ.Marker.Type)
	if err != nil {
		return nil
	}
	if schema.Targets&occ.Element.Kind.Target() == 0 {
		return fmt.Errorf("@%s is not allowed on a %s", occ.Marker.Type, occ.Element.Kind)
	}
	return nil
}

// record books an outcome, logs its finding and applies the abort policy
func (ps *pass) record(occ *Occurrence, outcome Outcome) {
	r := ps.result
	ps.p.recorder.ObserveOccurrence(occ.Marker.Type.String(), outcome.Type.String())

	switch outcome.Type {
	case Processed:
		r.Processed++
	case Failed:
		r.Failed++
	case Skipped:
		r.Skipped++
	case NotApplicable:
		r.NotApplicable++
	}

	if f := outcome.Finding; f != nil {
		if f.Element == "" {
			f.WithElement(occ.Element)
		}
		if f.Marker == "" {
			f.WithMarker(occ.Marker.Type)
		}
		ps.report(f)
	}

	if outcome.Type == Failed && ps.p.config.MaxErrors > 0 && r.Failed > ps.p.config.MaxErrors {
		ps.report(errors.New(errors.TooManyErrorsCode, r.Failed, ps.bundle.Name))
		r.Abandoned = true
		ps.stopped = true
	}
}

// report books a finding, logs it and applies the abort policy
func (ps *pass) report(f *errors.Finding) {
	ps.result.Findings.Add(f)
	ps.p.recorder.ObserveFinding(f.Code.String(), f.Severity.String())

	msg := f.Message()
	if f.Marker != "" {
		msg += "\n  symbol: " + f.Marker
	}
	if f.Element != "" {
		msg += "\n  location: " + f.Element
	}
	if f.IsFatal() {
		ps.p.logger.Error("%s", msg)
	} else {
		ps.p.logger.Warn("%s", msg)
	}

	if f.IsFatal() && ps.p.config.AbortOnFatal {
		ps.stopped = true
	}
}

// supported drops descriptors of kinds no handler works on
func supported(components []*models.ComponentDescriptor) []*models.ComponentDescriptor {
	var result []*models.ComponentDescriptor
	for _, d := range components {
		if d.Supported() {
			result = append(result, d)
		}
	}
	return result
}

func hasComponentDefiningMarker(c *classindex.Class) bool {
	for _, m := range c.Markers {
		if m.Type.IsComponentDefining() {
			return true
		}
	}
	return false
}
