package processor

import (
	"fmt"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/classindex"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/models"
)

// FrameKind is the kind of a processing context
type FrameKind int

const (
	// BundleFrame is the base context of every class scan
	BundleFrame FrameKind = iota
	// ComponentFrame binds the scan to the descriptors of one class
	ComponentFrame
	// InterceptorFrame binds the scan to an interceptor descriptor
	InterceptorFrame
)

// String returns the string representation of the frame kind
func (k FrameKind) String() string {
	switch k {
	case BundleFrame:
		return "bundle"
	case ComponentFrame:
		return "component"
	case InterceptorFrame:
		return "interceptor"
	default:
		return "unknown"
	}
}

// Frame is one entry of the context stack
type Frame struct {
	Kind        FrameKind
	Class       string
	Components  []*models.ComponentDescriptor
	Interceptor *models.InterceptorDescriptor
}

// NewComponentFrame creates a context over the sibling descriptors of a class
func NewComponentFrame(class string, components []*models.ComponentDescriptor) *Frame {
	return &Frame{Kind: ComponentFrame, Class: class, Components: components}
}

// NewInterceptorFrame creates a context over an interceptor descriptor
func NewInterceptorFrame(i *models.InterceptorDescriptor) *Frame {
	return &Frame{Kind: InterceptorFrame, Class: i.Class, Interceptor: i}
}

// Occurrence is one marker found on one element during a scan
type Occurrence struct {
	Marker  *annotations.Marker
	Element classindex.Element

	// Target is the class being scanned. For inherited type-level markers
	// it is the subclass while Element names the superclass.
	Target    string
	Inherited bool

	// Frame is the context that was active when the occurrence was dispatched
	Frame *Frame
}

// String returns a readable occurrence summary
func (o *Occurrence) String() string {
	if o.Inherited {
		return fmt.Sprintf("%s on %s (inherited by %s)", o.Marker, o.Element, o.Target)
	}
	return fmt.Sprintf("%s on %s", o.Marker, o.Element)
}

// Components returns the descriptors of the occurrence's context
func (o *Occurrence) Components() []*models.ComponentDescriptor {
	if o.Frame == nil || o.Frame.Kind != ComponentFrame {
		return nil
	}
	return o.Frame.Components
}

// Context is the state of one class scan: the context stack and the
// post-processing queue, plus the pass-wide collaborators handlers need
type Context struct {
	Bundle *models.Bundle
	Index  *classindex.Index
	Config config.Options
	Log    Logger

	frames []*Frame
	queue  *PostQueue
	scope  FrameKind // interceptor scans keep their own per-element record
	pass   *pass
}

// Top returns the active frame
func (c *Context) Top() *Frame {
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

// Depth returns the number of frames on the stack
func (c *Context) Depth() int {
	return len(c.frames)
}

// Push pushes a frame for the rest of the scan
func (c *Context) Push(f *Frame) {
	c.frames = append(c.frames, f)
}

// Pop removes the active frame
func (c *Context) Pop() *Frame {
	top := c.Top()
	if top != nil {
		c.frames = c.frames[:len(c.frames)-1]
	}
	return top
}

// Enqueue defers a class-level occurrence until the member scan is complete
func (c *Context) Enqueue(occ *Occurrence, h *Handler) {
	c.queue.Enqueue(occ, h)
}

// ScanInterceptor scans an interceptor class in its own interceptor
// context. Each class is scanned at most once per pass.
func (c *Context) ScanInterceptor(i *models.InterceptorDescriptor) {
	if c.pass != nil {
		c.pass.scanInterceptor(i)
	}
}
