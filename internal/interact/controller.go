// Package interact turns pointer and touch gestures into annotation moves.
package interact

import (
	"github.com/example/memecanvas/internal/layers"
	"github.com/example/memecanvas/internal/render"
)

// Measurer reports the advance width of text in a font.
type Measurer interface {
	MeasureText(text string, font render.Font) float64
}

// Kind is the gesture state.
type Kind int

const (
	Idle Kind = iota
	Dragging
)

func (k Kind) String() string {
	if k == Dragging {
		return "dragging"
	}
	return "idle"
}

// State is the controller's gesture state. LayerID and Offset are only set
// while Dragging.
type State struct {
	Kind    Kind
	LayerID string
	Offset  Point
}

// Box returns the approximate hit box of a: measured width by font size,
// centred on the anchor.
func Box(a layers.Annotation, m Measurer) (minX, minY, maxX, maxY float64) {
	w := m.MeasureText(a.Content, render.Font{Family: a.FontFamily, Size: a.FontSize})
	h := a.FontSize
	return a.X - w/2, a.Y - h/2, a.X + w/2, a.Y + h/2
}

// HitTest returns the topmost annotation whose box contains p.
func HitTest(list []layers.Annotation, p Point, m Measurer) (layers.Annotation, bool) {
	for i := len(list) - 1; i >= 0; i-- {
		minX, minY, maxX, maxY := Box(list[i], m)
		if p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY {
			return list[i], true
		}
	}
	return layers.Annotation{}, false
}

// Controller owns the drag state machine for one document.
type Controller struct {
	store    *layers.Store
	measure  Measurer
	state    State
	selected string
}

// NewController creates an idle controller over store.
func NewController(store *layers.Store, m Measurer) *Controller {
	return &Controller{store: store, measure: m}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Selected returns the id of the most recently grabbed annotation, which
// keyboard and property edits target.
func (c *Controller) Selected() string {
	if c.selected != "" {
		if _, ok := c.store.Get(c.selected); !ok {
			c.selected = ""
		}
	}
	return c.selected
}

// Select marks id as the edit target without starting a drag.
func (c *Controller) Select(id string) { c.selected = id }

// Start begins a gesture at canvas point p. A gesture already in progress is
// ended first. It reports whether an annotation was grabbed.
func (c *Controller) Start(p Point) bool {
	if c.state.Kind == Dragging {
		c.End()
	}
	hit, ok := HitTest(c.store.List(), p, c.measure)
	if !ok {
		return false
	}
	c.state = State{
		Kind:    Dragging,
		LayerID: hit.ID,
		Offset:  p.Sub(Point{hit.X, hit.Y}),
	}
	c.selected = hit.ID
	return true
}

// Move drags the grabbed annotation so the grabbed point follows p. It
// reports whether anything moved.
func (c *Controller) Move(p Point) bool {
	if c.state.Kind != Dragging {
		return false
	}
	pos := p.Sub(c.state.Offset)
	if !c.store.Update(c.state.LayerID, layers.WithPosition(pos.X, pos.Y)) {
		// The layer was removed mid-gesture.
		c.state = State{}
		return false
	}
	return true
}

// End finishes the gesture.
func (c *Controller) End() { c.state = State{} }

// Cancel abandons the gesture. Positions already applied are kept.
func (c *Controller) Cancel() { c.state = State{} }

// Phase identifies the step of a gesture an Event belongs to.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
	PhaseCancel
)

// Event is a pointer or touch input in client coordinates. Touch input lists
// its active touches; the first one is the primary point.
type Event struct {
	Phase   Phase
	ClientX float64
	ClientY float64
	Touches []Point
}

// Primary returns the client point that drives the gesture.
func (e Event) Primary() (Point, bool) {
	if e.Touches != nil {
		if len(e.Touches) == 0 {
			return Point{}, false
		}
		return e.Touches[0], true
	}
	return Point{e.ClientX, e.ClientY}, true
}

// Handle routes ev through the state machine using vp to reach canvas space.
// It reports whether the document changed and needs repainting.
func (c *Controller) Handle(ev Event, vp Viewport) bool {
	switch ev.Phase {
	case PhaseStart:
		p, ok := ev.Primary()
		if !ok {
			return false
		}
		c.Start(vp.ToCanvas(p.X, p.Y))
		return false
	case PhaseMove:
		p, ok := ev.Primary()
		if !ok {
			return false
		}
		return c.Move(vp.ToCanvas(p.X, p.Y))
	case PhaseEnd:
		c.End()
	case PhaseCancel:
		c.Cancel()
	}
	return false
}
