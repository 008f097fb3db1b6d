// Package interaction turns pointer event streams into panel geometry
// updates. The whole thing is a pure reducer over a small state machine so
// it can be tested without a pointer device: the transport feeds events in
// the order the client produced them and applies the returned effect.
package interaction

import "github.com/dkraev/parley/internal/geometry"

type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
)

// Region classifies what the pointer went down on.
type Region int

const (
	// RegionHeader is the panel's title bar; dragging starts here.
	RegionHeader Region = iota
	// RegionControl is a button or input inside the header. Pointer-downs
	// on controls never start a gesture, so clicks reach the control.
	RegionControl
	// RegionHandle is one of the 8 resize hit-regions at the boundary.
	RegionHandle
	// RegionBody is the message area; inert for gestures.
	RegionBody
	// RegionBackdrop is the page behind the panel.
	RegionBackdrop
)

var regionNames = map[string]Region{
	"header":   RegionHeader,
	"control":  RegionControl,
	"handle":   RegionHandle,
	"body":     RegionBody,
	"backdrop": RegionBackdrop,
}

func ParseRegion(s string) (Region, bool) {
	r, ok := regionNames[s]
	return r, ok
}

// State is the interaction session: one pointer-down-to-pointer-up gesture
// at most. At most one of dragging/resizing is active at any time.
type State struct {
	Mode   Mode
	Edge   geometry.Edge
	Anchor geometry.Point
	Start  geometry.Rect

	// suppressClose swallows exactly one backdrop click after a gesture
	// ends, so releasing a resize over the backdrop does not close the
	// panel. Cleared by the next event, whatever it is.
	suppressClose bool
}

// Captured reports whether pointer routing should be restricted to the
// panel (an active gesture owns the pointer stream).
func (s State) Captured() bool { return s.Mode != ModeIdle }

type Event interface{ isEvent() }

type PointerDown struct {
	Region Region
	Edge   geometry.Edge
	At     geometry.Point
}

type PointerMove struct {
	At geometry.Point
}

type PointerUp struct{}

// BackdropClick is the client reporting a click on the page behind the
// panel, which normally closes it.
type BackdropClick struct{}

func (PointerDown) isEvent()   {}
func (PointerMove) isEvent()   {}
func (PointerUp) isEvent()     {}
func (BackdropClick) isEvent() {}

// Effect is what the caller must do after a transition.
type Effect struct {
	// Apply is the new geometry to render, when non-nil.
	Apply *geometry.Rect
	// Close requests closing the panel (accepted backdrop click).
	Close bool
}

// Reducer owns nothing but the current geometry source and limits; the
// caller owns the State value.
type Reducer struct {
	Min geometry.Size
}

// Reduce advances the gesture machine by one event. geo is the panel's
// current geometry and vp the live viewport, both re-read by the caller per
// event.
func (r Reducer) Reduce(s State, ev Event, geo geometry.Rect, vp geometry.Viewport) (State, Effect) {
	// Whatever arrives next consumes the one-shot suppression latch.
	suppressed := s.suppressClose
	s.suppressClose = false

	switch e := ev.(type) {
	case PointerDown:
		if s.Mode != ModeIdle {
			// A second pointer-down mid-gesture is ignored until the
			// active gesture completes.
			return s, Effect{}
		}
		switch e.Region {
		case RegionHandle:
			if e.Edge == geometry.EdgeNone {
				return s, Effect{}
			}
			return State{Mode: ModeResizing, Edge: e.Edge, Anchor: e.At, Start: geo}, Effect{}
		case RegionHeader:
			return State{Mode: ModeDragging, Anchor: e.At, Start: geo}, Effect{}
		default:
			return s, Effect{}
		}

	case PointerMove:
		delta := geometry.Point{X: e.At.X - s.Anchor.X, Y: e.At.Y - s.Anchor.Y}
		switch s.Mode {
		case ModeDragging:
			next := geometry.DragTo(s.Start, delta, vp)
			return s, Effect{Apply: &next}
		case ModeResizing:
			next := geometry.ResizeFrom(s.Edge, s.Start, delta, vp, r.Min)
			return s, Effect{Apply: &next}
		}
		return s, Effect{}

	case PointerUp:
		if s.Mode == ModeIdle {
			return s, Effect{}
		}
		return State{suppressClose: true}, Effect{}

	case BackdropClick:
		if s.Mode != ModeIdle || suppressed {
			return s, Effect{}
		}
		return s, Effect{Close: true}
	}
	return s, Effect{}
}
