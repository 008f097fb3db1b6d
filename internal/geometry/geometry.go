// Package geometry computes panel position and size under drag and
// 8-directional resize. All functions are pure: they take the geometry
// captured at gesture start plus a pointer delta and return a new value.
// Inputs are assumed to be well-formed numbers; nothing here defends
// against NaN.
package geometry

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is the panel's geometry: top-left corner plus size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Edge identifies one of the 8 resize handles.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
	EdgeTopLeft
	EdgeTopRight
	EdgeBottomLeft
	EdgeBottomRight
)

var edgeNames = map[string]Edge{
	"left":         EdgeLeft,
	"right":        EdgeRight,
	"top":          EdgeTop,
	"bottom":       EdgeBottom,
	"top-left":     EdgeTopLeft,
	"top-right":    EdgeTopRight,
	"bottom-left":  EdgeBottomLeft,
	"bottom-right": EdgeBottomRight,
}

// ParseEdge maps the wire name of a resize handle to its Edge.
func ParseEdge(s string) (Edge, bool) {
	e, ok := edgeNames[s]
	return e, ok
}

func (e Edge) horizontal() bool {
	switch e {
	case EdgeLeft, EdgeRight, EdgeTopLeft, EdgeTopRight, EdgeBottomLeft, EdgeBottomRight:
		return true
	}
	return false
}

func (e Edge) vertical() bool {
	switch e {
	case EdgeTop, EdgeBottom, EdgeTopLeft, EdgeTopRight, EdgeBottomLeft, EdgeBottomRight:
		return true
	}
	return false
}

func (e Edge) leadingX() bool {
	return e == EdgeLeft || e == EdgeTopLeft || e == EdgeBottomLeft
}

func (e Edge) leadingY() bool {
	return e == EdgeTop || e == EdgeTopLeft || e == EdgeTopRight
}

// clamp bounds v to [lo, hi]. When the range is inverted (the viewport is
// smaller than the panel) the lower bound wins, so positions pin at the
// origin instead of going negative.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// DragTo translates the gesture-start geometry by the pointer delta and
// clamps so the panel stays fully inside the viewport. Size is unchanged.
func DragTo(start Rect, delta Point, vp Viewport) Rect {
	out := start
	out.X = clamp(start.X+delta.X, 0, vp.Width-start.Width)
	out.Y = clamp(start.Y+delta.Y, 0, vp.Height-start.Height)
	return out
}

// ResizeFrom resizes the gesture-start geometry from the given edge.
// Horizontal and vertical axes are clamped independently, so corner handles
// are just the combination of two edge handles. Resizing from a leading edge
// (left/top) keeps the opposite edge fixed by moving the position by exactly
// the size change.
func ResizeFrom(edge Edge, start Rect, delta Point, vp Viewport, min Size) Rect {
	out := start
	if edge.horizontal() {
		out.X, out.Width = resizeAxis(start.X, start.Width, delta.X, vp.Width, min.Width, edge.leadingX())
	}
	if edge.vertical() {
		out.Y, out.Height = resizeAxis(start.Y, start.Height, delta.Y, vp.Height, min.Height, edge.leadingY())
	}
	return out
}

// resizeAxis handles one axis. leading means the handle is on the low-coord
// side (left or top): the pointer delta shrinks the size as it grows, and
// the trailing edge stays put.
func resizeAxis(pos, size, delta, bound, minSize float64, leading bool) (float64, float64) {
	if leading {
		trailing := pos + size
		requested := size - delta
		// Available space runs from the viewport origin to the fixed
		// trailing edge.
		newSize := clamp(requested, minSize, trailing)
		newPos := trailing - newSize
		// Pinning at minSize may push the panel past the origin when the
		// viewport is smaller than the minimum; keep it on screen.
		if newPos < 0 {
			newPos = 0
		}
		return newPos, newSize
	}
	requested := size + delta
	return pos, clamp(requested, minSize, bound-pos)
}

// CenterInViewport produces the initial geometry for a freshly opened panel.
func CenterInViewport(size Size, vp Viewport) Rect {
	x := (vp.Width - size.Width) / 2
	y := (vp.Height - size.Height) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Rect{X: x, Y: y, Width: size.Width, Height: size.Height}
}
