package canvas

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in the backend at submission time.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black.
var ColorBlack = Color{0, 0, 0, 1}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float32
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point p lies inside the rectangle.
// Points on the edge are considered inside; an empty rectangle contains
// nothing.
func (r Rect) Contains(p Vec2) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersect returns the overlap of r and o. The result is empty (zero size)
// when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 < x0 || y1 < y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Insets holds per-edge distances, used for view margins.
type Insets struct {
	Left, Top, Right, Bottom float32
}

// Alignment is a bitmask combining one horizontal and one vertical placement.
type Alignment uint8

const (
	AlignLeft    Alignment = 1 << iota // pin to the parent's left edge
	AlignHCenter                       // center horizontally
	AlignRight                         // pin to the parent's right edge
	AlignTop                           // pin to the parent's top edge
	AlignVCenter                       // center vertically
	AlignBottom                        // pin to the parent's bottom edge

	AlignCenter = AlignHCenter | AlignVCenter
)

// FillParent is a size sentinel: the view stretches to its parent's rect
// minus its margins along that axis.
const FillParent float32 = -1

// TouchKind identifies the touch notification delivered to a view.
type TouchKind uint8

const (
	TouchDownInside TouchKind = iota // pointer pressed inside the view
	TouchUpInside                    // pointer released inside the view it pressed
	TouchUpOutside                   // pointer released outside the view it pressed
)

func (k TouchKind) String() string {
	switch k {
	case TouchDownInside:
		return "down-inside"
	case TouchUpInside:
		return "up-inside"
	case TouchUpOutside:
		return "up-outside"
	}
	return "unknown"
}

// TouchPhase identifies the kind of raw pointer event fed to the dispatcher.
type TouchPhase uint8

const (
	TouchDown   TouchPhase = iota // pointer pressed
	TouchMove                     // pointer moved while pressed
	TouchUp                       // pointer released
	TouchCancel                   // platform cancelled the pointer; treated as a release
)

// TouchEvent is a single raw pointer event in screen coordinates.
type TouchEvent struct {
	Phase     TouchPhase
	PointerID int
	Pos       Vec2
}

// IndexType selects the element width of the published index buffer.
type IndexType uint8

const (
	IndexUint16 IndexType = iota
	IndexUint32
)
