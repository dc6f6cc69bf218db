package canvas

import (
	"github.com/chewxy/math32"
)

// View is anything that can be placed in a view tree. Concrete views embed
// Base and override the methods they need.
type View interface {
	// Node returns the embedded Base holding the tree and layout state.
	Node() *Base

	// Layout positions the view inside parent and lays out its subviews.
	Layout(parent Rect)

	// Paint appends the view's own meshes (not its subviews') to dst.
	Paint(dst []ViewMesh) []ViewMesh

	// HandleTouchEvent reports whether the view consumed the event.
	HandleTouchEvent(kind TouchKind, pos Vec2) bool
}

// FrameUpdater is implemented by views that need a hook once per Update.
type FrameUpdater interface {
	UpdateFrame(ctx *FrameContext)
}

// Focusable is implemented by views that keep keyboard focus. The dispatcher
// blurs the focused view when a touch sequence ends on a different view.
type Focusable interface {
	Focused() bool
	Blur()
}

// FrameContext is passed to FrameUpdater views during Update.
type FrameContext struct {
	// DeltaTime is the time in seconds since the previous Update.
	DeltaTime float32
	// Time is the accumulated renderer time in seconds.
	Time float32
	// Chars holds the characters typed since the previous Update.
	Chars []rune
}

var viewIDCounter uint32

func nextViewID() uint32 {
	viewIDCounter++
	return viewIDCounter
}

// Base carries the state shared by every view: tree links, layout inputs,
// the last computed bounds and the cached meshes.
type Base struct {
	// ID is unique per process and assigned at construction.
	ID uint32
	// Name is a human-readable label used by logs and test scripts.
	Name string
	// EntityID links the view to an external ECS entity.
	EntityID uint32
	// UserData is an arbitrary payload owned by the caller.
	UserData any

	self     View
	parent   View
	subviews []View
	renderer *Renderer // set on root views only

	size    Vec2
	margin  Insets
	align   Alignment
	offset  Vec2
	color   Color
	visible bool
	touch   bool

	bounds    Rect
	meshes    []ViewMesh
	meshDirty bool
}

// init must be called by every concrete view constructor with the view
// that embeds b.
func (b *Base) init(self View, name string) {
	b.ID = nextViewID()
	b.Name = name
	b.self = self
	b.size = Vec2{X: FillParent, Y: FillParent}
	b.align = AlignLeft | AlignTop
	b.color = ColorWhite
	b.visible = true
	b.touch = true
	b.meshDirty = true
}

// Init prepares b for a view type defined outside this package. Call it
// once from the constructor, passing the view that embeds b, so the tree and
// the dispatcher see the outer type and its overrides.
func (b *Base) Init(self View, name string) {
	if b.self != nil {
		panic("canvas: view initialized twice")
	}
	b.init(self, name)
}

// Node implements View.
func (b *Base) Node() *Base { return b }

// Self returns the concrete view that embeds b.
func (b *Base) Self() View { return b.self }

// Parent returns the parent view, or nil for a root or detached view.
func (b *Base) Parent() View { return b.parent }

// Subviews returns the subviews in paint order. Do not modify the slice.
func (b *Base) Subviews() []View { return b.subviews }

// NumSubviews returns the number of subviews.
func (b *Base) NumSubviews() int { return len(b.subviews) }

// AddSubview appends child as the topmost subview. A child that already has
// a parent, or is a root view of a renderer, is detached first.
func (b *Base) AddSubview(child View) {
	b.insertSubview(child, len(b.subviews))
}

// AddSubviewAt inserts child at index in paint order.
func (b *Base) AddSubviewAt(child View, index int) {
	if index < 0 || index > len(b.subviews) {
		panic("canvas: subview index out of range")
	}
	b.insertSubview(child, index)
}

func (b *Base) insertSubview(child View, index int) {
	if child == nil {
		panic("canvas: cannot add nil subview")
	}
	c := child.Node()
	if c.self == nil {
		panic("canvas: view was not constructed with a New function")
	}
	if isAncestor(child, b.self) {
		panic("canvas: adding subview would create a cycle")
	}
	if c.parent != nil {
		p := c.parent.Node()
		p.removeSubviewByPtr(child)
		p.markCanvasDirty()
		if index > len(b.subviews) {
			index = len(b.subviews)
		}
	} else if c.renderer != nil {
		c.renderer.detachRoot(child)
	}
	c.parent = b.self
	b.subviews = append(b.subviews, nil)
	copy(b.subviews[index+1:], b.subviews[index:])
	b.subviews[index] = child
	b.markCanvasDirty()
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckSubviewCount(b)
	}
}

// RemoveSubview detaches child. It panics if child is not a subview of b.
func (b *Base) RemoveSubview(child View) {
	if child == nil || child.Node().parent != b.self {
		panic("canvas: subview's parent is not this view")
	}
	b.removeSubviewByPtr(child)
	child.Node().parent = nil
	b.markCanvasDirty()
}

// RemoveFromParent detaches b from its parent or from its renderer.
func (b *Base) RemoveFromParent() {
	switch {
	case b.parent != nil:
		b.parent.Node().RemoveSubview(b.self)
	case b.renderer != nil:
		b.renderer.detachRoot(b.self)
	}
}

// RemoveSubviews detaches every subview.
func (b *Base) RemoveSubviews() {
	for _, c := range b.subviews {
		c.Node().parent = nil
	}
	clear(b.subviews)
	b.subviews = b.subviews[:0]
	b.markCanvasDirty()
}

func (b *Base) removeSubviewByPtr(child View) {
	for i, c := range b.subviews {
		if c == child {
			copy(b.subviews[i:], b.subviews[i+1:])
			b.subviews[len(b.subviews)-1] = nil
			b.subviews = b.subviews[:len(b.subviews)-1]
			return
		}
	}
}

func isAncestor(candidate, v View) bool {
	for p := v; p != nil; p = p.Node().parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of b, which is b itself for a root view.
func (b *Base) Root() View {
	v := b.self
	for v.Node().parent != nil {
		v = v.Node().parent
	}
	return v
}

// Canvas returns the renderer b is attached to, or nil.
func (b *Base) Canvas() *Renderer {
	return b.Root().Node().renderer
}

// Attached reports whether b is part of a renderer's view tree.
func (b *Base) Attached() bool { return b.Canvas() != nil }

// MarkDirty invalidates the cached meshes of b and requests a rebuild.
func (b *Base) MarkDirty() {
	b.meshDirty = true
	b.markCanvasDirty()
}

func (b *Base) markCanvasDirty() {
	if r := b.Canvas(); r != nil {
		r.dirty.mark(DirtyLayout)
	}
}

// Size returns the requested size. Either component may be FillParent.
func (b *Base) Size() Vec2 { return b.size }

// SetSize sets the requested size. Pass FillParent to span the parent
// minus margins along that axis.
func (b *Base) SetSize(w, h float32) {
	b.size = Vec2{X: w, Y: h}
	b.markCanvasDirty()
}

// Margin returns the margin insets.
func (b *Base) Margin() Insets { return b.margin }

// SetMargin sets the margin insets.
func (b *Base) SetMargin(m Insets) {
	b.margin = m
	b.markCanvasDirty()
}

// Alignment returns the alignment inside the parent.
func (b *Base) Alignment() Alignment { return b.align }

// SetAlignment sets the alignment inside the parent.
func (b *Base) SetAlignment(a Alignment) {
	b.align = a
	b.markCanvasDirty()
}

// Offset returns the offset added after alignment.
func (b *Base) Offset() Vec2 { return b.offset }

// SetOffset sets the offset added after alignment.
func (b *Base) SetOffset(x, y float32) {
	if b.offset.X == x && b.offset.Y == y {
		return
	}
	b.offset = Vec2{X: x, Y: y}
	b.markCanvasDirty()
}

// Color returns the tint color.
func (b *Base) Color() Color { return b.color }

// SetColor sets the tint color.
func (b *Base) SetColor(c Color) {
	if b.color == c {
		return
	}
	b.color = c
	b.MarkDirty()
}

// Alpha returns the alpha of the tint color.
func (b *Base) Alpha() float32 { return b.color.A }

// SetAlpha replaces the alpha of the tint color.
func (b *Base) SetAlpha(a float32) { b.SetColor(b.color.WithAlpha(a)) }

// Visible reports whether b and its subviews are painted and hit-tested.
func (b *Base) Visible() bool { return b.visible }

// SetVisible shows or hides b and its subviews.
func (b *Base) SetVisible(v bool) {
	if b.visible == v {
		return
	}
	b.visible = v
	b.markCanvasDirty()
}

// TouchEnabled reports whether b takes part in hit-testing.
func (b *Base) TouchEnabled() bool { return b.touch }

// SetTouchEnabled includes or excludes b from hit-testing. Subviews are
// unaffected.
func (b *Base) SetTouchEnabled(v bool) { b.touch = v }

// Bounds returns the screen rectangle computed by the last layout pass.
func (b *Base) Bounds() Rect { return b.bounds }

// Frame computes the rectangle b occupies inside parent from its size,
// margin, alignment and offset.
func (b *Base) Frame(parent Rect) Rect {
	m := b.margin
	w := b.size.X
	if w == FillParent {
		w = parent.Width - m.Left - m.Right
	}
	h := b.size.Y
	if h == FillParent {
		h = parent.Height - m.Top - m.Bottom
	}
	w = math32.Max(w, 0)
	h = math32.Max(h, 0)

	var x, y float32
	switch {
	case b.align&AlignHCenter != 0:
		x = parent.X + m.Left + math32.Floor((parent.Width-m.Left-m.Right-w)/2)
	case b.align&AlignRight != 0:
		x = parent.Right() - m.Right - w
	default:
		x = parent.X + m.Left
	}
	switch {
	case b.align&AlignVCenter != 0:
		y = parent.Y + m.Top + math32.Floor((parent.Height-m.Top-m.Bottom-h)/2)
	case b.align&AlignBottom != 0:
		y = parent.Bottom() - m.Bottom - h
	default:
		y = parent.Y + m.Top
	}
	return Rect{X: x + b.offset.X, Y: y + b.offset.Y, Width: w, Height: h}
}

// Layout implements View: it places b inside parent and lays out every
// subview inside the result.
func (b *Base) Layout(parent Rect) {
	b.setBounds(b.Frame(parent))
	for _, c := range b.subviews {
		c.Layout(b.bounds)
	}
}

func (b *Base) setBounds(r Rect) {
	if r != b.bounds {
		b.bounds = r
		b.meshDirty = true
	}
}

// Paint implements View. Base paints nothing.
func (b *Base) Paint(dst []ViewMesh) []ViewMesh { return dst }

// HandleTouchEvent implements View. Base consumes nothing.
func (b *Base) HandleTouchEvent(TouchKind, Vec2) bool { return false }

// meshesFor returns the cached meshes of v, repainting them when stale.
func meshesFor(v View) []ViewMesh {
	b := v.Node()
	if b.meshDirty {
		b.meshes = v.Paint(b.meshes[:0])
		b.meshDirty = false
	}
	return b.meshes
}
