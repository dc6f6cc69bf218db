package canvas

// TouchRecord describes one touch notification delivered to a view.
type TouchRecord struct {
	Kind      TouchKind
	PointerID int
	ViewID    uint32
	ViewName  string
	EntityID  uint32
	Pos       Vec2
	Handled   bool
}

// EventSink receives every touch notification delivered by a renderer.
// The ecs module provides a donburi-backed implementation.
type EventSink interface {
	EmitTouch(TouchRecord)
}

// pointerEntry is the touch-down registry entry of one pointer: the views
// tested by its down event, in test order, and its last known position.
type pointerEntry struct {
	views []View
	pos   Vec2
}

type hitCandidate struct {
	view View
	clip Rect
}

// dispatcher routes touch events to views. It is owned by a Renderer.
type dispatcher struct {
	r        *Renderer
	pointers map[int]*pointerEntry
	focused  View
	sink     EventSink
	hitBuf   []hitCandidate
}

func newDispatcher(r *Renderer) *dispatcher {
	return &dispatcher{r: r, pointers: make(map[int]*pointerEntry)}
}

func (d *dispatcher) handle(ev TouchEvent) {
	switch ev.Phase {
	case TouchDown:
		d.down(ev.PointerID, ev.Pos)
	case TouchMove:
		if e, ok := d.pointers[ev.PointerID]; ok {
			e.pos = ev.Pos
		}
	case TouchUp:
		d.up(ev.PointerID, ev.Pos, false)
	case TouchCancel:
		d.up(ev.PointerID, ev.Pos, true)
	}
}

func (d *dispatcher) down(id int, pos Vec2) {
	if _, ok := d.pointers[id]; ok {
		// A second down without an up: cancel the stale sequence first.
		d.up(id, pos, true)
	}
	d.hitBuf = d.collect(d.hitBuf[:0])
	var tested []View
	for i := len(d.hitBuf) - 1; i >= 0; i-- {
		c := d.hitBuf[i]
		if !c.clip.Contains(pos) {
			continue
		}
		tested = append(tested, c.view)
		if d.deliver(c.view, TouchDownInside, id, pos) {
			break
		}
	}
	clear(d.hitBuf)
	if len(tested) == 0 {
		return
	}
	d.pointers[id] = &pointerEntry{views: tested, pos: pos}
}

// up ends the sequence of pointer id. A cancelled sequence always reports
// TouchUpOutside so that no view commits it.
func (d *dispatcher) up(id int, pos Vec2, cancel bool) {
	e, ok := d.pointers[id]
	if !ok {
		return
	}
	delete(d.pointers, id)
	e.pos = pos
	for _, v := range e.views {
		if v.Node().Canvas() != d.r {
			continue
		}
		kind := TouchUpOutside
		if !cancel && clipRect(v).Contains(pos) {
			kind = TouchUpInside
		}
		if d.deliver(v, kind, id, pos) {
			break
		}
	}
	d.updateFocus(e.views[len(e.views)-1])
}

// updateFocus runs after a sequence ends on target. Focus moves to target
// when it reports focus and is dropped otherwise.
func (d *dispatcher) updateFocus(target View) {
	if f, ok := target.(Focusable); ok && f.Focused() {
		d.focus(target)
		return
	}
	d.focus(nil)
}

// focus records v as the focused view, blurring the previous one.
func (d *dispatcher) focus(v View) {
	if d.focused != nil && d.focused != v {
		if f, ok := d.focused.(Focusable); ok && f.Focused() {
			f.Blur()
		}
	}
	d.focused = v
}

func (d *dispatcher) deliver(v View, kind TouchKind, id int, pos Vec2) bool {
	handled := v.HandleTouchEvent(kind, pos)
	b := v.Node()
	if globalDebug {
		Logger().Debug("touch", "kind", kind, "pointer", id, "view", b.Name, "handled", handled)
	}
	if d.sink != nil {
		d.sink.EmitTouch(TouchRecord{
			Kind:      kind,
			PointerID: id,
			ViewID:    b.ID,
			ViewName:  b.Name,
			EntityID:  b.EntityID,
			Pos:       pos,
			Handled:   handled,
		})
	}
	return handled
}

// collect appends every visible, touch-enabled view in paint order together
// with its bounds clipped by all of its ancestors.
func (d *dispatcher) collect(buf []hitCandidate) []hitCandidate {
	for _, v := range d.r.views {
		buf = collectHits(v, d.r.Bounds(), buf)
	}
	return buf
}

func collectHits(v View, clip Rect, buf []hitCandidate) []hitCandidate {
	b := v.Node()
	if !b.visible {
		return buf
	}
	clip = clip.Intersect(b.bounds)
	if b.touch {
		buf = append(buf, hitCandidate{view: v, clip: clip})
	}
	for _, c := range b.subviews {
		buf = collectHits(c, clip, buf)
	}
	return buf
}

// clipRect returns the bounds of v intersected with those of every ancestor.
func clipRect(v View) Rect {
	r := v.Node().bounds
	for p := v.Node().parent; p != nil; p = p.Node().parent {
		r = r.Intersect(p.Node().bounds)
	}
	return r
}

// forget drops registry references to views that left the tree.
func (d *dispatcher) forget(v View) {
	if d.focused != nil && isAncestor(v, d.focused) {
		d.focused = nil
	}
}

// ActivePointers returns the number of pointers with a pending down.
func (r *Renderer) ActivePointers() int { return len(r.input.pointers) }

// FocusedView returns the view holding focus, or nil.
func (r *Renderer) FocusedView() View { return r.input.focused }

// SetEventSink installs a sink receiving every delivered touch notification.
// Pass nil to remove it.
func (r *Renderer) SetEventSink(s EventSink) { r.input.sink = s }

// HandleTouchEvents dispatches raw pointer events immediately, using the
// bounds of the most recent layout.
func (r *Renderer) HandleTouchEvents(events ...TouchEvent) {
	if len(events) == 0 {
		return
	}
	r.ensureLayout()
	for _, ev := range events {
		r.input.handle(ev)
	}
}
