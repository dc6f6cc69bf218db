package canvas

// InjectPress queues a synthetic pointer-0 down at (x, y). Injected events
// are dispatched one per Update, before view hooks run, exactly like real
// input.
func (r *Renderer) InjectPress(x, y float32) {
	r.inject(TouchDown, x, y)
}

// InjectMove queues a synthetic pointer-0 move. Use it between InjectPress
// and InjectRelease to simulate a drag.
func (r *Renderer) InjectMove(x, y float32) {
	r.inject(TouchMove, x, y)
}

// InjectRelease queues a synthetic pointer-0 up at (x, y).
func (r *Renderer) InjectRelease(x, y float32) {
	r.inject(TouchUp, x, y)
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two frames.
func (r *Renderer) InjectClick(x, y float32) {
	r.InjectPress(x, y)
	r.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves and a release at (toX, toY). The sequence consumes
// frames frames; the minimum is 2.
func (r *Renderer) InjectDrag(fromX, fromY, toX, toY float32, frames int) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps+1)
		r.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	r.InjectRelease(toX, toY)
}

// PendingInjections returns the number of queued synthetic events.
func (r *Renderer) PendingInjections() int { return len(r.injectQueue) }

func (r *Renderer) inject(phase TouchPhase, x, y float32) {
	r.injectQueue = append(r.injectQueue, TouchEvent{
		Phase:     phase,
		PointerID: 0,
		Pos:       Vec2{X: x, Y: y},
	})
}
