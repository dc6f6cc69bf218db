package ebitenbackend

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/canvas"
)

// mousePointer is the pointer ID of the mouse. Touches use their
// ebiten.TouchID plus one.
const mousePointer = 0

// Input turns Ebitengine's polled input state into canvas touch events and
// typed characters. Call Poll once per tick.
type Input struct {
	mouseDown bool
	mousePos  canvas.Vec2

	touchIDs []ebiten.TouchID
	touches  map[ebiten.TouchID]canvas.Vec2
	seen     map[ebiten.TouchID]bool

	events []canvas.TouchEvent
	chars  []rune
}

// Poll returns the events and characters since the previous call. The
// slices are reused by the next call.
func (in *Input) Poll() ([]canvas.TouchEvent, []rune) {
	if in.touches == nil {
		in.touches = make(map[ebiten.TouchID]canvas.Vec2)
		in.seen = make(map[ebiten.TouchID]bool)
	}
	in.events = in.events[:0]
	in.pollMouse()
	in.pollTouches()

	in.chars = ebiten.AppendInputChars(in.chars[:0])
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		in.chars = append(in.chars, '\b')
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		in.chars = append(in.chars, '\r')
	}
	return in.events, in.chars
}

func (in *Input) pollMouse() {
	x, y := ebiten.CursorPosition()
	pos := canvas.Vec2{X: float32(x), Y: float32(y)}
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case pressed && !in.mouseDown:
		in.emit(canvas.TouchDown, mousePointer, pos)
	case !pressed && in.mouseDown:
		in.emit(canvas.TouchUp, mousePointer, pos)
	case pressed && pos != in.mousePos:
		in.emit(canvas.TouchMove, mousePointer, pos)
	}
	in.mouseDown = pressed
	in.mousePos = pos
}

func (in *Input) pollTouches() {
	in.touchIDs = ebiten.AppendTouchIDs(in.touchIDs[:0])
	clear(in.seen)
	for _, id := range in.touchIDs {
		in.seen[id] = true
		x, y := ebiten.TouchPosition(id)
		pos := canvas.Vec2{X: float32(x), Y: float32(y)}
		last, ok := in.touches[id]
		switch {
		case !ok:
			in.emit(canvas.TouchDown, int(id)+1, pos)
		case last != pos:
			in.emit(canvas.TouchMove, int(id)+1, pos)
		}
		in.touches[id] = pos
	}
	// Released touches report their last known position.
	for id, pos := range in.touches {
		if !in.seen[id] {
			in.emit(canvas.TouchUp, int(id)+1, pos)
			delete(in.touches, id)
		}
	}
}

func (in *Input) emit(phase canvas.TouchPhase, id int, pos canvas.Vec2) {
	in.events = append(in.events, canvas.TouchEvent{Phase: phase, PointerID: id, Pos: pos})
}
