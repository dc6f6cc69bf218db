package canvas

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to four float32 properties of one view together.
// Create one with TweenOffset, TweenColor or TweenAlpha and either call
// Update each frame or hand it to Renderer.AddTween.
type TweenGroup struct {
	tweens [4]*gween.Tween
	values [4]float32
	count  int
	target View
	apply  func(b *Base, v *[4]float32)
	Done   bool
}

// Target returns the animated view.
func (g *TweenGroup) Target() View { return g.target }

// Update advances all tweens by dt seconds and writes the values to the
// target through its setters, which mark the canvas dirty.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.target.Node(), &g.values)
}

// Stop ends the group without applying further values.
func (g *TweenGroup) Stop() { g.Done = true }

// TweenOffset animates the view offset to (toX, toY).
func TweenOffset(v View, toX, toY, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := v.Node().Offset()
	g := &TweenGroup{count: 2, target: v}
	g.tweens[0] = gween.New(from.X, toX, duration, fn)
	g.tweens[1] = gween.New(from.Y, toY, duration, fn)
	g.apply = func(b *Base, v *[4]float32) { b.SetOffset(v[0], v[1]) }
	return g
}

// TweenColor animates all four color components to the target color.
func TweenColor(v View, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := v.Node().Color()
	g := &TweenGroup{count: 4, target: v}
	g.tweens[0] = gween.New(from.R, to.R, duration, fn)
	g.tweens[1] = gween.New(from.G, to.G, duration, fn)
	g.tweens[2] = gween.New(from.B, to.B, duration, fn)
	g.tweens[3] = gween.New(from.A, to.A, duration, fn)
	g.apply = func(b *Base, v *[4]float32) { b.SetColor(Color{R: v[0], G: v[1], B: v[2], A: v[3]}) }
	return g
}

// TweenAlpha animates the color alpha to the target value.
func TweenAlpha(v View, to, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: v}
	g.tweens[0] = gween.New(v.Node().Alpha(), to, duration, fn)
	g.apply = func(b *Base, v *[4]float32) { b.SetAlpha(v[0]) }
	return g
}

// AddTween registers g to be advanced by Update. Groups are dropped once
// done or once their target leaves the renderer.
func (r *Renderer) AddTween(g *TweenGroup) {
	if g == nil || g.Done {
		return
	}
	r.tweens = append(r.tweens, g)
}

// ActiveTweens returns the number of registered tween groups.
func (r *Renderer) ActiveTweens() int { return len(r.tweens) }

func (r *Renderer) advanceTweens(dt float32) {
	live := r.tweens[:0]
	for _, g := range r.tweens {
		if g.target.Node().Canvas() != r {
			g.Done = true
		}
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(r.tweens[len(live):])
	r.tweens = live
}
