package canvas

import (
	"strings"

	"github.com/chewxy/math32"
)

// DefaultFontSize is the pixel size of new labels.
const DefaultFontSize = 20

// GlyphQuad is one laid-out character. Rect is relative to the label's
// bounds origin. Blank glyphs have a nil Texture and a Rect spanning their
// advance over the full line height, so their right edge is still the pen
// position after the character.
type GlyphQuad struct {
	Rune    rune
	Rect    Rect
	Texture *Texture
}

// LabelLine is one line of laid-out glyphs.
type LabelLine struct {
	Glyphs []GlyphQuad
	Width  float32
}

// Label draws a run of text. Lines break only at '\n'.
type Label struct {
	Base

	text      string
	font      Font
	fontSize  int
	textAlign Alignment

	lines       []LabelLine
	contentW    float32
	contentH    float32
	layoutDirty bool
	laidOutIn   Rect
}

// NewLabel creates a label that fills its parent and draws text in black.
func NewLabel(name string, font Font) *Label {
	l := &Label{font: font, fontSize: DefaultFontSize, textAlign: AlignLeft | AlignTop}
	l.init(l, name)
	l.color = ColorBlack
	l.layoutDirty = true
	return l
}

// Text returns the label text.
func (l *Label) Text() string { return l.text }

// SetText replaces the label text.
func (l *Label) SetText(s string) {
	if l.text == s {
		return
	}
	l.text = s
	l.invalidateText()
}

// Font returns the label font.
func (l *Label) Font() Font { return l.font }

// SetFont replaces the label font.
func (l *Label) SetFont(f Font) {
	l.font = f
	l.invalidateText()
}

// FontSize returns the pixel size passed to the font.
func (l *Label) FontSize() int { return l.fontSize }

// SetFontSize sets the pixel size passed to the font.
func (l *Label) SetFontSize(size int) {
	if l.fontSize == size {
		return
	}
	l.fontSize = size
	l.invalidateText()
}

// TextAlignment returns the placement of the text block inside the bounds.
func (l *Label) TextAlignment() Alignment { return l.textAlign }

// SetTextAlignment sets the placement of the text block inside the bounds.
// Each line is aligned horizontally on its own.
func (l *Label) SetTextAlignment(a Alignment) {
	l.textAlign = a
	l.invalidateText()
}

// LineHeight returns the font's line height at the label's size.
func (l *Label) LineHeight() float32 {
	if l.font == nil {
		return 0
	}
	return l.font.Metrics(l.fontSize).LineHeight
}

// ContentSize returns the size of the laid-out text block.
func (l *Label) ContentSize() Vec2 {
	l.ensureLayout()
	return Vec2{X: l.contentW, Y: l.contentH}
}

// Lines returns the laid-out lines, positioned for the current bounds.
// The result is valid until the text, font or bounds change.
func (l *Label) Lines() []LabelLine {
	l.ensureLayout()
	return l.lines
}

// Layout implements View.
func (l *Label) Layout(parent Rect) {
	l.Base.Layout(parent)
	if l.bounds != l.laidOutIn {
		l.layoutDirty = true
	}
}

// Paint implements View.
func (l *Label) Paint(dst []ViewMesh) []ViewMesh {
	for _, line := range l.Lines() {
		for _, g := range line.Glyphs {
			if g.Texture == nil {
				continue
			}
			r := g.Rect
			r.X += l.bounds.X
			r.Y += l.bounds.Y
			dst = append(dst, QuadMesh(r, g.Texture, l.color))
		}
	}
	return dst
}

func (l *Label) invalidateText() {
	l.layoutDirty = true
	l.MarkDirty()
}

func (l *Label) ensureLayout() {
	if !l.layoutDirty {
		return
	}
	l.layoutDirty = false
	l.laidOutIn = l.bounds
	l.shape()
	l.align()
}

// shape places glyphs in text space: pen at x=0, each line one line height
// below the previous, glyph tops from the font bearings.
func (l *Label) shape() {
	clear(l.lines)
	l.lines = l.lines[:0]
	l.contentW, l.contentH = 0, 0
	if l.font == nil {
		return
	}
	m := l.font.Metrics(l.fontSize)
	for i, text := range strings.Split(l.text, "\n") {
		top := float32(i) * m.LineHeight
		var line LabelLine
		var pen float32
		prev := rune(-1)
		for _, r := range text {
			g, ok := l.font.Glyph(r, l.fontSize)
			if !ok {
				continue
			}
			if prev >= 0 {
				pen += l.font.Kern(prev, r, l.fontSize)
			}
			prev = r
			q := GlyphQuad{Rune: r}
			if g.Texture != nil {
				q.Texture = g.Texture
				q.Rect = Rect{
					X:      pen + g.BearingX,
					Y:      top + m.Ascent - g.BearingY,
					Width:  g.Width,
					Height: g.Height,
				}
			} else {
				q.Rect = Rect{X: pen, Y: top, Width: g.Advance, Height: m.LineHeight}
			}
			pen += g.Advance
			line.Glyphs = append(line.Glyphs, q)
		}
		line.Width = pen
		l.contentW = math32.Max(l.contentW, pen)
		l.lines = append(l.lines, line)
	}
	l.contentH = float32(len(l.lines)) * m.LineHeight
}

// align shifts the text-space glyphs into label-local space.
func (l *Label) align() {
	var dy float32
	switch {
	case l.textAlign&AlignVCenter != 0:
		dy = math32.Floor((l.bounds.Height - l.contentH) / 2)
	case l.textAlign&AlignBottom != 0:
		dy = l.bounds.Height - l.contentH
	}
	for i := range l.lines {
		line := &l.lines[i]
		var dx float32
		switch {
		case l.textAlign&AlignHCenter != 0:
			dx = math32.Floor((l.bounds.Width - line.Width) / 2)
		case l.textAlign&AlignRight != 0:
			dx = l.bounds.Width - line.Width
		}
		if dx == 0 && dy == 0 {
			continue
		}
		for j := range line.Glyphs {
			line.Glyphs[j].Rect.X += dx
			line.Glyphs[j].Rect.Y += dy
		}
	}
}
