package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeFont lays out every printable rune as a 10x10 glyph with an advance
// of 10. Spaces are blank with an advance of 5.
type fakeFont struct {
	glyphs map[rune]*Texture
}

const (
	fakeAdvance    = 10
	fakeSpace      = 5
	fakeAscent     = 8
	fakeLineHeight = 12
)

func newFakeFont() *fakeFont { return &fakeFont{glyphs: make(map[rune]*Texture)} }

func (f *fakeFont) Glyph(r rune, size int) (Glyph, bool) {
	if r == ' ' {
		return Glyph{Advance: fakeSpace}, true
	}
	if r < ' ' {
		return Glyph{}, false
	}
	tex, ok := f.glyphs[r]
	if !ok {
		tex = NewSolidTexture(10, 10, color.White)
		f.glyphs[r] = tex
	}
	return Glyph{Texture: tex, BearingY: fakeAscent, Width: 10, Height: 10, Advance: fakeAdvance}, true
}

func (f *fakeFont) Kern(a, b rune, size int) float32 { return 0 }

func (f *fakeFont) Metrics(size int) FontMetrics {
	return FontMetrics{Ascent: fakeAscent, Descent: fakeLineHeight - fakeAscent, LineHeight: fakeLineHeight}
}

type upload struct {
	layer, x, y, w, h int
}

type drawCall struct {
	layer, start, count int
}

// fakeBackend records every call. failUpload makes uploads fail.
type fakeBackend struct {
	maxSize    int
	layers     []int
	uploads    []upload
	vertices   []Vertex
	indices    []uint32
	bound      int
	draws      []drawCall
	failUpload error
}

func newFakeBackend() *fakeBackend { return &fakeBackend{maxSize: 4096, bound: -1} }

func (b *fakeBackend) MaxTextureSize() int { return b.maxSize }

func (b *fakeBackend) CreateAtlasLayer(index, size int) error {
	if index != len(b.layers) {
		return errors.New("layer out of order")
	}
	b.layers = append(b.layers, size)
	return nil
}

func (b *fakeBackend) UploadAtlasRegion(layer, x, y int, img *image.RGBA) error {
	if b.failUpload != nil {
		return b.failUpload
	}
	if layer >= len(b.layers) {
		return errors.New("unknown layer")
	}
	b.uploads = append(b.uploads, upload{layer, x, y, img.Rect.Dx(), img.Rect.Dy()})
	return nil
}

func (b *fakeBackend) BindVertexBuffer(v []Vertex) error {
	b.vertices = v
	return nil
}

func (b *fakeBackend) BindIndexBuffer(i []uint32, _ IndexType) error {
	b.indices = i
	return nil
}

func (b *fakeBackend) BindAtlasLayer(layer int) error {
	b.bound = layer
	return nil
}

func (b *fakeBackend) DrawIndexed(start, count int, _ IndexType) error {
	b.draws = append(b.draws, drawCall{b.bound, start, count})
	return nil
}

// newTestRenderer returns a 200x100 renderer drawing through a fakeBackend.
func newTestRenderer(t *testing.T, cfg Config) (*Renderer, *fakeBackend) {
	t.Helper()
	b := newFakeBackend()
	r, err := NewRenderer(b, cfg)
	require.NoError(t, err)
	r.OnResize(200, 100)
	return r, b
}

// touchView is a sprite that records touch notifications and reports them
// handled according to its handle map.
type touchView struct {
	Sprite
	handle map[TouchKind]bool
	got    []TouchKind
}

func newTouchView(name string, x, y, w, h float32, handles ...TouchKind) *touchView {
	v := &touchView{handle: make(map[TouchKind]bool)}
	v.init(v, name)
	v.size = Vec2{X: w, Y: h}
	v.offset = Vec2{X: x, Y: y}
	for _, k := range handles {
		v.handle[k] = true
	}
	return v
}

func (v *touchView) HandleTouchEvent(kind TouchKind, _ Vec2) bool {
	v.got = append(v.got, kind)
	return v.handle[kind]
}

func down(id int, x, y float32) TouchEvent {
	return TouchEvent{Phase: TouchDown, PointerID: id, Pos: Vec2{X: x, Y: y}}
}

func up(id int, x, y float32) TouchEvent {
	return TouchEvent{Phase: TouchUp, PointerID: id, Pos: Vec2{X: x, Y: y}}
}

func move(id int, x, y float32) TouchEvent {
	return TouchEvent{Phase: TouchMove, PointerID: id, Pos: Vec2{X: x, Y: y}}
}
