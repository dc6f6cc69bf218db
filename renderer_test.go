package canvas

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtlasLayerSize = 0
	_, err := NewRenderer(newFakeBackend(), cfg)
	assert.Error(t, err)
}

func TestNewRendererClampsLayerSize(t *testing.T) {
	b := newFakeBackend()
	b.maxSize = 1024
	r, err := NewRenderer(b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1024, r.Config().AtlasLayerSize)
	assert.Equal(t, 1024, r.Atlas().Packer().LayerSize())
}

func TestRendererRebuildPublishes(t *testing.T) {
	r, b := newTestRenderer(t, DefaultConfig())
	r.AddView(NewRect("a", 10, 10, ColorWhite))

	dirty, reasons := r.Dirty()
	require.True(t, dirty)
	assert.Equal(t, DirtyLayout|DirtyResize, reasons)

	require.NoError(t, r.Update(0))
	dirty, _ = r.Dirty()
	assert.False(t, dirty)
	assert.Equal(t, uint64(1), r.Generation())
	assert.Len(t, r.VertexBuffer(), 4)
	assert.Len(t, r.IndexBuffer(), 6)
	assert.Equal(t, []DrawRange{{Layer: 0, Start: 0, Count: 6}}, r.DrawBuffer())
	assert.Equal(t, IndexUint32, r.IndexType())

	assert.Equal(t, []int{2048}, b.layers)
	require.Len(t, b.uploads, 1)
	assert.Equal(t, 1, b.uploads[0].w)

	s := r.Stats()
	assert.Equal(t, DirtyLayout|DirtyResize, s.Reasons)
	assert.Equal(t, 1, s.Meshes)
	assert.Equal(t, 1, s.Uploads)
	assert.Equal(t, 1, s.AtlasLayers)
	assert.Equal(t, 4, s.Vertices)
	assert.Equal(t, 1, s.DrawRanges)
}

func TestRendererSkipsCleanFrames(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	r.AddView(NewRect("a", 10, 10, ColorWhite))
	require.NoError(t, r.Update(0))
	require.NoError(t, r.Update(0.016))
	assert.Equal(t, uint64(1), r.Generation())

	r.MarkCanvasDirty()
	_, reasons := r.Dirty()
	assert.Equal(t, DirtyExplicit, reasons)
	require.NoError(t, r.Update(0.016))
	assert.Equal(t, uint64(2), r.Generation())
	assert.Equal(t, DirtyExplicit, r.Stats().Reasons)
}

func TestRendererSharesUploadedTextures(t *testing.T) {
	r, b := newTestRenderer(t, DefaultConfig())
	r.AddView(NewRect("a", 10, 10, ColorWhite))
	r.AddView(NewRect("b", 10, 10, ColorBlack))
	require.NoError(t, r.Update(0))

	assert.Len(t, b.uploads, 1)
	assert.Equal(t, []DrawRange{{Layer: 0, Start: 0, Count: 12}}, r.DrawBuffer())
	// Vertex colors keep each view's tint.
	assert.Equal(t, float32(1), r.VertexBuffer()[0].R)
	assert.Equal(t, float32(0), r.VertexBuffer()[4].R)
}

func TestRendererPaintsInTreeOrder(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	root := NewContainer("root")
	root.SetColor(ColorWhite)
	child := NewRect("child", 10, 10, ColorWhite)
	child.SetOffset(50, 0)
	root.AddSubview(child)
	top := NewRect("top", 10, 10, ColorWhite)
	top.SetOffset(100, 0)
	r.AddView(root)
	r.AddView(top)
	require.NoError(t, r.Update(0))

	v := r.VertexBuffer()
	require.Len(t, v, 12)
	assert.Equal(t, float32(0), v[0].X)
	assert.Equal(t, float32(50), v[4].X)
	assert.Equal(t, float32(100), v[8].X)
}

func TestRendererOmitsHiddenAndRemovedViews(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	a := NewRect("a", 10, 10, ColorWhite)
	bv := NewRect("b", 10, 10, ColorWhite)
	r.AddView(a)
	r.AddView(bv)
	require.NoError(t, r.Update(0))
	require.Len(t, r.VertexBuffer(), 8)

	a.SetVisible(false)
	require.NoError(t, r.Update(0))
	assert.Len(t, r.VertexBuffer(), 4)

	require.NoError(t, r.RemoveView(bv))
	require.NoError(t, r.Update(0))
	assert.Empty(t, r.VertexBuffer())
	assert.Empty(t, r.DrawBuffer())
}

func TestRendererRemoveViewErrors(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	parent := NewContainer("parent")
	child := NewContainer("child")
	parent.AddSubview(child)
	r.AddView(parent)

	assert.ErrorIs(t, r.RemoveView(child), ErrInvalidViewState)
	assert.ErrorIs(t, r.RemoveView(nil), ErrInvalidViewState)
	assert.ErrorIs(t, r.RemoveView(NewContainer("stranger")), ErrInvalidViewState)
	require.NoError(t, r.RemoveView(parent))
	assert.ErrorIs(t, r.RemoveView(parent), ErrInvalidViewState)
}

func TestRendererAddViewMovesToTop(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	a := NewContainer("a")
	b := NewContainer("b")
	r.AddView(a)
	r.AddView(b)
	r.AddView(a)
	assert.Equal(t, []View{b, a}, r.Views())

	other, _ := newTestRenderer(t, DefaultConfig())
	other.AddView(a)
	assert.Equal(t, []View{b}, r.Views())
	assert.Same(t, other, a.Canvas())
}

func TestRendererAddViewPanics(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	assert.Panics(t, func() { r.AddView(nil) })
	assert.Panics(t, func() { r.AddView(&Sprite{}) })
}

func TestRendererResize(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	bg := NewContainer("bg")
	bg.SetColor(ColorWhite)
	r.AddView(bg)
	require.NoError(t, r.Update(0))
	assert.Equal(t, float32(200), r.VertexBuffer()[3].X)

	r.OnResize(300, 150)
	_, reasons := r.Dirty()
	assert.Equal(t, DirtyResize, reasons)
	require.NoError(t, r.Update(0))
	assert.Equal(t, float32(300), r.VertexBuffer()[3].X)
	assert.Equal(t, float32(150), r.VertexBuffer()[3].Y)

	w, h := r.Size()
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)

	p := r.Projection()
	assert.InDelta(t, 2.0/300, p[0], 1e-7)
	assert.InDelta(t, -2.0/150, p[5], 1e-7)
	assert.Equal(t, float32(-1), p[12])
	assert.Equal(t, float32(1), p[13])

	r.OnResize(300, 150)
	dirty, _ := r.Dirty()
	assert.False(t, dirty)
}

func TestRendererFailedRebuildKeepsFrontBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxVertices = 4
	r, _ := newTestRenderer(t, cfg)
	r.AddView(NewRect("a", 10, 10, ColorWhite))
	require.NoError(t, r.Update(0))
	published := append([]Vertex(nil), r.VertexBuffer()...)

	extra := NewRect("b", 10, 10, ColorWhite)
	r.AddView(extra)
	err := r.Update(0)
	require.ErrorIs(t, err, ErrBufferAllocationFailed)

	assert.Equal(t, published, r.VertexBuffer())
	assert.Equal(t, uint64(1), r.Generation())
	assert.Equal(t, 1, r.Failures())
	dirty, reasons := r.Dirty()
	assert.True(t, dirty)
	assert.Equal(t, DirtyLayout, reasons)

	require.NoError(t, r.RemoveView(extra))
	require.NoError(t, r.Update(0))
	assert.Equal(t, uint64(2), r.Generation())
}

func TestRendererUploadFailureRetries(t *testing.T) {
	r, b := newTestRenderer(t, DefaultConfig())
	tex := NewSolidTexture(8, 8, color.White)
	r.AddView(NewSprite("s", tex))
	b.failUpload = errors.New("device lost")

	err := r.Update(0)
	require.Error(t, err)
	assert.ErrorContains(t, err, "device lost")
	_, ok := r.Atlas().Lookup(tex)
	assert.False(t, ok)
	assert.Zero(t, r.Generation())

	b.failUpload = nil
	require.NoError(t, r.Update(0))
	_, ok = r.Atlas().Lookup(tex)
	assert.True(t, ok)
	assert.Len(t, b.uploads, 1)
}

func TestRendererAtlasExhausted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtlasLayerSize = 64
	cfg.MaxAtlasLayers = 1
	cfg.AtlasPadding = 0
	r, _ := newTestRenderer(t, cfg)
	r.AddView(NewSprite("a", NewSolidTexture(64, 64, color.White)))
	r.AddView(NewSprite("b", NewSolidTexture(64, 64, color.White)))

	err := r.Update(0)
	assert.ErrorIs(t, err, ErrAtlasExhausted)
	assert.Equal(t, 1, r.Failures())
}

func TestRendererEvictsUnusedTextures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtlasLayerSize = 64
	cfg.MaxAtlasLayers = 1
	cfg.AtlasPadding = 0
	r, _ := newTestRenderer(t, cfg)
	a := NewSprite("a", NewSolidTexture(64, 64, color.White))
	r.AddView(a)
	require.NoError(t, r.Update(0))

	a.SetTexture(NewSolidTexture(64, 64, color.Black))
	require.NoError(t, r.Update(0))
	assert.Equal(t, 1, r.Stats().Evictions)
	assert.Equal(t, 1, r.Atlas().Len())
}

func TestRendererFailedRebuildAfterEvictionWithdrawsFront(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtlasLayerSize = 64
	cfg.MaxAtlasLayers = 1
	cfg.AtlasPadding = 0
	cfg.MaxVertices = 4
	r, _ := newTestRenderer(t, cfg)
	a := NewSprite("a", NewSolidTexture(64, 64, color.White))
	r.AddView(a)
	require.NoError(t, r.Update(0))
	require.Len(t, r.DrawBuffer(), 1)

	next := NewSolidTexture(64, 64, color.Black)
	a.SetTexture(next)
	extra := NewSprite("b", next)
	r.AddView(extra)
	err := r.Update(0)
	require.ErrorIs(t, err, ErrBufferAllocationFailed)
	assert.True(t, r.Atlas().FrontLost())
	assert.Empty(t, r.DrawBuffer())
	assert.Empty(t, r.VertexBuffer())
	assert.NoError(t, r.Draw())
	assert.Equal(t, uint64(1), r.Generation())

	require.NoError(t, r.RemoveView(extra))
	require.NoError(t, r.Update(0))
	assert.Equal(t, uint64(2), r.Generation())
	assert.Len(t, r.DrawBuffer(), 1)
	assert.False(t, r.Atlas().FrontLost())
}

func TestRendererSkipsEmptyTextures(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	r.AddView(NewRect("a", 10, 10, ColorWhite))
	blank := NewSprite("blank", NewTexture(image.NewRGBA(image.Rect(0, 0, 0, 0))))
	blank.SetSize(20, 20)
	r.AddView(blank)

	for i := 0; i < 3; i++ {
		r.MarkCanvasDirty()
		require.NoError(t, r.Update(0.016))
	}
	assert.Equal(t, uint64(3), r.Generation())
	assert.Len(t, r.VertexBuffer(), 4)
	assert.Equal(t, 1, r.Stats().Meshes)
	_, ok := r.Atlas().Lookup(blank.Texture())
	assert.False(t, ok)
}

func TestRendererGlyphAtlasStaysBounded(t *testing.T) {
	font, err := NewFaceFont(NewBasicFont().newFace, 1)
	require.NoError(t, err)
	r, _ := newTestRenderer(t, DefaultConfig())
	l := NewLabel("l", font)
	l.SetSize(50, 20)
	r.AddView(l)

	for i := 0; i < 50; i++ {
		l.SetText(string(rune('a' + i%2)))
		require.NoError(t, r.Update(0.016))
	}
	assert.Equal(t, 2, font.GlyphTextures())
	assert.LessOrEqual(t, r.Atlas().Packer().Allocated(), 3)
}

func TestRendererReleaseTexture(t *testing.T) {
	r, b := newTestRenderer(t, DefaultConfig())
	tex := NewSolidTexture(8, 8, color.White)
	r.AddView(NewSprite("s", tex))
	require.NoError(t, r.Update(0))
	require.Len(t, b.uploads, 1)

	assert.True(t, r.ReleaseTexture(tex))
	_, reasons := r.Dirty()
	assert.Equal(t, DirtyTexture, reasons)
	require.NoError(t, r.Update(0))
	assert.Len(t, b.uploads, 2)

	assert.False(t, r.ReleaseTexture(NewSolidTexture(1, 1, color.White)))
}

func TestRendererDraw(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AtlasLayerSize = 64
	cfg.AtlasPadding = 0
	r, b := newTestRenderer(t, cfg)
	r.AddView(NewSprite("a", NewSolidTexture(64, 64, color.White)))
	r.AddView(NewSprite("b", NewSolidTexture(64, 64, color.White)))
	r.AddView(NewRect("c", 10, 10, ColorWhite))

	require.NoError(t, r.Draw())
	assert.Empty(t, b.draws)

	require.NoError(t, r.Update(0))
	require.NoError(t, r.Draw())
	assert.Equal(t, r.VertexBuffer(), b.vertices)
	assert.Equal(t, r.IndexBuffer(), b.indices)
	assert.Equal(t, []drawCall{{0, 0, 6}, {1, 6, 6}, {2, 12, 6}}, b.draws)
	assert.Len(t, b.layers, 3)
}

func TestHeadlessRenderer(t *testing.T) {
	r, err := NewRenderer(nil, DefaultConfig())
	require.NoError(t, err)
	r.OnResize(100, 100)
	r.AddView(NewRect("a", 10, 10, ColorWhite))
	require.NoError(t, r.Update(0))
	assert.Len(t, r.VertexBuffer(), 4)
	assert.NoError(t, r.Draw())
	assert.Nil(t, r.Backend())
}

type frameCounter struct {
	Base
	frames int
	chars  []rune
	time   float32
}

func newFrameCounter() *frameCounter {
	f := &frameCounter{}
	f.init(f, "counter")
	return f
}

func (f *frameCounter) UpdateFrame(ctx *FrameContext) {
	f.frames++
	f.chars = append(f.chars, ctx.Chars...)
	f.time = ctx.Time
}

func TestRendererRunsFrameUpdaters(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	parent := NewContainer("parent")
	counter := newFrameCounter()
	parent.AddSubview(counter)
	r.AddView(parent)

	r.InputChars('a', 'b')
	require.NoError(t, r.Update(0.5))
	require.NoError(t, r.Update(0.25))

	assert.Equal(t, 2, counter.frames)
	assert.Equal(t, []rune{'a', 'b'}, counter.chars)
	assert.Equal(t, float32(0.75), counter.time)
	assert.Equal(t, float32(0.75), r.Time())
}

func TestRendererDebugMode(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultConfig())
	r.SetDebugMode(true)
	defer r.SetDebugMode(false)
	assert.True(t, r.Config().Debug)

	r.AddView(NewRect("a", 10, 10, ColorWhite))
	require.NoError(t, r.Update(0))
	assert.Greater(t, r.Stats().Total(), time.Duration(-1))
}
