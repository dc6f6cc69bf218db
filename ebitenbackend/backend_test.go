package ebitenbackend

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/canvas"
)

func TestCreateAtlasLayerInOrder(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateAtlasLayer(0, 256))
	require.NoError(t, b.CreateAtlasLayer(1, 256))
	assert.Equal(t, 2, b.Layers())

	assert.Error(t, b.CreateAtlasLayer(3, 256), "gap in layer indices")
	assert.Error(t, b.CreateAtlasLayer(2, 512), "mismatched layer size")
}

func TestUploadRejectsBadRegions(t *testing.T) {
	b := New()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	assert.Error(t, b.UploadAtlasRegion(0, 0, 0, img), "no layers yet")

	require.NoError(t, b.CreateAtlasLayer(0, 16))
	assert.Error(t, b.UploadAtlasRegion(0, 12, 0, img), "overflows right edge")
	assert.Error(t, b.UploadAtlasRegion(0, 0, -1, img), "negative y")
	assert.NoError(t, b.UploadAtlasRegion(0, 0, 0, image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestBindVertexBufferConvertsUVsAndColors(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateAtlasLayer(0, 256))
	require.NoError(t, b.BindVertexBuffer([]canvas.Vertex{
		{X: 10, Y: 20, U: 0.25, V: 0.5, R: 1, G: 0.5, B: 0, A: 0.5},
	}))
	require.Len(t, b.verts, 1)
	v := b.verts[0]
	assert.Equal(t, float32(10), v.DstX)
	assert.Equal(t, float32(20), v.DstY)
	assert.Equal(t, float32(64), v.SrcX)
	assert.Equal(t, float32(128), v.SrcY)
	assert.Equal(t, float32(0.5), v.ColorR)
	assert.Equal(t, float32(0.25), v.ColorG)
	assert.Equal(t, float32(0), v.ColorB)
	assert.Equal(t, float32(0.5), v.ColorA)
}

func TestBindAndDrawValidation(t *testing.T) {
	b := New()
	assert.Error(t, b.BindIndexBuffer([]uint32{0, 1, 2}, canvas.IndexUint16))
	require.NoError(t, b.BindIndexBuffer([]uint32{0, 1, 2}, canvas.IndexUint32))
	assert.Error(t, b.BindAtlasLayer(0))

	assert.Error(t, b.DrawIndexed(0, 3, canvas.IndexUint32), "no target")
}

func TestRendererClampsLayerSize(t *testing.T) {
	cfg := canvas.DefaultConfig()
	cfg.AtlasLayerSize = 8192
	r, b, err := NewRenderer(cfg)
	require.NoError(t, err)
	assert.Same(t, b, r.Backend())
	assert.Equal(t, maxTextureSize, r.Config().AtlasLayerSize)
}

func TestGameLayoutResizesRenderer(t *testing.T) {
	r, b, err := NewRenderer(canvas.DefaultConfig())
	require.NoError(t, err)
	g := NewGame(r, b, RunConfig{})

	w, h := g.Layout(320, 200)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)
	rw, rh := r.Size()
	assert.Equal(t, 320, rw)
	assert.Equal(t, 200, rh)
	dirty, reason := r.Dirty()
	assert.True(t, dirty)
	assert.NotZero(t, reason&canvas.DirtyResize)
}
