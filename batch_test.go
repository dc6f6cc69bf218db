package canvas

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packAll inserts every mesh texture into a fresh cache and returns it.
func packAll(t *testing.T, layerSize, maxLayers int, meshes []ViewMesh) *AtlasCache {
	t.Helper()
	c := NewAtlasCache(NewPacker(layerSize, maxLayers, 0))
	c.BeginFrame()
	for _, m := range meshes {
		tex := m.Texture
		if tex == nil {
			tex = whiteTexture
		}
		_, _, err := c.Insert(tex)
		require.NoError(t, err)
	}
	return c
}

func TestBatcherRemapsUVsIntoRegion(t *testing.T) {
	tex := NewSolidTexture(32, 16, color.White)
	meshes := []ViewMesh{QuadMesh(Rect{0, 0, 32, 16}, tex, ColorWhite)}
	c := packAll(t, 256, 0, meshes)
	region, _ := c.Lookup(tex)

	var buf Buffers
	require.NoError(t, NewBatcher(256, 0).Build(&buf, meshes, c.Lookup))

	require.Len(t, buf.Vertices, 4)
	u0, v0, u1, v1 := region.UV(256)
	assert.Equal(t, u0, buf.Vertices[0].U)
	assert.Equal(t, v0, buf.Vertices[0].V)
	assert.Equal(t, u1, buf.Vertices[3].U)
	assert.Equal(t, v1, buf.Vertices[3].V)
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2}, buf.Indices)
	assert.Equal(t, IndexUint32, buf.IndexType)
}

func TestBatcherMergesConsecutiveLayers(t *testing.T) {
	// Each texture fills a whole layer, so consecutive meshes alternate layers.
	a := NewSolidTexture(64, 64, color.White)
	b := NewSolidTexture(64, 64, color.White)
	meshes := []ViewMesh{
		QuadMesh(Rect{0, 0, 10, 10}, a, ColorWhite),
		QuadMesh(Rect{10, 0, 10, 10}, a, ColorWhite),
		QuadMesh(Rect{20, 0, 10, 10}, b, ColorWhite),
		QuadMesh(Rect{30, 0, 10, 10}, a, ColorWhite),
	}
	c := packAll(t, 64, 0, meshes)

	var buf Buffers
	require.NoError(t, NewBatcher(64, 0).Build(&buf, meshes, c.Lookup))

	assert.Equal(t, []DrawRange{
		{Layer: 0, Start: 0, Count: 12},
		{Layer: 1, Start: 12, Count: 6},
		{Layer: 0, Start: 18, Count: 6},
	}, buf.Draws)

	// Ranges tile the index buffer in paint order.
	total := 0
	for _, d := range buf.Draws {
		assert.Equal(t, total, d.Start)
		total += d.Count
	}
	assert.Equal(t, len(buf.Indices), total)
}

func TestBatcherOffsetsIndices(t *testing.T) {
	meshes := []ViewMesh{
		QuadMesh(Rect{0, 0, 1, 1}, nil, ColorWhite),
		QuadMesh(Rect{1, 0, 1, 1}, nil, ColorWhite),
	}
	c := packAll(t, 64, 0, meshes)
	var buf Buffers
	require.NoError(t, NewBatcher(64, 0).Build(&buf, meshes, c.Lookup))
	assert.Equal(t, []uint32{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6}, buf.Indices)
	require.Len(t, buf.Draws, 1)
}

func TestBatcherGrowsAmortized(t *testing.T) {
	var meshes []ViewMesh
	for i := 0; i < 100; i++ {
		meshes = append(meshes, QuadMesh(Rect{float32(i), 0, 1, 1}, nil, ColorWhite))
	}
	c := packAll(t, 64, 0, meshes)
	b := NewBatcher(64, 0)

	var buf Buffers
	for n := 1; n <= len(meshes); n++ {
		require.NoError(t, b.Build(&buf, meshes[:n], c.Lookup))
		require.Len(t, buf.Vertices, 4*n)
	}
	// Doubling from 64 reaches 400 vertices and 600 indices in a handful of steps.
	assert.LessOrEqual(t, b.Reallocations(), 10)
	assert.GreaterOrEqual(t, cap(buf.Vertices), 400)
}

func TestBatcherVertexCap(t *testing.T) {
	meshes := []ViewMesh{
		QuadMesh(Rect{0, 0, 1, 1}, nil, ColorWhite),
		QuadMesh(Rect{1, 0, 1, 1}, nil, ColorWhite),
	}
	c := packAll(t, 64, 0, meshes)
	var buf Buffers
	err := NewBatcher(64, 6).Build(&buf, meshes, c.Lookup)
	assert.ErrorIs(t, err, ErrBufferAllocationFailed)
}

func TestBatcherMissingRegion(t *testing.T) {
	meshes := []ViewMesh{QuadMesh(Rect{0, 0, 1, 1}, NewSolidTexture(2, 2, color.White), ColorWhite)}
	var buf Buffers
	err := NewBatcher(64, 0).Build(&buf, meshes, func(*Texture) (Region, bool) { return Region{}, false })
	require.Error(t, err)
	assert.Empty(t, buf.Vertices)
	assert.Empty(t, buf.Draws)
}

func TestBatcherEmpty(t *testing.T) {
	var buf Buffers
	require.NoError(t, NewBatcher(64, 0).Build(&buf, nil, nil))
	assert.Empty(t, buf.Draws)
}
